package dashboard

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/amosWeiskopf/seoscout/internal/models"
	"github.com/amosWeiskopf/seoscout/pkg/store"
)

//go:embed templates/*.html
var templateFS embed.FS

// Data is everything the dashboard page shows. It is loaded once at startup.
type Data struct {
	Keyword         string
	TopRankingSites []models.RankedURL
	CTAData         []models.CTARecord
}

// Load reads the ranked URL and CTA analysis files. Either file missing is
// an error.
func Load(st *store.Store, keyword string) (*Data, error) {
	sites, err := st.ReadRankedURLs()
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", st.TopURLsPath(), err)
	}
	ctas, err := st.ReadCTARecords()
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", st.CTAAnalysisPath(), err)
	}
	return &Data{Keyword: keyword, TopRankingSites: sites, CTAData: ctas}, nil
}

// NewServer creates the dashboard router serving data
func NewServer(data *Data, logger *log.Logger) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)

	tmpl, err := template.New("").
		Funcs(template.FuncMap{"ctas": store.JoinCTAs}).
		ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	r := gin.New()
	r.Use(requestLogger(logger))
	r.Use(gin.Recovery())
	r.SetHTMLTemplate(tmpl)

	r.GET("/", func(c *gin.Context) {
		c.HTML(http.StatusOK, "index.html", data)
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":            "ok",
			"top_ranking_sites": len(data.TopRankingSites),
			"cta_records":       len(data.CTAData),
			"timestamp":         time.Now().Format(time.RFC3339),
		})
	})

	return r, nil
}

// requestLogger logs each request through the application logger
func requestLogger(logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client", c.ClientIP(),
		)
	}
}

// Serve runs handler on addr until ctx is cancelled
func Serve(ctx context.Context, addr string, handler http.Handler, logger *log.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("🌐 dashboard listening", "addr", "http://"+addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
