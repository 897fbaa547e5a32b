package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/amosWeiskopf/seoscout/internal/config"
	"github.com/amosWeiskopf/seoscout/internal/logging"
	"github.com/amosWeiskopf/seoscout/internal/models"
	"github.com/amosWeiskopf/seoscout/pkg/dashboard"
	"github.com/amosWeiskopf/seoscout/pkg/fetcher"
	"github.com/amosWeiskopf/seoscout/pkg/pipeline"
	"github.com/amosWeiskopf/seoscout/pkg/reporter"
	"github.com/amosWeiskopf/seoscout/pkg/serpapi"
	"github.com/amosWeiskopf/seoscout/pkg/store"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "seoscout",
	Short: "SEOScout - competitor SEO analysis",
	Long: `SEOScout scrapes a page, finds who ranks for its primary keyword,
collects the competitors' top articles and common blog topics, detects their
calls to action and shows the results on a dashboard.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
}

// app holds what every subcommand needs
type app struct {
	cfg    *config.Config
	logger *log.Logger
	store  *store.Store
	runner *pipeline.Runner
}

func setup(cmd *cobra.Command) (*app, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if dataDir, _ := cmd.Flags().GetString("data-dir"); dataDir != "" {
		cfg.Data.Dir = dataDir
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	st := store.New(cfg.Data)
	f := fetcher.New(fetcher.Options{
		UserAgent:       cfg.Crawler.UserAgent,
		RequestsPerSec:  cfg.Crawler.RequestsPerSecond,
		FollowRobotsTxt: cfg.Crawler.FollowRobotsTxt,
	}, logger)
	search := serpapi.New(serpapi.Options{
		Endpoint:         cfg.Search.Endpoint,
		Engine:           cfg.Search.Engine,
		APIKey:           cfg.Search.APIKey,
		Timeout:          cfg.Search.Timeout,
		Retries:          cfg.Search.Retries,
		RetryWait:        cfg.Search.RetryWait,
		RetryMaxWait:     cfg.Search.RetryMaxWait,
		RetryStatusCodes: cfg.Search.RetryStatusCodes,
	}, logger)

	return &app{
		cfg:    cfg,
		logger: logger,
		store:  st,
		runner: pipeline.New(cfg, f, search, st, logger),
	}, nil
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Collect the top organic articles of every competitor domain",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}

		results, err := a.runner.RunSEOMetrics(cmd.Context())
		if err != nil {
			return err
		}
		renderSearchResults(cmd.OutOrStdout(), results)
		return nil
	},
}

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "Find common blog topics and fetch one representative page per domain",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}

		result, err := a.runner.RunTopics(cmd.Context())
		if err != nil {
			return err
		}
		renderTopics(cmd.OutOrStdout(), result)
		return nil
	},
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [URL]",
	Short: "Extract title, description, H1s and primary keyword of a page",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}

		pageURL, err := urlArg(cmd, args)
		if err != nil {
			return err
		}

		page, err := a.runner.Scrape(cmd.Context(), pageURL)
		if err != nil {
			return err
		}
		if page.Failed() {
			a.logger.Error("❌ scrape failed", "url", page.URL, "err", page.Err)
			return nil
		}
		renderScrapedPage(cmd.OutOrStdout(), page)
		return nil
	},
}

var serpCmd = &cobra.Command{
	Use:   "serp",
	Short: "Look up the top ranking URLs for the scraped primary keyword",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}

		keyword, _ := cmd.Flags().GetString("keyword")
		ranked, err := a.runner.RunSERP(cmd.Context(), keyword)
		if err != nil {
			return err
		}
		renderRankedURLs(cmd.OutOrStdout(), ranked)
		return nil
	},
}

var ctaCmd = &cobra.Command{
	Use:   "cta",
	Short: "Detect calls to action on the representative blog pages",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}

		records, err := a.runner.RunCTA(cmd.Context())
		if err != nil {
			return err
		}
		renderCTARecords(cmd.OutOrStdout(), records)
		return nil
	},
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Serve the ranked URLs and CTA analysis as a web page",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}

		data, err := dashboard.Load(a.store, a.cfg.Dashboard.Keyword)
		if err != nil {
			return err
		}
		router, err := dashboard.NewServer(data, a.logger)
		if err != nil {
			return err
		}

		addr := net.JoinHostPort(a.cfg.Dashboard.Host, strconv.Itoa(a.cfg.Dashboard.Port))
		return dashboard.Serve(cmd.Context(), addr, router, a.logger)
	},
}

var runCmd = &cobra.Command{
	Use:   "run [URL]",
	Short: "Run every stage starting from one page",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}

		pageURL, err := urlArg(cmd, args)
		if err != nil {
			return err
		}

		result, err := a.runner.Run(cmd.Context(), pageURL)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if !result.Scraped.Failed() {
			renderScrapedPage(out, result.Scraped)
		}
		renderRankedURLs(out, result.Ranked)
		renderSearchResults(out, result.Metrics)
		if result.Topics != nil {
			renderTopics(out, result.Topics)
		}
		renderCTARecords(out, result.CTAs)

		if result.Finished {
			a.logger.Info("✅ pipeline complete")
		} else {
			a.logger.Warn("⚠️ pipeline stopped early")
		}
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a report from the ranked URLs and CTA analysis",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")
		keyword, _ := cmd.Flags().GetString("keyword")
		if keyword == "" {
			keyword = a.cfg.Dashboard.Keyword
		}

		data, err := dashboard.Load(a.store, keyword)
		if err != nil {
			return err
		}

		r := reporter.New()
		report, err := r.GenerateReport(r.Build(data.Keyword, data.TopRankingSites, data.CTAData), format)
		if err != nil {
			return fmt.Errorf("report generation failed: %w", err)
		}

		if output != "" {
			if err := os.WriteFile(output, []byte(report), 0644); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}
			a.logger.Info("✅ report saved", "path", output)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), report)
		}
		return nil
	},
}

// urlArg returns the URL argument, prompting for one on stdin when absent
func urlArg(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}

	fmt.Fprint(cmd.OutOrStdout(), "Enter a website URL: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("reading URL: %w", err)
	}
	pageURL := strings.TrimSpace(line)
	if pageURL == "" {
		return "", fmt.Errorf("no URL given")
	}
	return pageURL, nil
}

func newTable(out io.Writer, header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(header)
	t.SetStyle(table.StyleRounded)
	return t
}

func renderScrapedPage(out io.Writer, page models.ScrapedPage) {
	t := newTable(out, table.Row{"Field", "Value"})
	t.AppendRows([]table.Row{
		{"URL", page.URL},
		{"Title", page.Title},
		{"Description", page.Description},
		{"H1", page.H1Text()},
		{"Primary keyword", page.PrimaryKeyword},
		{"Word count", page.WordCount},
	})
	t.Render()
}

func renderRankedURLs(out io.Writer, ranked []models.RankedURL) {
	if len(ranked) == 0 {
		return
	}
	t := newTable(out, table.Row{"Rank", "Title", "URL"})
	for _, r := range ranked {
		t.AppendRow(table.Row{r.Rank, r.Title, r.URL})
	}
	t.Render()
}

func renderSearchResults(out io.Writer, results []models.SearchResult) {
	if len(results) == 0 {
		return
	}
	t := newTable(out, table.Row{"Domain", "Organic Results", "Top Articles"})
	for _, r := range results {
		t.AppendRow(table.Row{r.Domain, r.TotalOrganicResults, store.FormatArticles(r.TopArticles)})
	}
	t.Render()
}

func renderTopics(out io.Writer, result *pipeline.TopicsResult) {
	if len(result.Topics) > 0 {
		t := newTable(out, table.Row{"Topic", "Count"})
		for _, tc := range result.Topics {
			t.AppendRow(table.Row{tc.Term, tc.Count})
		}
		t.Render()
	}

	if len(result.Metadata) == 0 {
		return
	}
	t := newTable(out, table.Row{"Domain", "URL", "Title", "H1", "Meta Description"})
	for _, m := range result.Metadata {
		if m.Status == models.StatusFailed {
			t.AppendRow(table.Row{m.Domain, m.URL, store.NotAvailable, store.NotAvailable, store.NotAvailable})
			continue
		}
		t.AppendRow(table.Row{m.Domain, m.URL, m.Title, m.H1, m.MetaDescription})
	}
	t.Render()
}

func renderCTARecords(out io.Writer, records []models.CTARecord) {
	if len(records) == 0 {
		return
	}
	t := newTable(out, table.Row{"URL", "Header", "Footer", "Body", "Total"})
	for _, r := range records {
		if r.Failed() {
			t.AppendRow(table.Row{r.URL, store.ErrorValue, store.ErrorValue, store.ErrorValue, 0})
			continue
		}
		t.AppendRow(table.Row{r.URL, store.JoinCTAs(r.Header), store.JoinCTAs(r.Footer), store.JoinCTAs(r.Body), r.Total})
	}
	t.Render()
}

func init() {
	// Serp command flags
	serpCmd.Flags().String("keyword", "", "Search this keyword instead of the scraped primary keyword")

	// Report command flags
	reportCmd.Flags().String("format", "json", "Report format ("+strings.Join(reporter.Formats, ", ")+")")
	reportCmd.Flags().String("output", "", "Output file for report")
	reportCmd.Flags().String("keyword", "", "Keyword shown in the report (defaults to dashboard.keyword)")

	// Add commands to root
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(topicsCmd)
	rootCmd.AddCommand(scrapeCmd)
	rootCmd.AddCommand(serpCmd)
	rootCmd.AddCommand(ctaCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(reportCmd)

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "Config file path")
	rootCmd.PersistentFlags().String("data-dir", "", "Directory holding the CSV files (overrides data.dir)")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable verbose output")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
