package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amosWeiskopf/seoscout/internal/config"
	"github.com/amosWeiskopf/seoscout/internal/logging"
	"github.com/amosWeiskopf/seoscout/internal/models"
	"github.com/amosWeiskopf/seoscout/pkg/fetcher"
	"github.com/amosWeiskopf/seoscout/pkg/serpapi"
	"github.com/amosWeiskopf/seoscout/pkg/store"
)

// fakeSearch answers queries from a fixed table; unknown queries fail
type fakeSearch struct {
	results map[string][]serpapi.OrganicResult
	queries []string
	nums    []int
}

func (f *fakeSearch) Search(_ context.Context, query string, num int) ([]serpapi.OrganicResult, error) {
	f.queries = append(f.queries, query)
	f.nums = append(f.nums, num)
	res, ok := f.results[query]
	if !ok {
		return nil, fmt.Errorf("search %q: connection refused", query)
	}
	if len(res) == 0 {
		return nil, serpapi.ErrNoResults
	}
	return res, nil
}

type testEnv struct {
	runner *Runner
	store  *store.Store
	search *fakeSearch
	server *httptest.Server
}

// newTestEnv serves pages by path. Paths starting with /slow hang past the
// page timeout.
func newTestEnv(t *testing.T, pages map[string]string) *testEnv {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/slow") {
			select {
			case <-time.After(2 * time.Second):
			case <-r.Context().Done():
			}
			return
		}
		body, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, body)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	cfg := config.Default()
	cfg.Data.Dir = filepath.Join(t.TempDir(), "data")
	cfg.Crawler.PageTimeout = 300 * time.Millisecond
	cfg.Crawler.ScrapeTimeout = 300 * time.Millisecond

	logger := logging.Discard()
	st := store.New(cfg.Data)
	search := &fakeSearch{results: map[string][]serpapi.OrganicResult{}}
	f := fetcher.New(fetcher.Options{UserAgent: cfg.Crawler.UserAgent}, logger)

	return &testEnv{
		runner: New(cfg, f, search, st, logger),
		store:  st,
		search: search,
		server: server,
	}
}

func (e *testEnv) url(path string) string {
	return e.server.URL + path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

const landingPage = `<html><head>
<title>Running Shoes Store</title>
<meta name="description" content="Buy running shoes online">
</head><body><h1>Running Shoes</h1></body></html>`

func TestScrape(t *testing.T) {
	env := newTestEnv(t, map[string]string{"/": landingPage})

	page, err := env.runner.Scrape(context.Background(), env.url("/"))
	require.NoError(t, err)
	require.False(t, page.Failed())

	assert.Equal(t, "Running Shoes Store", page.Title)
	assert.Equal(t, "Buy running shoes online", page.Description)
	assert.Equal(t, []string{"Running Shoes"}, page.H1)
	assert.NotEqual(t, "No Keyword Found", page.PrimaryKeyword)

	kw, err := env.store.ReadPrimaryKeyword()
	require.NoError(t, err)
	assert.Equal(t, page.PrimaryKeyword, kw)
}

func TestScrapeFailureIsNotPersisted(t *testing.T) {
	env := newTestEnv(t, nil)

	page, err := env.runner.Scrape(context.Background(), env.url("/missing"))
	require.NoError(t, err)
	assert.True(t, page.Failed())
	assert.Contains(t, page.Err.Error(), "404")

	_, statErr := os.Stat(env.store.ScrapedDataPath())
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestSERPAppendsTwiceWithOneHeader(t *testing.T) {
	env := newTestEnv(t, nil)
	env.search.results["running shoes"] = []serpapi.OrganicResult{
		{Title: "Shoe A", Link: "https://a.com/shoes"},
		{Title: "Shoe B", Link: "https://b.com/shoes"},
	}

	for i := 0; i < 2; i++ {
		ranked, err := env.runner.SERP(context.Background(), "running shoes")
		require.NoError(t, err)
		assert.Equal(t, []models.RankedURL{
			{Rank: 1, Title: "Shoe A", URL: "https://a.com/shoes"},
			{Rank: 2, Title: "Shoe B", URL: "https://b.com/shoes"},
		}, ranked)
	}

	content := readFile(t, env.store.TopURLsPath())
	assert.Equal(t, 1, strings.Count(content, "Rank,Title,URL"))
	assert.Equal(t, 2, strings.Count(content, "1,Shoe A,https://a.com/shoes"))
	assert.Equal(t, []int{10, 10}, env.search.nums)

	urls, err := env.store.ReadRankedURLs()
	require.NoError(t, err)
	assert.Len(t, urls, 4)
}

func TestSERPNoResultsWritesNothing(t *testing.T) {
	env := newTestEnv(t, nil)

	ranked, err := env.runner.SERP(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Empty(t, ranked)

	_, statErr := os.Stat(env.store.TopURLsPath())
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestRunSERPReadsScrapedKeyword(t *testing.T) {
	env := newTestEnv(t, nil)
	require.NoError(t, env.store.AppendScrapedPage(models.ScrapedPage{
		URL: "https://example.com", Title: "T", Description: "D", H1: []string{"H"}, PrimaryKeyword: "trail shoes",
	}))
	env.search.results["trail shoes"] = []serpapi.OrganicResult{{Title: "X", Link: "https://x.com"}}

	ranked, err := env.runner.RunSERP(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, ranked, 1)
	assert.Equal(t, []string{"trail shoes"}, env.search.queries)
}

func TestRunSERPWithoutScrapedData(t *testing.T) {
	env := newTestEnv(t, nil)

	ranked, err := env.runner.RunSERP(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, ranked)
	assert.Empty(t, env.search.queries)
}

func TestSEOMetrics(t *testing.T) {
	env := newTestEnv(t, nil)
	var organic []serpapi.OrganicResult
	for i := 1; i <= 7; i++ {
		organic = append(organic, serpapi.OrganicResult{Title: fmt.Sprintf("Post %d", i), Link: fmt.Sprintf("https://a.com/%d", i)})
	}
	env.search.results["site:a.com"] = organic
	env.search.results["site:b.com:8080"] = nil

	results, err := env.runner.SEOMetrics(context.Background(), []string{
		"https://a.com/page",
		"",
		"https://down.com/x",
		"http://b.com:8080/y",
	})
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "a.com", results[0].Domain)
	assert.Equal(t, 7, results[0].TotalOrganicResults)
	assert.Len(t, results[0].TopArticles, 5)
	assert.Equal(t, []string{"site:a.com", "site:down.com", "site:b.com:8080"}, env.search.queries)

	blobs, err := env.store.ReadArticleBlobs()
	require.NoError(t, err)
	require.Len(t, blobs, 1)
	assert.True(t, strings.HasPrefix(blobs[0], "Post 1 (https://a.com/1)\nPost 2"))
}

func TestRunSEOMetricsMissingInput(t *testing.T) {
	env := newTestEnv(t, nil)

	results, err := env.runner.RunSEOMetrics(context.Background())
	require.NoError(t, err)
	assert.Empty(t, results)

	_, statErr := os.Stat(env.store.SEOAuditPath())
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestTopicsDedupAndFailureIsolation(t *testing.T) {
	env := newTestEnv(t, map[string]string{
		"/seo-basics": `<html><head><title>SEO Basics</title><meta name="description" content="Learn SEO"></head><body><h1>Basics</h1></body></html>`,
	})
	env.runner.cfg.Topics.TopN = 1

	articles := []models.Article{
		{Title: "SEO Basics", URL: env.url("/seo-basics")},
		{Title: "SEO Advanced", URL: env.url("/seo-advanced")},
		// a different host string for the same server, hanging past the timeout
		{Title: "SEO timeouts", URL: strings.Replace(env.url("/slow"), "127.0.0.1", "localhost", 1)},
		{Title: "Baking bread", URL: "http://unused.invalid/bread"},
	}

	result, err := env.runner.Topics(context.Background(), articles)
	require.NoError(t, err)

	assert.Equal(t, "seo", result.Topics[0].Term)
	require.Len(t, result.Metadata, 2)

	first := result.Metadata[0]
	assert.Equal(t, env.url("/seo-basics"), first.URL)
	assert.Equal(t, models.StatusOK, first.Status)
	assert.Equal(t, "SEO Basics", first.Title)
	assert.Equal(t, "Basics", first.H1)
	assert.Equal(t, "Learn SEO", first.MetaDescription)

	assert.Equal(t, models.StatusFailed, result.Metadata[1].Status)

	content := readFile(t, env.store.BlogMetadataPath())
	assert.Contains(t, content, env.url("/seo-basics")+",SEO Basics,Basics,Learn SEO\n")
	assert.NotContains(t, content, "/seo-advanced")
	assert.NotContains(t, content, "bread")
	assert.Contains(t, content, ",N/A,N/A,N/A\n")
}

func TestRunTopicsMissingAuditFile(t *testing.T) {
	env := newTestEnv(t, nil)

	result, err := env.runner.RunTopics(context.Background())
	require.NoError(t, err)
	assert.Empty(t, result.Metadata)
	assert.Equal(t, "URL,Title,H1,Meta Description\n", readFile(t, env.store.BlogMetadataPath()))
}

const ctaPage = `<html><body>
<nav><a href="/signup">Sign up</a></nav>
<main><button>Buy now</button><p>Read our backup guide</p></main>
<footer><a href="/sub">Subscribe</a></footer>
</body></html>`

func TestCTAFailureIsolationAndIdempotence(t *testing.T) {
	env := newTestEnv(t, map[string]string{"/shop": ctaPage})
	urls := []string{env.url("/slow"), env.url("/shop")}

	records, err := env.runner.CTA(context.Background(), urls)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.True(t, records[0].Failed())
	assert.False(t, records[1].Failed())
	assert.Equal(t, []string{"Buy now", "Sign up", "Subscribe"}, models.Texts(records[1].Common))
	assert.Equal(t, []string{"Sign up"}, models.Texts(records[1].Header))
	assert.Equal(t, []string{"Subscribe"}, models.Texts(records[1].Footer))
	assert.Equal(t, 3, records[1].Total)

	first := readFile(t, env.store.CTAAnalysisPath())
	assert.Contains(t, first, `"Error","Error","Error","Error","0"`)

	_, err = env.runner.CTA(context.Background(), urls)
	require.NoError(t, err)
	assert.Equal(t, first, readFile(t, env.store.CTAAnalysisPath()))
}

func TestRunCTAMissingInputIsAnError(t *testing.T) {
	env := newTestEnv(t, nil)

	_, err := env.runner.RunCTA(context.Background())
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	env := newTestEnv(t, map[string]string{
		"/":          landingPage,
		"/blog/shoe": `<html><head><title>Shoe care</title></head><body><h1>Care</h1><a href="/s">Shop now</a></body></html>`,
	})

	scraped, err := env.runner.Scrape(context.Background(), env.url("/"))
	require.NoError(t, err)
	keyword := scraped.PrimaryKeyword

	competitor := env.url("/competitor")
	domain := strings.TrimPrefix(env.server.URL, "http://")
	env.search.results[keyword] = []serpapi.OrganicResult{{Title: "Competitor", Link: competitor}}
	env.search.results["site:"+domain] = []serpapi.OrganicResult{
		{Title: "Shoe care tips", Link: env.url("/blog/shoe")},
		{Title: "Shoe sizes explained", Link: env.url("/blog/sizes")},
	}

	result, err := env.runner.Run(context.Background(), env.url("/"))
	require.NoError(t, err)
	require.True(t, result.Finished)

	assert.Len(t, result.Ranked, 1)
	require.Len(t, result.Metrics, 1)
	require.Len(t, result.Topics.Metadata, 1)
	assert.Equal(t, "Shoe care", result.Topics.Metadata[0].Title)
	require.Len(t, result.CTAs, 1)
	assert.Equal(t, []string{"Shop now"}, models.Texts(result.CTAs[0].Common))

	for _, path := range []string{
		env.store.ScrapedDataPath(),
		env.store.TopURLsPath(),
		env.store.SEOAuditPath(),
		env.store.BlogMetadataPath(),
		env.store.CTAAnalysisPath(),
	} {
		assert.FileExists(t, path)
	}
}

func TestRunStopsWhenScrapeFails(t *testing.T) {
	env := newTestEnv(t, nil)

	result, err := env.runner.Run(context.Background(), env.url("/missing"))
	require.NoError(t, err)
	assert.False(t, result.Finished)
	assert.True(t, result.Scraped.Failed())
	assert.Empty(t, env.search.queries)
}
