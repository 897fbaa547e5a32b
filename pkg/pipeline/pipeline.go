package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/amosWeiskopf/seoscout/internal/config"
	"github.com/amosWeiskopf/seoscout/internal/models"
	"github.com/amosWeiskopf/seoscout/pkg/analyzer"
	"github.com/amosWeiskopf/seoscout/pkg/extractor"
	"github.com/amosWeiskopf/seoscout/pkg/fetcher"
	"github.com/amosWeiskopf/seoscout/pkg/serpapi"
	"github.com/amosWeiskopf/seoscout/pkg/store"
	"github.com/amosWeiskopf/seoscout/pkg/topics"
	"github.com/amosWeiskopf/seoscout/pkg/utils"
)

// Searcher runs a query against the search results API
type Searcher interface {
	Search(ctx context.Context, query string, num int) ([]serpapi.OrganicResult, error)
}

// Runner executes the pipeline stages one URL at a time. Each stage takes
// typed records and persists its output through the store.
type Runner struct {
	cfg       *config.Config
	fetcher   fetcher.PageFetcher
	search    Searcher
	store     *store.Store
	extractor *extractor.Extractor
	analyzer  *analyzer.Analyzer
	logger    *log.Logger
}

// New creates a Runner
func New(cfg *config.Config, f fetcher.PageFetcher, s Searcher, st *store.Store, logger *log.Logger) *Runner {
	return &Runner{
		cfg:       cfg,
		fetcher:   f,
		search:    s,
		store:     st,
		extractor: extractor.New(),
		analyzer:  analyzer.New(),
		logger:    logger,
	}
}

// TopicsResult is the output of the blog topic aggregator
type TopicsResult struct {
	Topics   []utils.TermCount
	Metadata []models.BlogMetadata
}

// SEOMetrics looks up the organic results of each URL's domain and appends
// the successful lookups to the SEO audit file. Failed lookups are skipped.
func (r *Runner) SEOMetrics(ctx context.Context, urls []string) ([]models.SearchResult, error) {
	var results []models.SearchResult
	for _, u := range urls {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		if u == "" {
			continue
		}

		domain := utils.GetDomainFromURL(u)
		organic, err := r.search.Search(ctx, "site:"+domain, 0)
		if err != nil {
			r.logger.Warn("⚠️ error fetching SEO data", "domain", domain, "err", err)
			continue
		}

		n := min(len(organic), r.cfg.Search.TopArticles)
		articles := make([]models.Article, n)
		for i, res := range organic[:n] {
			articles[i] = models.Article{Title: res.Title, URL: res.Link}
		}
		results = append(results, models.SearchResult{
			Domain:              domain,
			TotalOrganicResults: len(organic),
			TopArticles:         articles,
		})
	}

	if len(results) == 0 {
		r.logger.Warn("⚠️ no SEO data collected")
		return nil, nil
	}
	if err := r.store.AppendSearchResults(results); err != nil {
		return results, fmt.Errorf("saving SEO audit: %w", err)
	}
	r.logger.Info("✅ SEO audit data saved", "path", r.store.SEOAuditPath(), "domains", len(results))
	return results, nil
}

// RunSEOMetrics runs SEOMetrics over the competitor URLs of the ranked URL
// file. An unreadable file leaves nothing to do.
func (r *Runner) RunSEOMetrics(ctx context.Context) ([]models.SearchResult, error) {
	urls, err := r.store.ReadCompetitorURLs()
	if err != nil {
		r.logger.Warn("⚠️ failed to read URLs", "path", r.store.TopURLsPath(), "err", err)
		urls = nil
	}
	return r.SEOMetrics(ctx, urls)
}

// Topics finds the most common title terms of the articles, keeps the first
// matching article per domain and fetches its metadata. The blog metadata
// file is replaced with the result.
func (r *Runner) Topics(ctx context.Context, articles []models.Article) (*TopicsResult, error) {
	top := topics.Top(articles, r.cfg.Topics.TopN)
	terms := topics.Terms(top)
	r.logger.Info("🔍 common blog topics", "topics", terms)

	reps := topics.Representatives(topics.Filter(articles, terms), topics.Dedup(r.cfg.Topics.Dedup))
	metadata := make([]models.BlogMetadata, 0, len(reps))
	for _, rep := range reps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		metadata = append(metadata, r.blogMetadata(ctx, rep))
	}

	if err := r.store.WriteBlogMetadata(metadata); err != nil {
		return nil, fmt.Errorf("saving blog metadata: %w", err)
	}
	r.logger.Info("✅ metadata extraction complete", "path", r.store.BlogMetadataPath(), "urls", len(metadata))
	return &TopicsResult{Topics: top, Metadata: metadata}, nil
}

// RunTopics runs Topics over the articles of the SEO audit file. A missing
// file or column leaves an empty working set.
func (r *Runner) RunTopics(ctx context.Context) (*TopicsResult, error) {
	blobs, err := r.store.ReadArticleBlobs()
	if err != nil {
		r.logger.Warn("⚠️ SEO audit file not found or invalid", "path", r.store.SEOAuditPath(), "err", err)
		blobs = nil
	}
	return r.Topics(ctx, topics.ParseAll(blobs))
}

func (r *Runner) blogMetadata(ctx context.Context, rep models.BlogMetadata) models.BlogMetadata {
	page, err := r.fetcher.Fetch(ctx, rep.URL, r.cfg.Crawler.PageTimeout)
	if err != nil {
		r.logger.Warn("⚠️ metadata fetch failed", "url", rep.URL, "err", err)
		rep.Status, rep.Err = models.StatusFailed, err
		return rep
	}

	md, err := r.extractor.ExtractMetadata(page.Body)
	if err != nil {
		r.logger.Warn("⚠️ metadata extraction failed", "url", rep.URL, "err", err)
		rep.Status, rep.Err = models.StatusFailed, err
		return rep
	}

	rep.Title, rep.H1, rep.MetaDescription = md.Title, md.H1, md.MetaDescription
	rep.Status = models.StatusOK
	return rep
}

// Scrape fetches and summarizes one page. A fetch failure is reported in the
// returned page and is not persisted; the error is only set when saving a
// successful scrape fails.
func (r *Runner) Scrape(ctx context.Context, pageURL string) (models.ScrapedPage, error) {
	scraped := models.ScrapedPage{URL: pageURL}

	page, err := r.fetcher.Fetch(ctx, pageURL, r.cfg.Crawler.ScrapeTimeout)
	if err == nil && !page.OK() {
		err = fmt.Errorf("unexpected status %d", page.StatusCode)
	}
	if err != nil {
		scraped.Err = fmt.Errorf("failed to fetch (%w)", err)
		return scraped, nil
	}

	summary, err := r.extractor.Summarize(page.Body)
	if err != nil {
		scraped.Err = err
		return scraped, nil
	}
	scraped.Title = summary.Title
	scraped.Description = summary.Description
	scraped.H1 = summary.H1
	scraped.PrimaryKeyword = summary.PrimaryKeyword
	scraped.WordCount = summary.WordCount

	if err := r.store.AppendScrapedPage(scraped); err != nil {
		return scraped, fmt.Errorf("saving scraped data: %w", err)
	}
	r.logger.Info("✅ data saved", "path", r.store.ScrapedDataPath())
	return scraped, nil
}

// SERP queries the search API for keyword and appends the ranked results
// to the ranked URL file.
func (r *Runner) SERP(ctx context.Context, keyword string) ([]models.RankedURL, error) {
	r.logger.Info("🔍 searching for keyword", "keyword", keyword)

	organic, err := r.search.Search(ctx, keyword, r.cfg.Search.SERPResults)
	if err != nil && !errors.Is(err, serpapi.ErrNoResults) {
		r.logger.Warn("⚠️ failed to fetch search results", "err", err)
	}
	if len(organic) == 0 {
		r.logger.Warn("⚠️ no results found", "keyword", keyword)
		return nil, nil
	}

	ranked := make([]models.RankedURL, len(organic))
	for i, res := range organic {
		ranked[i] = models.RankedURL{Rank: i + 1, Title: res.Title, URL: res.Link}
	}
	if err := r.store.AppendRankedURLs(ranked); err != nil {
		return ranked, fmt.Errorf("saving ranked URLs: %w", err)
	}
	r.logger.Info("✅ results exported", "path", r.store.TopURLsPath(), "results", len(ranked))
	return ranked, nil
}

// RunSERP runs SERP for keyword, or for the primary keyword of the first
// scraped page when keyword is empty.
func (r *Runner) RunSERP(ctx context.Context, keyword string) ([]models.RankedURL, error) {
	if keyword == "" {
		kw, err := r.store.ReadPrimaryKeyword()
		if err != nil {
			r.logger.Warn("⚠️ failed to read keyword", "path", r.store.ScrapedDataPath(), "err", err)
		}
		keyword = kw
	}
	if keyword == "" {
		r.logger.Warn("⚠️ no primary keyword found in scraped data")
		return nil, nil
	}
	return r.SERP(ctx, keyword)
}

// CTA analyzes the calls to action of each URL and replaces the CTA
// analysis file. A page that cannot be fetched or parsed gets a failed
// record.
func (r *Runner) CTA(ctx context.Context, urls []string) ([]models.CTARecord, error) {
	records := make([]models.CTARecord, 0, len(urls))
	for _, u := range urls {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		records = append(records, r.analyzeCTAs(ctx, u))
	}

	if err := r.store.WriteCTARecords(records); err != nil {
		return records, fmt.Errorf("saving CTA analysis: %w", err)
	}
	r.logger.Info("✅ CTA extraction completed", "path", r.store.CTAAnalysisPath(), "urls", len(records))
	return records, nil
}

// RunCTA runs CTA over the blog metadata URLs. Unlike the other stages a
// missing input file or URL column is an error.
func (r *Runner) RunCTA(ctx context.Context) ([]models.CTARecord, error) {
	urls, err := r.store.ReadBlogMetadataURLs()
	if err != nil {
		return nil, fmt.Errorf("reading blog metadata: %w", err)
	}
	return r.CTA(ctx, urls)
}

func (r *Runner) analyzeCTAs(ctx context.Context, pageURL string) models.CTARecord {
	page, err := r.fetcher.Fetch(ctx, pageURL, r.cfg.Crawler.PageTimeout)
	if err != nil {
		r.logger.Warn("⚠️ CTA fetch failed", "url", pageURL, "err", err)
		return analyzer.Failed(pageURL, err)
	}

	record, err := r.analyzer.Analyze(pageURL, page.Body)
	if err != nil {
		r.logger.Warn("⚠️ CTA analysis failed", "url", pageURL, "err", err)
		return analyzer.Failed(pageURL, err)
	}
	r.logger.Debug("analyzed CTAs", "url", pageURL, "total", record.Total)
	return record
}

// Result is the output of a full pipeline run
type Result struct {
	Scraped  models.ScrapedPage
	Ranked   []models.RankedURL
	Metrics  []models.SearchResult
	Topics   *TopicsResult
	CTAs     []models.CTARecord
	Finished bool
}

// Run chains scrape, SERP, SEO metrics, topics and CTA analysis starting
// from pageURL. A stage that produces nothing ends the run early without an
// error; Finished reports whether every stage ran.
func (r *Runner) Run(ctx context.Context, pageURL string) (*Result, error) {
	result := &Result{}

	scraped, err := r.Scrape(ctx, pageURL)
	result.Scraped = scraped
	if err != nil {
		return result, err
	}
	if scraped.Failed() {
		r.logger.Error("❌ scrape failed", "url", pageURL, "err", scraped.Err)
		return result, nil
	}

	if result.Ranked, err = r.SERP(ctx, scraped.PrimaryKeyword); err != nil {
		return result, err
	}
	if len(result.Ranked) == 0 {
		return result, nil
	}

	urls := make([]string, len(result.Ranked))
	for i, u := range result.Ranked {
		urls[i] = u.URL
	}
	if result.Metrics, err = r.SEOMetrics(ctx, urls); err != nil {
		return result, err
	}
	if len(result.Metrics) == 0 {
		return result, nil
	}

	var articles []models.Article
	for _, m := range result.Metrics {
		// same parse as reading the audit file back
		articles = append(articles, topics.ParseArticles(store.FormatArticles(m.TopArticles))...)
	}
	if result.Topics, err = r.Topics(ctx, articles); err != nil {
		return result, err
	}
	if len(result.Topics.Metadata) == 0 {
		r.logger.Warn("⚠️ no blog URLs matched the common topics")
		return result, nil
	}

	metaURLs := make([]string, len(result.Topics.Metadata))
	for i, m := range result.Topics.Metadata {
		metaURLs[i] = m.URL
	}
	if result.CTAs, err = r.CTA(ctx, metaURLs); err != nil {
		return result, err
	}
	result.Finished = true
	return result, nil
}
