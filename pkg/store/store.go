package store

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/amosWeiskopf/seoscout/internal/config"
	"github.com/amosWeiskopf/seoscout/internal/models"
)

// Placeholders written in place of missing values
const (
	NotAvailable = "N/A"
	NoneValue    = "None"
	ErrorValue   = "Error"
)

const listSeparator = "; "

var (
	rankedURLHeader    = []string{"Rank", "Title", "URL"}
	searchResultHeader = []string{"Domain", "Total Organic Results", "Top Articles"}
	blogMetadataHeader = []string{"URL", "Title", "H1", "Meta Description"}
	scrapedPageHeader  = []string{"url", "title", "description", "h1", "primary_keyword"}
	ctaHeader          = []string{"URL", "Common CTAs", "Header CTAs", "Footer CTAs", "Body CTAs", "Total CTAs"}
)

// Store reads and writes the pipeline's CSV files in the data directory
type Store struct {
	files config.DataConfig
}

// New creates a Store for the configured data directory
func New(files config.DataConfig) *Store {
	return &Store{files: files}
}

func (s *Store) path(name string) string {
	return filepath.Join(s.files.Dir, name)
}

// TopURLsPath is the ranked URL file
func (s *Store) TopURLsPath() string { return s.path(s.files.TopURLs) }

// SEOAuditPath is the per-domain search result file
func (s *Store) SEOAuditPath() string { return s.path(s.files.SEOAudit) }

// BlogMetadataPath is the representative blog metadata file
func (s *Store) BlogMetadataPath() string { return s.path(s.files.BlogMetadata) }

// ScrapedDataPath is the content scraper file
func (s *Store) ScrapedDataPath() string { return s.path(s.files.ScrapedData) }

// CTAAnalysisPath is the CTA analysis file
func (s *Store) CTAAnalysisPath() string { return s.path(s.files.CTAAnalysis) }

// AppendRankedURLs appends SERP entries, writing the header only for a new file
func (s *Store) AppendRankedURLs(urls []models.RankedURL) error {
	rows := make([][]string, len(urls))
	for i, u := range urls {
		rows[i] = []string{strconv.Itoa(u.Rank), u.Title, u.URL}
	}
	return appendRows(s.TopURLsPath(), rankedURLHeader, rows, true)
}

// ReadRankedURLs reads every SERP entry in file order
func (s *Store) ReadRankedURLs() ([]models.RankedURL, error) {
	t, err := readTable(s.TopURLsPath())
	if err != nil {
		return nil, err
	}

	rankCol, err := t.column("Rank")
	if err != nil {
		return nil, err
	}
	titleCol, err := t.column("Title")
	if err != nil {
		return nil, err
	}
	urlCol, err := t.column("URL")
	if err != nil {
		return nil, err
	}

	urls := make([]models.RankedURL, 0, len(t.rows))
	for i, row := range t.rows {
		rank, err := strconv.Atoi(cell(row, rankCol))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: invalid rank: %w", s.TopURLsPath(), i+2, err)
		}
		urls = append(urls, models.RankedURL{
			Rank:  rank,
			Title: cell(row, titleCol),
			URL:   cell(row, urlCol),
		})
	}
	return urls, nil
}

// ReadCompetitorURLs returns the URL column (the third field) of the ranked
// URL file, skipping the header, short rows and empty URLs.
func (s *Store) ReadCompetitorURLs() ([]string, error) {
	t, err := readTable(s.TopURLsPath())
	if err != nil {
		return nil, err
	}

	var urls []string
	for _, row := range t.rows {
		if len(row) > 2 && row[2] != "" {
			urls = append(urls, row[2])
		}
	}
	return urls, nil
}

// AppendSearchResults appends per-domain results. Nothing is written, and no
// file is created, when results is empty.
func (s *Store) AppendSearchResults(results []models.SearchResult) error {
	if len(results) == 0 {
		return nil
	}

	rows := make([][]string, len(results))
	for i, r := range results {
		rows[i] = []string{r.Domain, strconv.Itoa(r.TotalOrganicResults), FormatArticles(r.TopArticles)}
	}
	return appendRows(s.SEOAuditPath(), searchResultHeader, rows, true)
}

// ReadArticleBlobs returns the non-empty "Top Articles" cells in file order
func (s *Store) ReadArticleBlobs() ([]string, error) {
	t, err := readTable(s.SEOAuditPath())
	if err != nil {
		return nil, err
	}

	col, err := t.column("Top Articles")
	if err != nil {
		return nil, err
	}

	var blobs []string
	for _, row := range t.rows {
		if blob := cell(row, col); blob != "" {
			blobs = append(blobs, blob)
		}
	}
	return blobs, nil
}

// FormatArticles serializes articles as newline-separated "title (url)" lines
func FormatArticles(articles []models.Article) string {
	lines := make([]string, len(articles))
	for i, a := range articles {
		lines[i] = fmt.Sprintf("%s (%s)", a.Title, a.URL)
	}
	return strings.Join(lines, "\n")
}

// WriteBlogMetadata replaces the blog metadata file. Missing tags and failed
// pages are written as N/A.
func (s *Store) WriteBlogMetadata(records []models.BlogMetadata) error {
	rows := make([][]string, len(records))
	for i, r := range records {
		if r.Status == models.StatusFailed {
			rows[i] = []string{r.URL, NotAvailable, NotAvailable, NotAvailable}
			continue
		}
		rows[i] = []string{r.URL, orNA(r.Title), orNA(r.H1), orNA(r.MetaDescription)}
	}
	return writeRows(s.BlogMetadataPath(), blogMetadataHeader, rows, false)
}

// ReadBlogMetadataURLs returns the non-empty URL cells of the blog metadata file
func (s *Store) ReadBlogMetadataURLs() ([]string, error) {
	t, err := readTable(s.BlogMetadataPath())
	if err != nil {
		return nil, err
	}

	col, err := t.column("URL")
	if err != nil {
		return nil, err
	}

	var urls []string
	for _, row := range t.rows {
		if u := cell(row, col); u != "" {
			urls = append(urls, u)
		}
	}
	return urls, nil
}

// AppendScrapedPage appends a successful scrape, writing the header when the
// file is empty. Failed scrapes are rejected.
func (s *Store) AppendScrapedPage(page models.ScrapedPage) error {
	if page.Failed() {
		return fmt.Errorf("refusing to persist failed scrape of %s: %w", page.URL, page.Err)
	}
	row := []string{page.URL, page.Title, page.Description, page.H1Text(), page.PrimaryKeyword}
	return appendRows(s.ScrapedDataPath(), scrapedPageHeader, [][]string{row}, true)
}

// ReadPrimaryKeyword returns the primary keyword of the first scraped page
func (s *Store) ReadPrimaryKeyword() (string, error) {
	t, err := readTable(s.ScrapedDataPath())
	if err != nil {
		return "", err
	}

	col, err := t.column("primary_keyword")
	if err != nil {
		return "", err
	}
	if len(t.rows) == 0 {
		return "", fmt.Errorf("%s has no rows", s.ScrapedDataPath())
	}
	return cell(t.rows[0], col), nil
}

// WriteCTARecords replaces the CTA analysis file with every field quoted
func (s *Store) WriteCTARecords(records []models.CTARecord) error {
	rows := make([][]string, len(records))
	for i, r := range records {
		if r.Failed() {
			rows[i] = []string{r.URL, ErrorValue, ErrorValue, ErrorValue, ErrorValue, "0"}
			continue
		}
		rows[i] = []string{
			r.URL,
			JoinCTAs(r.Common),
			JoinCTAs(r.Header),
			JoinCTAs(r.Footer),
			JoinCTAs(r.Body),
			strconv.Itoa(r.Total),
		}
	}
	return writeRows(s.CTAAnalysisPath(), ctaHeader, rows, true)
}

// ReadCTARecords reads the CTA analysis file. Rows whose four CTA fields are
// all Error are returned as failed records. Element kinds are not persisted.
func (s *Store) ReadCTARecords() ([]models.CTARecord, error) {
	t, err := readTable(s.CTAAnalysisPath())
	if err != nil {
		return nil, err
	}

	cols := make([]int, len(ctaHeader))
	for i, name := range ctaHeader {
		if cols[i], err = t.column(name); err != nil {
			return nil, err
		}
	}

	records := make([]models.CTARecord, 0, len(t.rows))
	for _, row := range t.rows {
		fields := make([]string, len(cols))
		for i, c := range cols {
			fields[i] = cell(row, c)
		}

		if fields[1] == ErrorValue && fields[2] == ErrorValue && fields[3] == ErrorValue && fields[4] == ErrorValue {
			records = append(records, models.CTARecord{
				URL:    fields[0],
				Status: models.StatusFailed,
				Err:    fmt.Errorf("analysis failed"),
			})
			continue
		}

		total, err := strconv.Atoi(fields[5])
		if err != nil {
			return nil, fmt.Errorf("%s: invalid total for %s: %w", s.CTAAnalysisPath(), fields[0], err)
		}
		records = append(records, models.CTARecord{
			URL:    fields[0],
			Status: models.StatusOK,
			Common: splitOrNone(fields[1]),
			Header: splitOrNone(fields[2]),
			Footer: splitOrNone(fields[3]),
			Body:   splitOrNone(fields[4]),
			Total:  total,
		})
	}
	return records, nil
}

func orNA(s string) string {
	if s == "" {
		return NotAvailable
	}
	return s
}

// JoinCTAs joins CTA texts with "; ", or returns None for an empty list
func JoinCTAs(ctas []models.CTA) string {
	if len(ctas) == 0 {
		return NoneValue
	}
	return strings.Join(models.Texts(ctas), listSeparator)
}

func splitOrNone(field string) []models.CTA {
	if field == NoneValue || field == "" {
		return nil
	}
	parts := strings.Split(field, listSeparator)
	ctas := make([]models.CTA, len(parts))
	for i, p := range parts {
		ctas[i] = models.CTA{Text: p}
	}
	return ctas
}
