package extractor

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"

	"github.com/amosWeiskopf/seoscout/pkg/keywords"
)

// Placeholders used by the content scraper when a tag is missing
const (
	NoTitle       = "No Title"
	NoDescription = "No Description"
	NoH1          = "No H1 Tags"
	NoKeyword     = "No Keyword Found"
)

// ErrDescriptionContent is returned when a description meta tag has no
// content attribute
var ErrDescriptionContent = errors.New("meta description has no content attribute")

// Metadata holds the head-level SEO tags of a page. Empty fields mean the tag
// was absent.
type Metadata struct {
	Title           string
	H1              string
	MetaDescription string
}

// PageSummary is what the content scraper keeps of a page
type PageSummary struct {
	Title          string
	Description    string
	H1             []string
	PrimaryKeyword string
	WordCount      int
}

// Extractor handles content extraction from HTML
type Extractor struct{}

// New creates a new Extractor instance
func New() *Extractor {
	return &Extractor{}
}

// ExtractMetadata returns the first <title>, the first <h1> and the
// description meta tag, each trimmed.
func (e *Extractor) ExtractMetadata(body []byte) (Metadata, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Metadata{}, fmt.Errorf("parsing HTML: %w", err)
	}

	var md Metadata
	if title := doc.Find("title").First(); title.Length() > 0 {
		md.Title = strings.TrimSpace(title.Text())
	}
	if h1 := doc.Find("h1").First(); h1.Length() > 0 {
		md.H1 = strings.TrimSpace(h1.Text())
	}
	if meta := doc.Find(`meta[name="description"]`).First(); meta.Length() > 0 {
		content, ok := meta.Attr("content")
		if !ok {
			return Metadata{}, ErrDescriptionContent
		}
		md.MetaDescription = strings.TrimSpace(content)
	}
	return md, nil
}

// Summarize extracts the title, description, H1 texts and primary keyword of
// a page, substituting the No* placeholders for missing tags.
func (e *Extractor) Summarize(body []byte) (PageSummary, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return PageSummary{}, fmt.Errorf("parsing HTML: %w", err)
	}

	summary := PageSummary{
		Title:       NoTitle,
		Description: NoDescription,
	}

	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		summary.Title = title
	}

	if content, ok := doc.Find(`meta[name="description"]`).First().Attr("content"); ok && content != "" {
		summary.Description = strings.TrimSpace(content)
	}

	doc.Find("h1").Each(func(_ int, s *goquery.Selection) {
		summary.H1 = append(summary.H1, strippedText(s.Nodes[0]))
	})
	if len(summary.H1) == 0 {
		summary.H1 = []string{NoH1}
	}

	summary.PrimaryKeyword = NoKeyword
	if kw, ok := keywords.Top(summary.Title + " " + summary.Description); ok {
		summary.PrimaryKeyword = kw
	}

	summary.WordCount = e.WordCount(body)
	return summary, nil
}

// WordCount counts the words of the page's main content, 0 if none could
// be extracted.
func (e *Extractor) WordCount(body []byte) int {
	result, err := trafilatura.Extract(bytes.NewReader(body), trafilatura.Options{})
	if err != nil || result == nil {
		return 0
	}
	return len(strings.Fields(result.ContentText))
}

// strippedText joins the trimmed text nodes under n, skipping empty ones.
func strippedText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(strings.TrimSpace(n.Data))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
