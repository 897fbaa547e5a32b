package analyzer

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/amosWeiskopf/seoscout/internal/models"
)

// DefaultKeywords are the phrases that mark an element text as a call to action
var DefaultKeywords = []string{
	"buy", "shop", "subscribe", "sign up", "get started", "learn more",
	"add to cart", "start free", "discover", "explore", "join", "book now", "order",
}

// elementScan lists the scanned tags from lowest to highest precedence. When
// the same text appears under several tags, the last tag in this list that
// holds it names the element kind; the text keeps its first-seen position.
var elementScan = []struct {
	tag     string
	element models.Element
}{
	{"button", models.ElementButton},
	{"a", models.ElementLink},
	{"span", models.ElementSpan},
	{"div", models.ElementDiv},
}

var (
	headerTags = []string{"nav", "header"}
	footerTags = []string{"footer"}
)

// Analyzer detects calls to action on a page
type Analyzer struct {
	config   *Config
	patterns []*regexp.Regexp
}

// Config holds analyzer configuration
type Config struct {
	Keywords []string
}

// New creates an Analyzer using DefaultKeywords
func New() *Analyzer {
	return NewWithConfig(&Config{Keywords: DefaultKeywords})
}

// NewWithConfig creates an Analyzer with custom configuration
func NewWithConfig(config *Config) *Analyzer {
	patterns := make([]*regexp.Regexp, 0, len(config.Keywords))
	for _, kw := range config.Keywords {
		patterns = append(patterns, wholeWord(kw))
	}
	return &Analyzer{config: config, patterns: patterns}
}

// wholeWord compiles a case-insensitive pattern for a literal text with a
// word boundary at each end. Word characters are Unicode letters, digits
// and underscore.
func wholeWord(text string) *regexp.Regexp {
	first, _ := utf8.DecodeRuneInString(text)
	last, _ := utf8.DecodeLastRuneInString(text)

	lead := `(?:^|[^\p{L}\p{N}_])`
	if !isWordRune(first) {
		lead = `[\p{L}\p{N}_]`
	}
	trail := `(?:$|[^\p{L}\p{N}_])`
	if !isWordRune(last) {
		trail = `[\p{L}\p{N}_]`
	}
	return regexp.MustCompile(`(?i)` + lead + regexp.QuoteMeta(text) + trail)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

// IsCTA reports whether text contains any keyword as a whole word
func (a *Analyzer) IsCTA(text string) bool {
	for _, p := range a.patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// Analyze finds the calls to action in an HTML document.
//
// Every CTA is reported in Body, including the ones also placed in Header
// or Footer.
func (a *Analyzer) Analyze(pageURL string, body []byte) (models.CTARecord, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return models.CTARecord{}, fmt.Errorf("parsing HTML: %w", err)
	}

	var ctas []models.CTA
	for _, c := range collectTexts(doc) {
		if a.IsCTA(c.Text) {
			ctas = append(ctas, c)
		}
	}

	headerStrings := soleStrings(doc, headerTags)
	footerStrings := soleStrings(doc, footerTags)

	record := models.CTARecord{
		URL:    pageURL,
		Status: models.StatusOK,
		Common: ctas,
		Body:   append([]models.CTA(nil), ctas...),
		Total:  len(ctas),
	}
	for _, c := range ctas {
		p := wholeWord(c.Text)
		if anyMatch(p, headerStrings) {
			record.Header = append(record.Header, c)
		}
		if anyMatch(p, footerStrings) {
			record.Footer = append(record.Footer, c)
		}
	}
	return record, nil
}

// Failed builds the record of a page that could not be analyzed
func Failed(pageURL string, err error) models.CTARecord {
	return models.CTARecord{
		URL:    pageURL,
		Status: models.StatusFailed,
		Err:    err,
	}
}

// collectTexts returns the trimmed, non-empty text of every scanned element,
// deduplicated by text.
func collectTexts(doc *goquery.Document) []models.CTA {
	var order []string
	kinds := make(map[string]models.Element)

	for _, scan := range elementScan {
		doc.Find(scan.tag).Each(func(_ int, s *goquery.Selection) {
			if inTemplate(s.Nodes[0]) {
				return
			}
			text := strings.TrimSpace(elementText(s.Nodes[0]))
			if text == "" {
				return
			}
			if _, seen := kinds[text]; !seen {
				order = append(order, text)
			}
			kinds[text] = scan.element
		})
	}

	out := make([]models.CTA, len(order))
	for i, text := range order {
		out[i] = models.CTA{Text: text, Element: kinds[text]}
	}
	return out
}

// elementText concatenates the text nodes under n. Script, style and
// template contents are not page text and are left out.
func elementText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			b.WriteString(n.Data)
			return
		case n.Type == html.ElementNode && skipText(n.DataAtom):
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func skipText(a atom.Atom) bool {
	return a == atom.Script || a == atom.Style || a == atom.Template
}

// inTemplate reports whether n is template content, which has no page text
func inTemplate(n *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && p.DataAtom == atom.Template {
			return true
		}
	}
	return false
}

// soleStrings returns the sole string of each element named in tags that
// has one.
func soleStrings(doc *goquery.Document, tags []string) []string {
	var out []string
	doc.Find(strings.Join(tags, ", ")).Each(func(_ int, s *goquery.Selection) {
		if str, ok := soleString(s.Nodes[0]); ok {
			out = append(out, str)
		}
	})
	return out
}

// soleString follows a chain of only-children down to a single text node.
// An element with any other shape of children has no sole string.
func soleString(n *html.Node) (string, bool) {
	child := n.FirstChild
	if child == nil || child.NextSibling != nil {
		return "", false
	}
	switch child.Type {
	case html.TextNode, html.CommentNode:
		return child.Data, true
	case html.ElementNode:
		return soleString(child)
	default:
		return "", false
	}
}

func anyMatch(p *regexp.Regexp, texts []string) bool {
	for _, t := range texts {
		if p.MatchString(t) {
			return true
		}
	}
	return false
}
