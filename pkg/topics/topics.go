package topics

import (
	"regexp"
	"strings"

	"github.com/amosWeiskopf/seoscout/internal/models"
	"github.com/amosWeiskopf/seoscout/pkg/utils"
)

// articleLine matches a serialized "title (url)" line. Titles containing
// " (http" are split at the first occurrence.
var articleLine = regexp.MustCompile(`^(.+?) \((https?://[^\s)]+)\)`)

// Dedup selects how representative URLs are grouped
type Dedup string

const (
	// DedupHost keeps one URL per network location, port included
	DedupHost Dedup = "host"
	// DedupSite keeps one URL per registrable domain
	DedupSite Dedup = "site"
)

// ParseArticles extracts the articles of a "Top Articles" blob. Lines that
// are not "title (url)" are dropped.
func ParseArticles(blob string) []models.Article {
	var articles []models.Article
	for _, line := range strings.Split(blob, "\n") {
		m := articleLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		articles = append(articles, models.Article{Title: m[1], URL: m[2]})
	}
	return articles
}

// ParseAll parses every blob in order
func ParseAll(blobs []string) []models.Article {
	var articles []models.Article
	for _, blob := range blobs {
		articles = append(articles, ParseArticles(blob)...)
	}
	return articles
}

// Top returns the n most frequent topic terms across the article titles
func Top(articles []models.Article, n int) []utils.TermCount {
	titles := make([]string, len(articles))
	for i, a := range articles {
		titles[i] = a.Title
	}
	return utils.TopTerms(titles, n)
}

// Terms returns the term of each count
func Terms(counts []utils.TermCount) []string {
	terms := make([]string, len(counts))
	for i, c := range counts {
		terms[i] = c.Term
	}
	return terms
}

// Filter keeps the articles whose lowercased title contains any of the terms
// as a substring.
func Filter(articles []models.Article, terms []string) []models.Article {
	var out []models.Article
	for _, a := range articles {
		title := strings.ToLower(a.Title)
		for _, term := range terms {
			if strings.Contains(title, term) {
				out = append(out, a)
				break
			}
		}
	}
	return out
}

// Representatives keeps the first article of every domain, in input order.
// Articles whose URL has no host are skipped.
func Representatives(articles []models.Article, dedup Dedup) []models.BlogMetadata {
	key := utils.HostOf
	if dedup == DedupSite {
		key = utils.SiteOf
	}

	seen := make(map[string]bool)
	var out []models.BlogMetadata
	for _, a := range articles {
		domain := key(a.URL)
		if domain == "" || seen[domain] {
			continue
		}
		seen[domain] = true
		out = append(out, models.BlogMetadata{Domain: domain, URL: a.URL})
	}
	return out
}
