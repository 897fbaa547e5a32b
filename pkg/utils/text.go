package utils

import (
	"net"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// English stop words (the NLTK corpus list)
var stopWords = makeSet(
	"i", "me", "my", "myself", "we", "our", "ours", "ourselves", "you", "you're",
	"you've", "you'll", "you'd", "your", "yours", "yourself", "yourselves", "he",
	"him", "his", "himself", "she", "she's", "her", "hers", "herself", "it", "it's",
	"its", "itself", "they", "them", "their", "theirs", "themselves", "what",
	"which", "who", "whom", "this", "that", "that'll", "these", "those", "am", "is",
	"are", "was", "were", "be", "been", "being", "have", "has", "had", "having",
	"do", "does", "did", "doing", "a", "an", "the", "and", "but", "if", "or",
	"because", "as", "until", "while", "of", "at", "by", "for", "with", "about",
	"against", "between", "into", "through", "during", "before", "after", "above",
	"below", "to", "from", "up", "down", "in", "out", "on", "off", "over", "under",
	"again", "further", "then", "once", "here", "there", "when", "where", "why",
	"how", "all", "any", "both", "each", "few", "more", "most", "other", "some",
	"such", "no", "nor", "not", "only", "own", "same", "so", "than", "too", "very",
	"s", "t", "can", "will", "just", "don", "don't", "should", "should've", "now",
	"d", "ll", "m", "o", "re", "ve", "y", "ain", "aren", "aren't", "couldn",
	"couldn't", "didn", "didn't", "doesn", "doesn't", "hadn", "hadn't", "hasn",
	"hasn't", "haven", "haven't", "isn", "isn't", "ma", "mightn", "mightn't",
	"mustn", "mustn't", "needn", "needn't", "shan", "shan't", "shouldn",
	"shouldn't", "wasn", "wasn't", "weren", "weren't", "won", "won't", "wouldn",
	"wouldn't",
)

// Words that show up in blog titles without saying anything about the topic
var titleNoise = makeSet("blog", "post", "guide", "top", "best", "how", "why")

var wordRegex = regexp.MustCompile(`[\p{L}\p{N}_]+`)

func makeSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

// IsStopWord reports whether word is an English stop word
func IsStopWord(word string) bool {
	return stopWords[word]
}

// Tokenize lowercases text and splits it into word tokens
func Tokenize(text string) []string {
	return wordRegex.FindAllString(strings.ToLower(text), -1)
}

// TitleTerms returns the topic-bearing tokens of a title
func TitleTerms(title string) []string {
	tokens := Tokenize(title)
	terms := tokens[:0]
	for _, tok := range tokens {
		if stopWords[tok] || titleNoise[tok] {
			continue
		}
		terms = append(terms, tok)
	}
	return terms
}

// TermCount is a term and the number of times it was seen
type TermCount struct {
	Term  string `json:"term" yaml:"term"`
	Count int    `json:"count" yaml:"count"`
}

// TopTerms counts the topic terms of all titles and returns the limit most
// frequent ones. Ties keep the order in which terms were first seen.
func TopTerms(titles []string, limit int) []TermCount {
	counts := make(map[string]int)
	var order []string
	for _, title := range titles {
		for _, term := range TitleTerms(title) {
			if counts[term] == 0 {
				order = append(order, term)
			}
			counts[term]++
		}
	}

	sorted := make([]TermCount, 0, len(order))
	for _, term := range order {
		sorted = append(sorted, TermCount{Term: term, Count: counts[term]})
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Count > sorted[j].Count
	})

	if limit >= 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

// GetDomainFromURL returns the text after the last "//" up to the next "/".
// The scheme is not validated and ports are kept.
func GetDomainFromURL(rawURL string) string {
	parts := strings.Split(rawURL, "//")
	rest := parts[len(parts)-1]
	if idx := strings.Index(rest, "/"); idx >= 0 {
		rest = rest[:idx]
	}
	return rest
}

// HostOf returns the network location of a URL, port included, or "" if the
// URL does not parse.
func HostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}

// SiteOf returns the registrable domain (eTLD+1) of a URL. Hosts without one,
// such as IP addresses or localhost, are returned unchanged.
func SiteOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := u.Hostname()
	if net.ParseIP(host) != nil {
		return host
	}
	site, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return site
}
