package models

// Article is one organic search result
type Article struct {
	Title string `json:"title" yaml:"title"`
	URL   string `json:"url" yaml:"url"`
}

// SearchResult holds the organic results found for a competitor domain
type SearchResult struct {
	Domain              string    `json:"domain" yaml:"domain"`
	TotalOrganicResults int       `json:"total_organic_results" yaml:"total_organic_results"`
	TopArticles         []Article `json:"top_articles" yaml:"top_articles"`
}

// RankedURL is a SERP entry for a keyword. Rank is the 1-based position in
// the result list returned by the search API.
type RankedURL struct {
	Rank  int    `json:"rank" yaml:"rank"`
	Title string `json:"title" yaml:"title"`
	URL   string `json:"url" yaml:"url"`
}
