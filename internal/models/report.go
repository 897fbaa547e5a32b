package models

import "time"

// Report is the competitor summary rendered by the report command
type Report struct {
	Keyword         string      `json:"keyword" yaml:"keyword"`
	GeneratedAt     time.Time   `json:"generated_at" yaml:"generated_at"`
	Summary         Summary     `json:"summary" yaml:"summary"`
	TopRankingSites []RankedURL `json:"top_ranking_sites" yaml:"top_ranking_sites"`
	CTAs            []CTARecord `json:"ctas" yaml:"ctas"`
}

// Summary aggregates the CTA analysis across pages
type Summary struct {
	RankedSites   int        `json:"ranked_sites" yaml:"ranked_sites"`
	PagesAnalyzed int        `json:"pages_analyzed" yaml:"pages_analyzed"`
	PagesFailed   int        `json:"pages_failed" yaml:"pages_failed"`
	TotalCTAs     int        `json:"total_ctas" yaml:"total_ctas"`
	TopCTAs       []CTACount `json:"top_ctas" yaml:"top_ctas"`
}

// CTACount is a CTA text and the number of pages using it
type CTACount struct {
	Text  string `json:"text" yaml:"text"`
	Pages int    `json:"pages" yaml:"pages"`
}
