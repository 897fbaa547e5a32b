package models

import "strings"

// FetchStatus tags whether a page was fetched and parsed.
type FetchStatus string

const (
	StatusOK     FetchStatus = "ok"
	StatusFailed FetchStatus = "failed"
)

// ScrapedPage is the result of scraping a single arbitrary URL
type ScrapedPage struct {
	URL            string   `json:"url" yaml:"url"`
	Title          string   `json:"title" yaml:"title"`
	Description    string   `json:"description" yaml:"description"`
	H1             []string `json:"h1" yaml:"h1"`
	PrimaryKeyword string   `json:"primary_keyword" yaml:"primary_keyword"`
	WordCount      int      `json:"word_count" yaml:"word_count"`
	Err            error    `json:"-" yaml:"-"`
}

// Failed reports whether the page could not be fetched.
func (p ScrapedPage) Failed() bool {
	return p.Err != nil
}

// H1Text joins the page's H1 texts the way they are persisted.
func (p ScrapedPage) H1Text() string {
	return strings.Join(p.H1, "; ")
}

// BlogMetadata describes the representative blog URL kept for one domain.
// Empty Title, H1 or MetaDescription mean the tag was absent.
type BlogMetadata struct {
	Domain          string      `json:"domain" yaml:"domain"`
	URL             string      `json:"url" yaml:"url"`
	Title           string      `json:"title" yaml:"title"`
	H1              string      `json:"h1" yaml:"h1"`
	MetaDescription string      `json:"meta_description" yaml:"meta_description"`
	Status          FetchStatus `json:"status" yaml:"status"`
	Err             error       `json:"-" yaml:"-"`
}
