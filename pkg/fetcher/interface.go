package fetcher

import (
	"context"
	"time"
)

// PageFetcher defines the page retrieval used by the pipeline stages
type PageFetcher interface {
	// Fetch performs a single GET of pageURL bounded by timeout. Non-2xx
	// responses are returned as pages, not errors.
	Fetch(ctx context.Context, pageURL string, timeout time.Duration) (*Page, error)
}

// Options contains configuration for the fetcher
type Options struct {
	UserAgent       string  // User-Agent header sent with every request
	RequestsPerSec  float64 // Pacing between requests, 0 means unlimited
	FollowRobotsTxt bool    // Refuse URLs disallowed by robots.txt
}
