package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/temoto/robotstxt"
	"golang.org/x/time/rate"
)

// ErrDisallowed is returned for URLs excluded by the site's robots.txt
var ErrDisallowed = errors.New("disallowed by robots.txt")

// Page is a fetched HTTP response
type Page struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
}

// OK reports whether the response status is 2xx
func (p *Page) OK() bool {
	return p.StatusCode >= 200 && p.StatusCode < 300
}

// Fetcher retrieves pages one request at a time
type Fetcher struct {
	client       *http.Client
	userAgent    string
	limiter      *rate.Limiter
	followRobots bool
	robots       map[string]*robotstxt.RobotsData
	mu           sync.Mutex
	logger       *log.Logger
}

// New creates a fetcher
func New(opts Options, logger *log.Logger) *Fetcher {
	limit := rate.Inf
	if opts.RequestsPerSec > 0 {
		limit = rate.Limit(opts.RequestsPerSec)
	}

	return &Fetcher{
		client:       &http.Client{},
		userAgent:    opts.UserAgent,
		limiter:      rate.NewLimiter(limit, 1),
		followRobots: opts.FollowRobotsTxt,
		robots:       make(map[string]*robotstxt.RobotsData),
		logger:       logger,
	}
}

// Fetch implements PageFetcher
func (f *Fetcher) Fetch(ctx context.Context, pageURL string, timeout time.Duration) (*Page, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", pageURL, err)
	}

	if f.followRobots && !f.isAllowedByRobots(ctx, u, timeout) {
		f.logger.Debug("skipped URL disallowed by robots.txt", "url", pageURL)
		return nil, fmt.Errorf("%s: %w", pageURL, ErrDisallowed)
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", pageURL, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading body of %s: %w", pageURL, err)
	}

	f.logger.Debug("fetched page", "url", pageURL, "status", resp.StatusCode, "bytes", len(body))

	return &Page{
		URL:         pageURL,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// isAllowedByRobots checks pageURL against the host's robots.txt, fetched
// once per host. An unreachable robots.txt allows everything.
func (f *Fetcher) isAllowedByRobots(ctx context.Context, u *url.URL, timeout time.Duration) bool {
	f.mu.Lock()
	robots, ok := f.robots[u.Host]
	f.mu.Unlock()

	if !ok {
		robots = f.loadRobots(ctx, u, timeout)
		f.mu.Lock()
		f.robots[u.Host] = robots
		f.mu.Unlock()
	}
	if robots == nil {
		return true
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	return robots.TestAgent(path, f.userAgent)
}

func (f *Fetcher) loadRobots(ctx context.Context, u *url.URL, timeout time.Duration) *robotstxt.RobotsData {
	robotsURL := fmt.Sprintf("%s://%s/robots.txt", u.Scheme, u.Host)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Debug("robots.txt unavailable", "url", robotsURL, "err", err)
		return nil
	}
	defer resp.Body.Close()

	robots, err := robotstxt.FromResponse(resp)
	if err != nil {
		f.logger.Debug("robots.txt unparsable", "url", robotsURL, "err", err)
		return nil
	}
	return robots
}
