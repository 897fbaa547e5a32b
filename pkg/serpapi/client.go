package serpapi

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-resty/resty/v2"
)

// ErrNoResults is returned when the response carries no organic results
var ErrNoResults = errors.New("no organic results")

// OrganicResult is a single non-paid search result
type OrganicResult struct {
	Position int    `json:"position"`
	Title    string `json:"title"`
	Link     string `json:"link"`
}

type searchResponse struct {
	OrganicResults []OrganicResult `json:"organic_results"`
	Error          string          `json:"error"`
}

// Options configures the search client
type Options struct {
	Endpoint         string
	Engine           string
	APIKey           string
	Timeout          time.Duration
	Retries          int
	RetryWait        time.Duration
	RetryMaxWait     time.Duration
	RetryStatusCodes []int
}

// Client queries the search results API
type Client struct {
	http     *resty.Client
	endpoint string
	engine   string
	apiKey   string
	logger   *log.Logger
}

// New creates a search client. Requests are retried only when the response
// status is one of opts.RetryStatusCodes; transport errors are not retried.
func New(opts Options, logger *log.Logger) *Client {
	retryable := make(map[int]bool, len(opts.RetryStatusCodes))
	for _, code := range opts.RetryStatusCodes {
		retryable[code] = true
	}

	client := resty.New()
	client.SetLogger(logger)
	client.SetTimeout(opts.Timeout)
	client.SetRetryCount(opts.Retries)
	client.SetRetryWaitTime(opts.RetryWait)
	client.SetRetryMaxWaitTime(opts.RetryMaxWait)
	client.AddRetryCondition(func(res *resty.Response, err error) bool {
		return err == nil && res != nil && retryable[res.StatusCode()]
	})
	client.AddRetryHook(func(res *resty.Response, err error) {
		if res == nil {
			return
		}
		logger.Warn("⚠️ retrying search request", "status", res.StatusCode(), "attempt", res.Request.Attempt)
	})

	return &Client{
		http:     client,
		endpoint: opts.Endpoint,
		engine:   opts.Engine,
		apiKey:   opts.APIKey,
		logger:   logger,
	}
}

// Search runs query and returns the organic results in API order. num limits
// the number of results requested; 0 leaves it to the provider.
func (c *Client) Search(ctx context.Context, query string, num int) ([]OrganicResult, error) {
	params := map[string]string{
		"q":       query,
		"api_key": c.apiKey,
	}
	if c.engine != "" {
		params["engine"] = c.engine
	}
	if num > 0 {
		params["num"] = strconv.Itoa(num)
	}

	var body searchResponse
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&body).
		ForceContentType("application/json").
		Get(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("search %q: unexpected status %d", query, res.StatusCode())
	}
	if body.Error != "" && len(body.OrganicResults) == 0 {
		return nil, fmt.Errorf("search %q: %s: %w", query, body.Error, ErrNoResults)
	}
	if len(body.OrganicResults) == 0 {
		return nil, fmt.Errorf("search %q: %w", query, ErrNoResults)
	}

	c.logger.Debug("search complete", "query", query, "results", len(body.OrganicResults))
	return body.OrganicResults, nil
}
