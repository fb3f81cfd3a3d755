// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pubmed searches and fetches records from the NCBI E-utilities API
// and converts efetch XML into the engine's Record shape.
//
// The E-utilities API documentation is available at
// https://www.ncbi.nlm.nih.gov/books/NBK25499/
package pubmed

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/pdiddy/pharma-papers/internal/httputil"
	"github.com/pdiddy/pharma-papers/pkg/types"
)

const (
	// DefaultBaseURL is the root of the E-utilities API.
	DefaultBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

	// DefaultRateLimit is the NCBI limit without an API key; with one it is 10.
	DefaultRateLimit = 3.0
	keyedRateLimit   = 10.0

	DefaultTimeout        = 30 * time.Second
	DefaultMaxResults     = 100
	DefaultFetchBatchSize = 200

	// MaxResultsLimit is the largest retmax esearch accepts.
	MaxResultsLimit = 10000

	toolName     = "pharma-papers"
	maxBodyBytes = 50 << 20
)

// APIError reports a non-200 response from E-utilities.
type APIError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("pubmed %s returned HTTP %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// Client talks to E-utilities. Every request, including each 429 retry,
// takes a token from one shared limiter, so a Client may be used from
// several goroutines.
type Client struct {
	cfg     types.PubMedConfig
	http    *http.Client
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the client logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a Client, filling unset config fields with defaults.
func New(cfg types.PubMedConfig, opts ...Option) *Client {
	cfg = applyDefaults(cfg)
	c := &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func applyDefaults(cfg types.PubMedConfig) types.PubMedConfig {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = toolName
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = DefaultRateLimit
		if cfg.APIKey != "" {
			cfg.RateLimit = keyedRateLimit
		}
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultMaxResults
	}
	if cfg.MaxResults > MaxResultsLimit {
		cfg.MaxResults = MaxResultsLimit
	}
	if cfg.FetchBatchSize <= 0 {
		cfg.FetchBatchSize = DefaultFetchBatchSize
	}
	return cfg
}

// SearchResult holds the PMIDs matching a query and the total hit count.
type SearchResult struct {
	IDs   []string
	Count int
}

// Search runs esearch for query and returns up to maxResults PMIDs
// (0 uses the configured default). A phrase PubMed does not recognise
// yields an empty result, not an error.
func (c *Client) Search(ctx context.Context, query string, maxResults int) (SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return SearchResult{}, fmt.Errorf("query is empty")
	}
	if maxResults <= 0 {
		maxResults = c.cfg.MaxResults
	}
	if maxResults > MaxResultsLimit {
		maxResults = MaxResultsLimit
	}

	params := url.Values{
		"db":      {"pubmed"},
		"term":    {query},
		"retmode": {"xml"},
		"retmax":  {strconv.Itoa(maxResults)},
	}

	var res ESearchResult
	if err := c.get(ctx, "esearch.fcgi", params, &res); err != nil {
		return SearchResult{}, err
	}
	if res.ERROR != "" {
		return SearchResult{}, fmt.Errorf("pubmed esearch: %s", res.ERROR)
	}
	if res.ErrorList != nil && len(res.ErrorList.PhraseNotFound) > 0 && len(res.IDList.IDs) == 0 {
		c.logger.Info().Strs("phrases", res.ErrorList.PhraseNotFound).Msg("phrase not found")
		return SearchResult{IDs: []string{}}, nil
	}

	c.logger.Debug().Str("query", query).Int("count", res.Count).Int("returned", len(res.IDList.IDs)).Msg("esearch complete")
	return SearchResult{IDs: res.IDList.IDs, Count: res.Count}, nil
}

// FetchBatches runs efetch for ids in chunks of FetchBatchSize and returns
// one record slice per chunk, in id order.
func (c *Client) FetchBatches(ctx context.Context, ids []string) ([][]types.Record, error) {
	var batches [][]types.Record
	for start := 0; start < len(ids); start += c.cfg.FetchBatchSize {
		end := start + c.cfg.FetchBatchSize
		if end > len(ids) {
			end = len(ids)
		}

		params := url.Values{
			"db":      {"pubmed"},
			"id":      {strings.Join(ids[start:end], ",")},
			"retmode": {"xml"},
		}

		var set PubmedArticleSet
		if err := c.get(ctx, "efetch.fcgi", params, &set); err != nil {
			return nil, fmt.Errorf("fetching records %d-%d: %w", start+1, end, err)
		}
		c.logger.Debug().Int("requested", end-start).Int("received", len(set.Articles)).Msg("efetch complete")
		batches = append(batches, ToRecords(set))
	}
	return batches, nil
}

// Fetch is FetchBatches with the chunks concatenated.
func (c *Client) Fetch(ctx context.Context, ids []string) ([]types.Record, error) {
	batches, err := c.FetchBatches(ctx, ids)
	if err != nil {
		return nil, err
	}
	var records []types.Record
	for _, b := range batches {
		records = append(records, b...)
	}
	return records, nil
}

// get issues a rate-limited GET to endpoint and decodes the XML body into v.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, v any) error {
	params.Set("tool", toolName)
	if c.cfg.Email != "" {
		params.Set("email", c.cfg.Email)
	}
	if c.cfg.APIKey != "" {
		params.Set("api_key", c.cfg.APIKey)
	}

	reqURL := c.cfg.BaseURL + "/" + endpoint + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, c.http, req, c.limiter, c.cfg.MaxRetries, c.logger)
	if err != nil {
		return fmt.Errorf("pubmed %s request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("reading %s response: %w", endpoint, err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := string(body)
		if len(msg) > 512 {
			msg = msg[:512]
		}
		return &APIError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: msg}
	}

	if err := xml.Unmarshal(body, v); err != nil {
		return fmt.Errorf("parsing %s response: %w", endpoint, err)
	}
	return nil
}
