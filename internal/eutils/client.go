// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package eutils retrieves PubMed records from the NCBI E-utilities API.
//
// Search runs esearch and returns PMIDs. Fetch runs efetch and returns the
// raw XML. FetchArticles batches PMIDs through efetch, decodes each
// response with package tree, and parses the records with package pubmed.
// All requests share one rate limiter sized to NCBI's published limits.
package eutils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/pdiddy/pubmed-engine/internal/httputil"
	"github.com/pdiddy/pubmed-engine/pkg/types"
)

// Defaults applied by New to zero-valued configuration fields.
const (
	DefaultBaseURL    = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"
	DefaultTool       = "pubmed-engine"
	DefaultTimeout    = 30 * time.Second
	DefaultBatchSize  = 200
	DefaultMaxRetries = 5
	DefaultWorkers    = 4

	// NCBI allows 3 requests per second without an API key and 10 with one.
	anonymousRate = 3.0
	keyedRate     = 10.0

	// maxSearchResults is the largest retmax esearch accepts.
	maxSearchResults = 10000
)

var (
	// ErrRateLimited is returned when NCBI keeps answering 429 after all retries.
	ErrRateLimited = errors.New("E-utilities rate limit exceeded")

	// ErrInvalidPMID is returned for identifiers that are not decimal numbers.
	ErrInvalidPMID = errors.New("invalid PMID")
)

// Client talks to the E-utilities endpoints. It is safe for concurrent use.
type Client struct {
	cfg     types.EUtilsConfig
	http    *http.Client
	limiter *rate.Limiter
	log     zerolog.Logger
}

// New returns a client for cfg. Zero fields take the package defaults.
func New(cfg types.EUtilsConfig, logger zerolog.Logger) *Client {
	cfg = withDefaults(cfg)
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		log:     logger.With().Str("component", "eutils").Logger(),
	}
}

func withDefaults(cfg types.EUtilsConfig) types.EUtilsConfig {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Tool == "" {
		cfg.Tool = DefaultTool
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultTool
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = anonymousRate
		if cfg.APIKey != "" {
			cfg.RateLimit = keyedRate
		}
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	return cfg
}

// Config returns the effective configuration after defaults.
func (c *Client) Config() types.EUtilsConfig {
	return c.cfg
}

// SearchResult is the outcome of an esearch query.
type SearchResult struct {
	Count            int
	RetStart         int
	PMIDs            []string
	QueryTranslation string
}

// esearchResponse mirrors the JSON retmode of esearch. NCBI encodes the
// counts as strings.
type esearchResponse struct {
	Result struct {
		Count            string   `json:"count"`
		RetStart         string   `json:"retstart"`
		IDList           []string `json:"idlist"`
		QueryTranslation string   `json:"querytranslation"`
		ErrorList        struct {
			PhrasesNotFound []string `json:"phrasesnotfound"`
		} `json:"errorlist"`
	} `json:"esearchresult"`
	Error string `json:"error"`
}

// Search runs an esearch query against the pubmed database and returns up
// to limit PMIDs in relevance order.
func (c *Client) Search(ctx context.Context, term string, limit int) (SearchResult, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return SearchResult{}, fmt.Errorf("empty search term")
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > maxSearchResults {
		limit = maxSearchResults
	}

	params := url.Values{
		"db":      {"pubmed"},
		"term":    {term},
		"retmax":  {strconv.Itoa(limit)},
		"retmode": {"json"},
		"sort":    {"relevance"},
	}
	body, err := c.get(ctx, "esearch.fcgi", params)
	if err != nil {
		return SearchResult{}, fmt.Errorf("esearch: %w", err)
	}

	var resp esearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return SearchResult{}, fmt.Errorf("parsing esearch response: %w", err)
	}
	if resp.Error != "" {
		return SearchResult{}, fmt.Errorf("esearch: %s", resp.Error)
	}

	result := SearchResult{
		PMIDs:            resp.Result.IDList,
		QueryTranslation: resp.Result.QueryTranslation,
	}
	if result.PMIDs == nil {
		result.PMIDs = []string{}
	}
	result.Count, _ = strconv.Atoi(resp.Result.Count)
	result.RetStart, _ = strconv.Atoi(resp.Result.RetStart)

	if len(resp.Result.ErrorList.PhrasesNotFound) > 0 {
		c.log.Debug().Strs("phrases", resp.Result.ErrorList.PhrasesNotFound).Msg("phrases not found")
	}
	return result, nil
}

// Fetch runs one efetch request for pmids and returns the XML document.
func (c *Client) Fetch(ctx context.Context, pmids []string) ([]byte, error) {
	ids, err := normalizePMIDs(pmids)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no PMIDs to fetch")
	}

	params := url.Values{
		"db":      {"pubmed"},
		"id":      {strings.Join(ids, ",")},
		"retmode": {"xml"},
	}
	body, err := c.get(ctx, "efetch.fcgi", params)
	if err != nil {
		return nil, fmt.Errorf("efetch: %w", err)
	}
	return body, nil
}

// get issues a rate-limited GET to endpoint with the identification
// parameters NCBI asks every client to send.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params.Set("tool", c.cfg.Tool)
	if c.cfg.Email != "" {
		params.Set("email", c.cfg.Email)
	}
	if c.cfg.APIKey != "" {
		params.Set("api_key", c.cfg.APIKey)
	}

	reqURL := c.cfg.BaseURL + "/" + endpoint + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	start := time.Now()
	resp, err := httputil.DoWithRetry(c.log.WithContext(ctx), c.http, req, c.cfg.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("endpoint", endpoint).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("request complete")

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned HTTP %d", endpoint, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s response: %w", endpoint, err)
	}
	return body, nil
}

// normalizePMIDs trims ids, drops blanks and duplicates, and rejects
// anything that is not a decimal number.
func normalizePMIDs(pmids []string) ([]string, error) {
	seen := make(map[string]bool, len(pmids))
	out := make([]string, 0, len(pmids))
	for _, id := range pmids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		if _, err := strconv.ParseUint(id, 10, 64); err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPMID, id)
		}
		seen[id] = true
		out = append(out, id)
	}
	return out, nil
}
