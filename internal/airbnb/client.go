package airbnb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	logx "staywatch/pkg/logx"
)

const (
	defaultBaseURL = "https://www.airbnb.com"
	defaultLocale  = "en"
	defaultTimeout = 30 * time.Second

	searchPath    = "/api/v3/ExploreSections"
	operationName = "ExploreSections"
	apiKeyHeader  = "X-Airbnb-API-Key"

	// Fixed baseline request parameters. Subscription filters are merged on
	// top and win on key collision.
	exploreVersion = "1.8.3"
	itemsPerGrid   = 40

	// Server-side persisted query identifying ExploreSections.
	persistedQueryHash = "a4f62dd4a0c881ddc9a3a00bc376e15c3fd1b10e6bc0a7c38d48f048a20b6c17"
)

type Config struct {
	APIKey  string
	BaseURL string
	Locale  string
	Timeout time.Duration

	// SkipMalformed drops items that fail normalization instead of failing
	// the whole search.
	SkipMalformed bool
}

type Client struct {
	cfg   Config
	httpc *http.Client
	log   logx.Logger

	skipMalformed atomic.Bool
}

func New(cfg Config, log logx.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("airbnb api key is empty")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if strings.TrimSpace(cfg.Locale) == "" {
		cfg.Locale = defaultLocale
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	c := &Client{
		cfg:   cfg,
		httpc: &http.Client{Timeout: cfg.Timeout},
		log:   log,
	}
	c.skipMalformed.Store(cfg.SkipMalformed)
	return c, nil
}

// SetSkipMalformed switches the malformed-item policy at runtime (config
// hot-reload). Takes effect on the next Search.
func (c *Client) SetSkipMalformed(skip bool) { c.skipMalformed.Store(skip) }

// SearchRequest describes one search: the display currency plus the
// subscription's provider-specific filter map (checkin, checkout, adults, ...).
type SearchRequest struct {
	Currency string
	Filters  map[string]any
}

// Search performs one search request and returns the full ordered sequence of
// normalized listings. One outbound call, no retries; a failure here aborts
// the subscription's poll for this cycle only.
func (c *Client) Search(ctx context.Context, req SearchRequest) ([]Listing, error) {
	u, err := c.searchURL(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set(apiKeyHeader, c.cfg.APIKey)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("explore sections request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("explore sections request: unexpected status %s", resp.Status)
	}

	var doc map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("explore sections response: %w", err)
	}

	items, err := extractItems(doc)
	if err != nil {
		return nil, err
	}

	listings := make([]Listing, 0, len(items))
	for i, item := range items {
		l, err := Normalize(item)
		if err != nil {
			if c.skipMalformed.Load() {
				c.log.Warn("skipping malformed search item", logx.Int("index", i), logx.Err(err))
				continue
			}
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		listings = append(listings, l)
	}
	return listings, nil
}

func (c *Client) searchURL(req SearchRequest) (string, error) {
	explore := map[string]any{
		"metadataOnly":    false,
		"version":         exploreVersion,
		"itemsPerGrid":    itemsPerGrid,
		"refinementPaths": []string{"/homes"},
	}
	for k, v := range req.Filters {
		explore[k] = v
	}

	variables, err := json.Marshal(map[string]any{"exploreRequest": explore})
	if err != nil {
		return "", fmt.Errorf("encode variables: %w", err)
	}
	extensions, err := json.Marshal(map[string]any{
		"persistedQuery": map[string]any{
			"version":    1,
			"sha256Hash": persistedQueryHash,
		},
	})
	if err != nil {
		return "", fmt.Errorf("encode extensions: %w", err)
	}

	q := url.Values{}
	q.Set("operationName", operationName)
	q.Set("locale", c.cfg.Locale)
	q.Set("currency", req.Currency)
	q.Set("variables", string(variables))
	q.Set("extensions", string(extensions))

	return c.cfg.BaseURL + searchPath + "?" + q.Encode(), nil
}
