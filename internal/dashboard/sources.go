package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// CryptoSource reads current asset prices.
type CryptoSource interface {
	Prices(ctx context.Context) (PriceTable, error)
}

// RatesSource reads exchange rates relative to a fixed base currency.
type RatesSource interface {
	Rates(ctx context.Context) (RateTable, error)
}

// NewsSource reads an ordered sequence of headlines.
type NewsSource interface {
	Headlines(ctx context.Context) ([]Article, error)
}

// SourceConfig configures the three upstream clients.
type SourceConfig struct {
	CryptoURL  string
	Assets     []string
	VsCurrency string

	RatesURL  string
	RatesBase string

	NewsURL      string
	NewsAPIKey   string
	NewsCountry  string
	NewsCategory string

	// Timeout bounds each upstream call; zero means the transport default.
	Timeout time.Duration
	// CacheTTL caches raw responses in Redis for the given duration; zero
	// disables caching.
	CacheTTL time.Duration
}

// NewSources builds the HTTP-backed sources sharing one client and optional
// Redis response cache.
func NewSources(cfg SourceConfig, rdb *redis.Client) (CryptoSource, RatesSource, NewsSource) {
	client := &http.Client{Timeout: cfg.Timeout}
	cache := &responseCache{rdb: rdb, ttl: cfg.CacheTTL}
	return &httpCryptoSource{cfg: cfg, client: client, cache: cache},
		&httpRatesSource{cfg: cfg, client: client, cache: cache},
		&httpNewsSource{cfg: cfg, client: client, cache: cache}
}

// responseCache keeps raw upstream bodies in Redis so a burst of dashboard
// loads does not hammer the public APIs.
type responseCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func (c *responseCache) get(ctx context.Context, name string) ([]byte, bool) {
	if c == nil || c.rdb == nil || c.ttl <= 0 {
		return nil, false
	}
	b, err := c.rdb.Get(ctx, "dash:src:"+name).Bytes()
	if err != nil || len(b) == 0 {
		return nil, false
	}
	return b, true
}

func (c *responseCache) put(ctx context.Context, name string, body []byte) {
	if c == nil || c.rdb == nil || c.ttl <= 0 {
		return
	}
	_ = c.rdb.Set(ctx, "dash:src:"+name, body, c.ttl).Err()
}

// fetch performs a GET and returns the raw body, going through the cache.
func fetch(ctx context.Context, client *http.Client, cache *responseCache, name, addr string) ([]byte, error) {
	if body, ok := cache.get(ctx, name); ok {
		return body, nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cannot GET %s/%s: %s", req.URL.Host, strings.TrimPrefix(req.URL.Path, "/"), resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	cache.put(ctx, name, body)
	return body, nil
}

type httpCryptoSource struct {
	cfg    SourceConfig
	client *http.Client
	cache  *responseCache
}

// Prices queries the simple-price endpoint and plucks the configured
// asset/currency pairs out of the generic JSON document.
func (s *httpCryptoSource) Prices(ctx context.Context) (PriceTable, error) {
	q := url.Values{}
	q.Set("ids", strings.Join(s.cfg.Assets, ","))
	q.Set("vs_currencies", s.cfg.VsCurrency)
	body, err := fetch(ctx, s.client, s.cache, "crypto", s.cfg.CryptoURL+"?"+q.Encode())
	if err != nil {
		return nil, err
	}

	var jobj any
	if err := json.Unmarshal(body, &jobj); err != nil {
		return nil, err
	}

	table := make(PriceTable, len(s.cfg.Assets))
	for _, asset := range s.cfg.Assets {
		path := fmt.Sprintf("$[%q][%q]", asset, s.cfg.VsCurrency)
		jval, err := jsonpath.Get(path, jobj)
		if err != nil {
			return nil, fmt.Errorf("price for %q missing: %w", asset, err)
		}
		val, ok := jval.(float64)
		if !ok {
			return nil, fmt.Errorf("price for %q is not a number: %v", asset, jval)
		}
		table[asset] = map[string]decimal.Decimal{
			s.cfg.VsCurrency: decimal.NewFromFloat(val),
		}
	}
	return table, nil
}

type httpRatesSource struct {
	cfg    SourceConfig
	client *http.Client
	cache  *responseCache
}

func (s *httpRatesSource) Rates(ctx context.Context) (RateTable, error) {
	body, err := fetch(ctx, s.client, s.cache, "rates", s.cfg.RatesURL+"/"+s.cfg.RatesBase)
	if err != nil {
		return nil, err
	}
	var doc struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, err
	}
	if len(doc.Rates) == 0 {
		return nil, fmt.Errorf("rates document for base %q is empty", s.cfg.RatesBase)
	}
	table := make(RateTable, len(doc.Rates))
	for code, rate := range doc.Rates {
		table[code] = decimal.NewFromFloat(rate)
	}
	return table, nil
}

type httpNewsSource struct {
	cfg    SourceConfig
	client *http.Client
	cache  *responseCache
}

func (s *httpNewsSource) Headlines(ctx context.Context) ([]Article, error) {
	q := url.Values{}
	q.Set("country", s.cfg.NewsCountry)
	q.Set("category", s.cfg.NewsCategory)
	q.Set("apiKey", s.cfg.NewsAPIKey)
	body, err := fetch(ctx, s.client, s.cache, "news", s.cfg.NewsURL+"?"+q.Encode())
	if err != nil {
		return nil, err
	}
	var doc struct {
		Articles []Article `json:"articles"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, err
	}
	return doc.Articles, nil
}
