package scraper

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/JustJay7/court-records-ingest/internal/cache"
	"github.com/JustJay7/court-records-ingest/internal/config"
	"github.com/JustJay7/court-records-ingest/pkg/logger"
	"github.com/go-resty/resty/v2"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"
)

// Request is one call to the court site. A zero TTL skips the cache lookup
// and does not store the reply.
type Request struct {
	Method string
	URL    string
	Form   map[string]string
	TTL    time.Duration
}

// Response is an upstream reply, possibly served from the cache
type Response struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
	FromCache   bool
}

// Client sends throttled requests to the court site through the response cache
type Client struct {
	http    *resty.Client
	cache   cache.Cache
	limiter *rate.Limiter
	logger  *logger.Logger
}

// NewClient creates a client with a cookie jar, timeout and request throttle
func NewClient(cfg *config.Config, c cache.Cache, logger *logger.Logger) (*Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}

	httpClient := resty.New().
		SetCookieJar(jar).
		SetBaseURL(cfg.CourtBaseURL).
		SetTimeout(cfg.RequestTimeout).
		SetHeader("User-Agent", cfg.UserAgent)

	// without a login page the site is assumed to use basic auth
	if cfg.LoginPath == "" && cfg.Username != "" {
		httpClient.SetBasicAuth(cfg.Username, cfg.Password)
	}

	limit := rate.Inf
	if cfg.RequestInterval > 0 {
		limit = rate.Every(cfg.RequestInterval)
	}

	return &Client{
		http:    httpClient,
		cache:   c,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}, nil
}

// Do serves req from the cache when allowed, otherwise waits for the
// throttle and sends it. Non-2xx replies are returned as *RequestError and
// never cached.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	key := cache.GenerateCacheKey(method, req.URL, req.Form)

	if req.TTL > 0 && c.cache != nil {
		if cached, ok := c.cache.Get(key); ok {
			c.logger.Debug("Cache hit", "url", req.URL)
			return &Response{
				URL:         req.URL,
				StatusCode:  cached.StatusCode,
				ContentType: cached.ContentType,
				Body:        cached.Body,
				FromCache:   true,
			}, nil
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &RequestError{URL: req.URL, Err: err}
	}

	r := c.http.R().SetContext(ctx)
	if len(req.Form) > 0 {
		r.SetFormData(req.Form)
	}

	start := time.Now()
	res, err := r.Execute(method, req.URL)
	if err != nil {
		return nil, &RequestError{URL: req.URL, Err: err}
	}

	c.logger.Debug("Request completed",
		"method", method,
		"url", req.URL,
		"status", res.StatusCode(),
		"duration", time.Since(start))

	if !res.IsSuccess() {
		return nil, &RequestError{URL: req.URL, StatusCode: res.StatusCode()}
	}

	resp := &Response{
		URL:         res.Request.URL,
		StatusCode:  res.StatusCode(),
		ContentType: res.Header().Get("Content-Type"),
		Body:        res.Body(),
	}

	if req.TTL > 0 && c.cache != nil {
		c.cache.Set(key, &cache.Response{
			StatusCode:  resp.StatusCode,
			ContentType: resp.ContentType,
			Body:        resp.Body,
		}, req.TTL)
	}

	return resp, nil
}

// BaseURL returns the court site root used to resolve relative links
func (c *Client) BaseURL() string {
	return c.http.BaseURL
}
