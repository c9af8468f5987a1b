package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/vmunix/reelmate/internal/apperr"
)

const (
	defaultEndpoint = "https://reelmate-jet.vercel.app/"
	defaultCacheTTL = 10 * time.Minute
	maxResponseSize = 1 << 20
)

// DefaultBlockedHosts are rejected before any network call.
var DefaultBlockedHosts = []string{"youtube.com", "youtu.be"}

// Client talks to the extraction service. It never retries.
type Client struct {
	endpoint   string
	httpClient *http.Client
	cache      *cache.Cache // nil when caching is disabled
	blocked    []string
	userAgent  string
	log        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithEndpoint sets the service URL (for testing or self-hosting).
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		c.endpoint = endpoint
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithCacheTTL sets how long descriptors are reused. A negative TTL
// disables caching.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) {
		if ttl < 0 {
			c.cache = nil
			return
		}
		if ttl == 0 {
			ttl = defaultCacheTTL
		}
		c.cache = cache.New(ttl, 2*ttl)
	}
}

// WithBlockedHosts replaces the blocked host list.
func WithBlockedHosts(hosts []string) Option {
	return func(c *Client) {
		c.blocked = hosts
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient creates a new extractor client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		endpoint: defaultEndpoint,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		cache:   cache.New(defaultCacheTTL, 2*defaultCacheTTL),
		blocked: DefaultBlockedHosts,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Blocked reports whether sourceURL mentions a blocked host.
func (c *Client) Blocked(sourceURL string) bool {
	lower := strings.ToLower(sourceURL)
	for _, h := range c.blocked {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" && strings.Contains(lower, h) {
			return true
		}
	}
	return false
}

// Extract asks the service for the media links of sourceURL.
//
// Blocked and malformed URLs fail without a network call. A response
// carrying an "error" field, or a non-2xx status, is a failure and never
// yields a Descriptor. Transport failures and non-2xx statuses are
// NetworkFailure errors.
func (c *Client) Extract(ctx context.Context, sourceURL string) (*Descriptor, error) {
	const op = "extract"

	sourceURL = strings.TrimSpace(sourceURL)
	if c.Blocked(sourceURL) {
		return nil, ErrBlockedHost
	}
	if err := validateSource(sourceURL); err != nil {
		return nil, err
	}

	if c.cache != nil {
		if d, ok := c.cache.Get(sourceURL); ok {
			c.log.Debug("extractor cache hit", "url", sourceURL)
			cached := *d.(*Descriptor)
			return &cached, nil
		}
	}

	reqURL, err := c.requestURL(sourceURL)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindNetworkFailure, op, fmt.Errorf("execute request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindNetworkFailure, op, fmt.Errorf("read response: %w", err))
	}
	c.log.Debug("extractor responded", "status", resp.StatusCode, "duration", time.Since(start))

	var r response
	decodeErr := json.Unmarshal(body, &r)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := resp.Status
		if decodeErr == nil && r.Error != nil && *r.Error != "" {
			msg = *r.Error
		}
		return nil, apperr.Wrap(apperr.KindNetworkFailure, op, &ServiceError{StatusCode: resp.StatusCode, Message: msg})
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode response: %w", decodeErr)
	}
	if r.Error != nil {
		return nil, &ServiceError{StatusCode: resp.StatusCode, Message: *r.Error}
	}
	if r.BestQuality == "" && r.MediumQuality == "" {
		return nil, &ServiceError{StatusCode: resp.StatusCode, Message: "no download links in response"}
	}

	d := &Descriptor{
		Title:            r.Title,
		BestQualityURL:   r.BestQuality,
		MediumQualityURL: r.MediumQuality,
		ThumbnailURL:     r.Thumbnail,
		SourceURL:        sourceURL,
		Platform:         DetectPlatform(sourceURL),
	}
	if d.Title == "" {
		d.Title = "Video"
	}

	if c.cache != nil {
		c.cache.SetDefault(sourceURL, d)
	}
	cp := *d
	return &cp, nil
}

func (c *Client) requestURL(sourceURL string) (string, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("parse endpoint: %w", err)
	}
	q := u.Query()
	q.Set("url", sourceURL)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func validateSource(sourceURL string) error {
	u, err := url.Parse(sourceURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidURL, sourceURL)
	}
	return nil
}
