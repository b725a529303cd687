// Package market fetches market data from public upstream sources.
package market

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"gitlab.com/zephyrtronium/pick"

	"github.com/zephyrtronium/bourse/cache"
	"github.com/zephyrtronium/bourse/metrics"
)

// expected is an error describing an empty result rather than a failure.
type expected string

func (e expected) Error() string  { return string(e) }
func (e expected) Expected() bool { return true }

var (
	// ErrNoData is returned when a source has nothing for a request.
	ErrNoData error = expected("No available data found")
	// ErrUnknownTicker is returned when a source doesn't know a ticker.
	ErrUnknownTicker error = expected("Unknown ticker")
)

// defaultAgent is the user agent used when a client has no distribution.
const defaultAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"

// maxBody is the largest response body read from a source.
const maxBody = 4 << 20

// Client fetches market data.
type Client struct {
	// HTTP is the HTTP client for performing requests.
	// If nil, http.DefaultClient is used.
	HTTP *http.Client
	// Cache holds recent responses. If nil, nothing is cached.
	Cache *cache.Cache
	// Agents is the distribution of user agents to send.
	// If nil, a fixed browser user agent is used.
	Agents *pick.Dist[string]
	// Log is the logger for upstream requests. If nil, slog.Default is used.
	Log *slog.Logger
	// Metrics receives upstream latency and cache statistics.
	// If nil, nothing is recorded.
	Metrics *metrics.Metrics
	// Scratch is the directory for downloaded images.
	// If empty, the system temporary directory is used.
	Scratch string
}

// Agents creates a user agent distribution from weights.
// The result is nil if there are no agents.
func Agents(weights map[string]int) *pick.Dist[string] {
	if len(weights) == 0 {
		return nil
	}
	return pick.New(pick.FromMap(weights))
}

// StatusError is an unsuccessful response from a source.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request failed: %s (%d %s)", e.Body, e.Code, http.StatusText(e.Code))
}

func (c *Client) log() *slog.Logger {
	if c.Log == nil {
		return slog.Default()
	}
	return c.Log
}

func (c *Client) agent() string {
	if c.Agents == nil {
		return defaultAgent
	}
	return c.Agents.Pick(rand.Uint32())
}

var nop = metrics.Nop()

func (c *Client) metrics() *metrics.Metrics {
	if c.Metrics == nil {
		return nop
	}
	return c.Metrics
}

// get fetches a URL, using the cache if allowed.
// The source names the upstream for logs and metrics.
func (c *Client) get(ctx context.Context, source, url string, cached bool) ([]byte, error) {
	if cached && c.Cache != nil {
		b, ok, err := c.Cache.Get(url)
		if err != nil {
			c.log().WarnContext(ctx, "cache read failed", slog.String("url", url), slog.Any("err", err))
		}
		if ok {
			c.metrics().CacheHits.Observe(1, source)
			return b, nil
		}
		c.metrics().CacheMisses.Observe(1, source)
	}
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("couldn't make request: %w", err)
	}
	req.Header.Set("User-Agent", c.agent())
	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("couldn't GET %s: %w", source, err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("couldn't read %s response: %w", source, err)
	}
	cost := time.Since(start)
	c.metrics().UpstreamLatency.Observe(cost.Seconds(), source)
	c.log().DebugContext(ctx, "upstream request",
		slog.String("source", source),
		slog.String("url", url),
		slog.Int("status", resp.StatusCode),
		slog.Duration("cost", cost),
	)
	if resp.StatusCode != http.StatusOK {
		if len(b) > 256 {
			b = b[:256]
		}
		return nil, &StatusError{Code: resp.StatusCode, Body: string(b)}
	}
	if cached && c.Cache != nil {
		if err := c.Cache.Set(url, b); err != nil {
			c.log().WarnContext(ctx, "cache write failed", slog.String("url", url), slog.Any("err", err))
		}
	}
	return b, nil
}

// notFound converts a 404 from a source to ErrUnknownTicker.
func notFound(err error) error {
	var s *StatusError
	if errors.As(err, &s) && s.Code == http.StatusNotFound {
		return ErrUnknownTicker
	}
	return err
}
