package fetcher

import (
	"context"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// HTTPOptions configures the HTTP fetcher.
type HTTPOptions struct {
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
	// RatePerSec limits requests per host. Zero uses DefaultRatePerSec.
	RatePerSec float64
	// HostRates overrides RatePerSec for specific hosts.
	HostRates map[string]float64
}

// DefaultRatePerSec is the per-host request rate when none is configured.
const DefaultRatePerSec = 2.0

// DefaultHostRates returns the rate overrides for the Census and HUD hosts
// the raw sources are published on.
func DefaultHostRates() map[string]float64 {
	return map[string]float64{
		"www2.census.gov":          2,
		"www.huduser.gov":          1,
		"preservationdatabase.org": 1,
	}
}

// HTTPFetcher implements Fetcher using net/http with retry and per-host rate limiting.
type HTTPFetcher struct {
	client *http.Client
	opts   HTTPOptions

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewHTTPFetcher creates a new HTTPFetcher with the given options.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Minute
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "equity-report/1.0"
	}
	if opts.RatePerSec <= 0 {
		opts.RatePerSec = DefaultRatePerSec
	}
	if opts.HostRates == nil {
		opts.HostRates = DefaultHostRates()
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		opts:     opts,
		limiters: make(map[string]*rate.Limiter),
	}
}

// limiterFor returns the shared limiter for the URL's host, creating it on
// first use.
func (f *HTTPFetcher) limiterFor(rawURL string) *rate.Limiter {
	host := ""
	if u, err := url.Parse(rawURL); err == nil {
		host = u.Host
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if lim, ok := f.limiters[host]; ok {
		return lim
	}
	r := f.opts.RatePerSec
	if hr, ok := f.opts.HostRates[host]; ok && hr > 0 {
		r = hr
	}
	lim := rate.NewLimiter(rate.Limit(r), int(math.Max(1, math.Ceil(r))))
	f.limiters[host] = lim
	return lim
}

func (f *HTTPFetcher) doWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	lim := f.limiterFor(req.URL.String())
	log := zap.L().With(zap.String("component", "fetcher.http"), zap.String("url", req.URL.String()))

	var lastErr error
	for attempt := range f.opts.MaxRetries {
		if err := lim.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "rate limiter wait")
		}

		resp, err := f.client.Do(req.Clone(ctx))
		switch {
		case err != nil:
			lastErr = err
			log.Warn("http request failed, retrying", zap.Int("attempt", attempt+1), zap.Error(err))
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			_ = resp.Body.Close()
			lastErr = eris.Errorf("http %d from %s", resp.StatusCode, req.URL.String())
			log.Warn("retryable status", zap.Int("status", resp.StatusCode), zap.Int("attempt", attempt+1))
		default:
			return resp, nil
		}
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "http: context cancelled")
		}
		f.backoff(ctx, attempt)
	}

	return nil, eris.Wrap(lastErr, "all retries exhausted")
}

func (f *HTTPFetcher) backoff(ctx context.Context, attempt int) {
	d := time.Duration(float64(500*time.Millisecond) * math.Pow(2, float64(attempt)))
	if d > 30*time.Second {
		d = 30 * time.Second
	}
	d += time.Duration(rand.Int64N(int64(d)/2 + 1))

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// Download fetches the URL and returns the response body.
func (f *HTTPFetcher) Download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "create request")
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)

	resp, err := f.doWithRetry(ctx, req)
	if err != nil {
		return nil, eris.Wrap(err, "download")
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, eris.Errorf("download: unexpected status %d from %s", resp.StatusCode, rawURL)
	}

	return resp.Body, nil
}

// DownloadToFile fetches the URL and writes it to the given path.
func (f *HTTPFetcher) DownloadToFile(ctx context.Context, rawURL string, path string) (int64, error) {
	body, err := f.Download(ctx, rawURL)
	if err != nil {
		return 0, err
	}
	return copyToFile(body, path)
}
