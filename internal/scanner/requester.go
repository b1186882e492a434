package scanner

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/maxvaer/soft404/internal/config"
	"github.com/maxvaer/soft404/internal/weburl"
	"golang.org/x/time/rate"
)

// ErrNoBaseURL is returned by Do when the requester was built without a
// target URL.
var ErrNoBaseURL = errors.New("requester has no base URL")

// defaultRetryDelay is the wait before the second attempt; it doubles on
// every further attempt.
const defaultRetryDelay = 500 * time.Millisecond

// Requester wraps an HTTP client for path fuzzing and 404 probing. Responses
// are never cached.
type Requester struct {
	client     *http.Client
	baseURL    string
	headers    map[string]string
	userAgent  string
	limiter    *rate.Limiter
	retries    int
	retryDelay time.Duration
	maxBody    int64
}

// NewRequester creates a Requester from the provided options. opts.URL may
// be empty, in which case only Get can be used.
func NewRequester(opts *config.Options) (*Requester, error) {
	var base string
	if opts.URL != "" {
		u, err := weburl.Parse(opts.URL)
		if err != nil {
			return nil, fmt.Errorf("invalid URL %q: %w", opts.URL, err)
		}
		base = strings.TrimRight(u.Base().String(), "/")
	}

	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // scanners talk to misconfigured hosts
		DialContext: (&net.Dialer{
			Timeout: opts.Timeout,
		}).DialContext,
		MaxIdleConnsPerHost: opts.Threads,
		MaxIdleConns:        opts.Threads,
		DisableCompression:  true,
	}

	if opts.Proxy != "" {
		proxyURL, err := url.Parse(opts.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL %q: %w", opts.Proxy, err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   opts.Timeout,
	}

	if !opts.FollowRedirects {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	ua := opts.UserAgent
	if ua == "" {
		ua = config.DefaultUserAgent
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := int(opts.RateLimit)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	retries := opts.Retries
	if retries < 1 {
		retries = 1
	}

	return &Requester{
		client:     client,
		baseURL:    base,
		headers:    opts.Headers,
		userAgent:  ua,
		limiter:    limiter,
		retries:    retries,
		retryDelay: defaultRetryDelay,
		maxBody:    opts.MaxBodySize,
	}, nil
}

// Do sends an HTTP request for path relative to the base URL. method
// defaults to GET if empty.
func (r *Requester) Do(ctx context.Context, method, path string) (*Response, error) {
	if r.baseURL == "" {
		return nil, ErrNoBaseURL
	}
	target, err := weburl.Parse(r.baseURL + "/" + strings.TrimLeft(path, "/"))
	if err != nil {
		return nil, err
	}
	return r.send(ctx, method, target)
}

// Get fetches an absolute URL.
func (r *Requester) Get(ctx context.Context, u *weburl.URL) (*Response, error) {
	return r.send(ctx, http.MethodGet, u)
}

// send performs the request, retrying transport failures with exponential
// back-off. HTTP error statuses are responses, not failures.
func (r *Requester) send(ctx context.Context, method string, u *weburl.URL) (*Response, error) {
	if method == "" {
		method = http.MethodGet
	}

	delay := r.retryDelay
	var lastErr error
	for attempt := 1; attempt <= r.retries; attempt++ {
		resp, err := r.once(ctx, method, u)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if ctx.Err() != nil || attempt == r.retries {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		delay *= 2
	}
	return nil, fmt.Errorf("%s %s: %w", method, u, lastErr)
}

func (r *Requester) once(ctx context.Context, method string, u *weburl.URL) (*Response, error) {
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("Accept-Encoding", "gzip, br")
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if r.maxBody > 0 {
		reader = io.LimitReader(resp.Body, r.maxBody)
	}
	raw, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading response body for %s: %w", u, err)
	}
	body := decodeBody(raw, resp.Header.Get("Content-Encoding"), r.maxBody)

	result := NewResponse(u, resp.StatusCode, resp.Header, body)
	result.Duration = time.Since(start)
	return result, nil
}

// decodeBody undoes gzip or brotli content encoding. A body that fails to
// decode is returned as received.
func decodeBody(raw []byte, encoding string, limit int64) []byte {
	var dec io.Reader
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "br":
		dec = brotli.NewReader(bytes.NewReader(raw))
	case "gzip", "x-gzip":
		gz, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return raw
		}
		defer gz.Close()
		dec = gz
	default:
		return raw
	}
	if limit > 0 {
		dec = io.LimitReader(dec, limit)
	}
	out, err := io.ReadAll(dec)
	if err != nil {
		return raw
	}
	return out
}
