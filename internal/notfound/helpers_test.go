package notfound

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/maxvaer/soft404/internal/scanner"
	"github.com/maxvaer/soft404/internal/weburl"
)

func htmlResponse(u *weburl.URL, status int, body string) *scanner.Response {
	h := http.Header{}
	h.Set("Content-Type", "text/html; charset=utf-8")
	return scanner.NewResponse(u, status, h, []byte(body))
}

// fakeFetcher serves probes from a function and records every request.
type fakeFetcher struct {
	mu      sync.Mutex
	urls    []string
	calls   atomic.Int32
	delay   time.Duration
	release chan struct{}
	respond func(u *weburl.URL, call int) (*scanner.Response, error)
}

func (f *fakeFetcher) Get(ctx context.Context, u *weburl.URL) (*scanner.Response, error) {
	n := int(f.calls.Add(1))
	f.mu.Lock()
	f.urls = append(f.urls, u.String())
	f.mu.Unlock()

	if f.release != nil {
		<-f.release
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.respond(u, n)
}

func (f *fakeFetcher) requested() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.urls...)
}

// staticFetcher answers every probe with the same status and body.
func staticFetcher(status int, body string) *fakeFetcher {
	return &fakeFetcher{respond: func(u *weburl.URL, _ int) (*scanner.Response, error) {
		return htmlResponse(u, status, body), nil
	}}
}

func fixedToken(n int) string {
	const s = "qwerty1234567890"
	return s[:n]
}

// countingMatcher wraps a Matcher and records every call.
type countingMatcher struct {
	inner    Matcher
	calls    atomic.Int32
	mu       sync.Mutex
	verdicts []Verdict
}

func (c *countingMatcher) Decide(a, b string) Verdict {
	c.calls.Add(1)
	v := c.inner.Decide(a, b)
	c.mu.Lock()
	c.verdicts = append(c.verdicts, v)
	c.mu.Unlock()
	return v
}
