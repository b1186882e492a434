package filter

import (
	"context"
	"sync"

	"github.com/maxvaer/soft404/internal/notfound"
	"github.com/maxvaer/soft404/internal/scanner"
	"github.com/spaolacci/murmur3"
)

// responseKey identifies a response shape by status code and the hash of its
// cleaned body. Cleaning removes the echoed request URL, so catch-all pages
// that embed the path collapse onto one key.
type responseKey struct {
	statusCode int
	bodyHash   uint64
}

// DuplicateFilter hides responses that keep coming back with the same
// status and cleaned body. It catches catch-all routes (e.g. /app/login/*
// always serving the login page) whose directory reference looks different
// from the route's own page.
type DuplicateFilter struct {
	mu        sync.Mutex
	seen      map[responseKey]int
	threshold int
}

// NewDuplicateFilter returns a filter that lets up to threshold identical
// responses through before filtering the rest.
func NewDuplicateFilter(threshold int) *DuplicateFilter {
	return &DuplicateFilter{
		seen:      make(map[responseKey]int),
		threshold: threshold,
	}
}

func (d *DuplicateFilter) Name() string { return "duplicate" }

func (d *DuplicateFilter) ShouldFilter(_ context.Context, result *scanner.ScanResult) bool {
	key := responseKey{statusCode: result.StatusCode}
	if resp := result.Response; resp != nil && resp.URL != nil {
		key.bodyHash = murmur3.Sum64([]byte(notfound.Clean(resp.Text(), resp.URL, resp.DocType)))
	}

	d.mu.Lock()
	d.seen[key]++
	count := d.seen[key]
	d.mu.Unlock()

	return count > d.threshold
}
