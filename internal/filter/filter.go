// Package filter decides which scan results are hidden from output.
package filter

import (
	"context"
	"sync"

	"github.com/maxvaer/soft404/internal/scanner"
)

// Filter decides whether a scan result should be hidden. ShouldFilter may
// block (the soft-404 filter probes the target) and is called concurrently
// from the scan workers.
type Filter interface {
	Name() string
	ShouldFilter(ctx context.Context, result *scanner.ScanResult) bool
}

// Chain runs filters in order and stops at the first one that hides the
// result. Order matters: the soft-404 filter should come after the cheap
// ones so it only classifies results that would otherwise be printed.
type Chain struct {
	filters []Filter

	mu     sync.Mutex
	hidden map[string]int
}

// NewChain returns a chain of the given filters.
func NewChain(filters ...Filter) *Chain {
	return &Chain{filters: filters, hidden: make(map[string]int)}
}

// Add appends a filter. It must not be called once Apply is in use.
func (c *Chain) Add(f Filter) {
	c.filters = append(c.filters, f)
}

// Len returns the number of filters in the chain.
func (c *Chain) Len() int { return len(c.filters) }

// Apply returns the name of the filter that hides result, or "" if the
// result should be printed.
func (c *Chain) Apply(ctx context.Context, result *scanner.ScanResult) string {
	for _, f := range c.filters {
		if !f.ShouldFilter(ctx, result) {
			continue
		}
		name := f.Name()
		c.mu.Lock()
		c.hidden[name]++
		c.mu.Unlock()
		return name
	}
	return ""
}

// Hidden returns how many results each filter hid.
func (c *Chain) Hidden() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int, len(c.hidden))
	for k, v := range c.hidden {
		out[k] = v
	}
	return out
}
