package scanner

import (
	"context"
	"sync"
)

// Doer sends one brute-force request relative to the target.
type Doer interface {
	Do(ctx context.Context, method, path string) (*Response, error)
}

// WorkerConfig holds options for the worker pool.
type WorkerConfig struct {
	Threads int
	// Inspect runs inside the worker on every successful result before it is
	// emitted. Blocking per-result work (404 classification) belongs here so
	// that it runs with the same parallelism as the requests.
	Inspect func(ctx context.Context, result *ScanResult)
}

type pool struct {
	doer    Doer
	cfg     WorkerConfig
	items   chan WorkItem
	results chan ScanResult
}

// RunWorkerPool fans out work items across cfg.Threads workers and returns
// a channel of results, closed once every worker is done. When ctx ends,
// pending items are dropped and in-flight requests are abandoned.
func RunWorkerPool(ctx context.Context, d Doer, items []WorkItem, cfg WorkerConfig) <-chan ScanResult {
	if cfg.Threads < 1 {
		cfg.Threads = 1
	}
	p := &pool{
		doer:    d,
		cfg:     cfg,
		items:   make(chan WorkItem, cfg.Threads*2),
		results: make(chan ScanResult, cfg.Threads*2),
	}

	go p.feed(ctx, items)

	var wg sync.WaitGroup
	for range cfg.Threads {
		wg.Go(func() { p.work(ctx) })
	}
	go func() {
		wg.Wait()
		close(p.results)
	}()

	return p.results
}

func (p *pool) feed(ctx context.Context, items []WorkItem) {
	defer close(p.items)
	for _, item := range items {
		select {
		case p.items <- item:
		case <-ctx.Done():
			return
		}
	}
}

func (p *pool) work(ctx context.Context) {
	for item := range p.items {
		result, ok := p.run(ctx, item)
		if !ok {
			return
		}
		select {
		case p.results <- result:
		case <-ctx.Done():
			return
		}
	}
}

// run performs one item. ok is false when ctx ended mid-request.
func (p *pool) run(ctx context.Context, item WorkItem) (ScanResult, bool) {
	resp, err := p.doer.Do(ctx, item.Method, item.Path)
	if err != nil {
		if ctx.Err() != nil {
			return ScanResult{}, false
		}
		return ScanResult{Method: item.Method, Path: item.Path, Error: err}, true
	}
	result := ResultFromResponse(item.Method, item.Path, resp)
	if p.cfg.Inspect != nil {
		p.cfg.Inspect(ctx, &result)
	}
	return result, true
}
