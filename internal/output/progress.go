package output

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/term"
)

// Progress tracks and displays scan progress on a terminal.
type Progress struct {
	w         io.Writer
	fd        int
	total     atomic.Int64
	completed atomic.Int64
	filtered  atomic.Int64
	soft404   atomic.Int64
	errors    atomic.Int64
	start     time.Time
	done      chan struct{}
	stopped   chan struct{}
	enabled   bool

	mu sync.Mutex // serializes line redraws with result output
}

// NewProgress creates a progress tracker writing to stderr. It stays silent
// when quiet is set or stderr is not a terminal. Call Start() to begin
// display updates.
func NewProgress(total int, quiet bool) *Progress {
	p := newProgress(os.Stderr, total, !quiet && IsTerminal(os.Stderr))
	p.fd = int(os.Stderr.Fd())
	return p
}

func newProgress(w io.Writer, total int, enabled bool) *Progress {
	p := &Progress{
		w:       w,
		fd:      -1,
		start:   time.Now(),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		enabled: enabled,
	}
	p.total.Store(int64(total))
	return p
}

// Start begins periodically printing progress.
func (p *Progress) Start() {
	if !p.enabled {
		close(p.stopped)
		return
	}
	go func() {
		defer close(p.stopped)
		ticker := time.NewTicker(500 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				p.Redraw()
			case <-p.done:
				p.Redraw()
				fmt.Fprint(p.w, "\n")
				return
			}
		}
	}()
}

// AddTotal grows the expected request count.
func (p *Progress) AddTotal(n int) { p.total.Add(int64(n)) }

// Increment records a completed request.
func (p *Progress) Increment() { p.completed.Add(1) }

// IncrementFiltered records a filtered result; soft marks results hidden by
// the 404 engine.
func (p *Progress) IncrementFiltered(soft bool) {
	p.filtered.Add(1)
	if soft {
		p.soft404.Add(1)
	}
}

// IncrementErrors records an error.
func (p *Progress) IncrementErrors() { p.errors.Add(1) }

// Stop ends the progress display and waits for the last redraw.
func (p *Progress) Stop() {
	close(p.done)
	<-p.stopped
}

// Print runs fn with the progress line cleared, then redraws it. Result
// lines go through here so they never interleave with the bar.
func (p *Progress) Print(fn func() error) error {
	if !p.enabled {
		return fn()
	}
	p.mu.Lock()
	fmt.Fprint(p.w, "\r\033[K")
	err := fn()
	p.mu.Unlock()
	p.Redraw()
	return err
}

// Redraw repaints the progress line.
func (p *Progress) Redraw() {
	if !p.enabled {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "\r\033[K%s", p.line())
}

func (p *Progress) line() string {
	completed, total := p.completed.Load(), p.total.Load()
	elapsed := time.Since(p.start).Seconds()
	rate := float64(0)
	if elapsed > 0 {
		rate = float64(completed) / elapsed
	}

	pct := float64(0)
	if total > 0 {
		pct = float64(completed) / float64(total) * 100
	}

	eta := ""
	if rate > 0 && completed < total {
		remaining := float64(total-completed) / rate
		eta = fmt.Sprintf(" | ETA: %s", time.Duration(remaining*float64(time.Second)).Round(time.Second))
	}

	s := fmt.Sprintf("[%3.0f%%] %d/%d | %.0f req/s | Filtered: %d (soft 404: %d) | Errors: %d%s",
		pct, completed, total, rate,
		p.filtered.Load(), p.soft404.Load(), p.errors.Load(), eta)

	if p.fd >= 0 {
		if width, _, err := term.GetSize(p.fd); err == nil && width > 1 && len(s) >= width {
			s = s[:width-1]
		}
	}
	return s
}
