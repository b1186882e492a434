package filter

import (
	"context"
	"errors"
	"sync"

	"github.com/maxvaer/soft404/internal/notfound"
	"github.com/maxvaer/soft404/internal/scanner"
	"github.com/rs/zerolog"
)

// Classifier is the part of the 404 engine the filter needs.
type Classifier interface {
	Classify(ctx context.Context, resp *scanner.Response) (notfound.Decision, error)
}

// SmartFilter hides responses the 404 engine classifies as "not found",
// soft 404s included. When no reference can be obtained for a directory the
// result is kept, so that a flaky target never hides real content.
type SmartFilter struct {
	engine Classifier
	logger zerolog.Logger

	mu     sync.Mutex
	warned map[notfound.Key]struct{}
	stages map[notfound.Stage]int
}

// NewSmartFilter returns a filter backed by engine.
func NewSmartFilter(engine Classifier, logger zerolog.Logger) *SmartFilter {
	return &SmartFilter{
		engine: engine,
		logger: logger,
		warned: make(map[notfound.Key]struct{}),
		stages: make(map[notfound.Stage]int),
	}
}

func (sf *SmartFilter) Name() string { return "soft-404" }

func (sf *SmartFilter) ShouldFilter(ctx context.Context, result *scanner.ScanResult) bool {
	if result.Response == nil {
		return false
	}
	d, err := sf.engine.Classify(ctx, result.Response)
	if err != nil {
		sf.degrade(result, err)
		return false
	}
	if d.Is404 {
		sf.mu.Lock()
		sf.stages[d.Stage]++
		sf.mu.Unlock()
	}
	return d.Is404
}

// Stages returns how many results each stage filtered.
func (sf *SmartFilter) Stages() map[notfound.Stage]int {
	sf.mu.Lock()
	defer sf.mu.Unlock()
	out := make(map[notfound.Stage]int, len(sf.stages))
	for k, v := range sf.stages {
		out[k] = v
	}
	return out
}

// degrade logs a detection failure once per directory key.
func (sf *SmartFilter) degrade(result *scanner.ScanResult, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	var de *notfound.DetectionError
	key := notfound.Key{}
	if errors.As(err, &de) {
		key = de.Key
	}
	sf.mu.Lock()
	_, seen := sf.warned[key]
	sf.warned[key] = struct{}{}
	sf.mu.Unlock()
	if seen {
		return
	}
	sf.logger.Warn().
		Str("url", result.URL).
		Str("key", key.String()).
		Err(err).
		Msg("404 detection unavailable, keeping results from this directory")
}
