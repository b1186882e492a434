package output

import (
	"cmp"
	"slices"

	"github.com/maxvaer/soft404/internal/scanner"
)

// sortFields are the columns a SortedWriter can order by.
type sortFields struct {
	status int
	size   int64
	path   string
}

func compareBy(by string) func(a, b sortFields) int {
	switch by {
	case "status":
		return func(a, b sortFields) int { return cmp.Compare(a.status, b.status) }
	case "size":
		return func(a, b sortFields) int { return cmp.Compare(a.size, b.size) }
	case "path":
		return func(a, b sortFields) int { return cmp.Compare(a.path, b.path) }
	}
	return func(sortFields, sortFields) int { return 0 }
}

// SortedWriter holds results and verdicts back until WriteFooter, then
// hands them to the wrapped Writer in sorted order. Ties keep arrival order.
type SortedWriter struct {
	inner    Writer
	compare  func(a, b sortFields) int
	results  []scanner.ScanResult
	verdicts []Verdict
}

// NewSortedWriter wraps inner. by is "status", "size" or "path"; verdicts
// sorted by "path" are ordered by URL.
func NewSortedWriter(inner Writer, by string) *SortedWriter {
	return &SortedWriter{inner: inner, compare: compareBy(by)}
}

func (w *SortedWriter) WriteHeader(kind Kind) error { return w.inner.WriteHeader(kind) }

func (w *SortedWriter) WriteResult(result *scanner.ScanResult) error {
	r := *result
	r.Response = nil
	w.results = append(w.results, r)
	return nil
}

func (w *SortedWriter) WriteVerdict(v *Verdict) error {
	w.verdicts = append(w.verdicts, *v)
	return nil
}

func (w *SortedWriter) WriteFooter(stats Stats) error {
	slices.SortStableFunc(w.results, func(a, b scanner.ScanResult) int {
		return w.compare(
			sortFields{a.StatusCode, a.ContentLength, a.Path},
			sortFields{b.StatusCode, b.ContentLength, b.Path})
	})
	slices.SortStableFunc(w.verdicts, func(a, b Verdict) int {
		return w.compare(
			sortFields{a.StatusCode, a.ContentLength, a.URL},
			sortFields{b.StatusCode, b.ContentLength, b.URL})
	})

	for i := range w.results {
		if err := w.inner.WriteResult(&w.results[i]); err != nil {
			return err
		}
	}
	for i := range w.verdicts {
		if err := w.inner.WriteVerdict(&w.verdicts[i]); err != nil {
			return err
		}
	}
	return w.inner.WriteFooter(stats)
}

func (w *SortedWriter) Close() error { return w.inner.Close() }
