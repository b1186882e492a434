package filter

import (
	"context"

	"github.com/maxvaer/soft404/internal/scanner"
)

type intSet map[int]struct{}

func newIntSet(vals []int) intSet {
	s := make(intSet, len(vals))
	for _, v := range vals {
		s[v] = struct{}{}
	}
	return s
}

func (s intSet) has(v int) bool {
	_, ok := s[v]
	return ok
}

// StatusFilter includes or excludes results based on HTTP status codes.
type StatusFilter struct {
	include intSet
	exclude intSet
}

// NewStatusFilter creates a status code filter. If include is non-empty, only
// those codes pass through and exclude is ignored. Otherwise codes in
// exclude are filtered.
func NewStatusFilter(include, exclude []int) *StatusFilter {
	return &StatusFilter{include: newIntSet(include), exclude: newIntSet(exclude)}
}

func (f *StatusFilter) Name() string { return "status" }

func (f *StatusFilter) ShouldFilter(_ context.Context, result *scanner.ScanResult) bool {
	if len(f.include) > 0 {
		return !f.include.has(result.StatusCode)
	}
	return f.exclude.has(result.StatusCode)
}

// SizeFilter excludes results matching specific response body sizes.
type SizeFilter struct {
	sizes intSet
}

// NewSizeFilter creates a filter that drops results with the given body sizes.
func NewSizeFilter(excludeSizes []int) *SizeFilter {
	return &SizeFilter{sizes: newIntSet(excludeSizes)}
}

func (f *SizeFilter) Name() string { return "size" }

func (f *SizeFilter) ShouldFilter(_ context.Context, result *scanner.ScanResult) bool {
	return f.sizes.has(int(result.ContentLength))
}
