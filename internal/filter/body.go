package filter

import (
	"context"
	"strings"

	"github.com/maxvaer/soft404/internal/scanner"
)

func bodyText(result *scanner.ScanResult) string {
	if result.Response == nil {
		return ""
	}
	return result.Response.Text()
}

// BodyMatchFilter only passes results whose decoded body contains a given
// string.
type BodyMatchFilter struct {
	needle string
}

// NewBodyMatchFilter creates a filter that requires the body to contain needle.
func NewBodyMatchFilter(needle string) *BodyMatchFilter {
	return &BodyMatchFilter{needle: needle}
}

func (f *BodyMatchFilter) Name() string { return "body-match" }

func (f *BodyMatchFilter) ShouldFilter(_ context.Context, result *scanner.ScanResult) bool {
	return !strings.Contains(bodyText(result), f.needle)
}

// BodyExcludeFilter hides results whose decoded body contains a given string.
type BodyExcludeFilter struct {
	needle string
}

// NewBodyExcludeFilter creates a filter that hides results containing needle.
func NewBodyExcludeFilter(needle string) *BodyExcludeFilter {
	return &BodyExcludeFilter{needle: needle}
}

func (f *BodyExcludeFilter) Name() string { return "body-exclude" }

func (f *BodyExcludeFilter) ShouldFilter(_ context.Context, result *scanner.ScanResult) bool {
	return strings.Contains(bodyText(result), f.needle)
}
