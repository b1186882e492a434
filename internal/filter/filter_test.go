package filter

import (
	"context"
	"net/http"
	"testing"

	"github.com/maxvaer/soft404/internal/scanner"
	"github.com/maxvaer/soft404/internal/weburl"
)

func resultWithBody(rawURL string, status int, body string) *scanner.ScanResult {
	h := http.Header{}
	h.Set("Content-Type", "text/html")
	resp := scanner.NewResponse(weburl.MustParse(rawURL), status, h, []byte(body))
	r := scanner.ResultFromResponse("GET", resp.URL.Path(), resp)
	return &r
}

func TestStatusFilter_Include(t *testing.T) {
	f := NewStatusFilter([]int{200, 301}, nil)
	ctx := context.Background()

	if f.ShouldFilter(ctx, &scanner.ScanResult{StatusCode: 200}) {
		t.Error("200 should pass include filter")
	}
	if !f.ShouldFilter(ctx, &scanner.ScanResult{StatusCode: 404}) {
		t.Error("404 should be filtered by include filter")
	}
}

func TestStatusFilter_Exclude(t *testing.T) {
	f := NewStatusFilter(nil, []int{404, 500})
	ctx := context.Background()

	if f.ShouldFilter(ctx, &scanner.ScanResult{StatusCode: 200}) {
		t.Error("200 should pass exclude filter")
	}
	if !f.ShouldFilter(ctx, &scanner.ScanResult{StatusCode: 404}) {
		t.Error("404 should be filtered by exclude filter")
	}
}

func TestSizeFilter(t *testing.T) {
	f := NewSizeFilter([]int{0, 1234})
	ctx := context.Background()

	r := &scanner.ScanResult{ContentLength: 1234}
	if !f.ShouldFilter(ctx, r) {
		t.Error("size 1234 should be filtered")
	}

	r.ContentLength = 5678
	if f.ShouldFilter(ctx, r) {
		t.Error("size 5678 should pass")
	}
}

func TestBodyFilters(t *testing.T) {
	ctx := context.Background()
	r := resultWithBody("http://h.tld/admin", 200, "<h1>Welcome admin</h1>")

	if NewBodyMatchFilter("Welcome").ShouldFilter(ctx, r) {
		t.Error("matching body should pass body-match")
	}
	if !NewBodyMatchFilter("Login").ShouldFilter(ctx, r) {
		t.Error("non-matching body should be filtered by body-match")
	}
	if !NewBodyExcludeFilter("admin").ShouldFilter(ctx, r) {
		t.Error("body containing needle should be filtered by body-exclude")
	}
	if NewBodyExcludeFilter("secret").ShouldFilter(ctx, &scanner.ScanResult{}) {
		t.Error("result without response should pass body-exclude")
	}
}

func TestChain_ShortCircuits(t *testing.T) {
	chain := NewChain(NewStatusFilter(nil, []int{404}))
	chain.Add(NewSizeFilter([]int{0}))
	if chain.Len() != 2 {
		t.Fatalf("Len = %d", chain.Len())
	}

	ctx := context.Background()
	// Status filter should catch this first.
	if reason := chain.Apply(ctx, &scanner.ScanResult{StatusCode: 404, ContentLength: 0}); reason != "status" {
		t.Errorf("expected reason 'status', got %q", reason)
	}
	if reason := chain.Apply(ctx, &scanner.ScanResult{StatusCode: 200, ContentLength: 0}); reason != "size" {
		t.Errorf("expected reason 'size', got %q", reason)
	}
	if reason := chain.Apply(ctx, &scanner.ScanResult{StatusCode: 200, ContentLength: 10}); reason != "" {
		t.Errorf("expected result to pass, got %q", reason)
	}

	hidden := chain.Hidden()
	if hidden["status"] != 1 || hidden["size"] != 1 || len(hidden) != 2 {
		t.Errorf("Hidden() = %v", hidden)
	}
}

func TestChain_Empty(t *testing.T) {
	if reason := NewChain().Apply(context.Background(), &scanner.ScanResult{StatusCode: 200}); reason != "" {
		t.Errorf("empty chain filtered with reason %q", reason)
	}
}
