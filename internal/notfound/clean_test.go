package notfound

import (
	"strings"
	"testing"

	"github.com/maxvaer/soft404/internal/scanner"
	"github.com/maxvaer/soft404/internal/weburl"
)

func TestClean_RemovesPathSegment(t *testing.T) {
	u := weburl.MustParse("http://host.tld/aaaaaaa/")
	got := Clean("spam aaaaaaa eggs", u, scanner.DocTypeTextOrHTML)
	if got != "spam  eggs" {
		t.Errorf("Clean() = %q, want %q", got, "spam  eggs")
	}
}

func TestClean_BinaryUnchanged(t *testing.T) {
	u := weburl.MustParse("http://host.tld/aaaaaaa/")
	body := "spam aaaaaaa eggs"
	if got := Clean(body, u, scanner.DocTypeBinary); got != body {
		t.Errorf("binary body changed to %q", got)
	}
	if got := Clean(body, u, scanner.DocTypeImage); got != body {
		t.Errorf("image body changed to %q", got)
	}
}

func TestClean_KeepsShortTokens(t *testing.T) {
	u := weburl.MustParse("http://host.tld/ok/index/look.php")
	body := "everything is ok here, index of books"
	got := Clean(body, u, scanner.DocTypeTextOrHTML)
	if !strings.Contains(got, "ok here") {
		t.Errorf("short token removed: %q", got)
	}
	if !strings.Contains(got, "index of") {
		t.Errorf("six byte token removed: %q", got)
	}
}

func TestClean_PureAndSecondPassNoop(t *testing.T) {
	u := weburl.MustParse("https://shop.example.com/catalog/items/widget.html?id=42")
	body := `<h1>Not found</h1><p>https://shop.example.com/catalog/items/widget.html?id=42 ` +
		`was not found. Try http://shop.example.com/catalog/ or /catalog/items/widget.html</p>`

	first := Clean(body, u, scanner.DocTypeTextOrHTML)
	if again := Clean(body, u, scanner.DocTypeTextOrHTML); again != first {
		t.Errorf("Clean is not deterministic: %q vs %q", first, again)
	}
	if second := Clean(first, u, scanner.DocTypeTextOrHTML); second != first {
		t.Errorf("second pass changed output: %q -> %q", first, second)
	}
	for _, leaked := range []string{"shop.example.com", "widget.html", "catalog/"} {
		if strings.Contains(first, leaked) {
			t.Errorf("cleaned body still contains %q: %q", leaked, first)
		}
	}
}

func TestClean_RemovesDecodedAndEscapedForms(t *testing.T) {
	u := weburl.MustParse("http://host.tld/my%20folder/file.php?a=1&b=2")
	body := "missing: my folder | /my%20folder/file.php?a=1&amp;b=2 | end"
	got := Clean(body, u, scanner.DocTypeTextOrHTML)
	if strings.Contains(got, "my folder") {
		t.Errorf("percent-decoded token kept: %q", got)
	}
	if strings.Contains(got, "a=1&amp;b=2") {
		t.Errorf("HTML-escaped path+query kept: %q", got)
	}
	if !strings.HasPrefix(got, "missing: ") || !strings.HasSuffix(got, " end") {
		t.Errorf("unrelated text damaged: %q", got)
	}
}

func TestClean_SwitchedProtocolRemoved(t *testing.T) {
	u := weburl.MustParse("http://host.tld/path/")
	got := Clean("see https://host.tld/path/ now", u, scanner.DocTypeTextOrHTML)
	if strings.Contains(got, "https") {
		t.Errorf("https variant kept: %q", got)
	}
}

func TestClean_EmbeddedTokensConverge(t *testing.T) {
	u := weburl.MustParse("http://host.tld/abcdefg")
	// Removing the inner token joins the outer halves into a new one.
	got := Clean("x abcabcdefgdefg y", u, scanner.DocTypeTextOrHTML)
	if got != "x  y" {
		t.Errorf("Clean() = %q, want %q", got, "x  y")
	}
}

func TestNoiseTokens_LengthAndOrder(t *testing.T) {
	tokens := NoiseTokens(weburl.MustParse("http://h.tld/a/bcdefghij/k.php"))
	if len(tokens) == 0 {
		t.Fatal("no tokens")
	}
	seen := map[string]bool{}
	for i, tok := range tokens {
		if len(tok) < minTokenLength {
			t.Errorf("token %q shorter than %d", tok, minTokenLength)
		}
		if seen[tok] {
			t.Errorf("duplicate token %q", tok)
		}
		seen[tok] = true
		if i > 0 && len(tokens[i-1]) < len(tok) {
			t.Errorf("tokens not sorted longest first at %d", i)
		}
	}
	if !seen["bcdefghij"] {
		t.Errorf("path segment missing from %v", tokens)
	}
	if seen["k.php"] || seen["a"] {
		t.Errorf("short segment kept: %v", tokens)
	}
}
