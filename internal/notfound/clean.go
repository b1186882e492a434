package notfound

import (
	"html"
	"net/url"
	"sort"
	"strings"

	"github.com/maxvaer/soft404/internal/scanner"
	"github.com/maxvaer/soft404/internal/weburl"
)

// minTokenLength is the shortest noise token that gets removed. Shorter
// ones ("a", "co", "index") strip too much of unrelated text.
const minTokenLength = 7

// Clean removes every URL-derived noise token from body. Bodies that are not
// text or HTML are returned unchanged. Cleaning an already cleaned body is a
// no-op. uri must not be nil.
func Clean(body string, uri *weburl.URL, doc scanner.DocType) string {
	if doc != scanner.DocTypeTextOrHTML || body == "" {
		return body
	}
	return removeTokens(body, NoiseTokens(uri))
}

// NoiseTokens returns the sorted, de-duplicated set of substrings Clean
// removes for uri: the URL with and without query, each in both schemes,
// decomposed into directories, path segments, host+path, path+query and
// path. Each token also appears percent-decoded and HTML-escaped. Tokens
// are ordered longest first so that a token is never removed before one
// that contains it.
func NoiseTokens(uri *weburl.URL) []string {
	base := uri.Base()
	variants := []*weburl.URL{base, base.SwitchProtocol(), uri, uri.SwitchProtocol()}

	seen := make(map[string]struct{})
	add := func(s string) {
		for _, form := range tokenForms(s) {
			if len(form) >= minTokenLength {
				seen[form] = struct{}{}
			}
		}
	}

	for _, v := range variants {
		for _, dir := range v.Directories() {
			add(dir.String())
		}
		full := v.String()
		for _, segment := range strings.Split(full, "/") {
			add(segment)
		}
		add(full)
		add(v.AllButScheme())
		add(v.PathQS())
		add(v.Path())
	}

	tokens := make([]string, 0, len(seen))
	for t := range seen {
		tokens = append(tokens, t)
	}
	sort.Slice(tokens, func(i, j int) bool {
		if len(tokens[i]) != len(tokens[j]) {
			return len(tokens[i]) > len(tokens[j])
		}
		return tokens[i] < tokens[j]
	})
	return tokens
}

// tokenForms returns s as is, percent-decoded, and the HTML-escaped version
// of both.
func tokenForms(s string) []string {
	forms := []string{s, html.EscapeString(s)}
	if decoded, err := url.QueryUnescape(s); err == nil && decoded != s {
		forms = append(forms, decoded, html.EscapeString(decoded))
	}
	return forms
}

// removeTokens strips every token until the body stops changing. Removing
// one occurrence can join two halves into a new one, hence the loop. Every
// productive pass shrinks the body, so it terminates.
func removeTokens(body string, tokens []string) string {
	for {
		before := len(body)
		for _, t := range tokens {
			if strings.Contains(body, t) {
				body = strings.ReplaceAll(body, t, "")
			}
		}
		if len(body) == before {
			return body
		}
	}
}
