package weburl

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrMalformed is returned when a string cannot be used as an absolute
// http(s) URL.
var ErrMalformed = errors.New("malformed URL")

// URL is an immutable absolute http or https URL. Every method that derives
// a new URL returns a fresh value and leaves the receiver untouched.
type URL struct {
	u url.URL
}

// Parse parses raw into a URL. The scheme must be http or https and the host
// must be present. An empty path is normalized to "/".
func Parse(raw string) (*URL, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrMalformed, raw, err)
	}
	return FromStd(parsed)
}

// MustParse is like Parse but panics on error. Intended for tests and
// constant inputs.
func MustParse(raw string) *URL {
	u, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return u
}

// FromStd wraps a copy of a net/url value, applying the same validation
// as Parse.
func FromStd(parsed *url.URL) (*URL, error) {
	if parsed == nil {
		return nil, fmt.Errorf("%w: nil URL", ErrMalformed)
	}
	u := *parsed
	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: %q: scheme must be http or https", ErrMalformed, parsed.String())
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: %q: missing host", ErrMalformed, parsed.String())
	}
	if u.Path == "" {
		u.Path = "/"
		u.RawPath = ""
	}
	u.Fragment = ""
	u.RawFragment = ""
	return &URL{u: u}, nil
}

// Std returns a copy of the underlying net/url value.
func (w *URL) Std() *url.URL {
	u := w.u
	return &u
}

func (w *URL) String() string { return w.u.String() }

// Scheme returns "http" or "https".
func (w *URL) Scheme() string { return w.u.Scheme }

// Host returns host[:port].
func (w *URL) Host() string { return w.u.Host }

// Path returns the escaped path, as it appears in String().
func (w *URL) Path() string { return w.u.EscapedPath() }

// PathQS returns the escaped path followed by the query string, if any.
func (w *URL) PathQS() string {
	if w.u.RawQuery == "" {
		return w.Path()
	}
	return w.Path() + "?" + w.u.RawQuery
}

// AllButScheme returns host and path without the scheme or query.
func (w *URL) AllButScheme() string {
	return w.u.Host + w.Path()
}

// IsDir reports whether the path ends with a slash.
func (w *URL) IsDir() bool {
	return strings.HasSuffix(w.u.Path, "/")
}

// FileName returns the last path segment. Directory-shaped URLs have no
// file name.
func (w *URL) FileName() string {
	if w.IsDir() {
		return ""
	}
	p := w.u.Path
	return p[strings.LastIndex(p, "/")+1:]
}

// Extension returns the file name extension without the dot. ".env" has
// extension "env" and an empty name.
func (w *URL) Extension() string {
	name := w.FileName()
	i := strings.LastIndex(name, ".")
	if i < 0 || i == len(name)-1 {
		return ""
	}
	return name[i+1:]
}

// Base returns the URL with query and fragment stripped.
func (w *URL) Base() *URL {
	u := w.u
	u.RawQuery = ""
	u.ForceQuery = false
	return &URL{u: u}
}

// SwitchProtocol flips http and https. An explicit default port is flipped
// along with the scheme.
func (w *URL) SwitchProtocol() *URL {
	u := w.u
	host, port := u.Hostname(), u.Port()
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "https"
		if port == "80" {
			u.Host = host + ":443"
		}
	default:
		u.Scheme = "http"
		if port == "443" {
			u.Host = host + ":80"
		}
	}
	return &URL{u: u}
}

// DomainPath returns scheme, host and the directory part of the path, with
// no query. For "http://h/a/b.php?x=1" that is "http://h/a/".
func (w *URL) DomainPath() *URL {
	ep := w.u.EscapedPath()
	return w.withEscapedPath(ep[:strings.LastIndex(ep, "/")+1])
}

// Parent returns the directory that contains the last path segment. For a
// file that is DomainPath; for "http://h/a/b/" it is "http://h/a/". The
// root is its own parent.
func (w *URL) Parent() *URL {
	ep := w.u.EscapedPath()
	if !w.IsDir() {
		return w.DomainPath()
	}
	if ep == "/" {
		return w.withEscapedPath("/")
	}
	trimmed := strings.TrimSuffix(ep, "/")
	return w.withEscapedPath(trimmed[:strings.LastIndex(trimmed, "/")+1])
}

// Directories returns every ancestor directory, most specific first and
// ending with the root.
func (w *URL) Directories() []*URL {
	var dirs []*URL
	cur := w.DomainPath()
	for {
		dirs = append(dirs, cur)
		if cur.u.EscapedPath() == "/" {
			return dirs
		}
		cur = cur.Parent()
	}
}

// Join resolves rel against the receiver.
func (w *URL) Join(rel string) (*URL, error) {
	ref, err := url.Parse(rel)
	if err != nil {
		return nil, fmt.Errorf("%w: joining %q: %v", ErrMalformed, rel, err)
	}
	return FromStd(w.u.ResolveReference(ref))
}

// WithFileName returns the URL of name inside the receiver's directory. The
// query string is dropped.
func (w *URL) WithFileName(name string) *URL {
	dir := w.DomainPath().u.EscapedPath()
	return w.withEscapedPath(dir + url.PathEscape(name))
}

func (w *URL) withEscapedPath(escaped string) *URL {
	u := w.u
	u.RawQuery = ""
	u.ForceQuery = false
	p, err := url.PathUnescape(escaped)
	if err != nil {
		p = escaped
	}
	u.Path = p
	u.RawPath = ""
	if escaped != (&url.URL{Path: p}).EscapedPath() {
		u.RawPath = escaped
	}
	return &URL{u: u}
}
