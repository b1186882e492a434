package notfound

import (
	"fmt"
	"strings"

	"github.com/maxvaer/soft404/internal/weburl"
)

// Shape tells whether a key groups file-like or directory-like URLs. The
// two shapes are probed differently and often answered by different
// handlers.
type Shape int

const (
	ShapeFile Shape = iota
	ShapeDirectory
)

func (s Shape) String() string {
	if s == ShapeDirectory {
		return "dir"
	}
	return "file"
}

// Key identifies the reference a URL is compared against.
type Key struct {
	// Directory is the URL of the directory that holds the candidate,
	// without query.
	Directory string
	Shape     Shape
	// Extension is set only when references are split by extension.
	Extension string
}

func (k Key) String() string {
	s := k.Directory + " [" + k.Shape.String()
	if k.Extension != "" {
		s += " ." + k.Extension
	}
	return s + "]"
}

// KeyFor derives the key for u. "http://h/a/b.php?x" maps to the file
// shaped key "http://h/a/"; "http://h/a/b/" maps to the directory shaped
// key "http://h/a/". The root is always file shaped.
func KeyFor(u *weburl.URL, splitByExtension bool) Key {
	if u.IsDir() && u.Path() != "/" {
		return Key{Directory: u.Parent().String(), Shape: ShapeDirectory}
	}
	k := Key{Directory: u.DomainPath().String(), Shape: ShapeFile}
	if splitByExtension {
		k.Extension = strings.ToLower(u.Extension())
	}
	return k
}

// generic returns the key without its extension.
func (k Key) generic() Key {
	k.Extension = ""
	return k
}

// ProbeURL returns a URL under the key's directory that should not exist.
// token is the random part.
func (k Key) ProbeURL(token string) (*weburl.URL, error) {
	dir, err := weburl.Parse(k.Directory)
	if err != nil {
		return nil, fmt.Errorf("%w: key %s: %w", ErrMalformedInput, k, err)
	}
	if k.Shape == ShapeDirectory {
		return dir.Join(token + "/")
	}
	name := token
	if k.Extension != "" {
		name += "." + k.Extension
	}
	return dir.WithFileName(name), nil
}
