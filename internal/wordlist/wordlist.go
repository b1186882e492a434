// Package wordlist loads the candidate paths for a scan and the URL lists
// fed to the check command.
package wordlist

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
)

const extPlaceholder = "%EXT%"

//go:embed default.txt
var embeddedWordlist string

// Load returns the list of paths to fuzz. An empty path selects the embedded
// default list. Entries containing %EXT% expand once per extension and also
// yield a bare form; with forceExtensions every other entry gets each
// extension appended as well.
func Load(path string, extensions []string, forceExtensions bool) ([]string, error) {
	raw := embeddedWordlist
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading wordlist %s: %w", path, err)
		}
		raw = string(data)
	}
	exts := normalizeExtensions(extensions)

	var set orderedSet
	for _, line := range entries(raw) {
		switch {
		case strings.Contains(line, extPlaceholder):
			for _, ext := range exts {
				set.add(strings.ReplaceAll(line, extPlaceholder, ext))
			}
			bare := strings.ReplaceAll(line, "."+extPlaceholder, "")
			set.add(strings.ReplaceAll(bare, extPlaceholder, ""))
		case forceExtensions && len(exts) > 0 && !strings.HasSuffix(line, "/"):
			set.add(line)
			for _, ext := range exts {
				set.add(line + "." + ext)
			}
		default:
			set.add(line)
		}
	}
	return set.items, nil
}

// ReadURLs reads one URL per line from r, skipping blanks, comments and
// repeats. Validation is left to the caller.
func ReadURLs(r io.Reader) ([]string, error) {
	var set orderedSet
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		set.add(line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading URL list: %w", err)
	}
	return set.items, nil
}

// LoadURLs reads a URL list from path, or from stdin when path is "-".
func LoadURLs(path string) ([]string, error) {
	if path == "-" {
		return ReadURLs(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening URL list %s: %w", path, err)
	}
	defer f.Close()
	return ReadURLs(f)
}

func entries(raw string) []string {
	var out []string
	for line := range strings.SplitSeq(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}

func normalizeExtensions(extensions []string) []string {
	out := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
		if ext != "" {
			out = append(out, ext)
		}
	}
	return out
}

type orderedSet struct {
	seen  map[string]struct{}
	items []string
}

func (s *orderedSet) add(entry string) {
	if entry == "" {
		return
	}
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	if _, ok := s.seen[entry]; ok {
		return
	}
	s.seen[entry] = struct{}{}
	s.items = append(s.items, entry)
}
