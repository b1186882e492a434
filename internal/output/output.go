package output

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/maxvaer/soft404/internal/scanner"
	"golang.org/x/term"
)

// Kind selects the columns a writer emits.
type Kind int

const (
	// KindScan lists brute-forced paths that survived filtering.
	KindScan Kind = iota
	// KindCheck lists one 404 verdict per URL.
	KindCheck
)

// Stats holds aggregate scan statistics.
type Stats struct {
	TotalRequests  int
	FilteredCount  int
	Soft404Count   int // subset of FilteredCount hidden by the 404 engine
	ErrorCount     int
	References     int // 404 references captured
	Duration       time.Duration
	RequestsPerSec float64
}

// Verdict is one URL classified by the check command.
type Verdict struct {
	URL           string
	StatusCode    int
	ContentLength int64
	Is404         bool
	Stage         string
	Similarity    float64
	Key           string
	Err           error
}

// Label is "404", "ok" or "error".
func (v *Verdict) Label() string {
	switch {
	case v.Err != nil:
		return "error"
	case v.Is404:
		return "404"
	default:
		return "ok"
	}
}

// Writer is implemented by each output format.
type Writer interface {
	WriteHeader(kind Kind) error
	WriteResult(result *scanner.ScanResult) error
	WriteVerdict(v *Verdict) error
	WriteFooter(stats Stats) error
	Close() error
}

// New returns the writer for format ("text", "json" or "csv"). An empty
// outputFile writes to stdout.
func New(format, outputFile string, noColor, quiet bool) (Writer, error) {
	w, closer, err := open(outputFile)
	if err != nil {
		return nil, err
	}
	switch format {
	case "json":
		return newJSONWriter(w, closer), nil
	case "csv":
		return newCSVWriter(w, closer), nil
	case "text", "":
		color := !noColor && outputFile == "" && IsTerminal(os.Stdout)
		return newTextWriter(w, closer, color, quiet), nil
	default:
		if closer != nil {
			closer.Close()
		}
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

func open(outputFile string) (io.Writer, io.Closer, error) {
	if outputFile == "" {
		return os.Stdout, nil, nil
	}
	f, err := os.Create(outputFile)
	if err != nil {
		return nil, nil, err
	}
	return f, f, nil
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
