package output

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/maxvaer/soft404/internal/scanner"
)

// TextWriter writes colored text output to a writer.
type TextWriter struct {
	w      io.Writer
	closer io.Closer
	footer io.Writer
	quiet  bool

	dim, green, cyan, yellow, red *color.Color
}

func newTextWriter(w io.Writer, closer io.Closer, useColor, quiet bool) *TextWriter {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return &TextWriter{
		w:      w,
		closer: closer,
		footer: os.Stderr,
		quiet:  quiet,
		dim:    mk(color.Faint),
		green:  mk(color.FgGreen),
		cyan:   mk(color.FgCyan),
		yellow: mk(color.FgYellow),
		red:    mk(color.FgRed),
	}
}

func (t *TextWriter) WriteHeader(kind Kind) error {
	if t.quiet {
		return nil
	}
	header := "Code      Size  URL"
	if kind == KindCheck {
		header = "Verdict Code      Size  Stage             URL"
	}
	_, err := t.dim.Fprintln(t.w, header)
	return err
}

func (t *TextWriter) WriteResult(result *scanner.ScanResult) error {
	redirectInfo := ""
	if result.RedirectURL != "" {
		redirectInfo = fmt.Sprintf(" -> %s", result.RedirectURL)
	}

	prefix := ""
	if result.Method != "" && result.Method != "GET" {
		prefix = fmt.Sprintf("[%s] ", result.Method)
	}

	_, err := fmt.Fprintf(t.w, "%s  %8d  %s%s%s\n",
		t.colorForStatus(result.StatusCode).Sprintf("%3d", result.StatusCode),
		result.ContentLength,
		prefix,
		result.URL,
		redirectInfo,
	)
	return err
}

func (t *TextWriter) WriteVerdict(v *Verdict) error {
	label := v.Label()
	var c *color.Color
	switch label {
	case "404":
		c = t.yellow
	case "error":
		c = t.red
	default:
		c = t.green
	}
	if v.Err != nil {
		_, err := fmt.Fprintf(t.w, "%s %s\n", c.Sprintf("%-7s", label), v.URL+": "+v.Err.Error())
		return err
	}
	stage := v.Stage
	if v.Stage != "" && v.Similarity > 0 && v.Similarity < 1 {
		stage = fmt.Sprintf("%s %.2f", v.Stage, v.Similarity)
	}
	_, err := fmt.Fprintf(t.w, "%s %s  %8d  %-16s  %s\n",
		c.Sprintf("%-7s", label),
		t.colorForStatus(v.StatusCode).Sprintf("%3d", v.StatusCode),
		v.ContentLength,
		stage,
		v.URL,
	)
	return err
}

func (t *TextWriter) WriteFooter(stats Stats) error {
	if t.quiet {
		return nil
	}
	_, err := fmt.Fprintf(t.footer,
		"\nCompleted: %d requests | Filtered: %d (soft 404: %d) | Errors: %d | References: %d | Duration: %s | %.1f req/s\n",
		stats.TotalRequests,
		stats.FilteredCount,
		stats.Soft404Count,
		stats.ErrorCount,
		stats.References,
		stats.Duration.Round(time.Millisecond),
		stats.RequestsPerSec,
	)
	return err
}

func (t *TextWriter) Close() error {
	if t.closer != nil {
		return t.closer.Close()
	}
	return nil
}

func (t *TextWriter) colorForStatus(code int) *color.Color {
	switch {
	case code >= 200 && code < 300:
		return t.green
	case code >= 300 && code < 400:
		return t.cyan
	case code >= 400 && code < 500:
		return t.yellow
	case code >= 500:
		return t.red
	default:
		return t.dim
	}
}
