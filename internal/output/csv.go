package output

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/maxvaer/soft404/internal/scanner"
)

type column[T any] struct {
	name  string
	value func(T) string
}

var resultColumns = []column[*scanner.ScanResult]{
	{"method", func(r *scanner.ScanResult) string { return r.Method }},
	{"url", func(r *scanner.ScanResult) string { return r.URL }},
	{"path", func(r *scanner.ScanResult) string { return r.Path }},
	{"status", func(r *scanner.ScanResult) string { return strconv.Itoa(r.StatusCode) }},
	{"size", func(r *scanner.ScanResult) string { return strconv.FormatInt(r.ContentLength, 10) }},
	{"redirect", func(r *scanner.ScanResult) string { return r.RedirectURL }},
}

var verdictColumns = []column[*Verdict]{
	{"url", func(v *Verdict) string { return v.URL }},
	{"status", func(v *Verdict) string { return strconv.Itoa(v.StatusCode) }},
	{"size", func(v *Verdict) string { return strconv.FormatInt(v.ContentLength, 10) }},
	{"verdict", (*Verdict).Label},
	{"stage", func(v *Verdict) string { return v.Stage }},
	{"similarity", func(v *Verdict) string { return strconv.FormatFloat(v.Similarity, 'f', 4, 64) }},
	{"key", func(v *Verdict) string { return v.Key }},
	{"error", func(v *Verdict) string {
		if v.Err == nil {
			return ""
		}
		return v.Err.Error()
	}},
}

func header[T any](cols []column[T]) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.name
	}
	return out
}

func record[T any](cols []column[T], v T) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.value(v)
	}
	return out
}

// CSVWriter writes one record per result or verdict after a header row.
type CSVWriter struct {
	w      *csv.Writer
	closer io.Closer
}

func newCSVWriter(w io.Writer, closer io.Closer) *CSVWriter {
	return &CSVWriter{w: csv.NewWriter(w), closer: closer}
}

func (c *CSVWriter) WriteHeader(kind Kind) error {
	if kind == KindCheck {
		return c.w.Write(header(verdictColumns))
	}
	return c.w.Write(header(resultColumns))
}

func (c *CSVWriter) WriteResult(result *scanner.ScanResult) error {
	return c.w.Write(record(resultColumns, result))
}

func (c *CSVWriter) WriteVerdict(v *Verdict) error {
	return c.w.Write(record(verdictColumns, v))
}

func (c *CSVWriter) WriteFooter(Stats) error {
	c.w.Flush()
	return c.w.Error()
}

func (c *CSVWriter) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}
