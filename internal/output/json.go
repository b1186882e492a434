package output

import (
	"encoding/json"
	"io"

	"github.com/maxvaer/soft404/internal/scanner"
)

type jsonEntry struct {
	Method        string   `json:"method,omitempty"`
	URL           string   `json:"url"`
	Path          string   `json:"path,omitempty"`
	StatusCode    int      `json:"status,omitempty"`
	ContentLength int64    `json:"size"`
	RedirectURL   string   `json:"redirect,omitempty"`
	Verdict       string   `json:"verdict,omitempty"`
	Stage         string   `json:"stage,omitempty"`
	Similarity    *float64 `json:"similarity,omitempty"`
	Key           string   `json:"key,omitempty"`
	Error         string   `json:"error,omitempty"`
}

// JSONWriter writes results as a JSON array once the run is over.
type JSONWriter struct {
	w       io.Writer
	closer  io.Closer
	entries []jsonEntry
}

func newJSONWriter(w io.Writer, closer io.Closer) *JSONWriter {
	return &JSONWriter{w: w, closer: closer, entries: []jsonEntry{}}
}

func (j *JSONWriter) WriteHeader(Kind) error { return nil }

func (j *JSONWriter) WriteResult(result *scanner.ScanResult) error {
	j.entries = append(j.entries, jsonEntry{
		Method:        result.Method,
		URL:           result.URL,
		Path:          result.Path,
		StatusCode:    result.StatusCode,
		ContentLength: result.ContentLength,
		RedirectURL:   result.RedirectURL,
	})
	return nil
}

func (j *JSONWriter) WriteVerdict(v *Verdict) error {
	e := jsonEntry{
		URL:           v.URL,
		StatusCode:    v.StatusCode,
		ContentLength: v.ContentLength,
		Verdict:       v.Label(),
		Stage:         v.Stage,
		Key:           v.Key,
	}
	if v.Err != nil {
		e.Error = v.Err.Error()
	} else {
		sim := v.Similarity
		e.Similarity = &sim
	}
	j.entries = append(j.entries, e)
	return nil
}

func (j *JSONWriter) WriteFooter(Stats) error {
	enc := json.NewEncoder(j.w)
	enc.SetIndent("", "  ")
	return enc.Encode(j.entries)
}

func (j *JSONWriter) Close() error {
	if j.closer != nil {
		return j.closer.Close()
	}
	return nil
}
