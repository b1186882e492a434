package scanner

import "time"

// ScanResult holds the outcome of a single path probe.
type ScanResult struct {
	Method        string // HTTP method used
	Path          string
	URL           string
	StatusCode    int
	ContentLength int64
	WordCount     int
	LineCount     int
	RedirectURL   string
	Duration      time.Duration
	Response      *Response // full response, released by the runner after filtering
	Error         error
	Filtered      bool
	FilterReason  string
}

// ResultFromResponse flattens a response into a ScanResult.
func ResultFromResponse(method, path string, resp *Response) ScanResult {
	return ScanResult{
		Method:        method,
		Path:          path,
		URL:           resp.URL.String(),
		StatusCode:    resp.StatusCode,
		ContentLength: resp.ContentLength,
		WordCount:     resp.WordCount,
		LineCount:     resp.LineCount,
		RedirectURL:   resp.RedirectURL,
		Duration:      resp.Duration,
		Response:      resp,
	}
}
