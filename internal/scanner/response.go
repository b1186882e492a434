package scanner

import (
	"mime"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/maxvaer/soft404/internal/weburl"
	"golang.org/x/net/html/charset"
)

// DocType is the coarse document class of a response body.
type DocType int

const (
	DocTypeBinary DocType = iota
	DocTypeTextOrHTML
	DocTypeImage
)

func (d DocType) String() string {
	switch d {
	case DocTypeTextOrHTML:
		return "text"
	case DocTypeImage:
		return "image"
	default:
		return "binary"
	}
}

// DetectDocType classifies a body by its Content-Type header, sniffing the
// body when the header is missing.
func DetectDocType(contentType string, body []byte) DocType {
	if strings.TrimSpace(contentType) == "" {
		contentType = http.DetectContentType(body)
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	}

	switch {
	case strings.HasPrefix(mediaType, "text/"),
		strings.HasSuffix(mediaType, "+xml"),
		strings.HasSuffix(mediaType, "+json"),
		mediaType == "application/xml",
		mediaType == "application/json",
		mediaType == "application/javascript",
		mediaType == "application/x-javascript":
		return DocTypeTextOrHTML
	case strings.HasPrefix(mediaType, "image/"):
		return DocTypeImage
	default:
		return DocTypeBinary
	}
}

// Response holds the parsed HTTP response data.
type Response struct {
	URL           *weburl.URL
	StatusCode    int
	Header        http.Header
	Body          []byte
	ContentLength int64
	WordCount     int
	LineCount     int
	DocType       DocType
	RedirectURL   string
	Duration      time.Duration
}

// NewResponse builds a Response from already read parts, deriving the
// counters and the document type.
func NewResponse(u *weburl.URL, status int, header http.Header, body []byte) *Response {
	if header == nil {
		header = http.Header{}
	}
	bodyStr := string(body)
	lineCount := strings.Count(bodyStr, "\n") + 1
	if len(body) == 0 {
		lineCount = 0
	}
	r := &Response{
		URL:           u,
		StatusCode:    status,
		Header:        header,
		Body:          body,
		ContentLength: int64(len(body)),
		WordCount:     len(strings.Fields(bodyStr)),
		LineCount:     lineCount,
		DocType:       DetectDocType(header.Get("Content-Type"), body),
	}
	if status >= 300 && status < 400 {
		r.RedirectURL = header.Get("Location")
	}
	return r
}

// Text returns the body decoded to UTF-8 using the declared or sniffed
// charset. Bytes that cannot be decoded are dropped.
func (r *Response) Text() string {
	return decodeText(r.Body, r.Header.Get("Content-Type"))
}

func decodeText(body []byte, contentType string) string {
	enc, _, certain := charset.DetermineEncoding(body, contentType)
	if !certain && utf8.Valid(body) {
		return string(body)
	}
	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return strings.ToValidUTF8(string(body), "")
	}
	return strings.ToValidUTF8(string(decoded), "")
}
