package scanner

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/maxvaer/soft404/internal/config"
	"github.com/maxvaer/soft404/internal/weburl"
)

func testOptions(target string) *config.Options {
	opts := config.NewOptions()
	opts.URL = target
	opts.Threads = 2
	opts.Timeout = 5 * time.Second
	return opts
}

func TestRequester_DoBuildsResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != config.DefaultUserAgent {
			t.Errorf("unexpected User-Agent %q", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "hello world\nsecond line")
	}))
	defer srv.Close()

	req, err := NewRequester(testOptions(srv.URL))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := req.Do(context.Background(), "", "admin")
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if resp.URL.String() != srv.URL+"/admin" {
		t.Errorf("URL = %q", resp.URL)
	}
	if resp.WordCount != 4 || resp.LineCount != 2 {
		t.Errorf("word/line count = %d/%d, want 4/2", resp.WordCount, resp.LineCount)
	}
	if resp.DocType != DocTypeTextOrHTML {
		t.Errorf("DocType = %v", resp.DocType)
	}
}

func TestRequester_DecodesBrotliAndGzip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		switch r.URL.Path {
		case "/br":
			bw := brotli.NewWriter(&buf)
			bw.Write([]byte("brotli body"))
			bw.Close()
			w.Header().Set("Content-Encoding", "br")
		case "/gz":
			gw := gzip.NewWriter(&buf)
			gw.Write([]byte("gzip body"))
			gw.Close()
			w.Header().Set("Content-Encoding", "gzip")
		}
		w.Write(buf.Bytes())
	}))
	defer srv.Close()

	req, err := NewRequester(testOptions(srv.URL))
	if err != nil {
		t.Fatal(err)
	}
	for path, want := range map[string]string{"br": "brotli body", "gz": "gzip body"} {
		resp, err := req.Do(context.Background(), "GET", path)
		if err != nil {
			t.Fatalf("Do(%s): %v", path, err)
		}
		if string(resp.Body) != want {
			t.Errorf("%s body = %q, want %q", path, resp.Body, want)
		}
	}
}

func TestRequester_RetriesTransportErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			hj, ok := w.(http.Hijacker)
			if !ok {
				t.Fatal("hijacking not supported")
			}
			conn, _, _ := hj.Hijack()
			conn.Close()
			return
		}
		fmt.Fprint(w, "ok")
	}))
	defer srv.Close()

	req, err := NewRequester(testOptions(srv.URL))
	if err != nil {
		t.Fatal(err)
	}
	req.retryDelay = time.Millisecond

	resp, err := req.Get(context.Background(), weburl.MustParse(srv.URL+"/x"))
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if string(resp.Body) != "ok" {
		t.Errorf("body = %q", resp.Body)
	}
	if hits.Load() != 2 {
		t.Errorf("expected 2 attempts, got %d", hits.Load())
	}
}

func TestRequester_ExhaustedRetriesReturnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	opts := testOptions(addr)
	opts.Timeout = time.Second
	req, err := NewRequester(opts)
	if err != nil {
		t.Fatal(err)
	}
	req.retryDelay = time.Millisecond

	_, err = req.Get(context.Background(), weburl.MustParse(addr+"/x"))
	if err == nil {
		t.Fatal("expected error for closed server")
	}
	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		t.Errorf("expected wrapped *url.Error, got %T: %v", err, err)
	}
}

func TestRequester_DoWithoutBaseURL(t *testing.T) {
	req, err := NewRequester(testOptions(""))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := req.Do(context.Background(), "GET", "x"); !errors.Is(err, ErrNoBaseURL) {
		t.Errorf("expected ErrNoBaseURL, got %v", err)
	}
}

func TestRequester_MaxBodySize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(bytes.Repeat([]byte("a"), 100))
	}))
	defer srv.Close()

	opts := testOptions(srv.URL)
	opts.MaxBodySize = 10
	req, err := NewRequester(opts)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := req.Do(context.Background(), "GET", "/")
	if err != nil {
		t.Fatal(err)
	}
	if resp.ContentLength != 10 {
		t.Errorf("ContentLength = %d, want 10", resp.ContentLength)
	}
}
