package cmd

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/maxvaer/soft404/internal/config"
	"github.com/spf13/cobra"
)

func TestIntSliceValue_ReplacesDefault(t *testing.T) {
	codes := []int{404, 410}
	v := &intSliceValue{target: &codes}
	if v.String() != "404,410" {
		t.Errorf("String() = %q", v.String())
	}
	if err := v.Set("404, 400"); err != nil {
		t.Fatal(err)
	}
	if err := v.Set("500"); err != nil {
		t.Fatal(err)
	}
	if got := v.String(); got != "404,400,500" {
		t.Errorf("after Set = %q, want 404,400,500", got)
	}
	if err := v.Set("abc"); err == nil {
		t.Error("expected error for non-numeric value")
	}
}

func TestParseHeaders(t *testing.T) {
	h, err := parseHeaders([]string{"X-Token: abc:def", "Cookie:  a=b "})
	if err != nil {
		t.Fatal(err)
	}
	if h["X-Token"] != "abc:def" || h["Cookie"] != "a=b" {
		t.Errorf("unexpected headers %v", h)
	}
	if _, err := parseHeaders([]string{"broken"}); err == nil {
		t.Error("expected error for header without colon")
	}
	if h, err := parseHeaders(nil); h != nil || err != nil {
		t.Errorf("parseHeaders(nil) = %v, %v", h, err)
	}
}

func TestApplyConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "soft404.yaml")
	if err := os.WriteFile(path, []byte("ratio: 0.75\nretries: 4\n"), 0644); err != nil {
		t.Fatal(err)
	}

	o := config.NewOptions()
	o.ConfigFile = path
	c := &cobra.Command{Use: "test"}
	c.Flags().IntVar(&o.Retries, "retries", config.DefaultRetries, "")
	if err := c.Flags().Parse([]string{"--retries", "7"}); err != nil {
		t.Fatal(err)
	}

	got, err := applyConfigFile(c, o)
	if err != nil {
		t.Fatal(err)
	}
	if got != path {
		t.Errorf("applyConfigFile path = %q", got)
	}
	if o.Ratio != 0.75 {
		t.Errorf("Ratio = %v, want 0.75 from file", o.Ratio)
	}
	if o.Retries != 7 {
		t.Errorf("Retries = %d, flag should win", o.Retries)
	}
}

func TestApplyConfigFile_ExplicitMissing(t *testing.T) {
	o := config.NewOptions()
	o.ConfigFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, err := applyConfigFile(&cobra.Command{Use: "test"}, o)
	if !errors.Is(err, config.ErrConfigNotFound) {
		t.Errorf("expected ErrConfigNotFound, got %v", err)
	}
}

func TestHelpBanner(t *testing.T) {
	if b := helpBanner("1.2.0"); !strings.Contains(b, "v1.2.0") {
		t.Errorf("banner missing version:\n%s", b)
	}
	if b := helpBanner("dev"); !strings.Contains(b, "dev") {
		t.Errorf("banner missing dev marker:\n%s", b)
	}
}

func TestChainPreRun_StopsOnError(t *testing.T) {
	var ran []string
	step := func(name string, err error) func(*cobra.Command, []string) error {
		return func(*cobra.Command, []string) error {
			ran = append(ran, name)
			return err
		}
	}
	errBoom := errors.New("boom")

	if err := chainPreRun(step("first", nil), step("second", nil))(nil, nil); err != nil {
		t.Fatal(err)
	}
	if err := chainPreRun(step("third", errBoom), step("fourth", nil))(nil, nil); !errors.Is(err, errBoom) {
		t.Errorf("expected first error to be returned, got %v", err)
	}
	if err := chainPreRun(nil, step("fifth", nil))(nil, nil); err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(ran, ","); got != "first,second,third,fifth" {
		t.Errorf("ran = %s", got)
	}
}

func TestCollectURLs(t *testing.T) {
	saved := opts.URLsFile
	t.Cleanup(func() { opts.URLsFile = saved; checkURLs = nil })

	list := filepath.Join(t.TempDir(), "urls.txt")
	if err := os.WriteFile(list, []byte("http://h.tld/b\n# skipped\nhttp://h.tld/c\n"), 0644); err != nil {
		t.Fatal(err)
	}
	opts.URLsFile = list

	c := &cobra.Command{Use: "check"}
	c.SetOut(io.Discard)
	c.SetErr(io.Discard)
	if err := collectURLs(c, []string{"http://h.tld/a"}); err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(checkURLs, " "); got != "http://h.tld/a http://h.tld/b http://h.tld/c" {
		t.Errorf("checkURLs = %s", got)
	}

	opts.URLsFile = ""
	if err := collectURLs(c, nil); err == nil {
		t.Error("expected error without URLs")
	}
}
