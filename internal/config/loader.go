package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is looked up in the working directory.
const DefaultConfigFile = ".soft404.yaml"

// File is the YAML configuration file. Pointer fields distinguish "unset"
// from zero values.
type File struct {
	Ratio            *float64          `yaml:"ratio"`
	MaxFuzzyLength   *int              `yaml:"max_fuzzy_length"`
	DecisionCache    *int              `yaml:"decision_cache"`
	NotFoundCodes    []int             `yaml:"not_found_codes"`
	SplitByExtension *bool             `yaml:"split_by_extension"`
	Always404        []string          `yaml:"always_404"`
	Never404         []string          `yaml:"never_404"`
	StringMatch404   string            `yaml:"string_match_404"`
	RateLimit        *float64          `yaml:"rate_limit"`
	Retries          *int              `yaml:"retries"`
	UserAgent        string            `yaml:"user_agent"`
	Headers          map[string]string `yaml:"headers"`
}

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// XDGConfigFile returns the per-user config file path.
func XDGConfigFile() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.yaml")
}

// FindFile returns the config file to load: explicit if set (even if it
// does not exist, so the caller can report it), otherwise the first of
// ./.soft404.yaml and the XDG config file that exists. Empty means none.
func FindFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, candidate := range []string{DefaultConfigFile, XDGConfigFile()} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// Apply copies file values into o. changed reports whether the option was
// set explicitly on the command line, in which case the flag wins.
func (f *File) Apply(o *Options, changed func(flag string) bool) {
	if changed == nil {
		changed = func(string) bool { return false }
	}
	if f.Ratio != nil && !changed("ratio") {
		o.Ratio = *f.Ratio
	}
	if f.MaxFuzzyLength != nil && !changed("max-fuzzy-length") {
		o.MaxFuzzyLength = *f.MaxFuzzyLength
	}
	if f.DecisionCache != nil && !changed("decision-cache") {
		o.DecisionCache = *f.DecisionCache
	}
	if len(f.NotFoundCodes) > 0 && !changed("not-found-codes") {
		o.NotFoundCodes = append([]int(nil), f.NotFoundCodes...)
	}
	if f.SplitByExtension != nil && !changed("split-by-extension") {
		o.SplitByExtension = *f.SplitByExtension
	}
	if len(f.Always404) > 0 && !changed("always-404") {
		o.Always404 = append([]string(nil), f.Always404...)
	}
	if len(f.Never404) > 0 && !changed("never-404") {
		o.Never404 = append([]string(nil), f.Never404...)
	}
	if f.StringMatch404 != "" && !changed("string-match-404") {
		o.StringMatch404 = f.StringMatch404
	}
	if f.RateLimit != nil && !changed("rate-limit") {
		o.RateLimit = *f.RateLimit
	}
	if f.Retries != nil && !changed("retries") {
		o.Retries = *f.Retries
	}
	if f.UserAgent != "" && !changed("user-agent") {
		o.UserAgent = f.UserAgent
	}
	if len(f.Headers) > 0 {
		if o.Headers == nil {
			o.Headers = make(map[string]string, len(f.Headers))
		}
		for k, v := range f.Headers {
			if _, exists := o.Headers[k]; !exists {
				o.Headers[k] = v
			}
		}
	}
}
