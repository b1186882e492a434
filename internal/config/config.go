package config

import "time"

// Default values shared by the CLI flags and NewOptions.
const (
	DefaultThreads        = 25
	DefaultTimeout        = 10 * time.Second
	DefaultRetries        = 2
	DefaultMaxBodySize    = 5 * 1024 * 1024
	DefaultRatio          = 0.90
	DefaultMaxFuzzyLength = 32 * 1024
	DefaultDecisionCache  = 250
	DefaultUserAgent      = "soft404/1.0"

	// AppName names the XDG config directory.
	AppName = "soft404"
)

// DefaultNotFoundCodes are the status codes treated as a conventional
// "not found" signal by the fast path.
var DefaultNotFoundCodes = []int{404, 410}

// Options holds all configuration for a soft404 run.
type Options struct {
	// Target
	URL             string
	WordlistPath    string // empty = use embedded
	Extensions      []string
	ForceExtensions bool

	// Performance
	Threads     int
	Timeout     time.Duration
	RateLimit   float64 // requests per second, 0 = unlimited
	Retries     int     // attempts per request, including the first
	MaxBodySize int64

	// Soft-404 detection
	Soft404          bool
	Ratio            float64
	MaxFuzzyLength   int
	DecisionCache    int // per-URI decisions kept; 0 disables
	NotFoundCodes    []int
	SplitByExtension bool
	Always404        []string // directory URLs always reported as 404
	Never404         []string // directory URLs never reported as 404
	StringMatch404   string   // body marker that identifies a 404

	// Status filtering
	IncludeStatus []int
	ExcludeStatus []int
	ExcludeSize   []int

	// Body filtering
	MatchBody          string // keep only bodies containing this
	ExcludeBody        string // drop bodies containing this
	DuplicateThreshold int    // hide responses seen more than this many times, 0 = off

	// Output
	OutputFile   string
	OutputFormat string // "text", "json", "csv"
	Quiet        bool
	NoColor      bool
	Verbose      bool
	SortBy       string // "", "status", "path", "size"
	Tree         bool   // print the tree of probed directories after the scan

	// HTTP
	Headers         map[string]string
	UserAgent       string
	Proxy           string
	FollowRedirects bool
	Methods         []string

	// Check command
	URLsFile string // one URL per line, "-" for stdin

	// Runtime
	ConfigFile  string
	MetricsAddr string
}

// NewOptions returns Options populated with defaults.
func NewOptions() *Options {
	return &Options{
		Threads:        DefaultThreads,
		Timeout:        DefaultTimeout,
		Retries:        DefaultRetries,
		MaxBodySize:    DefaultMaxBodySize,
		Soft404:        true,
		Ratio:          DefaultRatio,
		MaxFuzzyLength: DefaultMaxFuzzyLength,
		DecisionCache:  DefaultDecisionCache,
		NotFoundCodes:  append([]int(nil), DefaultNotFoundCodes...),
		OutputFormat:   "text",
		UserAgent:      DefaultUserAgent,
	}
}

// Validate checks the options that do not depend on the command being run.
func (o *Options) Validate() error {
	if o.Threads <= 0 {
		return ErrInvalidThreads
	}
	if o.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if o.Retries < 1 {
		return ErrInvalidRetries
	}
	if o.RateLimit < 0 {
		return ErrInvalidRateLimit
	}
	if o.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if o.Ratio <= 0 || o.Ratio > 1 {
		return ErrInvalidRatio
	}
	if o.MaxFuzzyLength <= 0 {
		return ErrInvalidFuzzyLength
	}
	if o.DecisionCache < 0 {
		return ErrInvalidDecisionCache
	}
	if o.DuplicateThreshold < 0 {
		return ErrInvalidDuplicateThreshold
	}
	if len(o.IncludeStatus) > 0 && len(o.ExcludeStatus) > 0 {
		return ErrConflictingStatusFilters
	}
	switch o.OutputFormat {
	case "text", "json", "csv":
	default:
		return ErrInvalidFormat
	}
	switch o.SortBy {
	case "", "status", "path", "size":
	default:
		return ErrInvalidSort
	}
	return nil
}
