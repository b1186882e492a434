package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/maxvaer/soft404/internal/config"
	"github.com/maxvaer/soft404/internal/logging"
	"github.com/maxvaer/soft404/internal/runner"
	"github.com/maxvaer/soft404/pkg/version"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	opts    = config.NewOptions()
	headers []string
	logger  = zerolog.Nop()
)

var scanHelpGroups = []flagGroup{
	{"TARGET", []string{"url", "wordlist", "extensions", "force-extensions", "methods"}},
	{"404 DETECTION", []string{"soft404", "ratio", "max-fuzzy-length", "decision-cache", "not-found-codes", "split-by-extension", "always-404", "never-404", "string-match-404"}},
	{"MATCHERS", []string{"include-status", "match-body"}},
	{"FILTERS", []string{"exclude-status", "exclude-size", "exclude-body", "duplicate-threshold"}},
	{"RATE-LIMIT", []string{"threads", "timeout", "rate-limit", "retries", "max-body-size"}},
	{"HTTP", []string{"header", "user-agent", "proxy", "follow-redirects"}},
	{"OUTPUT", []string{"output", "format", "quiet", "no-color", "verbose", "sort", "tree"}},
	{"CONFIGURATION", []string{"config", "metrics-addr"}},
}

var rootCmd = &cobra.Command{
	Use:     "soft404 -u <url> [flags]",
	Short:   "Web path brute-forcer with soft-404 detection",
	Version: version.Version,
	Long: `soft404 brute-forces paths on a web server and hides every response that
is a "not found" page, including custom error pages served with HTTP 200.
Each directory is probed once with a random name and later responses are
compared against that reference.`,
	Example: `  soft404 -u https://example.com
  soft404 -u https://example.com -e php,html -t 50
  soft404 -u https://example.com --ratio 0.85 --split-by-extension
  soft404 -u https://example.com --string-match-404 "Page not found"
  soft404 -u https://example.com -o results.json --format json --tree
  soft404 check https://example.com/a https://example.com/b
  soft404 check -l urls.txt --format csv`,
	PersistentPreRunE: prepare,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if opts.URL == "" {
			_ = cmd.Help()
			fmt.Fprintln(os.Stderr)
			return fmt.Errorf("target required: use -u")
		}
		if !strings.HasPrefix(opts.URL, "http://") && !strings.HasPrefix(opts.URL, "https://") {
			opts.URL = "http://" + opts.URL
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		return runner.Run(ctx, opts, logger)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// prepare runs before every command: it merges the config file, validates
// the options and builds the logger.
func prepare(cmd *cobra.Command, _ []string) error {
	h, err := parseHeaders(headers)
	if err != nil {
		return err
	}
	if h != nil {
		opts.Headers = h
	}
	path, err := applyConfigFile(cmd, opts)
	if err != nil {
		return err
	}
	if err := opts.Validate(); err != nil {
		return err
	}
	logger = logging.New(os.Stderr, opts.Verbose, opts.Quiet, opts.NoColor)
	if path != "" {
		logger.Debug().Str("path", path).Msg("loaded config file")
	}
	return nil
}

func init() {
	p := rootCmd.PersistentFlags()

	// 404 detection
	p.Float64Var(&opts.Ratio, "ratio", config.DefaultRatio, "Similarity above which a body matches the 404 reference, in (0,1]")
	p.IntVar(&opts.MaxFuzzyLength, "max-fuzzy-length", config.DefaultMaxFuzzyLength, "Bytes of each body compared by the fuzzy matcher")
	p.IntVar(&opts.DecisionCache, "decision-cache", config.DefaultDecisionCache, "Per-URI 404 decisions to remember (0 disables)")
	p.Var(&intSliceValue{target: &opts.NotFoundCodes}, "not-found-codes", "Status codes that take the 404 fast path (comma-separated)")
	p.BoolVar(&opts.SplitByExtension, "split-by-extension", false, "Keep a separate 404 reference per file extension")
	p.StringSliceVar(&opts.Always404, "always-404", nil, "Directory URLs whose pages are always 404")
	p.StringSliceVar(&opts.Never404, "never-404", nil, "Directory URLs whose pages are never 404")
	p.StringVar(&opts.StringMatch404, "string-match-404", "", "Treat every body containing this string as 404")

	// Performance
	p.IntVarP(&opts.Threads, "threads", "t", config.DefaultThreads, "Number of concurrent threads")
	p.DurationVar(&opts.Timeout, "timeout", config.DefaultTimeout, "HTTP request timeout")
	p.Float64Var(&opts.RateLimit, "rate-limit", 0, "Maximum requests per second (0 = unlimited)")
	p.IntVar(&opts.Retries, "retries", config.DefaultRetries, "Attempts per request on transport errors")
	p.Int64Var(&opts.MaxBodySize, "max-body-size", config.DefaultMaxBodySize, "Maximum response body bytes read (0 = unlimited)")

	// HTTP
	p.StringSliceVarP(&headers, "header", "H", nil, "Custom headers (Key: Value)")
	p.StringVar(&opts.UserAgent, "user-agent", config.DefaultUserAgent, "Custom User-Agent string")
	p.StringVar(&opts.Proxy, "proxy", "", "HTTP/SOCKS proxy URL")
	p.BoolVar(&opts.FollowRedirects, "follow-redirects", false, "Follow HTTP redirects")

	// Output
	p.StringVarP(&opts.OutputFile, "output", "o", "", "Output file path")
	p.StringVar(&opts.OutputFormat, "format", "text", "Output format: text, json, csv")
	p.BoolVarP(&opts.Quiet, "quiet", "q", false, "Minimal output")
	p.BoolVar(&opts.NoColor, "no-color", false, "Disable colored output")
	p.BoolVarP(&opts.Verbose, "verbose", "v", false, "Log every 404 decision")
	p.StringVar(&opts.SortBy, "sort", "", "Sort results: status, path, size (buffers until the run completes)")
	p.BoolVar(&opts.Tree, "tree", false, "Print the probed directories and their 404 references after the run")

	// Runtime
	p.StringVar(&opts.ConfigFile, "config", "", "YAML config file (default ./"+config.DefaultConfigFile+" or the XDG config dir)")
	p.StringVar(&opts.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9404)")

	f := rootCmd.Flags()

	// Target
	f.StringVarP(&opts.URL, "url", "u", "", "Target URL")
	f.StringVarP(&opts.WordlistPath, "wordlist", "w", "", "Custom wordlist path (default: built-in)")
	f.StringSliceVarP(&opts.Extensions, "extensions", "e", nil, "File extensions to test (e.g. php,html,js)")
	f.BoolVarP(&opts.ForceExtensions, "force-extensions", "f", false, "Append extensions to every wordlist entry")
	f.StringSliceVar(&opts.Methods, "methods", nil, "HTTP methods to try per path (e.g. GET,POST,PUT)")

	f.BoolVar(&opts.Soft404, "soft404", true, "Hide responses classified as 404 pages")

	// Filtering
	f.VarP(&intSliceValue{target: &opts.IncludeStatus}, "include-status", "i", "Only show these status codes (comma-separated)")
	f.VarP(&intSliceValue{target: &opts.ExcludeStatus}, "exclude-status", "x", "Hide these status codes (comma-separated)")
	f.Var(&intSliceValue{target: &opts.ExcludeSize}, "exclude-size", "Hide responses of these sizes (comma-separated)")
	f.StringVar(&opts.MatchBody, "match-body", "", "Only show responses containing this string")
	f.StringVar(&opts.ExcludeBody, "exclude-body", "", "Hide responses containing this string")
	f.IntVar(&opts.DuplicateThreshold, "duplicate-threshold", 0, "Hide identical responses after this many (0 = off)")

	rootCmd.SetHelpFunc(groupedHelp(scanHelpGroups))
	rootCmd.AddCommand(checkCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
