package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/maxvaer/soft404/internal/runner"
	"github.com/maxvaer/soft404/internal/wordlist"
	"github.com/spf13/cobra"
)

var checkHelpGroups = []flagGroup{
	{"TARGET", []string{"urls-file"}},
	{"404 DETECTION", []string{"ratio", "max-fuzzy-length", "decision-cache", "not-found-codes", "split-by-extension", "always-404", "never-404", "string-match-404"}},
	{"RATE-LIMIT", []string{"threads", "timeout", "rate-limit", "retries", "max-body-size"}},
	{"HTTP", []string{"header", "user-agent", "proxy", "follow-redirects"}},
	{"OUTPUT", []string{"output", "format", "quiet", "no-color", "verbose", "sort", "tree"}},
	{"CONFIGURATION", []string{"config", "metrics-addr"}},
}

// checkURLs is filled by collectURLs before check runs.
var checkURLs []string

var checkCmd = &cobra.Command{
	Use:   "check [url...]",
	Short: "Report whether each URL is a 404 page",
	Long: `check fetches each URL once and prints the 404 verdict, the stage that
decided it and the reference it was compared with. URLs come from the
arguments and from --urls-file ("-" reads stdin).`,
	Example: `  soft404 check https://example.com/admin https://example.com/nope
  cat urls.txt | soft404 check -l - --format json`,
	PersistentPreRunE: chainPreRun(prepare, collectURLs),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		return runner.Check(ctx, opts, checkURLs, logger)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// collectURLs gathers the URLs to check from the arguments and --urls-file.
func collectURLs(cmd *cobra.Command, args []string) error {
	urls := append([]string(nil), args...)
	if opts.URLsFile != "" {
		more, err := wordlist.LoadURLs(opts.URLsFile)
		if err != nil {
			return err
		}
		urls = append(urls, more...)
	}
	if len(urls) == 0 {
		_ = cmd.Help()
		fmt.Fprintln(cmd.ErrOrStderr())
		return fmt.Errorf("no URLs: pass them as arguments or with -l")
	}
	checkURLs = urls
	return nil
}

func init() {
	checkCmd.Flags().StringVarP(&opts.URLsFile, "urls-file", "l", "", `File with one URL per line ("-" for stdin)`)
	checkCmd.SetHelpFunc(groupedHelp(checkHelpGroups))
}
