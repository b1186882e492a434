// Package runner wires the requester, the 404 engine, the filter chain and
// the output writers into the scan and check pipelines.
package runner

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/maxvaer/soft404/internal/config"
	"github.com/maxvaer/soft404/internal/filter"
	"github.com/maxvaer/soft404/internal/notfound"
	"github.com/maxvaer/soft404/internal/output"
	"github.com/maxvaer/soft404/internal/scanner"
	"github.com/maxvaer/soft404/internal/wordlist"
	"github.com/rs/zerolog"
)

// Run brute-forces paths under opts.URL and prints the results that survive
// the filter chain. With opts.Soft404 set, results that the 404 engine
// classifies as "not found" are hidden.
func Run(ctx context.Context, opts *config.Options, logger zerolog.Logger) error {
	if opts.URL == "" {
		return fmt.Errorf("no target URL specified")
	}

	// 1. Load wordlist.
	paths, err := wordlist.Load(opts.WordlistPath, opts.Extensions, opts.ForceExtensions)
	if err != nil {
		return fmt.Errorf("loading wordlist: %w", err)
	}
	if len(paths) == 0 {
		return fmt.Errorf("wordlist is empty")
	}

	// 2. Create HTTP requester.
	req, err := scanner.NewRequester(opts)
	if err != nil {
		return fmt.Errorf("creating requester: %w", err)
	}

	// 3. 404 engine and its metrics.
	det, err := newDetector(opts, req, logger)
	if err != nil {
		return err
	}
	if opts.MetricsAddr != "" {
		ms, err := serveMetrics(opts.MetricsAddr, det.registry, logger)
		if err != nil {
			return err
		}
		defer ms.Close()
	}

	// 4. Build filter chain. Cheap filters go first so that the 404 engine
	// only sees results that would otherwise be printed.
	chain := filter.NewChain()
	if len(opts.IncludeStatus) > 0 || len(opts.ExcludeStatus) > 0 {
		chain.Add(filter.NewStatusFilter(opts.IncludeStatus, opts.ExcludeStatus))
	}
	if len(opts.ExcludeSize) > 0 {
		chain.Add(filter.NewSizeFilter(opts.ExcludeSize))
	}
	if opts.MatchBody != "" {
		chain.Add(filter.NewBodyMatchFilter(opts.MatchBody))
	}
	if opts.ExcludeBody != "" {
		chain.Add(filter.NewBodyExcludeFilter(opts.ExcludeBody))
	}
	var smart *filter.SmartFilter
	if opts.Soft404 {
		smart = filter.NewSmartFilter(det.engine, logger)
		chain.Add(smart)
	}
	if opts.DuplicateThreshold > 0 {
		chain.Add(filter.NewDuplicateFilter(opts.DuplicateThreshold))
	}

	// 5. Create output writer.
	out, err := newWriter(opts)
	if err != nil {
		return fmt.Errorf("creating output writer: %w", err)
	}
	defer out.Close()

	methods := resolveMethods(opts)
	items := expandItems(paths, methods)

	if !opts.Quiet {
		printBanner(os.Stderr, opts, len(items))
	}
	if err := out.WriteHeader(output.KindScan); err != nil {
		return err
	}

	// 6. Run worker pool. Filters run inside the workers so that 404
	// classification proceeds in parallel.
	progress := output.NewProgress(len(items), opts.Quiet)
	progress.Start()
	startTime := time.Now()

	poolCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	results := scanner.RunWorkerPool(poolCtx, req, items, scanner.WorkerConfig{
		Threads: opts.Threads,
		Inspect: func(ctx context.Context, result *scanner.ScanResult) {
			result.FilterReason = chain.Apply(ctx, result)
			result.Filtered = result.FilterReason != ""
			// Release the body once every filter has seen it.
			result.Response = nil
		},
	})

	stats := output.Stats{TotalRequests: len(items)}
	for result := range results {
		progress.Increment()

		if result.Error != nil {
			stats.ErrorCount++
			progress.IncrementErrors()
			logger.Debug().Str("path", result.Path).Err(result.Error).Msg("request failed")
			continue
		}

		if result.Filtered {
			soft := smart != nil && result.FilterReason == smart.Name()
			stats.FilteredCount++
			if soft {
				stats.Soft404Count++
			}
			progress.IncrementFiltered(soft)
			continue
		}

		if err := progress.Print(func() error { return out.WriteResult(&result) }); err != nil {
			cancel()
			progress.Stop()
			return err
		}
	}
	progress.Stop()

	if ctx.Err() != nil {
		logger.Warn().Msg("scan interrupted, results are partial")
	}
	logCounts(logger, "filter", chain.Hidden())
	if smart != nil {
		logCounts(logger, "stage", stageCounts(smart.Stages()))
	}

	// 7. Write footer.
	stats.References = det.engine.Store().Len()
	stats.Duration = time.Since(startTime)
	if stats.Duration.Seconds() > 0 {
		stats.RequestsPerSec = float64(stats.TotalRequests) / stats.Duration.Seconds()
	}
	if err := out.WriteFooter(stats); err != nil {
		return err
	}
	if opts.Tree && !opts.Quiet {
		output.PrintTree(os.Stderr, det.tree())
	}
	return nil
}

// logCounts debug-logs one event per name, in name order.
func logCounts(logger zerolog.Logger, what string, counts map[string]int) {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		logger.Debug().Str(what, name).Int("hidden", counts[name]).Msg("filter summary")
	}
}

func stageCounts(stages map[notfound.Stage]int) map[string]int {
	out := make(map[string]int, len(stages))
	for stage, n := range stages {
		out[string(stage)] = n
	}
	return out
}

func newWriter(opts *config.Options) (output.Writer, error) {
	w, err := output.New(opts.OutputFormat, opts.OutputFile, opts.NoColor, opts.Quiet)
	if err != nil {
		return nil, err
	}
	if opts.SortBy != "" {
		return output.NewSortedWriter(w, opts.SortBy), nil
	}
	return w, nil
}

func resolveMethods(opts *config.Options) []string {
	if len(opts.Methods) > 0 {
		methods := make([]string, len(opts.Methods))
		for i, m := range opts.Methods {
			methods[i] = strings.ToUpper(m)
		}
		return methods
	}
	return []string{"GET"}
}

func expandItems(paths, methods []string) []scanner.WorkItem {
	items := make([]scanner.WorkItem, 0, len(paths)*len(methods))
	for _, p := range paths {
		for _, m := range methods {
			items = append(items, scanner.WorkItem{Method: m, Path: p})
		}
	}
	return items
}
