package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/maxvaer/soft404/internal/config"
	"github.com/maxvaer/soft404/internal/notfound"
	"github.com/maxvaer/soft404/internal/output"
	"github.com/maxvaer/soft404/internal/scanner"
	"github.com/maxvaer/soft404/internal/weburl"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Check fetches every URL and reports whether the 404 engine considers it
// a "not found" page. Verdicts are written in input order. Per-URL failures
// become error verdicts; only output failures and cancellation abort.
func Check(ctx context.Context, opts *config.Options, urls []string, logger zerolog.Logger) error {
	if len(urls) == 0 {
		return fmt.Errorf("no URLs to check")
	}

	req, err := scanner.NewRequester(opts)
	if err != nil {
		return fmt.Errorf("creating requester: %w", err)
	}
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

	out, err := newWriter(opts)
	if err != nil {
		return fmt.Errorf("creating output writer: %w", err)
	}
	defer out.Close()
	if err := out.WriteHeader(output.KindCheck); err != nil {
		return err
	}

	progress := output.NewProgress(len(urls), opts.Quiet)
	progress.Start()
	startTime := time.Now()

	verdicts := make([]output.Verdict, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Threads)
	for i, raw := range urls {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			verdicts[i] = classify(gctx, req, det.engine, raw)
			progress.Increment()
			if verdicts[i].Err != nil {
				progress.IncrementErrors()
			} else if verdicts[i].Is404 {
				progress.IncrementFiltered(verdicts[i].Stage != string(notfound.StageNotFoundStatus))
			}
			return nil
		})
	}
	waitErr := g.Wait()
	progress.Stop()
	if waitErr != nil {
		return waitErr
	}

	stats := output.Stats{TotalRequests: len(urls)}
	for i := range verdicts {
		v := &verdicts[i]
		switch {
		case v.Err != nil:
			stats.ErrorCount++
		case v.Is404:
			stats.FilteredCount++
			if v.Stage != string(notfound.StageNotFoundStatus) {
				stats.Soft404Count++
			}
		}
		if err := out.WriteVerdict(v); err != nil {
			return err
		}
	}

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

// classify fetches raw and runs it through the engine.
func classify(ctx context.Context, req *scanner.Requester, engine *notfound.Engine, raw string) output.Verdict {
	v := output.Verdict{URL: raw}
	u, err := weburl.Parse(raw)
	if err != nil {
		v.Err = err
		return v
	}
	v.URL = u.String()

	resp, err := req.Get(ctx, u)
	if err != nil {
		v.Err = err
		return v
	}
	v.StatusCode = resp.StatusCode
	v.ContentLength = resp.ContentLength

	d, err := engine.Classify(ctx, resp)
	if err != nil {
		var de *notfound.DetectionError
		if errors.As(err, &de) && de.Key.Directory != "" {
			v.Key = de.Key.String()
		}
		v.Err = err
		return v
	}
	v.Is404 = d.Is404
	v.Stage = string(d.Stage)
	v.Similarity = d.Similarity
	v.Key = d.Key.String()
	return v
}
