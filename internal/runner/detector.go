package runner

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/maxvaer/soft404/internal/config"
	"github.com/maxvaer/soft404/internal/notfound"
	"github.com/maxvaer/soft404/internal/output"
	"github.com/maxvaer/soft404/internal/weburl"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// detector is the 404 engine of one run plus the registry its metrics
// live in.
type detector struct {
	engine   *notfound.Engine
	registry *prometheus.Registry
}

func newDetector(opts *config.Options, fetcher notfound.Fetcher, logger zerolog.Logger) (*detector, error) {
	reg := prometheus.NewRegistry()
	metrics := notfound.NewMetrics(reg)

	store := notfound.NewStore(fetcher,
		notfound.WithStoreMetrics(metrics),
		notfound.WithStoreLogger(logger),
	)

	engineOpts := []notfound.Option{
		notfound.WithRatio(opts.Ratio),
		notfound.WithMaxFuzzyLength(opts.MaxFuzzyLength),
		notfound.WithDecisionCacheSize(opts.DecisionCache),
		notfound.WithSplitByExtension(opts.SplitByExtension),
		notfound.WithAlways404(opts.Always404...),
		notfound.WithNever404(opts.Never404...),
		notfound.WithStringMatch404(opts.StringMatch404),
		notfound.WithMetrics(metrics),
		notfound.WithLogger(logger),
	}
	if len(opts.NotFoundCodes) > 0 {
		engineOpts = append(engineOpts, notfound.WithNotFoundCodes(opts.NotFoundCodes...))
	}

	engine, err := notfound.New(store, engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("configuring 404 detection: %w", err)
	}
	return &detector{engine: engine, registry: reg}, nil
}

// tree describes every cached reference for the --tree view.
func (d *detector) tree() []output.TreeEntry {
	refs := d.engine.Store().References()
	entries := make([]output.TreeEntry, 0, len(refs))
	for _, ref := range refs {
		dir := ref.Key.Directory
		if u, err := weburl.Parse(dir); err == nil {
			dir = u.Path()
		}
		shape := ref.Key.Shape.String()
		if ref.Key.Extension != "" {
			shape += " ." + ref.Key.Extension
		}
		entries = append(entries, output.TreeEntry{
			Path: strings.Trim(dir, "/"),
			Note: fmt.Sprintf("%s: %d, %d B", shape, ref.StatusCode, ref.RawLength),
		})
	}
	return entries
}

// metricsServer serves a Prometheus registry over HTTP.
type metricsServer struct {
	srv *http.Server
	ln  net.Listener
}

// serveMetrics binds addr and serves reg on /metrics in the background.
func serveMetrics(addr string, reg *prometheus.Registry, logger zerolog.Logger) (*metricsServer, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listener: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	ms := &metricsServer{
		srv: &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		ln: ln,
	}
	go func() {
		if err := ms.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics server stopped")
		}
	}()
	logger.Info().Str("addr", ln.Addr().String()).Msg("serving metrics")
	return ms, nil
}

// Addr returns the bound listen address.
func (m *metricsServer) Addr() string { return m.ln.Addr().String() }

// Close shuts the server down, waiting briefly for in-flight scrapes.
func (m *metricsServer) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return m.srv.Shutdown(ctx)
}
