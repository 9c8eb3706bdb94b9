package commands

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"git.home.luguber.info/inful/epubpack/internal/epub"
	"git.home.luguber.info/inful/epubpack/internal/logfields"
	"git.home.luguber.info/inful/epubpack/internal/metrics"
	"git.home.luguber.info/inful/epubpack/internal/watch"
)

// WatchCmd implements the 'watch' command: continuous repackaging driven by
// filesystem events on the configured sources.
type WatchCmd struct {
	MetricsAddr string `name:"metrics-addr" help:"Expose Prometheus metrics on this address (e.g. :9090); disabled when empty"`
}

func (w *WatchCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	if w.MetricsAddr != "" {
		reg := prom.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(reg)
		startMetricsServer(ctx, w.MetricsAddr, reg)
	}

	rebuild := func(ctx context.Context) error {
		// Reload the manifest each pass so node edits are picked up.
		nodes, err := loadNodes(cfg)
		if err != nil {
			return err
		}
		_, err = epub.NewGenerator(cfg, nodes).SetRecorder(recorder).Package(ctx)
		return err
	}

	return watch.Run(ctx, cfg, rebuild)
}

// startMetricsServer serves the registry on /metrics until the context ends.
func startMetricsServer(ctx context.Context, addr string, reg *prom.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		slog.Info("Metrics server listening", logfields.Path(addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Warn("Metrics server stopped", logfields.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}
