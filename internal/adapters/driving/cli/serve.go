package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/keaunsolNa/knock-crawling/internal/logger"
)

// shutdownTimeout bounds the metrics server shutdown.
const shutdownTimeout = 5 * time.Second

var serveMetricsAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run scheduled ingestion in the foreground",
	Long: `Runs the ingestion scheduler until interrupted. Prometheus metrics are
served on /metrics, and edits to the config file are applied to the next pass
without a restart.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveMetricsAddr, "metrics-addr", "", "metrics listen address (overrides metrics.addr, \"off\" disables)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if services == nil || services.Scheduler == nil {
		return errNotConfigured("scheduler")
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	if addr := metricsAddr(); services.Metrics != nil && addr != "" {
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("metrics listener: %w", err)
		}
		cmd.Printf("Serving metrics on http://%s/metrics\n", ln.Addr())
		g.Go(func() error { return serveMetrics(gctx, ln, services.Metrics) })
	}

	if services.WatchConfig != nil {
		reload := services.Reload
		g.Go(func() error {
			return services.WatchConfig(gctx, func() {
				if reload == nil {
					return
				}
				if err := reload(); err != nil {
					logger.Warn("applying configuration: %v", err)
				}
			})
		})
	}

	scheduler := services.Scheduler
	g.Go(func() error {
		if err := scheduler.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("scheduler: %w", err)
		}
		return nil
	})

	cmd.Println("Scheduler started. Press Ctrl+C to stop.")
	<-gctx.Done()
	if err := scheduler.Stop(); err != nil {
		logger.Warn("stopping scheduler: %v", err)
	}

	if err := g.Wait(); err != nil {
		return err
	}
	cmd.Println("Stopped.")
	return nil
}

// metricsAddr returns the listen address, or "" when metrics are disabled.
func metricsAddr() string {
	addr := serveMetricsAddr
	if addr == "" && services.Settings != nil {
		if cfg, err := services.Settings.Get(); err == nil {
			addr = cfg.MetricsAddr
		}
	}
	if addr == "off" {
		return ""
	}
	return addr
}

func serveMetrics(ctx context.Context, ln net.Listener, handler http.Handler) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- server.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}
