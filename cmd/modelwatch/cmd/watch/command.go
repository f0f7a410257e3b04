// Package watch implements the scheduled detection command.
package watch

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/agentstation/modelwatch"
	"github.com/agentstation/modelwatch/internal/cmd/application"
	"github.com/agentstation/modelwatch/internal/metrics"
	"github.com/agentstation/modelwatch/internal/schedule"
	"github.com/agentstation/modelwatch/pkg/constants"
	"github.com/agentstation/modelwatch/pkg/errors"
	"github.com/agentstation/modelwatch/pkg/logging"
)

const jobName = "detect"

// Flags holds the watch command's flags.
type Flags struct {
	Interval    time.Duration
	Cron        string
	MetricsAddr string
	Regions     []string
	DryRun      bool
}

// NewCommand creates the watch command.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "watch",
		GroupID: "core",
		Short:   "Run detection on a schedule until interrupted",
		Long: `Watch runs a detection pass immediately and then on every tick of the
schedule. A pass that is still running when the next tick arrives delays
that tick rather than overlapping it.

With --metrics-addr, Prometheus metrics are served on /metrics.`,
		Example: `  modelwatch watch                              # Every minute
  modelwatch watch --interval 15m --metrics-addr :9090
  modelwatch watch --cron "0 * * * *"           # Hourly, on the hour`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return Execute(cmd.Context(), app, flags)
		},
	}

	cmd.Flags().DurationVar(&flags.Interval, "interval", constants.DefaultWatchInterval, "time between runs")
	cmd.Flags().StringVar(&flags.Cron, "cron", "", "cron expression (overrides --interval)")
	cmd.Flags().StringVar(&flags.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	cmd.Flags().StringSliceVar(&flags.Regions, "regions", nil, "regions to check (overrides TARGET_REGIONS)")
	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "detect only: skip notification and persistence")

	return cmd
}

// Execute schedules detection runs and blocks until ctx is done.
func Execute(ctx context.Context, app application.Application, flags *Flags) error {
	logger := logging.Ctx(ctx)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	opts := []modelwatch.Option{modelwatch.WithRecorder(metrics.NewPrometheusRecorder(registry))}
	if len(flags.Regions) > 0 {
		opts = append(opts, modelwatch.WithRegions(flags.Regions...))
	}
	if flags.DryRun {
		opts = append(opts, modelwatch.WithDryRun(true))
	}

	detector, err := app.Detector(ctx, opts...)
	if err != nil {
		return err
	}

	scheduler, err := schedule.New()
	if err != nil {
		return err
	}

	task := func(ctx context.Context) error {
		result, err := detector.Run(ctx)
		if err != nil {
			return err
		}
		if !result.Success {
			return fmt.Errorf("%w: %d error(s)", errors.ErrIncompleteRun, len(result.Errors))
		}
		return nil
	}

	if flags.Cron != "" {
		_, err = scheduler.Cron(ctx, flags.Cron, jobName, task)
	} else {
		_, err = scheduler.Every(ctx, flags.Interval, jobName, task)
	}
	if err != nil {
		_ = scheduler.Stop()
		return err
	}

	var server *http.Server
	if flags.MetricsAddr != "" {
		server, err = serveMetrics(ctx, flags.MetricsAddr, registry)
		if err != nil {
			_ = scheduler.Stop()
			return err
		}
	}

	scheduler.Start()
	event := logger.Info().Strs("regions", detector.Regions())
	if next, ok := scheduler.NextRun(jobName); ok {
		event = event.Time("next_run", next)
	}
	event.Msg("Watching for new models")

	<-ctx.Done()
	logger.Info().Msg("Stopping watch")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()

	var firstErr error
	if server != nil {
		if err := server.Shutdown(shutdownCtx); err != nil {
			firstErr = err
		}
	}
	if err := scheduler.Stop(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func serveMetrics(ctx context.Context, addr string, registry *prometheus.Registry) (*http.Server, error) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler(registry))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.WrapResource("listen", "metrics server", addr, err)
	}

	server := &http.Server{Handler: mux, ReadTimeout: 30 * time.Second, WriteTimeout: 30 * time.Second, IdleTimeout: 120 * time.Second}
	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Ctx(ctx).Error().Err(err).Msg("Metrics server failed")
		}
	}()
	logging.Ctx(ctx).Info().Str("addr", ln.Addr().String()).Msg("Serving metrics")

	return server, nil
}
