package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	metrics "github.com/ygrebnov/metricsample"
	"github.com/ygrebnov/metricsample/internal/config"
	"github.com/ygrebnov/metricsample/internal/logging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "metricsd:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to YAML config (defaults are used when empty)")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return err
		}
	}

	logger, err := logging.New(cfg.Level())
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	reg := metrics.NewRegistry(cfg.RegistryOptions(logger)...)
	if err := cfg.RegisterSamples(reg); err != nil {
		return err
	}

	refresh, err := processGauges(reg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := append(cfg.CollectorOptions(logger), metrics.WithPreCollectHook(refresh))
	collector := metrics.NewCollector(reg, opts...)
	exporter := metrics.NewLogExporter(logger.Named("export"), zapcore.InfoLevel)

	logger.Info("metricsd started",
		zap.Stringer("registry", reg.ID()),
		zap.Int("samples", reg.Len()),
		zap.Duration("interval", cfg.CollectInterval),
	)
	if err := collector.Run(ctx, cfg.CollectInterval, exporter); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// processGauges registers gauges describing this process and returns a hook refreshing them.
func processGauges(reg *metrics.Registry) (func(context.Context), error) {
	start := time.Now()

	goroutines, err := reg.Gauge("process_goroutines", nil, metrics.WithDescription("number of goroutines"))
	if err != nil {
		return nil, err
	}
	uptime, err := reg.Gauge("process_uptime_seconds", nil, metrics.WithUnit("seconds"))
	if err != nil {
		return nil, err
	}
	heap, err := reg.Gauge("process_heap_alloc_bytes", nil, metrics.WithUnit("bytes"))
	if err != nil {
		return nil, err
	}
	ticks, err := reg.Counter("metricsd_collections_total", nil)
	if err != nil {
		return nil, err
	}

	return func(context.Context) {
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		goroutines.Set(float64(runtime.NumGoroutine()))
		uptime.Set(time.Since(start).Seconds())
		heap.Set(float64(ms.HeapAlloc))
		ticks.Inc()
	}, nil
}
