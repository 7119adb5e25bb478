package metrics

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Snapshot is the state of one sample at collection time.
type Snapshot struct {
	Kind     MetricType
	Identity string
	Value    float64
}

// Batch is the result of one collection pass, sorted by identity.
type Batch struct {
	Samples     []Snapshot
	CollectedAt time.Time
}

// Exporter receives collected batches.
type Exporter interface {
	Export(ctx context.Context, b Batch) error
}

// ExporterFunc adapts a function to the Exporter interface.
type ExporterFunc func(ctx context.Context, b Batch) error

func (f ExporterFunc) Export(ctx context.Context, b Batch) error { return f(ctx, b) }

type collectorConfig struct {
	logger *zap.Logger
	reset  map[MetricType]bool
	hooks  []func(context.Context)
	now    func() time.Time
}

// CollectorOption configures a Collector constructed by NewCollector.
type CollectorOption func(*collectorConfig)

// WithCollectorLogger sets the logger used by Run.
func WithCollectorLogger(l *zap.Logger) CollectorOption {
	return func(c *collectorConfig) { c.logger = l }
}

// WithResetOnCollect makes the collector drain samples of the given kinds:
// each value is read and replaced with zero in one atomic swap.
func WithResetOnCollect(kinds ...MetricType) CollectorOption {
	return func(c *collectorConfig) {
		for _, k := range kinds {
			c.reset[k] = true
		}
	}
}

// WithPreCollectHook registers f to run before every collection pass,
// typically to refresh gauges that mirror external state.
func WithPreCollectHook(f func(context.Context)) CollectorOption {
	return func(c *collectorConfig) {
		if f != nil {
			c.hooks = append(c.hooks, f)
		}
	}
}

// Collector reads every live sample of a Registry.
type Collector struct {
	reg *Registry
	cfg collectorConfig
}

// NewCollector constructs a Collector for reg.
func NewCollector(reg *Registry, opts ...CollectorOption) *Collector {
	cfg := collectorConfig{reset: make(map[MetricType]bool), now: time.Now}
	for _, o := range opts {
		if o != nil {
			o(&cfg)
		}
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}
	return &Collector{reg: reg, cfg: cfg}
}

// CollectOnce snapshots all samples, reading registry shards concurrently.
// Each field of a Snapshot is read atomically, but a concurrent Set may land
// between reads of different samples.
func (c *Collector) CollectOnce(ctx context.Context) (Batch, error) {
	for _, h := range c.cfg.hooks {
		h(ctx)
	}

	parts := make([][]Snapshot, len(c.reg.shards))
	g, gctx := errgroup.WithContext(ctx)
	for i, sh := range c.reg.shards {
		i, sh := i, sh
		g.Go(func() error {
			var out []Snapshot
			var err error
			sh.rangeSamples(func(s *Sample) bool {
				if err = gctx.Err(); err != nil {
					return false
				}
				out = append(out, c.snapshot(s))
				return true
			})
			parts[i] = out
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return Batch{}, err
	}

	n := 0
	for _, p := range parts {
		n += len(p)
	}
	b := Batch{Samples: make([]Snapshot, 0, n), CollectedAt: c.cfg.now()}
	for _, p := range parts {
		b.Samples = append(b.Samples, p...)
	}
	sort.Slice(b.Samples, func(i, j int) bool { return b.Samples[i].Identity < b.Samples[j].Identity })
	return b, nil
}

func (c *Collector) snapshot(s *Sample) Snapshot {
	var v float64
	if c.cfg.reset[s.Kind()] {
		v = s.swap(0)
	} else {
		v = s.Get()
	}
	return Snapshot{Kind: s.Kind(), Identity: s.Identity(), Value: v}
}

// Run collects every interval and hands each batch to exp until ctx is done.
// Collection and export errors are logged and do not stop the loop.
// Run returns ctx.Err() on shutdown.
func (c *Collector) Run(ctx context.Context, interval time.Duration, exp Exporter) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.cfg.logger.Info("collector started", zap.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			c.cfg.logger.Info("collector stopped")
			return ctx.Err()
		case <-ticker.C:
			c.tick(ctx, exp)
		}
	}
}

func (c *Collector) tick(ctx context.Context, exp Exporter) {
	b, err := c.CollectOnce(ctx)
	if err != nil {
		if ctx.Err() == nil {
			c.cfg.logger.Error("collect failed", zap.Error(err))
		}
		return
	}
	if err := exp.Export(ctx, b); err != nil {
		c.cfg.logger.Error("export failed", zap.Error(err), zap.Int("samples", len(b.Samples)))
	}
}
