package metrics

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogExporter writes each snapshot of a batch as a structured log entry.
type LogExporter struct {
	logger *zap.Logger
	level  zapcore.Level
}

var _ Exporter = (*LogExporter)(nil)

// NewLogExporter returns an exporter that logs at level through l.
func NewLogExporter(l *zap.Logger, level zapcore.Level) *LogExporter {
	if l == nil {
		l = zap.NewNop()
	}
	return &LogExporter{logger: l, level: level}
}

func (e *LogExporter) Export(ctx context.Context, b Batch) error {
	if ce := e.logger.Check(e.level, "batch collected"); ce != nil {
		ce.Write(zap.Int("samples", len(b.Samples)), zap.Time("collected_at", b.CollectedAt))
	}
	for _, s := range b.Samples {
		if err := ctx.Err(); err != nil {
			return err
		}
		if ce := e.logger.Check(e.level, "sample"); ce != nil {
			ce.Write(
				zap.String("identity", s.Identity),
				zap.Stringer("kind", s.Kind),
				zap.Float64("value", s.Value),
			)
		}
	}
	return nil
}
