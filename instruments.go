package metrics

import (
	"math"
	"sort"
	"strconv"
)

// Counter is a monotonic counter backed by a single counter sample.
type Counter struct {
	s *Sample
}

// Inc increments the counter by 1.
func (c *Counter) Inc() { c.s.add(1) }

// Add increments the counter by delta. Negative deltas are rejected.
func (c *Counter) Add(delta float64) error {
	if delta < 0 {
		return ErrNegativeCounterDelta
	}
	c.s.add(delta)
	return nil
}

// Value returns the current value.
func (c *Counter) Value() float64 { return c.s.Get() }

// Samples returns the backing sample.
func (c *Counter) Samples() []*Sample { return []*Sample{c.s} }

// Gauge is a value that can move up or down, backed by a single gauge sample.
type Gauge struct {
	s *Sample
}

// Set replaces the current value.
func (g *Gauge) Set(v float64) { g.s.Set(v) }

// Add adds delta (positive or negative) to the current value.
func (g *Gauge) Add(delta float64) { g.s.add(delta) }

// Sub subtracts delta from the current value.
func (g *Gauge) Sub(delta float64) { g.s.add(-delta) }

// Inc increments the gauge by 1.
func (g *Gauge) Inc() { g.s.add(1) }

// Dec decrements the gauge by 1.
func (g *Gauge) Dec() { g.s.add(-1) }

// Value returns the current value.
func (g *Gauge) Value() float64 { return g.s.Get() }

// Samples returns the backing sample.
func (g *Gauge) Samples() []*Sample { return []*Sample{g.s} }

// DefaultBuckets are the upper bounds used when a histogram is created without buckets.
var DefaultBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// Histogram counts observations into cumulative buckets.
// Every bucket, the sum and the count are separate samples, so a collector may
// observe them out of step with each other while Observe is running.
type Histogram struct {
	upper   []float64
	buckets []*Sample // len(upper)+1, the last one is +Inf
	sum     *Sample
	count   *Sample
}

// Observe records v.
func (h *Histogram) Observe(v float64) {
	i := sort.SearchFloat64s(h.upper, v)
	for ; i < len(h.buckets); i++ {
		h.buckets[i].add(1)
	}
	h.sum.add(v)
	h.count.add(1)
}

// Buckets returns the configured upper bounds, without +Inf.
func (h *Histogram) Buckets() []float64 {
	out := make([]float64, len(h.upper))
	copy(out, h.upper)
	return out
}

// Sum returns the sum of all observations.
func (h *Histogram) Sum() float64 { return h.sum.Get() }

// Count returns the number of observations.
func (h *Histogram) Count() float64 { return h.count.Get() }

// Samples returns the bucket samples followed by the sum and count samples.
func (h *Histogram) Samples() []*Sample {
	out := make([]*Sample, 0, len(h.buckets)+2)
	out = append(out, h.buckets...)
	return append(out, h.sum, h.count)
}

func validateBuckets(upper []float64) error {
	for i, b := range upper {
		if math.IsNaN(b) || math.IsInf(b, 0) {
			return ErrInvalidBuckets
		}
		if i > 0 && upper[i-1] >= b {
			return ErrInvalidBuckets
		}
	}
	return nil
}

func formatBound(b float64) string {
	if math.IsInf(b, 1) {
		return "+Inf"
	}
	return strconv.FormatFloat(b, 'g', -1, 64)
}
