package metrics

import (
	"math"

	"go.uber.org/zap"
)

// Counter returns the counter for name and labels, registering its sample on first use.
func (r *Registry) Counter(name string, labels Labels, opts ...SampleOption) (*Counter, error) {
	s, err := r.Register(MetricTypeCounter, RenderIdentity(name, labels), 0, opts...)
	if err != nil {
		return nil, err
	}
	return &Counter{s: s}, nil
}

// Gauge returns the gauge for name and labels, registering its sample on first use.
func (r *Registry) Gauge(name string, labels Labels, opts ...SampleOption) (*Gauge, error) {
	s, err := r.Register(MetricTypeGauge, RenderIdentity(name, labels), 0, opts...)
	if err != nil {
		return nil, err
	}
	return &Gauge{s: s}, nil
}

// Histogram returns the histogram for name and labels (created once).
// buckets are upper bounds in increasing order; nil selects DefaultBuckets.
// Buckets of an existing histogram are kept even if different ones are passed.
func (r *Registry) Histogram(name string, labels Labels, buckets []float64, opts ...SampleOption) (*Histogram, error) {
	if name == "" {
		return nil, ErrEmptyIdentity
	}
	base := RenderIdentity(name, labels)
	if v, ok := r.histograms.Load(base); ok {
		return v.(*Histogram), nil
	}
	if buckets == nil {
		buckets = DefaultBuckets
	}
	if err := validateBuckets(buckets); err != nil {
		return nil, err
	}

	key := histogramKey(base)
	km := r.keyMu(key)
	km.Lock()
	defer km.Unlock()
	defer r.releaseKeyMu(key, km)

	if v, ok := r.histograms.Load(base); ok {
		return v.(*Histogram), nil
	}

	identities := histogramIdentities(name, labels, buckets)

	samples := make([]*Sample, len(identities))
	createdBy := make([]bool, len(identities))
	for i, id := range identities {
		s, created, err := r.register(MetricTypeHistogram, id, 0, opts)
		if err != nil {
			// roll back the samples this call created
			for j, prev := range samples[:i] {
				if createdBy[j] {
					r.unregisterSample(prev)
				}
			}
			return nil, err
		}
		samples[i] = s
		createdBy[i] = created
	}

	n := len(buckets) + 1
	h := &Histogram{
		upper:   append([]float64(nil), buckets...),
		buckets: samples[:n],
		sum:     samples[n],
		count:   samples[n+1],
	}
	r.histograms.Store(base, h)

	r.logger.Debug("histogram registered", zap.String("identity", base), zap.Int("buckets", len(buckets)))
	return h, nil
}

// UnregisterHistogram removes every sample of the histogram for name and labels.
func (r *Registry) UnregisterHistogram(name string, labels Labels) bool {
	key := histogramKey(RenderIdentity(name, labels))
	km := r.keyMu(key)
	km.Lock()
	defer km.Unlock()
	defer r.releaseKeyMu(key, km)

	v, ok := r.histograms.LoadAndDelete(RenderIdentity(name, labels))
	if !ok {
		return false
	}
	for _, s := range v.(*Histogram).Samples() {
		r.unregisterSample(s)
	}
	return true
}

// histogramKey keeps histogram init locks apart from sample identities.
func histogramKey(base string) string { return "\x00histogram:" + base }

// histogramIdentities renders bucket identities (with +Inf last), then sum and count.
func histogramIdentities(name string, labels Labels, buckets []float64) []string {
	out := make([]string, 0, len(buckets)+3)
	for _, b := range buckets {
		out = append(out, RenderIdentity(name+"_bucket", labels.with("le", formatBound(b))))
	}
	out = append(out,
		RenderIdentity(name+"_bucket", labels.with("le", formatBound(math.Inf(1)))),
		RenderIdentity(name+"_sum", labels),
		RenderIdentity(name+"_count", labels),
	)
	return out
}
