package metrics

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounter(t *testing.T) {
	r := NewRegistry()
	c, err := r.Counter("requests_total", Labels{"method": "GET"})
	require.NoError(t, err)

	c.Inc()
	require.NoError(t, c.Add(2.5))
	require.ErrorIs(t, c.Add(-1), ErrNegativeCounterDelta)
	assert.Equal(t, 3.5, c.Value())

	s, ok := r.Lookup(`requests_total{method="GET"}`)
	require.True(t, ok)
	assert.Equal(t, MetricTypeCounter, s.Kind())
	assert.Equal(t, []*Sample{s}, c.Samples())

	// same name and labels share the sample
	c2, err := r.Counter("requests_total", Labels{"method": "GET"})
	require.NoError(t, err)
	c2.Inc()
	assert.Equal(t, 4.5, c.Value())
}

func TestCounter_ConcurrentInc(t *testing.T) {
	r := NewRegistry()
	c, err := r.Counter("hits_total", nil)
	require.NoError(t, err)

	const workers, perWorker = 8, 1000
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				c.Inc()
			}
		}()
	}
	wg.Wait()
	require.Equal(t, float64(workers*perWorker), c.Value())
}

func TestGauge(t *testing.T) {
	r := NewRegistry()
	g, err := r.Gauge("in_flight", nil)
	require.NoError(t, err)

	steps := []struct {
		name string
		op   func()
		want float64
	}{
		{name: "set", op: func() { g.Set(10) }, want: 10},
		{name: "add", op: func() { g.Add(2.5) }, want: 12.5},
		{name: "sub", op: func() { g.Sub(0.5) }, want: 12},
		{name: "inc", op: g.Inc, want: 13},
		{name: "dec", op: g.Dec, want: 12},
		{name: "negative", op: func() { g.Sub(20) }, want: -8},
	}
	for _, st := range steps {
		st.op()
		assert.Equal(t, st.want, g.Value(), st.name)
	}
}

func TestInstruments_KindMismatch(t *testing.T) {
	r := NewRegistry()
	_, err := r.Gauge("x", nil)
	require.NoError(t, err)
	_, err = r.Counter("x", nil)
	require.ErrorIs(t, err, ErrKindMismatch)

	_, err = r.Gauge("", nil)
	require.ErrorIs(t, err, ErrEmptyIdentity)
}

func TestHistogram(t *testing.T) {
	r := NewRegistry()
	h, err := r.Histogram("latency_seconds", Labels{"path": "/"}, []float64{0.1, 0.5, 1})
	require.NoError(t, err)

	for _, v := range []float64{0.05, 0.1, 0.3, 0.7, 2} {
		h.Observe(v)
	}

	want := map[string]float64{
		`latency_seconds_bucket{le="0.1",path="/"}`:  2,
		`latency_seconds_bucket{le="0.5",path="/"}`:  3,
		`latency_seconds_bucket{le="1",path="/"}`:    4,
		`latency_seconds_bucket{le="+Inf",path="/"}`: 5,
		`latency_seconds_sum{path="/"}`:              3.15,
		`latency_seconds_count{path="/"}`:            5,
	}
	require.Equal(t, len(want), r.Len())
	for id, v := range want {
		s, ok := r.Lookup(id)
		require.True(t, ok, id)
		assert.Equal(t, MetricTypeHistogram, s.Kind(), id)
		assert.InDelta(t, v, s.Get(), 1e-9, id)
	}
	assert.Equal(t, 5.0, h.Count())
	assert.InDelta(t, 3.15, h.Sum(), 1e-9)
	assert.Equal(t, []float64{0.1, 0.5, 1}, h.Buckets())
	assert.Len(t, h.Samples(), 6)
}

func TestHistogram_Registration(t *testing.T) {
	t.Run("default_buckets", func(t *testing.T) {
		r := NewRegistry()
		h, err := r.Histogram("d", nil, nil)
		require.NoError(t, err)
		assert.Equal(t, DefaultBuckets, h.Buckets())
		assert.Equal(t, len(DefaultBuckets)+3, r.Len())
	})

	t.Run("dedup", func(t *testing.T) {
		r := NewRegistry()
		h1, err := r.Histogram("h", nil, []float64{1})
		require.NoError(t, err)
		h2, err := r.Histogram("h", nil, []float64{1, 2})
		require.NoError(t, err)
		assert.Same(t, h1, h2)
	})

	t.Run("invalid_buckets", func(t *testing.T) {
		r := NewRegistry()
		for _, b := range [][]float64{{2, 1}, {1, 1}, {math.NaN()}, {math.Inf(1)}} {
			_, err := r.Histogram("bad", nil, b)
			require.ErrorIs(t, err, ErrInvalidBuckets)
		}
		assert.Zero(t, r.Len())
	})

	t.Run("conflicting_sample", func(t *testing.T) {
		r := NewRegistry()
		r.MustRegister(MetricTypeGauge, "h_sum", 0)
		_, err := r.Histogram("h", nil, []float64{1})
		require.ErrorIs(t, err, ErrKindMismatch)

		// bucket samples created before the conflict are rolled back
		assert.Equal(t, 1, r.Len())
		_, ok := r.Lookup(`h_bucket{le="1"}`)
		assert.False(t, ok)
		assert.Zero(t, countInits(r))

		// the histogram can be created once the conflict is gone
		require.True(t, r.Unregister("h_sum"))
		_, err = r.Histogram("h", nil, []float64{1})
		require.NoError(t, err)
		assert.Equal(t, 4, r.Len())
	})

	t.Run("concurrent_dedup", func(t *testing.T) {
		r := NewRegistry()
		const n = 32
		got := make([]*Histogram, n)
		var wg sync.WaitGroup
		wg.Add(n)
		for i := 0; i < n; i++ {
			go func(i int) {
				defer wg.Done()
				h, err := r.Histogram("lat", Labels{"op": "get"}, []float64{0.1, 1})
				if err == nil {
					got[i] = h
				}
			}(i)
		}
		wg.Wait()

		require.NotNil(t, got[0])
		for i := 1; i < n; i++ {
			require.Same(t, got[0], got[i])
		}
		assert.Equal(t, 5, r.Len())
		assert.Zero(t, countInits(r))
	})

	t.Run("unregister", func(t *testing.T) {
		r := NewRegistry()
		_, err := r.Histogram("h", nil, []float64{1})
		require.NoError(t, err)
		require.True(t, r.UnregisterHistogram("h", nil))
		require.False(t, r.UnregisterHistogram("h", nil))
		assert.Zero(t, r.Len())
	})
}
