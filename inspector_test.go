package metrics

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleWithMeta(t *testing.T) {
	t.Run("not_registered", func(t *testing.T) {
		r := NewRegistry()
		s, cfg, ok := r.SampleWithMeta("missing")
		require.False(t, ok)
		require.Nil(t, s)
		require.Empty(t, cfg.Description)
	})

	t.Run("registered_without_options", func(t *testing.T) {
		r := NewRegistry()
		r.MustRegister(MetricTypeCounter, "cnt1", 3)
		s, cfg, ok := r.SampleWithMeta("cnt1")
		require.True(t, ok)
		require.Equal(t, 3.0, s.Get())
		assert.Empty(t, cfg.Description)
		assert.Empty(t, cfg.Unit)
		assert.Empty(t, cfg.Attributes)
	})

	t.Run("options_and_defensive_copy", func(t *testing.T) {
		r := NewRegistry()
		attrs := map[string]string{"k": "v"}
		r.MustRegister(MetricTypeGauge, "g1", 0, WithDescription("desc"), WithUnit("u"), WithAttributes(attrs))

		_, cfg1, ok := r.SampleWithMeta("g1")
		require.True(t, ok)
		require.Equal(t, "desc", cfg1.Description)
		require.Equal(t, "u", cfg1.Unit)
		require.Equal(t, "v", cfg1.Attributes["k"])

		// mutate returned config and original attrs map; registry keeps its own copy
		cfg1.Attributes["k"] = "mutated"
		attrs["k"] = "external"
		_, cfg2, ok := r.SampleWithMeta("g1")
		require.True(t, ok)
		require.Equal(t, "v", cfg2.Attributes["k"])
	})

	t.Run("options_ignored_for_existing", func(t *testing.T) {
		r := NewRegistry()
		r.MustRegister(MetricTypeGauge, "g2", 0, WithDescription("first"))
		r.MustRegister(MetricTypeGauge, "g2", 0, WithDescription("second"))
		_, cfg, ok := r.SampleWithMeta("g2")
		require.True(t, ok)
		require.Equal(t, "first", cfg.Description)
	})

	t.Run("unregistered_drops_meta", func(t *testing.T) {
		r := NewRegistry()
		r.MustRegister(MetricTypeGauge, "g3", 0, WithUnit("s"))
		r.Unregister("g3")
		_, _, ok := r.SampleWithMeta("g3")
		require.False(t, ok)
	})
}

func TestListMetadata(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(MetricTypeCounter, "a_total", 0, WithDescription("a"))
	r.MustRegister(MetricTypeGauge, "b", 0, WithUnit("bytes"))
	r.MustRegister(MetricTypeSummary, "c", 0)

	entries := r.ListMetadata()
	sort.Slice(entries, func(i, j int) bool { return entries[i].Identity < entries[j].Identity })

	require.Equal(t, []SampleEntry{
		{Kind: MetricTypeCounter, Identity: "a_total", Config: SampleConfig{Description: "a"}},
		{Kind: MetricTypeGauge, Identity: "b", Config: SampleConfig{Unit: "bytes"}},
		{Kind: MetricTypeSummary, Identity: "c"},
	}, entries)
}
