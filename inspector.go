package metrics

// Inspector provides an optional capability of metadata inspection/snapshot.
// Implementations should return defensive copies of configs.
// Snapshot semantics: best-effort at call time.
// Methods must be safe for concurrent use.
type Inspector interface {
	// SampleWithMeta returns the sample (if registered), a snapshot of its config,
	// and a flag of whether it was found.
	SampleWithMeta(identity string) (*Sample, SampleConfig, bool)

	// ListMetadata returns enumeration for admin/debug UIs.
	ListMetadata() []SampleEntry
}

var _ Inspector = (*Registry)(nil)

type SampleEntry struct {
	Kind     MetricType
	Identity string
	Config   SampleConfig // defensive copy
}

// SampleWithMeta implements Inspector.SampleWithMeta for Registry.
// The sample and its metadata are stored in one entry, so the pair is always
// consistent without taking the per-key init mutex.
// The third return value is true if and only if the sample was found.
func (r *Registry) SampleWithMeta(identity string) (*Sample, SampleConfig, bool) {
	e, ok := r.load(r.shardFor(identity), identity)
	if !ok {
		return nil, SampleConfig{}, false
	}
	return e.sample, copyConfig(e.cfg), true
}

// ListMetadata returns a best-effort snapshot of metadata entries. Callers
// should treat the result as a point-in-time snapshot that may race with
// concurrent registrations.
func (r *Registry) ListMetadata() []SampleEntry {
	out := make([]SampleEntry, 0, r.Len())
	for _, sh := range r.shards {
		sh.rangeEntries(func(identity string, e *entry) bool {
			out = append(out, SampleEntry{Kind: e.sample.Kind(), Identity: identity, Config: copyConfig(e.cfg)})
			return true
		})
	}
	return out
}
