package metrics

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Registry owns a set of samples keyed by identity.
// It is concurrency-safe. Samples are created on demand and reused for the same identity;
// Registry is the only place that enforces identity uniqueness and kind validity.
type Registry struct {
	id     uuid.UUID
	cfg    *registryConfig
	logger *zap.Logger

	shards []*shard
	// histograms groups the samples of one histogram under its base identity.
	histograms sync.Map // map[string]*Histogram
	// per-key init mutexes: deduplicate concurrent initialization for the same identity
	inits sync.Map // map[string]*sync.Mutex

	violations atomic.Int32
}

// entry keeps a sample and its metadata together so that both are published
// and removed by a single map operation.
type entry struct {
	sample *Sample
	cfg    SampleConfig
}

type shard struct {
	entries sync.Map // map[string]*entry
	// size changes only when an entry is actually inserted or removed.
	size atomic.Int64
}

// NewRegistry constructs a new Registry.
// Accepts optional functional options to customize behavior.
func NewRegistry(opts ...RegistryOption) *Registry {
	cfg := newRegistryConfig(opts)
	r := &Registry{
		id:     uuid.New(),
		cfg:    cfg,
		shards: make([]*shard, cfg.shards),
	}
	for i := range r.shards {
		r.shards[i] = &shard{}
	}
	r.logger = cfg.logger.With(zap.String("registry", r.id.String()))
	return r
}

// ID returns the registry instance ID used in log entries.
func (r *Registry) ID() uuid.UUID { return r.id }

func (r *Registry) shardFor(identity string) *shard {
	return r.shards[xxhash.Sum64String(identity)%uint64(len(r.shards))]
}

// keyMu returns a per-key mutex for the given key, creating one if necessary.
func (r *Registry) keyMu(key string) *sync.Mutex {
	m, _ := r.inits.LoadOrStore(key, &sync.Mutex{})
	return m.(*sync.Mutex)
}

// releaseKeyMu drops km from the inits map unless cleanup is disabled.
// Only km itself is removed: a newer mutex stored under the same key is left alone.
func (r *Registry) releaseKeyMu(key string, km *sync.Mutex) {
	if !r.cfg.doNotCleanupInits {
		r.inits.CompareAndDelete(key, km)
	}
}

// Register returns the sample for identity, creating it with initial when absent.
// An existing sample is returned unchanged: initial and opts apply on creation only.
func (r *Registry) Register(kind MetricType, identity string, initial float64, opts ...SampleOption) (*Sample, error) {
	s, _, err := r.register(kind, identity, initial, opts)
	return s, err
}

// register is Register that also reports whether this call created the sample.
func (r *Registry) register(kind MetricType, identity string, initial float64, opts []SampleOption) (*Sample, bool, error) {
	if identity == "" {
		return nil, false, ErrEmptyIdentity
	}
	if !kind.Valid() {
		return nil, false, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}

	sh := r.shardFor(identity)

	// fast read path
	if e, ok := r.load(sh, identity); ok {
		s, err := checkKind(e.sample, kind)
		return s, false, err
	}

	// compute config off-lock to avoid holding per-key mutex during option application
	cfg := applyOptions(opts)

	km := r.keyMu(identity)
	km.Lock()
	defer km.Unlock()
	defer r.releaseKeyMu(identity, km)

	e := &entry{sample: NewSample(kind, identity, initial), cfg: cfg}
	v, loaded := sh.entries.LoadOrStore(identity, e)
	if loaded {
		existing, ok := v.(*entry)
		if !ok {
			r.reportInvariantViolation("entry_type", identity)
			return nil, false, fmt.Errorf("%w: %q", ErrKindMismatch, identity)
		}
		s, err := checkKind(existing.sample, kind)
		return s, false, err
	}
	sh.size.Add(1)

	r.logger.Debug("sample registered",
		zap.String("identity", identity),
		zap.Stringer("kind", kind),
		zap.Float64("initial", initial),
	)
	return e.sample, true, nil
}

func checkKind(s *Sample, kind MetricType) (*Sample, error) {
	if s.Kind() != kind {
		return nil, fmt.Errorf("%w: %q is a %s, requested %s", ErrKindMismatch, s.Identity(), s.Kind(), kind)
	}
	return s, nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(kind MetricType, identity string, initial float64, opts ...SampleOption) *Sample {
	s, err := r.Register(kind, identity, initial, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// Lookup returns the live sample registered under identity.
func (r *Registry) Lookup(identity string) (*Sample, bool) {
	e, ok := r.load(r.shardFor(identity), identity)
	if !ok {
		return nil, false
	}
	return e.sample, true
}

// Unregister removes the sample registered under identity and reports whether it was present.
// Handles held by callers keep working but the sample is no longer enumerated.
func (r *Registry) Unregister(identity string) bool {
	sh := r.shardFor(identity)
	if _, ok := sh.entries.LoadAndDelete(identity); !ok {
		return false
	}
	sh.size.Add(-1)
	r.logger.Debug("sample unregistered", zap.String("identity", identity))
	return true
}

// unregisterSample removes identity only while it still maps to s.
func (r *Registry) unregisterSample(s *Sample) {
	sh := r.shardFor(s.Identity())
	v, ok := sh.entries.Load(s.Identity())
	if !ok {
		return
	}
	if e, ok := v.(*entry); ok && e.sample == s && sh.entries.CompareAndDelete(s.Identity(), v) {
		sh.size.Add(-1)
	}
}

// Len returns the number of live samples.
func (r *Registry) Len() int {
	var n int64
	for _, sh := range r.shards {
		n += sh.size.Load()
	}
	// an Unregister may briefly run ahead of the matching increment
	if n < 0 {
		return 0
	}
	return int(n)
}

// Range calls f for each live sample until f returns false.
// Samples registered or removed concurrently may or may not be visited.
func (r *Registry) Range(f func(*Sample) bool) {
	for _, sh := range r.shards {
		if !sh.rangeSamples(f) {
			return
		}
	}
}

func (r *Registry) load(sh *shard, identity string) (*entry, bool) {
	v, ok := sh.entries.Load(identity)
	if !ok {
		return nil, false
	}
	e, ok := v.(*entry)
	if !ok || e.sample == nil {
		r.reportInvariantViolation("entry_type", identity)
		return nil, false
	}
	return e, true
}

func (sh *shard) rangeEntries(f func(string, *entry) bool) bool {
	cont := true
	sh.entries.Range(func(k, v interface{}) bool {
		identity, ok := k.(string)
		e, ok2 := v.(*entry)
		if !ok || !ok2 || e.sample == nil {
			return true // skip invalid entries
		}
		cont = f(identity, e)
		return cont
	})
	return cont
}

func (sh *shard) rangeSamples(f func(*Sample) bool) bool {
	return sh.rangeEntries(func(_ string, e *entry) bool { return f(e.sample) })
}

// reportInvariantViolation reports unexpected internal states such as
// "entry of the wrong type". In release builds it logs up to 10 times;
// in debug builds (or under race detector) it panics to catch bugs early.
func (r *Registry) reportInvariantViolation(kind, identity string) {
	const maxReports = 10

	msg := "invariant violation: " + kind + " for " + identity

	// In debug builds, fail fast.
	if isDebugBuild() {
		panic("[metrics] " + msg)
	}

	if r.violations.Add(1) > maxReports {
		return
	}
	r.logger.Warn(msg, zap.String("identity", identity), zap.String("violation", kind))
}

// isDebugBuild reports whether we're in a "debug" or "race" build.
func isDebugBuild() bool {
	return raceBuild || debugBuild
}
