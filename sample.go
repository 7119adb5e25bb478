package metrics

import (
	"math"
	"sync/atomic"
)

// Sample is a single named, typed metric value that is safe for concurrent use.
//
// Kind and identity are fixed at construction. The value is stored as the
// IEEE-754 bit pattern of a float64 so that loads and stores are never torn.
// Concurrent Set calls are last-writer-wins; Sample offers no read-modify-write.
type Sample struct {
	kind     MetricType
	identity string
	bits     atomic.Uint64
}

// NewSample constructs a sample. It does not validate its arguments: the owning
// registry is expected to reject empty identities and unknown kinds.
func NewSample(kind MetricType, identity string, initial float64) *Sample {
	s := &Sample{kind: kind, identity: identity}
	s.bits.Store(math.Float64bits(initial))
	return s
}

// Set replaces the current value.
func (s *Sample) Set(v float64) { s.bits.Store(math.Float64bits(v)) }

// Get returns the current value.
func (s *Sample) Get() float64 { return math.Float64frombits(s.bits.Load()) }

// Kind returns the metric type the sample was created with.
func (s *Sample) Kind() MetricType { return s.kind }

// Identity returns the rendered name and label set of the sample.
func (s *Sample) Identity() string { return s.identity }

// add atomically adds delta to the value and returns the new value.
func (s *Sample) add(delta float64) float64 {
	for {
		old := s.bits.Load()
		next := math.Float64frombits(old) + delta
		if s.bits.CompareAndSwap(old, math.Float64bits(next)) {
			return next
		}
	}
}

// swap stores v and returns the previous value.
func (s *Sample) swap(v float64) float64 {
	return math.Float64frombits(s.bits.Swap(math.Float64bits(v)))
}
