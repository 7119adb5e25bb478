package metrics

import "errors"

var (
	ErrEmptyIdentity        = errors.New("metrics: empty identity")
	ErrInvalidKind          = errors.New("metrics: invalid metric type")
	ErrKindMismatch         = errors.New("metrics: identity registered with a different metric type")
	ErrNegativeCounterDelta = errors.New("metrics: counter cannot decrease")
	ErrInvalidBuckets       = errors.New("metrics: histogram buckets must be sorted and finite")
	ErrInvalidConfig        = errors.New("metrics: invalid config")
)
