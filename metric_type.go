package metrics

import (
	"fmt"
	"strings"
)

// MetricType classifies how a sample value is interpreted by consumers.
type MetricType string

const (
	MetricTypeCounter   MetricType = "counter"
	MetricTypeGauge     MetricType = "gauge"
	MetricTypeHistogram MetricType = "histogram"
	MetricTypeSummary   MetricType = "summary"
)

func (t MetricType) String() string { return string(t) }

// Valid reports whether t is one of the defined metric types.
func (t MetricType) Valid() bool {
	switch t {
	case MetricTypeCounter, MetricTypeGauge, MetricTypeHistogram, MetricTypeSummary:
		return true
	default:
		return false
	}
}

// ParseMetricType converts a case-insensitive name into a MetricType.
func ParseMetricType(s string) (MetricType, error) {
	t := MetricType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
	return t, nil
}
