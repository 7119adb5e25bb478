/*
Package metrics provides concurrency-safe in-memory metric samples for Go.

# Overview

The package is organized around one core type and the owner that manages it:

1. Sample: a single metric value tagged with a MetricType and an identity string.
The identity is the metric name with its label set already rendered into it, e.g.
`requests_total{method="GET"}`, and is treated as an opaque key. Kind and identity
never change after construction. The value is a float64 stored as its IEEE-754 bit
pattern in an atomic.Uint64, so any number of goroutines may call Set and Get
without locking and no reader ever observes a torn value. Set is last-writer-wins.

	s := metrics.NewSample(metrics.MetricTypeGauge, "cpu_usage", 0)
	s.Set(0.42)
	_ = s.Get()

2. Registry: creation, lookup, enumeration and removal of samples. The registry is
where identities are checked for uniqueness and kinds for validity; Sample itself
never validates its inputs.

	r := metrics.NewRegistry(metrics.WithShards(8))
	s, err := r.Register(metrics.MetricTypeCounter, "reqs_total", 10)

Counter, Gauge and Histogram are convenience instruments built on registry samples.
A Histogram owns one sample per cumulative bucket plus a sum and a count sample.

# How the registry works (high level)

 1. Samples are spread over shards by the xxhash of their identity. Each shard is a
    sync.Map of samples and a sync.Map of SampleConfig metadata.
 2. Fast path: look up the identity and return the existing sample.
 3. Slow path: build SampleConfig off-lock from options; acquire the per-key init
    mutex; re-check; store metadata and the new sample; optionally delete the init
    mutex entry.
 4. Inspector methods (SampleWithMeta, ListMetadata) return defensive copies of the
    stored metadata. Invariant violations are logged in release builds and panic
    in debug and race builds.

# Collection

Collector reads every live sample of a registry into a Batch, fanning out over the
shards. It can drain selected kinds on read and run periodically, handing batches
to an Exporter. LogExporter writes batches through zap.

# Build and test

	go test ./...
	go test -race ./...
	go test -tags=debug ./...
*/
package metrics
