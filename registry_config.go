package metrics

import "go.uber.org/zap"

const defaultShards = 16

type registryConfig struct {
	// when false, remove per-key mutex entries from `inits` after initialization to
	// allow GC of mutexes for many ephemeral identities. Default: false.
	doNotCleanupInits bool
	shards            int
	logger            *zap.Logger
}

// RegistryOption configures a Registry constructed by NewRegistry.
type RegistryOption func(*registryConfig)

// WithInitCleanupDisabled keeps per-key init mutex entries in the registry's
// internal `inits` map after a sample has been created.
// Init cleanup is enabled by default; this option disables it.
func WithInitCleanupDisabled() RegistryOption {
	return func(cfg *registryConfig) { cfg.doNotCleanupInits = true }
}

// WithShards sets the number of storage shards. Values below 1 are ignored.
func WithShards(n int) RegistryOption {
	return func(cfg *registryConfig) {
		if n > 0 {
			cfg.shards = n
		}
	}
}

// WithLogger sets the logger used for lifecycle events and invariant reports.
func WithLogger(l *zap.Logger) RegistryOption {
	return func(cfg *registryConfig) { cfg.logger = l }
}

func newRegistryConfig(opts []RegistryOption) *registryConfig {
	cfg := &registryConfig{shards: defaultShards}
	for _, o := range opts {
		if o != nil {
			o(cfg)
		}
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}
	return cfg
}
