package metrics

// SampleConfig is the descriptive metadata stored next to a registered sample.
// The registry never derives the identity from it.
type SampleConfig struct {
	Description string
	Unit        string
	// Attributes are static tags for admin/debug listings; they are not labels
	// and do not take part in the identity.
	Attributes map[string]string
}

// SampleOption sets a field of SampleConfig at registration time.
type SampleOption func(*SampleConfig)

// WithDescription sets the help text shown for the sample.
func WithDescription(desc string) SampleOption {
	return func(c *SampleConfig) { c.Description = desc }
}

// WithUnit sets the unit the sample value is measured in (e.g., "bytes", "seconds").
func WithUnit(unit string) SampleOption {
	return func(c *SampleConfig) { c.Unit = unit }
}

// WithAttributes merges attrs into the sample's static attributes.
// attrs is copied; later changes to the caller's map are not seen by the registry.
func WithAttributes(attrs map[string]string) SampleOption {
	return func(c *SampleConfig) {
		if len(attrs) == 0 {
			return
		}
		if c.Attributes == nil {
			c.Attributes = make(map[string]string, len(attrs))
		}
		for k, v := range attrs {
			c.Attributes[k] = v
		}
	}
}

func applyOptions(opts []SampleOption) SampleConfig {
	var cfg SampleConfig
	for _, o := range opts {
		if o != nil {
			o(&cfg)
		}
	}
	return cfg
}

// copyConfig returns cfg with its own Attributes map, so Inspector callers
// cannot reach the registry's stored metadata.
func copyConfig(cfg SampleConfig) SampleConfig {
	out := SampleConfig{Description: cfg.Description, Unit: cfg.Unit}
	if len(cfg.Attributes) > 0 {
		out.Attributes = make(map[string]string, len(cfg.Attributes))
		for k, v := range cfg.Attributes {
			out.Attributes[k] = v
		}
	}
	return out
}
