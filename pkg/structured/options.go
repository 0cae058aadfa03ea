package structured

// Option configures a single Set call.
type Option func(*config)

type config struct {
	arrayPreferring bool
	safe            bool
	equality        EqualFunc
}

// WithArrayPreferring biases auto-created containers toward sequences when
// the upcoming path segment is numeric. Off by default: a numeric key
// under a fresh level lands in a mapping keyed "0", "1", ... unless this
// is enabled.
func WithArrayPreferring(enabled bool) Option {
	return func(c *config) {
		c.arrayPreferring = enabled
	}
}

// WithEquality supplies the comparison the safe-mode pre-check uses in
// place of strict identity. It has no effect unless WithSafe is enabled.
func WithEquality(eq EqualFunc) Option {
	return func(c *config) {
		c.equality = eq
	}
}

// WithSafe runs the equality pre-check before writing and returns the base
// itself, same reference, when the value is already in place. Off by
// default.
func WithSafe(enabled bool) Option {
	return func(c *config) {
		c.safe = enabled
	}
}

func newConfig(opts []Option) config {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
