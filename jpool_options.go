package jpool

import "log/slog"

// DefaultMaxDepth is the nesting limit used when WithMaxDepth is not given.
const DefaultMaxDepth = 64

// Option configures a Pool.
type Option func(*options)

type options struct {
	maxDepth int
	logger   *slog.Logger
}

func defaultOptions() options {
	return options{
		maxDepth: DefaultMaxDepth,
		logger:   slog.New(slog.DiscardHandler),
	}
}

// WithMaxDepth sets the maximum nesting of objects and arrays accepted by
// Decode. Values below 1 are ignored.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		if depth > 0 {
			o.maxDepth = depth
		}
	}
}

// WithLogger sets a structured logger for pool growth and decode events.
// A nil logger keeps the pool silent.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger.With("component", "jpool")
		}
	}
}
