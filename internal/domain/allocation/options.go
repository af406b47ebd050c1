package allocation

import "github.com/okian/squad/pkg/logger"

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithPolicy replaces the default policy.
func WithPolicy(p Policy) Option {
	return func(e *Engine) {
		e.policy = p
	}
}

// WithLogger sets the logger for classification warnings and repair traces.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}
