package reconcile

import (
	"github.com/rs/zerolog"

	"github.com/tracksync/bridge/pkg/uid"
)

// Option configures an Engine.
type Option func(*Engine)

// WithGenerator sets the identifier generator for new entities,
// enrollments, and events. Tests inject deterministic generators here.
func WithGenerator(g uid.Generator) Option {
	return func(e *Engine) {
		e.uid = g
	}
}

// WithLogger sets the logger used for per-client diagnostics and the pass
// summary. The default discards output, keeping the engine silent.
func WithLogger(logger *zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}
