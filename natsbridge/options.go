package natsbridge

import (
	"log/slog"

	"github.com/haoxiangmiao/ditto/envelope"
)

// Option is a functional option for configuring the Bridge.
type Option func(*Bridge) error

// WithLogger sets a custom structured logger for the bridge.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bridge) error {
		if logger == nil {
			logger = slog.Default()
		}
		b.logger = logger
		return nil
	}
}

// WithPredicate restricts which declared fields are emitted on publish.
func WithPredicate(pred envelope.Predicate) Option {
	return func(b *Bridge) error {
		if pred == nil {
			pred = envelope.All
		}
		b.pred = pred
		return nil
	}
}
