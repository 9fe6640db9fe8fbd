package infrastructure

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// NoopEventPublisher discards events. Used when no NATS servers are
// configured so the rest of the system can publish unconditionally.
type NoopEventPublisher struct{}

// NewNoopEventPublisher creates a new no-op publisher
func NewNoopEventPublisher() *NoopEventPublisher {
	return &NoopEventPublisher{}
}

// Publish logs the event at debug level and drops it
func (p *NoopEventPublisher) Publish(ctx context.Context, subject string, event any) error {
	log.WithField("subject", subject).Debug("Event publishing disabled, discarding event")
	return nil
}
