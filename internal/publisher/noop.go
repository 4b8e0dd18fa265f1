package publisher

import "context"

// Noop is used when no Kafka brokers are configured; the service works
// without an event bus.
type Noop struct{}

func (Noop) Publish(_ context.Context, _ string, _ interface{}) error {
	return nil
}
