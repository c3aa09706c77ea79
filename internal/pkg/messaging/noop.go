package messaging

import (
	"context"
	"log/slog"
)

// Noop drops messages after logging them at debug level.
type Noop struct{}

// NewNoop returns a publisher that sends nothing.
func NewNoop() *Noop {
	return &Noop{}
}

func (*Noop) Publish(ctx context.Context, subject string, msg Message) error {
	if subject == "" {
		return ErrSubjectRequired
	}
	slog.DebugContext(ctx, "message dropped by noop publisher", "subject", subject, "size", len(msg.Body))
	return nil
}

func (*Noop) Close() error {
	return nil
}
