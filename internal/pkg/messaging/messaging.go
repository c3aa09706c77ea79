package messaging

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrSubjectRequired is returned when the destination is empty.
	ErrSubjectRequired = errors.New("messaging: subject is required")
	// ErrURLRequired is returned when the broker address is missing.
	ErrURLRequired = errors.New("messaging: broker url is required")
	// ErrUnknownDriver is returned by the factory for an unsupported driver name.
	ErrUnknownDriver = errors.New("messaging: unknown driver")
	// ErrClosed is returned when publishing on a closed publisher.
	ErrClosed = errors.New("messaging: publisher closed")
)

// Publisher sends messages to a destination subject.
type Publisher interface {
	io.Closer

	Publish(ctx context.Context, subject string, msg Message) error
}

// Message is a broker-agnostic outgoing message.
type Message struct {
	Body    []byte
	Headers map[string]string
}
