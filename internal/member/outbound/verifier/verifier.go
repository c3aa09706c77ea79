// Package verifier talks to the association's membership API, which sends
// the one-time code over WhatsApp and answers with the member's record.
package verifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/shandysiswandi/memberauth/internal/member/entity"
	"github.com/shandysiswandi/memberauth/internal/pkg/instrument"
)

const (
	DriverRemote = "remote"
	DriverMock   = "mock"

	defaultTimeout = 5 * time.Second
)

var (
	ErrUnknownDriver = errors.New("verifier: unknown driver")
	ErrURLRequired   = errors.New("verifier: url is required")
)

// Verifier sends a code to a phone number and returns the member behind it.
type Verifier interface {
	RequestChallenge(ctx context.Context, phone, code string) (*entity.Subject, error)
	LookupMember(ctx context.Context, membershipNumber string) (json.RawMessage, error)
}

// Config selects and configures a Verifier.
type Config struct {
	Driver   string
	URL      string
	UsersURL string
	Timeout  time.Duration
	Mock     entity.Subject
}

// New builds the Verifier named by cfg.Driver.
func New(cfg Config, ins instrument.Instrumentation) (Verifier, error) {
	switch cfg.Driver {
	case DriverRemote:
		if cfg.URL == "" || cfg.UsersURL == "" {
			return nil, ErrURLRequired
		}

		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}

		client := &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
		return NewRemote(client, cfg.URL, cfg.UsersURL, ins), nil

	case DriverMock:
		return NewMock(cfg.Mock, ins), nil

	default:
		return nil, ErrUnknownDriver
	}
}
