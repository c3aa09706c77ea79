package messaging

import (
	"fmt"
	"strings"
)

const (
	// DriverNATS selects the NATS publisher.
	DriverNATS = "nats"
	// DriverNoop selects the logging-only publisher.
	DriverNoop = "noop"
)

// FactoryOptions holds driver-specific settings for NewFromDriver.
type FactoryOptions struct {
	NATS NATSConfig
}

// NewFromDriver builds a Publisher for the named driver.
func NewFromDriver(driver string, opts FactoryOptions) (Publisher, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverNATS:
		return NewNATS(opts.NATS)
	case DriverNoop, "":
		return NewNoop(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}
