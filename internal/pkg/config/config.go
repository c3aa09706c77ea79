package config

import (
	"io"
	"time"
)

// TimeConfig defines helpers for retrieving time-based configuration values.
//
// Values are stored as plain integers in the source and scaled by the unit
// named in the method, so "otp_ttl_seconds: 600" is read with GetSecond.
type TimeConfig interface {
	GetSecond(key string) time.Duration
	GetMinute(key string) time.Duration
	GetDay(key string) time.Duration
}

// NumberConfig defines helpers for retrieving numeric configuration values.
type NumberConfig interface {
	GetInt(key string) int
	GetInt64(key string) int64
	GetFloat64(key string) float64
}

// Config defines a set of methods for retrieving configuration values of various types.
// Implementations handle type conversion and return the zero value (or a
// registered default) when the key is missing.
type Config interface {
	io.Closer
	TimeConfig
	NumberConfig

	// GetBool retrieves the configuration value associated with the given key as a bool.
	GetBool(key string) bool

	// GetString retrieves the configuration value associated with the given key as a string.
	GetString(key string) string

	// GetBinary retrieves a base64 encoded configuration value as raw bytes.
	GetBinary(key string) []byte

	// GetArray retrieves a comma separated value (<element1>,<element2>,...)
	// as a slice of trimmed, non-empty strings.
	GetArray(key string) []string
}
