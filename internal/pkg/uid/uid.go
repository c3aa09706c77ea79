// Package uid generates string identifiers for tokens and request correlation.
package uid

// StringID produces unique string identifiers.
type StringID interface {
	Generate() string
}
