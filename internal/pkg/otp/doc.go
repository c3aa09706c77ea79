// Package otp generates one-time numeric codes.
//
// Codes are drawn uniformly from a fixed-width decimal range with crypto/rand,
// so they never start with a leading zero and every value is equally likely.
package otp
