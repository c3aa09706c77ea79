package otp

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strconv"
)

// ErrInvalidDigits is returned for a code width outside 4..9.
var ErrInvalidDigits = errors.New("otp digits must be between 4 and 9")

// Generator produces one-time codes.
type Generator interface {
	Generate() (string, error)
}

// Random yields codes in [10^(digits-1), 10^digits - 1].
type Random struct {
	min  int64
	span *big.Int
	intn func(max *big.Int) (*big.Int, error)
}

// NewRandom returns a generator of codes with the given number of digits.
func NewRandom(digits int) (*Random, error) {
	return newRandom(digits, func(max *big.Int) (*big.Int, error) {
		return rand.Int(rand.Reader, max)
	})
}

func newRandom(digits int, intn func(max *big.Int) (*big.Int, error)) (*Random, error) {
	if digits < 4 || digits > 9 {
		return nil, ErrInvalidDigits
	}

	lo := int64(1)
	for range digits - 1 {
		lo *= 10
	}

	return &Random{min: lo, span: big.NewInt(lo*10 - lo), intn: intn}, nil
}

// Generate returns a fresh code.
func (r *Random) Generate() (string, error) {
	n, err := r.intn(r.span)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(r.min+n.Int64(), 10), nil
}
