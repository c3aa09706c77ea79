package otp

import (
	"errors"
	"math/big"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandom_SixDigitRange(t *testing.T) {
	gen, err := NewRandom(6)
	require.NoError(t, err)

	seen := make(map[string]struct{})
	for range 2000 {
		code, err := gen.Generate()
		require.NoError(t, err)
		require.Len(t, code, 6)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		require.GreaterOrEqual(t, n, 100000)
		require.LessOrEqual(t, n, 999999)
		seen[code] = struct{}{}
	}

	// 2000 draws from 900000 values; collisions beyond a handful mean a broken source.
	assert.Greater(t, len(seen), 1990)
}

func TestRandom_Bounds(t *testing.T) {
	low, err := newRandom(6, func(*big.Int) (*big.Int, error) { return big.NewInt(0), nil })
	require.NoError(t, err)
	code, err := low.Generate()
	require.NoError(t, err)
	assert.Equal(t, "100000", code)

	high, err := newRandom(6, func(max *big.Int) (*big.Int, error) { return new(big.Int).Sub(max, big.NewInt(1)), nil })
	require.NoError(t, err)
	code, err = high.Generate()
	require.NoError(t, err)
	assert.Equal(t, "999999", code)
}

func TestRandom_SourceFailure(t *testing.T) {
	gen, err := newRandom(6, func(*big.Int) (*big.Int, error) { return nil, errors.New("entropy unavailable") })
	require.NoError(t, err)

	_, err = gen.Generate()
	assert.Error(t, err)
}

func TestNewRandom_InvalidDigits(t *testing.T) {
	for _, d := range []int{0, 3, 10} {
		_, err := NewRandom(d)
		assert.ErrorIs(t, err, ErrInvalidDigits)
	}
}
