package goerror

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_StatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "InvalidFormat", err: NewInvalidFormat(), want: http.StatusBadRequest},
		{name: "InvalidInput", err: NewInvalidInput(errors.New("phone_number is required")), want: http.StatusBadRequest},
		{name: "Unauthorized", err: NewBusiness("invalid code", CodeUnauthorized), want: http.StatusUnauthorized},
		{name: "Forbidden", err: NewBusiness("payment expired", CodeForbidden), want: http.StatusForbidden},
		{name: "BadGateway", err: NewUpstream(nil, "directory unavailable", CodeBadGateway), want: http.StatusBadGateway},
		{name: "Server", err: NewServer(errors.New("redis down")), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gerr *Error
			require.True(t, errors.As(tt.err, &gerr))
			assert.Equal(t, tt.want, gerr.StatusCode())
		})
	}
}

func TestNewBusiness_Fields(t *testing.T) {
	err := NewBusiness("Payment expired", CodeForbidden, "reason", "payment_expired", "years_since_payment", "6", "dangling")

	var gerr *Error
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, "Payment expired", gerr.Msg())
	assert.Equal(t, TypeBusiness, gerr.Type())
	assert.Equal(t, map[string]string{"reason": "payment_expired", "years_since_payment": "6"}, gerr.Fields())
	assert.Equal(t, "6", gerr.Field("years_since_payment"))
}

func TestNewUpstream_WrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewUpstream(cause, "Failed to send OTP", CodeInvalidInput)
	assert.ErrorIs(t, err, cause)

	err = NewUpstream(nil, "Failed to send OTP", CodeInvalidInput)
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestNewInvalidInput_OddPairs(t *testing.T) {
	err := NewInvalidInput(nil, "phone_number")

	var gerr *Error
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, CodeInvalidFormat, gerr.Code())
}
