package verifier

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/memberauth/internal/member/entity"
	"github.com/shandysiswandi/memberauth/internal/pkg/instrument"
)

func TestNew(t *testing.T) {
	ins := instrument.NewNoop()

	v, err := New(Config{Driver: DriverMock}, ins)
	require.NoError(t, err)
	assert.IsType(t, &Mock{}, v)

	v, err = New(Config{Driver: DriverRemote, URL: "http://x/otp", UsersURL: "http://x/users"}, ins)
	require.NoError(t, err)
	remote, ok := v.(*Remote)
	require.True(t, ok)
	assert.Equal(t, defaultTimeout, remote.client.Timeout)

	_, err = New(Config{Driver: DriverRemote, URL: "http://x/otp"}, ins)
	assert.ErrorIs(t, err, ErrURLRequired)

	_, err = New(Config{Driver: "carrier-pigeon"}, ins)
	assert.ErrorIs(t, err, ErrUnknownDriver)
}

func TestMock(t *testing.T) {
	ctx := context.Background()
	m := NewMock(entity.Subject{}, instrument.NewNoop())

	got, err := m.RequestChallenge(ctx, "6281234567890", "123456")
	require.NoError(t, err)
	assert.Equal(t, "6281234567890", got.PhoneNumber)
	assert.Equal(t, "99998", got.MembershipNumber)
	assert.True(t, got.HasLicense())

	year, ok := got.LastPaymentYear()
	assert.True(t, ok)
	assert.Equal(t, 2024, year)

	raw, err := m.LookupMember(ctx, "99998")
	require.NoError(t, err)
	var member map[string]string
	require.NoError(t, json.Unmarshal(raw, &member))
	assert.Equal(t, "1.234.56789", member["straNumber"])

	_, err = m.LookupMember(ctx, "1")
	assert.ErrorIs(t, err, entity.ErrMemberNotFound)
}

func TestMock_CustomSubject(t *testing.T) {
	m := NewMock(entity.Subject{Name: "Dev", MembershipNumber: "1", LastPaymentAt: "2019"}, instrument.NewNoop())

	got, err := m.RequestChallenge(context.Background(), "0812345678", "000000")
	require.NoError(t, err)
	assert.Equal(t, "Dev", got.Name)
	assert.False(t, got.HasLicense())
}
