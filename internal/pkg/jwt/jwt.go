package jwt

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidSigningMethod is returned when the JWT signing method is not supported.
	ErrInvalidSigningMethod = errors.New("invalid JWT signing method")

	// ErrSigningKeyTooShort is returned when the HS512 signing key is less than 64 bytes.
	ErrSigningKeyTooShort = errors.New("HS512 signing key must be at least 64 bytes (512 bits)")

	// ErrTokenExpired is returned when the JWT token has expired.
	ErrTokenExpired = errors.New("JWT token has expired")

	// ErrInvalidToken is returned when the token is malformed or fails validation.
	ErrInvalidToken = errors.New("invalid token")

	// ErrMissingPhone is returned when claims without a phone number are signed.
	ErrMissingPhone = errors.New("token claims require a phone number")
)

// JWT defines the operations needed by the app: generate and verify a token.
type JWT interface {
	// Generate creates a signed token for the given identity.
	Generate(tc TokenClaims) (string, error)
	// Verify parses and validates the token and returns claims.
	Verify(tokenStr string) (Claims, error)
	// TTL reports how long generated tokens stay valid.
	TTL() time.Duration
}

type clocker interface {
	Now() time.Time
}

type generator interface {
	Generate() string
}

type jwtContextKey struct{}

// Config defines the inputs for building a JWT implementation.
type Config struct {
	// Secret is the HMAC signing key.
	Secret []byte
	// Issuer is the token issuer value.
	Issuer string
	// Audiences are the accepted token audiences.
	Audiences []string
	// TTL is the token time-to-live.
	TTL time.Duration
	// Clock provides the current time source.
	Clock clocker
	// UUID generates token IDs.
	UUID generator
}

// Kind tells which identity shape a token carries.
type Kind string

const (
	// KindPhone tokens only prove control of a phone number.
	KindPhone Kind = "phone"
	// KindMember tokens carry the verified member attributes.
	KindMember Kind = "member"
)

// TokenClaims is the identity embedded in a token. Build it with PhoneOnly
// or FullIdentity; the zero value is not signable.
type TokenClaims struct {
	Kind             Kind
	PhoneNumber      string
	Name             string
	MembershipNumber string
	LicenseNumber    string
}

// PhoneOnly returns claims for a verified phone without member attributes.
func PhoneOnly(phone string) TokenClaims {
	return TokenClaims{Kind: KindPhone, PhoneNumber: phone}
}

// FullIdentity returns claims for a verified member.
func FullIdentity(phone, name, membershipNumber, licenseNumber string) TokenClaims {
	return TokenClaims{
		Kind:             KindMember,
		PhoneNumber:      phone,
		Name:             name,
		MembershipNumber: membershipNumber,
		LicenseNumber:    licenseNumber,
	}
}

// Claims is the decoded token payload: registered claims plus the identity.
type Claims struct {
	jwt.RegisteredClaims
	Kind             Kind   `json:"kind"`
	PhoneNumber      string `json:"phone_number"`
	Name             string `json:"name,omitempty"`
	MembershipNumber string `json:"membership_number,omitempty"`
	LicenseNumber    string `json:"license_number,omitempty"`
}

// IsFullIdentity reports whether the token carries member attributes.
func (c Claims) IsFullIdentity() bool {
	return c.Kind == KindMember
}

// GetAuth returns the JWT claims stored in the context, if any.
func GetAuth(ctx context.Context) *Claims {
	clm, ok := ctx.Value(jwtContextKey{}).(Claims)
	if !ok {
		return nil
	}

	return &clm
}

// SetAuth stores JWT claims in the context.
func SetAuth(ctx context.Context, clm Claims) context.Context {
	return context.WithValue(ctx, jwtContextKey{}, clm)
}
