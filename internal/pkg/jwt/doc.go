// Package jwt issues and verifies the session tokens handed to members after
// a successful OTP verification.
//
// Tokens are HS512 signed and carry either a phone-only identity or a full
// member identity, see TokenClaims. Context helpers store the verified claims
// for downstream handlers.
package jwt
