package entity

import "errors"

var (
	// ErrVerifierRejected means the verifier answered but refused the phone number.
	ErrVerifierRejected = errors.New("member: verifier rejected the request")

	// ErrVerifierUnavailable means the verifier could not be reached or answered garbage.
	ErrVerifierUnavailable = errors.New("member: verifier unavailable")

	// ErrMemberNotFound means the directory has no member with that number.
	ErrMemberNotFound = errors.New("member: member not found")
)

// RejectReason is the machine-readable cause sent in "error.reason".
type RejectReason string

const (
	ReasonIssuanceFailed    RejectReason = "issuance_failed"
	ReasonNoLicense         RejectReason = "license_missing"
	ReasonPaymentExpired    RejectReason = "payment_expired"
	ReasonOTPMismatch       RejectReason = "otp_mismatch"
	ReasonOTPExpired        RejectReason = "otp_expired"
	ReasonAttemptsExhausted RejectReason = "otp_attempts_exhausted"
)

func (r RejectReason) String() string {
	return string(r)
}

// VerifierRejection carries the verifier's own reason for refusing a request.
// It matches ErrVerifierRejected under errors.Is.
type VerifierRejection struct {
	Reason string
}

func (e *VerifierRejection) Error() string {
	if e.Reason == "" {
		return ErrVerifierRejected.Error()
	}
	return ErrVerifierRejected.Error() + ": " + e.Reason
}

func (e *VerifierRejection) Is(target error) bool {
	return target == ErrVerifierRejected
}
