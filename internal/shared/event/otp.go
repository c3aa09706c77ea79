package event

import "time"

const OTPIssuedSubject string = "member.otp.issued"
const OTPVerifiedSubject string = "member.otp.verified"

type OTPIssuedMessage struct {
	PhoneNumber      string    `json:"phone_number"`
	MembershipNumber string    `json:"membership_number"`
	IssuedAt         time.Time `json:"issued_at"`
	ExpiresAt        time.Time `json:"expires_at"`
}

type OTPVerifiedMessage struct {
	PhoneNumber      string    `json:"phone_number"`
	MembershipNumber string    `json:"membership_number,omitempty"`
	TokenKind        string    `json:"token_kind"`
	VerifiedAt       time.Time `json:"verified_at"`
}
