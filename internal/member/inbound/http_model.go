package inbound

import "encoding/json"

type OTPSendRequest struct {
	PhoneNumber string `json:"phone_number"`
}

type OTPSendResponse struct {
	PhoneNumber string         `json:"phone_number"`
	ExpiresIn   int64          `json:"expires_in"`
	Member      MemberResponse `json:"member"`
}

func (OTPSendResponse) Message() string {
	return "OTP sent to your WhatsApp number"
}

type OTPVerifyRequest struct {
	PhoneNumber string `json:"phone_number"`
	OTPCode     string `json:"otp_code"`
}

type OTPVerifyResponse struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	ExpiresIn   int64           `json:"expires_in"`
	Member      *MemberResponse `json:"member"`
}

func (OTPVerifyResponse) Message() string {
	return "OTP verified"
}

type MemberResponse struct {
	Name             string `json:"name"`
	MembershipNumber string `json:"membership_number"`
	LicenseNumber    string `json:"license_number"`
	PhoneNumber      string `json:"phone_number"`
	LastPaymentYear  int    `json:"last_payment_year,omitempty"`
}

type OTPStatusResponse struct {
	PhoneNumber string `json:"phone_number"`
	Pending     bool   `json:"pending"`
}

type OTPRevokeResponse struct {
	PhoneNumber string `json:"phone_number"`
}

func (OTPRevokeResponse) Message() string {
	return "Pending OTP revoked"
}

type ProfileResponse struct {
	Kind             string `json:"kind"`
	PhoneNumber      string `json:"phone_number"`
	Name             string `json:"name,omitempty"`
	MembershipNumber string `json:"membership_number,omitempty"`
	LicenseNumber    string `json:"license_number,omitempty"`
	ExpiresAt        int64  `json:"expires_at"`
}

type DirectoryResponse struct {
	MembershipNumber string          `json:"membership_number"`
	Member           json.RawMessage `json:"member" swaggertype:"object"`
}
