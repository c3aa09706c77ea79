package entity

import (
	"strconv"
	"strings"
)

// Subject is a member as reported by the identity verifier when a code is sent.
type Subject struct {
	Name             string
	MembershipNumber string
	LicenseNumber    string
	PhoneNumber      string
	LastPaymentAt    string
	LastPayment      string
}

// HasLicense reports whether the member carries a non-blank license (STRA) number.
func (s Subject) HasLicense() bool {
	return strings.TrimSpace(s.LicenseNumber) != ""
}

// LastPaymentYear returns the year of the member's last dues payment.
// LastPaymentAt is preferred; LastPayment is used when it is blank. Only the
// leading four digits are read, so "2024-03-01" and "2024" both yield 2024.
func (s Subject) LastPaymentYear() (int, bool) {
	raw := strings.TrimSpace(s.LastPaymentAt)
	if raw == "" {
		raw = strings.TrimSpace(s.LastPayment)
	}
	if len(raw) < 4 {
		return 0, false
	}

	year, err := strconv.Atoi(raw[:4])
	if err != nil || year <= 0 {
		return 0, false
	}
	return year, true
}

// CachedSubject is the subject snapshot kept next to a pending code.
type CachedSubject struct {
	Name             string `json:"name"`
	MembershipNumber string `json:"membership_number"`
	LicenseNumber    string `json:"license_number"`
	PhoneNumber      string `json:"phone_number"`
	LastPaymentYear  int    `json:"last_payment_year"`
}

// Challenge is everything written when a code is issued.
type Challenge struct {
	PhoneNumber string
	CodeDigest  string
	Subject     CachedSubject
}
