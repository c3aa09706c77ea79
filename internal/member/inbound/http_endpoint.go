package inbound

import (
	"github.com/shandysiswandi/memberauth/internal/member/entity"
	"github.com/shandysiswandi/memberauth/internal/member/usecase"
	"github.com/shandysiswandi/memberauth/internal/pkg/router"
)

// HTTPEndpoint exposes HTTP handlers for member OTP login.
type HTTPEndpoint struct {
	uc uc
}

// OTPSend asks the association API to deliver a login code over WhatsApp.
// @Summary Send login OTP
// @Description Generates a 6 digit code, has it delivered to the member's WhatsApp and checks license and dues eligibility.
// @Tags Member, Authentication
// @Accept json
// @Produce json
// @Param request body OTPSendRequest true "Send OTP payload"
// @Success 200 {object} router.successResponse{data=OTPSendResponse} "Code issued"
// @Failure 400 {object} router.errorResponse "Validation error or delivery failure" example:{"message":"Failed to send OTP","error":{"reason":"issuance_failed","detail":"verifier unavailable"}}
// @Failure 403 {object} router.errorResponse "Member not eligible" example:{"message":"Access denied: membership payment expired","error":{"reason":"payment_expired","last_payment_year":"2019","years_since_payment":"6"}}
// @Failure 429 {object} router.errorResponse "Too many requests"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/member/auth/send-otp [post]
func (h *HTTPEndpoint) OTPSend(r *router.Request) (any, error) {
	var req OTPSendRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.OTPSend(r.Context(), usecase.OTPSendInput{PhoneNumber: req.PhoneNumber})
	if err != nil {
		return nil, err
	}

	return OTPSendResponse{
		PhoneNumber: resp.Subject.PhoneNumber,
		ExpiresIn:   resp.ExpiresIn,
		Member:      toMemberResponse(resp.Subject),
	}, nil
}

// OTPVerify exchanges a valid code for an access token.
// @Summary Verify login OTP
// @Description Checks the submitted code. At most 3 attempts are allowed per issued code.
// @Tags Member, Authentication
// @Accept json
// @Produce json
// @Param request body OTPVerifyRequest true "Verify OTP payload"
// @Success 200 {object} router.successResponse{data=OTPVerifyResponse} "Access token"
// @Failure 400 {object} router.errorResponse "Validation error"
// @Failure 401 {object} router.errorResponse "Wrong, expired or exhausted code" example:{"message":"Invalid OTP","error":{"reason":"otp_mismatch","attempts_remaining":"2"}}
// @Failure 429 {object} router.errorResponse "Too many requests"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/member/auth/verify-otp [post]
func (h *HTTPEndpoint) OTPVerify(r *router.Request) (any, error) {
	var req OTPVerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.OTPVerify(r.Context(), usecase.OTPVerifyInput{
		PhoneNumber: req.PhoneNumber,
		OTPCode:     req.OTPCode,
	})
	if err != nil {
		return nil, err
	}

	out := OTPVerifyResponse{
		AccessToken: resp.Token,
		TokenType:   resp.TokenType,
		ExpiresIn:   resp.ExpiresIn,
	}
	if resp.Subject != nil {
		m := toMemberResponse(*resp.Subject)
		out.Member = &m
	}

	return out, nil
}

// OTPStatus reports whether a phone number has a pending code.
// @Summary Pending OTP status
// @Tags Member, Administration
// @Produce json
// @Description Served to allow-listed hosts only.
// @Param phone_number path string true "Phone number"
// @Success 200 {object} router.successResponse{data=OTPStatusResponse} "Pending status"
// @Failure 400 {object} router.errorResponse "Validation error"
// @Failure 403 {object} router.errorResponse "Access restricted to trusted hosts"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/member/auth/otp/{phone_number} [get]
func (h *HTTPEndpoint) OTPStatus(r *router.Request) (any, error) {
	phone := r.GetParam("phone_number")

	resp, err := h.uc.OTPStatus(r.Context(), usecase.OTPStatusInput{PhoneNumber: phone})
	if err != nil {
		return nil, err
	}

	return OTPStatusResponse{PhoneNumber: phone, Pending: resp.Pending}, nil
}

// OTPRevoke drops a pending code.
// @Summary Revoke pending OTP
// @Tags Member, Administration
// @Produce json
// @Description Served to allow-listed hosts only.
// @Param phone_number path string true "Phone number"
// @Success 200 {object} router.successResponse{data=OTPRevokeResponse} "Revoked"
// @Failure 400 {object} router.errorResponse "Validation error"
// @Failure 403 {object} router.errorResponse "Access restricted to trusted hosts"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/member/auth/otp/{phone_number} [delete]
func (h *HTTPEndpoint) OTPRevoke(r *router.Request) (any, error) {
	phone := r.GetParam("phone_number")

	if err := h.uc.OTPRevoke(r.Context(), usecase.OTPRevokeInput{PhoneNumber: phone}); err != nil {
		return nil, err
	}

	return OTPRevokeResponse{PhoneNumber: phone}, nil
}

// Profile returns the identity carried by the caller's token.
// @Summary Current member
// @Tags Member
// @Produce json
// @Security BearerAuth
// @Success 200 {object} router.successResponse{data=ProfileResponse} "Token identity"
// @Failure 401 {object} router.errorResponse "Authentication required"
// @Router /api/v1/member/me [get]
func (h *HTTPEndpoint) Profile(r *router.Request) (any, error) {
	resp, err := h.uc.Profile(r.Context(), usecase.ProfileInput{})
	if err != nil {
		return nil, err
	}

	return ProfileResponse{
		Kind:             resp.Kind,
		PhoneNumber:      resp.PhoneNumber,
		Name:             resp.Name,
		MembershipNumber: resp.MembershipNumber,
		LicenseNumber:    resp.LicenseNumber,
		ExpiresAt:        resp.ExpiresAt,
	}, nil
}

// MemberLookup fetches a member from the association directory.
// @Summary Member directory lookup
// @Tags Member
// @Produce json
// @Security BearerAuth
// @Param membership_number path string true "Membership number"
// @Success 200 {object} router.successResponse{data=DirectoryResponse} "Directory record"
// @Failure 400 {object} router.errorResponse "Validation error"
// @Failure 401 {object} router.errorResponse "Authentication required"
// @Failure 404 {object} router.errorResponse "Member not found"
// @Failure 502 {object} router.errorResponse "Directory unavailable"
// @Router /api/v1/member/directory/{membership_number} [get]
func (h *HTTPEndpoint) MemberLookup(r *router.Request) (any, error) {
	number := r.GetParam("membership_number")

	member, err := h.uc.MemberLookup(r.Context(), usecase.MemberLookupInput{MembershipNumber: number})
	if err != nil {
		return nil, err
	}

	return DirectoryResponse{MembershipNumber: number, Member: member}, nil
}

func toMemberResponse(s entity.CachedSubject) MemberResponse {
	return MemberResponse{
		Name:             s.Name,
		MembershipNumber: s.MembershipNumber,
		LicenseNumber:    s.LicenseNumber,
		PhoneNumber:      s.PhoneNumber,
		LastPaymentYear:  s.LastPaymentYear,
	}
}
