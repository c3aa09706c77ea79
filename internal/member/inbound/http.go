package inbound

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/shandysiswandi/memberauth/internal/member/usecase"
	"github.com/shandysiswandi/memberauth/internal/pkg/router"
)

type uc interface {
	OTPSend(ctx context.Context, in usecase.OTPSendInput) (*usecase.OTPSendOutput, error)
	OTPVerify(ctx context.Context, in usecase.OTPVerifyInput) (*usecase.OTPVerifyOutput, error)

	OTPStatus(ctx context.Context, in usecase.OTPStatusInput) (*usecase.OTPStatusOutput, error)
	OTPRevoke(ctx context.Context, in usecase.OTPRevokeInput) error

	Profile(ctx context.Context, in usecase.ProfileInput) (*usecase.ProfileOutput, error)
	MemberLookup(ctx context.Context, in usecase.MemberLookupInput) (json.RawMessage, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc, limiter *router.RateLimiter) {
	end := &HTTPEndpoint{uc: uc}

	// OTP login (public, rate limited per client IP)
	r.Public(http.MethodPost, "/api/v1/member/auth/send-otp")
	r.Public(http.MethodPost, "/api/v1/member/auth/verify-otp")
	r.POST("/api/v1/member/auth/send-otp", end.OTPSend, limiter.Middleware())
	r.POST("/api/v1/member/auth/verify-otp", end.OTPVerify, limiter.Middleware())

	// Pending OTP administration (allow-listed IP only)
	r.Internal(http.MethodGet, "/api/v1/member/auth/otp/:phone_number")
	r.Internal(http.MethodDelete, "/api/v1/member/auth/otp/:phone_number")
	r.GET("/api/v1/member/auth/otp/:phone_number", end.OTPStatus)
	r.DELETE("/api/v1/member/auth/otp/:phone_number", end.OTPRevoke)

	// Member (bearer or allow-listed IP)
	r.GET("/api/v1/member/me", end.Profile)
	r.GET("/api/v1/member/directory/:membership_number", end.MemberLookup)
}
