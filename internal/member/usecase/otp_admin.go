package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/memberauth/internal/pkg/goerror"
)

type OTPStatusInput struct {
	PhoneNumber string `json:"phone_number" validate:"required,phone"`
}

type OTPStatusOutput struct {
	Pending bool
}

// OTPStatus reports whether a phone number has an unexpired code waiting.
func (s *Usecase) OTPStatus(ctx context.Context, in OTPStatusInput) (*OTPStatusOutput, error) {
	ctx, span := s.startSpan(ctx, "OTPStatus")
	defer span.End()

	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	pending, err := s.repoCache.HasPendingOTP(ctx, in.PhoneNumber)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo check pending otp", "phone_number", in.PhoneNumber, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &OTPStatusOutput{Pending: pending}, nil
}

type OTPRevokeInput struct {
	PhoneNumber string `json:"phone_number" validate:"required,phone"`
}

// OTPRevoke drops the pending code for a phone number. Revoking a number
// without a pending code is not an error.
func (s *Usecase) OTPRevoke(ctx context.Context, in OTPRevokeInput) error {
	ctx, span := s.startSpan(ctx, "OTPRevoke")
	defer span.End()

	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	if err := s.repoCache.DeleteOTP(ctx, in.PhoneNumber); err != nil {
		slog.ErrorContext(ctx, "failed to repo delete otp", "phone_number", in.PhoneNumber, "error", err)
		return goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "pending otp revoked", "phone_number", in.PhoneNumber)
	return nil
}
