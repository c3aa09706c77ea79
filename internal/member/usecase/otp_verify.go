package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/shandysiswandi/memberauth/internal/member/entity"
	"github.com/shandysiswandi/memberauth/internal/pkg/goerror"
	"github.com/shandysiswandi/memberauth/internal/pkg/jwt"
)

type OTPVerifyInput struct {
	PhoneNumber string `json:"phone_number" validate:"required,phone"`
	OTPCode     string `json:"otp_code" validate:"required"`
}

type OTPVerifyOutput struct {
	Token     string
	TokenType string
	ExpiresIn int64
	// Subject is nil when the subject snapshot had already expired and
	// the token only proves the phone number.
	Subject *entity.CachedSubject
}

func (s *Usecase) OTPVerify(ctx context.Context, in OTPVerifyInput) (*OTPVerifyOutput, error) {
	ctx, span := s.startSpan(ctx, "OTPVerify")
	defer span.End()

	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	count, err := s.repoCache.IncrAttempts(ctx, in.PhoneNumber, s.otpTTL())
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo count otp attempt", "phone_number", in.PhoneNumber, "error", err)
		return nil, goerror.NewServer(err)
	}

	limit := s.maxAttempts()
	if count > limit {
		if err := s.repoCache.DeleteOTP(ctx, in.PhoneNumber); err != nil {
			slog.ErrorContext(ctx, "failed to repo delete exhausted otp", "phone_number", in.PhoneNumber, "error", err)
			return nil, goerror.NewServer(err)
		}

		slog.WarnContext(ctx, "otp attempts exhausted", "phone_number", in.PhoneNumber, "attempts", count)
		s.reject(ctx, entity.ReasonAttemptsExhausted)
		return nil, goerror.NewBusiness("Too many attempts, request a new OTP", goerror.CodeUnauthorized,
			"reason", entity.ReasonAttemptsExhausted.String(),
		)
	}

	digest, err := s.repoCache.GetOTPDigest(ctx, in.PhoneNumber)
	if errors.Is(err, goerror.ErrNotFound) {
		s.reject(ctx, entity.ReasonOTPExpired)
		return nil, goerror.NewBusiness("OTP expired or not found", goerror.CodeUnauthorized,
			"reason", entity.ReasonOTPExpired.String(),
		)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get otp", "phone_number", in.PhoneNumber, "error", err)
		return nil, goerror.NewServer(err)
	}

	if !s.hmac.Verify(digest, in.OTPCode) {
		s.reject(ctx, entity.ReasonOTPMismatch)
		return nil, goerror.NewBusiness("Invalid OTP", goerror.CodeUnauthorized,
			"reason", entity.ReasonOTPMismatch.String(),
			"attempts_remaining", strconv.FormatInt(limit-count, 10),
		)
	}

	if err := s.repoCache.ClearChallenge(ctx, in.PhoneNumber); err != nil {
		slog.ErrorContext(ctx, "failed to repo clear otp challenge", "phone_number", in.PhoneNumber, "error", err)
		return nil, goerror.NewServer(err)
	}

	subject, err := s.repoCache.GetSubject(ctx, in.PhoneNumber)
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(ctx, "failed to repo get cached subject", "phone_number", in.PhoneNumber, "error", err)
		return nil, goerror.NewServer(err)
	}

	claims := jwt.PhoneOnly(in.PhoneNumber)
	if subject != nil {
		claims = jwt.FullIdentity(in.PhoneNumber, subject.Name, subject.MembershipNumber, subject.LicenseNumber)
	} else {
		slog.WarnContext(ctx, "cached subject missing, issuing phone-only token", "phone_number", in.PhoneNumber)
	}

	token, err := s.jwt.Generate(claims)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate access token", "phone_number", in.PhoneNumber, "error", err)
		return nil, goerror.NewServer(err)
	}

	s.verified.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", string(claims.Kind))))

	ev := OTPVerifiedEvent{
		PhoneNumber:      in.PhoneNumber,
		MembershipNumber: claims.MembershipNumber,
		TokenKind:        string(claims.Kind),
		VerifiedAt:       s.clock.Now(),
	}
	s.publish(ctx, "otp_verified", func(ctx context.Context) error {
		return s.repoMessaging.PublishOTPVerified(ctx, ev)
	})

	return &OTPVerifyOutput{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(s.jwt.TTL().Seconds()),
		Subject:   subject,
	}, nil
}
