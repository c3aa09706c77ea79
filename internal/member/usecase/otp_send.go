package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/shandysiswandi/memberauth/internal/member/entity"
	"github.com/shandysiswandi/memberauth/internal/pkg/goerror"
)

type OTPSendInput struct {
	PhoneNumber string `json:"phone_number" validate:"required,phone"`
}

type OTPSendOutput struct {
	ExpiresIn int64
	Subject   entity.CachedSubject
}

func (s *Usecase) OTPSend(ctx context.Context, in OTPSendInput) (*OTPSendOutput, error) {
	ctx, span := s.startSpan(ctx, "OTPSend")
	defer span.End()

	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	code, err := s.otp.Generate()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate otp code", "error", err)
		return nil, goerror.NewServer(err)
	}

	subject, err := s.repoVerifier.RequestChallenge(ctx, in.PhoneNumber, code)
	if err != nil {
		slog.WarnContext(ctx, "failed to request otp from verifier", "phone_number", in.PhoneNumber, "error", err)
		s.reject(ctx, entity.ReasonIssuanceFailed)
		return nil, goerror.NewUpstream(err, "Failed to send OTP", goerror.CodeInvalidInput,
			"reason", entity.ReasonIssuanceFailed.String(),
			"detail", upstreamDetail(err),
		)
	}

	if !subject.HasLicense() {
		slog.WarnContext(ctx, "member has no license number", "phone_number", in.PhoneNumber,
			"membership_number", subject.MembershipNumber)
		s.reject(ctx, entity.ReasonNoLicense)
		return nil, goerror.NewBusiness("Access denied: member has no license number", goerror.CodeForbidden,
			"reason", entity.ReasonNoLicense.String(),
		)
	}

	now := s.clock.Now()
	paidYear, ok := subject.LastPaymentYear()
	gap := now.Year() - paidYear
	if !ok || gap > s.maxPaymentGap() {
		slog.WarnContext(ctx, "member dues payment expired", "phone_number", in.PhoneNumber,
			"membership_number", subject.MembershipNumber, "last_payment_year", paidYear)
		s.reject(ctx, entity.ReasonPaymentExpired)

		kv := []string{"reason", entity.ReasonPaymentExpired.String()}
		if ok {
			kv = append(kv, "last_payment_year", strconv.Itoa(paidYear), "years_since_payment", strconv.Itoa(gap))
		}
		return nil, goerror.NewBusiness("Access denied: membership payment expired", goerror.CodeForbidden, kv...)
	}

	digest, err := s.hmac.Hash(code)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash otp code", "error", err)
		return nil, goerror.NewServer(err)
	}

	cached := entity.CachedSubject{
		Name:             subject.Name,
		MembershipNumber: subject.MembershipNumber,
		LicenseNumber:    subject.LicenseNumber,
		PhoneNumber:      in.PhoneNumber,
		LastPaymentYear:  paidYear,
	}

	ttl := s.otpTTL()
	if err := s.repoCache.SaveChallenge(ctx, entity.Challenge{
		PhoneNumber: in.PhoneNumber,
		CodeDigest:  string(digest),
		Subject:     cached,
	}, ttl); err != nil {
		slog.ErrorContext(ctx, "failed to repo save otp challenge", "phone_number", in.PhoneNumber, "error", err)
		return nil, goerror.NewServer(err)
	}

	s.issued.Add(ctx, 1)

	ev := OTPIssuedEvent{
		PhoneNumber:      in.PhoneNumber,
		MembershipNumber: subject.MembershipNumber,
		IssuedAt:         now,
		ExpiresAt:        now.Add(ttl),
	}
	s.publish(ctx, "otp_issued", func(ctx context.Context) error {
		return s.repoMessaging.PublishOTPIssued(ctx, ev)
	})

	return &OTPSendOutput{
		ExpiresIn: int64(ttl.Seconds()),
		Subject:   cached,
	}, nil
}

// upstreamDetail keeps the verifier's own wording when it gave one.
func upstreamDetail(err error) string {
	var rej *entity.VerifierRejection
	if errors.As(err, &rej) && rej.Reason != "" {
		return rej.Reason
	}
	if errors.Is(err, entity.ErrVerifierRejected) {
		return "verifier rejected the request"
	}
	return "verifier unavailable"
}
