package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"github.com/shandysiswandi/memberauth/internal/member/entity"
	"github.com/shandysiswandi/memberauth/internal/pkg/clock"
	"github.com/shandysiswandi/memberauth/internal/pkg/config"
	"github.com/shandysiswandi/memberauth/internal/pkg/goroutine"
	"github.com/shandysiswandi/memberauth/internal/pkg/hash"
	"github.com/shandysiswandi/memberauth/internal/pkg/instrument"
	"github.com/shandysiswandi/memberauth/internal/pkg/jwt"
	"github.com/shandysiswandi/memberauth/internal/pkg/otp"
	"github.com/shandysiswandi/memberauth/internal/pkg/validator"
)

const (
	defaultOTPTTL            = 600 * time.Second
	defaultMaxAttempts int64 = 3
	defaultMaxPaymentGap     = 4
)

type OTPIssuedEvent struct {
	PhoneNumber      string
	MembershipNumber string
	IssuedAt         time.Time
	ExpiresAt        time.Time
}

type OTPVerifiedEvent struct {
	PhoneNumber      string
	MembershipNumber string
	TokenKind        string
	VerifiedAt       time.Time
}

type repoMessaging interface {
	PublishOTPIssued(ctx context.Context, msg OTPIssuedEvent) error
	PublishOTPVerified(ctx context.Context, msg OTPVerifiedEvent) error
}

type repoCache interface {
	SaveChallenge(ctx context.Context, ch entity.Challenge, ttl time.Duration) error
	IncrAttempts(ctx context.Context, phone string, window time.Duration) (int64, error)
	GetOTPDigest(ctx context.Context, phone string) (string, error)
	GetSubject(ctx context.Context, phone string) (*entity.CachedSubject, error)
	HasPendingOTP(ctx context.Context, phone string) (bool, error)
	DeleteOTP(ctx context.Context, phone string) error
	ClearChallenge(ctx context.Context, phone string) error
}

type repoVerifier interface {
	RequestChallenge(ctx context.Context, phone, code string) (*entity.Subject, error)
	LookupMember(ctx context.Context, membershipNumber string) (json.RawMessage, error)
}

type Usecase struct {
	repoCache     repoCache
	repoVerifier  repoVerifier
	repoMessaging repoMessaging
	validator     validator.Validator
	cfg           config.Config
	hmac          hash.Hash
	otp           otp.Generator
	clock         clock.Clocker
	jwt           jwt.JWT
	ins           instrument.Instrumentation
	goroutine     *goroutine.Manager

	issued   metric.Int64Counter
	verified metric.Int64Counter
	rejected metric.Int64Counter
	dropped  metric.Int64Counter
}

type Dependency struct {
	RepoCache     repoCache
	RepoVerifier  repoVerifier
	RepoMessaging repoMessaging
	Validator     validator.Validator
	Config        config.Config
	HMAC          hash.Hash
	OTP           otp.Generator
	Clock         clock.Clocker
	JWT           jwt.JWT
	Instrument    instrument.Instrumentation
	Goroutine     *goroutine.Manager
}

func New(dep Dependency) *Usecase {
	meter := dep.Instrument.Meter("member.usecase")

	return &Usecase{
		repoCache:     dep.RepoCache,
		repoVerifier:  dep.RepoVerifier,
		repoMessaging: dep.RepoMessaging,
		validator:     dep.Validator,
		cfg:           dep.Config,
		hmac:          dep.HMAC,
		otp:           dep.OTP,
		clock:         dep.Clock,
		jwt:           dep.JWT,
		ins:           dep.Instrument,
		goroutine:     dep.Goroutine,
		issued:        newCounter(meter, "member.otp.issued", "One-time codes issued"),
		verified:      newCounter(meter, "member.otp.verified", "One-time codes verified"),
		rejected:      newCounter(meter, "member.otp.rejected", "OTP requests rejected, by reason"),
		dropped:       newCounter(meter, "member.otp.events_dropped", "Audit events never delivered, by event and cause"),
	}
}

func newCounter(meter metric.Meter, name, desc string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(desc))
	if err != nil {
		slog.Warn("failed to create counter", "name", name, "error", err)
		return noop.Int64Counter{}
	}
	return c
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("member.usecase").Start(ctx, name)
}

func (s *Usecase) reject(ctx context.Context, reason entity.RejectReason) {
	s.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason.String())))
}

// publish hands an audit event to the background manager. Events that are
// skipped or fail to send are counted, the request itself never fails.
func (s *Usecase) publish(ctx context.Context, event string, send func(ctx context.Context) error) {
	drop := func(ctx context.Context, cause string) {
		s.dropped.Add(ctx, 1, metric.WithAttributes(
			attribute.String("event", event),
			attribute.String("cause", cause),
		))
	}

	ok := s.goroutine.Go(ctx, "member.publish_"+event, func(ctx context.Context) error {
		if err := send(ctx); err != nil {
			drop(ctx, "failed")
			return err
		}
		return nil
	})
	if !ok {
		drop(ctx, "skipped")
	}
}

func (s *Usecase) otpTTL() time.Duration {
	if ttl := s.cfg.GetSecond("modules.member.otp_ttl_seconds"); ttl > 0 {
		return ttl
	}
	return defaultOTPTTL
}

func (s *Usecase) maxAttempts() int64 {
	if n := s.cfg.GetInt64("modules.member.max_attempts"); n > 0 {
		return n
	}
	return defaultMaxAttempts
}

func (s *Usecase) maxPaymentGap() int {
	if n := s.cfg.GetInt("modules.member.max_payment_gap_years"); n > 0 {
		return n
	}
	return defaultMaxPaymentGap
}
