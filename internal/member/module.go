package member

import (
	"github.com/shandysiswandi/memberauth/internal/member/entity"
	"github.com/shandysiswandi/memberauth/internal/member/inbound"
	"github.com/shandysiswandi/memberauth/internal/member/outbound/cache"
	"github.com/shandysiswandi/memberauth/internal/member/outbound/mq"
	"github.com/shandysiswandi/memberauth/internal/member/outbound/verifier"
	"github.com/shandysiswandi/memberauth/internal/member/usecase"
	"github.com/shandysiswandi/memberauth/internal/pkg/clock"
	"github.com/shandysiswandi/memberauth/internal/pkg/config"
	"github.com/shandysiswandi/memberauth/internal/pkg/goroutine"
	"github.com/shandysiswandi/memberauth/internal/pkg/hash"
	"github.com/shandysiswandi/memberauth/internal/pkg/instrument"
	"github.com/shandysiswandi/memberauth/internal/pkg/jwt"
	"github.com/shandysiswandi/memberauth/internal/pkg/kvstore"
	"github.com/shandysiswandi/memberauth/internal/pkg/messaging"
	"github.com/shandysiswandi/memberauth/internal/pkg/otp"
	"github.com/shandysiswandi/memberauth/internal/pkg/router"
	"github.com/shandysiswandi/memberauth/internal/pkg/validator"
)

type Dependency struct {
	Cache       kvstore.Store              `validate:"required"`
	Goroutine   *goroutine.Manager         `validate:"required"`
	Router      *router.Router             `validate:"required"`
	RateLimiter *router.RateLimiter        `validate:"required"`
	Messaging   messaging.Publisher        `validate:"required"`
	Config      config.Config              `validate:"required"`
	Instrument  instrument.Instrumentation `validate:"required"`
	HMAC        hash.Hash                  `validate:"required"`
	OTP         otp.Generator              `validate:"required"`
	Clock       clock.Clocker              `validate:"required"`
	Validator   validator.Validator        `validate:"required"`
	JWT         jwt.JWT                    `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	repoVerifier, err := verifier.New(verifierConfig(dep.Config), dep.Instrument)
	if err != nil {
		return err
	}

	repoCache := cache.NewCache(dep.Cache, dep.Instrument)
	repoMsg := mq.NewMessaging(dep.Messaging, dep.Instrument)

	uc := usecase.New(usecase.Dependency{
		RepoCache:     repoCache,
		RepoVerifier:  repoVerifier,
		RepoMessaging: repoMsg,
		Validator:     dep.Validator,
		Config:        dep.Config,
		HMAC:          dep.HMAC,
		OTP:           dep.OTP,
		Clock:         dep.Clock,
		JWT:           dep.JWT,
		Instrument:    dep.Instrument,
		Goroutine:     dep.Goroutine,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc, dep.RateLimiter)

	return nil
}

func verifierConfig(cfg config.Config) verifier.Config {
	return verifier.Config{
		Driver:   cfg.GetString("modules.member.verifier.driver"),
		URL:      cfg.GetString("modules.member.verifier.url"),
		UsersURL: cfg.GetString("modules.member.verifier.users_url"),
		Timeout:  cfg.GetSecond("modules.member.verifier.timeout_seconds"),
		Mock: entity.Subject{
			Name:             cfg.GetString("modules.member.verifier.mock.name"),
			MembershipNumber: cfg.GetString("modules.member.verifier.mock.membership_number"),
			LicenseNumber:    cfg.GetString("modules.member.verifier.mock.license_number"),
			LastPaymentAt:    cfg.GetString("modules.member.verifier.mock.last_payment_at"),
			LastPayment:      cfg.GetString("modules.member.verifier.mock.last_payment"),
		},
	}
}
