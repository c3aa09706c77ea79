package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/memberauth/internal/member"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.member.enabled") {
		if err := member.New(member.Dependency{
			Cache:       a.cache,
			Goroutine:   a.goroutine,
			Router:      a.router,
			RateLimiter: a.rateLimiter,
			Messaging:   a.messaging,
			Config:      a.config,
			Instrument:  a.ins,
			HMAC:        a.hmac,
			OTP:         a.otp,
			Clock:       a.clock,
			Validator:   a.validator,
			JWT:         a.jwt,
		}); err != nil {
			slog.Error("failed to init module member", "error", err)
			os.Exit(1)
		}
	}
}
