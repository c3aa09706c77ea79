package app

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/rs/cors"

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
	"github.com/shandysiswandi/memberauth/internal/pkg/uid"
	"github.com/shandysiswandi/memberauth/internal/pkg/validator"
)

// otpDigits is the length of issued login codes.
const otpDigits = 6

func (a *App) initConfig() {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "/config/config.yaml"
		if os.Getenv("LOCAL") == "true" {
			path = "./config/config.yaml"
		}
	}

	cfg, err := config.NewViper(path, config.WithDefaults(defaults), config.WithEnv(""))
	if err != nil {
		slog.Error("failed to init config", "error", err)
		os.Exit(1)
	}

	//nolint:errcheck,gosec // ignore error
	os.Setenv("TZ", cfg.GetString("app.tz"))

	a.config = cfg
}

func (a *App) initInstrument() {
	ins, err := instrument.New(context.Background(), &instrument.Config{
		Enabled:          a.config.GetBool("instrument.enabled"),
		ServiceName:      a.config.GetString("instrument.service_name"),
		ServiceVersion:   a.config.GetString("instrument.service_version"),
		Environment:      a.config.GetString("instrument.env"),
		OTLPEndpoint:     a.config.GetString("instrument.otlp_endpoint"),
		OTLPSecure:       a.config.GetBool("instrument.otlp_secure"),
		TraceSampleRatio: a.config.GetFloat64("instrument.trace_sample_ratio"),
		MetricsInterval:  a.config.GetSecond("instrument.metric_interval_seconds"),
		LogLevel:         a.config.GetString("instrument.log_level"),
		MaskFields:       a.config.GetArray("instrument.log_mask_fields"),
	})
	if err != nil {
		slog.Error("failed to init instrumentation", "error", err)
		os.Exit(1)
	}
	a.ins = ins
}

func (a *App) initLibraries() {
	a.clock = clock.New()
	a.uuid = uid.NewUUID()
	a.goroutine = goroutine.NewManager(a.config.GetInt("app.server.max_goroutine"))

	hmac, err := hash.NewHMACSHA256(a.config.GetString("hash.hmac.secret"))
	if err != nil {
		slog.Error("failed to init hmac sha256", "error", err)
		os.Exit(1)
	}
	a.hmac = hmac

	validator, err := validator.NewV10Validator()
	if err != nil {
		slog.Error("failed to init validation v10 validator", "error", err)
		os.Exit(1)
	}
	a.validator = validator

	gen, err := otp.NewRandom(otpDigits)
	if err != nil {
		slog.Error("failed to init otp generator", "error", err)
		os.Exit(1)
	}
	a.otp = gen
}

func (a *App) initJWT() {
	defaultJWT, err := jwt.NewHS512(jwt.Config{
		Secret:    []byte(a.config.GetString("jwt.secret")),
		Issuer:    a.config.GetString("jwt.issuer"),
		Audiences: a.config.GetArray("jwt.audiences"),
		TTL:       a.config.GetDay("jwt.ttl_days"),
		Clock:     a.clock,
		UUID:      a.uuid,
	})
	if err != nil {
		slog.Error("failed to init jwt token", "error", err)
		os.Exit(1)
	}
	a.jwt = defaultJWT
}

func (a *App) initCache() {
	driver := a.config.GetString("cache.driver")
	store, err := kvstore.NewFromDriver(a.ctx, driver, kvstore.FactoryOptions{
		Redis: kvstore.RedisConfig{
			URL:            a.config.GetString("cache.redis.url"),
			ConnectRetries: uint64(max(a.config.GetInt64("cache.connect_retries"), 0)),
			PingTimeout:    a.config.GetSecond("cache.redis.ping_timeout_seconds"),
		},
		Memory: []kvstore.MemoryOption{
			kvstore.WithJanitor(a.config.GetSecond("cache.memory.janitor_seconds")),
		},
	})
	if err != nil {
		slog.Error("failed to init cache", "error", err, "driver", driver)
		os.Exit(1)
	}

	a.cache = store
}

func (a *App) initMessaging() {
	driver := a.config.GetString("messaging.driver")
	client, err := messaging.NewFromDriver(driver, messaging.FactoryOptions{
		NATS: messaging.NATSConfig{
			URL:           a.config.GetString("messaging.nats.url"),
			Name:          a.config.GetString("messaging.nats.name"),
			MaxReconnects: a.config.GetInt("messaging.nats.max_reconnects"),
			ReconnectWait: a.config.GetSecond("messaging.nats.reconnect_wait_seconds"),
		},
	})
	if err != nil {
		slog.Error("failed to init messaging", "error", err, "driver", driver)
		os.Exit(1)
	}

	a.messaging = client
}

func (a *App) initHTTPServer() {
	a.router = router.NewRouter(router.Config{
		Config:     a.config,
		UUID:       a.uuid,
		JWT:        a.jwt,
		Instrument: a.ins,
	})

	a.router.Health(map[string]router.HealthCheck{
		"cache": a.cache.Ping,
	})

	a.rateLimiter = router.NewRateLimiter(
		a.config.GetFloat64("app.server.rate_limit.rps"),
		a.config.GetInt("app.server.rate_limit.burst"),
	)

	routerWithCORS := cors.New(cors.Options{
		AllowedOrigins: a.config.GetArray("app.server.cors"),
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(a.router)

	a.httpServer = &http.Server{
		Addr:              a.config.GetString("app.server.http.address"),
		Handler:           routerWithCORS,
		ReadTimeout:       a.config.GetSecond("app.server.http.read_timeout_seconds"),
		ReadHeaderTimeout: a.config.GetSecond("app.server.http.read_header_timeout_seconds"),
		WriteTimeout:      a.config.GetSecond("app.server.http.write_timeout_seconds"),
		IdleTimeout:       a.config.GetSecond("app.server.http.idle_timeout_seconds"),
	}
}

func (a *App) initClosers() {
	a.closers = []struct {
		name string
		fn   func(context.Context) error
	}{
		{
			name: "Instrument",
			fn: func(ctx context.Context) error {
				return a.ins.Shutdown(ctx)
			},
		},
		{
			name: "RateLimiter",
			fn: func(context.Context) error {
				return a.rateLimiter.Close()
			},
		},
		{
			name: "Messaging",
			fn: func(context.Context) error {
				return a.messaging.Close()
			},
		},
		{
			name: "Cache",
			fn: func(context.Context) error {
				return a.cache.Close()
			},
		},
		{
			name: "Config",
			fn: func(context.Context) error {
				return a.config.Close()
			},
		},
	}
}
