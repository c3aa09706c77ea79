package app

import (
	"context"
	"net/http"

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

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	hmac      hash.Hash
	uuid      uid.StringID
	otp       otp.Generator
	jwt       jwt.JWT

	// resources
	cache     kvstore.Store
	messaging messaging.Publisher

	// server
	router      *router.Router
	rateLimiter *router.RateLimiter
	httpServer  *http.Server

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initJWT()
	app.initCache()
	app.initMessaging()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
