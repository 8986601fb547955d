package app

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"

	httpapi "github.com/transcendia/gamehub/internal/user/http"
	"github.com/transcendia/gamehub/internal/user/presence"
	"github.com/transcendia/gamehub/internal/user/service"
	"github.com/transcendia/gamehub/internal/user/store"
	"github.com/transcendia/gamehub/internal/user/store/drivers/sqlite"
	"github.com/transcendia/gamehub/pkg/idx"
	"github.com/transcendia/gamehub/pkg/jwtx"
	"github.com/transcendia/gamehub/pkg/slogx"
)

const BuildVersion = "v0.1.0"

// Application encapsulates the user service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db       store.Store
	redis    *redis.Client
	presence presence.Registry
	signer   *jwtx.Signer
	verifier *jwtx.Verifier

	tokenService        *service.TokenService
	twoFAService        *service.TwoFAService
	authService         *service.AuthService
	oauthService        *service.OAuthService
	friendService       *service.FriendService
	statsService        *service.StatsService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "user-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initKeys(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initPresence()
	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("user service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully stops the HTTP server, background workers and
// connections.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down user service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis client", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("user service stopped")
	return nil
}

func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initKeys generates the ephemeral signing key pair. Sibling services
// pick the public key up over JWKS, so restarts just rotate the key.
func (app *Application) initKeys() error {
	pub, priv, err := jwtx.GenerateKey()
	if err != nil {
		return fmt.Errorf("failed to generate signing key: %w", err)
	}

	kid := idx.New().String()
	app.signer = jwtx.NewSigner(kid, priv)
	app.verifier = jwtx.NewVerifier(app.cfg.Issuer, map[string]ed25519.PublicKey{kid: pub})

	app.logger.Info("signing key generated", "kid", kid)
	return nil
}

func (app *Application) initPresence() {
	app.redis = redis.NewClient(&redis.Options{
		Addr: app.cfg.RedisAddr,
		DB:   app.cfg.RedisDB,
	})
	app.presence = presence.NewRedisRegistry(app.redis)
}

func (app *Application) initServices() {
	app.tokenService = &service.TokenService{
		Signer:     app.signer,
		Store:      app.db,
		Issuer:     app.cfg.Issuer,
		AccessTTL:  jwtx.DefaultAccessTokenTTL,
		RefreshTTL: jwtx.DefaultRefreshTokenTTL,
	}

	app.twoFAService = &service.TwoFAService{
		Store:  app.db,
		Tokens: app.tokenService,
		Issuer: app.cfg.Issuer,
	}

	app.authService = &service.AuthService{
		Store:    app.db,
		Tokens:   app.tokenService,
		TwoFA:    app.twoFAService,
		Presence: app.presence,
	}

	app.oauthService = &service.OAuthService{
		Store: app.db,
		TwoFA: app.twoFAService,
		Config: &oauth2.Config{
			ClientID:     app.cfg.OAuthClientID,
			ClientSecret: app.cfg.OAuthClientSecret,
			RedirectURL:  app.cfg.OAuthRedirectURL,
			Endpoint: oauth2.Endpoint{
				AuthURL:  app.cfg.OAuthAuthURL,
				TokenURL: app.cfg.OAuthTokenURL,
			},
		},
		ProfileURL: app.cfg.OAuthProfileURL,
		Timeout:    app.cfg.OAuthTimeout,
	}

	app.friendService = &service.FriendService{
		Store:    app.db,
		Presence: app.presence,
	}

	app.statsService = &service.StatsService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(app.signer, app.verifier, app.db, app.logger)

	router.AuthService = app.authService
	router.TwoFAService = app.twoFAService
	router.OAuthService = app.oauthService
	router.FriendService = app.friendService
	router.TokenService = app.tokenService
	router.StatsService = app.statsService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
