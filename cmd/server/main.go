package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-identity-service/auth"
	"github.com/jrsteele09/go-identity-service/internal/config"
	"github.com/jrsteele09/go-identity-service/server"
	"github.com/jrsteele09/go-identity-service/sessions"
	tenantrepofakes "github.com/jrsteele09/go-identity-service/tenants/repofakes"
	"github.com/jrsteele09/go-identity-service/token"
	"github.com/jrsteele09/go-identity-service/token/keys"
	userrepofake "github.com/jrsteele09/go-identity-service/users/repofake"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
	log.Info().Msg("server stopped")
}

func run() error {
	cfg, err := config.New()
	if err != nil {
		return errors.Wrap(err, "loading configuration")
	}

	setupLogging(cfg)
	displayAppName(cfg.GetAppName())

	keyPair, err := loadKeyMaterial(cfg)
	if err != nil {
		// Fatal: the process must not serve traffic without key material
		return errors.Wrap(err, "loading key material")
	}

	signer := keys.NewKeyPairSigner(keyPair)
	issuer, err := token.NewIssuer(signer, cfg.GetIssuer(), cfg.GetAudience(),
		token.WithTokenExpiry(cfg.GetAccessTokenExpiry(), cfg.GetRefreshTokenExpiry()))
	if err != nil {
		return errors.Wrap(err, "creating token issuer")
	}
	verifier := token.NewVerifier(signer)

	store, closeStore, err := newSessionStore(cfg)
	if err != nil {
		return errors.Wrap(err, "creating session store")
	}
	defer closeStore()

	repos := server.Repos{
		Users:   userrepofake.NewFakeUserRepo(),
		Tenants: tenantrepofakes.NewFakeTenantRepo(),
	}

	sessionManager, err := auth.NewSessionManager(repos.Users, store, issuer)
	if err != nil {
		return errors.Wrap(err, "creating session manager")
	}

	if cfg.IsDev() {
		if err := server.SeedDevData(context.Background(), repos); err != nil {
			return errors.Wrap(err, "seeding development data")
		}
	}

	srv, err := server.New(cfg, repos, sessionManager, verifier)
	if err != nil {
		return errors.Wrap(err, "creating server")
	}

	httpServer := &http.Server{Addr: cfg.GetPort(), Handler: srv}
	go listenAndServe(httpServer)
	waitForStopSignal()
	return shutdown(httpServer)
}

func listenAndServe(httpServer *http.Server) {
	log.Info().Str("addr", httpServer.Addr).Msg("server listening")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server.ListenAndServe")
	}
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(httpServer *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "server.Shutdown")
	}
	return nil
}

// loadKeyMaterial loads the signing key pair from the configured PEM files.
// In DEV with no paths configured an ephemeral pair is generated instead;
// everywhere else missing key material aborts startup.
func loadKeyMaterial(cfg *config.Config) (*keys.KeyPair, error) {
	privatePath, publicPath := cfg.GetPrivateKeyPath(), cfg.GetPublicKeyPath()

	if privatePath == "" || publicPath == "" {
		if !cfg.IsDev() {
			return nil, errors.Wrap(config.ConfigurationMissingErr, "jwt.private_key_path and jwt.public_key_path are required")
		}
		log.Warn().Msg("no key paths configured, generating ephemeral dev key pair; tokens will not survive a restart")
		return keys.GenerateRSAKeyPair(cfg.GetKeyID(), 2048)
	}

	return keys.LoadKeyPairFromFiles(cfg.GetKeyID(), privatePath, publicPath)
}

func newSessionStore(cfg *config.Config) (sessions.Store, func(), error) {
	switch cfg.GetSessionBackend() {
	case config.SessionBackendMemory:
		store := sessions.NewInMemoryStore(cfg.GetSweepInterval())
		return store, store.Close, nil

	case config.SessionBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.GetRedisAddr(),
			Password: cfg.GetRedisPassword(),
			DB:       cfg.GetRedisDB(),
		})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, nil, errors.Wrapf(err, "pinging redis at %s", cfg.GetRedisAddr())
		}

		return sessions.NewRedisStore(client), func() { _ = client.Close() }, nil

	default:
		return nil, nil, errors.Wrapf(config.ConfigurationMissingErr, "unknown session backend %q", cfg.GetSessionBackend())
	}
}

func setupLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.GetLogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.IsDev() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func displayAppName(appName string) {
	myFigure := figure.NewFigure(appName, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
