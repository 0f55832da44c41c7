package main

import (
	"os/signal"
	"syscall"
	"time"

	rdb "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/machwork/identity/internal/audit"
	"github.com/machwork/identity/internal/email"
	httpserver "github.com/machwork/identity/internal/http"
	"github.com/machwork/identity/internal/jwt"
	"github.com/machwork/identity/internal/observability/logger"
	"github.com/machwork/identity/internal/rate"
	"github.com/machwork/identity/internal/rbac"
	"github.com/machwork/identity/internal/security/password"
	"github.com/machwork/identity/internal/service/auth"
	"github.com/machwork/identity/internal/store/pg"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Levanta el servidor HTTP",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger.Init(logger.Config{
			Env:         cfg.App.Env,
			Level:       cfg.Log.Level,
			ServiceName: "identity",
		})
		defer logger.Sync()
		log := logger.Named("serve")

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		// storage
		lifetime, _ := time.ParseDuration(cfg.Storage.Postgres.ConnMaxLifetime)
		store, err := pg.New(ctx, cfg.Storage.DSN, pg.Options{
			MaxConns:        cfg.Storage.Postgres.MaxConns,
			ConnMaxLifetime: lifetime,
		})
		if err != nil {
			return err
		}
		defer store.Close()

		// claves y tokens
		keys, err := jwt.LoadKeyPair(cfg.JWT.PrivateKeyPath, cfg.JWT.PublicKeyPath)
		if err != nil {
			return err
		}
		issuer := jwt.NewIssuer(keys, cfg.JWT.Issuer, cfg.JWT.Audience, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
		verifier := jwt.NewVerifier(keys, cfg.JWT.Issuer, cfg.JWT.Audience)

		// correo
		var sender email.Sender = email.LogSender{}
		if cfg.SMTP.Host != "" {
			sender = email.FromConfig(cfg.SMTP)
		}
		mailer := email.NewMailer(sender, cfg.App.BaseURL)

		// auditoría
		auditor := audit.NewDispatcher(audit.Config{
			BufferSize: cfg.Audit.BufferSize,
			DropIfFull: cfg.Audit.DropIfFull,
		}, audit.NewPGSink(store.Audit()))
		defer auditor.Close()

		// rate limiting: inyectado, el resto del stack no sabe qué backend corre
		var limiter rate.Limiter
		if cfg.Rate.Enabled {
			switch cfg.Rate.Backend {
			case "redis":
				client := rdb.NewClient(&rdb.Options{Addr: cfg.Rate.Redis.Addr, DB: cfg.Rate.Redis.DB})
				defer func() { _ = client.Close() }()
				limiter = rate.NewRedisLimiter(client, cfg.Rate.Redis.Prefix, cfg.Rate.Window)
			default:
				limiter = rate.NewMemoryLimiter(cfg.Rate.Window)
			}
		}

		svc := auth.New(
			auth.Repos{
				Users:         store.Users(),
				Memberships:   store.Memberships(),
				ActionTokens:  store.ActionTokens(),
				RefreshTokens: store.RefreshTokens(),
				BackupCodes:   store.BackupCodes(),
				Atomic:        store,
			},
			issuer,
			verifier,
			rbac.NewResolver(store.Memberships()),
			mailer,
			auditor,
			auth.Config{
				VerifyTTL:   cfg.Auth.Verify.TTL,
				ResetTTL:    cfg.Auth.Reset.TTL,
				MFAIssuer:   cfg.Auth.MFA.Issuer,
				BackupCodes: cfg.Auth.MFA.BackupCodes,
				Policy:      password.Policy{MinLength: cfg.Auth.Password.MinLength},
				HashParams:  password.Default,
			},
		)

		router := httpserver.NewRouter(httpserver.RouterConfig{
			Service:     svc,
			Verifier:    verifier,
			DB:          store,
			Limiter:     limiter,
			RateMax:     int64(cfg.Rate.MaxRequests),
			RateAuthMax: int64(cfg.Rate.AuthMaxRequests),
		})
		server := httpserver.NewServer(cfg.Server.Addr, router)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return server.Run(gctx) })
		g.Go(func() error {
			svc.RunCleanupLoop(gctx, time.Hour)
			return nil
		})

		log.Info("identity service started", logger.String("addr", cfg.Server.Addr))
		return g.Wait()
	},
}
