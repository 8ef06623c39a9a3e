package app

import (
	"context"
	"strings"

	"go-onboarding/internal/assets"
	"go-onboarding/internal/audit"
	"go-onboarding/internal/auth"
	"go-onboarding/internal/compensation"
	"go-onboarding/internal/invite"
	"go-onboarding/internal/mailer"
	"go-onboarding/internal/messaging/kafka"
	"go-onboarding/internal/onboarding"
	"go-onboarding/internal/otp"
	"go-onboarding/internal/rbac"
	"go-onboarding/internal/session"
	"go-onboarding/internal/shared/clock"
	"go-onboarding/internal/shared/config"
	"go-onboarding/internal/shared/connection"
	"go-onboarding/internal/shared/secure"
	"go-onboarding/internal/throttle"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

func registerModules(
	router *gin.Engine,
	cfg *config.Config,
	infra *Infra,
	logger *zap.Logger,
) error {
	clk := clock.Real{}
	secureCookies := cfg.AppEnv == "production"

	// --- Repositories ---
	authRepo := auth.NewRepository(infra.GormDB)
	onboardingRepo := onboarding.NewRepository(infra.GormDB)
	auditRepo := audit.NewRepository(infra.SQLDB)
	outboxRepo := kafka.NewOutboxRepository(infra.SQLDB)

	// --- RBAC Core ---
	rbacService, err := rbac.NewService(rbac.DefaultPermissions, rbac.DefaultGrants, logger)
	if err != nil {
		return err
	}

	// --- Credentials ---
	hasher, err := secure.NewHMACHasher(cfg.HashSecret)
	if err != nil {
		return err
	}
	random := secure.NewCryptoRandom()

	sessions, err := session.NewIssuer(cfg.SessionSecret, clk)
	if err != nil {
		return err
	}

	lc := cfg.Lifecycle
	invites := invite.NewManager(onboardingRepo, hasher, random, clk, lc.InviteTTL, logger)
	otps := otp.NewManager(onboardingRepo, hasher, random, clk, otp.Config{
		TTL:          lc.OtpTTL,
		MaxAttempts:  lc.OtpMaxAttempts,
		LockDuration: lc.OtpLockDuration,
	}, logger)

	// --- Outbound ---
	var mail mailer.Mailer
	if cfg.SMTP.Host != "" {
		mail = mailer.NewSMTPMailer(mailer.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		}, logger)
		logger.Info("smtp mailer enabled", zap.String("addr", connection.SMTPAddr(cfg.SMTP)))
	} else {
		mail = mailer.NewLogMailer(logger)
		logger.Warn("SMTP_HOST not set, emails are written to the log")
	}

	store := assets.NewNoopStore()
	if cfg.S3.Bucket != "" {
		client, err := assets.NewS3Client(context.Background(), assets.S3Config{
			Bucket:       cfg.S3.Bucket,
			Region:       cfg.S3.Region,
			BaseEndpoint: cfg.S3.BaseEndpoint,
			AccessKey:    cfg.S3.AccessKey,
			SecretKey:    cfg.S3.SecretKey,
		})
		if err != nil {
			return err
		}
		store = assets.NewS3Store(client, cfg.S3.Bucket, logger)
	}

	// --- Services ---
	authService := auth.NewService(authRepo, cfg.JWTSecret, auth.DefaultTokenTTL, logger)
	recorder := audit.NewRecorder(infra.SQLDB, auditRepo, outboxRepo, clk, logger)

	deps := onboarding.Deps{
		Repo:      onboardingRepo,
		AuditLogs: auditRepo,
		Audit:     recorder,
		Invites:   invites,
		Otps:      otps,
		Sessions:  sessions,
		Runner:    compensation.NewRunner(lc.MailTimeout, logger),
		Mailer:    mail,
		Assets:    store,
		Throttle:  throttle.NewRedisOtpThrottle(infra.Redis, lc.OtpResendInterval, logger),
		Cache:     infra.Redis,
		CacheTTL:  lc.SummaryCacheTTL,
		Clock:     clk,
		Validate:  validator.New(),
		InviteURL: strings.TrimRight(cfg.PublicBaseURL, "/") + "/onboarding",
	}
	onboardingService := onboarding.NewService(deps, logger)
	employeeService := onboarding.NewEmployeeService(deps, logger)

	// --- Handlers ---
	authHandler := auth.NewHandler(authService, secureCookies, logger)
	onboardingHandler := onboarding.NewHandler(onboardingService, logger)
	employeeHandler := onboarding.NewEmployeeHandler(employeeService, secureCookies, logger)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler, cfg.JWTSecret)
		onboarding.RegisterRoutes(api, onboardingHandler, rbacService, infra.Redis, cfg.JWTSecret, logger)
		onboarding.RegisterEmployeeRoutes(api, employeeHandler, sessions, logger)
	}

	return nil
}
