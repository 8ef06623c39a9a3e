package main

import (
	"time"

	"go-onboarding/internal/app"
	"go-onboarding/internal/bootstrap"
	"go-onboarding/internal/shared/apperror"
	"go-onboarding/internal/shared/config"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	apperror.Init()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config failed", zap.Error(err))
	}

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	// build dependency + routes
	infra, err := app.BuildApp(r, cfg)
	if err != nil {
		logger.Fatal("build app failed", zap.Error(err))
	}
	defer infra.Close()

	bootstrap.StartHTTPServer(
		r,
		bootstrap.ServerConfig{
			Port:         cfg.Port,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second + cfg.Lifecycle.MailTimeout,
			IdleTimeout:  60 * time.Second,
		},
		bootstrap.NewZapEventLogger(logger),
	)
}
