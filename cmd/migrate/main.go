// Command migrate applies the database schema and seeds HR accounts.
//
//	migrate up
//	migrate down
//	migrate status
//	migrate create-user -email hr@example.com -name "HR" -password secret123 -role HR
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go-onboarding/internal/auth"
	"go-onboarding/internal/migrations"
	"go-onboarding/internal/shared/apperror"
	"go-onboarding/internal/shared/config"
	"go-onboarding/internal/shared/connection"

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

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: migrate up|down|status|create-user [flags]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config failed", zap.Error(err))
	}

	gormDB, err := connection.ConnectGORMWithRetry(cfg.Database, 5)
	if err != nil {
		logger.Fatal("connect database failed", zap.Error(err))
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("open sql handle failed", zap.Error(err))
	}
	defer sqlDB.Close()

	ctx := context.Background()

	switch cmd := os.Args[1]; cmd {
	case "up":
		err = migrations.Up(ctx, sqlDB)
	case "down":
		err = migrations.Down(ctx, sqlDB)
	case "status":
		err = migrations.Status(ctx, sqlDB)
	case "create-user":
		fs := flag.NewFlagSet("create-user", flag.ExitOnError)
		email := fs.String("email", "", "login email")
		name := fs.String("name", "", "display name")
		password := fs.String("password", "", "initial password")
		role := fs.String("role", "HR", "VIEWER, HR or ADMIN")
		_ = fs.Parse(os.Args[2:])

		if *email == "" || *password == "" {
			logger.Fatal("create-user needs -email and -password")
		}

		svc := auth.NewService(auth.NewRepository(gormDB), cfg.JWTSecret, auth.DefaultTokenTTL, logger)
		var user auth.AuthResponse
		user, err = svc.Register(ctx, auth.RegisterRequest{
			Email:    *email,
			Name:     *name,
			Password: *password,
			Role:     *role,
		})
		if err == nil {
			logger.Info("user created", zap.String("id", user.ID), zap.String("role", user.Role))
		}
	default:
		logger.Fatal("unknown command", zap.String("command", cmd))
	}

	if err != nil {
		logger.Fatal("migrate failed", zap.String("command", os.Args[1]), zap.Error(err))
	}
}
