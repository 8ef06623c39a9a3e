package app

import (
	"database/sql"

	"go-onboarding/internal/middleware"
	"go-onboarding/internal/shared/config"
	"go-onboarding/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Infra holds the shared connections of the API process.
type Infra struct {
	GormDB *gorm.DB
	SQLDB  *sql.DB
	Redis  *redis.Client
}

// Close releases every connection. Safe to call on a partially built Infra.
func (i *Infra) Close() {
	if i.Redis != nil {
		_ = i.Redis.Close()
	}
	if i.SQLDB != nil {
		_ = i.SQLDB.Close()
	}
}

func connect(cfg *config.Config, logger *zap.Logger) (*Infra, error) {
	infra := &Infra{}

	gormDB, err := connection.ConnectGORMWithRetry(cfg.Database, 5)
	if err != nil {
		return nil, err
	}
	infra.GormDB = gormDB

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}
	infra.SQLDB = sqlDB
	logger.Info("database connection established")

	rdb, err := connection.ConnectRedisWithRetry(cfg.Redis.Addr, 5)
	if err != nil {
		infra.Close()
		return nil, err
	}
	infra.Redis = rdb
	logger.Info("redis connection established")

	return infra, nil
}

// BuildApp connects the infrastructure and mounts every module on router.
// The returned Infra must be closed by the caller after shutdown.
func BuildApp(router *gin.Engine, cfg *config.Config) (*Infra, error) {
	logger := zap.L().Named("app")

	infra, err := connect(cfg, logger)
	if err != nil {
		return nil, err
	}

	router.Use(middleware.RequestID())

	if err := registerModules(router, cfg, infra, logger); err != nil {
		infra.Close()
		return nil, err
	}
	return infra, nil
}
