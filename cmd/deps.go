package main

import (
	"fmt"

	"github.com/bluemoon-apartment/bluemoon-backend/internal/activity"
	"github.com/bluemoon-apartment/bluemoon-backend/internal/archive"
	"github.com/bluemoon-apartment/bluemoon-backend/internal/config"
	"github.com/bluemoon-apartment/bluemoon-backend/internal/db"
	"github.com/bluemoon-apartment/bluemoon-backend/internal/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// deps 命令共用的依赖
type deps struct {
	Config    *config.Config
	DB        *gorm.DB
	Store     *activity.GormStore
	Retention *activity.Retention
}

// withConfig 加载配置并初始化日志
func withConfig(fn func(*config.Config) error) error {
	cfg, err := config.LoadConfigWithEnv(configPath, appEnv)
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}

	if err := logger.InitLogger(&cfg.Log); err != nil {
		return fmt.Errorf("初始化日志系统失败: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("配置加载成功", zap.String("env", cfg.App.Env))
	return fn(cfg)
}

// withDeps 在 withConfig 基础上连接数据库并创建存储，结束时关闭连接
func withDeps(fn func(*deps) error) error {
	return withConfig(func(cfg *config.Config) error {
		if err := db.Init(&cfg.Database); err != nil {
			return fmt.Errorf("初始化数据库失败: %w", err)
		}
		defer func() {
			if err := db.Close(); err != nil {
				logger.Error("关闭数据库连接失败", zap.Error(err))
			}
		}()

		archiver, err := archive.NewArchiver(&cfg.Archive)
		if err != nil {
			return fmt.Errorf("创建归档存储失败: %w", err)
		}

		store := activity.NewGormStore(db.GetDB())
		return fn(&deps{
			Config:    cfg,
			DB:        db.GetDB(),
			Store:     store,
			Retention: activity.NewRetention(store, archiver, 0),
		})
	})
}
