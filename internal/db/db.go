package db

import (
	"errors"
	"fmt"

	"github.com/bluemoon-apartment/bluemoon-backend/internal/config"
	"github.com/bluemoon-apartment/bluemoon-backend/internal/logger"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var db *gorm.DB

// Init 初始化数据库连接
func Init(cfg *config.DatabaseConfig) error {
	gormConfig := &gorm.Config{
		// 禁用默认事务，操作日志只做单条插入
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Warn),
	}

	// PreferSimpleProtocol 兼容 Supabase 的连接池代理
	conn, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.GetDSN(),
		PreferSimpleProtocol: true,
	}), gormConfig)
	if err != nil {
		return fmt.Errorf("连接数据库失败: %w", err)
	}

	// 配置连接池
	sqlDB, err := conn.DB()
	if err != nil {
		return fmt.Errorf("获取数据库实例失败: %w", err)
	}

	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.GetConnMaxLifetime())

	db = conn
	logger.Info("数据库初始化成功", zap.String("host", cfg.Host), zap.String("dbname", cfg.DBName))
	return nil
}

// GetDB 获取数据库连接
func GetDB() *gorm.DB {
	return db
}

// SetDB 替换数据库连接，主要用于测试
func SetDB(conn *gorm.DB) {
	db = conn
}

// Close 关闭数据库连接
func Close() error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// RunMigrations 执行 migrations 目录下的 SQL 迁移
func RunMigrations(cfg *config.DatabaseConfig) error {
	logger.Info("开始执行数据库迁移", zap.String("dir", cfg.MigrationsDir))

	mig, err := migrate.New("file://"+cfg.MigrationsDir, cfg.GetMigrateURL())
	if err != nil {
		return fmt.Errorf("创建迁移实例失败: %w", err)
	}
	defer func() {
		srcErr, dbErr := mig.Close()
		if srcErr != nil {
			logger.Warn("关闭迁移源失败", zap.Error(srcErr))
		}
		if dbErr != nil {
			logger.Warn("关闭迁移数据库连接失败", zap.Error(dbErr))
		}
	}()

	if err := mig.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("数据库迁移失败: %w", err)
	}

	version, dirty, err := mig.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("读取迁移版本失败: %w", err)
	}
	logger.Info("数据库迁移完成", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}
