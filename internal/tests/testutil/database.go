// Package testutil 测试用的数据库和数据构造工具
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/bluemoon-apartment/bluemoon-backend/internal/db/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var allModels = []interface{}{
	&models.Profile{},
	&models.ActivityLog{},
}

// SetupTestDB 创建独立的内存 SQLite 数据库并迁移所有模型，测试结束时自动关闭
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get underlying DB: %v", err)
	}
	// 后台 worker 并发写入时避免 SQLite 表锁
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}

// CreateProfile 写入一个用户资料
func CreateProfile(t *testing.T, db *gorm.DB, id, username, role string) *models.Profile {
	t.Helper()

	profile := &models.Profile{
		ID:       id,
		Username: username,
		Email:    username + "@bluemoon.test",
		Role:     role,
	}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("failed to create profile: %v", err)
	}
	return profile
}

// CreateActivityLog 写入一条指定时间的操作日志
func CreateActivityLog(t *testing.T, db *gorm.DB, userID, action, resourceType, status string, createdAt time.Time) *models.ActivityLog {
	t.Helper()

	log := &models.ActivityLog{
		UserID:       userID,
		Username:     userID,
		Action:       action,
		ResourceType: resourceType,
		Details:      datatypes.JSON(`{}`),
		Status:       status,
		CreatedAt:    createdAt.UTC(),
	}
	if err := db.Create(log).Error; err != nil {
		t.Fatalf("failed to create activity log: %v", err)
	}
	return log
}
