package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/bluemoon-apartment/bluemoon-backend/internal/db/models"
	"gorm.io/gorm"
)

// ErrProfileNotFound 令牌有效但找不到对应的用户资料
var ErrProfileNotFound = errors.New("用户资料不存在")

// ProfileResolver 根据身份服务的用户ID查询用户资料
type ProfileResolver interface {
	FindProfile(ctx context.Context, userID string) (*models.Profile, error)
}

// GormProfileResolver 基于 profiles 表的实现
type GormProfileResolver struct {
	db *gorm.DB
}

// NewGormProfileResolver 创建用户资料查询器
func NewGormProfileResolver(db *gorm.DB) *GormProfileResolver {
	return &GormProfileResolver{db: db}
}

// FindProfile 查询用户资料
func (r *GormProfileResolver) FindProfile(ctx context.Context, userID string) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.WithContext(ctx).Where("id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("查询用户资料失败: %w", err)
	}
	return &profile, nil
}
