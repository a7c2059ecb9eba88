package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/bluemoon-apartment/bluemoon-backend/internal/db/models"
	"gorm.io/gorm"
)

//go:generate mockgen -destination=../tests/mocks/mock_store.go -package=mocks github.com/bluemoon-apartment/bluemoon-backend/internal/activity Store

// Store 操作日志存储，只追加；删除只发生在保留期清理
type Store interface {
	Create(ctx context.Context, log *models.ActivityLog) error
	List(ctx context.Context, filter Filter) ([]models.ActivityLog, int64, error)
	Stats(ctx context.Context, filter Filter) (*Stats, error)
	FindOlderThan(ctx context.Context, cutoff time.Time, afterID uint, limit int) ([]models.ActivityLog, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Filter 查询条件，空值表示不过滤
type Filter struct {
	UserID       string
	Username     string
	Action       string
	ResourceType string
	Status       string
	StartTime    *time.Time
	EndTime      *time.Time
	Page         int
	PageSize     int
}

// Offset 分页偏移量
func (f Filter) Offset() int {
	if f.Page <= 1 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}

// Count 分组计数
type Count struct {
	Key   string `gorm:"column:group_key" json:"key"`
	Count int64  `gorm:"column:total" json:"count"`
}

// Stats 操作日志统计
type Stats struct {
	Total          int64   `json:"total"`
	ByAction       []Count `json:"by_action"`
	ByResourceType []Count `json:"by_resource_type"`
	ByStatus       []Count `json:"by_status"`
}

// GormStore 基于 gorm 的 activity_logs 表存储
type GormStore struct {
	db *gorm.DB
}

// NewGormStore 创建存储
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Create 写入一条操作日志
func (s *GormStore) Create(ctx context.Context, log *models.ActivityLog) error {
	if err := s.db.WithContext(ctx).Create(log).Error; err != nil {
		return fmt.Errorf("写入操作日志失败: %w", err)
	}
	return nil
}

// List 分页查询，按创建时间倒序
func (s *GormStore) List(ctx context.Context, filter Filter) ([]models.ActivityLog, int64, error) {
	var total int64
	if err := s.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("获取操作日志总数失败: %w", err)
	}

	query := s.filtered(ctx, filter).Order("created_at DESC")
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	var logs []models.ActivityLog
	if err := query.Find(&logs).Error; err != nil {
		return nil, 0, fmt.Errorf("获取操作日志列表失败: %w", err)
	}
	return logs, total, nil
}

// Stats 按 action、资源类型、状态分组统计
func (s *GormStore) Stats(ctx context.Context, filter Filter) (*Stats, error) {
	stats := &Stats{}
	if err := s.filtered(ctx, filter).Count(&stats.Total).Error; err != nil {
		return nil, fmt.Errorf("统计操作日志总数失败: %w", err)
	}

	groups := []struct {
		column string
		dest   *[]Count
	}{
		{"action", &stats.ByAction},
		{"resource_type", &stats.ByResourceType},
		{"status", &stats.ByStatus},
	}
	for _, g := range groups {
		err := s.filtered(ctx, filter).
			Select(g.column + " AS group_key, COUNT(*) AS total").
			Group(g.column).
			Order("total DESC").
			Scan(g.dest).Error
		if err != nil {
			return nil, fmt.Errorf("按 %s 统计操作日志失败: %w", g.column, err)
		}
	}
	return stats, nil
}

// FindOlderThan 按ID顺序取出早于 cutoff 的日志，用于归档
func (s *GormStore) FindOlderThan(ctx context.Context, cutoff time.Time, afterID uint, limit int) ([]models.ActivityLog, error) {
	var logs []models.ActivityLog
	err := s.db.WithContext(ctx).
		Where("created_at < ? AND id > ?", cutoff, afterID).
		Order("id ASC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("查询过期操作日志失败: %w", err)
	}
	return logs, nil
}

// DeleteOlderThan 删除早于 cutoff 的日志，返回删除条数
func (s *GormStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := s.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&models.ActivityLog{})
	if result.Error != nil {
		return 0, fmt.Errorf("删除过期操作日志失败: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (s *GormStore) filtered(ctx context.Context, filter Filter) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&models.ActivityLog{})

	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Username != "" {
		query = query.Where("username LIKE ?", "%"+filter.Username+"%")
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.ResourceType != "" {
		query = query.Where("resource_type = ?", filter.ResourceType)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.StartTime != nil {
		query = query.Where("created_at >= ?", *filter.StartTime)
	}
	if filter.EndTime != nil {
		query = query.Where("created_at <= ?", *filter.EndTime)
	}
	return query
}
