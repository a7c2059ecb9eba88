package activity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bluemoon-apartment/bluemoon-backend/internal/archive"
	"github.com/bluemoon-apartment/bluemoon-backend/internal/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultArchiveBatchSize = 1000

// ErrInvalidRetention 保留时长必须为正数
var ErrInvalidRetention = errors.New("保留时长必须大于0")

// Retention 按保留期清理操作日志，配置了归档存储时先归档再删除
type Retention struct {
	store     Store
	archiver  archive.Archiver
	batchSize int
	now       func() time.Time
}

// CleanupResult 一次清理的结果
type CleanupResult struct {
	Cutoff      time.Time `json:"cutoff"`
	Archived    int       `json:"archived"`
	Deleted     int64     `json:"deleted"`
	ArchiveKeys []string  `json:"archive_keys,omitempty"`
}

// NewRetention 创建清理器，archiver 可以为 nil
func NewRetention(store Store, archiver archive.Archiver, batchSize int) *Retention {
	if batchSize <= 0 {
		batchSize = defaultArchiveBatchSize
	}
	return &Retention{
		store:     store,
		archiver:  archiver,
		batchSize: batchSize,
		now:       time.Now,
	}
}

// Cleanup 删除早于 olderThan 的操作日志
// 归档任意一批失败时不删除任何数据
func (r *Retention) Cleanup(ctx context.Context, olderThan time.Duration) (*CleanupResult, error) {
	if olderThan <= 0 {
		return nil, ErrInvalidRetention
	}

	result := &CleanupResult{Cutoff: r.now().Add(-olderThan)}

	if r.archiver != nil {
		if err := r.archive(ctx, result); err != nil {
			return nil, err
		}
	}

	deleted, err := r.store.DeleteOlderThan(ctx, result.Cutoff)
	if err != nil {
		return nil, err
	}
	result.Deleted = deleted

	logger.Info("操作日志清理完成",
		zap.Time("cutoff", result.Cutoff),
		zap.Int("archived", result.Archived),
		zap.Int64("deleted", result.Deleted))
	return result, nil
}

func (r *Retention) archive(ctx context.Context, result *CleanupResult) error {
	runID := uuid.New()
	var afterID uint
	for part := 1; ; part++ {
		logs, err := r.store.FindOlderThan(ctx, result.Cutoff, afterID, r.batchSize)
		if err != nil {
			return err
		}
		if len(logs) == 0 {
			return nil
		}

		key, err := r.archiver.Archive(ctx, archive.ObjectKey(result.Cutoff, runID, part), logs)
		if err != nil {
			return fmt.Errorf("归档操作日志失败: %w", err)
		}
		result.Archived += len(logs)
		result.ArchiveKeys = append(result.ArchiveKeys, key)
		afterID = logs[len(logs)-1].ID

		logger.Debug("已归档一批操作日志",
			zap.String("storage", r.archiver.GetType()),
			zap.String("key", key),
			zap.Int("count", len(logs)))

		if len(logs) < r.batchSize {
			return nil
		}
	}
}
