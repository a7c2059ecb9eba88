package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/bluemoon-apartment/bluemoon-backend/internal/config"
	"github.com/bluemoon-apartment/bluemoon-backend/internal/db/models"
	"github.com/google/uuid"
)

// 归档存储类型
const (
	TypeAWSS3     = "aws_s3"
	TypeAliyunOSS = "aliyun_oss"
)

// Archiver 将过期的操作日志写入对象存储
type Archiver interface {
	// GetType 获取存储类型
	GetType() string

	// Archive 以 JSON Lines 格式写入一个对象，返回完整的对象键
	Archive(ctx context.Context, objectKey string, logs []models.ActivityLog) (string, error)
}

// NewArchiver 根据配置创建归档存储，未启用时返回 nil
func NewArchiver(cfg *config.ArchiveConfig) (Archiver, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	switch cfg.Type {
	case TypeAWSS3:
		return NewS3Archiver(cfg)
	case TypeAliyunOSS:
		return NewAliyunOSSArchiver(cfg)
	default:
		return nil, fmt.Errorf("不支持的归档存储类型: %s", cfg.Type)
	}
}

// EncodeJSONL 每条日志一行 JSON
func EncodeJSONL(logs []models.ActivityLog) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i := range logs {
		if err := enc.Encode(&logs[i]); err != nil {
			return nil, fmt.Errorf("编码操作日志失败: %w", err)
		}
	}
	return buf.Bytes(), nil
}

// ObjectKey 生成归档对象键，例如 activity-logs/2024/05/01/<cutoff>-<uuid>-part0001.jsonl
func ObjectKey(cutoff time.Time, runID uuid.UUID, part int) string {
	return path.Join(
		"activity-logs",
		cutoff.UTC().Format("2006/01/02"),
		fmt.Sprintf("%s-%s-part%04d.jsonl", cutoff.UTC().Format("20060102T150405Z"), runID.String(), part),
	)
}

func fullKey(prefix, objectKey string) string {
	if prefix == "" {
		return objectKey
	}
	return path.Join(prefix, objectKey)
}
