package archive

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/bluemoon-apartment/bluemoon-backend/internal/config"
	"github.com/bluemoon-apartment/bluemoon-backend/internal/db/models"
	"github.com/bluemoon-apartment/bluemoon-backend/internal/logger"
	"go.uber.org/zap"
)

// AliyunOSSArchiver 阿里云OSS归档存储
type AliyunOSSArchiver struct {
	bucket *oss.Bucket
	prefix string
}

// NewAliyunOSSArchiver 创建阿里云OSS归档存储
func NewAliyunOSSArchiver(cfg *config.ArchiveConfig) (*AliyunOSSArchiver, error) {
	client, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("初始化阿里云OSS客户端失败: %w", err)
	}

	bucket, err := client.Bucket(cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("获取阿里云OSS Bucket失败: %w", err)
	}

	return &AliyunOSSArchiver{
		bucket: bucket,
		prefix: cfg.Prefix,
	}, nil
}

// GetType 获取存储类型
func (a *AliyunOSSArchiver) GetType() string {
	return TypeAliyunOSS
}

// Archive 上传归档文件
func (a *AliyunOSSArchiver) Archive(ctx context.Context, objectKey string, logs []models.ActivityLog) (string, error) {
	data, err := EncodeJSONL(logs)
	if err != nil {
		return "", err
	}

	key := fullKey(a.prefix, objectKey)
	err = a.bucket.PutObject(key, bytes.NewReader(data),
		oss.ContentType("application/x-ndjson"),
		oss.WithContext(ctx),
	)
	if err != nil {
		logger.Error("上传归档文件到阿里云OSS失败", zap.String("key", key), zap.Error(err))
		return "", fmt.Errorf("上传归档文件到阿里云OSS失败: %w", err)
	}

	return key, nil
}
