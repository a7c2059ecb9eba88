package archive

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/bluemoon-apartment/bluemoon-backend/internal/config"
	"github.com/bluemoon-apartment/bluemoon-backend/internal/db/models"
	"github.com/bluemoon-apartment/bluemoon-backend/internal/logger"
	"go.uber.org/zap"
)

// S3Archiver AWS S3 以及兼容 S3 协议的存储
type S3Archiver struct {
	client     *s3.Client
	bucketName string
	prefix     string
}

// NewS3Archiver 创建 S3 归档存储
func NewS3Archiver(cfg *config.ArchiveConfig) (*S3Archiver, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	// 未配置密钥时使用默认凭证链（环境变量、实例角色等）
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.AccessKeySecret, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(), opts...)
	if err != nil {
		logger.Error("创建AWS配置失败", zap.Error(err))
		return nil, fmt.Errorf("创建AWS配置失败: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Archiver{
		client:     client,
		bucketName: cfg.Bucket,
		prefix:     cfg.Prefix,
	}, nil
}

// GetType 获取存储类型
func (a *S3Archiver) GetType() string {
	return TypeAWSS3
}

// Archive 上传归档文件
func (a *S3Archiver) Archive(ctx context.Context, objectKey string, logs []models.ActivityLog) (string, error) {
	data, err := EncodeJSONL(logs)
	if err != nil {
		return "", err
	}

	key := fullKey(a.prefix, objectKey)
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/x-ndjson"),
	})
	if err != nil {
		logger.Error("上传归档文件到S3失败", zap.String("key", key), zap.Error(err))
		return "", fmt.Errorf("上传归档文件到S3失败: %w", err)
	}

	return key, nil
}
