package mocks

import (
	"context"

	"github.com/bluemoon-apartment/bluemoon-backend/internal/db/models"
	"github.com/stretchr/testify/mock"
)

// MockArchiver 模拟归档存储
type MockArchiver struct {
	mock.Mock
}

// GetType 获取存储类型
func (m *MockArchiver) GetType() string {
	args := m.Called()
	return args.String(0)
}

// Archive 归档一批日志
func (m *MockArchiver) Archive(ctx context.Context, objectKey string, logs []models.ActivityLog) (string, error) {
	args := m.Called(ctx, objectKey, logs)
	return args.String(0), args.Error(1)
}
