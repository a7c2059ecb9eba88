package mocks

import (
	"context"

	"github.com/bluemoon-apartment/bluemoon-backend/internal/db/models"
	"github.com/stretchr/testify/mock"
)

// MockProfileResolver 模拟用户资料查询
type MockProfileResolver struct {
	mock.Mock
}

// FindProfile 查询用户资料
func (m *MockProfileResolver) FindProfile(ctx context.Context, userID string) (*models.Profile, error) {
	args := m.Called(ctx, userID)
	profile, _ := args.Get(0).(*models.Profile)
	return profile, args.Error(1)
}
