package handlers

import (
	"errors"
	"net/http"
	"testing"

	"github.com/bluemoon-apartment/bluemoon-backend/internal/auth"
	"github.com/bluemoon-apartment/bluemoon-backend/internal/db/models"
	"github.com/bluemoon-apartment/bluemoon-backend/internal/tests/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestAuthHandler_GetCurrentUser(t *testing.T) {
	profiles := &mocks.MockProfileResolver{}
	profiles.On("FindProfile", mock.Anything, "admin-1").
		Return(&models.Profile{ID: "admin-1", Username: "admin", Email: "admin@bluemoon.test", Role: models.RoleAdmin}, nil)
	h := NewAuthHandler(profiles)

	c, w := newTestContext(http.MethodGet, "/api/auth/me", "", adminActor)
	h.GetCurrentUser(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"email":"admin@bluemoon.test"`)
	profiles.AssertExpectations(t)
}

func TestAuthHandler_GetCurrentUserErrors(t *testing.T) {
	t.Run("anonymous", func(t *testing.T) {
		h := NewAuthHandler(&mocks.MockProfileResolver{})
		c, w := newTestContext(http.MethodGet, "/api/auth/me", "", nil)
		h.GetCurrentUser(c)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("profile deleted", func(t *testing.T) {
		profiles := &mocks.MockProfileResolver{}
		profiles.On("FindProfile", mock.Anything, "admin-1").Return(nil, auth.ErrProfileNotFound)
		c, w := newTestContext(http.MethodGet, "/api/auth/me", "", adminActor)
		NewAuthHandler(profiles).GetCurrentUser(c)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("lookup failure", func(t *testing.T) {
		profiles := &mocks.MockProfileResolver{}
		profiles.On("FindProfile", mock.Anything, "admin-1").Return(nil, errors.New("timeout"))
		c, w := newTestContext(http.MethodGet, "/api/auth/me", "", adminActor)
		NewAuthHandler(profiles).GetCurrentUser(c)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestHealthHandler_Check(t *testing.T) {
	c, w := newTestContext(http.MethodGet, "/api/health", "", nil)
	NewHealthHandler(nil).Check(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"code":200,"message":"操作成功","data":{"status":"ok"}}`, w.Body.String())
}
