package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bluemoon-apartment/bluemoon-backend/internal/activity"
	"github.com/bluemoon-apartment/bluemoon-backend/internal/auth"
	"github.com/bluemoon-apartment/bluemoon-backend/internal/config"
	"github.com/bluemoon-apartment/bluemoon-backend/internal/db/models"
	"github.com/bluemoon-apartment/bluemoon-backend/internal/tests/mocks"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testJWT = &config.JWTConfig{SecretKey: "test-secret", ExpiresIn: 3600, Issuer: "bluemoon"}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	profile := &models.Profile{ID: "u-1", Username: "alice", Email: "alice@bluemoon.test", Role: models.RoleResident}
	profiles := &mocks.MockProfileResolver{}
	profiles.On("FindProfile", mock.Anything, "u-1").Return(profile, nil)
	profiles.On("FindProfile", mock.Anything, "u-gone").Return(nil, auth.ErrProfileNotFound)
	profiles.On("FindProfile", mock.Anything, "u-db").Return(nil, errors.New("connection reset"))

	r := gin.New()
	r.Use(AuthMiddleware(testJWT, profiles))
	r.GET("/test", func(c *gin.Context) {
		actor, ok := CurrentActor(c)
		require.True(t, ok)
		assert.Equal(t, "u-1", actor.ID)
		assert.Equal(t, "alice", actor.Label())
		assert.Equal(t, models.RoleResident, actor.Role)

		fromCtx, ok := activity.ActorFromContext(c.Request.Context())
		require.True(t, ok)
		assert.Same(t, actor, fromCtx)
		assert.Equal(t, "u-1", c.GetString(ContextKeyUserID))

		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	tokenFor := func(t *testing.T, id string, cfg *config.JWTConfig) string {
		token, err := auth.GenerateToken(&models.Profile{ID: id, Email: id + "@bluemoon.test"}, cfg)
		require.NoError(t, err)
		return token
	}

	expiredCfg := *testJWT
	expiredCfg.ExpiresIn = -60
	otherIssuer := *testJWT
	otherIssuer.Issuer = "someone-else"

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid token", "Bearer " + tokenFor(t, "u-1", testJWT), http.StatusOK},
		{"lowercase scheme", "bearer " + tokenFor(t, "u-1", testJWT), http.StatusOK},
		{"missing token", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"invalid token", "Bearer invalid-token", http.StatusUnauthorized},
		{"expired token", "Bearer " + tokenFor(t, "u-1", &expiredCfg), http.StatusUnauthorized},
		{"wrong issuer", "Bearer " + tokenFor(t, "u-1", &otherIssuer), http.StatusUnauthorized},
		{"unknown profile", "Bearer " + tokenFor(t, "u-gone", testJWT), http.StatusUnauthorized},
		{"profile lookup failure", "Bearer " + tokenFor(t, "u-db", testJWT), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestRoleMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		actor  *activity.Actor
		status int
	}{
		{"admin allowed", &activity.Actor{ID: "a", Role: models.RoleAdmin}, http.StatusOK},
		{"resident forbidden", &activity.Actor{ID: "r", Role: models.RoleResident}, http.StatusForbidden},
		{"anonymous", nil, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(withTestActor(tt.actor), AdminMiddleware())
			r.GET("/admin", func(c *gin.Context) { c.Status(http.StatusOK) })

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestRequestIDAndCors(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestID(), CorsMiddleware([]string{"https://app.bluemoon.test"}))
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextKeyRequestID))
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://app.bluemoon.test")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.Equal(t, w.Header().Get(RequestIDHeader), w.Body.String())
	assert.Equal(t, "https://app.bluemoon.test", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "https://evil.test")
	req.Header.Set(RequestIDHeader, "fixed-id")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "fixed-id", w.Header().Get(RequestIDHeader))
}
