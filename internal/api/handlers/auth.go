package handlers

import (
	"errors"

	"github.com/bluemoon-apartment/bluemoon-backend/internal/api/middleware"
	"github.com/bluemoon-apartment/bluemoon-backend/internal/auth"
	"github.com/bluemoon-apartment/bluemoon-backend/internal/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler 认证处理器
// 登录和注册由身份服务完成，这里只提供当前用户信息
type AuthHandler struct {
	*BaseHandler
	profiles auth.ProfileResolver
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(profiles auth.ProfileResolver) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(),
		profiles:    profiles,
	}
}

// GetCurrentUser 获取当前用户信息
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		h.Unauthorized(c, "未登录")
		return
	}

	profile, err := h.profiles.FindProfile(c.Request.Context(), actor.ID)
	if err != nil {
		if errors.Is(err, auth.ErrProfileNotFound) {
			h.NotFound(c, "用户资料不存在")
			return
		}
		logger.Error("获取用户资料失败", zap.Error(err), zap.String("user_id", actor.ID))
		h.InternalError(c, "获取用户资料失败")
		return
	}

	h.Success(c, profile)
}
