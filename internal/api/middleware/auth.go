package middleware

import (
	"errors"
	"strings"

	"github.com/bluemoon-apartment/bluemoon-backend/internal/activity"
	"github.com/bluemoon-apartment/bluemoon-backend/internal/auth"
	"github.com/bluemoon-apartment/bluemoon-backend/internal/config"
	"github.com/bluemoon-apartment/bluemoon-backend/internal/logger"
	"github.com/bluemoon-apartment/bluemoon-backend/internal/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthMiddleware 认证中间件
// 校验 Bearer 令牌并查询用户资料，失败时直接返回 401
func AuthMiddleware(jwtConfig *config.JWTConfig, profiles auth.ProfileResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 从请求头获取 JWT 令牌
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.AbortWithError(c, utils.CodeUnauthorized, errors.New("未提供认证令牌"))
			return
		}

		// 检查 Authorization 头格式
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			utils.AbortWithError(c, utils.CodeUnauthorized, errors.New("认证令牌格式错误"))
			return
		}

		claims, err := auth.ParseToken(parts[1], jwtConfig)
		if err != nil {
			logger.Warn("解析令牌失败", zap.Error(err), zap.String("path", c.Request.URL.Path))
			if errors.Is(err, auth.ErrExpiredToken) {
				utils.AbortWithError(c, utils.CodeTokenExpired, err)
				return
			}
			utils.AbortWithError(c, utils.CodeUnauthorized, errors.New("无效的认证令牌"))
			return
		}

		profile, err := profiles.FindProfile(c.Request.Context(), claims.Subject)
		if err != nil {
			if errors.Is(err, auth.ErrProfileNotFound) {
				utils.AbortWithError(c, utils.CodeUnauthorized, err)
				return
			}
			logger.Error("查询用户资料失败", zap.Error(err), zap.String("user_id", claims.Subject))
			utils.AbortWithError(c, utils.CodeInternalError, errors.New("查询用户资料失败"))
			return
		}

		email := profile.Email
		if email == "" {
			email = claims.Email
		}
		setActor(c, &activity.Actor{
			ID:       profile.ID,
			Username: profile.Username,
			Email:    email,
			Role:     profile.Role,
		})

		c.Next()
	}
}
