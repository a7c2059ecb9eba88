package middleware

import (
	"errors"

	"github.com/bluemoon-apartment/bluemoon-backend/internal/db/models"
	"github.com/bluemoon-apartment/bluemoon-backend/internal/logger"
	"github.com/bluemoon-apartment/bluemoon-backend/internal/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RoleMiddleware 角色检查中间件，用户拥有任意一个指定角色即可通过
func RoleMiddleware(requiredRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := CurrentActor(c)
		if !ok {
			utils.AbortWithError(c, utils.CodeUnauthorized, errors.New("未登录"))
			return
		}

		if !hasRole(actor.Role, requiredRoles) {
			logger.Warn("角色权限不足",
				zap.String("user_id", actor.ID),
				zap.String("role", actor.Role),
				zap.Strings("required", requiredRoles),
				zap.String("path", c.Request.URL.Path))
			utils.AbortWithError(c, utils.CodeForbidden, errors.New("没有权限执行此操作"))
			return
		}

		c.Next()
	}
}

// AdminMiddleware 管理员检查中间件
func AdminMiddleware() gin.HandlerFunc {
	return RoleMiddleware(models.RoleAdmin)
}

func hasRole(role string, roles []string) bool {
	if len(roles) == 0 {
		return true
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
