package middleware

import (
	"errors"
	"runtime/debug"

	"github.com/bluemoon-apartment/bluemoon-backend/internal/logger"
	"github.com/bluemoon-apartment/bluemoon-backend/internal/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RecoveryMiddleware 错误恢复中间件
func RecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				// 记录堆栈信息
				logger.Error("服务发生panic",
					zap.Any("error", err),
					zap.String("stack", string(debug.Stack())),
					zap.String("path", c.Request.URL.Path),
					zap.String("method", c.Request.Method),
					zap.String("ip", c.ClientIP()),
					zap.String("request_id", c.GetString(ContextKeyRequestID)),
				)

				utils.AbortWithError(c, utils.CodeInternalError, errors.New("服务器内部错误"))
			}
		}()
		c.Next()
	}
}
