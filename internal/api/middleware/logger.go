package middleware

import (
	"time"

	"github.com/bluemoon-apartment/bluemoon-backend/internal/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LoggerMiddleware 日志中间件
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 开始时间
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		// 处理请求
		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		// 日志记录字段
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.String("ip", c.ClientIP()),
			zap.String("user-agent", c.Request.UserAgent()),
			zap.Int("status", status),
			zap.Duration("latency", latency),
			zap.String("request_id", c.GetString(ContextKeyRequestID)),
		}

		// 添加用户信息
		if actor, ok := CurrentActor(c); ok {
			fields = append(fields,
				zap.String("user_id", actor.ID),
				zap.String("username", actor.Label()))
		}

		// 记录错误信息
		if len(c.Errors) > 0 {
			for _, e := range c.Errors {
				fields = append(fields, zap.String("error", e.Error()))
			}
			logger.Error("请求处理失败", fields...)
			return
		}

		// 根据状态码决定日志级别
		if status >= 500 {
			logger.Error("服务器错误", fields...)
		} else if status >= 400 {
			logger.Warn("客户端错误", fields...)
		} else {
			logger.Info("请求处理成功", fields...)
		}
	}
}
