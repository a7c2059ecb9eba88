package handlers

import (
	"context"
	"time"

	"github.com/bluemoon-apartment/bluemoon-backend/internal/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// HealthHandler 健康检查
type HealthHandler struct {
	*BaseHandler
	db *gorm.DB
}

// NewHealthHandler 创建健康检查处理器，db 为 nil 时不检查数据库
func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{
		BaseHandler: NewBaseHandler(),
		db:          db,
	}
}

// Check 健康检查
func (h *HealthHandler) Check(c *gin.Context) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		sqlDB, err := h.db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			logger.Error("数据库健康检查失败", zap.Error(err))
			h.Error(c, 503, "数据库不可用")
			return
		}
	}

	h.Success(c, gin.H{"status": "ok"})
}
