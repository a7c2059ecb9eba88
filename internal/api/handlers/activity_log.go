package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/bluemoon-apartment/bluemoon-backend/internal/activity"
	"github.com/bluemoon-apartment/bluemoon-backend/internal/api/middleware"
	"github.com/bluemoon-apartment/bluemoon-backend/internal/logger"
	"github.com/bluemoon-apartment/bluemoon-backend/internal/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	defaultPage     = 1
	defaultPageSize = 10
)

// Cleaner 操作日志保留期清理
type Cleaner interface {
	Cleanup(ctx context.Context, olderThan time.Duration) (*activity.CleanupResult, error)
}

// ActivityLogHandler 操作日志处理器
type ActivityLogHandler struct {
	*BaseHandler
	store    activity.Store
	recorder middleware.ActivityRecorder
	cleaner  Cleaner
}

// NewActivityLogHandler 创建操作日志处理器
func NewActivityLogHandler(store activity.Store, recorder middleware.ActivityRecorder, cleaner Cleaner) *ActivityLogHandler {
	return &ActivityLogHandler{
		BaseHandler: NewBaseHandler(),
		store:       store,
		recorder:    recorder,
		cleaner:     cleaner,
	}
}

// ListQuery 操作日志查询参数，时间使用 RFC3339 格式
type ListQuery struct {
	Page         int    `form:"page" validate:"omitempty,min=1"`
	PageSize     int    `form:"page_size" validate:"omitempty,min=1,max=100"`
	UserID       string `form:"user_id" validate:"omitempty,max=64"`
	Username     string `form:"username" validate:"omitempty,max=50"`
	Action       string `form:"action" validate:"omitempty,max=100"`
	ResourceType string `form:"resource_type" validate:"omitempty,max=50"`
	Status       string `form:"status" validate:"omitempty,activity_status"`
	StartTime    string `form:"start_time" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	EndTime      string `form:"end_time" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// Filter 转换为存储层查询条件
func (q *ListQuery) Filter() activity.Filter {
	filter := activity.Filter{
		UserID:       q.UserID,
		Username:     q.Username,
		Action:       q.Action,
		ResourceType: q.ResourceType,
		Status:       q.Status,
		Page:         q.Page,
		PageSize:     q.PageSize,
	}
	if filter.Page <= 0 {
		filter.Page = defaultPage
	}
	if filter.PageSize <= 0 {
		filter.PageSize = defaultPageSize
	}
	if t, err := time.Parse(time.RFC3339, q.StartTime); err == nil {
		filter.StartTime = &t
	}
	if t, err := time.Parse(time.RFC3339, q.EndTime); err == nil {
		filter.EndTime = &t
	}
	return filter
}

// CreateRequest 手动记录操作日志的请求，例如前端导出报表
type CreateRequest struct {
	Action       string         `json:"action" validate:"required,max=100"`
	ResourceType string         `json:"resource_type" validate:"omitempty,max=50"`
	ResourceID   *string        `json:"resource_id" validate:"omitempty,max=100"`
	Details      map[string]any `json:"details"`
	Status       string         `json:"status" validate:"omitempty,activity_status"`
}

// CleanupQuery 清理参数
type CleanupQuery struct {
	Days int `form:"days" validate:"required,min=1,max=3650"`
}

// List 获取操作日志列表（管理员）
func (h *ActivityLogHandler) List(c *gin.Context) {
	var query ListQuery
	if err := utils.BindAndValidate(c, &query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	h.list(c, query.Filter())
}

// Mine 获取当前用户自己的操作日志
func (h *ActivityLogHandler) Mine(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		h.Unauthorized(c, "未登录")
		return
	}

	var query ListQuery
	if err := utils.BindAndValidate(c, &query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	filter := query.Filter()
	filter.UserID = actor.ID
	filter.Username = ""
	h.list(c, filter)
}

func (h *ActivityLogHandler) list(c *gin.Context, filter activity.Filter) {
	logs, total, err := h.store.List(c.Request.Context(), filter)
	if err != nil {
		logger.Error("获取操作日志列表失败", zap.Error(err))
		h.InternalError(c, "获取操作日志列表失败")
		return
	}

	h.Success(c, gin.H{
		"total":     total,
		"page":      filter.Page,
		"page_size": filter.PageSize,
		"items":     logs,
	})
}

// Stats 操作日志统计（管理员）
func (h *ActivityLogHandler) Stats(c *gin.Context) {
	var query ListQuery
	if err := utils.BindAndValidate(c, &query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := query.Filter()
	filter.Page, filter.PageSize = 0, 0
	stats, err := h.store.Stats(c.Request.Context(), filter)
	if err != nil {
		logger.Error("统计操作日志失败", zap.Error(err))
		h.InternalError(c, "统计操作日志失败")
		return
	}

	h.Success(c, stats)
}

// Create 手动记录一条操作日志，写入在后台完成
func (h *ActivityLogHandler) Create(c *gin.Context) {
	var req CreateRequest
	if err := utils.BindAndValidate(c, &req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var details map[string]any
	if req.Details != nil {
		details = activity.RedactBody(req.Details)
	}

	accepted := middleware.LogActivity(c, h.recorder, activity.Entry{
		Action:       req.Action,
		ResourceType: req.ResourceType,
		ResourceID:   req.ResourceID,
		Details:      details,
		Status:       req.Status,
	})
	if !accepted {
		utils.ResponseError(c, utils.CodeQueueFull, nil)
		return
	}

	h.Accepted(c, gin.H{"action": req.Action})
}

// Cleanup 删除超过保留天数的操作日志（管理员）
func (h *ActivityLogHandler) Cleanup(c *gin.Context) {
	var query CleanupQuery
	if err := utils.BindAndValidate(c, &query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.cleaner.Cleanup(c.Request.Context(), time.Duration(query.Days)*24*time.Hour)
	if err != nil {
		if errors.Is(err, activity.ErrInvalidRetention) {
			h.BadRequest(c, err.Error())
			return
		}
		logger.Error("清理操作日志失败", zap.Error(err), zap.Int("days", query.Days))
		h.InternalError(c, "清理操作日志失败")
		return
	}

	// 清理接口本身在排除路径下，这里手动记一笔
	middleware.LogActivity(c, h.recorder, activity.Entry{
		Action:       "activity_logs_cleanup",
		ResourceType: "activity-logs",
		Details: map[string]any{
			"days":     query.Days,
			"cutoff":   result.Cutoff,
			"deleted":  result.Deleted,
			"archived": result.Archived,
		},
	})
	h.Success(c, result)
}
