package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/bluemoon-apartment/bluemoon-backend/internal/activity"
	"github.com/bluemoon-apartment/bluemoon-backend/internal/db/models"
	"github.com/bluemoon-apartment/bluemoon-backend/internal/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ActivityRecorder 操作日志的后台写入端，由 *activity.Recorder 实现
type ActivityRecorder interface {
	Enqueue(log *models.ActivityLog) error
	Log(ctx context.Context, entry activity.Entry) bool
}

// ActivityLogMiddleware 操作日志中间件
// 处理前保存请求体快照，处理完成后根据最终状态码决定是否记录，写入在后台完成
func ActivityLogMiddleware(recorder ActivityRecorder, policy *activity.Policy, maxBodyBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		method := c.Request.Method
		path := c.Request.URL.Path

		if !policy.Eligible(method, path) {
			c.Next()
			return
		}

		body := snapshotBody(c, maxBodyBytes)

		c.Next()

		actor, hasActor := CurrentActor(c)
		status := c.Writer.Status()
		if !policy.ShouldLog(method, path, status, hasActor) {
			return
		}

		event := activity.NewEvent(actor, activity.RequestInfo{
			Method:     method,
			Path:       path,
			StatusCode: status,
			Query:      c.Request.URL.Query(),
			Body:       body,
			IPAddress:  c.ClientIP(),
			UserAgent:  c.Request.UserAgent(),
		})

		// 队列满或已停止时 Recorder 自己会输出日志，这里不影响响应
		_ = recorder.Enqueue(event)
	}
}

// LogActivity 在处理器中手动记录一条操作日志，IP 和 UA 取自当前请求
func LogActivity(c *gin.Context, recorder ActivityRecorder, entry activity.Entry) bool {
	if entry.IPAddress == "" {
		entry.IPAddress = c.ClientIP()
	}
	if entry.UserAgent == "" {
		entry.UserAgent = c.Request.UserAgent()
	}

	ctx := c.Request.Context()
	if _, ok := activity.ActorFromContext(ctx); !ok {
		if actor, ok := CurrentActor(c); ok {
			ctx = activity.WithActor(ctx, actor)
		}
	}
	return recorder.Log(ctx, entry)
}

// snapshotBody 读取请求体用于记录，处理器仍然可以读到完整的请求体
// 超过 maxBodyBytes 或无法解析为对象时返回 nil
func snapshotBody(c *gin.Context, maxBodyBytes int64) map[string]any {
	req := c.Request
	if req.Body == nil || req.Body == http.NoBody || maxBodyBytes <= 0 {
		return nil
	}

	mediaType, _, _ := mime.ParseMediaType(req.Header.Get("Content-Type"))
	isJSON := mediaType == "" || mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
	isForm := mediaType == "application/x-www-form-urlencoded"
	if !isJSON && !isForm {
		return nil
	}

	buf, err := io.ReadAll(io.LimitReader(req.Body, maxBodyBytes+1))
	// 已读取的部分拼回原始请求体
	req.Body = readCloser{Reader: io.MultiReader(bytes.NewReader(buf), req.Body), Closer: req.Body}
	if err != nil {
		logger.Debug("读取请求体快照失败", zap.Error(err), zap.String("path", req.URL.Path))
		return nil
	}
	if int64(len(buf)) > maxBodyBytes || len(buf) == 0 {
		return nil
	}

	if isForm {
		values, err := url.ParseQuery(string(buf))
		if err != nil {
			return nil
		}
		return activity.FlattenValues(values)
	}

	var body map[string]any
	if err := json.Unmarshal(buf, &body); err != nil {
		return nil
	}
	return body
}

type readCloser struct {
	io.Reader
	io.Closer
}
