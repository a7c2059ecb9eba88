package activity

import (
	"net/url"

	"github.com/bluemoon-apartment/bluemoon-backend/internal/db/models"
)

// 需要从快照中去掉的顶层字段，嵌套对象不做处理
var (
	queryRedactKeys = []string{"password", "token"}
	bodyRedactKeys  = []string{"password", "token", "accessToken"}
)

// Details 写入 details 列的请求快照
// 请求没有 query / body 时省略对应字段；有但全部被脱敏时保留为 {}
type Details struct {
	Method     string         `json:"method"`
	Path       string         `json:"path"`
	StatusCode int            `json:"statusCode"`
	Query      map[string]any `json:"query,omitzero"`
	Body       map[string]any `json:"body,omitzero"`
}

// BuildDetails 构建脱敏后的请求快照，不会修改传入的 query 和 body
func BuildDetails(method, path string, statusCode int, query url.Values, body map[string]any) Details {
	details := Details{
		Method:     method,
		Path:       path,
		StatusCode: statusCode,
	}

	if len(query) > 0 {
		q := FlattenValues(query)
		for _, key := range queryRedactKeys {
			delete(q, key)
		}
		details.Query = q
	}

	if len(body) > 0 {
		details.Body = RedactBody(body)
	}

	return details
}

// RedactBody 复制 body 并去掉敏感的顶层字段
func RedactBody(body map[string]any) map[string]any {
	b := make(map[string]any, len(body))
	for key, value := range body {
		b[key] = value
	}
	for _, key := range bodyRedactKeys {
		delete(b, key)
	}
	return b
}

// FlattenValues 单值参数转为字符串，多值参数保留为列表
func FlattenValues(values url.Values) map[string]any {
	out := make(map[string]any, len(values))
	for key, vs := range values {
		if len(vs) == 1 {
			out[key] = vs[0]
		} else {
			out[key] = append([]string(nil), vs...)
		}
	}
	return out
}

// StatusFor 2xx 记为 success，其余记为 warning
func StatusFor(statusCode int) string {
	if statusCode < 300 {
		return models.ActivityStatusSuccess
	}
	return models.ActivityStatusWarning
}

// RequestInfo 中间件在响应完成后收集的请求信息
type RequestInfo struct {
	Method     string
	Path       string
	StatusCode int
	Query      url.Values
	Body       map[string]any
	IPAddress  string
	UserAgent  string
}

// NewEvent 根据操作者和请求信息构建一条操作日志
func NewEvent(actor *Actor, req RequestInfo) *models.ActivityLog {
	res := DeriveResource(req.Method, req.Path)
	details := BuildDetails(req.Method, req.Path, req.StatusCode, req.Query, req.Body)

	return &models.ActivityLog{
		UserID:       actor.ID,
		Username:     actor.Label(),
		Action:       res.Action,
		ResourceType: res.ResourceType,
		ResourceID:   res.ResourceID,
		Details:      marshalDetails(details),
		IPAddress:    req.IPAddress,
		UserAgent:    req.UserAgent,
		Status:       StatusFor(req.StatusCode),
	}
}
