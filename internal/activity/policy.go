package activity

import (
	"net/http"
	"strings"

	"github.com/bluemoon-apartment/bluemoon-backend/internal/config"
)

// Policy 决定一次请求是否需要记录操作日志
type Policy struct {
	actions        map[string]struct{}
	logGetRequests bool
	excludePaths   []string
}

// NewPolicy 根据配置创建记录策略，未配置时使用默认值
func NewPolicy(cfg config.ActivityConfig) *Policy {
	actions := cfg.Actions
	if len(actions) == 0 {
		actions = config.DefaultActivityActions
	}
	excludePaths := cfg.ExcludePaths
	if excludePaths == nil {
		excludePaths = config.DefaultActivityExcludePaths
	}

	p := &Policy{
		actions:        make(map[string]struct{}, len(actions)),
		logGetRequests: cfg.LogGetRequests,
		excludePaths:   excludePaths,
	}
	for _, action := range actions {
		p.actions[strings.ToUpper(action)] = struct{}{}
	}
	return p
}

// Eligible 只看方法和路径；中间件据此决定是否需要预先读取请求体
func (p *Policy) Eligible(method, path string) bool {
	return p.methodAllowed(method) && !p.excluded(path)
}

// ShouldLog 响应完成后的最终判断：需要已认证的操作者且状态码小于 400
func (p *Policy) ShouldLog(method, path string, statusCode int, hasActor bool) bool {
	return hasActor && p.Eligible(method, path) && statusCode < http.StatusBadRequest
}

// methodAllowed 开启 log_get_requests 后不再按方法过滤，HEAD、OPTIONS 等也会记录
func (p *Policy) methodAllowed(method string) bool {
	if _, ok := p.actions[strings.ToUpper(method)]; ok {
		return true
	}
	return p.logGetRequests
}

func (p *Policy) excluded(path string) bool {
	for _, prefix := range p.excludePaths {
		if prefix != "" && strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
