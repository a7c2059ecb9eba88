package activity

import (
	"net/http"
	"regexp"
	"strings"
)

// UnknownResource 路径中没有可用段时的资源类型
const UnknownResource = "unknown"

var (
	digitsPattern = regexp.MustCompile(`^[0-9]+$`)
	uuidPattern   = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
)

// 路径中包含这些关键字时直接作为 action，按顺序匹配
var specialActions = []string{"login", "logout", "register"}

// Resource 从请求方法和路径派生的资源描述
type Resource struct {
	Action       string
	ResourceType string
	ResourceID   *string
}

// DeriveResource 根据请求方法和路径派生 action、资源类型和资源ID
// 例如 DELETE /api/vehicles/12 => vehicles_delete, vehicles, 12
func DeriveResource(method, path string) Resource {
	parts := pathSegments(path)

	res := Resource{ResourceType: UnknownResource}
	if len(parts) > 0 {
		res.ResourceType = parts[0]
	}
	if len(parts) > 1 && isResourceID(parts[1]) {
		id := parts[1]
		res.ResourceID = &id
	}

	for _, special := range specialActions {
		if strings.Contains(path, special) {
			res.Action = special
			return res
		}
	}

	res.Action = res.ResourceType + "_" + verbFor(method)
	return res
}

// pathSegments 按 / 切分路径，去掉空段和开头的 api 前缀
func pathSegments(path string) []string {
	raw := strings.Split(path, "/")
	parts := make([]string, 0, len(raw))
	for _, p := range raw {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) > 0 && parts[0] == "api" {
		parts = parts[1:]
	}
	return parts
}

// isResourceID 纯数字或标准 8-4-4-4-12 格式的 UUID
func isResourceID(s string) bool {
	return digitsPattern.MatchString(s) || uuidPattern.MatchString(s)
}

func verbFor(method string) string {
	switch strings.ToUpper(method) {
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	case http.MethodGet:
		return "view"
	default:
		return strings.ToLower(method)
	}
}
