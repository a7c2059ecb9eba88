package utils

import (
	"net/http"

	"github.com/bluemoon-apartment/bluemoon-backend/internal/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// 定义状态码
const (
	CodeSuccess       = 200 // 成功
	CodeAccepted      = 202 // 已接受，异步处理
	CodeInvalidParams = 400 // 参数错误
	CodeUnauthorized  = 401 // 未授权
	CodeForbidden     = 403 // 禁止访问
	CodeNotFound      = 404 // 资源不存在
	CodeInternalError = 500 // 服务器内部错误

	CodeTokenExpired = 40101 // 令牌已过期
	CodeQueueFull    = 50301 // 操作日志队列已满
)

// 对应的消息
var codeMsgMap = map[int]string{
	CodeSuccess:       "操作成功",
	CodeAccepted:      "已接受",
	CodeInvalidParams: "参数错误",
	CodeUnauthorized:  "未授权",
	CodeForbidden:     "禁止访问",
	CodeNotFound:      "资源不存在",
	CodeInternalError: "服务器内部错误",

	CodeTokenExpired: "认证令牌已过期",
	CodeQueueFull:    "服务繁忙，请稍后重试",
}

// HTTPStatus 业务状态码对应的 HTTP 状态码
// 审计中间件依赖真实的 HTTP 状态码判断请求是否成功
func HTTPStatus(code int) int {
	switch {
	case code >= 100 && code < 600:
		return code
	case code >= 10000 && code < 60000:
		return code / 100
	default:
		return http.StatusInternalServerError
	}
}

// Message 获取状态码对应的默认消息
func Message(code int) string {
	msg, ok := codeMsgMap[code]
	if !ok {
		return "未知错误"
	}
	return msg
}

// ResponseWithJSON 返回JSON响应
func ResponseWithJSON(c *gin.Context, code int, data interface{}) {
	c.JSON(HTTPStatus(code), Response{
		Code:    code,
		Message: Message(code),
		Data:    data,
	})
}

// ResponseWithData 返回成功响应，包含数据
func ResponseWithData(c *gin.Context, data interface{}) {
	ResponseWithJSON(c, CodeSuccess, data)
}

// ResponseAccepted 返回 202，请求已进入后台处理
func ResponseAccepted(c *gin.Context, data interface{}) {
	ResponseWithJSON(c, CodeAccepted, data)
}

// ResponseSuccess 返回成功响应，不包含数据
func ResponseSuccess(c *gin.Context) {
	ResponseWithJSON(c, CodeSuccess, nil)
}

// ResponseWithMsgAndData 返回带自定义消息和数据的成功响应
func ResponseWithMsgAndData(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: message,
		Data:    data,
	})
}

// ResponseError 返回错误响应
func ResponseError(c *gin.Context, code int, err error) {
	msg := Message(code)

	// 如果提供了错误信息，则使用错误信息
	if err != nil {
		msg = err.Error()
	}

	status := HTTPStatus(code)
	fields := []zap.Field{
		zap.Int("code", code),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.String("message", msg),
	}
	if status >= http.StatusInternalServerError {
		logger.Error("API错误响应", fields...)
	} else {
		logger.Warn("API错误响应", fields...)
	}

	c.JSON(status, Response{
		Code:    code,
		Message: msg,
	})
}

// AbortWithError 返回错误响应并终止后续处理
func AbortWithError(c *gin.Context, code int, err error) {
	ResponseError(c, code, err)
	c.Abort()
}

// ResponseBadRequest 返回参数错误响应
func ResponseBadRequest(c *gin.Context, err error) {
	ResponseError(c, CodeInvalidParams, err)
}

// ResponseUnauthorized 返回未授权响应
func ResponseUnauthorized(c *gin.Context, err error) {
	ResponseError(c, CodeUnauthorized, err)
}

// ResponseForbidden 返回禁止访问响应
func ResponseForbidden(c *gin.Context, err error) {
	ResponseError(c, CodeForbidden, err)
}

// ResponseNotFound 返回资源不存在响应
func ResponseNotFound(c *gin.Context, err error) {
	ResponseError(c, CodeNotFound, err)
}

// ResponseInternalError 返回服务器内部错误响应
func ResponseInternalError(c *gin.Context, err error) {
	ResponseError(c, CodeInternalError, err)
}
