package middleware

import (
	"github.com/bluemoon-apartment/bluemoon-backend/internal/activity"
	"github.com/gin-gonic/gin"
)

// gin.Context 中使用的键
const (
	ContextKeyActor     = "actor"
	ContextKeyUserID    = "userID"
	ContextKeyUsername  = "username"
	ContextKeyRequestID = "requestID"
)

// CurrentActor 获取当前请求的已认证用户
func CurrentActor(c *gin.Context) (*activity.Actor, bool) {
	if actor, ok := activity.ActorFromContext(c.Request.Context()); ok {
		return actor, true
	}
	if v, exists := c.Get(ContextKeyActor); exists {
		if actor, ok := v.(*activity.Actor); ok && actor != nil && actor.ID != "" {
			return actor, true
		}
	}
	return nil, false
}

// setActor 同时写入 gin.Context 和 request context，后者供业务层和手动记录使用
func setActor(c *gin.Context, actor *activity.Actor) {
	c.Set(ContextKeyActor, actor)
	c.Set(ContextKeyUserID, actor.ID)
	c.Set(ContextKeyUsername, actor.Label())
	c.Request = c.Request.WithContext(activity.WithActor(c.Request.Context(), actor))
}
