// Package activity 记录用户操作日志（审计事件）。
//
// 请求经过认证后由中间件判断是否需要记录，派生出 action / resource_type /
// resource_id 以及脱敏后的请求快照，然后交给 Recorder 在后台写入存储。
// 写入失败只在本地日志中体现，不会影响请求本身。
package activity

import "context"

// Actor 已认证的操作者
type Actor struct {
	ID       string
	Username string
	Email    string
	Role     string
}

// Label 操作者展示名：优先用户名，其次邮箱
func (a *Actor) Label() string {
	if a.Username != "" {
		return a.Username
	}
	return a.Email
}

type actorKey struct{}

// WithActor 将操作者写入请求上下文
func WithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext 从上下文取出操作者，未认证时返回 false
func ActorFromContext(ctx context.Context) (*Actor, bool) {
	if ctx == nil {
		return nil, false
	}
	actor, ok := ctx.Value(actorKey{}).(*Actor)
	if !ok || actor == nil || actor.ID == "" {
		return nil, false
	}
	return actor, true
}
