package models

import (
	"time"

	"gorm.io/datatypes"
)

// 操作日志状态
const (
	ActivityStatusSuccess = "success"
	ActivityStatusWarning = "warning"
)

// ActivityLog 操作日志（审计事件）模型
// 写入后不再修改，只有保留期清理会删除
type ActivityLog struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	UserID       string         `gorm:"size:64;index;not null" json:"user_id"`
	Username     string         `gorm:"size:255" json:"username"`
	Action       string         `gorm:"size:100;index;not null" json:"action"`       // vehicles_create, login, ...
	ResourceType string         `gorm:"size:50;index;not null" json:"resource_type"` // apartments, bills, vehicles, ...
	ResourceID   *string        `gorm:"size:100" json:"resource_id"`                 // 数字或 UUID，否则为空
	Details      datatypes.JSON `gorm:"type:jsonb" json:"details"`                   // 脱敏后的请求快照
	IPAddress    string         `gorm:"size:64" json:"ip_address"`
	UserAgent    string         `gorm:"type:text" json:"user_agent"`
	Status       string         `gorm:"size:20;index;not null" json:"status"` // success, warning
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`
}

// TableName 指定表名
func (ActivityLog) TableName() string {
	return "activity_logs"
}
