package models

// 角色
const (
	RoleAdmin    = "admin"
	RoleResident = "resident"
)

// Profile 用户资料，由身份服务的用户ID关联
type Profile struct {
	Model
	ID          string `gorm:"primaryKey;size:64" json:"id"`
	Username    string `gorm:"size:50;uniqueIndex" json:"username"`
	Email       string `gorm:"size:100;uniqueIndex;not null" json:"email"`
	FullName    string `gorm:"size:100" json:"full_name"`
	Role        string `gorm:"size:20;not null;default:resident" json:"role"`
	ApartmentID *uint  `json:"apartment_id,omitempty"`
}

// TableName 指定表名
func (Profile) TableName() string {
	return "profiles"
}

// IsAdmin 是否管理员
func (p *Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}
