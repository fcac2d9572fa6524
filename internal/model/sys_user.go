package model

import "time"

// 系统角色
const (
	RoleAdmin         = "admin"          // 管理员
	RoleGeneralAffair = "general_affair" // 总务（GA）
	RoleVendor        = "vendor"         // 餐饮供应商
	RoleEmployee      = "employee"       // 员工
)

// 用户状态
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// Role 角色
type Role struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"size:50;uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Role) TableName() string {
	return "roles"
}

// SysUser 系统用户（员工 / 供应商 / 管理员）
type SysUser struct {
	BaseModel

	Username string `gorm:"size:100;uniqueIndex;not null" json:"username"`
	Password string `gorm:"size:255;not null" json:"-"` // bcrypt 哈希
	Name     string `gorm:"size:100" json:"name"`
	Email    string `gorm:"size:100" json:"email"`

	RoleID       int64  `gorm:"index;not null" json:"role_id"`
	DepartmentID *int64 `gorm:"index" json:"department_id,omitempty"`
	LocationID   *int64 `gorm:"index" json:"location_id,omitempty"`

	Status string `gorm:"size:20;index;default:'active'" json:"status"`

	Role *Role `gorm:"foreignKey:RoleID" json:"role,omitempty"`
}

func (SysUser) TableName() string {
	return "sys_users"
}

// IsActive 是否启用
func (u *SysUser) IsActive() bool {
	return u.Status == UserStatusActive
}
