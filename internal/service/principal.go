package service

import "canteen_order_v1/internal/model"

// Principal 已认证的调用方，由认证中间件解析后传入
type Principal struct {
	UserID int64
	Role   string
}

// System 系统任务（定时补单等）使用的调用方
var System = Principal{Role: model.RoleAdmin}

// IsAdmin 是否管理员
func (p Principal) IsAdmin() bool {
	return p.Role == model.RoleAdmin
}

// IsBackOffice 管理员或总务
func (p Principal) IsBackOffice() bool {
	return p.Role == model.RoleAdmin || p.Role == model.RoleGeneralAffair
}

// IsVendor 是否供应商账号
func (p Principal) IsVendor() bool {
	return p.Role == model.RoleVendor
}
