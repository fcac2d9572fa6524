package dto

// ==================== 主数据 ====================

// CreateShiftRequest 创建班次
type CreateShiftRequest struct {
	Name    string `json:"name" binding:"required,max=50"`
	TimeOn  string `json:"time_on" binding:"omitempty,hhmm"`
	StartAt string `json:"start_at" binding:"omitempty,hhmm"`
	EndAt   string `json:"end_at" binding:"omitempty,hhmm"`
}

// CreateLocationRequest 创建地点
type CreateLocationRequest struct {
	Name    string `json:"name" binding:"required,max=100"`
	Address string `json:"address" binding:"max=255"`
}

// CreateDepartmentRequest 创建部门
type CreateDepartmentRequest struct {
	Name       string `json:"name" binding:"required,max=100"`
	LocationID int64  `json:"location_id" binding:"required,gt=0"`
}

// CreateVendorRequest 创建供应商经营单元
type CreateVendorRequest struct {
	UserID     int64  `json:"user_id" binding:"required,gt=0"`
	Name       string `json:"name" binding:"required,max=100"`
	LocationID int64  `json:"location_id" binding:"required,gt=0"`
	ShiftID    int64  `json:"shift_id" binding:"required,gt=0"`
	Address    string `json:"address" binding:"max=255"`
}

// VendorListRequest 供应商列表
type VendorListRequest struct {
	ShiftID    int64  `form:"shift_id"`
	LocationID int64  `form:"location_id"`
	Status     string `form:"status" binding:"omitempty,oneof=active inactive"`
}

// UpdateRoleRequest 角色改名
type UpdateRoleRequest struct {
	Name string `json:"name" binding:"required,max=50"`
}
