package dto

import "time"

// ==================== 下单 ====================

// OrderEntryRequest 某一天的菜单选择
type OrderEntryRequest struct {
	Day        string `json:"day" binding:"required,date"`
	ShiftID    int64  `json:"shift_id" binding:"omitempty,gt=0"` // 为空时使用订单班次
	MealMenuID int64  `json:"meal_menu_id" binding:"required,gt=0"`
}

// CreateOrderRequest 提交周订单
type CreateOrderRequest struct {
	ShiftID int64               `json:"shift_id" binding:"required,gt=0"`
	Entries []OrderEntryRequest `json:"entries" binding:"required,dive"`
	Notes   string              `json:"notes" binding:"max=500"`
}

// ==================== 审核 ====================

// RejectOrderRequest 驳回订单
type RejectOrderRequest struct {
	Notes string `json:"notes" binding:"max=500"`
}

// BulkApproveRequest 批量审核
type BulkApproveRequest struct {
	OrderIDs []int64 `json:"order_ids" binding:"required,min=1,max=500,dive,gt=0"`
}

// BulkApproveItem 单个订单的审核结果
type BulkApproveItem struct {
	OrderID int64  `json:"order_id"`
	OK      bool   `json:"ok"`
	Changed bool   `json:"changed"`
	Error   string `json:"error,omitempty"`
}

// BulkApproveResult 批量审核结果
type BulkApproveResult struct {
	Updated int               `json:"updated"`
	Failed  int               `json:"failed"`
	Results []BulkApproveItem `json:"results"`
}

// UpdateOrderStatusRequest 管理员强制修改状态
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required,order_status"`
	Reason string `json:"reason" binding:"max=500"`
}

// ==================== 查询 ====================

// OrderListRequest 订单列表请求
type OrderListRequest struct {
	UserID   int64  `form:"user_id"`
	Week     string `form:"week" binding:"omitempty,date"`
	Status   string `form:"status" binding:"omitempty,order_status"`
	Type     string `form:"type" binding:"omitempty,oneof=normal guest overtime backup"`
	Page     int    `form:"page,default=1"`
	PageSize int    `form:"page_size,default=20" binding:"max=200"`
}

// OrderListResponse 订单列表响应
type OrderListResponse struct {
	List  interface{} `json:"list"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
}

// EligibilityResponse 订餐资格
type EligibilityResponse struct {
	Open           bool      `json:"open"`
	Now            time.Time `json:"now"`
	TargetWeek     string    `json:"target_week"`
	OpensAt        time.Time `json:"opens_at"`
	ClosesAt       time.Time `json:"closes_at"`
	HasOrder       bool      `json:"has_order"`
	OrderID        int64     `json:"order_id,omitempty"`
	HasBackupOrder bool      `json:"has_backup_order"`
}
