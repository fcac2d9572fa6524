package model

import (
	"time"

	"gorm.io/datatypes"
)

// ==================== 订单常量 ====================

// 订单状态
const (
	OrderStatusPending  = "pending"  // 待审核
	OrderStatusApproved = "approved" // 已通过
	OrderStatusRejected = "rejected" // 已驳回
)

// 订单类型
const (
	OrderTypeNormal   = "normal"   // 员工自助下单
	OrderTypeGuest    = "guest"    // 客餐
	OrderTypeOvertime = "overtime" // 加班餐
	OrderTypeBackup   = "backup"   // 系统补单
)

// 周订单占位：同一用户同一周最多一个 primary 订单和一个 backup 订单
const (
	OrderSlotPrimary = "primary"
	OrderSlotBackup  = "backup"
)

// IsValidOrderStatus 校验订单状态值
func IsValidOrderStatus(status string) bool {
	switch status {
	case OrderStatusPending, OrderStatusApproved, OrderStatusRejected:
		return true
	}
	return false
}

// SlotForType 订单类型对应的周占位
func SlotForType(orderType string) string {
	if orderType == OrderTypeBackup {
		return OrderSlotBackup
	}
	return OrderSlotPrimary
}

// ==================== Order 周订单 ====================

// Order 员工某一目标周的订餐
// (user_id, week_start, slot) 唯一，防止并发重复下单
type Order struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex:idx_orders_user_week_slot,priority:1" json:"user_id"`
	WeekStart time.Time `gorm:"type:date;not null;index;uniqueIndex:idx_orders_user_week_slot,priority:2" json:"week_start"`
	Slot      string    `gorm:"size:16;not null;uniqueIndex:idx_orders_user_week_slot,priority:3" json:"slot"`

	OrderDate time.Time `gorm:"not null" json:"order_date"`
	Type      string    `gorm:"size:16;index;not null" json:"type"`
	Notes     string    `gorm:"type:text" json:"notes"`
	Status    string    `gorm:"size:16;index;default:'pending'" json:"status"`

	// 审计字段
	CreatedBy int64     `json:"created_by"`
	UpdatedBy int64     `json:"updated_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 关联
	User    *SysUser      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Details []OrderDetail `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"details,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

// IsBackup 是否系统补单
func (o *Order) IsBackup() bool {
	return o.Type == OrderTypeBackup
}

// IsPending 是否待审核
func (o *Order) IsPending() bool {
	return o.Status == OrderStatusPending
}

// ==================== OrderDetail 每日明细 ====================

// OrderDetail 订单某一天的菜单选择
type OrderDetail struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID    int64     `gorm:"index;not null" json:"order_id"`
	Day        time.Time `gorm:"type:date;index;not null" json:"day"`
	ShiftID    int64     `gorm:"index;not null" json:"shift_id"`
	MealMenuID int64     `gorm:"index;not null" json:"meal_menu_id"`
	CreatedAt  time.Time `json:"created_at"`

	Shift    *Shift    `gorm:"foreignKey:ShiftID" json:"shift,omitempty"`
	MealMenu *MealMenu `gorm:"foreignKey:MealMenuID" json:"meal_menu,omitempty"`
}

func (OrderDetail) TableName() string {
	return "order_details"
}

// ==================== OrderStatusLog 状态变更记录 ====================

// OrderStatusLog 订单状态变更审计
// Forced=true 表示管理员强制改状态（绕过正常流转）
type OrderStatusLog struct {
	ID         int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID    int64             `gorm:"index;not null" json:"order_id"`
	FromStatus string            `gorm:"size:16" json:"from_status"`
	ToStatus   string            `gorm:"size:16;not null" json:"to_status"`
	ActorID    int64             `gorm:"index" json:"actor_id"`
	Forced     bool              `gorm:"default:false" json:"forced"`
	Reason     string            `gorm:"size:500" json:"reason"`
	Detail     datatypes.JSONMap `json:"detail,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

func (OrderStatusLog) TableName() string {
	return "order_status_logs"
}
