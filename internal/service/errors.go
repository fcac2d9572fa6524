package service

import (
	"errors"
	"fmt"
	"time"

	"canteen_order_v1/pkg/utils"
)

// ==================== 业务错误 ====================

var (
	ErrOrderingWindowClosed = errors.New("当前不在订餐时间内（周四至周六 12:00 前）")
	ErrDuplicateWeeklyOrder = errors.New("本周已提交过订单")
	ErrInvalidMenuSelection = errors.New("菜单选择无效")
	ErrIncompleteSubmission = errors.New("需提交周一至周五共 5 天的菜单")
	ErrNotFound             = errors.New("记录不存在")
	ErrReferentialIntegrity = errors.New("关联数据不存在")
	ErrInvalidStatus        = errors.New("无效的状态")
	ErrInvalidTransition    = errors.New("当前状态不允许该操作")
	ErrForbidden            = errors.New("无权限操作")
	ErrValidation           = errors.New("参数校验失败")

	ErrInvalidCredentials = errors.New("用户名或密码错误")
	ErrUserDisabled       = errors.New("用户已禁用")
	ErrInvalidToken       = errors.New("Token 无效")
	ErrUsernameExists     = errors.New("用户名已存在")
)

// MenuSelectionError 某一天的菜单选择不合法
type MenuSelectionError struct {
	Day    time.Time
	Reason string
}

func (e *MenuSelectionError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrInvalidMenuSelection.Error(), utils.FormatDate(e.Day), e.Reason)
}

func (e *MenuSelectionError) Unwrap() error {
	return ErrInvalidMenuSelection
}

// NotFoundError 资源不存在
type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s 不存在: %d", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// IntegrityError 外键指向的数据不存在
type IntegrityError struct {
	Field string
	ID    int64
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("%s: %s=%d", ErrReferentialIntegrity.Error(), e.Field, e.ID)
}

func (e *IntegrityError) Unwrap() error {
	return ErrReferentialIntegrity
}
