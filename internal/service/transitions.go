package service

import "canteen_order_v1/internal/model"

// 订单状态操作
const (
	actionApprove = "approve"
	actionReject  = "reject"
)

// 常规操作允许的起始状态；强制改状态不经过此表
var orderTransitions = map[string][]string{
	actionApprove: {model.OrderStatusPending},
	actionReject:  {model.OrderStatusPending},
}

// 操作完成后的目标状态
var actionTarget = map[string]string{
	actionApprove: model.OrderStatusApproved,
	actionReject:  model.OrderStatusRejected,
}

func validTransition(action, fromStatus string) bool {
	allowed, ok := orderTransitions[action]
	if !ok {
		return false
	}
	for _, status := range allowed {
		if status == fromStatus {
			return true
		}
	}
	return false
}
