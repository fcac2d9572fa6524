package controller

import (
	"github.com/gin-gonic/gin"

	"canteen_order_v1/internal/api/dto"
	"canteen_order_v1/internal/service"
)

// ==================== OrderController 订单控制器 ====================

// OrderController 周订单控制器
type OrderController struct {
	orderService *service.OrderService
}

// NewOrderController 创建订单控制器
func NewOrderController(orderService *service.OrderService) *OrderController {
	return &OrderController{orderService: orderService}
}

// ==================== 员工 ====================

// Eligibility 订餐资格
// @Summary 当前是否处于订餐窗口，以及是否已有下周订单
// @Tags Order
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.EligibilityResponse
// @Router /orders/eligibility [get]
func (ctrl *OrderController) Eligibility(c *gin.Context) {
	resp, err := ctrl.orderService.Eligibility(c.Request.Context(), principalOf(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "success", resp)
}

// Create 提交周订单
// @Summary 提交下周订单（周一至周五各一份菜单）
// @Tags Order
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateOrderRequest true "下单请求"
// @Success 201 {object} model.Order
// @Failure 400 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{} "不在订餐时间 / 本周已下单"
// @Router /orders [post]
func (ctrl *OrderController) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	order, err := ctrl.orderService.CreateOrder(c.Request.Context(), principalOf(c), &req)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, "下单成功", order)
}

// MyWeekOrder 我的下周订单
// @Summary 当前用户目标周的订单，没有时 data 为 null
// @Tags Order
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.Order
// @Router /orders/me [get]
func (ctrl *OrderController) MyWeekOrder(c *gin.Context) {
	order, err := ctrl.orderService.MyWeekOrder(c.Request.Context(), principalOf(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "success", order)
}

// Get 订单详情
// @Summary 订单详情
// @Tags Order
// @Produce json
// @Security BearerAuth
// @Param id path int true "订单ID"
// @Success 200 {object} model.Order
// @Failure 404 {object} map[string]interface{}
// @Router /orders/{id} [get]
func (ctrl *OrderController) Get(c *gin.Context) {
	id, valid := parseIDParam(c, "id")
	if !valid {
		return
	}

	order, err := ctrl.orderService.GetOrder(c.Request.Context(), principalOf(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "success", order)
}

// History 订单状态变更记录
// @Summary 订单状态变更记录
// @Tags Order
// @Produce json
// @Security BearerAuth
// @Param id path int true "订单ID"
// @Success 200 {array} model.OrderStatusLog
// @Router /orders/{id}/history [get]
func (ctrl *OrderController) History(c *gin.Context) {
	id, valid := parseIDParam(c, "id")
	if !valid {
		return
	}

	logs, err := ctrl.orderService.StatusHistory(c.Request.Context(), principalOf(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "success", logs)
}

// Delete 删除订单
// @Summary 删除订单（员工仅可删除自己待审核的订单）
// @Tags Order
// @Security BearerAuth
// @Param id path int true "订单ID"
// @Success 200 {object} map[string]interface{}
// @Router /orders/{id} [delete]
func (ctrl *OrderController) Delete(c *gin.Context) {
	id, valid := parseIDParam(c, "id")
	if !valid {
		return
	}

	if err := ctrl.orderService.Delete(c.Request.Context(), principalOf(c), id); err != nil {
		fail(c, err)
		return
	}
	ok(c, "删除成功", nil)
}

// ==================== 管理员 ====================

// List 订单列表
// @Summary 订单列表（按周 / 状态 / 类型 / 用户过滤）
// @Tags Order
// @Produce json
// @Security BearerAuth
// @Param week query string false "目标周任意日期 YYYY-MM-DD"
// @Param status query string false "pending / approved / rejected"
// @Param type query string false "normal / guest / overtime / backup"
// @Param user_id query int false "用户ID"
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} dto.OrderListResponse
// @Router /orders [get]
func (ctrl *OrderController) List(c *gin.Context) {
	var req dto.OrderListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}

	resp, err := ctrl.orderService.ListOrders(c.Request.Context(), principalOf(c), &req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "success", resp)
}

// Approve 审核通过
// @Summary 审核通过（仅待审核订单）
// @Tags Order
// @Produce json
// @Security BearerAuth
// @Param id path int true "订单ID"
// @Success 200 {object} model.Order
// @Router /orders/{id}/approve [post]
func (ctrl *OrderController) Approve(c *gin.Context) {
	id, valid := parseIDParam(c, "id")
	if !valid {
		return
	}

	order, err := ctrl.orderService.Approve(c.Request.Context(), principalOf(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "审核成功", order)
}

// Reject 驳回
// @Summary 驳回订单（仅待审核订单）
// @Tags Order
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "订单ID"
// @Param body body dto.RejectOrderRequest false "驳回说明"
// @Success 200 {object} model.Order
// @Router /orders/{id}/reject [post]
func (ctrl *OrderController) Reject(c *gin.Context) {
	id, valid := parseIDParam(c, "id")
	if !valid {
		return
	}

	var req dto.RejectOrderRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}

	order, err := ctrl.orderService.Reject(c.Request.Context(), principalOf(c), id, req.Notes)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "已驳回", order)
}

// BulkApprove 批量审核
// @Summary 批量审核通过，逐个返回结果
// @Tags Order
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.BulkApproveRequest true "订单ID列表"
// @Success 200 {object} dto.BulkApproveResult
// @Router /orders/bulk-approve [post]
func (ctrl *OrderController) BulkApprove(c *gin.Context) {
	var req dto.BulkApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := ctrl.orderService.BulkApprove(c.Request.Context(), principalOf(c), req.OrderIDs)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "success", result)
}

// UpdateStatus 强制修改状态
// @Summary 管理员强制修改订单状态（记录审计）
// @Tags Order
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "订单ID"
// @Param body body dto.UpdateOrderStatusRequest true "目标状态"
// @Success 200 {object} model.Order
// @Router /orders/{id}/status [patch]
func (ctrl *OrderController) UpdateStatus(c *gin.Context) {
	id, valid := parseIDParam(c, "id")
	if !valid {
		return
	}

	var req dto.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	order, err := ctrl.orderService.UpdateStatus(c.Request.Context(), principalOf(c), id, req.Status, req.Reason)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "状态已更新", order)
}
