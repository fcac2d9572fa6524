package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"canteen_order_v1/internal/api/dto"
	"canteen_order_v1/internal/model"
	"canteen_order_v1/internal/repository"
	"canteen_order_v1/pkg/database"
	"canteen_order_v1/pkg/utils"
)

var tracer = otel.Tracer("canteen_order_v1/internal/service")

// ==================== OrderService 周订单服务 ====================

// OrderService 周订单的创建、审核与查询
type OrderService struct {
	uow    *repository.OrderUnitOfWork
	shifts repository.ShiftRepository
	clock  utils.Clock
	log    *zap.Logger
}

// NewOrderService 创建订单服务
func NewOrderService(
	uow *repository.OrderUnitOfWork,
	shifts repository.ShiftRepository,
	clock utils.Clock,
	log *zap.Logger,
) *OrderService {
	if log == nil {
		log = zap.NewNop()
	}
	return &OrderService{
		uow:    uow,
		shifts: shifts,
		clock:  clock,
		log:    log,
	}
}

// orderEntry 校验后的单日选择
type orderEntry struct {
	Day        time.Time
	ShiftID    int64
	MealMenuID int64
}

// ==================== 下单 ====================

// CreateOrder 员工提交下周的周订单
// 订单与五条明细在同一事务内写入，任一校验失败都不会落库
func (s *OrderService) CreateOrder(ctx context.Context, p Principal, req *dto.CreateOrderRequest) (*model.Order, error) {
	ctx, span := tracer.Start(ctx, "OrderService.CreateOrder")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("user_id", p.UserID),
		attribute.Int64("shift_id", req.ShiftID),
	)

	now := s.clock.Now()
	if !utils.IsOrderingOpen(now) {
		return nil, ErrOrderingWindowClosed
	}
	week := utils.NextMonday(now)

	entries, err := normalizeEntries(req, week)
	if err != nil {
		return nil, err
	}

	shift, err := s.shifts.GetByID(ctx, req.ShiftID)
	if err != nil {
		return nil, fmt.Errorf("查询班次失败: %w", err)
	}
	if shift == nil {
		return nil, &NotFoundError{Resource: "shift", ID: req.ShiftID}
	}

	order := &model.Order{
		UserID:    p.UserID,
		WeekStart: week,
		OrderDate: now,
		Type:      model.OrderTypeNormal,
		Notes:     req.Notes,
		Status:    model.OrderStatusPending,
		CreatedBy: p.UserID,
		UpdatedBy: p.UserID,
	}

	var superseded int64
	err = s.uow.Transaction(ctx, func(tx *repository.OrderUnitOfWork) error {
		// 与补单互斥，先锁用户再检查
		if err := tx.Orders.LockUser(ctx, p.UserID); err != nil {
			return fmt.Errorf("锁定用户失败: %w", err)
		}
		existing, err := tx.Orders.FindByUserWeekSlot(ctx, p.UserID, week, model.OrderSlotPrimary)
		if err != nil {
			return fmt.Errorf("查询周订单失败: %w", err)
		}
		if existing != nil {
			return ErrDuplicateWeeklyOrder
		}

		if err := validateEntries(ctx, tx.Menus, entries); err != nil {
			return err
		}

		// 自助订单取代同周的系统补单
		superseded, err = tx.Orders.DeleteByUserWeekSlot(ctx, p.UserID, week, model.OrderSlotBackup)
		if err != nil {
			return fmt.Errorf("清理补单失败: %w", err)
		}

		return persistOrder(ctx, tx, order, entries, "员工下单")
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	s.log.Info("周订单已创建",
		zap.Int64("order_id", order.ID),
		zap.Int64("user_id", p.UserID),
		zap.String("week", utils.FormatDate(week)),
		zap.Int64("superseded_backup", superseded),
	)

	created, err := s.uow.Orders.GetByIDWithDetails(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("查询订单失败: %w", err)
	}
	return created, nil
}

// normalizeEntries 校验提交的五天选择：每个工作日恰好一条且落在目标周内
func normalizeEntries(req *dto.CreateOrderRequest, week time.Time) ([]orderEntry, error) {
	if len(req.Entries) != utils.WorkDays {
		return nil, fmt.Errorf("%w: 收到 %d 天", ErrIncompleteSubmission, len(req.Entries))
	}

	seen := make(map[string]struct{}, utils.WorkDays)
	entries := make([]orderEntry, 0, utils.WorkDays)
	for _, e := range req.Entries {
		day, err := utils.ParseDate(e.Day)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		day = utils.DateOf(day)
		if !utils.InWeek(day, week) {
			return nil, &MenuSelectionError{Day: day, Reason: "不在目标周内"}
		}

		key := utils.FormatDate(day)
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: 日期重复 %s", ErrIncompleteSubmission, key)
		}
		seen[key] = struct{}{}

		shiftID := e.ShiftID
		if shiftID == 0 {
			shiftID = req.ShiftID
		}
		if shiftID != req.ShiftID {
			return nil, &MenuSelectionError{Day: day, Reason: "班次与订单班次不一致"}
		}

		entries = append(entries, orderEntry{Day: day, ShiftID: shiftID, MealMenuID: e.MealMenuID})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Day.Before(entries[j].Day)
	})
	return entries, nil
}

// validateEntries 菜单必须存在、日期一致、已审核通过，且供应商班次与所选班次一致
func validateEntries(ctx context.Context, menus repository.MealMenuRepository, entries []orderEntry) error {
	ids := make([]int64, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.MealMenuID)
	}

	list, err := menus.GetByIDsWithVendor(ctx, ids)
	if err != nil {
		return fmt.Errorf("查询菜单失败: %w", err)
	}
	byID := make(map[int64]*model.MealMenu, len(list))
	for i := range list {
		byID[list[i].ID] = &list[i]
	}

	for _, e := range entries {
		menu, ok := byID[e.MealMenuID]
		switch {
		case !ok:
			return &MenuSelectionError{Day: e.Day, Reason: fmt.Sprintf("菜单 %d 不存在", e.MealMenuID)}
		case !utils.DateOf(menu.ForDate).Equal(e.Day):
			return &MenuSelectionError{Day: e.Day, Reason: fmt.Sprintf("菜单 %d 不是当天的菜单", e.MealMenuID)}
		case !menu.IsApproved():
			return &MenuSelectionError{Day: e.Day, Reason: fmt.Sprintf("菜单 %d 未审核通过", e.MealMenuID)}
		case menu.Vendor == nil || menu.Vendor.ShiftID != e.ShiftID:
			return &MenuSelectionError{Day: e.Day, Reason: fmt.Sprintf("菜单 %d 不属于所选班次", e.MealMenuID)}
		}
	}
	return nil
}

// persistOrder 在事务内写入订单、逐条写入明细并记录初始状态
// 员工下单与系统补单共用
func persistOrder(ctx context.Context, tx *repository.OrderUnitOfWork, order *model.Order, entries []orderEntry, reason string) error {
	// 只有补单允许缺天
	if !order.IsBackup() && len(entries) != utils.WorkDays {
		return ErrIncompleteSubmission
	}
	order.Slot = model.SlotForType(order.Type)

	if err := tx.Orders.Create(ctx, order); err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicateWeeklyOrder
		}
		return fmt.Errorf("创建订单失败: %w", err)
	}

	order.Details = make([]model.OrderDetail, 0, len(entries))
	for _, e := range entries {
		detail := model.OrderDetail{
			OrderID:    order.ID,
			Day:        e.Day,
			ShiftID:    e.ShiftID,
			MealMenuID: e.MealMenuID,
		}
		if err := tx.Details.Create(ctx, &detail); err != nil {
			return fmt.Errorf("创建订单明细失败（%s）: %w", utils.FormatDate(e.Day), err)
		}
		order.Details = append(order.Details, detail)
	}

	err := tx.Logs.Create(ctx, &model.OrderStatusLog{
		OrderID:  order.ID,
		ToStatus: order.Status,
		ActorID:  order.CreatedBy,
		Reason:   reason,
		Detail: datatypes.JSONMap{
			"type": order.Type,
			"days": len(entries),
		},
	})
	if err != nil {
		return fmt.Errorf("记录订单状态失败: %w", err)
	}
	return nil
}

// ==================== 审核 ====================

// Approve 审核通过：仅待审核订单可通过，已通过的订单重复审核视为成功
func (s *OrderService) Approve(ctx context.Context, p Principal, id int64) (*model.Order, error) {
	order, _, err := s.transition(ctx, p, id, actionApprove, "")
	return order, err
}

// Reject 驳回：仅待审核订单可驳回
func (s *OrderService) Reject(ctx context.Context, p Principal, id int64, notes string) (*model.Order, error) {
	order, _, err := s.transition(ctx, p, id, actionReject, notes)
	return order, err
}

// BulkApprove 批量审核，逐个返回结果
func (s *OrderService) BulkApprove(ctx context.Context, p Principal, ids []int64) (*dto.BulkApproveResult, error) {
	if !p.IsAdmin() {
		return nil, ErrForbidden
	}

	result := &dto.BulkApproveResult{Results: make([]dto.BulkApproveItem, 0, len(ids))}
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		item := dto.BulkApproveItem{OrderID: id}
		_, changed, err := s.transition(ctx, p, id, actionApprove, "批量审核")
		if err != nil {
			item.Error = err.Error()
			result.Failed++
		} else {
			item.OK = true
			item.Changed = changed
			if changed {
				result.Updated++
			}
		}
		result.Results = append(result.Results, item)
	}

	s.log.Info("批量审核完成",
		zap.Int64("actor_id", p.UserID),
		zap.Int("requested", len(ids)),
		zap.Int("updated", result.Updated),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

// UpdateStatus 管理员强制修改状态，不受常规流转限制，记录为 forced
func (s *OrderService) UpdateStatus(ctx context.Context, p Principal, id int64, status, reason string) (*model.Order, error) {
	ctx, span := tracer.Start(ctx, "OrderService.UpdateStatus")
	defer span.End()

	if !p.IsAdmin() {
		return nil, ErrForbidden
	}
	if !model.IsValidOrderStatus(status) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}

	var (
		order *model.Order
		from  string
	)
	err := s.uow.Transaction(ctx, func(tx *repository.OrderUnitOfWork) error {
		o, err := loadOrder(ctx, tx.Orders, id)
		if err != nil {
			return err
		}
		order, from = o, o.Status
		if o.Status == status {
			return nil
		}

		if err := tx.Orders.UpdateStatus(ctx, id, status, p.UserID); err != nil {
			return fmt.Errorf("更新订单状态失败: %w", err)
		}
		err = tx.Logs.Create(ctx, &model.OrderStatusLog{
			OrderID:    id,
			FromStatus: from,
			ToStatus:   status,
			ActorID:    p.UserID,
			Forced:     true,
			Reason:     reason,
			Detail:     datatypes.JSONMap{"previous": from},
		})
		if err != nil {
			return fmt.Errorf("记录订单状态失败: %w", err)
		}
		o.Status = status
		o.UpdatedBy = p.UserID
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if from != status {
		s.log.Warn("订单状态被强制修改",
			zap.Int64("order_id", id),
			zap.Int64("actor_id", p.UserID),
			zap.String("from", from),
			zap.String("to", status),
		)
	}
	return order, nil
}

// transition 常规状态流转，返回是否实际发生变更
func (s *OrderService) transition(ctx context.Context, p Principal, id int64, action, reason string) (*model.Order, bool, error) {
	ctx, span := tracer.Start(ctx, "OrderService."+action)
	defer span.End()
	span.SetAttributes(attribute.Int64("order_id", id))

	if !p.IsAdmin() {
		return nil, false, ErrForbidden
	}
	target := actionTarget[action]

	var (
		order   *model.Order
		changed bool
	)
	err := s.uow.Transaction(ctx, func(tx *repository.OrderUnitOfWork) error {
		o, err := loadOrder(ctx, tx.Orders, id)
		if err != nil {
			return err
		}
		order = o
		if o.Status == target {
			return nil
		}
		if !validTransition(action, o.Status) {
			return fmt.Errorf("%w: %s → %s", ErrInvalidTransition, o.Status, target)
		}

		if err := tx.Orders.UpdateStatus(ctx, id, target, p.UserID); err != nil {
			return fmt.Errorf("更新订单状态失败: %w", err)
		}
		err = tx.Logs.Create(ctx, &model.OrderStatusLog{
			OrderID:    id,
			FromStatus: o.Status,
			ToStatus:   target,
			ActorID:    p.UserID,
			Reason:     reason,
		})
		if err != nil {
			return fmt.Errorf("记录订单状态失败: %w", err)
		}
		o.Status = target
		o.UpdatedBy = p.UserID
		changed = true
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, false, err
	}
	return order, changed, nil
}

// ==================== 删除 ====================

// Delete 删除订单及明细；管理员可删除任意订单，员工只能删除自己待审核的订单
func (s *OrderService) Delete(ctx context.Context, p Principal, id int64) error {
	err := s.uow.Transaction(ctx, func(tx *repository.OrderUnitOfWork) error {
		o, err := loadOrder(ctx, tx.Orders, id)
		if err != nil {
			return err
		}
		if !p.IsAdmin() {
			if o.UserID != p.UserID {
				return ErrForbidden
			}
			if !o.IsPending() {
				return fmt.Errorf("%w: 仅待审核订单可删除", ErrInvalidTransition)
			}
		}
		if err := tx.Orders.Delete(ctx, id); err != nil {
			return fmt.Errorf("删除订单失败: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("订单已删除", zap.Int64("order_id", id), zap.Int64("actor_id", p.UserID))
	return nil
}

// ==================== 查询 ====================

// GetOrder 订单详情；员工只能查看自己的订单
func (s *OrderService) GetOrder(ctx context.Context, p Principal, id int64) (*model.Order, error) {
	order, err := s.uow.Orders.GetByIDWithDetails(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Resource: "order", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("查询订单失败: %w", err)
	}
	if !p.IsBackOffice() && order.UserID != p.UserID {
		return nil, ErrForbidden
	}
	return order, nil
}

// ListOrders 订单列表（管理员 / 总务）
func (s *OrderService) ListOrders(ctx context.Context, p Principal, req *dto.OrderListRequest) (*dto.OrderListResponse, error) {
	if !p.IsBackOffice() {
		return nil, ErrForbidden
	}

	filter := repository.OrderFilter{
		UserID:   req.UserID,
		Status:   req.Status,
		Type:     req.Type,
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	if req.Week != "" {
		week, err := utils.ParseDate(req.Week)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		week = utils.WeekStartOf(week)
		filter.WeekStart = &week
	}

	orders, total, err := s.uow.Orders.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("查询订单失败: %w", err)
	}
	page := req.Page
	if page <= 0 {
		page = 1
	}
	return &dto.OrderListResponse{List: orders, Total: total, Page: page}, nil
}

// MyWeekOrder 员工目标周的订单，没有返回 nil
func (s *OrderService) MyWeekOrder(ctx context.Context, p Principal) (*model.Order, error) {
	week := utils.NextMonday(s.clock.Now())
	order, err := s.uow.Orders.FindUserWeekOrder(ctx, p.UserID, week)
	if err != nil {
		return nil, fmt.Errorf("查询周订单失败: %w", err)
	}
	return order, nil
}

// Eligibility 当前是否可下单以及是否已有目标周订单
func (s *OrderService) Eligibility(ctx context.Context, p Principal) (*dto.EligibilityResponse, error) {
	now := s.clock.Now()
	week := utils.NextMonday(now)
	opensAt, closesAt := utils.OrderingWindow(week, now.Location())

	resp := &dto.EligibilityResponse{
		Open:       utils.IsOrderingOpen(now),
		Now:        now,
		TargetWeek: utils.FormatDate(week),
		OpensAt:    opensAt,
		ClosesAt:   closesAt,
	}

	primary, err := s.uow.Orders.FindByUserWeekSlot(ctx, p.UserID, week, model.OrderSlotPrimary)
	if err != nil {
		return nil, fmt.Errorf("查询周订单失败: %w", err)
	}
	if primary != nil {
		resp.HasOrder = true
		resp.OrderID = primary.ID
	}

	backup, err := s.uow.Orders.FindByUserWeekSlot(ctx, p.UserID, week, model.OrderSlotBackup)
	if err != nil {
		return nil, fmt.Errorf("查询周订单失败: %w", err)
	}
	resp.HasBackupOrder = backup != nil

	return resp, nil
}

// StatusHistory 订单状态变更记录
func (s *OrderService) StatusHistory(ctx context.Context, p Principal, id int64) ([]model.OrderStatusLog, error) {
	order, err := loadOrder(ctx, s.uow.Orders, id)
	if err != nil {
		return nil, err
	}
	if !p.IsBackOffice() && order.UserID != p.UserID {
		return nil, ErrForbidden
	}
	return s.uow.Logs.ListByOrderID(ctx, id)
}

// ==================== 辅助方法 ====================

func loadOrder(ctx context.Context, orders repository.OrderRepository, id int64) (*model.Order, error) {
	order, err := orders.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Resource: "order", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("查询订单失败: %w", err)
	}
	return order, nil
}
