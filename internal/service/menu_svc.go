package service

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"canteen_order_v1/internal/api/dto"
	"canteen_order_v1/internal/model"
	"canteen_order_v1/internal/repository"
	"canteen_order_v1/pkg/utils"
)

// ==================== MenuService 菜单服务 ====================

// MenuService 菜单可见性与菜单维护
type MenuService struct {
	menus   repository.MealMenuRepository
	vendors repository.VendorRepository
	shifts  repository.ShiftRepository
	clock   utils.Clock
}

// NewMenuService 创建菜单服务
func NewMenuService(
	menus repository.MealMenuRepository,
	vendors repository.VendorRepository,
	shifts repository.ShiftRepository,
	clock utils.Clock,
) *MenuService {
	return &MenuService{
		menus:   menus,
		vendors: vendors,
		shifts:  shifts,
		clock:   clock,
	}
}

// TargetWeek 当前可订的目标周（下周一）
func (s *MenuService) TargetWeek() time.Time {
	return utils.NextMonday(s.clock.Now())
}

// ==================== 菜单可见性 ====================

// VisibleMenus 班次在目标周内已审核通过的菜单，按日期分组
func (s *MenuService) VisibleMenus(ctx context.Context, shiftID int64, weekStart time.Time) (*dto.WeeklyMenuResponse, error) {
	ctx, span := tracer.Start(ctx, "MenuService.VisibleMenus")
	defer span.End()
	span.SetAttributes(attribute.Int64("shift_id", shiftID))

	shift, err := s.shifts.GetByID(ctx, shiftID)
	if err != nil {
		return nil, fmt.Errorf("查询班次失败: %w", err)
	}
	if shift == nil {
		return nil, &NotFoundError{Resource: "shift", ID: shiftID}
	}

	week := utils.WeekStartOf(weekStart)
	menus, err := s.menus.ListApprovedByShift(ctx, shiftID, week, utils.WeekEnd(week))
	if err != nil {
		return nil, fmt.Errorf("查询菜单失败: %w", err)
	}

	resp := &dto.WeeklyMenuResponse{
		WeekStart: utils.FormatDate(week),
		ShiftID:   shiftID,
		Days:      make([]string, 0, utils.WorkDays),
		Menus:     make(map[string][]dto.MenuSummary, utils.WorkDays),
	}
	for _, day := range utils.Weekdays(week) {
		key := utils.FormatDate(day)
		resp.Days = append(resp.Days, key)
		resp.Menus[key] = []dto.MenuSummary{}
	}

	for i := range menus {
		key := utils.FormatDate(menus[i].ForDate)
		list, ok := resp.Menus[key]
		if !ok {
			continue
		}
		resp.Menus[key] = append(list, toMenuSummary(&menus[i]))
	}

	return resp, nil
}

// ==================== 菜单维护 ====================

// CreateMenu 供应商为自己的经营单元创建菜单，初始为待审核
func (s *MenuService) CreateMenu(ctx context.Context, p Principal, req *dto.CreateMenuRequest) (*model.MealMenu, error) {
	vendor, err := s.vendors.GetByID(ctx, req.VendorCateringID)
	if err != nil {
		return nil, fmt.Errorf("查询供应商失败: %w", err)
	}
	if vendor == nil {
		return nil, &IntegrityError{Field: "vendor_catering_id", ID: req.VendorCateringID}
	}
	if err := s.checkVendorAccess(p, vendor); err != nil {
		return nil, err
	}

	forDate, err := utils.ParseDate(req.ForDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	menu := &model.MealMenu{
		VendorCateringID: vendor.ID,
		Name:             req.Name,
		Descriptions:     req.Descriptions,
		NutritionFacts:   req.NutritionFacts,
		ForDate:          utils.DateOf(forDate),
		Status:           model.MenuStatusPending,
	}
	menu.CreatedBy = p.UserID
	menu.UpdatedBy = p.UserID

	if err := s.menus.Create(ctx, menu); err != nil {
		return nil, fmt.Errorf("创建菜单失败: %w", err)
	}
	return menu, nil
}

// UpdateMenu 修改菜单内容；供应商只能在审核前修改
func (s *MenuService) UpdateMenu(ctx context.Context, p Principal, id int64, req *dto.UpdateMenuRequest) (*model.MealMenu, error) {
	menu, err := s.getMenu(ctx, id)
	if err != nil {
		return nil, err
	}

	if p.IsVendor() {
		vendor, err := s.vendors.GetByID(ctx, menu.VendorCateringID)
		if err != nil {
			return nil, fmt.Errorf("查询供应商失败: %w", err)
		}
		if vendor == nil || vendor.UserID != p.UserID {
			return nil, ErrForbidden
		}
		if menu.Status != model.MenuStatusPending {
			return nil, ErrInvalidTransition
		}
	} else if !p.IsBackOffice() {
		return nil, ErrForbidden
	}

	if req.Name != "" {
		menu.Name = req.Name
	}
	if req.Descriptions != "" {
		menu.Descriptions = req.Descriptions
	}
	if req.NutritionFacts != "" {
		menu.NutritionFacts = req.NutritionFacts
	}
	if req.ForDate != "" {
		forDate, err := utils.ParseDate(req.ForDate)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		forDate = utils.DateOf(forDate)
		// 已审核菜单可能已被订单明细引用，日期不可再改
		if menu.IsApproved() && !forDate.Equal(utils.DateOf(menu.ForDate)) {
			return nil, fmt.Errorf("%w: 已审核菜单不能修改日期", ErrInvalidTransition)
		}
		menu.ForDate = forDate
	}
	menu.UpdatedBy = p.UserID

	if err := s.menus.Update(ctx, menu); err != nil {
		return nil, fmt.Errorf("更新菜单失败: %w", err)
	}
	return menu, nil
}

// SetMenuStatus 管理员 / 总务审核菜单
func (s *MenuService) SetMenuStatus(ctx context.Context, p Principal, id int64, req *dto.UpdateMenuStatusRequest) (*model.MealMenu, error) {
	if !p.IsBackOffice() {
		return nil, ErrForbidden
	}
	if !model.IsValidMenuStatus(req.Status) {
		return nil, ErrInvalidStatus
	}

	menu, err := s.getMenu(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.menus.UpdateStatus(ctx, id, req.Status, req.Notes); err != nil {
		return nil, fmt.Errorf("更新菜单状态失败: %w", err)
	}
	menu.Status = req.Status
	menu.StatusNotes = req.Notes
	return menu, nil
}

// ListMenus 菜单列表；供应商只能看到自己的菜单
func (s *MenuService) ListMenus(ctx context.Context, p Principal, req *dto.MenuListRequest) ([]model.MealMenu, error) {
	filter := repository.MenuFilter{
		VendorCateringID: req.VendorCateringID,
		Status:           req.Status,
	}
	if req.From != "" {
		from, err := utils.ParseDate(req.From)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		filter.From = &from
	}
	if req.To != "" {
		to, err := utils.ParseDate(req.To)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		filter.To = &to
	}

	if !p.IsVendor() {
		return s.menus.List(ctx, filter)
	}

	// 供应商：限定在自己名下的经营单元
	vendors, err := s.vendors.List(ctx, repository.VendorFilter{UserID: p.UserID})
	if err != nil {
		return nil, fmt.Errorf("查询供应商失败: %w", err)
	}
	var result []model.MealMenu
	for _, v := range vendors {
		if filter.VendorCateringID > 0 && filter.VendorCateringID != v.ID {
			continue
		}
		f := filter
		f.VendorCateringID = v.ID
		menus, err := s.menus.List(ctx, f)
		if err != nil {
			return nil, err
		}
		result = append(result, menus...)
	}
	return result, nil
}

// ==================== 辅助方法 ====================

func (s *MenuService) getMenu(ctx context.Context, id int64) (*model.MealMenu, error) {
	menu, err := s.menus.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("查询菜单失败: %w", err)
	}
	if menu == nil {
		return nil, &NotFoundError{Resource: "meal_menu", ID: id}
	}
	return menu, nil
}

func (s *MenuService) checkVendorAccess(p Principal, vendor *model.VendorCatering) error {
	if p.IsBackOffice() {
		return nil
	}
	if p.IsVendor() && vendor.UserID == p.UserID {
		return nil
	}
	return ErrForbidden
}

func toMenuSummary(m *model.MealMenu) dto.MenuSummary {
	return dto.MenuSummary{
		ID:             m.ID,
		VendorID:       m.VendorCateringID,
		Name:           m.Name,
		Descriptions:   m.Descriptions,
		NutritionFacts: m.NutritionFacts,
		ForDate:        utils.FormatDate(m.ForDate),
	}
}
