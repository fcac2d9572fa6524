package service

import (
	"context"
	"fmt"

	"canteen_order_v1/internal/api/dto"
	"canteen_order_v1/internal/model"
	"canteen_order_v1/internal/repository"
)

// ==================== MasterService 主数据服务 ====================

// MasterService 班次 / 地点 / 部门 / 供应商维护
// 写入前校验外键，缺失时返回 IntegrityError 指明字段
type MasterService struct {
	shifts      repository.ShiftRepository
	locations   repository.LocationRepository
	departments repository.DepartmentRepository
	vendors     repository.VendorRepository
	users       repository.UserRepository
}

// NewMasterService 创建主数据服务
func NewMasterService(
	shifts repository.ShiftRepository,
	locations repository.LocationRepository,
	departments repository.DepartmentRepository,
	vendors repository.VendorRepository,
	users repository.UserRepository,
) *MasterService {
	return &MasterService{
		shifts:      shifts,
		locations:   locations,
		departments: departments,
		vendors:     vendors,
		users:       users,
	}
}

// ==================== 班次 ====================

func (s *MasterService) CreateShift(ctx context.Context, p Principal, req *dto.CreateShiftRequest) (*model.Shift, error) {
	shift := &model.Shift{
		Name:    req.Name,
		TimeOn:  req.TimeOn,
		StartAt: req.StartAt,
		EndAt:   req.EndAt,
	}
	shift.CreatedBy = p.UserID
	if err := s.shifts.Create(ctx, shift); err != nil {
		return nil, fmt.Errorf("创建班次失败: %w", err)
	}
	return shift, nil
}

func (s *MasterService) ListShifts(ctx context.Context) ([]model.Shift, error) {
	return s.shifts.List(ctx)
}

// ==================== 地点 ====================

func (s *MasterService) CreateLocation(ctx context.Context, p Principal, req *dto.CreateLocationRequest) (*model.Location, error) {
	location := &model.Location{Name: req.Name, Address: req.Address}
	location.CreatedBy = p.UserID
	if err := s.locations.Create(ctx, location); err != nil {
		return nil, fmt.Errorf("创建地点失败: %w", err)
	}
	return location, nil
}

func (s *MasterService) ListLocations(ctx context.Context) ([]model.Location, error) {
	return s.locations.List(ctx)
}

// ==================== 部门 ====================

func (s *MasterService) CreateDepartment(ctx context.Context, p Principal, req *dto.CreateDepartmentRequest) (*model.Department, error) {
	if err := s.requireLocation(ctx, req.LocationID); err != nil {
		return nil, err
	}

	dept := &model.Department{Name: req.Name, LocationID: req.LocationID}
	dept.CreatedBy = p.UserID
	if err := s.departments.Create(ctx, dept); err != nil {
		return nil, fmt.Errorf("创建部门失败: %w", err)
	}
	return dept, nil
}

func (s *MasterService) ListDepartments(ctx context.Context, locationID int64) ([]model.Department, error) {
	return s.departments.List(ctx, locationID)
}

// ==================== 供应商 ====================

// CreateVendor 创建供应商经营单元，user_id 必须是供应商账号
func (s *MasterService) CreateVendor(ctx context.Context, p Principal, req *dto.CreateVendorRequest) (*model.VendorCatering, error) {
	owner, err := s.users.GetByIDWithRole(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	if owner == nil || owner.Role == nil || owner.Role.Name != model.RoleVendor {
		return nil, &IntegrityError{Field: "user_id", ID: req.UserID}
	}
	if err := s.requireLocation(ctx, req.LocationID); err != nil {
		return nil, err
	}
	shift, err := s.shifts.GetByID(ctx, req.ShiftID)
	if err != nil {
		return nil, fmt.Errorf("查询班次失败: %w", err)
	}
	if shift == nil {
		return nil, &IntegrityError{Field: "shift_id", ID: req.ShiftID}
	}

	vendor := &model.VendorCatering{
		UserID:     req.UserID,
		Name:       req.Name,
		LocationID: req.LocationID,
		ShiftID:    req.ShiftID,
		Address:    req.Address,
		Status:     model.VendorStatusActive,
	}
	vendor.CreatedBy = p.UserID
	if err := s.vendors.Create(ctx, vendor); err != nil {
		return nil, fmt.Errorf("创建供应商失败: %w", err)
	}
	return vendor, nil
}

// ListVendors 供应商列表；供应商账号只能看到自己的经营单元
func (s *MasterService) ListVendors(ctx context.Context, p Principal, req *dto.VendorListRequest) ([]model.VendorCatering, error) {
	filter := repository.VendorFilter{
		ShiftID:    req.ShiftID,
		LocationID: req.LocationID,
		Status:     req.Status,
	}
	if p.IsVendor() {
		filter.UserID = p.UserID
	}
	return s.vendors.List(ctx, filter)
}

// ==================== 辅助方法 ====================

func (s *MasterService) requireLocation(ctx context.Context, id int64) error {
	location, err := s.locations.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("查询地点失败: %w", err)
	}
	if location == nil {
		return &IntegrityError{Field: "location_id", ID: id}
	}
	return nil
}
