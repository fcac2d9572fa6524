package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"canteen_order_v1/internal/model"
)

// ==================== 主数据仓储接口 ====================

// ShiftRepository 班次仓储接口
type ShiftRepository interface {
	Create(ctx context.Context, shift *model.Shift) error
	GetByID(ctx context.Context, id int64) (*model.Shift, error)
	First(ctx context.Context) (*model.Shift, error)
	List(ctx context.Context) ([]model.Shift, error)
}

// LocationRepository 地点仓储接口
type LocationRepository interface {
	Create(ctx context.Context, location *model.Location) error
	GetByID(ctx context.Context, id int64) (*model.Location, error)
	List(ctx context.Context) ([]model.Location, error)
}

// DepartmentRepository 部门仓储接口
type DepartmentRepository interface {
	Create(ctx context.Context, dept *model.Department) error
	GetByID(ctx context.Context, id int64) (*model.Department, error)
	List(ctx context.Context, locationID int64) ([]model.Department, error)
}

// VendorRepository 供应商仓储接口
type VendorRepository interface {
	Create(ctx context.Context, vendor *model.VendorCatering) error
	GetByID(ctx context.Context, id int64) (*model.VendorCatering, error)
	List(ctx context.Context, filter VendorFilter) ([]model.VendorCatering, error)
}

// VendorFilter 供应商过滤条件
type VendorFilter struct {
	UserID     int64
	ShiftID    int64
	LocationID int64
	Status     string
}

// ==================== Shift 仓储实现 ====================

type shiftRepo struct {
	db *gorm.DB
}

// NewShiftRepository 创建班次仓储
func NewShiftRepository(db *gorm.DB) ShiftRepository {
	return &shiftRepo{db: db}
}

func (r *shiftRepo) Create(ctx context.Context, shift *model.Shift) error {
	return r.db.WithContext(ctx).Create(shift).Error
}

func (r *shiftRepo) GetByID(ctx context.Context, id int64) (*model.Shift, error) {
	var shift model.Shift
	err := r.db.WithContext(ctx).First(&shift, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &shift, err
}

// First ID 最小的班次，作为系统默认班次
func (r *shiftRepo) First(ctx context.Context) (*model.Shift, error) {
	var shift model.Shift
	err := r.db.WithContext(ctx).Order("id ASC").First(&shift).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &shift, err
}

func (r *shiftRepo) List(ctx context.Context) ([]model.Shift, error) {
	var shifts []model.Shift
	err := r.db.WithContext(ctx).Order("id ASC").Find(&shifts).Error
	return shifts, err
}

// ==================== Location 仓储实现 ====================

type locationRepo struct {
	db *gorm.DB
}

// NewLocationRepository 创建地点仓储
func NewLocationRepository(db *gorm.DB) LocationRepository {
	return &locationRepo{db: db}
}

func (r *locationRepo) Create(ctx context.Context, location *model.Location) error {
	return r.db.WithContext(ctx).Create(location).Error
}

func (r *locationRepo) GetByID(ctx context.Context, id int64) (*model.Location, error) {
	var location model.Location
	err := r.db.WithContext(ctx).First(&location, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &location, err
}

func (r *locationRepo) List(ctx context.Context) ([]model.Location, error) {
	var locations []model.Location
	err := r.db.WithContext(ctx).Order("id ASC").Find(&locations).Error
	return locations, err
}

// ==================== Department 仓储实现 ====================

type departmentRepo struct {
	db *gorm.DB
}

// NewDepartmentRepository 创建部门仓储
func NewDepartmentRepository(db *gorm.DB) DepartmentRepository {
	return &departmentRepo{db: db}
}

func (r *departmentRepo) Create(ctx context.Context, dept *model.Department) error {
	return r.db.WithContext(ctx).Omit("Location").Create(dept).Error
}

func (r *departmentRepo) GetByID(ctx context.Context, id int64) (*model.Department, error) {
	var dept model.Department
	err := r.db.WithContext(ctx).First(&dept, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &dept, err
}

func (r *departmentRepo) List(ctx context.Context, locationID int64) ([]model.Department, error) {
	var depts []model.Department
	query := r.db.WithContext(ctx).Model(&model.Department{})
	if locationID > 0 {
		query = query.Where("location_id = ?", locationID)
	}
	err := query.Order("id ASC").Find(&depts).Error
	return depts, err
}

// ==================== Vendor 仓储实现 ====================

type vendorRepo struct {
	db *gorm.DB
}

// NewVendorRepository 创建供应商仓储
func NewVendorRepository(db *gorm.DB) VendorRepository {
	return &vendorRepo{db: db}
}

func (r *vendorRepo) Create(ctx context.Context, vendor *model.VendorCatering) error {
	return r.db.WithContext(ctx).Omit("Location", "Shift").Create(vendor).Error
}

func (r *vendorRepo) GetByID(ctx context.Context, id int64) (*model.VendorCatering, error) {
	var vendor model.VendorCatering
	err := r.db.WithContext(ctx).First(&vendor, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &vendor, err
}

func (r *vendorRepo) List(ctx context.Context, filter VendorFilter) ([]model.VendorCatering, error) {
	var vendors []model.VendorCatering
	query := r.db.WithContext(ctx).Model(&model.VendorCatering{})

	if filter.UserID > 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.ShiftID > 0 {
		query = query.Where("shift_id = ?", filter.ShiftID)
	}
	if filter.LocationID > 0 {
		query = query.Where("location_id = ?", filter.LocationID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	err := query.Order("id ASC").Find(&vendors).Error
	return vendors, err
}
