package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"canteen_order_v1/internal/model"
)

// ==================== MealMenuRepository 菜单仓库 ====================

// MealMenuRepository 菜单仓库接口
type MealMenuRepository interface {
	Create(ctx context.Context, menu *model.MealMenu) error
	GetByID(ctx context.Context, id int64) (*model.MealMenu, error)
	Update(ctx context.Context, menu *model.MealMenu) error
	UpdateStatus(ctx context.Context, id int64, status, notes string) error
	List(ctx context.Context, filter MenuFilter) ([]model.MealMenu, error)

	// 订餐相关
	GetByIDsWithVendor(ctx context.Context, ids []int64) ([]model.MealMenu, error)
	ListApprovedByShift(ctx context.Context, shiftID int64, from, to time.Time) ([]model.MealMenu, error)
}

// MenuFilter 菜单过滤条件
type MenuFilter struct {
	VendorCateringID int64
	Status           string
	From             *time.Time
	To               *time.Time
}

// ==================== 实现 ====================

type mealMenuRepository struct {
	db *gorm.DB
}

// NewMealMenuRepository 创建菜单仓库
func NewMealMenuRepository(db *gorm.DB) MealMenuRepository {
	return &mealMenuRepository{db: db}
}

func (r *mealMenuRepository) Create(ctx context.Context, menu *model.MealMenu) error {
	return r.db.WithContext(ctx).Omit("Vendor").Create(menu).Error
}

func (r *mealMenuRepository) GetByID(ctx context.Context, id int64) (*model.MealMenu, error) {
	var menu model.MealMenu
	err := r.db.WithContext(ctx).First(&menu, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &menu, err
}

func (r *mealMenuRepository) Update(ctx context.Context, menu *model.MealMenu) error {
	return r.db.WithContext(ctx).Omit("Vendor").Save(menu).Error
}

func (r *mealMenuRepository) UpdateStatus(ctx context.Context, id int64, status, notes string) error {
	return r.db.WithContext(ctx).
		Model(&model.MealMenu{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       status,
			"status_notes": notes,
		}).Error
}

func (r *mealMenuRepository) List(ctx context.Context, filter MenuFilter) ([]model.MealMenu, error) {
	var menus []model.MealMenu
	query := r.db.WithContext(ctx).Model(&model.MealMenu{})

	if filter.VendorCateringID > 0 {
		query = query.Where("vendor_catering_id = ?", filter.VendorCateringID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.From != nil {
		query = query.Where("for_date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("for_date <= ?", *filter.To)
	}

	err := query.Order("for_date ASC, id ASC").Find(&menus).Error
	return menus, err
}

// GetByIDsWithVendor 批量获取菜单（含供应商，用于班次校验）
func (r *mealMenuRepository) GetByIDsWithVendor(ctx context.Context, ids []int64) ([]model.MealMenu, error) {
	var menus []model.MealMenu
	if len(ids) == 0 {
		return menus, nil
	}
	err := r.db.WithContext(ctx).
		Preload("Vendor").
		Where("id IN ?", ids).
		Find(&menus).Error
	return menus, err
}

// ListApprovedByShift 某班次在日期区间内已审核通过的菜单
// 按日期、创建顺序排列
func (r *mealMenuRepository) ListApprovedByShift(ctx context.Context, shiftID int64, from, to time.Time) ([]model.MealMenu, error) {
	var menus []model.MealMenu
	err := r.db.WithContext(ctx).
		Joins("JOIN vendor_caterings ON vendor_caterings.id = meal_menus.vendor_catering_id AND vendor_caterings.deleted_at IS NULL").
		Where("vendor_caterings.shift_id = ?", shiftID).
		Where("meal_menus.status = ?", model.MenuStatusApproved).
		Where("meal_menus.for_date BETWEEN ? AND ?", from, to).
		Order("meal_menus.for_date ASC, meal_menus.id ASC").
		Find(&menus).Error
	return menus, err
}
