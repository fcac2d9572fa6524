package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"canteen_order_v1/internal/model"
)

// ==================== 过滤条件 ====================

// OrderFilter 订单过滤条件
type OrderFilter struct {
	UserID    int64
	WeekStart *time.Time
	Status    string
	Type      string
	Page      int
	PageSize  int
}

// ==================== OrderRepository 订单仓库 ====================

// OrderRepository 订单仓库接口
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	GetByIDWithDetails(ctx context.Context, id int64) (*model.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error)
	UpdateStatus(ctx context.Context, id int64, status string, actorID int64) error
	Delete(ctx context.Context, id int64) error

	// 周订单
	LockUser(ctx context.Context, userID int64) error
	FindByUserWeekSlot(ctx context.Context, userID int64, weekStart time.Time, slot string) (*model.Order, error)
	FindUserWeekOrder(ctx context.Context, userID int64, weekStart time.Time) (*model.Order, error)
	HasWeekOrder(ctx context.Context, userID int64, weekStart time.Time) (bool, error)
	DeleteByUserWeekSlot(ctx context.Context, userID int64, weekStart time.Time, slot string) (int64, error)
	LastShiftID(ctx context.Context, userID int64) (int64, error)

	// 统计
	CoveredUserIDs(ctx context.Context, weekStart time.Time) ([]int64, error)
	CountCoveredByRole(ctx context.Context, weekStart time.Time, roleName, slot string) (int64, error)
}

// ==================== 实现 ====================

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

// Create 仅写订单主表，明细由 OrderDetailRepository 逐条写入
func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(order).Error
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByIDWithDetails(ctx context.Context, id int64) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Preload("Details", func(db *gorm.DB) *gorm.DB {
			return db.Order("day ASC, id ASC")
		}).
		Preload("Details.MealMenu").
		Preload("Details.Shift").
		First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) List(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Order{})

	// 应用过滤条件
	if filter.UserID > 0 {
		db = db.Where("user_id = ?", filter.UserID)
	}
	if filter.WeekStart != nil {
		db = db.Where("week_start = ?", *filter.WeekStart)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		db = db.Where("type = ?", filter.Type)
	}

	// 计算总数
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 分页
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize

	err := db.
		Preload("Details", func(db *gorm.DB) *gorm.DB {
			return db.Order("day ASC, id ASC")
		}).
		Order("created_at DESC, id DESC").
		Limit(filter.PageSize).
		Offset(offset).
		Find(&orders).Error

	return orders, total, err
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id int64, status string, actorID int64) error {
	return r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_by": actorID,
		}).Error
}

// Delete 删除订单及其明细、状态日志（不可恢复）
func (r *orderRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.deleteByIDs(ctx, []int64{id})
	return err
}

// deleteByIDs 依次删除明细、状态日志和订单，调用方负责事务
func (r *orderRepository) deleteByIDs(ctx context.Context, ids []int64) (int64, error) {
	db := r.db.WithContext(ctx)
	if err := db.Where("order_id IN ?", ids).Delete(&model.OrderDetail{}).Error; err != nil {
		return 0, err
	}
	if err := db.Where("order_id IN ?", ids).Delete(&model.OrderStatusLog{}).Error; err != nil {
		return 0, err
	}
	result := db.Where("id IN ?", ids).Delete(&model.Order{})
	return result.RowsAffected, result.Error
}

// LockUser 在事务内对用户行加排他锁，同一用户的下单与补单由此串行
// SQLite 驱动忽略 FOR UPDATE，单写连接本身已串行
func (r *orderRepository) LockUser(ctx context.Context, userID int64) error {
	var user model.SysUser
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id = ?", userID).
		Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}

// FindByUserWeekSlot 查找用户某周某占位的订单，不存在返回 nil
func (r *orderRepository) FindByUserWeekSlot(ctx context.Context, userID int64, weekStart time.Time, slot string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND week_start = ? AND slot = ?", userID, weekStart, slot).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindUserWeekOrder 用户某周生效的订单：优先自助订单，其次补单
// 用 Take 而非 First，First 会把排序改写为主键
func (r *orderRepository) FindUserWeekOrder(ctx context.Context, userID int64, weekStart time.Time) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Preload("Details", func(db *gorm.DB) *gorm.DB {
			return db.Order("day ASC, id ASC")
		}).
		Preload("Details.MealMenu").
		Where("user_id = ? AND week_start = ?", userID, weekStart).
		Order("CASE WHEN slot = '" + model.OrderSlotPrimary + "' THEN 0 ELSE 1 END, id ASC").
		Take(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// HasWeekOrder 用户该周是否已有任意订单（自助或补单）
func (r *orderRepository) HasWeekOrder(ctx context.Context, userID int64, weekStart time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("user_id = ? AND week_start = ?", userID, weekStart).
		Count(&count).Error
	return count > 0, err
}

// DeleteByUserWeekSlot 删除用户某周某占位的订单、明细及状态日志，返回删除的订单数
func (r *orderRepository) DeleteByUserWeekSlot(ctx context.Context, userID int64, weekStart time.Time, slot string) (int64, error) {
	var ids []int64
	if err := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("user_id = ? AND week_start = ? AND slot = ?", userID, weekStart, slot).
		Pluck("id", &ids).Error; err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	return r.deleteByIDs(ctx, ids)
}

// LastShiftID 用户最近一次订单明细使用的班次，没有返回 0
func (r *orderRepository) LastShiftID(ctx context.Context, userID int64) (int64, error) {
	var detail model.OrderDetail
	err := r.db.WithContext(ctx).
		Model(&model.OrderDetail{}).
		Joins("JOIN orders ON orders.id = order_details.order_id").
		Where("orders.user_id = ?", userID).
		Order("order_details.day DESC, order_details.id DESC").
		First(&detail).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return detail.ShiftID, nil
}

// ==================== 统计 ====================

// CoveredUserIDs 该周已有订单（自助或补单）的用户
func (r *orderRepository) CoveredUserIDs(ctx context.Context, weekStart time.Time) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("week_start = ?", weekStart).
		Distinct("user_id").
		Pluck("user_id", &ids).Error
	return ids, err
}

// CountCoveredByRole 统计该周已有订单的启用用户数
// slot 为空表示任意占位
func (r *orderRepository) CountCoveredByRole(ctx context.Context, weekStart time.Time, roleName, slot string) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Joins("JOIN sys_users ON sys_users.id = orders.user_id AND sys_users.deleted_at IS NULL").
		Joins("JOIN roles ON roles.id = sys_users.role_id").
		Where("orders.week_start = ?", weekStart).
		Where("roles.name = ? AND sys_users.status = ?", roleName, model.UserStatusActive)
	if slot != "" {
		query = query.Where("orders.slot = ?", slot)
	}
	err := query.Distinct("orders.user_id").Count(&count).Error
	return count, err
}

// ==================== OrderDetailRepository 订单明细仓库 ====================

// OrderDetailRepository 订单明细仓库接口
type OrderDetailRepository interface {
	Create(ctx context.Context, detail *model.OrderDetail) error
	GetByOrderID(ctx context.Context, orderID int64) ([]model.OrderDetail, error)
}

type orderDetailRepository struct {
	db *gorm.DB
}

// NewOrderDetailRepository 创建订单明细仓库
func NewOrderDetailRepository(db *gorm.DB) OrderDetailRepository {
	return &orderDetailRepository{db: db}
}

func (r *orderDetailRepository) Create(ctx context.Context, detail *model.OrderDetail) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(detail).Error
}

func (r *orderDetailRepository) GetByOrderID(ctx context.Context, orderID int64) ([]model.OrderDetail, error) {
	var details []model.OrderDetail
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("day ASC, id ASC").
		Find(&details).Error
	return details, err
}

// ==================== OrderStatusLogRepository 状态日志仓库 ====================

// OrderStatusLogRepository 订单状态日志仓库接口
type OrderStatusLogRepository interface {
	Create(ctx context.Context, log *model.OrderStatusLog) error
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderStatusLog, error)
}

type orderStatusLogRepository struct {
	db *gorm.DB
}

// NewOrderStatusLogRepository 创建状态日志仓库
func NewOrderStatusLogRepository(db *gorm.DB) OrderStatusLogRepository {
	return &orderStatusLogRepository{db: db}
}

func (r *orderStatusLogRepository) Create(ctx context.Context, log *model.OrderStatusLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *orderStatusLogRepository) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderStatusLog, error) {
	var logs []model.OrderStatusLog
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC, id ASC").
		Find(&logs).Error
	return logs, err
}

// ==================== 事务支持 ====================

// OrderUnitOfWork 订单工作单元（事务）
type OrderUnitOfWork struct {
	db      *gorm.DB
	Orders  OrderRepository
	Details OrderDetailRepository
	Logs    OrderStatusLogRepository
	Menus   MealMenuRepository
}

// NewOrderUnitOfWork 创建工作单元
func NewOrderUnitOfWork(db *gorm.DB) *OrderUnitOfWork {
	return &OrderUnitOfWork{
		db:      db,
		Orders:  NewOrderRepository(db),
		Details: NewOrderDetailRepository(db),
		Logs:    NewOrderStatusLogRepository(db),
		Menus:   NewMealMenuRepository(db),
	}
}

// Transaction 执行事务
func (u *OrderUnitOfWork) Transaction(ctx context.Context, fn func(uow *OrderUnitOfWork) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txUow := &OrderUnitOfWork{
			db:      tx,
			Orders:  NewOrderRepository(tx),
			Details: NewOrderDetailRepository(tx),
			Logs:    NewOrderStatusLogRepository(tx),
			Menus:   NewMealMenuRepository(tx),
		}
		return fn(txUow)
	})
}
