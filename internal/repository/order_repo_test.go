package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"canteen_order_v1/internal/model"
	"canteen_order_v1/pkg/database"
)

var testWeek = time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

func setupRepoTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(model.AllModels()...); err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}
	return db
}

// seedUser 创建指定角色的用户
func seedUser(t *testing.T, db *gorm.DB, username, roleName, status string) *model.SysUser {
	t.Helper()
	var role model.Role
	require.NoError(t, db.Where(model.Role{Name: roleName}).FirstOrCreate(&role).Error)
	user := &model.SysUser{Username: username, Password: "x", RoleID: role.ID, Status: status}
	require.NoError(t, db.Omit("Role").Create(user).Error)
	return user
}

func seedOrder(t *testing.T, db *gorm.DB, userID int64, week time.Time, slot string, shiftID int64) *model.Order {
	t.Helper()
	orderType := model.OrderTypeNormal
	if slot == model.OrderSlotBackup {
		orderType = model.OrderTypeBackup
	}
	order := &model.Order{
		UserID: userID, WeekStart: week, Slot: slot, OrderDate: week.AddDate(0, 0, -3),
		Type: orderType, Status: model.OrderStatusPending,
	}
	require.NoError(t, db.Omit("User", "Details").Create(order).Error)
	for i := 0; i < 5; i++ {
		require.NoError(t, db.Omit("Shift", "MealMenu").Create(&model.OrderDetail{
			OrderID: order.ID, Day: week.AddDate(0, 0, i), ShiftID: shiftID, MealMenuID: int64(i + 1),
		}).Error)
	}
	return order
}

// ==================== 周订单唯一性 ====================

func TestOrderRepo_UniqueUserWeekSlot(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()
	user := seedUser(t, db, "emp001", model.RoleEmployee, model.UserStatusActive)

	seedOrder(t, db, user.ID, testWeek, model.OrderSlotPrimary, 1)

	dup := &model.Order{
		UserID: user.ID, WeekStart: testWeek, Slot: model.OrderSlotPrimary,
		OrderDate: testWeek, Type: model.OrderTypeNormal, Status: model.OrderStatusPending,
	}
	err := repo.Create(ctx, dup)
	require.Error(t, err)
	assert.True(t, database.IsUniqueViolation(err))

	// 补单占用另一个位置
	backup := &model.Order{
		UserID: user.ID, WeekStart: testWeek, Slot: model.OrderSlotBackup,
		OrderDate: testWeek, Type: model.OrderTypeBackup, Status: model.OrderStatusPending,
	}
	require.NoError(t, repo.Create(ctx, backup))

	// 下一周不受影响
	next := &model.Order{
		UserID: user.ID, WeekStart: testWeek.AddDate(0, 0, 7), Slot: model.OrderSlotPrimary,
		OrderDate: testWeek, Type: model.OrderTypeNormal, Status: model.OrderStatusPending,
	}
	require.NoError(t, repo.Create(ctx, next))
}

// ==================== 周订单查询 ====================

func TestOrderRepo_WeekLookups(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()
	user := seedUser(t, db, "emp001", model.RoleEmployee, model.UserStatusActive)

	has, err := repo.HasWeekOrder(ctx, user.ID, testWeek)
	require.NoError(t, err)
	assert.False(t, has)

	missing, err := repo.FindUserWeekOrder(ctx, user.ID, testWeek)
	require.NoError(t, err)
	assert.Nil(t, missing)

	backup := seedOrder(t, db, user.ID, testWeek, model.OrderSlotBackup, 1)
	found, err := repo.FindUserWeekOrder(ctx, user.ID, testWeek)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, backup.ID, found.ID)

	// 自助订单优先于补单
	primary := seedOrder(t, db, user.ID, testWeek, model.OrderSlotPrimary, 1)
	found, err = repo.FindUserWeekOrder(ctx, user.ID, testWeek)
	require.NoError(t, err)
	assert.Equal(t, primary.ID, found.ID)
	require.Len(t, found.Details, 5)
	assert.True(t, found.Details[0].Day.Before(found.Details[4].Day))

	has, err = repo.HasWeekOrder(ctx, user.ID, testWeek)
	require.NoError(t, err)
	assert.True(t, has)

	removed, err := repo.DeleteByUserWeekSlot(ctx, user.ID, testWeek, model.OrderSlotBackup)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	var details int64
	require.NoError(t, db.Model(&model.OrderDetail{}).Where("order_id = ?", backup.ID).Count(&details).Error)
	assert.Zero(t, details)
}

func TestOrderRepo_GetByID(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewOrderRepository(db)

	_, err := repo.GetByID(context.Background(), 42)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestOrderRepo_LastShiftID(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()
	user := seedUser(t, db, "emp001", model.RoleEmployee, model.UserStatusActive)

	id, err := repo.LastShiftID(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, id)

	seedOrder(t, db, user.ID, testWeek.AddDate(0, 0, -14), model.OrderSlotPrimary, 3)
	seedOrder(t, db, user.ID, testWeek.AddDate(0, 0, -7), model.OrderSlotPrimary, 7)

	id, err = repo.LastShiftID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
}

// ==================== 统计 ====================

func TestOrderRepo_Coverage(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	a := seedUser(t, db, "emp001", model.RoleEmployee, model.UserStatusActive)
	b := seedUser(t, db, "emp002", model.RoleEmployee, model.UserStatusActive)
	gone := seedUser(t, db, "emp003", model.RoleEmployee, model.UserStatusInactive)
	vendor := seedUser(t, db, "vendor", model.RoleVendor, model.UserStatusActive)

	seedOrder(t, db, a.ID, testWeek, model.OrderSlotPrimary, 1)
	seedOrder(t, db, a.ID, testWeek, model.OrderSlotBackup, 1)
	seedOrder(t, db, b.ID, testWeek, model.OrderSlotBackup, 1)
	seedOrder(t, db, gone.ID, testWeek, model.OrderSlotPrimary, 1)
	seedOrder(t, db, vendor.ID, testWeek, model.OrderSlotPrimary, 1)

	ids, err := repo.CoveredUserIDs(ctx, testWeek)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{a.ID, b.ID, gone.ID, vendor.ID}, ids)

	covered, err := repo.CountCoveredByRole(ctx, testWeek, model.RoleEmployee, "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), covered, "同一员工两张订单只计一次，停用员工不计")

	self, err := repo.CountCoveredByRole(ctx, testWeek, model.RoleEmployee, model.OrderSlotPrimary)
	require.NoError(t, err)
	assert.Equal(t, int64(1), self)
}

func TestOrderRepo_ListFilter(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	for _, name := range []string{"emp001", "emp002", "emp003"} {
		u := seedUser(t, db, name, model.RoleEmployee, model.UserStatusActive)
		seedOrder(t, db, u.ID, testWeek, model.OrderSlotPrimary, 1)
	}
	require.NoError(t, repo.UpdateStatus(ctx, 1, model.OrderStatusApproved, 99))

	week := testWeek
	orders, total, err := repo.List(ctx, OrderFilter{WeekStart: &week, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, orders, 2)

	_, total, err = repo.List(ctx, OrderFilter{Status: model.OrderStatusApproved})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	got, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(99), got.UpdatedBy)
}

// ==================== 状态日志 ====================

func TestOrderStatusLogRepo_ListOrder(t *testing.T) {
	db := setupRepoTestDB(t)
	logs := NewOrderStatusLogRepository(db)
	ctx := context.Background()

	for _, to := range []string{model.OrderStatusPending, model.OrderStatusApproved, model.OrderStatusRejected} {
		require.NoError(t, logs.Create(ctx, &model.OrderStatusLog{OrderID: 1, ToStatus: to}))
	}

	list, err := logs.ListByOrderID(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, model.OrderStatusPending, list[0].ToStatus)
	assert.Equal(t, model.OrderStatusRejected, list[2].ToStatus)
}

// ==================== 事务 ====================

func TestOrderUnitOfWork_Rollback(t *testing.T) {
	db := setupRepoTestDB(t)
	uow := NewOrderUnitOfWork(db)
	ctx := context.Background()
	user := seedUser(t, db, "emp001", model.RoleEmployee, model.UserStatusActive)

	boom := errors.New("boom")
	err := uow.Transaction(ctx, func(tx *OrderUnitOfWork) error {
		order := &model.Order{
			UserID: user.ID, WeekStart: testWeek, Slot: model.OrderSlotPrimary,
			OrderDate: testWeek, Type: model.OrderTypeNormal, Status: model.OrderStatusPending,
		}
		if err := tx.Orders.Create(ctx, order); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	has, err := uow.Orders.HasWeekOrder(ctx, user.ID, testWeek)
	require.NoError(t, err)
	assert.False(t, has)
}

// ==================== 删除 ====================

func TestOrderRepo_DeleteRemovesLogs(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewOrderRepository(db)
	logs := NewOrderStatusLogRepository(db)
	ctx := context.Background()
	user := seedUser(t, db, "emp001", model.RoleEmployee, model.UserStatusActive)

	primary := seedOrder(t, db, user.ID, testWeek, model.OrderSlotPrimary, 1)
	backup := seedOrder(t, db, user.ID, testWeek, model.OrderSlotBackup, 1)
	for _, id := range []int64{primary.ID, backup.ID} {
		require.NoError(t, logs.Create(ctx, &model.OrderStatusLog{OrderID: id, ToStatus: model.OrderStatusPending}))
	}

	require.NoError(t, repo.Delete(ctx, primary.ID))
	removed, err := repo.DeleteByUserWeekSlot(ctx, user.ID, testWeek, model.OrderSlotBackup)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	var orders, details, logRows int64
	require.NoError(t, db.Model(&model.Order{}).Count(&orders).Error)
	require.NoError(t, db.Model(&model.OrderDetail{}).Count(&details).Error)
	require.NoError(t, db.Model(&model.OrderStatusLog{}).Count(&logRows).Error)
	assert.Zero(t, orders)
	assert.Zero(t, details)
	assert.Zero(t, logRows, "订单删除后不应残留状态日志")
}

func TestOrderRepo_LockUser(t *testing.T) {
	db := setupRepoTestDB(t)
	uow := NewOrderUnitOfWork(db)
	ctx := context.Background()
	user := seedUser(t, db, "emp001", model.RoleEmployee, model.UserStatusActive)

	err := uow.Transaction(ctx, func(tx *OrderUnitOfWork) error {
		if err := tx.Orders.LockUser(ctx, user.ID); err != nil {
			return err
		}
		return tx.Orders.LockUser(ctx, 9999)
	})
	assert.NoError(t, err, "不存在的用户不报错")
}
