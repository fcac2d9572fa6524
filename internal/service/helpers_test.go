package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"canteen_order_v1/internal/api/dto"
	"canteen_order_v1/internal/model"
	"canteen_order_v1/internal/repository"
	"canteen_order_v1/pkg/utils"
)

// ==================== 测试辅助 ====================

// wib 业务时区 UTC+7
var wib = time.FixedZone("WIB", 7*3600)

// thursdayMorning 2026-10-15 周四 09:00，订餐窗口内，目标周为 2026-10-19
var thursdayMorning = time.Date(2026, 10, 15, 9, 0, 0, 0, wib)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err, "连接测试数据库失败")

	// :memory: 每个连接是独立的库
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(model.AllModels()...))
	return db
}

// fixture 一个地点、一个班次、一个供应商，目标周每天一份已审核菜单
type fixture struct {
	t     *testing.T
	db    *gorm.DB
	clock *mutableClock
	week  time.Time
	roles map[string]*model.Role

	location *model.Location
	shift    *model.Shift
	vendor   *model.VendorCatering
	menus    []model.MealMenu // 周一至周五，与 utils.Weekdays 对齐

	admin *model.SysUser

	uow     *repository.OrderUnitOfWork
	users   repository.UserRepository
	shifts  repository.ShiftRepository
	menuRep repository.MealMenuRepository

	orders *OrderService
	report *ReportService
}

// mutableClock 可调整的测试时钟
type mutableClock struct {
	now time.Time
}

func (c *mutableClock) Now() time.Time { return c.now }

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := setupTestDB(t)
	f := &fixture{
		t:     t,
		db:    db,
		clock: &mutableClock{now: thursdayMorning},
		week:  utils.NextMonday(thursdayMorning),
		roles: make(map[string]*model.Role),
	}

	for _, name := range []string{model.RoleAdmin, model.RoleGeneralAffair, model.RoleVendor, model.RoleEmployee} {
		role := &model.Role{Name: name}
		require.NoError(t, db.Create(role).Error)
		f.roles[name] = role
	}

	f.location = &model.Location{Name: "Plant A"}
	require.NoError(t, db.Create(f.location).Error)

	f.admin = f.addUser("admin", model.RoleAdmin, model.UserStatusActive)
	f.shift = f.addShift("Shift 1")
	vendorUser := f.addUser("vendor1", model.RoleVendor, model.UserStatusActive)
	f.vendor = f.addVendor(vendorUser, f.shift)
	f.menus = f.addWeekMenus(f.vendor, model.MenuStatusApproved, utils.WorkDays)

	f.uow = repository.NewOrderUnitOfWork(db)
	f.users = repository.NewUserRepository(db)
	f.shifts = repository.NewShiftRepository(db)
	f.menuRep = repository.NewMealMenuRepository(db)

	f.orders = NewOrderService(f.uow, f.shifts, f.clock, nil)
	f.report = NewReportService(f.users, f.uow.Orders)
	return f
}

func (f *fixture) addUser(username, roleName, status string) *model.SysUser {
	f.t.Helper()
	user := &model.SysUser{
		Username:   username,
		Password:   "x",
		Name:       username,
		RoleID:     f.roles[roleName].ID,
		LocationID: &f.location.ID,
		Status:     status,
	}
	require.NoError(f.t, f.db.Omit("Role").Create(user).Error)
	return user
}

func (f *fixture) addEmployees(n int) []*model.SysUser {
	f.t.Helper()
	list := make([]*model.SysUser, 0, n)
	for i := 0; i < n; i++ {
		var count int64
		f.db.Model(&model.SysUser{}).Count(&count)
		list = append(list, f.addUser(fmt.Sprintf("emp%03d", count+1), model.RoleEmployee, model.UserStatusActive))
	}
	return list
}

func (f *fixture) addShift(name string) *model.Shift {
	f.t.Helper()
	shift := &model.Shift{Name: name, TimeOn: "12:00", StartAt: "08:00", EndAt: "17:00"}
	require.NoError(f.t, f.db.Create(shift).Error)
	return shift
}

func (f *fixture) addVendor(owner *model.SysUser, shift *model.Shift) *model.VendorCatering {
	f.t.Helper()
	vendor := &model.VendorCatering{
		UserID:     owner.ID,
		Name:       owner.Username + " catering",
		LocationID: f.location.ID,
		ShiftID:    shift.ID,
		Status:     model.VendorStatusActive,
	}
	require.NoError(f.t, f.db.Create(vendor).Error)
	return vendor
}

// addWeekMenus 为目标周前 days 天各建一份菜单
func (f *fixture) addWeekMenus(vendor *model.VendorCatering, status string, days int) []model.MealMenu {
	f.t.Helper()
	menus := make([]model.MealMenu, 0, days)
	for i, day := range utils.Weekdays(f.week) {
		if i >= days {
			break
		}
		menu := model.MealMenu{
			VendorCateringID: vendor.ID,
			Name:             fmt.Sprintf("%s menu %d", vendor.Name, i+1),
			ForDate:          day,
			Status:           status,
		}
		require.NoError(f.t, f.db.Create(&menu).Error)
		menus = append(menus, menu)
	}
	return menus
}

// weekRequest 用 menus 组装一份完整的下单请求
func (f *fixture) weekRequest(menus []model.MealMenu) *dto.CreateOrderRequest {
	req := &dto.CreateOrderRequest{ShiftID: f.shift.ID}
	for _, m := range menus {
		req.Entries = append(req.Entries, dto.OrderEntryRequest{
			Day:        utils.FormatDate(m.ForDate),
			MealMenuID: m.ID,
		})
	}
	return req
}

func (f *fixture) placeOrder(user *model.SysUser) *model.Order {
	f.t.Helper()
	order, err := f.orders.CreateOrder(context.Background(), employee(user), f.weekRequest(f.menus))
	require.NoError(f.t, err)
	return order
}

func (f *fixture) count(m interface{}) int64 {
	f.t.Helper()
	var n int64
	require.NoError(f.t, f.db.Model(m).Count(&n).Error)
	return n
}

func (f *fixture) backupService(cfg BackupConfig) *BackupOrderService {
	return NewBackupOrderService(f.uow, f.users, f.shifts, f.menuRep, cfg, f.clock, nil)
}

func employee(u *model.SysUser) Principal {
	return Principal{UserID: u.ID, Role: model.RoleEmployee}
}

func adminOf(u *model.SysUser) Principal {
	return Principal{UserID: u.ID, Role: model.RoleAdmin}
}
