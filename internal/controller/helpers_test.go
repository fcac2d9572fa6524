package controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"canteen_order_v1/internal/api/dto"
	"canteen_order_v1/internal/middleware"
	"canteen_order_v1/internal/model"
	"canteen_order_v1/internal/repository"
	"canteen_order_v1/internal/service"
	"canteen_order_v1/pkg/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := dto.RegisterValidators(); err != nil {
		panic(err)
	}
}

// ==================== 测试辅助 ====================

var wib = time.FixedZone("WIB", 7*3600)

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time { return c.now }

// testEnv 真实的服务栈 + 内存 SQLite
// 鉴权由 X-Test-User / X-Test-Role 请求头模拟
type testEnv struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
	clock  *testClock
	week   time.Time

	roles  map[string]int64
	shift  *model.Shift
	vendor *model.VendorCatering
	menus  []model.MealMenu
	admin  *model.SysUser
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(model.AllModels()...))

	// 周四上午，订餐窗口内
	clock := &testClock{now: time.Date(2026, 10, 15, 9, 0, 0, 0, wib)}
	env := &testEnv{
		t:     t,
		db:    db,
		clock: clock,
		week:  utils.NextMonday(clock.now),
		roles: make(map[string]int64),
	}
	env.seed()

	users := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	shifts := repository.NewShiftRepository(db)
	locations := repository.NewLocationRepository(db)
	departments := repository.NewDepartmentRepository(db)
	vendors := repository.NewVendorRepository(db)
	menus := repository.NewMealMenuRepository(db)
	uow := repository.NewOrderUnitOfWork(db)

	orderSvc := service.NewOrderService(uow, shifts, clock, nil)
	menuSvc := service.NewMenuService(menus, vendors, shifts, clock)
	backupSvc := service.NewBackupOrderService(uow, users, shifts, menus, service.BackupConfig{}, clock, nil)
	reportSvc := service.NewReportService(users, uow.Orders)
	roleSvc := service.NewRoleService(roleRepo, 16, time.Minute)

	orderCtl := NewOrderController(orderSvc)
	menuCtl := NewMenuController(menuSvc)
	reportCtl := NewReportController(reportSvc, backupSvc)
	userCtl := NewUserController(service.NewUserService(users, roleRepo, locations, departments), service.NewQRCodeService(repository.NewQRCodeRepository(db)))
	masterCtl := NewMasterController(service.NewMasterService(shifts, locations, departments, vendors, users), roleSvc)

	r := gin.New()
	api := r.Group("/api", fakeAuth())
	api.GET("/orders/eligibility", orderCtl.Eligibility)
	api.POST("/orders", orderCtl.Create)
	api.GET("/orders/me", orderCtl.MyWeekOrder)
	api.GET("/orders", orderCtl.List)
	api.GET("/orders/:id", orderCtl.Get)
	api.DELETE("/orders/:id", orderCtl.Delete)
	api.GET("/orders/:id/history", orderCtl.History)
	api.POST("/orders/:id/approve", orderCtl.Approve)
	api.POST("/orders/:id/reject", orderCtl.Reject)
	api.POST("/orders/bulk-approve", orderCtl.BulkApprove)
	api.PATCH("/orders/:id/status", orderCtl.UpdateStatus)
	api.GET("/menus/weekly", menuCtl.Weekly)
	api.GET("/reports/weekly", reportCtl.WeeklyStats)
	api.GET("/reports/not-ordered", reportCtl.NotOrdered)
	api.POST("/backfill", reportCtl.Backfill)
	api.GET("/qrcode/me", userCtl.MyQRCode)
	api.GET("/qrcode/scan/:data", userCtl.ScanQRCode)
	api.GET("/shifts", masterCtl.ListShifts)
	api.POST("/shifts", masterCtl.CreateShift)
	env.router = r
	return env
}

func fakeAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id, err := strconv.ParseInt(c.GetHeader("X-Test-User"), 10, 64); err == nil {
			c.Set(middleware.ContextKeyUserID, id)
		}
		c.Set(middleware.ContextKeyRole, c.GetHeader("X-Test-Role"))
		c.Next()
	}
}

func (e *testEnv) seed() {
	t := e.t
	for _, name := range []string{model.RoleAdmin, model.RoleGeneralAffair, model.RoleVendor, model.RoleEmployee} {
		role := &model.Role{Name: name}
		require.NoError(t, e.db.Create(role).Error)
		e.roles[name] = role.ID
	}

	location := &model.Location{Name: "Plant A"}
	require.NoError(t, e.db.Create(location).Error)

	e.admin = e.addUser("admin", model.RoleAdmin)
	vendorUser := e.addUser("vendor1", model.RoleVendor)

	e.shift = &model.Shift{Name: "Shift 1", TimeOn: "12:00", StartAt: "08:00", EndAt: "17:00"}
	require.NoError(t, e.db.Create(e.shift).Error)

	e.vendor = &model.VendorCatering{
		UserID: vendorUser.ID, Name: "Catering A", LocationID: location.ID,
		ShiftID: e.shift.ID, Status: model.VendorStatusActive,
	}
	require.NoError(t, e.db.Create(e.vendor).Error)

	for i, day := range utils.Weekdays(e.week) {
		menu := model.MealMenu{
			VendorCateringID: e.vendor.ID,
			Name:             fmt.Sprintf("menu %d", i+1),
			ForDate:          day,
			Status:           model.MenuStatusApproved,
		}
		require.NoError(t, e.db.Create(&menu).Error)
		e.menus = append(e.menus, menu)
	}
}

func (e *testEnv) addUser(username, role string) *model.SysUser {
	e.t.Helper()
	user := &model.SysUser{
		Username: username,
		Password: "x",
		Name:     username,
		RoleID:   e.roles[role],
		Status:   model.UserStatusActive,
	}
	require.NoError(e.t, e.db.Omit("Role").Create(user).Error)
	return user
}

func (e *testEnv) orderBody() gin.H {
	entries := make([]gin.H, 0, len(e.menus))
	for _, m := range e.menus {
		entries = append(entries, gin.H{"day": utils.FormatDate(m.ForDate), "meal_menu_id": m.ID})
	}
	return gin.H{"shift_id": e.shift.ID, "entries": entries}
}

// do 以 user / role 身份发起请求，返回状态码与解析后的响应体
func (e *testEnv) do(method, path string, user *model.SysUser, role string, body interface{}) (int, map[string]interface{}) {
	e.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != nil {
		req.Header.Set("X-Test-User", strconv.FormatInt(user.ID, 10))
		req.Header.Set("X-Test-Role", role)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var resp map[string]interface{}
	require.NoError(e.t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w.Code, resp
}
