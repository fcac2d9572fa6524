package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canteen_order_v1/internal/model"
	"canteen_order_v1/internal/service"
	"canteen_order_v1/pkg/utils"
)

// ==================== 错误映射 ====================

func TestFail_StatusMapping(t *testing.T) {
	day := time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   float64
	}{
		{"窗口关闭", service.ErrOrderingWindowClosed, http.StatusConflict, CodeWindowClosed},
		{"重复下单", service.ErrDuplicateWeeklyOrder, http.StatusConflict, CodeDuplicateOrder},
		{"非法流转", fmt.Errorf("%w: x", service.ErrInvalidTransition), http.StatusConflict, CodeInvalidTransition},
		{"菜单无效", &service.MenuSelectionError{Day: day, Reason: "菜单未审核"}, http.StatusBadRequest, CodeInvalidMenu},
		{"天数不足", service.ErrIncompleteSubmission, http.StatusBadRequest, CodeIncomplete},
		{"外键不存在", &service.IntegrityError{Field: "role_id", ID: 9}, http.StatusBadRequest, CodeIntegrity},
		{"校验失败", service.ErrValidation, http.StatusBadRequest, 400},
		{"不存在", &service.NotFoundError{Resource: "order", ID: 1}, http.StatusNotFound, 404},
		{"无权限", service.ErrForbidden, http.StatusForbidden, 403},
		{"未认证", service.ErrInvalidCredentials, http.StatusUnauthorized, 401},
		{"用户名重复", service.ErrUsernameExists, http.StatusConflict, 409},
		{"未知错误", errors.New("db down"), http.StatusInternalServerError, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			fail(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			var body map[string]interface{}
			require.NoError(t, decodeJSON(w, &body))
			assert.Equal(t, tt.wantCode, body["code"])
		})
	}
}

func TestFail_DetailPayload(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	day := time.Date(2026, 10, 21, 0, 0, 0, 0, time.UTC)

	fail(c, &service.MenuSelectionError{Day: day, Reason: "菜单不属于所选班次"})

	var body map[string]interface{}
	require.NoError(t, decodeJSON(w, &body))
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "2026-10-21", data["day"])
	assert.Equal(t, "菜单不属于所选班次", data["reason"])
}

func TestFail_HidesInternalMessage(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	fail(c, errors.New("pq: connection refused"))

	var body map[string]interface{}
	require.NoError(t, decodeJSON(w, &body))
	assert.Equal(t, "服务器内部错误", body["message"])
	assert.Len(t, c.Errors, 1)
}

// ==================== 下单流程 ====================

func TestOrderController_CreateFlow(t *testing.T) {
	env := newTestEnv(t)
	emp := env.addUser("emp001", model.RoleEmployee)

	status, body := env.do(http.MethodPost, "/api/orders", emp, model.RoleEmployee, env.orderBody())
	require.Equal(t, http.StatusCreated, status, body)
	order := body["data"].(map[string]interface{})
	assert.Equal(t, model.OrderStatusPending, order["status"])
	assert.Len(t, order["details"], utils.WorkDays)

	status, body = env.do(http.MethodPost, "/api/orders", emp, model.RoleEmployee, env.orderBody())
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, float64(CodeDuplicateOrder), body["code"])

	status, body = env.do(http.MethodGet, "/api/orders/me", emp, model.RoleEmployee, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, order["id"], body["data"].(map[string]interface{})["id"])

	status, body = env.do(http.MethodGet, "/api/orders/eligibility", emp, model.RoleEmployee, nil)
	require.Equal(t, http.StatusOK, status)
	elig := body["data"].(map[string]interface{})
	assert.Equal(t, true, elig["open"])
	assert.Equal(t, true, elig["has_order"])
	assert.Equal(t, utils.FormatDate(env.week), elig["target_week"])
}

func TestOrderController_CreateRejected(t *testing.T) {
	env := newTestEnv(t)
	emp := env.addUser("emp001", model.RoleEmployee)

	t.Run("四天", func(t *testing.T) {
		body := env.orderBody()
		body["entries"] = body["entries"].([]gin.H)[:4]
		status, resp := env.do(http.MethodPost, "/api/orders", emp, model.RoleEmployee, body)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, float64(CodeIncomplete), resp["code"])
	})

	t.Run("日期格式错误", func(t *testing.T) {
		body := env.orderBody()
		body["entries"].([]gin.H)[0]["day"] = "20/10/2026"
		status, resp := env.do(http.MethodPost, "/api/orders", emp, model.RoleEmployee, body)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, float64(400), resp["code"])
	})

	t.Run("菜单未审核", func(t *testing.T) {
		require.NoError(t, env.db.Model(&model.MealMenu{}).Where("id = ?", env.menus[1].ID).
			Update("status", model.MenuStatusPending).Error)
		t.Cleanup(func() {
			env.db.Model(&model.MealMenu{}).Where("id = ?", env.menus[1].ID).Update("status", model.MenuStatusApproved)
		})

		status, resp := env.do(http.MethodPost, "/api/orders", emp, model.RoleEmployee, env.orderBody())
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, float64(CodeInvalidMenu), resp["code"])
		data := resp["data"].(map[string]interface{})
		assert.Equal(t, utils.FormatDate(env.menus[1].ForDate), data["day"])
	})

	t.Run("窗口已关闭", func(t *testing.T) {
		saved := env.clock.now
		env.clock.now = time.Date(2026, 10, 17, 12, 0, 0, 0, wib)
		t.Cleanup(func() { env.clock.now = saved })

		status, resp := env.do(http.MethodPost, "/api/orders", emp, model.RoleEmployee, env.orderBody())
		assert.Equal(t, http.StatusConflict, status)
		assert.Equal(t, float64(CodeWindowClosed), resp["code"])
	})

	assert.Equal(t, int64(0), countRows(t, env, &model.Order{}))
}

func TestOrderController_ReviewFlow(t *testing.T) {
	env := newTestEnv(t)
	emp := env.addUser("emp001", model.RoleEmployee)
	other := env.addUser("emp002", model.RoleEmployee)

	_, body := env.do(http.MethodPost, "/api/orders", emp, model.RoleEmployee, env.orderBody())
	id := int64(body["data"].(map[string]interface{})["id"].(float64))
	orderPath := fmt.Sprintf("/api/orders/%d", id)

	// 员工不能审核，也不能看别人的订单
	status, _ := env.do(http.MethodPost, orderPath+"/approve", emp, model.RoleEmployee, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = env.do(http.MethodGet, orderPath, other, model.RoleEmployee, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body = env.do(http.MethodPost, orderPath+"/approve", env.admin, model.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, model.OrderStatusApproved, body["data"].(map[string]interface{})["status"])

	// 已通过的订单不能驳回
	status, body = env.do(http.MethodPost, orderPath+"/reject", env.admin, model.RoleAdmin, gin.H{"notes": "late"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, float64(CodeInvalidTransition), body["code"])

	// 强制修改
	status, body = env.do(http.MethodPatch, orderPath+"/status", env.admin, model.RoleAdmin,
		gin.H{"status": model.OrderStatusRejected, "reason": "vendor closed"})
	require.Equal(t, http.StatusOK, status, body)

	status, body = env.do(http.MethodPatch, orderPath+"/status", env.admin, model.RoleAdmin, gin.H{"status": "archived"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = env.do(http.MethodGet, orderPath+"/history", emp, model.RoleEmployee, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"], 3)

	status, _ = env.do(http.MethodGet, "/api/orders/abc", env.admin, model.RoleAdmin, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = env.do(http.MethodGet, "/api/orders/9999", env.admin, model.RoleAdmin, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestOrderController_BulkApproveAndList(t *testing.T) {
	env := newTestEnv(t)
	var ids []int64
	for i := 1; i <= 3; i++ {
		emp := env.addUser(fmt.Sprintf("emp%03d", i), model.RoleEmployee)
		_, body := env.do(http.MethodPost, "/api/orders", emp, model.RoleEmployee, env.orderBody())
		ids = append(ids, int64(body["data"].(map[string]interface{})["id"].(float64)))
	}

	status, body := env.do(http.MethodPost, "/api/orders/bulk-approve", env.admin, model.RoleAdmin,
		gin.H{"order_ids": append(ids, 9999)})
	require.Equal(t, http.StatusOK, status, body)
	result := body["data"].(map[string]interface{})
	assert.Equal(t, float64(3), result["updated"])
	assert.Equal(t, float64(1), result["failed"])

	status, _ = env.do(http.MethodPost, "/api/orders/bulk-approve", env.admin, model.RoleAdmin, gin.H{"order_ids": []int64{}})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = env.do(http.MethodGet, "/api/orders?status=approved&week="+utils.FormatDate(env.week),
		env.admin, model.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, status, body)
	list := body["data"].(map[string]interface{})
	assert.Equal(t, float64(3), list["total"])

	status, _ = env.do(http.MethodGet, "/api/orders", nil, "", nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestOrderController_Delete(t *testing.T) {
	env := newTestEnv(t)
	emp := env.addUser("emp001", model.RoleEmployee)
	_, body := env.do(http.MethodPost, "/api/orders", emp, model.RoleEmployee, env.orderBody())
	id := int64(body["data"].(map[string]interface{})["id"].(float64))

	status, _ := env.do(http.MethodDelete, fmt.Sprintf("/api/orders/%d", id), emp, model.RoleEmployee, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Zero(t, countRows(t, env, &model.Order{}))
	assert.Zero(t, countRows(t, env, &model.OrderDetail{}))

	// 删除后可以重新下单
	status, _ = env.do(http.MethodPost, "/api/orders", emp, model.RoleEmployee, env.orderBody())
	assert.Equal(t, http.StatusCreated, status)
}

// ==================== 菜单 / 报表 / 补单 ====================

func TestMenuController_Weekly(t *testing.T) {
	env := newTestEnv(t)
	emp := env.addUser("emp001", model.RoleEmployee)

	status, body := env.do(http.MethodGet, fmt.Sprintf("/api/menus/weekly?shift_id=%d", env.shift.ID), emp, model.RoleEmployee, nil)
	require.Equal(t, http.StatusOK, status, body)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, utils.FormatDate(env.week), data["week_start"])
	assert.Len(t, data["days"], utils.WorkDays)

	status, _ = env.do(http.MethodGet, "/api/menus/weekly", emp, model.RoleEmployee, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = env.do(http.MethodGet, "/api/menus/weekly?shift_id=9999", emp, model.RoleEmployee, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = env.do(http.MethodGet, fmt.Sprintf("/api/menus/weekly?shift_id=%d&week=bad", env.shift.ID), emp, model.RoleEmployee, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestReportController_BackfillFlow(t *testing.T) {
	env := newTestEnv(t)
	emp := env.addUser("emp001", model.RoleEmployee)
	env.addUser("emp002", model.RoleEmployee)
	env.addUser("emp003", model.RoleEmployee)
	env.do(http.MethodPost, "/api/orders", emp, model.RoleEmployee, env.orderBody())

	status, body := env.do(http.MethodGet, "/api/reports/weekly", env.admin, model.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, status)
	stats := body["data"].(map[string]interface{})
	assert.Equal(t, float64(3), stats["total_employees"])
	assert.Equal(t, float64(1), stats["total_ordered"])
	assert.Equal(t, float64(2), stats["total_not_ordered"])

	status, body = env.do(http.MethodGet, "/api/reports/not-ordered", env.admin, model.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"], 2)

	// 只有管理员能触发补单
	status, _ = env.do(http.MethodPost, "/api/backfill", emp, model.RoleGeneralAffair, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body = env.do(http.MethodPost, "/api/backfill?week="+utils.FormatDate(env.week), env.admin, model.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, status, body)
	result := body["data"].(map[string]interface{})
	assert.Equal(t, float64(2), result["created"])
	assert.Equal(t, float64(1), result["skipped"])

	_, body = env.do(http.MethodGet, "/api/reports/weekly", env.admin, model.RoleAdmin, nil)
	stats = body["data"].(map[string]interface{})
	assert.Equal(t, float64(3), stats["total_ordered"])
	assert.Equal(t, float64(2), stats["backup_ordered"])
}

// ==================== 取餐码 / 主数据 ====================

func TestUserController_QRCode(t *testing.T) {
	env := newTestEnv(t)
	emp := env.addUser("emp001", model.RoleEmployee)

	status, body := env.do(http.MethodGet, "/api/qrcode/me", emp, model.RoleEmployee, nil)
	require.Equal(t, http.StatusOK, status, body)
	data := body["data"].(map[string]interface{})["qr_code_data"].(string)
	require.NotEmpty(t, data)

	status, body = env.do(http.MethodGet, "/api/qrcode/scan/"+data, env.admin, model.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "emp001", body["data"].(map[string]interface{})["username"])

	status, _ = env.do(http.MethodGet, "/api/qrcode/scan/unknown", env.admin, model.RoleAdmin, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestMasterController_Shifts(t *testing.T) {
	env := newTestEnv(t)

	status, _ := env.do(http.MethodPost, "/api/shifts", env.admin, model.RoleAdmin, gin.H{"name": "Night", "start_at": "25:00"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body := env.do(http.MethodPost, "/api/shifts", env.admin, model.RoleAdmin,
		gin.H{"name": "Night", "time_on": "00:30", "start_at": "20:00", "end_at": "05:00"})
	require.Equal(t, http.StatusCreated, status, body)

	status, body = env.do(http.MethodGet, "/api/shifts", env.admin, model.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"], 2)
}

// ==================== 辅助 ====================

func decodeJSON(w *httptest.ResponseRecorder, v interface{}) error {
	return json.Unmarshal(w.Body.Bytes(), v)
}

func countRows(t *testing.T, env *testEnv, m interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, env.db.Model(m).Count(&n).Error)
	return n
}
