package controller

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"canteen_order_v1/internal/middleware"
	"canteen_order_v1/internal/service"
	"canteen_order_v1/pkg/utils"
)

// 业务错误码，前端据此展示提示而非报错
const (
	CodeWindowClosed      = 40901
	CodeDuplicateOrder    = 40902
	CodeInvalidTransition = 40903
	CodeInvalidMenu       = 40001
	CodeIncomplete        = 40002
	CodeIntegrity         = 40003
)

// ==================== 响应封装 ====================

func ok(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": message,
		"data":    data,
	})
}

func created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{
		"code":    0,
		"message": message,
		"data":    data,
	})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"code":    400,
		"message": "参数错误: " + err.Error(),
	})
}

// fail 业务错误统一映射为 HTTP 状态码
func fail(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, 500
	message := err.Error()
	var data gin.H

	var (
		menuErr      *service.MenuSelectionError
		integrityErr *service.IntegrityError
	)
	switch {
	case errors.Is(err, service.ErrOrderingWindowClosed):
		status, code = http.StatusConflict, CodeWindowClosed
	case errors.Is(err, service.ErrDuplicateWeeklyOrder):
		status, code = http.StatusConflict, CodeDuplicateOrder
	case errors.Is(err, service.ErrInvalidTransition):
		status, code = http.StatusConflict, CodeInvalidTransition
	case errors.As(err, &menuErr):
		status, code = http.StatusBadRequest, CodeInvalidMenu
		data = gin.H{"day": utils.FormatDate(menuErr.Day), "reason": menuErr.Reason}
	case errors.Is(err, service.ErrInvalidMenuSelection):
		status, code = http.StatusBadRequest, CodeInvalidMenu
	case errors.Is(err, service.ErrIncompleteSubmission):
		status, code = http.StatusBadRequest, CodeIncomplete
	case errors.As(err, &integrityErr):
		status, code = http.StatusBadRequest, CodeIntegrity
		data = gin.H{"field": integrityErr.Field, "id": integrityErr.ID}
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrInvalidStatus):
		status, code = http.StatusBadRequest, 400
	case errors.Is(err, service.ErrNotFound):
		status, code = http.StatusNotFound, 404
	case errors.Is(err, service.ErrForbidden):
		status, code = http.StatusForbidden, 403
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrUserDisabled):
		status, code = http.StatusUnauthorized, 401
	case errors.Is(err, service.ErrUsernameExists):
		status, code = http.StatusConflict, 409
	default:
		_ = c.Error(err)
		if !gin.IsDebugging() {
			message = "服务器内部错误"
		}
	}

	body := gin.H{"code": code, "message": message}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

// ==================== 请求解析 ====================

func principalOf(c *gin.Context) service.Principal {
	return service.Principal{
		UserID: middleware.GetUserID(c),
		Role:   middleware.GetUserRole(c),
	}
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "无效的ID",
		})
		return 0, false
	}
	return id, true
}

// parseWeekQuery 解析 ?week=YYYY-MM-DD，取所在周的周一；为空时使用 fallback
func parseWeekQuery(c *gin.Context, fallback time.Time) (time.Time, bool) {
	raw := c.Query("week")
	if raw == "" {
		return fallback, true
	}
	week, err := utils.ParseDate(raw)
	if err != nil {
		badRequest(c, err)
		return time.Time{}, false
	}
	return utils.WeekStartOf(week), true
}
