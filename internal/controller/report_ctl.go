package controller

import (
	"github.com/gin-gonic/gin"

	"canteen_order_v1/internal/service"
)

// ==================== ReportController 报表与补单 ====================

// ReportController 周报与补单控制器
type ReportController struct {
	reportService *service.ReportService
	backupService *service.BackupOrderService
}

// NewReportController 创建报表控制器
func NewReportController(reportService *service.ReportService, backupService *service.BackupOrderService) *ReportController {
	return &ReportController{
		reportService: reportService,
		backupService: backupService,
	}
}

// WeeklyStats 周订餐统计
// @Summary 目标周已下单 / 未下单人数
// @Tags Report
// @Produce json
// @Security BearerAuth
// @Param week query string false "目标周任意日期，默认下周"
// @Success 200 {object} dto.WeeklyStats
// @Router /reports/weekly [get]
func (ctrl *ReportController) WeeklyStats(c *gin.Context) {
	week, valid := parseWeekQuery(c, ctrl.backupService.TargetWeek())
	if !valid {
		return
	}

	stats, err := ctrl.reportService.WeeklyStats(c.Request.Context(), week)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "success", stats)
}

// NotOrdered 未下单员工名单
// @Summary 目标周未下单的启用员工
// @Tags Report
// @Produce json
// @Security BearerAuth
// @Param week query string false "目标周任意日期，默认下周"
// @Success 200 {array} dto.EmployeeSummary
// @Router /reports/not-ordered [get]
func (ctrl *ReportController) NotOrdered(c *gin.Context) {
	week, valid := parseWeekQuery(c, ctrl.backupService.TargetWeek())
	if !valid {
		return
	}

	list, err := ctrl.reportService.NotOrderedEmployees(c.Request.Context(), week)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "success", list)
}

// Backfill 手动触发补单
// @Summary 为未下单员工生成补单（可重复执行）
// @Tags Report
// @Produce json
// @Security BearerAuth
// @Param week query string false "目标周任意日期，默认下周"
// @Success 200 {object} dto.BackfillResult
// @Failure 429 {object} map[string]interface{} "冷却中"
// @Router /backfill [post]
func (ctrl *ReportController) Backfill(c *gin.Context) {
	p := principalOf(c)
	if !p.IsAdmin() {
		fail(c, service.ErrForbidden)
		return
	}

	week, valid := parseWeekQuery(c, ctrl.backupService.TargetWeek())
	if !valid {
		return
	}

	result, err := ctrl.backupService.GenerateBackupOrders(c.Request.Context(), week, p.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "补单完成", result)
}
