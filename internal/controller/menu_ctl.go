package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"canteen_order_v1/internal/api/dto"
	"canteen_order_v1/internal/service"
)

// ==================== MenuController 菜单控制器 ====================

// MenuController 菜单控制器
type MenuController struct {
	menuService *service.MenuService
}

// NewMenuController 创建菜单控制器
func NewMenuController(menuService *service.MenuService) *MenuController {
	return &MenuController{menuService: menuService}
}

// Weekly 员工查看某班次一周的已审核菜单
// @Summary 目标周菜单（周一至周五，按日期分组）
// @Tags Menu
// @Produce json
// @Security BearerAuth
// @Param shift_id query int true "班次ID"
// @Param week query string false "目标周任意日期，默认下周"
// @Success 200 {object} dto.WeeklyMenuResponse
// @Failure 404 {object} map[string]interface{}
// @Router /menus/weekly [get]
func (ctrl *MenuController) Weekly(c *gin.Context) {
	shiftID, err := strconv.ParseInt(c.Query("shift_id"), 10, 64)
	if err != nil || shiftID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "无效的班次ID",
		})
		return
	}

	week, valid := parseWeekQuery(c, ctrl.menuService.TargetWeek())
	if !valid {
		return
	}

	resp, err := ctrl.menuService.VisibleMenus(c.Request.Context(), shiftID, week)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "success", resp)
}

// List 菜单列表（供应商只能看到自己的）
// @Summary 菜单列表
// @Tags Menu
// @Produce json
// @Security BearerAuth
// @Param vendor_catering_id query int false "供应商ID"
// @Param status query string false "pending / approved / rejected"
// @Param from query string false "开始日期"
// @Param to query string false "结束日期"
// @Success 200 {array} model.MealMenu
// @Router /menus [get]
func (ctrl *MenuController) List(c *gin.Context) {
	var req dto.MenuListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}

	menus, err := ctrl.menuService.ListMenus(c.Request.Context(), principalOf(c), &req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "success", menus)
}

// Create 创建菜单，初始为待审核
// @Summary 创建菜单
// @Tags Menu
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateMenuRequest true "菜单"
// @Success 201 {object} model.MealMenu
// @Router /menus [post]
func (ctrl *MenuController) Create(c *gin.Context) {
	var req dto.CreateMenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	menu, err := ctrl.menuService.CreateMenu(c.Request.Context(), principalOf(c), &req)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, "创建成功", menu)
}

// Update 修改菜单内容
// @Summary 修改菜单（供应商只能修改待审核的菜单）
// @Tags Menu
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "菜单ID"
// @Param body body dto.UpdateMenuRequest true "菜单"
// @Success 200 {object} model.MealMenu
// @Router /menus/{id} [put]
func (ctrl *MenuController) Update(c *gin.Context) {
	id, valid := parseIDParam(c, "id")
	if !valid {
		return
	}

	var req dto.UpdateMenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	menu, err := ctrl.menuService.UpdateMenu(c.Request.Context(), principalOf(c), id, &req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "更新成功", menu)
}

// SetStatus 审核菜单
// @Summary 审核菜单（管理员 / 行政）
// @Tags Menu
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "菜单ID"
// @Param body body dto.UpdateMenuStatusRequest true "审核结果"
// @Success 200 {object} model.MealMenu
// @Router /menus/{id}/status [patch]
func (ctrl *MenuController) SetStatus(c *gin.Context) {
	id, valid := parseIDParam(c, "id")
	if !valid {
		return
	}

	var req dto.UpdateMenuStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	menu, err := ctrl.menuService.SetMenuStatus(c.Request.Context(), principalOf(c), id, &req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "审核完成", menu)
}
