package controller

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"canteen_order_v1/internal/api/dto"
	"canteen_order_v1/internal/service"
)

// ==================== MasterController 主数据控制器 ====================

// MasterController 班次 / 地点 / 部门 / 供应商 / 角色
type MasterController struct {
	masterService *service.MasterService
	roleService   *service.RoleService
}

// NewMasterController 创建主数据控制器
func NewMasterController(masterService *service.MasterService, roleService *service.RoleService) *MasterController {
	return &MasterController{
		masterService: masterService,
		roleService:   roleService,
	}
}

// ==================== 班次 ====================

// ListShifts 班次列表
// @Summary 班次列表
// @Tags Master
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Shift
// @Router /shifts [get]
func (ctrl *MasterController) ListShifts(c *gin.Context) {
	shifts, err := ctrl.masterService.ListShifts(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "success", shifts)
}

// CreateShift 创建班次
// @Summary 创建班次
// @Tags Master
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateShiftRequest true "班次"
// @Success 201 {object} model.Shift
// @Router /shifts [post]
func (ctrl *MasterController) CreateShift(c *gin.Context) {
	var req dto.CreateShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	shift, err := ctrl.masterService.CreateShift(c.Request.Context(), principalOf(c), &req)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, "创建成功", shift)
}

// ==================== 地点 / 部门 ====================

// ListLocations 地点列表
// @Summary 地点列表
// @Tags Master
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Location
// @Router /locations [get]
func (ctrl *MasterController) ListLocations(c *gin.Context) {
	locations, err := ctrl.masterService.ListLocations(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "success", locations)
}

// CreateLocation 创建地点
// @Summary 创建地点
// @Tags Master
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateLocationRequest true "地点"
// @Success 201 {object} model.Location
// @Router /locations [post]
func (ctrl *MasterController) CreateLocation(c *gin.Context) {
	var req dto.CreateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	location, err := ctrl.masterService.CreateLocation(c.Request.Context(), principalOf(c), &req)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, "创建成功", location)
}

// ListDepartments 部门列表
// @Summary 部门列表
// @Tags Master
// @Produce json
// @Security BearerAuth
// @Param location_id query int false "地点ID"
// @Success 200 {array} model.Department
// @Router /departments [get]
func (ctrl *MasterController) ListDepartments(c *gin.Context) {
	var locationID int64
	if raw := c.Query("location_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			badRequest(c, err)
			return
		}
		locationID = id
	}

	departments, err := ctrl.masterService.ListDepartments(c.Request.Context(), locationID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "success", departments)
}

// CreateDepartment 创建部门
// @Summary 创建部门
// @Tags Master
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateDepartmentRequest true "部门"
// @Success 201 {object} model.Department
// @Router /departments [post]
func (ctrl *MasterController) CreateDepartment(c *gin.Context) {
	var req dto.CreateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	department, err := ctrl.masterService.CreateDepartment(c.Request.Context(), principalOf(c), &req)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, "创建成功", department)
}

// ==================== 供应商 ====================

// ListVendors 供应商列表
// @Summary 供应商列表
// @Tags Master
// @Produce json
// @Security BearerAuth
// @Param shift_id query int false "班次ID"
// @Param location_id query int false "地点ID"
// @Param status query string false "active / inactive"
// @Success 200 {array} model.VendorCatering
// @Router /vendors [get]
func (ctrl *MasterController) ListVendors(c *gin.Context) {
	var req dto.VendorListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}

	vendors, err := ctrl.masterService.ListVendors(c.Request.Context(), principalOf(c), &req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "success", vendors)
}

// CreateVendor 创建供应商
// @Summary 创建供应商经营单元
// @Tags Master
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateVendorRequest true "供应商"
// @Success 201 {object} model.VendorCatering
// @Router /vendors [post]
func (ctrl *MasterController) CreateVendor(c *gin.Context) {
	var req dto.CreateVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	vendor, err := ctrl.masterService.CreateVendor(c.Request.Context(), principalOf(c), &req)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, "创建成功", vendor)
}

// ==================== 角色 ====================

// ListRoles 角色列表
// @Summary 角色列表
// @Tags Master
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Role
// @Router /roles [get]
func (ctrl *MasterController) ListRoles(c *gin.Context) {
	roles, err := ctrl.roleService.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "success", roles)
}

// RenameRole 角色改名
// @Summary 角色改名（管理员）
// @Tags Master
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "角色ID"
// @Param body body dto.UpdateRoleRequest true "新名称"
// @Success 200 {object} model.Role
// @Router /roles/{id} [put]
func (ctrl *MasterController) RenameRole(c *gin.Context) {
	id, valid := parseIDParam(c, "id")
	if !valid {
		return
	}

	var req dto.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	role, err := ctrl.roleService.Rename(c.Request.Context(), principalOf(c), id, req.Name)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "更新成功", role)
}
