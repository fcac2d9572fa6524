package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"canteen_order_v1/internal/api/dto"
	"canteen_order_v1/internal/middleware"
	"canteen_order_v1/internal/service"
)

// ==================== UserController 用户控制器 ====================

// UserController 用户控制器
type UserController struct {
	userService *service.UserService
	qrService   *service.QRCodeService
}

// NewUserController 创建用户控制器
func NewUserController(userService *service.UserService, qrService *service.QRCodeService) *UserController {
	return &UserController{userService: userService, qrService: qrService}
}

// ==================== 认证接口 ====================

// Login 用户登录
// @Summary 用户登录
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "登录信息"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /auth/login [post]
func (c *UserController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}

	resp, err := c.userService.Login(ctx.Request.Context(), &req)
	if err != nil {
		fail(ctx, err)
		return
	}
	ok(ctx, "登录成功", resp)
}

// RefreshToken 刷新 Token
// @Summary 刷新 Token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh Token"
// @Success 200 {object} dto.RefreshTokenResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /auth/refresh [post]
func (c *UserController) RefreshToken(ctx *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}

	resp, err := c.userService.RefreshToken(ctx.Request.Context(), &req)
	if err != nil {
		fail(ctx, err)
		return
	}
	ok(ctx, "刷新成功", resp)
}

// GetProfile 获取当前用户信息
// @Summary 获取当前用户信息
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.UserInfo
// @Failure 401 {object} map[string]interface{}
// @Router /auth/profile [get]
func (c *UserController) GetProfile(ctx *gin.Context) {
	user, err := c.userService.GetProfile(ctx.Request.Context(), middleware.GetUserID(ctx))
	if err != nil {
		fail(ctx, err)
		return
	}
	ok(ctx, "success", user)
}

// ==================== 用户管理 ====================

// CreateUser 创建用户
// @Summary 创建用户（管理员 / 行政）
// @Tags User
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateUserRequest true "用户信息"
// @Success 201 {object} dto.UserInfo
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Router /users [post]
func (c *UserController) CreateUser(ctx *gin.Context) {
	var req dto.CreateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}

	user, err := c.userService.CreateUser(ctx.Request.Context(), principalOf(ctx), &req)
	if err != nil {
		fail(ctx, err)
		return
	}
	created(ctx, "创建成功", user)
}

// ==================== 取餐码 ====================

// MyQRCode 当前用户的取餐码，首次访问时生成
// @Summary 我的取餐码
// @Tags QRCode
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.QRCodeResponse
// @Router /qrcode/me [get]
func (c *UserController) MyQRCode(ctx *gin.Context) {
	code, err := c.qrService.GetOrCreate(ctx.Request.Context(), middleware.GetUserID(ctx))
	if err != nil {
		fail(ctx, err)
		return
	}
	ok(ctx, "success", dto.QRCodeResponse{UserID: code.UserID, Data: code.QRCodeData})
}

// ScanQRCode 扫码识别员工
// @Summary 扫描取餐码（供应商 / 行政）
// @Tags QRCode
// @Produce json
// @Security BearerAuth
// @Param data path string true "取餐码内容"
// @Success 200 {object} dto.UserInfo
// @Failure 404 {object} map[string]interface{}
// @Router /qrcode/scan/{data} [get]
func (c *UserController) ScanQRCode(ctx *gin.Context) {
	data := ctx.Param("data")
	if data == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "取餐码为空",
		})
		return
	}

	code, err := c.qrService.Resolve(ctx.Request.Context(), data)
	if err != nil {
		fail(ctx, err)
		return
	}

	user, err := c.userService.GetProfile(ctx.Request.Context(), code.UserID)
	if err != nil {
		fail(ctx, err)
		return
	}
	ok(ctx, "success", user)
}
