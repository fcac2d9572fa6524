package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"canteen_order_v1/internal/api/dto"
	"canteen_order_v1/internal/middleware"
	"canteen_order_v1/internal/model"
	"canteen_order_v1/internal/repository"
)

// ==================== UserService 用户服务 ====================

// UserService 用户服务
type UserService struct {
	userRepo    repository.UserRepository
	roleRepo    repository.RoleRepository
	locations   repository.LocationRepository
	departments repository.DepartmentRepository
}

// NewUserService 创建用户服务
func NewUserService(
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	locations repository.LocationRepository,
	departments repository.DepartmentRepository,
) *UserService {
	return &UserService{
		userRepo:    userRepo,
		roleRepo:    roleRepo,
		locations:   locations,
		departments: departments,
	}
}

// ==================== 认证相关 ====================

// Login 用户登录
func (s *UserService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	// 查找用户
	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	// 验证密码
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// 检查状态
	if !user.IsActive() {
		return nil, ErrUserDisabled
	}

	// 生成 Token
	accessToken, refreshToken, err := middleware.GenerateTokenPair(user.ID, user.Username, user.RoleID)
	if err != nil {
		return nil, err
	}

	info, err := s.GetProfile(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	cfg := middleware.GetJWTConfig()
	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(cfg.AccessTokenTTL),
		User:         info,
	}, nil
}

// RefreshToken 刷新 Token
func (s *UserService) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.RefreshTokenResponse, error) {
	// 解析 Refresh Token
	claims, err := middleware.ParseToken(req.RefreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	// 验证是否为 Refresh Token
	if claims.Subject != "refresh" {
		return nil, ErrInvalidToken
	}

	// 获取用户信息（确保用户仍然有效）
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive() {
		return nil, ErrUserDisabled
	}

	// 生成新 Token，角色以数据库为准
	accessToken, refreshToken, err := middleware.GenerateTokenPair(user.ID, user.Username, user.RoleID)
	if err != nil {
		return nil, err
	}

	cfg := middleware.GetJWTConfig()
	return &dto.RefreshTokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(cfg.AccessTokenTTL),
	}, nil
}

// GetProfile 获取当前用户信息
func (s *UserService) GetProfile(ctx context.Context, userID int64) (*dto.UserInfo, error) {
	user, err := s.userRepo.GetByIDWithRole(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, &NotFoundError{Resource: "user", ID: userID}
	}
	return toUserInfo(user), nil
}

// ==================== 用户管理（管理员） ====================

// CreateUser 创建用户，角色 / 部门 / 地点必须存在
func (s *UserService) CreateUser(ctx context.Context, p Principal, req *dto.CreateUserRequest) (*dto.UserInfo, error) {
	if !p.IsBackOffice() {
		return nil, ErrForbidden
	}

	// 检查用户名是否存在
	exists, err := s.userRepo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUsernameExists
	}

	role, err := s.roleRepo.GetByID(ctx, req.RoleID)
	if err != nil {
		return nil, fmt.Errorf("查询角色失败: %w", err)
	}
	if role == nil {
		return nil, &IntegrityError{Field: "role_id", ID: req.RoleID}
	}
	if req.LocationID != nil {
		location, err := s.locations.GetByID(ctx, *req.LocationID)
		if err != nil {
			return nil, fmt.Errorf("查询地点失败: %w", err)
		}
		if location == nil {
			return nil, &IntegrityError{Field: "location_id", ID: *req.LocationID}
		}
	}
	if req.DepartmentID != nil {
		dept, err := s.departments.GetByID(ctx, *req.DepartmentID)
		if err != nil {
			return nil, fmt.Errorf("查询部门失败: %w", err)
		}
		if dept == nil {
			return nil, &IntegrityError{Field: "department_id", ID: *req.DepartmentID}
		}
	}

	// 加密密码
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	// 创建用户
	user := &model.SysUser{
		Username:     req.Username,
		Password:     string(hashedPassword),
		Name:         req.Name,
		Email:        req.Email,
		RoleID:       role.ID,
		DepartmentID: req.DepartmentID,
		LocationID:   req.LocationID,
		Status:       model.UserStatusActive,
	}
	user.CreatedBy = p.UserID

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("创建用户失败: %w", err)
	}

	user.Role = role
	return toUserInfo(user), nil
}

// EnsureAdmin 初始化管理员账号，已存在时不做修改
func (s *UserService) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	exists, err := s.userRepo.ExistsByUsername(ctx, username)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	role, err := s.roleRepo.GetByName(ctx, model.RoleAdmin)
	if err != nil {
		return false, err
	}
	if role == nil {
		return false, &NotFoundError{Resource: "role"}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}

	err = s.userRepo.Create(ctx, &model.SysUser{
		Username: username,
		Password: string(hashedPassword),
		Name:     "Administrator",
		RoleID:   role.ID,
		Status:   model.UserStatusActive,
	})
	if err != nil {
		return false, fmt.Errorf("创建管理员失败: %w", err)
	}
	return true, nil
}

// ==================== 辅助方法 ====================

// toUserInfo 转换为 DTO
func toUserInfo(user *model.SysUser) *dto.UserInfo {
	info := &dto.UserInfo{
		ID:           user.ID,
		Username:     user.Username,
		Name:         user.Name,
		Email:        user.Email,
		RoleID:       user.RoleID,
		DepartmentID: user.DepartmentID,
		LocationID:   user.LocationID,
		Status:       user.Status,
		CreatedAt:    user.CreatedAt,
	}
	if user.Role != nil {
		info.Role = user.Role.Name
	}
	return info
}
