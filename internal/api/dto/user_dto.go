package dto

import "time"

// ==================== 登录 ====================

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required,min=3,max=100"`
	Password string `json:"password" binding:"required,min=3,max=100"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         *UserInfo `json:"user"`
}

// ==================== Token 刷新 ====================

// RefreshTokenRequest 刷新 Token 请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RefreshTokenResponse 刷新 Token 响应
type RefreshTokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// ==================== 用户信息 ====================

// UserInfo 用户信息
type UserInfo struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	RoleID       int64     `json:"role_id"`
	Role         string    `json:"role"`
	DepartmentID *int64    `json:"department_id,omitempty"`
	LocationID   *int64    `json:"location_id,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// ==================== 用户管理（管理员） ====================

// CreateUserRequest 创建用户请求
type CreateUserRequest struct {
	Username     string `json:"username" binding:"required,min=3,max=100"`
	Password     string `json:"password" binding:"required,min=6,max=100"`
	Name         string `json:"name" binding:"max=100"`
	Email        string `json:"email" binding:"omitempty,email"`
	RoleID       int64  `json:"role_id" binding:"required,gt=0"`
	DepartmentID *int64 `json:"department_id" binding:"omitempty,gt=0"`
	LocationID   *int64 `json:"location_id" binding:"omitempty,gt=0"`
}

// ==================== 取餐码 ====================

// QRCodeResponse 取餐码
type QRCodeResponse struct {
	UserID int64  `json:"user_id"`
	Data   string `json:"qr_code_data"`
}
