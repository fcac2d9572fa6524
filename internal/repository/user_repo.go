package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"canteen_order_v1/internal/model"
)

// ==================== UserRepository 用户仓库 ====================

// UserRepository 用户仓库接口
type UserRepository interface {
	Create(ctx context.Context, user *model.SysUser) error
	GetByID(ctx context.Context, id int64) (*model.SysUser, error)
	GetByIDWithRole(ctx context.Context, id int64) (*model.SysUser, error)
	GetByUsername(ctx context.Context, username string) (*model.SysUser, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// 员工名册
	ListActiveByRole(ctx context.Context, roleName string) ([]model.SysUser, error)
	CountActiveByRole(ctx context.Context, roleName string) (int64, error)
}

// ==================== 实现 ====================

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓库
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create 创建用户
func (r *userRepository) Create(ctx context.Context, user *model.SysUser) error {
	return r.db.WithContext(ctx).Omit("Role").Create(user).Error
}

// GetByID 根据 ID 获取用户
func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.SysUser, error) {
	var user model.SysUser
	err := r.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &user, err
}

// GetByIDWithRole 获取用户及角色
func (r *userRepository) GetByIDWithRole(ctx context.Context, id int64) (*model.SysUser, error) {
	var user model.SysUser
	err := r.db.WithContext(ctx).Preload("Role").First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &user, err
}

// GetByUsername 根据用户名获取用户
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.SysUser, error) {
	var user model.SysUser
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &user, err
}

// ExistsByUsername 检查用户名是否存在
func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.SysUser{}).
		Where("username = ?", username).
		Count(&count).Error
	return count > 0, err
}

// ListActiveByRole 按角色名获取启用用户，按 ID 升序
func (r *userRepository) ListActiveByRole(ctx context.Context, roleName string) ([]model.SysUser, error) {
	var users []model.SysUser
	err := r.activeByRole(ctx, roleName).
		Order("sys_users.id ASC").
		Find(&users).Error
	return users, err
}

// CountActiveByRole 统计角色下启用用户数
func (r *userRepository) CountActiveByRole(ctx context.Context, roleName string) (int64, error) {
	var count int64
	err := r.activeByRole(ctx, roleName).Count(&count).Error
	return count, err
}

func (r *userRepository) activeByRole(ctx context.Context, roleName string) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&model.SysUser{}).
		Joins("JOIN roles ON roles.id = sys_users.role_id").
		Where("roles.name = ? AND sys_users.status = ?", roleName, model.UserStatusActive)
}
