package service

import (
	"context"
	"fmt"
	"time"

	"canteen_order_v1/internal/model"
	"canteen_order_v1/internal/repository"
	"canteen_order_v1/pkg/utils"
)

// ==================== RoleService 角色服务 ====================

// RoleService 角色查询与维护
// 角色名带缓存，供鉴权中间件按 role_id 解析；改名时失效
type RoleService struct {
	roles repository.RoleRepository
	cache *utils.Cache[int64, string]
}

// NewRoleService 创建角色服务
func NewRoleService(roles repository.RoleRepository, capacity int, ttl time.Duration) *RoleService {
	return &RoleService{
		roles: roles,
		cache: utils.NewCache[int64, string](capacity, ttl),
	}
}

// RoleName 根据角色 ID 获取角色名
func (s *RoleService) RoleName(ctx context.Context, roleID int64) (string, error) {
	return s.cache.GetOrLoad(roleID, func() (string, error) {
		role, err := s.roles.GetByID(ctx, roleID)
		if err != nil {
			return "", fmt.Errorf("查询角色失败: %w", err)
		}
		if role == nil {
			return "", &NotFoundError{Resource: "role", ID: roleID}
		}
		return role.Name, nil
	})
}

// Rename 角色改名（管理员）
func (s *RoleService) Rename(ctx context.Context, p Principal, id int64, name string) (*model.Role, error) {
	if !p.IsAdmin() {
		return nil, ErrForbidden
	}

	role, err := s.roles.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("查询角色失败: %w", err)
	}
	if role == nil {
		return nil, &NotFoundError{Resource: "role", ID: id}
	}

	existing, err := s.roles.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("查询角色失败: %w", err)
	}
	if existing != nil && existing.ID != id {
		return nil, fmt.Errorf("%w: 角色名已存在", ErrValidation)
	}

	role.Name = name
	if err := s.roles.Update(ctx, role); err != nil {
		return nil, fmt.Errorf("更新角色失败: %w", err)
	}
	s.cache.Delete(id)
	return role, nil
}

// List 全部角色
func (s *RoleService) List(ctx context.Context) ([]model.Role, error) {
	return s.roles.List(ctx)
}

// EnsureDefaults 补齐系统内置角色，返回新建的数量
func (s *RoleService) EnsureDefaults(ctx context.Context) (int, error) {
	created := 0
	for _, name := range []string{model.RoleAdmin, model.RoleGeneralAffair, model.RoleVendor, model.RoleEmployee} {
		role, err := s.roles.GetByName(ctx, name)
		if err != nil {
			return created, fmt.Errorf("查询角色失败: %w", err)
		}
		if role != nil {
			continue
		}
		if err := s.roles.Create(ctx, &model.Role{Name: name}); err != nil {
			return created, fmt.Errorf("创建角色失败: %w", err)
		}
		created++
	}
	return created, nil
}
