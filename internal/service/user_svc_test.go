package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"canteen_order_v1/internal/api/dto"
	"canteen_order_v1/internal/middleware"
	"canteen_order_v1/internal/model"
	"canteen_order_v1/internal/repository"
)

func newUserService(f *fixture) *UserService {
	return NewUserService(
		f.users,
		repository.NewRoleRepository(f.db),
		repository.NewLocationRepository(f.db),
		repository.NewDepartmentRepository(f.db),
	)
}

func setPassword(t *testing.T, f *fixture, u *model.SysUser, password string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&model.SysUser{}).Where("id = ?", u.ID).Update("password", string(hash)).Error)
}

// ==================== 登录 ====================

func TestUserService_Login(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := newUserService(f)
	emp := f.addEmployees(1)[0]
	setPassword(t, f, emp, "secret123")

	resp, err := svc.Login(ctx, &dto.LoginRequest{Username: emp.Username, Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, model.RoleEmployee, resp.User.Role)

	claims, err := middleware.ParseToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, emp.ID, claims.UserID)
	assert.Equal(t, emp.RoleID, claims.RoleID)

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{"密码错误", emp.Username, "wrong", ErrInvalidCredentials},
		{"用户不存在", "nobody", "secret123", ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(ctx, &dto.LoginRequest{Username: tt.username, Password: tt.password})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("已禁用", func(t *testing.T) {
		disabled := f.addUser("disabled", model.RoleEmployee, model.UserStatusInactive)
		setPassword(t, f, disabled, "secret123")
		_, err := svc.Login(ctx, &dto.LoginRequest{Username: "disabled", Password: "secret123"})
		assert.ErrorIs(t, err, ErrUserDisabled)
	})
}

func TestUserService_RefreshToken(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := newUserService(f)
	emp := f.addEmployees(1)[0]

	access, refresh, err := middleware.GenerateTokenPair(emp.ID, emp.Username, emp.RoleID)
	require.NoError(t, err)

	resp, err := svc.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: refresh})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)

	// access token 不能用来刷新
	_, err = svc.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: access})
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: "garbage"})
	assert.ErrorIs(t, err, ErrInvalidToken)

	require.NoError(t, f.db.Model(&model.SysUser{}).Where("id = ?", emp.ID).
		Update("status", model.UserStatusInactive).Error)
	_, err = svc.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: refresh})
	assert.ErrorIs(t, err, ErrUserDisabled)
}

// ==================== 用户管理 ====================

func TestUserService_CreateUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := newUserService(f)

	req := &dto.CreateUserRequest{
		Username:   "new_emp",
		Password:   "secret123",
		Name:       "New Employee",
		RoleID:     f.roles[model.RoleEmployee].ID,
		LocationID: &f.location.ID,
	}

	info, err := svc.CreateUser(ctx, adminOf(f.admin), req)
	require.NoError(t, err)
	assert.Equal(t, model.RoleEmployee, info.Role)
	assert.Equal(t, model.UserStatusActive, info.Status)

	stored, err := f.users.GetByUsername(ctx, "new_emp")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("secret123")))

	_, err = svc.CreateUser(ctx, adminOf(f.admin), req)
	assert.ErrorIs(t, err, ErrUsernameExists)

	emp := f.addEmployees(1)[0]
	other := *req
	other.Username = "another"
	_, err = svc.CreateUser(ctx, employee(emp), &other)
	assert.ErrorIs(t, err, ErrForbidden)

	badDept := int64(9999)
	other.DepartmentID = &badDept
	_, err = svc.CreateUser(ctx, adminOf(f.admin), &other)
	var integrity *IntegrityError
	require.True(t, errors.As(err, &integrity))
	assert.Equal(t, "department_id", integrity.Field)
	assert.Equal(t, badDept, integrity.ID)

	other.DepartmentID = nil
	other.RoleID = 9999
	_, err = svc.CreateUser(ctx, adminOf(f.admin), &other)
	assert.ErrorIs(t, err, ErrReferentialIntegrity)
}

func TestUserService_EnsureAdmin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := newUserService(f)

	created, err := svc.EnsureAdmin(ctx, "root", "secret123")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.EnsureAdmin(ctx, "root", "other")
	require.NoError(t, err)
	assert.False(t, created)
}

// ==================== 角色 ====================

func TestRoleService_RoleNameCached(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewRoleService(repository.NewRoleRepository(f.db), 16, time.Minute)
	roleID := f.roles[model.RoleVendor].ID

	name, err := svc.RoleName(ctx, roleID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleVendor, name)

	// 绕过服务直接改库，缓存仍返回旧值
	require.NoError(t, f.db.Model(&model.Role{}).Where("id = ?", roleID).Update("name", "supplier").Error)
	name, err = svc.RoleName(ctx, roleID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleVendor, name)

	// 通过服务改名会让缓存失效
	_, err = svc.Rename(ctx, adminOf(f.admin), roleID, "catering")
	require.NoError(t, err)
	name, err = svc.RoleName(ctx, roleID)
	require.NoError(t, err)
	assert.Equal(t, "catering", name)

	_, err = svc.RoleName(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRoleService_Rename(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewRoleService(repository.NewRoleRepository(f.db), 16, time.Minute)
	roleID := f.roles[model.RoleVendor].ID

	_, err := svc.Rename(ctx, Principal{UserID: 1, Role: model.RoleGeneralAffair}, roleID, "x")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Rename(ctx, adminOf(f.admin), roleID, model.RoleEmployee)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Rename(ctx, adminOf(f.admin), 9999, "x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRoleService_EnsureDefaults(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := NewRoleService(repository.NewRoleRepository(db), 16, time.Minute)

	created, err := svc.EnsureDefaults(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, created)

	created, err = svc.EnsureDefaults(ctx)
	require.NoError(t, err)
	assert.Zero(t, created)

	roles, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, roles, 4)
}

// ==================== 取餐码 ====================

func TestQRCodeService_GetOrCreate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewQRCodeService(repository.NewQRCodeRepository(f.db))
	emp := f.addEmployees(1)[0]

	var wg sync.WaitGroup
	codes := make([]string, 4)
	for i := range codes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			code, err := svc.GetOrCreate(ctx, emp.ID)
			if assert.NoError(t, err) {
				codes[i] = code.QRCodeData
			}
		}(i)
	}
	wg.Wait()

	for _, c := range codes {
		assert.Equal(t, codes[0], c)
	}
	assert.Equal(t, int64(1), f.count(&model.QRCode{}))

	resolved, err := svc.Resolve(ctx, codes[0])
	require.NoError(t, err)
	assert.Equal(t, emp.ID, resolved.UserID)

	_, err = svc.Resolve(ctx, "unknown")
	assert.ErrorIs(t, err, ErrNotFound)
}
