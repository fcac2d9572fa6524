package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"canteen_order_v1/internal/api/dto"
	"canteen_order_v1/internal/model"
	"canteen_order_v1/internal/repository"
	"canteen_order_v1/pkg/utils"
)

// ==================== ReportService 周报服务 ====================

// ReportService 周订餐统计
// "已下单" 与补单使用同一口径：目标周内有任意订单（自助或补单）的启用员工
type ReportService struct {
	users  repository.UserRepository
	orders repository.OrderRepository
}

// NewReportService 创建周报服务
func NewReportService(users repository.UserRepository, orders repository.OrderRepository) *ReportService {
	return &ReportService{users: users, orders: orders}
}

// WeeklyStats 目标周的员工总数、已下单数与未下单数
func (s *ReportService) WeeklyStats(ctx context.Context, weekStart time.Time) (*dto.WeeklyStats, error) {
	ctx, span := tracer.Start(ctx, "ReportService.WeeklyStats")
	defer span.End()

	week := utils.WeekStartOf(weekStart)

	var total, covered, self int64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.users.CountActiveByRole(gctx, model.RoleEmployee)
		total = n
		return err
	})
	g.Go(func() error {
		n, err := s.orders.CountCoveredByRole(gctx, week, model.RoleEmployee, "")
		covered = n
		return err
	})
	g.Go(func() error {
		n, err := s.orders.CountCoveredByRole(gctx, week, model.RoleEmployee, model.OrderSlotPrimary)
		self = n
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("统计失败: %w", err)
	}

	// 三次查询之间员工状态可能变化
	if covered > total {
		covered = total
	}
	if self > covered {
		self = covered
	}

	return &dto.WeeklyStats{
		Week:            utils.FormatDate(week),
		TotalEmployees:  total,
		TotalOrdered:    covered,
		TotalNotOrdered: total - covered,
		SelfOrdered:     self,
		BackupOrdered:   covered - self,
	}, nil
}

// NotOrderedEmployees 目标周仍未下单的启用员工（补单的对象）
func (s *ReportService) NotOrderedEmployees(ctx context.Context, weekStart time.Time) ([]dto.EmployeeSummary, error) {
	week := utils.WeekStartOf(weekStart)

	employees, err := s.users.ListActiveByRole(ctx, model.RoleEmployee)
	if err != nil {
		return nil, fmt.Errorf("查询员工失败: %w", err)
	}
	ids, err := s.orders.CoveredUserIDs(ctx, week)
	if err != nil {
		return nil, fmt.Errorf("查询已下单员工失败: %w", err)
	}
	covered := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		covered[id] = struct{}{}
	}

	list := make([]dto.EmployeeSummary, 0, len(employees))
	for _, u := range employees {
		if _, ok := covered[u.ID]; ok {
			continue
		}
		list = append(list, dto.EmployeeSummary{
			ID:           u.ID,
			Username:     u.Username,
			Name:         u.Name,
			DepartmentID: u.DepartmentID,
			LocationID:   u.LocationID,
		})
	}
	return list, nil
}
