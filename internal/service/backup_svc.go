package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"canteen_order_v1/internal/api/dto"
	"canteen_order_v1/internal/model"
	"canteen_order_v1/internal/repository"
	"canteen_order_v1/pkg/utils"
)

// errAlreadyCovered 事务内复查发现员工已有订单
var errAlreadyCovered = errors.New("员工本周已有订单")

// BackupConfig 补单配置
type BackupConfig struct {
	DefaultShiftID  int64 // 员工没有历史班次时使用；为 0 或不存在时取 ID 最小的班次
	RequireFullWeek bool  // true: 菜单不足五天的员工不补单
}

// ==================== BackupOrderService 补单服务 ====================

// BackupOrderService 为截止后仍未下单的员工生成系统补单
type BackupOrderService struct {
	uow    *repository.OrderUnitOfWork
	users  repository.UserRepository
	shifts repository.ShiftRepository
	menus  repository.MealMenuRepository
	cfg    BackupConfig
	clock  utils.Clock
	log    *zap.Logger

	// 同一进程内同时只跑一次补单
	mu sync.Mutex
}

// NewBackupOrderService 创建补单服务
func NewBackupOrderService(
	uow *repository.OrderUnitOfWork,
	users repository.UserRepository,
	shifts repository.ShiftRepository,
	menus repository.MealMenuRepository,
	cfg BackupConfig,
	clock utils.Clock,
	log *zap.Logger,
) *BackupOrderService {
	if log == nil {
		log = zap.NewNop()
	}
	return &BackupOrderService{
		uow:    uow,
		users:  users,
		shifts: shifts,
		menus:  menus,
		cfg:    cfg,
		clock:  clock,
		log:    log,
	}
}

// TargetWeek 默认补单的目标周（下周一）
func (s *BackupOrderService) TargetWeek() time.Time {
	return utils.NextMonday(s.clock.Now())
}

// backfillRun 单次补单过程中的缓存
type backfillRun struct {
	week         time.Time
	menusByShift map[int64][]orderEntry
	defaultShift int64
	defaultReady bool
}

// GenerateBackupOrders 为目标周未下单的启用员工生成补单
// 重复执行不会重复生成：已有任意订单的员工直接跳过，且每次写入前在事务内复查
func (s *BackupOrderService) GenerateBackupOrders(ctx context.Context, weekStart time.Time, actorID int64) (*dto.BackfillResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	week := utils.WeekStartOf(weekStart)
	ctx, span := tracer.Start(ctx, "BackupOrderService.GenerateBackupOrders")
	defer span.End()
	span.SetAttributes(attribute.String("week", utils.FormatDate(week)))

	result := &dto.BackfillResult{
		Week:     utils.FormatDate(week),
		Failures: []dto.BackfillIssue{},
	}

	employees, err := s.users.ListActiveByRole(ctx, model.RoleEmployee)
	if err != nil {
		return nil, fmt.Errorf("查询员工失败: %w", err)
	}
	coveredIDs, err := s.uow.Orders.CoveredUserIDs(ctx, week)
	if err != nil {
		return nil, fmt.Errorf("查询已下单员工失败: %w", err)
	}
	covered := make(map[int64]struct{}, len(coveredIDs))
	for _, id := range coveredIDs {
		covered[id] = struct{}{}
	}

	run := &backfillRun{week: week, menusByShift: make(map[int64][]orderEntry)}

	for _, emp := range employees {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if _, ok := covered[emp.ID]; ok {
			result.Skipped++
			continue
		}

		shiftID, err := s.resolveShift(ctx, run, emp.ID)
		if err != nil {
			s.addFailure(result, emp.ID, err.Error())
			continue
		}
		if shiftID == 0 {
			result.Skipped++
			s.addFailure(result, emp.ID, "没有可用班次")
			continue
		}

		entries, err := s.weekMenus(ctx, run, shiftID)
		if err != nil {
			s.addFailure(result, emp.ID, err.Error())
			continue
		}
		if len(entries) == 0 {
			result.Skipped++
			s.addFailure(result, emp.ID, "目标周没有已审核菜单")
			continue
		}
		incomplete := len(entries) < utils.WorkDays
		if incomplete && s.cfg.RequireFullWeek {
			result.Skipped++
			s.addFailure(result, emp.ID, fmt.Sprintf("菜单仅覆盖 %d 天", len(entries)))
			continue
		}

		err = s.createBackup(ctx, emp.ID, week, entries, actorID)
		switch {
		case errors.Is(err, errAlreadyCovered), errors.Is(err, ErrDuplicateWeeklyOrder):
			result.Skipped++
		case err != nil:
			s.addFailure(result, emp.ID, err.Error())
			s.log.Warn("补单失败", zap.Int64("user_id", emp.ID), zap.Error(err))
		default:
			result.Created++
			if incomplete {
				result.Incomplete++
			}
		}
	}

	s.log.Info("补单完成",
		zap.String("week", result.Week),
		zap.Int("employees", len(employees)),
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped),
		zap.Int("incomplete", result.Incomplete),
		zap.Int("failures", len(result.Failures)),
	)
	return result, nil
}

// createBackup 与员工下单走同一写入路径，跳过订餐窗口校验
func (s *BackupOrderService) createBackup(ctx context.Context, userID int64, week time.Time, entries []orderEntry, actorID int64) error {
	order := &model.Order{
		UserID:    userID,
		WeekStart: week,
		OrderDate: s.clock.Now(),
		Type:      model.OrderTypeBackup,
		Notes:     "系统补单",
		Status:    model.OrderStatusPending,
		CreatedBy: actorID,
		UpdatedBy: actorID,
	}

	return s.uow.Transaction(ctx, func(tx *repository.OrderUnitOfWork) error {
		// 与员工自助下单互斥，锁住后再复查
		if err := tx.Orders.LockUser(ctx, userID); err != nil {
			return fmt.Errorf("锁定用户失败: %w", err)
		}
		has, err := tx.Orders.HasWeekOrder(ctx, userID, week)
		if err != nil {
			return fmt.Errorf("查询周订单失败: %w", err)
		}
		if has {
			return errAlreadyCovered
		}
		return persistOrder(ctx, tx, order, entries, "系统补单")
	})
}

// resolveShift 员工最近使用的班次；没有则使用默认班次
func (s *BackupOrderService) resolveShift(ctx context.Context, run *backfillRun, userID int64) (int64, error) {
	last, err := s.uow.Orders.LastShiftID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("查询历史班次失败: %w", err)
	}
	if last > 0 {
		shift, err := s.shifts.GetByID(ctx, last)
		if err != nil {
			return 0, fmt.Errorf("查询班次失败: %w", err)
		}
		if shift != nil {
			return shift.ID, nil
		}
	}

	if run.defaultReady {
		return run.defaultShift, nil
	}

	if s.cfg.DefaultShiftID > 0 {
		shift, err := s.shifts.GetByID(ctx, s.cfg.DefaultShiftID)
		if err != nil {
			return 0, fmt.Errorf("查询默认班次失败: %w", err)
		}
		if shift != nil {
			run.defaultShift, run.defaultReady = shift.ID, true
			return shift.ID, nil
		}
		s.log.Warn("配置的默认班次不存在", zap.Int64("shift_id", s.cfg.DefaultShiftID))
	}

	first, err := s.shifts.First(ctx)
	if err != nil {
		return 0, fmt.Errorf("查询默认班次失败: %w", err)
	}
	if first != nil {
		run.defaultShift = first.ID
	}
	run.defaultReady = true
	return run.defaultShift, nil
}

// weekMenus 班次在目标周每天的第一个已审核菜单，没有菜单的日期不出现
func (s *BackupOrderService) weekMenus(ctx context.Context, run *backfillRun, shiftID int64) ([]orderEntry, error) {
	if entries, ok := run.menusByShift[shiftID]; ok {
		return entries, nil
	}

	menus, err := s.menus.ListApprovedByShift(ctx, shiftID, run.week, utils.WeekEnd(run.week))
	if err != nil {
		return nil, fmt.Errorf("查询菜单失败: %w", err)
	}

	firstByDay := make(map[string]int64, utils.WorkDays)
	for _, m := range menus {
		key := utils.FormatDate(m.ForDate)
		if _, ok := firstByDay[key]; !ok {
			firstByDay[key] = m.ID
		}
	}

	entries := make([]orderEntry, 0, utils.WorkDays)
	for _, day := range utils.Weekdays(run.week) {
		menuID, ok := firstByDay[utils.FormatDate(day)]
		if !ok {
			continue
		}
		entries = append(entries, orderEntry{Day: day, ShiftID: shiftID, MealMenuID: menuID})
	}

	run.menusByShift[shiftID] = entries
	return entries, nil
}

func (s *BackupOrderService) addFailure(result *dto.BackfillResult, userID int64, reason string) {
	result.Failures = append(result.Failures, dto.BackfillIssue{UserID: userID, Reason: reason})
}
