package task

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"canteen_order_v1/internal/api/dto"
	"canteen_order_v1/internal/service"
)

// ==================== BackupOrderTask 补单任务 ====================

// BackupGenerator 补单执行者
type BackupGenerator interface {
	TargetWeek() time.Time
	GenerateBackupOrders(ctx context.Context, weekStart time.Time, actorID int64) (*dto.BackfillResult, error)
}

var _ BackupGenerator = (*service.BackupOrderService)(nil)

// BackupOrderTask 订餐截止后为未下单员工补单
type BackupOrderTask struct {
	backup  BackupGenerator
	cron    *cron.Cron
	spec    string
	timeout time.Duration
	log     *zap.Logger

	mu      sync.Mutex
	lastRun *dto.BackfillResult
}

// NewBackupOrderTask spec 为带秒的 cron 表达式，loc 为业务时区
func NewBackupOrderTask(backup BackupGenerator, spec string, loc *time.Location, log *zap.Logger) *BackupOrderTask {
	if log == nil {
		log = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	return &BackupOrderTask{
		backup:  backup,
		cron:    cron.New(cron.WithSeconds(), cron.WithLocation(loc)),
		spec:    spec,
		timeout: 10 * time.Minute,
		log:     log.Named("backup_task"),
	}
}

// Start 启动定时任务
func (t *BackupOrderTask) Start() error {
	_, err := t.cron.AddFunc(t.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
		defer cancel()
		if _, err := t.Trigger(ctx, t.backup.TargetWeek()); err != nil {
			t.log.Error("定时补单失败", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}

	t.cron.Start()
	t.log.Info("补单任务已启动", zap.String("cron", t.spec))
	return nil
}

// Stop 停止任务，等待正在执行的补单结束
func (t *BackupOrderTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	t.log.Info("补单任务已停止")
}

// Trigger 立即为指定周补单，系统身份执行
func (t *BackupOrderTask) Trigger(ctx context.Context, week time.Time) (*dto.BackfillResult, error) {
	start := time.Now()
	result, err := t.backup.GenerateBackupOrders(ctx, week, service.System.UserID)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	t.lastRun = result
	t.mu.Unlock()

	t.log.Info("补单完成",
		zap.String("week", result.Week),
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped),
		zap.Int("incomplete", result.Incomplete),
		zap.Int("failures", len(result.Failures)),
		zap.Duration("duration", time.Since(start)),
	)
	return result, nil
}

// LastRun 最近一次补单结果
func (t *BackupOrderTask) LastRun() *dto.BackfillResult {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastRun
}
