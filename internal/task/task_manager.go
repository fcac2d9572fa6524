package task

import (
	"context"
	"time"

	"go.uber.org/zap"

	"canteen_order_v1/internal/api/dto"
)

// ==================== TaskManager 定时任务管理器 ====================

// TaskManager 统一管理后台定时任务
type TaskManager struct {
	backupTask *BackupOrderTask
	log        *zap.Logger
}

// TaskManagerDeps 任务管理器依赖
type TaskManagerDeps struct {
	Backup BackupGenerator
	Logger *zap.Logger
}

// TaskManagerConfig 任务管理器配置
type TaskManagerConfig struct {
	BackupEnabled bool
	BackupCron    string
	Location      *time.Location
}

// DefaultConfig 默认配置
func DefaultConfig() *TaskManagerConfig {
	return &TaskManagerConfig{
		BackupEnabled: true,
		BackupCron:    "0 5 12 * * SAT",
		Location:      time.Local,
	}
}

// NewTaskManager 创建任务管理器
func NewTaskManager(deps *TaskManagerDeps, cfg *TaskManagerConfig) *TaskManager {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	tm := &TaskManager{log: log.Named("task_manager")}

	if cfg.BackupEnabled && deps.Backup != nil {
		tm.backupTask = NewBackupOrderTask(deps.Backup, cfg.BackupCron, cfg.Location, log)
	}

	return tm
}

// ==================== 生命周期管理 ====================

// Start 启动所有任务
func (tm *TaskManager) Start() error {
	tm.log.Info("正在启动定时任务")

	if tm.backupTask != nil {
		if err := tm.backupTask.Start(); err != nil {
			return err
		}
	}

	tm.log.Info("定时任务已全部启动", zap.Any("status", tm.Status()))
	return nil
}

// Stop 停止所有任务
func (tm *TaskManager) Stop() {
	if tm.backupTask != nil {
		tm.backupTask.Stop()
	}
	tm.log.Info("定时任务已全部停止")
}

// ==================== 手动触发接口 ====================

// TriggerBackfill 立即为指定周补单
func (tm *TaskManager) TriggerBackfill(ctx context.Context, week time.Time) (*dto.BackfillResult, error) {
	if tm.backupTask == nil {
		return nil, ErrTaskDisabled
	}
	return tm.backupTask.Trigger(ctx, week)
}

// ==================== 状态查询 ====================

// Status 获取任务状态
func (tm *TaskManager) Status() map[string]bool {
	return map[string]bool{
		"backup": tm.backupTask != nil,
	}
}

// ==================== 错误定义 ====================

type TaskError string

func (e TaskError) Error() string { return string(e) }

const (
	ErrTaskDisabled TaskError = "task is disabled"
)
