package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"canteen_order_v1/internal/api/dto"
	"canteen_order_v1/internal/config"
	"canteen_order_v1/internal/controller"
	"canteen_order_v1/internal/middleware"
	"canteen_order_v1/internal/model"
	"canteen_order_v1/internal/repository"
	"canteen_order_v1/internal/router"
	"canteen_order_v1/internal/service"
	"canteen_order_v1/internal/task"
	"canteen_order_v1/internal/telemetry"
	"canteen_order_v1/pkg/database"
	"canteen_order_v1/pkg/logger"
	"canteen_order_v1/pkg/utils"
)

func main() {
	app := &cli.App{
		Name:  "canteen",
		Usage: "员工周订餐服务",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "配置文件路径",
				EnvVars: []string{"CANTEEN_CONFIG"},
			},
		},
		Action: runServe,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "启动 HTTP 服务与定时任务",
				Action: runServe,
			},
			{
				Name:  "backfill",
				Usage: "立即为未下单员工补单",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "week", Usage: "目标周任意日期 YYYY-MM-DD，默认下周"},
				},
				Action: runBackfill,
			},
			{
				Name:  "seed",
				Usage: "初始化角色与管理员账号",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "admin-username", Value: "admin"},
					&cli.StringFlag{Name: "admin-password", Required: true, EnvVars: []string{"CANTEEN_ADMIN_PASSWORD"}},
				},
				Action: runSeed,
			},
			{
				Name:  "token",
				Usage: "为指定用户签发令牌（运维调试）",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "user-id", Required: true},
				},
				Action: runToken,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	Config      *config.Config
	Log         *zap.Logger
	DB          *gorm.DB
	Repos       *Repositories
	Services    *Services
	Controllers router.Controllers
}

// Repositories 仓库集合
type Repositories struct {
	User       repository.UserRepository
	Role       repository.RoleRepository
	Shift      repository.ShiftRepository
	Location   repository.LocationRepository
	Department repository.DepartmentRepository
	Vendor     repository.VendorRepository
	Menu       repository.MealMenuRepository
	Order      repository.OrderRepository
	QRCode     repository.QRCodeRepository
	OrderUow   *repository.OrderUnitOfWork
}

// Services 服务集合
type Services struct {
	User   *service.UserService
	Role   *service.RoleService
	Master *service.MasterService
	Menu   *service.MenuService
	Order  *service.OrderService
	Backup *service.BackupOrderService
	Report *service.ReportService
	QRCode *service.QRCodeService
}

// ==================== 初始化函数 ====================

// bootstrap 加载配置、日志与数据库，组装所有依赖
func bootstrap(c *cli.Context) (*Dependencies, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return nil, err
	}

	db, err := database.InitDB(cfg.Database.DSN, cfg.Database.LogLevel, log, model.AllModels()...)
	if err != nil {
		return nil, err
	}
	if err := middleware.RegisterAuditCallbacks(db); err != nil {
		return nil, err
	}

	middleware.SetJWTConfig(&middleware.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenTTL:  cfg.JWT.AccessTTL,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		Issuer:          cfg.JWT.Issuer,
	})

	repos := initRepositories(db)
	services := initServices(cfg, repos, log)

	return &Dependencies{
		Config:      cfg,
		Log:         log,
		DB:          db,
		Repos:       repos,
		Services:    services,
		Controllers: initControllers(services),
	}, nil
}

// initRepositories 初始化所有仓库
func initRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:       repository.NewUserRepository(db),
		Role:       repository.NewRoleRepository(db),
		Shift:      repository.NewShiftRepository(db),
		Location:   repository.NewLocationRepository(db),
		Department: repository.NewDepartmentRepository(db),
		Vendor:     repository.NewVendorRepository(db),
		Menu:       repository.NewMealMenuRepository(db),
		Order:      repository.NewOrderRepository(db),
		QRCode:     repository.NewQRCodeRepository(db),
		OrderUow:   repository.NewOrderUnitOfWork(db),
	}
}

// initServices 初始化所有服务
func initServices(cfg *config.Config, repos *Repositories, log *zap.Logger) *Services {
	clock := utils.NewClock(cfg.Location())

	return &Services{
		User:   service.NewUserService(repos.User, repos.Role, repos.Location, repos.Department),
		Role:   service.NewRoleService(repos.Role, cfg.Cache.RoleCapacity, cfg.Cache.RoleTTL),
		Master: service.NewMasterService(repos.Shift, repos.Location, repos.Department, repos.Vendor, repos.User),
		Menu:   service.NewMenuService(repos.Menu, repos.Vendor, repos.Shift, clock),
		Order:  service.NewOrderService(repos.OrderUow, repos.Shift, clock, log.Named("order")),
		Backup: service.NewBackupOrderService(
			repos.OrderUow, repos.User, repos.Shift, repos.Menu,
			service.BackupConfig{
				DefaultShiftID:  cfg.Backfill.DefaultShiftID,
				RequireFullWeek: cfg.Backfill.RequireFullWeek,
			},
			clock, log.Named("backup"),
		),
		Report: service.NewReportService(repos.User, repos.Order),
		QRCode: service.NewQRCodeService(repos.QRCode),
	}
}

// initControllers 初始化所有控制器
func initControllers(svc *Services) router.Controllers {
	return router.Controllers{
		User:   controller.NewUserController(svc.User, svc.QRCode),
		Order:  controller.NewOrderController(svc.Order),
		Menu:   controller.NewMenuController(svc.Menu),
		Report: controller.NewReportController(svc.Report, svc.Backup),
		Master: controller.NewMasterController(svc.Master, svc.Role),
	}
}

// ==================== 命令 ====================

// runServe 启动 HTTP 服务与定时任务，收到退出信号后优雅关闭
func runServe(c *cli.Context) error {
	deps, err := bootstrap(c)
	if err != nil {
		return err
	}
	cfg, log := deps.Config, deps.Log
	defer func() { _ = log.Sync() }()

	shutdownTracing := telemetry.Setup(cfg.Telemetry, log)

	if err := dto.RegisterValidators(); err != nil {
		return err
	}

	if _, err := deps.Services.Role.EnsureDefaults(c.Context); err != nil {
		return fmt.Errorf("初始化角色失败: %w", err)
	}

	// 定时任务
	tasks := task.NewTaskManager(&task.TaskManagerDeps{
		Backup: deps.Services.Backup,
		Logger: log,
	}, &task.TaskManagerConfig{
		BackupEnabled: cfg.Backfill.Enabled,
		BackupCron:    cfg.Backfill.Cron,
		Location:      cfg.Location(),
	})
	if err := tasks.Start(); err != nil {
		return fmt.Errorf("启动定时任务失败: %w", err)
	}

	// 路由
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))
	router.InitRoutes(r, deps.Controllers, router.Options{
		Roles:            deps.Services.Role,
		OrderLimiter:     middleware.NewUserRateLimiter(cfg.RateLimit.OrderPerMinute, cfg.RateLimit.OrderBurst),
		BackfillLimiter:  middleware.NewCooldownLimiter(),
		BackfillCooldown: cfg.Backfill.Cooldown,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           otelhttp.NewHandler(r, cfg.Telemetry.ServiceName),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 异步启动服务
	errCh := make(chan error, 1)
	go func() {
		log.Info("服务启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// 等待退出信号
	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			tasks.Stop()
			return fmt.Errorf("服务启动失败: %w", err)
		}
	}

	log.Info("正在关闭服务...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("服务强制关闭", zap.Error(err))
	}
	tasks.Stop()
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Warn("otel shutdown", zap.Error(err))
	}

	log.Info("服务已退出")
	return nil
}

// runBackfill 命令行补单，与定时任务使用同一逻辑
func runBackfill(c *cli.Context) error {
	deps, err := bootstrap(c)
	if err != nil {
		return err
	}
	defer func() { _ = deps.Log.Sync() }()

	week := deps.Services.Backup.TargetWeek()
	if raw := c.String("week"); raw != "" {
		day, err := utils.ParseDate(raw)
		if err != nil {
			return fmt.Errorf("week 格式错误: %w", err)
		}
		week = utils.WeekStartOf(day)
	}

	tasks := task.NewTaskManager(&task.TaskManagerDeps{
		Backup: deps.Services.Backup,
		Logger: deps.Log,
	}, &task.TaskManagerConfig{
		BackupEnabled: true,
		BackupCron:    deps.Config.Backfill.Cron,
		Location:      deps.Config.Location(),
	})

	result, err := tasks.TriggerBackfill(c.Context, week)
	if err != nil {
		return err
	}

	fmt.Printf("week=%s created=%d skipped=%d incomplete=%d failures=%d\n",
		result.Week, result.Created, result.Skipped, result.Incomplete, len(result.Failures))
	for _, f := range result.Failures {
		fmt.Printf("  user_id=%d reason=%s\n", f.UserID, f.Reason)
	}
	return nil
}

// runSeed 初始化默认角色与管理员
func runSeed(c *cli.Context) error {
	deps, err := bootstrap(c)
	if err != nil {
		return err
	}
	defer func() { _ = deps.Log.Sync() }()

	roles, err := deps.Services.Role.EnsureDefaults(c.Context)
	if err != nil {
		return fmt.Errorf("初始化角色失败: %w", err)
	}

	username := c.String("admin-username")
	created, err := deps.Services.User.EnsureAdmin(c.Context, username, c.String("admin-password"))
	if err != nil {
		return err
	}

	deps.Log.Info("初始化完成",
		zap.Int("roles_created", roles),
		zap.String("admin", username),
		zap.Bool("admin_created", created),
	)
	return nil
}

// runToken 为指定用户签发令牌
func runToken(c *cli.Context) error {
	deps, err := bootstrap(c)
	if err != nil {
		return err
	}

	user, err := deps.Repos.User.GetByID(c.Context, c.Int64("user-id"))
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("用户不存在: %d", c.Int64("user-id"))
	}

	access, refresh, err := middleware.GenerateTokenPair(user.ID, user.Username, user.RoleID)
	if err != nil {
		return err
	}
	fmt.Printf("access_token=%s\nrefresh_token=%s\n", access, refresh)
	return nil
}
