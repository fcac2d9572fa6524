package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"canteen_order_v1/internal/controller"
	"canteen_order_v1/internal/middleware"
	"canteen_order_v1/internal/model"

	_ "canteen_order_v1/docs"
)

// Controllers 路由依赖的控制器
type Controllers struct {
	User   *controller.UserController
	Order  *controller.OrderController
	Menu   *controller.MenuController
	Report *controller.ReportController
	Master *controller.MasterController
}

// Options 路由中间件参数
type Options struct {
	Roles            middleware.RoleResolver
	OrderLimiter     *middleware.UserRateLimiter
	BackfillLimiter  *middleware.CooldownLimiter
	BackfillCooldown time.Duration
}

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine, ctl Controllers, opts Options) {
	// 1. Swagger 文档路由
	// 访问 http://localhost:8080/swagger/index.html 即可查看
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"code": 0, "message": "ok"})
	})

	backOffice := middleware.RequireRole(model.RoleAdmin, model.RoleGeneralAffair)
	adminOnly := middleware.RequireRole(model.RoleAdmin)
	menuEditors := middleware.RequireRole(model.RoleAdmin, model.RoleGeneralAffair, model.RoleVendor)

	// 2. API 路由组
	api := r.Group("/api")
	{
		// auth 登录与刷新无需 token
		auth := api.Group("/auth")
		{
			auth.POST("/login", ctl.User.Login)
			auth.POST("/refresh", ctl.User.RefreshToken)
		}

		secured := api.Group("")
		secured.Use(middleware.JWTAuth(opts.Roles), middleware.AuditContext())
		{
			secured.GET("/auth/profile", ctl.User.GetProfile)
			secured.POST("/users", backOffice, ctl.User.CreateUser)

			// 取餐码
			qr := secured.Group("/qrcode")
			{
				qr.GET("/me", ctl.User.MyQRCode)
				qr.GET("/scan/:data", menuEditors, ctl.User.ScanQRCode)
			}

			// 周订单
			orders := secured.Group("/orders")
			{
				orders.GET("/eligibility", ctl.Order.Eligibility)
				orders.GET("/me", ctl.Order.MyWeekOrder)
				orders.POST("", middleware.OrderRateLimit(opts.OrderLimiter), ctl.Order.Create)
				orders.GET("/:id", ctl.Order.Get)
				orders.GET("/:id/history", ctl.Order.History)
				orders.DELETE("/:id", ctl.Order.Delete)

				orders.GET("", backOffice, ctl.Order.List)
				orders.POST("/bulk-approve", adminOnly, ctl.Order.BulkApprove)
				orders.POST("/:id/approve", adminOnly, ctl.Order.Approve)
				orders.POST("/:id/reject", adminOnly, ctl.Order.Reject)
				orders.PATCH("/:id/status", adminOnly, ctl.Order.UpdateStatus)
			}

			// 菜单
			menus := secured.Group("/menus")
			{
				menus.GET("/weekly", ctl.Menu.Weekly)
				menus.GET("", menuEditors, ctl.Menu.List)
				menus.POST("", menuEditors, ctl.Menu.Create)
				menus.PUT("/:id", menuEditors, ctl.Menu.Update)
				menus.PATCH("/:id/status", backOffice, ctl.Menu.SetStatus)
			}

			// 报表与补单
			reports := secured.Group("/reports", backOffice)
			{
				reports.GET("/weekly", ctl.Report.WeeklyStats)
				reports.GET("/not-ordered", ctl.Report.NotOrdered)
			}
			secured.POST("/backfill", adminOnly,
				middleware.BackfillCooldown(opts.BackfillLimiter, opts.BackfillCooldown),
				ctl.Report.Backfill)

			// 主数据
			secured.GET("/shifts", ctl.Master.ListShifts)
			secured.POST("/shifts", backOffice, ctl.Master.CreateShift)
			secured.GET("/locations", ctl.Master.ListLocations)
			secured.POST("/locations", backOffice, ctl.Master.CreateLocation)
			secured.GET("/departments", ctl.Master.ListDepartments)
			secured.POST("/departments", backOffice, ctl.Master.CreateDepartment)
			secured.GET("/vendors", menuEditors, ctl.Master.ListVendors)
			secured.POST("/vendors", backOffice, ctl.Master.CreateVendor)
			secured.GET("/roles", backOffice, ctl.Master.ListRoles)
			secured.PUT("/roles/:id", adminOnly, ctl.Master.RenameRole)
		}
	}
}
