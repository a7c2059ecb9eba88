package api

import (
	"github.com/bluemoon-apartment/bluemoon-backend/internal/activity"
	"github.com/bluemoon-apartment/bluemoon-backend/internal/api/handlers"
	"github.com/bluemoon-apartment/bluemoon-backend/internal/api/middleware"
	"github.com/bluemoon-apartment/bluemoon-backend/internal/auth"
	"github.com/bluemoon-apartment/bluemoon-backend/internal/config"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Dependencies 路由依赖
type Dependencies struct {
	Config    *config.Config
	DB        *gorm.DB
	Profiles  auth.ProfileResolver
	Store     activity.Store
	Recorder  middleware.ActivityRecorder
	Retention handlers.Cleaner
}

// SetupRouter 设置路由
func SetupRouter(deps Dependencies) *gin.Engine {
	// 创建Gin实例
	router := gin.New()

	// 全局中间件
	router.Use(
		middleware.RecoveryMiddleware(),                           // 恢复中间件
		middleware.RequestID(),                                    // 请求ID
		middleware.LoggerMiddleware(),                             // 日志中间件
		middleware.CorsMiddleware(deps.Config.App.AllowOrigins),   // 跨域中间件
	)

	policy := activity.NewPolicy(deps.Config.Activity)

	// 创建处理器
	healthHandler := handlers.NewHealthHandler(deps.DB)
	authHandler := handlers.NewAuthHandler(deps.Profiles)
	activityLogHandler := handlers.NewActivityLogHandler(deps.Store, deps.Recorder, deps.Retention)

	// 公开路由
	public := router.Group("/api")
	{
		public.GET("/health", healthHandler.Check)
	}

	// 需要认证的路由，操作日志中间件位于认证之后、处理器之外
	authorized := router.Group("/api")
	authorized.Use(
		middleware.AuthMiddleware(&deps.Config.JWT, deps.Profiles),
		middleware.ActivityLogMiddleware(deps.Recorder, policy, deps.Config.Activity.MaxBodyBytes),
	)
	{
		authorized.GET("/auth/me", authHandler.GetCurrentUser)

		// 操作日志
		activityLogs := authorized.Group("/activity-logs")
		{
			activityLogs.GET("/me", activityLogHandler.Mine)
			activityLogs.POST("", activityLogHandler.Create)

			admin := activityLogs.Group("")
			admin.Use(middleware.AdminMiddleware())
			admin.GET("", activityLogHandler.List)
			admin.GET("/stats", activityLogHandler.Stats)
			admin.DELETE("/cleanup", activityLogHandler.Cleanup)
		}
	}

	return router
}
