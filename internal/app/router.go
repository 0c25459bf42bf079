package app

import (
	"classroom_backend/docs"
	"classroom_backend/internal/config"
	"classroom_backend/internal/middleware"
	"classroom_backend/internal/model"
	"classroom_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 外链跳转由浏览器直接导航，token 走 query 参数，可选认证
	router.GET("/api/courses/:courseId/module_item_redirect/:itemId",
		middleware.TryAuthMiddleware(cfg), c.module.Redirect)

	// 3. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		a.registerCourseRoutes(authGroup, c)
		a.registerAccountRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}
}

func (a *App) registerCourseRoutes(group *gin.RouterGroup, c *controllers) {
	group.GET("/profile", c.auth.GetProfile)

	courses := group.Group("/courses/:courseId")
	{
		modules := courses.Group("/modules")
		{
			modules.GET("", c.module.Index)
			modules.POST("", middleware.RoleMiddleware(model.Teacher), c.module.Create)
			modules.GET("/:moduleId", c.module.Show)
			modules.PUT("/:moduleId", middleware.RoleMiddleware(model.Teacher), c.module.Update)
			modules.GET("/:moduleId/items", c.module.ListItems)
			modules.POST("/:moduleId/items", middleware.RoleMiddleware(model.Teacher), c.module.CreateItem)
			modules.GET("/:moduleId/items/:itemId", c.module.ShowItem)
			modules.DELETE("/:moduleId/items/:itemId", middleware.RoleMiddleware(model.Teacher), c.module.DeleteItem)
		}

		// 事件端点不嵌在 /modules 下，避免与模块路由参数冲突
		courses.POST("/module_items/:itemId/events", c.module.RecordEvent)
	}
}

func (a *App) registerAccountRoutes(group *gin.RouterGroup, c *controllers) {
	accounts := group.Group("/accounts/:accountId")
	{
		accounts.POST("/roles", c.role.AddRole)
		accounts.GET("/roles/:role", c.role.ShowRole)
		accounts.PUT("/roles/:role", c.role.UpdateRole)
	}
}
