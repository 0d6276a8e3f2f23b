package app

import (
	"hr_training_backend/internal/config"
	"hr_training_backend/internal/middleware"
	"hr_training_backend/internal/model"
	"hr_training_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	router.GET("/api/health", c.health.HealthCheck)

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg.JWT.Secret))
	{
		// 2. 员工培训
		a.registerTrainingRoutes(authGroup, c)

		// 3. HR / 管理员
		a.registerAdminRoutes(authGroup, c)
	}
}

func (a *App) registerTrainingRoutes(group *gin.RouterGroup, c *controllers) {
	training := group.Group("/training")
	{
		training.GET("/modules", c.training.GetAssignedModules)
		training.POST("/unlock", c.training.UnlockViaQR)
		training.GET("/modules/:moduleId/content", c.training.GetModuleContent)
		training.POST("/modules/:moduleId/progress", c.training.RecordProgress)
		training.POST("/modules/:moduleId/complete", c.training.CompleteTraining)
		training.GET("/stats", c.training.GetStats)
	}
}

func (a *App) registerAdminRoutes(group *gin.RouterGroup, c *controllers) {
	admin := group.Group("/admin")
	admin.Use(middleware.RoleMiddleware(model.RoleHR))
	{
		admin.POST("/training/modules", c.admin.CreateModule)
		admin.GET("/training/modules", c.admin.ListModules)
		admin.POST("/training/modules/:moduleId/qr", c.admin.GenerateQR)
		admin.POST("/training/assignments", c.admin.AssignTraining)
		admin.DELETE("/training/assignments/:id", c.admin.RemoveAssignment)
		admin.GET("/employees/:employeeId/training/stats", c.admin.GetEmployeeStats)
	}
}
