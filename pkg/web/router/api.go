package router

import (
	"github.com/cloudwego/hertz/pkg/app/server"
	"gorm.io/gorm"

	"task-manager/pkg/common/config"
	taskdao "task-manager/pkg/core/task/repository/dao"
	"task-manager/pkg/core/user/service"
	"task-manager/pkg/web/handler"
	"task-manager/pkg/web/middleware"
)

// RegisterAPIs 注册所有API路由
func RegisterAPIs(h *server.Hertz, cfg *config.Config, users *service.Service, tasks taskdao.TaskRepository, db *gorm.DB) {
	// 初始化Handler实例
	healthHandler := handler.NewHealthCheckHandler(db)
	userHandler := handler.NewUserHandler(users)
	taskHandler := handler.NewTaskHandler(tasks)

	// 注册全局中间件（按执行顺序）
	h.Use(
		middleware.RecoveryMiddleware(cfg),
		middleware.LoggerMiddleware(),
		middleware.BodyLimitMiddleware(cfg.Middleware.Security.MaxBodySize),
		middleware.CORSMiddleware(cfg.Middleware.CORS),
	)

	// 基础接口组
	h.GET("/health", healthHandler.AdvancedHealthCheck)

	// 受保护路由的认证闸口
	auth := middleware.AuthMiddleware(users)

	// 用户相关接口
	h.POST("/users", userHandler.Register)
	h.POST("/users/login", userHandler.Login)
	h.POST("/users/logout", auth, userHandler.Logout)
	h.POST("/users/logoutAll", auth, userHandler.LogoutAll)
	h.GET("/users/me", auth, userHandler.Me)
	h.PATCH("/users/me", auth, userHandler.UpdateMe)
	h.DELETE("/users/me", auth, userHandler.DeleteMe)
	h.POST("/users/me/avatar", auth, userHandler.UploadAvatar)
	h.DELETE("/users/me/avatar", auth, userHandler.DeleteAvatar)
	h.GET("/users/:id/avatar", userHandler.GetAvatar) // 公开接口

	// 任务相关接口
	h.POST("/tasks", auth, taskHandler.Create)
	h.GET("/tasks", auth, taskHandler.List)
	h.GET("/tasks/:id", auth, taskHandler.GetByID)
	h.PATCH("/tasks/:id", auth, taskHandler.Update)
	h.DELETE("/tasks/:id", auth, taskHandler.Delete)
}
