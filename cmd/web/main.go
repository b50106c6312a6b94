package main

import (
	"github.com/cloudwego/hertz/pkg/app/server"

	"task-manager/pkg/common/config"
	taskmodel "task-manager/pkg/core/task/model"
	taskdao "task-manager/pkg/core/task/repository/dao/impl"
	usermodel "task-manager/pkg/core/user/model"
	userdao "task-manager/pkg/core/user/repository/dao/impl"
	"task-manager/pkg/core/user/service"
	"task-manager/pkg/web/router"
)

func main() {
	// 初始化配置
	cfg := config.Load()

	// 初始化数据库连接
	db, err := cfg.InitDB()
	if err != nil {
		panic("Failed to initialize database: " + err.Error())
	}

	// 建表迁移
	if err := usermodel.AutoMigrate(db); err != nil {
		panic("Failed to migrate user tables: " + err.Error())
	}
	if err := taskmodel.AutoMigrate(db); err != nil {
		panic("Failed to migrate task tables: " + err.Error())
	}

	// 组装仓储与服务
	userRepo := userdao.NewGormUserRepository(db)
	taskRepo := taskdao.NewGormTaskRepository(db)
	userService := service.NewService(userRepo, &cfg.Middleware.JWT)

	// 创建Hertz实例
	h := server.Default(
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
	)

	// 注册路由
	router.RegisterAPIs(h, cfg, userService, taskRepo, db)

	// 启动服务
	h.Spin()
}
