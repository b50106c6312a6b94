package model

import (
	usermodel "task-manager/pkg/core/user/model"
)

// 请求/响应数据结构
type (
	RegisterReq struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
		Age      int    `json:"age"`
	}

	LoginReq struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	// AuthRes 注册/登录的统一响应：用户资料+新签发令牌
	AuthRes struct {
		User  *usermodel.User `json:"user"`
		Token string          `json:"token"`
	}
)
