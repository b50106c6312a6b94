package handler

import (
	"context"
	"encoding/json"
	"io"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/common/utils"

	commonerrors "task-manager/pkg/common/errors"
	"task-manager/pkg/core/avatar"
	"task-manager/pkg/core/user/service"
	"task-manager/pkg/web/middleware"
	"task-manager/pkg/web/model"
)

type UserHandler struct {
	users *service.Service
}

func NewUserHandler(users *service.Service) *UserHandler {
	return &UserHandler{users: users}
}

// 资料更新允许的字段白名单
var allowedUserUpdates = []string{"name", "email", "password", "age"}

// Register 注册并签发首个会话令牌
func (h *UserHandler) Register(ctx context.Context, c *app.RequestContext) {
	var req model.RegisterReq
	if err := c.BindAndValidate(&req); err != nil {
		respondError(c, 400, "invalid request body")
		return
	}

	user, token, err := h.users.Register(ctx, req.Name, req.Email, req.Password, req.Age)
	if err != nil {
		respondServiceError(ctx, c, err)
		return
	}

	c.JSON(201, model.AuthRes{User: user, Token: token})
}

// Login 凭证登录，旧令牌保持有效
func (h *UserHandler) Login(ctx context.Context, c *app.RequestContext) {
	var req model.LoginReq
	if err := c.BindAndValidate(&req); err != nil {
		respondError(c, 400, "invalid request body")
		return
	}

	user, token, err := h.users.Login(ctx, req.Email, req.Password)
	if err != nil {
		respondError(c, 400, "unable to login")
		return
	}

	c.JSON(200, model.AuthRes{User: user, Token: token})
}

// Logout 只吊销本次请求携带的令牌
func (h *UserHandler) Logout(ctx context.Context, c *app.RequestContext) {
	user, _ := middleware.GetUser(c)
	token, _ := middleware.GetToken(c)
	if user == nil || token == "" {
		respondError(c, 401, "please authenticate")
		return
	}

	if err := h.users.Logout(ctx, user, token); err != nil {
		respondServiceError(ctx, c, err)
		return
	}
	c.JSON(200, utils.H{"message": "logged out successfully"})
}

// LogoutAll 吊销全部会话
func (h *UserHandler) LogoutAll(ctx context.Context, c *app.RequestContext) {
	user, _ := middleware.GetUser(c)
	if user == nil {
		respondError(c, 401, "please authenticate")
		return
	}

	if err := h.users.LogoutAll(ctx, user); err != nil {
		respondServiceError(ctx, c, err)
		return
	}
	c.JSON(200, utils.H{"message": "all sessions logged out successfully"})
}

// Me 返回调用者资料（密码与头像不在默认序列化内）
func (h *UserHandler) Me(ctx context.Context, c *app.RequestContext) {
	user, _ := middleware.GetUser(c)
	if user == nil {
		respondError(c, 401, "please authenticate")
		return
	}
	c.JSON(200, user)
}

// UpdateMe 白名单字段的资料更新
func (h *UserHandler) UpdateMe(ctx context.Context, c *app.RequestContext) {
	user, _ := middleware.GetUser(c)
	if user == nil {
		respondError(c, 401, "please authenticate")
		return
	}

	fields, err := model.DecodeAllowed(c.Request.Body(), allowedUserUpdates...)
	if err != nil {
		respondError(c, 400, err.Error())
		return
	}

	var upd service.ProfileUpdate
	if raw, ok := fields["name"]; ok {
		if err := json.Unmarshal(raw, &upd.Name); err != nil {
			respondError(c, 400, "name must be a string")
			return
		}
	}
	if raw, ok := fields["email"]; ok {
		if err := json.Unmarshal(raw, &upd.Email); err != nil {
			respondError(c, 400, "email must be a string")
			return
		}
	}
	if raw, ok := fields["password"]; ok {
		if err := json.Unmarshal(raw, &upd.Password); err != nil {
			respondError(c, 400, "password must be a string")
			return
		}
	}
	if raw, ok := fields["age"]; ok {
		if err := json.Unmarshal(raw, &upd.Age); err != nil {
			respondError(c, 400, "age must be a number")
			return
		}
	}

	if err := h.users.UpdateProfile(ctx, user, upd); err != nil {
		respondServiceError(ctx, c, err)
		return
	}
	c.JSON(200, user)
}

// DeleteMe 删除账户并级联删除任务，返回被删除的资料
func (h *UserHandler) DeleteMe(ctx context.Context, c *app.RequestContext) {
	user, _ := middleware.GetUser(c)
	if user == nil {
		respondError(c, 401, "please authenticate")
		return
	}

	if err := h.users.DeleteAccount(ctx, user); err != nil {
		respondServiceError(ctx, c, err)
		return
	}
	c.JSON(200, user)
}

// UploadAvatar 接收multipart头像并经管线规范化后落库
func (h *UserHandler) UploadAvatar(ctx context.Context, c *app.RequestContext) {
	user, _ := middleware.GetUser(c)
	if user == nil {
		respondError(c, 401, "please authenticate")
		return
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		respondError(c, 400, "avatar file is required")
		return
	}
	if fileHeader.Size > avatar.MaxFileSize {
		respondError(c, 400, "file exceeds max size")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, 400, "unable to read uploaded file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(c, 400, "unable to read uploaded file")
		return
	}

	normalized, err := avatar.Process(fileHeader.Filename, data)
	if err != nil {
		respondError(c, 400, err.Error())
		return
	}

	if err := h.users.SetAvatar(ctx, user, normalized); err != nil {
		respondServiceError(ctx, c, err)
		return
	}
	c.SetStatusCode(200)
}

// DeleteAvatar 清除头像
func (h *UserHandler) DeleteAvatar(ctx context.Context, c *app.RequestContext) {
	user, _ := middleware.GetUser(c)
	if user == nil {
		respondError(c, 401, "please authenticate")
		return
	}

	if err := h.users.ClearAvatar(ctx, user); err != nil {
		respondServiceError(ctx, c, err)
		return
	}
	c.SetStatusCode(200)
}

// GetAvatar 公开接口：按用户id返回头像原始字节
func (h *UserHandler) GetAvatar(ctx context.Context, c *app.RequestContext) {
	data, err := h.users.GetAvatar(ctx, c.Param("id"))
	if err != nil {
		c.SetStatusCode(commonerrors.HTTPStatus(err))
		return
	}
	c.Data(200, "image/png", data)
}

// 统一错误响应方法
func respondError(c *app.RequestContext, code int, msg string) {
	c.JSON(code, utils.H{"error": msg})
}

func respondServiceError(ctx context.Context, c *app.RequestContext, err error) {
	status := commonerrors.HTTPStatus(err)
	if status == 500 {
		hlog.CtxErrorf(ctx, "request failed path=%s: %v", c.Path(), err)
		respondError(c, 500, "internal server error")
		return
	}
	respondError(c, status, err.Error())
}
