package middleware

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/hertz-contrib/cors"

	"task-manager/pkg/common/config"
	usermodel "task-manager/pkg/core/user/model"
	"task-manager/pkg/core/user/service"
)

// 认证上下文键，handler经由GetUser/GetToken读取
const (
	ContextUserKey  = "user"
	ContextTokenKey = "token"
)

// LoggerMiddleware 结构化的请求日志记录
func LoggerMiddleware() app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		start := time.Now()
		ctx.Next(c) // 放行到后续处理器
		latency := time.Since(start)

		// 结构化日志输出
		hlog.CtxTracef(c, "| %3d | %13v | %15s | %-7s | %s | UA=%s",
			ctx.Response.StatusCode(),
			latency,
			ctx.ClientIP(),
			ctx.Method(),
			ctx.Path(),
			ctx.GetHeader("User-Agent"),
		)
	}
}

// RecoveryMiddleware 增强型异常捕获（带配置依赖版本）
func RecoveryMiddleware(cfg *config.Config) app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		defer func() {
			if err := recover(); err != nil {
				// 获取调用堆栈
				stack := string(debug.Stack())

				hlog.CtxErrorf(c, "[PANIC RECOVERED] %v\n%s", err, stack)

				// 生产环境处理
				if cfg.IsProd() { // 使用注入的配置实例判断环境
					ctx.AbortWithStatusJSON(500, map[string]interface{}{
						"error": "internal server error",
					})
				} else { // 开发环境显示详细错误
					ctx.AbortWithStatusJSON(500, map[string]interface{}{
						"error": fmt.Sprintf("%v", err),
						"stack": strings.Split(stack, "\n"), // 切割为字符串数组更易读
					})
				}
			}
		}()
		ctx.Next(c)
	}
}

// CORSMiddleware 安全的跨域配置
func CORSMiddleware(corsConfig config.CORSConfig) app.HandlerFunc {
	return cors.New(
		cors.Config{
			AllowOrigins:     corsConfig.AllowOrigins,
			AllowMethods:     corsConfig.AllowMethods,
			AllowHeaders:     corsConfig.AllowHeaders,
			ExposeHeaders:    corsConfig.ExposeHeaders,
			AllowCredentials: corsConfig.AllowCredentials,
			MaxAge:           corsConfig.MaxAge,
		},
	)
}

// BodyLimitMiddleware 请求体大小限制
func BodyLimitMiddleware(maxBodySize int64) app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		if int64(ctx.Request.Header.ContentLength()) > maxBodySize {
			hlog.CtxWarnf(c, "request body too large path=%s", ctx.Path())
			ctx.AbortWithStatusJSON(413, utils.H{
				"error": "request body exceeds max size",
			})
			return
		}
		ctx.Next(c)
	}
}

// AuthMiddleware 受保护路由的唯一认证闸口
// 每个请求都重新加载用户并核对令牌未被吊销，不做任何缓存
func AuthMiddleware(users *service.Service) app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		header := string(ctx.GetHeader("Authorization"))
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			rejectUnauthenticated(ctx)
			return
		}

		user, err := users.Authenticate(c, token)
		if err != nil {
			rejectUnauthenticated(ctx)
			return
		}

		ctx.Set(ContextUserKey, user)
		ctx.Set(ContextTokenKey, token)
		ctx.Next(c)
	}
}

func rejectUnauthenticated(ctx *app.RequestContext) {
	ctx.AbortWithStatusJSON(401, utils.H{"error": "please authenticate"})
}

// GetUser 取出认证中间件写入的用户实体
func GetUser(ctx *app.RequestContext) (*usermodel.User, bool) {
	v, ok := ctx.Get(ContextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*usermodel.User)
	return user, ok
}

// GetToken 取出本次请求使用的原始令牌
func GetToken(ctx *app.RequestContext) (string, bool) {
	v, ok := ctx.Get(ContextTokenKey)
	if !ok {
		return "", false
	}
	token, ok := v.(string)
	return token, ok
}
