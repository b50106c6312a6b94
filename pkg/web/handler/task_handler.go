package handler

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"

	commonerrors "task-manager/pkg/common/errors"
	"task-manager/pkg/common/objectid"
	taskmodel "task-manager/pkg/core/task/model"
	"task-manager/pkg/core/task/repository/dao"
	"task-manager/pkg/web/middleware"
	"task-manager/pkg/web/model"
)

type TaskHandler struct {
	tasks dao.TaskRepository
}

func NewTaskHandler(tasks dao.TaskRepository) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// 任务更新允许的字段白名单
var allowedTaskUpdates = []string{"description", "completed"}

// 可排序字段到列名的映射，未知字段不排序
var sortColumns = map[string]string{
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
	"completed":   "completed",
	"description": "description",
}

// Create 创建任务，owner强制为调用者，忽略请求体内任何owner字段
func (h *TaskHandler) Create(ctx context.Context, c *app.RequestContext) {
	user, _ := middleware.GetUser(c)
	if user == nil {
		respondError(c, 401, "please authenticate")
		return
	}

	var req model.CreateTaskReq
	if err := c.BindAndValidate(&req); err != nil {
		respondError(c, 400, "invalid request body")
		return
	}

	task := &taskmodel.Task{
		Description: req.Description,
		Completed:   req.Completed,
		OwnerID:     user.ID,
	}
	task.Normalize()
	if err := task.Validate(); err != nil {
		respondError(c, 400, err.Error())
		return
	}

	if err := h.tasks.Create(ctx, task); err != nil {
		respondServiceError(ctx, c, err)
		return
	}
	c.JSON(201, task)
}

// List 列出调用者自己的任务，支持completed过滤、sortBy排序与limit/skip分页
func (h *TaskHandler) List(ctx context.Context, c *app.RequestContext) {
	user, _ := middleware.GetUser(c)
	if user == nil {
		respondError(c, 401, "please authenticate")
		return
	}

	query := dao.ListQuery{Limit: -1, Skip: -1}

	if v := c.Query("completed"); v != "" {
		completed := v == "true"
		query.Completed = &completed
	}

	if v := c.Query("sortBy"); v != "" {
		field, direction, _ := strings.Cut(v, ":")
		if column, ok := sortColumns[field]; ok {
			query.SortColumn = column
			query.Descending = direction == "desc"
		}
	}

	// 非数字的limit/skip按未提供处理（即不限制）
	if n, err := strconv.Atoi(c.Query("limit")); err == nil {
		query.Limit = n
	}
	if n, err := strconv.Atoi(c.Query("skip")); err == nil {
		query.Skip = n
	}

	tasks, err := h.tasks.List(ctx, user.ID, query)
	if err != nil {
		respondServiceError(ctx, c, err)
		return
	}
	c.JSON(200, tasks)
}

// GetByID 按id读取调用者自己的任务
func (h *TaskHandler) GetByID(ctx context.Context, c *app.RequestContext) {
	user, _ := middleware.GetUser(c)
	if user == nil {
		respondError(c, 401, "please authenticate")
		return
	}

	id := c.Param("id")
	if !objectid.Valid(id) {
		respondError(c, 400, "id must be 24 hex characters")
		return
	}

	task, err := h.tasks.FindOne(ctx, id, user.ID)
	if err != nil {
		if commonerrors.HTTPStatus(err) == 404 {
			respondError(c, 404, "task not found")
			return
		}
		respondServiceError(ctx, c, err)
		return
	}
	c.JSON(200, task)
}

// Update 白名单字段的任务更新
func (h *TaskHandler) Update(ctx context.Context, c *app.RequestContext) {
	user, _ := middleware.GetUser(c)
	if user == nil {
		respondError(c, 401, "please authenticate")
		return
	}

	id := c.Param("id")
	if !objectid.Valid(id) {
		respondError(c, 400, "id must be 24 hex characters")
		return
	}

	fields, err := model.DecodeAllowed(c.Request.Body(), allowedTaskUpdates...)
	if err != nil {
		respondError(c, 400, err.Error())
		return
	}

	task, err := h.tasks.FindOne(ctx, id, user.ID)
	if err != nil {
		if commonerrors.HTTPStatus(err) == 404 {
			respondError(c, 404, "task not found")
			return
		}
		respondServiceError(ctx, c, err)
		return
	}

	if raw, ok := fields["description"]; ok {
		if err := json.Unmarshal(raw, &task.Description); err != nil {
			respondError(c, 400, "description must be a string")
			return
		}
	}
	if raw, ok := fields["completed"]; ok {
		if err := json.Unmarshal(raw, &task.Completed); err != nil {
			respondError(c, 400, "completed must be a boolean")
			return
		}
	}

	task.Normalize()
	if err := task.Validate(); err != nil {
		respondError(c, 400, err.Error())
		return
	}

	if err := h.tasks.Save(ctx, task); err != nil {
		// 任务在查询与写入之间被并发删除时按未找到处理
		if commonerrors.HTTPStatus(err) == 404 {
			respondError(c, 404, "task not found")
			return
		}
		respondError(c, 400, "unable to save task")
		return
	}
	c.JSON(200, task)
}

// Delete 原子化的查找并删除，按id+owner过滤
func (h *TaskHandler) Delete(ctx context.Context, c *app.RequestContext) {
	user, _ := middleware.GetUser(c)
	if user == nil {
		respondError(c, 401, "please authenticate")
		return
	}

	id := c.Param("id")
	if !objectid.Valid(id) {
		respondError(c, 400, "id must be 24 hex characters")
		return
	}

	task, err := h.tasks.FindOneAndDelete(ctx, id, user.ID)
	if err != nil {
		if commonerrors.HTTPStatus(err) == 404 {
			respondError(c, 404, "task not found")
			return
		}
		respondServiceError(ctx, c, err)
		return
	}
	c.JSON(200, task)
}
