package dao

import (
	"context"

	"task-manager/pkg/core/task/model"
)

// ListQuery 任务列表的过滤/排序/分页参数
// Limit非正值表示不限制，Skip非正值表示不跳过
type ListQuery struct {
	Completed  *bool
	SortColumn string // 空串表示不排序
	Descending bool
	Limit      int
	Skip       int
}

type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) error
	// 按id+owner单一条件查询，避免泄露他人任务的存在性
	FindOne(ctx context.Context, id, ownerID string) (*model.Task, error)
	Save(ctx context.Context, task *model.Task) error
	FindOneAndDelete(ctx context.Context, id, ownerID string) (*model.Task, error)
	List(ctx context.Context, ownerID string, q ListQuery) ([]model.Task, error)
	CountByOwner(ctx context.Context, ownerID string) (int64, error)
}
