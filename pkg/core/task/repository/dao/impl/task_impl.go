package dao

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	commonerrors "task-manager/pkg/common/errors"
	"task-manager/pkg/common/objectid"
	"task-manager/pkg/core/task/model"
	"task-manager/pkg/core/task/repository/dao"
)

type GormTaskRepository struct {
	db *gorm.DB
}

func NewGormTaskRepository(db *gorm.DB) dao.TaskRepository {
	return &GormTaskRepository{db: db}
}

func (r *GormTaskRepository) Create(ctx context.Context, task *model.Task) error {
	if task.ID == "" {
		task.ID = objectid.New()
	}
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("%w: task creation failed", commonerrors.WrapGormError(err))
	}
	return nil
}

// FindOne scopes the lookup by both id and owner in a single filter.
func (r *GormTaskRepository) FindOne(ctx context.Context, id, ownerID string) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&task).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, commonerrors.ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("%w: task query failed", commonerrors.WrapGormError(err))
	default:
		return &task, nil
	}
}

func (r *GormTaskRepository) Save(ctx context.Context, task *model.Task) error {
	result := r.db.WithContext(ctx).
		Model(&model.Task{}).
		Where("id = ? AND owner_id = ?", task.ID, task.OwnerID).
		Updates(map[string]interface{}{
			"description": task.Description,
			"completed":   task.Completed,
		})

	if result.Error != nil {
		return fmt.Errorf("%w: task update failed", commonerrors.WrapGormError(result.Error))
	}
	// 任务可能在查询与写入之间被并发删除；MySQL对值未变化的
	// 写入同样报告零行，需要再确认存在性
	if result.RowsAffected == 0 {
		var count int64
		err := r.db.WithContext(ctx).
			Model(&model.Task{}).
			Where("id = ? AND owner_id = ?", task.ID, task.OwnerID).
			Count(&count).Error
		if err != nil {
			return fmt.Errorf("%w: task update failed", commonerrors.WrapGormError(err))
		}
		if count == 0 {
			return commonerrors.ErrNotFound
		}
	}
	return nil
}

// FindOneAndDelete atomically removes the task matched by id+owner and
// returns the deleted record.
func (r *GormTaskRepository) FindOneAndDelete(ctx context.Context, id, ownerID string) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND owner_id = ?", id, ownerID).
			First(&task).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return commonerrors.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("%w: task query failed", commonerrors.WrapGormError(err))
		}
		if err := tx.Delete(&task).Error; err != nil {
			return fmt.Errorf("%w: task delete failed", commonerrors.WrapGormError(err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *GormTaskRepository) List(ctx context.Context, ownerID string, q dao.ListQuery) ([]model.Task, error) {
	query := r.db.WithContext(ctx).
		Model(&model.Task{}).
		Where("owner_id = ?", ownerID)

	if q.Completed != nil {
		query = query.Where("completed = ?", *q.Completed)
	}
	if q.SortColumn != "" {
		query = query.Order(clause.OrderByColumn{
			Column: clause.Column{Name: q.SortColumn},
			Desc:   q.Descending,
		})
	}
	// limit为0或负值表示不限制
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	} else if q.Skip > 0 {
		// MySQL has no standalone OFFSET, so an explicit skip needs a limit
		query = query.Limit(math.MaxInt32)
	}
	if q.Skip > 0 {
		query = query.Offset(q.Skip)
	}

	tasks := []model.Task{}
	if err := query.Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("%w: task list failed", commonerrors.WrapGormError(err))
	}
	return tasks, nil
}

func (r *GormTaskRepository) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Task{}).
		Where("owner_id = ?", ownerID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("%w: task count failed", commonerrors.WrapGormError(err))
	}
	return count, nil
}
