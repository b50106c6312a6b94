package dao

import (
	"context"

	"task-manager/pkg/core/user/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Save(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id string) error // 级联删除任务与令牌

	AppendAuthToken(ctx context.Context, userID, token string) error
	RemoveAuthToken(ctx context.Context, userID, token string) error
	RemoveAllAuthTokens(ctx context.Context, userID string) error
	HasAuthToken(ctx context.Context, userID, token string) (bool, error)

	GetAvatar(ctx context.Context, userID string) ([]byte, error)
	SetAvatar(ctx context.Context, userID string, data []byte) error
}
