package dao

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	commonerrors "task-manager/pkg/common/errors"
	"task-manager/pkg/common/objectid"
	taskmodel "task-manager/pkg/core/task/model"
	"task-manager/pkg/core/user/model"
	"task-manager/pkg/core/user/repository/dao"
)

type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) dao.UserRepository {
	return &GormUserRepository{db: db}
}

// Create inserts a new user record, assigning an id when absent.
// Email uniqueness is enforced by the database index.
func (r *GormUserRepository) Create(ctx context.Context, user *model.User) error {
	if user.ID == "" {
		user.ID = objectid.New()
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if commonerrors.IsDuplicateError(commonerrors.WrapGormError(err)) {
			return fmt.Errorf("%w: email already in use", commonerrors.ErrDuplicateEntry)
		}
		return fmt.Errorf("%w: user creation failed", commonerrors.WrapGormError(err))
	}
	return nil
}

// FindByID loads a user without the avatar blob.
func (r *GormUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Omit("avatar").
		Where("id = ?", id).
		First(&user).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, commonerrors.ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("%w: user query failed", commonerrors.WrapGormError(err))
	default:
		return &user, nil
	}
}

// FindByEmail loads a user for credential checks, including the password hash.
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Omit("avatar").
		Where("email = ?", email).
		First(&user).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, commonerrors.ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("%w: user query failed", commonerrors.WrapGormError(err))
	default:
		return &user, nil
	}
}

// Save persists profile mutations. The avatar column is managed separately
// so a stale in-memory blob can never clobber it.
func (r *GormUserRepository) Save(ctx context.Context, user *model.User) error {
	result := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"name":          user.Name,
			"email":         user.Email,
			"password_hash": user.PasswordHash,
			"age":           user.Age,
		})

	if result.Error != nil {
		if commonerrors.IsDuplicateError(commonerrors.WrapGormError(result.Error)) {
			return fmt.Errorf("%w: email already in use", commonerrors.ErrDuplicateEntry)
		}
		return fmt.Errorf("%w: user update failed", commonerrors.WrapGormError(result.Error))
	}
	if result.RowsAffected == 0 {
		return commonerrors.ErrNotFound
	}
	return nil
}

// Delete removes the user together with all owned tasks and session
// tokens in one transaction.
func (r *GormUserRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("owner_id = ?", id).Delete(&taskmodel.Task{}).Error; err != nil {
			return fmt.Errorf("%w: cascade task delete failed", commonerrors.WrapGormError(err))
		}
		if err := tx.Where("user_id = ?", id).Delete(&model.AuthToken{}).Error; err != nil {
			return fmt.Errorf("%w: token delete failed", commonerrors.WrapGormError(err))
		}
		result := tx.Where("id = ?", id).Delete(&model.User{})
		if result.Error != nil {
			return fmt.Errorf("%w: user delete failed", commonerrors.WrapGormError(result.Error))
		}
		if result.RowsAffected == 0 {
			return commonerrors.ErrNotFound
		}
		return nil
	})
}

func (r *GormUserRepository) AppendAuthToken(ctx context.Context, userID, token string) error {
	record := model.AuthToken{UserID: userID, Token: token}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("%w: token append failed", commonerrors.WrapGormError(err))
	}
	return nil
}

// RemoveAuthToken revokes exactly one session token; other sessions of the
// same user stay valid.
func (r *GormUserRepository) RemoveAuthToken(ctx context.Context, userID, token string) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND token = ?", userID, token).
		Delete(&model.AuthToken{}).Error
	if err != nil {
		return fmt.Errorf("%w: token removal failed", commonerrors.WrapGormError(err))
	}
	return nil
}

func (r *GormUserRepository) RemoveAllAuthTokens(ctx context.Context, userID string) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.AuthToken{}).Error
	if err != nil {
		return fmt.Errorf("%w: token removal failed", commonerrors.WrapGormError(err))
	}
	return nil
}

func (r *GormUserRepository) HasAuthToken(ctx context.Context, userID, token string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.AuthToken{}).
		Where("user_id = ? AND token = ?", userID, token).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("%w: token lookup failed", commonerrors.WrapGormError(err))
	}
	return count > 0, nil
}

// GetAvatar returns the stored blob; ErrNotFound covers both a missing user
// and an empty avatar column.
func (r *GormUserRepository) GetAvatar(ctx context.Context, userID string) ([]byte, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Select("id", "avatar").
		Where("id = ?", userID).
		First(&user).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, commonerrors.ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("%w: avatar query failed", commonerrors.WrapGormError(err))
	}
	if len(user.Avatar) == 0 {
		return nil, commonerrors.ErrNotFound
	}
	return user.Avatar, nil
}

// SetAvatar stores a new blob; nil clears the column.
func (r *GormUserRepository) SetAvatar(ctx context.Context, userID string, data []byte) error {
	result := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", userID).
		Update("avatar", data)

	if result.Error != nil {
		return fmt.Errorf("%w: avatar update failed", commonerrors.WrapGormError(result.Error))
	}
	if result.RowsAffected == 0 {
		// MySQL reports zero affected rows for a no-op write, so confirm
		// the user actually exists before calling it a miss.
		var count int64
		if err := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
			return fmt.Errorf("%w: avatar update failed", commonerrors.WrapGormError(err))
		}
		if count == 0 {
			return commonerrors.ErrNotFound
		}
	}
	return nil
}
