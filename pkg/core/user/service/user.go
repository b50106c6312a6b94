package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"task-manager/pkg/common/config"
	commonerrors "task-manager/pkg/common/errors"
	"task-manager/pkg/core/user/model"
	"task-manager/pkg/core/user/repository/dao"
)

// Service 身份域服务：注册/凭证校验/会话令牌/资料维护
// 密码只以bcrypt哈希落库，明文不记日志不持久化
type Service struct {
	repo      dao.UserRepository
	jwtSecret []byte
	issuer    string
}

func NewService(repo dao.UserRepository, cfg *config.JWTAuthConfig) *Service {
	return &Service{
		repo:      repo,
		jwtSecret: []byte(cfg.Secret),
		issuer:    cfg.Issuer,
	}
}

// ProfileUpdate 资料变更集，nil表示该字段不变
type ProfileUpdate struct {
	Name     *string
	Email    *string
	Password *string
	Age      *int
}

// Register 创建用户并签发首个会话令牌
func (s *Service) Register(ctx context.Context, name, email, password string, age int) (*model.User, string, error) {
	user := &model.User{
		Name:  name,
		Email: email,
		Age:   age,
	}
	user.Normalize()

	if err := user.Validate(); err != nil {
		return nil, "", err
	}
	if err := model.ValidatePassword(password); err != nil {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("password hashing failed: %w", err)
	}
	user.PasswordHash = string(hash)

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.GenerateAuthToken(ctx, user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// FindByCredentials 按邮箱查找并做恒定代价的哈希比对
// 用户不存在与密码错误返回同一错误，不泄露差异
func (s *Service) FindByCredentials(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, commonerrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: unable to login", commonerrors.ErrAuthentication)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("%w: unable to login", commonerrors.ErrAuthentication)
	}
	return user, nil
}

// Login 校验凭证并追加新令牌，已有会话保持有效
func (s *Service) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.FindByCredentials(ctx, email, password)
	if err != nil {
		return nil, "", err
	}
	token, err := s.GenerateAuthToken(ctx, user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// GenerateAuthToken 签发令牌并登记到活跃令牌表
func (s *Service) GenerateAuthToken(ctx context.Context, user *model.User) (string, error) {
	token, err := s.mintToken(user.ID)
	if err != nil {
		return "", err
	}
	if err := s.repo.AppendAuthToken(ctx, user.ID, token); err != nil {
		return "", err
	}
	return token, nil
}

// Authenticate 解析令牌，加载用户，并核对该令牌仍在活跃列表中
// 任一失败均视为认证失败（令牌可能已被登出吊销）
func (s *Service) Authenticate(ctx context.Context, token string) (*model.User, error) {
	userID, err := s.parseToken(token)
	if err != nil {
		return nil, commonerrors.ErrAuthentication
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, commonerrors.ErrAuthentication
	}

	active, err := s.repo.HasAuthToken(ctx, user.ID, token)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, commonerrors.ErrAuthentication
	}
	return user, nil
}

// Logout 只吊销本次请求使用的令牌
func (s *Service) Logout(ctx context.Context, user *model.User, token string) error {
	return s.repo.RemoveAuthToken(ctx, user.ID, token)
}

// LogoutAll 吊销该用户全部会话
func (s *Service) LogoutAll(ctx context.Context, user *model.User) error {
	return s.repo.RemoveAllAuthTokens(ctx, user.ID)
}

// UpdateProfile 应用白名单字段变更；密码变更重新校验并重新哈希
func (s *Service) UpdateProfile(ctx context.Context, user *model.User, upd ProfileUpdate) error {
	if upd.Name != nil {
		user.Name = *upd.Name
	}
	if upd.Email != nil {
		user.Email = *upd.Email
	}
	if upd.Age != nil {
		user.Age = *upd.Age
	}
	user.Normalize()

	if err := user.Validate(); err != nil {
		return err
	}

	if upd.Password != nil {
		if err := model.ValidatePassword(*upd.Password); err != nil {
			return err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*upd.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("password hashing failed: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	return s.repo.Save(ctx, user)
}

// DeleteAccount 删除用户并级联删除其全部任务
func (s *Service) DeleteAccount(ctx context.Context, user *model.User) error {
	return s.repo.Delete(ctx, user.ID)
}

// SetAvatar 存储规范化后的头像
func (s *Service) SetAvatar(ctx context.Context, user *model.User, data []byte) error {
	return s.repo.SetAvatar(ctx, user.ID, data)
}

// ClearAvatar 清除头像
func (s *Service) ClearAvatar(ctx context.Context, user *model.User) error {
	return s.repo.SetAvatar(ctx, user.ID, nil)
}

// GetAvatar 按用户id读取头像，未认证访问也允许
func (s *Service) GetAvatar(ctx context.Context, userID string) ([]byte, error) {
	return s.repo.GetAvatar(ctx, userID)
}

func normalizeEmail(email string) string {
	u := model.User{Email: email}
	u.Normalize()
	return u.Email
}
