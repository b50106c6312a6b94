package model

import (
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"

	commonerrors "task-manager/pkg/common/errors"
)

type User struct {
	ID           string      `gorm:"type:char(24);primaryKey" json:"_id"`
	Name         string      `gorm:"type:varchar(100);not null" json:"name"`
	Email        string      `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string      `gorm:"type:varchar(255);not null" json:"-"`
	Age          int         `gorm:"default:0;not null" json:"age"`
	Avatar       []byte      `gorm:"type:longblob" json:"-"` // 仅通过专用接口读取
	AuthTokens   []AuthToken `gorm:"foreignKey:UserID" json:"-"`
	CreatedAt    time.Time   `gorm:"index;autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time   `gorm:"autoUpdateTime" json:"updatedAt"`
}

// AuthToken 单条活跃会话令牌，独立成表便于单独吊销
type AuthToken struct {
	ID     int64  `gorm:"primaryKey;autoIncrement"`
	UserID string `gorm:"type:char(24);index;not null"`
	Token  string `gorm:"type:text;not null"`
}

// TableName 定义映射表名
func (User) TableName() string {
	return "users"
}

func (AuthToken) TableName() string {
	return "auth_tokens"
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&User{}, &AuthToken{})
}

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Normalize 入库前的字段规范化：姓名去空白，邮箱去空白并转小写
func (u *User) Normalize() {
	u.Name = strings.TrimSpace(u.Name)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
}

// Validate 校验除密码外的全部字段
func (u *User) Validate() error {
	if u.Name == "" {
		return commonerrors.Validationf("name is required")
	}
	if !emailRegex.MatchString(u.Email) {
		return commonerrors.Validationf("email is invalid")
	}
	if u.Age < 0 {
		return commonerrors.Validationf("age must be a positive number")
	}
	return nil
}

// ValidatePassword 校验明文密码规则：至少7位且不得包含"password"
func ValidatePassword(plain string) error {
	if len(plain) < 7 {
		return commonerrors.Validationf("password must be at least 7 characters")
	}
	if strings.Contains(strings.ToLower(plain), "password") {
		return commonerrors.Validationf(`password cannot contain "password"`)
	}
	return nil
}
