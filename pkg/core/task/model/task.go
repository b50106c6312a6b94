package model

import (
	"strings"
	"time"

	"gorm.io/gorm"

	commonerrors "task-manager/pkg/common/errors"
)

type Task struct {
	ID          string    `gorm:"type:char(24);primaryKey" json:"_id"`
	Description string    `gorm:"type:varchar(500);not null" json:"description"`
	Completed   bool      `gorm:"default:false;index;not null" json:"completed"`
	OwnerID     string    `gorm:"type:char(24);index;not null" json:"owner"`
	CreatedAt   time.Time `gorm:"index;autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName 定义映射表名
func (Task) TableName() string {
	return "tasks"
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Task{})
}

// Normalize 入库前的字段规范化
func (t *Task) Normalize() {
	t.Description = strings.TrimSpace(t.Description)
}

func (t *Task) Validate() error {
	if t.Description == "" {
		return commonerrors.Validationf("description is required")
	}
	if t.OwnerID == "" {
		return commonerrors.Validationf("owner is required")
	}
	return nil
}
