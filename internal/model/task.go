package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskStatus represents the lifecycle status of a task.
type TaskStatus string

const (
	TaskStatusPending  TaskStatus = "pending"
	TaskStatusFinished TaskStatus = "finished"
)

// Task represents a unit of work owned by exactly one user. Ownership is set
// at creation and never changes. Deletes are permanent; there is no soft
// delete on tasks.
type Task struct {
	ID        uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	Title     string     `json:"title" gorm:"size:255;not null"`
	Priority  int        `json:"priority" gorm:"not null;index"`
	Status    TaskStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
	UserID    uuid.UUID  `json:"user_id" gorm:"type:char(36);not null;index"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	// Relations
	User User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate sets UUID before creating the record.
func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
