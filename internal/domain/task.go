package domain

import (
	"context"
	"time"
)

type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

// Rank 排序权重：CRITICAL > HIGH > MEDIUM > LOW，未知值为 -1
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 0
	case PriorityMedium:
		return 1
	case PriorityHigh:
		return 2
	case PriorityCritical:
		return 3
	}
	return -1
}

func (p Priority) Valid() bool { return p.Rank() >= 0 }

type Status string

const (
	StatusStandby    Status = "STANDBY"
	StatusInProgress Status = "IN_PROGRESS"
	StatusExecuted   Status = "EXECUTED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusStandby, StatusInProgress, StatusExecuted:
		return true
	}
	return false
}

// Next 环形推进：STANDBY -> IN_PROGRESS -> EXECUTED -> STANDBY
// 服务端不校验流转顺序，仅供客户端 advance 使用
func (s Status) Next() Status {
	switch s {
	case StatusStandby:
		return StatusInProgress
	case StatusInProgress:
		return StatusExecuted
	default:
		return StatusStandby
	}
}

// Task 即产品里的 "operation"
type Task struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	OwnerID     string     `gorm:"size:36;not null;index" json:"ownerId"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description *string    `gorm:"type:text" json:"description"`
	Priority    Priority   `gorm:"size:16;not null;default:LOW;index" json:"priority"`
	Status      Status     `gorm:"size:16;not null;default:STANDBY;index" json:"status"`
	DueDate     *time.Time `json:"dueDate"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Task) TableName() string { return "tasks" }

// TaskFilter 零值表示不过滤
type TaskFilter struct {
	Status   Status
	Priority Priority
}

type TaskRepository interface {
	Create(ctx context.Context, t *Task) error
	// FindOwned returns (nil, nil) when the task is missing or belongs to someone else.
	FindOwned(ctx context.Context, ownerID, id string) (*Task, error)
	ListByOwner(ctx context.Context, ownerID string, f TaskFilter) ([]Task, error)
	Update(ctx context.Context, t *Task) error
	// DeleteOwned reports whether a row was removed.
	DeleteOwned(ctx context.Context, ownerID, id string) (bool, error)
}
