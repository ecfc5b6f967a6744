package service

import (
	"context"
	"strings"
	"time"

	"neontask/internal/domain"
	"neontask/pkg/utils"
)

const (
	MsgListFailed   = "SYSTEM ERROR: FAILED TO RETRIEVE OPERATIONS"
	MsgCreateFailed = "SYSTEM ERROR: OPERATION CREATION FAILED"
	MsgUpdateFailed = "SYSTEM ERROR: OPERATION UPDATE FAILED"
	MsgDeleteFailed = "SYSTEM ERROR: OPERATION TERMINATION FAILED"

	maxTitleLen = 255
)

type ListFilter struct {
	Status   string
	Priority string
}

type CreateTaskInput struct {
	Title       string
	Description *string
	Priority    string
	DueDate     *string
}

// TaskPatch nil 表示未提供。
// title/status/priority 为空串时视为未提供；description/dueDate 为空串表示清空。
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	DueDate     *string
}

type TaskService struct {
	tasks domain.TaskRepository
}

func NewTaskService(tasks domain.TaskRepository) *TaskService {
	return &TaskService{tasks: tasks}
}

func (s *TaskService) List(ctx context.Context, ownerID string, f ListFilter) ([]domain.Task, error) {
	var filter domain.TaskFilter
	if f.Status != "" {
		st := domain.Status(f.Status)
		if !st.Valid() {
			return nil, domain.Validation("VALIDATION FAILED: UNKNOWN STATUS")
		}
		filter.Status = st
	}
	if f.Priority != "" {
		p := domain.Priority(f.Priority)
		if !p.Valid() {
			return nil, domain.Validation("VALIDATION FAILED: UNKNOWN PRIORITY")
		}
		filter.Priority = p
	}
	tasks, err := s.tasks.ListByOwner(ctx, ownerID, filter)
	if err != nil {
		return nil, domain.Internal(MsgListFailed, err)
	}
	return tasks, nil
}

func (s *TaskService) Create(ctx context.Context, ownerID string, in CreateTaskInput) (*domain.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, domain.Validation("VALIDATION FAILED: TITLE REQUIRED")
	}
	if len(title) > maxTitleLen {
		return nil, domain.Validation("VALIDATION FAILED: TITLE TOO LONG")
	}

	priority := domain.PriorityLow
	if in.Priority != "" {
		priority = domain.Priority(in.Priority)
		if !priority.Valid() {
			return nil, domain.Validation("VALIDATION FAILED: UNKNOWN PRIORITY")
		}
	}

	t := &domain.Task{
		ID:       utils.NewID(),
		OwnerID:  ownerID,
		Title:    title,
		Priority: priority,
		Status:   domain.StatusStandby,
	}
	if in.Description != nil && *in.Description != "" {
		d := *in.Description
		t.Description = &d
	}
	if in.DueDate != nil && *in.DueDate != "" {
		due, err := ParseDueDate(*in.DueDate)
		if err != nil {
			return nil, err
		}
		t.DueDate = &due
	}

	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, domain.Internal(MsgCreateFailed, err)
	}
	return t, nil
}

func (s *TaskService) Update(ctx context.Context, ownerID, taskID string, p TaskPatch) (*domain.Task, error) {
	// 先确认归属，再校验 patch：不存在和不属于自己对调用方不可区分
	t, err := s.tasks.FindOwned(ctx, ownerID, taskID)
	if err != nil {
		return nil, domain.Internal(MsgUpdateFailed, err)
	}
	if t == nil {
		return nil, domain.NotFound(domain.MsgTaskNotFound)
	}

	if p.Title != nil {
		if v := strings.TrimSpace(*p.Title); v != "" {
			if len(v) > maxTitleLen {
				return nil, domain.Validation("VALIDATION FAILED: TITLE TOO LONG")
			}
			t.Title = v
		}
	}
	if p.Description != nil {
		if *p.Description == "" {
			t.Description = nil
		} else {
			d := *p.Description
			t.Description = &d
		}
	}
	if p.Status != nil && *p.Status != "" {
		st := domain.Status(*p.Status)
		if !st.Valid() {
			return nil, domain.Validation("VALIDATION FAILED: UNKNOWN STATUS")
		}
		t.Status = st
	}
	if p.Priority != nil && *p.Priority != "" {
		pr := domain.Priority(*p.Priority)
		if !pr.Valid() {
			return nil, domain.Validation("VALIDATION FAILED: UNKNOWN PRIORITY")
		}
		t.Priority = pr
	}
	if p.DueDate != nil {
		if *p.DueDate == "" {
			t.DueDate = nil
		} else {
			due, err := ParseDueDate(*p.DueDate)
			if err != nil {
				return nil, err
			}
			t.DueDate = &due
		}
	}

	if err := s.tasks.Update(ctx, t); err != nil {
		return nil, domain.Internal(MsgUpdateFailed, err)
	}
	return t, nil
}

func (s *TaskService) Delete(ctx context.Context, ownerID, taskID string) (string, error) {
	ok, err := s.tasks.DeleteOwned(ctx, ownerID, taskID)
	if err != nil {
		return "", domain.Internal(MsgDeleteFailed, err)
	}
	if !ok {
		return "", domain.NotFound(domain.MsgTaskNotFound)
	}
	return taskID, nil
}

var dueDateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

// ParseDueDate 接受 ISO-8601：RFC 3339（可带小数秒）、无时区的日期时间或纯日期，无时区按 UTC
func ParseDueDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, domain.Validation("VALIDATION FAILED: INVALID DUE DATE")
}
