package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neontask/internal/domain"
	"neontask/internal/repo"
	"neontask/internal/testutil"
)

func ptr(s string) *string { return &s }

func newTaskService(t *testing.T) *TaskService {
	t.Helper()
	return NewTaskService(repo.NewTaskRepo(testutil.NewDB(t)))
}

func TestCreateDefaults(t *testing.T) {
	svc := newTaskService(t)
	task, err := svc.Create(context.Background(), "alice", CreateTaskInput{Title: "  breach firewall  "})
	require.NoError(t, err)

	assert.Equal(t, "breach firewall", task.Title)
	assert.Equal(t, domain.PriorityLow, task.Priority)
	assert.Equal(t, domain.StatusStandby, task.Status)
	assert.Equal(t, "alice", task.OwnerID)
	assert.Nil(t, task.Description)
	assert.Nil(t, task.DueDate)
	assert.NotEmpty(t, task.ID)
}

func TestCreateValidation(t *testing.T) {
	svc := newTaskService(t)
	tests := []struct {
		name string
		in   CreateTaskInput
	}{
		{"empty title", CreateTaskInput{Title: ""}},
		{"blank title", CreateTaskInput{Title: "   "}},
		{"bad priority", CreateTaskInput{Title: "x", Priority: "URGENT"}},
		{"bad due date", CreateTaskInput{Title: "x", DueDate: ptr("tomorrow")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), "alice", tt.in)
			assert.True(t, domain.IsKind(err, domain.KindValidation), "got %v", err)
		})
	}
}

func TestCreateThenListIsOwnerScoped(t *testing.T) {
	ctx := context.Background()
	svc := newTaskService(t)
	created, err := svc.Create(ctx, "alice", CreateTaskInput{Title: "alice op"})
	require.NoError(t, err)

	mine, err := svc.List(ctx, "alice", ListFilter{})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, created.ID, mine[0].ID)

	theirs, err := svc.List(ctx, "bob", ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, theirs)
}

func TestListOrderAndFilters(t *testing.T) {
	ctx := context.Background()
	svc := newTaskService(t)
	for _, p := range []string{"LOW", "CRITICAL", "HIGH"} {
		_, err := svc.Create(ctx, "alice", CreateTaskInput{Title: p + " op", Priority: p})
		require.NoError(t, err)
	}

	all, err := svc.List(ctx, "alice", ListFilter{})
	require.NoError(t, err)
	got := make([]domain.Priority, 0, len(all))
	for _, task := range all {
		got = append(got, task.Priority)
	}
	assert.Equal(t, []domain.Priority{domain.PriorityCritical, domain.PriorityHigh, domain.PriorityLow}, got)

	_, err = svc.Update(ctx, "alice", all[1].ID, TaskPatch{Status: ptr("IN_PROGRESS")})
	require.NoError(t, err)

	active, err := svc.List(ctx, "alice", ListFilter{Status: "IN_PROGRESS"})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, all[1].ID, active[0].ID)

	critical, err := svc.List(ctx, "alice", ListFilter{Priority: "CRITICAL"})
	require.NoError(t, err)
	require.Len(t, critical, 1)

	_, err = svc.List(ctx, "alice", ListFilter{Status: "DONE"})
	assert.True(t, domain.IsKind(err, domain.KindValidation))
	_, err = svc.List(ctx, "alice", ListFilter{Priority: "urgent"})
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}

func TestUpdatePatchSemantics(t *testing.T) {
	ctx := context.Background()
	svc := newTaskService(t)
	task, err := svc.Create(ctx, "alice", CreateTaskInput{
		Title: "decrypt", Description: ptr("grid 7"), Priority: "MEDIUM", DueDate: ptr("2025-03-01"),
	})
	require.NoError(t, err)

	// 空标题 / 空状态视为未提供
	updated, err := svc.Update(ctx, "alice", task.ID, TaskPatch{Title: ptr(""), Status: ptr(""), Priority: ptr("")})
	require.NoError(t, err)
	assert.Equal(t, "decrypt", updated.Title)
	assert.Equal(t, domain.StatusStandby, updated.Status)
	assert.Equal(t, domain.PriorityMedium, updated.Priority)
	require.NotNil(t, updated.Description)

	// 只改提供的字段
	updated, err = svc.Update(ctx, "alice", task.ID, TaskPatch{Status: ptr("EXECUTED")})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusExecuted, updated.Status)
	assert.Equal(t, "grid 7", *updated.Description)

	// 任意状态都可以直接设置，不校验流转顺序
	updated, err = svc.Update(ctx, "alice", task.ID, TaskPatch{Status: ptr("IN_PROGRESS")})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, updated.Status)

	// description / dueDate 空串清空
	updated, err = svc.Update(ctx, "alice", task.ID, TaskPatch{Description: ptr(""), DueDate: ptr("")})
	require.NoError(t, err)
	assert.Nil(t, updated.Description)
	assert.Nil(t, updated.DueDate)

	list, err := svc.List(ctx, "alice", ListFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Nil(t, list[0].Description)
	assert.Nil(t, list[0].DueDate)

	_, err = svc.Update(ctx, "alice", task.ID, TaskPatch{Status: ptr("DONE")})
	assert.True(t, domain.IsKind(err, domain.KindValidation))
	_, err = svc.Update(ctx, "alice", task.ID, TaskPatch{DueDate: ptr("31/12/2025")})
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}

func TestUpdateAndDeleteOwnership(t *testing.T) {
	ctx := context.Background()
	svc := newTaskService(t)
	task, err := svc.Create(ctx, "alice", CreateTaskInput{Title: "private"})
	require.NoError(t, err)

	_, foreign := svc.Update(ctx, "bob", task.ID, TaskPatch{Title: ptr("hijacked")})
	_, missing := svc.Update(ctx, "bob", "does-not-exist", TaskPatch{Title: ptr("hijacked")})
	require.Error(t, foreign)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(foreign))
	assert.Equal(t, foreign.Error(), missing.Error())
	assert.Equal(t, domain.KindOf(foreign), domain.KindOf(missing))

	// 非 owner 即使 patch 非法也只会得到 NotFound
	_, err = svc.Update(ctx, "bob", task.ID, TaskPatch{Status: ptr("BOGUS")})
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))

	_, err = svc.Delete(ctx, "bob", task.ID)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))

	id, err := svc.Delete(ctx, "alice", task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, id)

	list, err := svc.List(ctx, "alice", ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = svc.Delete(ctx, "alice", task.ID)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestDueDateRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := newTaskService(t)
	_, err := svc.Create(ctx, "alice", CreateTaskInput{Title: "deadline", DueDate: ptr("2025-01-01T00:00:00.000Z")})
	require.NoError(t, err)

	list, err := svc.List(ctx, "alice", ListFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].DueDate)
	assert.True(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Equal(*list[0].DueDate))
}

func TestParseDueDate(t *testing.T) {
	want := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2025-01-01T00:00:00.000Z", "2025-01-01T02:00:00+02:00", "2025-01-01", "2025-01-01T00:00:00"} {
		got, err := ParseDueDate(in)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), in)
		assert.Equal(t, time.UTC, got.Location())
	}
	_, err := ParseDueDate("01/01/2025")
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}

type failingTasks struct{ err error }

func (f failingTasks) Create(context.Context, *domain.Task) error { return f.err }
func (f failingTasks) FindOwned(context.Context, string, string) (*domain.Task, error) {
	return nil, f.err
}
func (f failingTasks) ListByOwner(context.Context, string, domain.TaskFilter) ([]domain.Task, error) {
	return nil, f.err
}
func (f failingTasks) Update(context.Context, *domain.Task) error { return f.err }
func (f failingTasks) DeleteOwned(context.Context, string, string) (bool, error) {
	return false, f.err
}

func TestStoreFailuresAreInternal(t *testing.T) {
	ctx := context.Background()
	cause := errors.New("disk on fire")
	svc := NewTaskService(failingTasks{err: cause})

	_, err := svc.List(ctx, "alice", ListFilter{})
	assert.EqualError(t, err, MsgListFailed+": disk on fire")
	assert.ErrorIs(t, err, cause)

	_, err = svc.Create(ctx, "alice", CreateTaskInput{Title: "x"})
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))

	_, err = svc.Update(ctx, "alice", "id", TaskPatch{})
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))

	_, err = svc.Delete(ctx, "alice", "id")
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))
}
