package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"neontask/internal/domain"
)

// 枚举按字符串存储，排序不能直接用列值
const orderByPriority = "CASE priority WHEN 'CRITICAL' THEN 3 WHEN 'HIGH' THEN 2 WHEN 'MEDIUM' THEN 1 ELSE 0 END DESC"

type TaskRepo struct{ db *gorm.DB }

func NewTaskRepo(db *gorm.DB) *TaskRepo { return &TaskRepo{db: db} }

func (r *TaskRepo) Create(ctx context.Context, t *domain.Task) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *TaskRepo) FindOwned(ctx context.Context, ownerID, id string) (*domain.Task, error) {
	var t domain.Task
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TaskRepo) ListByOwner(ctx context.Context, ownerID string, f domain.TaskFilter) ([]domain.Task, error) {
	q := r.db.WithContext(ctx).Model(&domain.Task{}).Where("owner_id = ?", ownerID)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Priority != "" {
		q = q.Where("priority = ?", f.Priority)
	}
	tasks := make([]domain.Task, 0)
	err := q.Order(orderByPriority).Order("created_at DESC").Order("id").Find(&tasks).Error
	return tasks, err
}

// Update 整行保存（Save 会写入零值，nil 描述/截止时间会被清空）
func (r *TaskRepo) Update(ctx context.Context, t *domain.Task) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *TaskRepo) DeleteOwned(ctx context.Context, ownerID, id string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&domain.Task{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
