package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"workhub/internal/models/db_models"
)

type ITaskRepository interface {
	CreateTask(ctx context.Context, task *db_models.Task) error
	GetTask(ctx context.Context, orgID, taskID uuid.UUID) (*db_models.Task, error)
	ListTasks(ctx context.Context, orgID uuid.UUID, status string, page, pageSize int) ([]db_models.Task, error)
	UpdateTask(ctx context.Context, task *db_models.Task) error
	DeleteTask(ctx context.Context, orgID, taskID uuid.UUID) error
	CountTasks(ctx context.Context, orgID uuid.UUID) (int64, error)
}

type taskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) ITaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) CreateTask(ctx context.Context, task *db_models.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *taskRepository) GetTask(ctx context.Context, orgID, taskID uuid.UUID) (*db_models.Task, error) {
	var task db_models.Task
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND id = ?", orgID, taskID).
		First(&task).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &task, nil
}

func (r *taskRepository) ListTasks(ctx context.Context, orgID uuid.UUID, status string, page, pageSize int) ([]db_models.Task, error) {
	query := r.db.WithContext(ctx).Where("organization_id = ?", orgID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var tasks []db_models.Task
	err := query.
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Order("created_at DESC").
		Find(&tasks).Error
	return tasks, err
}

func (r *taskRepository) UpdateTask(ctx context.Context, task *db_models.Task) error {
	return r.db.WithContext(ctx).Save(task).Error
}

func (r *taskRepository) DeleteTask(ctx context.Context, orgID, taskID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("organization_id = ? AND id = ?", orgID, taskID).
		Delete(&db_models.Task{}).Error
}

func (r *taskRepository) CountTasks(ctx context.Context, orgID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db_models.Task{}).
		Where("organization_id = ?", orgID).
		Count(&count).Error
	return count, err
}
