package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskmanager/internal/model"
)

// TaskFilter narrows an owner's task listing. Nil fields are not filtered on.
type TaskFilter struct {
	Status   *model.TaskStatus
	Priority *model.TaskPriority
	Skip     int
	Limit    int
}

type TaskRepository struct {
	db *gorm.DB
}

type TaskRepositoryInterface interface {
	Create(ctx context.Context, task *model.Task) error
	GetByIDForOwner(ctx context.Context, id, ownerID uuid.UUID) (*model.Task, error)
	List(ctx context.Context, ownerID uuid.UUID, filter TaskFilter) ([]model.Task, error)
	Count(ctx context.Context, ownerID uuid.UUID, filter TaskFilter) (int64, error)
	Update(ctx context.Context, task *model.Task) error
	DeleteForOwner(ctx context.Context, id, ownerID uuid.UUID) error
}

var _ TaskRepositoryInterface = (*TaskRepository)(nil)

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create adds a new task to the database
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// GetByIDForOwner retrieves a task owned by ownerID. A task owned by anyone
// else is reported exactly like a missing one.
func (r *TaskRepository) GetByIDForOwner(ctx context.Context, id, ownerID uuid.UUID) (*model.Task, error) {
	var task model.Task
	result := r.db.WithContext(ctx).First(&task, "id = ? AND owner_id = ?", id, ownerID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, result.Error
	}
	return &task, nil
}

// List returns one page of the owner's tasks in insertion order
func (r *TaskRepository) List(ctx context.Context, ownerID uuid.UUID, filter TaskFilter) ([]model.Task, error) {
	var tasks []model.Task
	result := r.filtered(ctx, ownerID, filter).
		Order("created_at ASC, id ASC").
		Offset(filter.Skip).
		Limit(filter.Limit).
		Find(&tasks)
	if result.Error != nil {
		return nil, result.Error
	}
	return tasks, nil
}

// Count returns how many of the owner's tasks match the filter, ignoring pagination
func (r *TaskRepository) Count(ctx context.Context, ownerID uuid.UUID, filter TaskFilter) (int64, error) {
	var count int64
	err := r.filtered(ctx, ownerID, filter).Count(&count).Error
	return count, err
}

func (r *TaskRepository) filtered(ctx context.Context, ownerID uuid.UUID, filter TaskFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&model.Task{}).Where("owner_id = ?", ownerID)
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	if filter.Priority != nil {
		query = query.Where("priority = ?", string(*filter.Priority))
	}
	return query
}

// Update writes every mutable column of an existing task. Concurrent writers
// to the same task follow last-write-wins.
func (r *TaskRepository) Update(ctx context.Context, task *model.Task) error {
	result := r.db.WithContext(ctx).Model(task).
		Where("owner_id = ?", task.OwnerID).
		Select("*").Omit("id", "owner_id", "created_at").
		Updates(task)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// DeleteForOwner permanently removes a task owned by ownerID
func (r *TaskRepository) DeleteForOwner(ctx context.Context, id, ownerID uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.Task{}, "id = ? AND owner_id = ?", id, ownerID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}
