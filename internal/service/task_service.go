package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"taskmanager/internal/apperror"
	"taskmanager/internal/model"
	"taskmanager/internal/repository"
	"taskmanager/internal/validate"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100

	msgTaskNotFound = "Task not found"
	msgEmptyTitle   = "Title cannot be empty"
	msgBadSkip      = "skip must be greater than or equal to 0"
	msgBadLimit     = "limit must be between 1 and 100"
	msgBadStatus    = "Invalid task status"
	msgBadPriority  = "Invalid task priority"
)

type CreateTaskInput struct {
	Title       string
	Description *string
	Priority    model.TaskPriority
	DueDate     *time.Time
}

// UpdateTaskInput is a partial update. Nil fields are left unchanged.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *model.TaskStatus
	Priority    *model.TaskPriority
	DueDate     *time.Time
}

type ListTasksInput struct {
	Status   *model.TaskStatus
	Priority *model.TaskPriority
	Skip     int
	Limit    int
}

// TaskPage is one page of an owner's tasks plus the number of tasks matching
// the filters across all pages.
type TaskPage struct {
	Tasks []model.Task
	Total int64
}

type TaskService struct {
	tasks repository.TaskRepositoryInterface
	log   logrus.FieldLogger
	now   func() time.Time
}

func NewTaskService(tasks repository.TaskRepositoryInterface, log logrus.FieldLogger) *TaskService {
	return &TaskService{tasks: tasks, log: log, now: time.Now}
}

// WithClock replaces the time source used for completion timestamps.
func (s *TaskService) WithClock(now func() time.Time) *TaskService {
	s.now = now
	return s
}

func (s *TaskService) Create(ctx context.Context, owner *model.User, in CreateTaskInput) (*model.Task, error) {
	title := validate.Sanitize(in.Title)
	if title == "" {
		return nil, apperror.Validation(msgEmptyTitle)
	}

	priority := in.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}
	if !priority.Valid() {
		return nil, apperror.Validation(msgBadPriority)
	}

	task := &model.Task{
		Title:       title,
		Description: validate.SanitizePtr(in.Description),
		Status:      model.StatusTodo,
		Priority:    priority,
		DueDate:     in.DueDate,
		OwnerID:     owner.ID,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	s.log.WithFields(logrus.Fields{"task_id": task.ID, "owner_id": owner.ID}).Debug("task created")
	return task, nil
}

func (s *TaskService) List(ctx context.Context, owner *model.User, in ListTasksInput) (*TaskPage, error) {
	if in.Skip < 0 {
		return nil, apperror.Validation(msgBadSkip)
	}
	if in.Limit < 1 || in.Limit > MaxPageSize {
		return nil, apperror.Validation(msgBadLimit)
	}
	if in.Status != nil && !in.Status.Valid() {
		return nil, apperror.Validation(msgBadStatus)
	}
	if in.Priority != nil && !in.Priority.Valid() {
		return nil, apperror.Validation(msgBadPriority)
	}

	filter := repository.TaskFilter{
		Status:   in.Status,
		Priority: in.Priority,
		Skip:     in.Skip,
		Limit:    in.Limit,
	}

	tasks, err := s.tasks.List(ctx, owner.ID, filter)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	total, err := s.tasks.Count(ctx, owner.ID, filter)
	if err != nil {
		return nil, fmt.Errorf("count tasks: %w", err)
	}
	return &TaskPage{Tasks: tasks, Total: total}, nil
}

func (s *TaskService) Get(ctx context.Context, owner *model.User, id uuid.UUID) (*model.Task, error) {
	task, err := s.tasks.GetByIDForOwner(ctx, id, owner.ID)
	if errors.Is(err, repository.ErrTaskNotFound) {
		return nil, apperror.NotFound(msgTaskNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return task, nil
}

// Update applies the supplied fields. Moving into completed from any other
// status stamps completed_at; leaving completed keeps the stamp.
func (s *TaskService) Update(ctx context.Context, owner *model.User, id uuid.UUID, in UpdateTaskInput) (*model.Task, error) {
	task, err := s.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		title := validate.Sanitize(*in.Title)
		if title == "" {
			return nil, apperror.Validation(msgEmptyTitle)
		}
		task.Title = title
	}
	if in.Description != nil {
		task.Description = validate.SanitizePtr(in.Description)
	}
	if in.Priority != nil {
		if !in.Priority.Valid() {
			return nil, apperror.Validation(msgBadPriority)
		}
		task.Priority = *in.Priority
	}
	if in.DueDate != nil {
		task.DueDate = in.DueDate
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, apperror.Validation(msgBadStatus)
		}
		if *in.Status == model.StatusCompleted && task.Status != model.StatusCompleted {
			now := s.now().UTC()
			task.CompletedAt = &now
		}
		task.Status = *in.Status
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, apperror.NotFound(msgTaskNotFound)
		}
		return nil, fmt.Errorf("update task: %w", err)
	}
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, owner *model.User, id uuid.UUID) error {
	err := s.tasks.DeleteForOwner(ctx, id, owner.ID)
	if errors.Is(err, repository.ErrTaskNotFound) {
		return apperror.NotFound(msgTaskNotFound)
	}
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	s.log.WithFields(logrus.Fields{"task_id": id, "owner_id": owner.ID}).Debug("task deleted")
	return nil
}
