package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"taskhub/internal/auth"
	"taskhub/internal/cache"
	apperrors "taskhub/internal/errors"
	"taskhub/internal/model"
	"taskhub/internal/repository"
)

const (
	defaultPage    = 1
	defaultSize    = 10
	defaultOrderBy = "priority"
)

// CreateTaskInput carries the validated fields of a task-creation request.
// OwnerID is the payload's owner reference; uuid.Nil means it was omitted.
type CreateTaskInput struct {
	Title     string
	Priority  int
	Status    model.TaskStatus
	StartTime *time.Time
	EndTime   *time.Time
	OwnerID   uuid.UUID
}

// PatchTaskInput carries a partial update; nil fields were not supplied and
// keep their prior values.
type PatchTaskInput struct {
	Title     *string
	Priority  *int
	Status    *model.TaskStatus
	StartTime *time.Time
	EndTime   *time.Time
	OwnerID   uuid.UUID
}

// ListQuery carries pagination and ordering parameters; zero values take the
// documented defaults.
type ListQuery struct {
	Page      int
	Size      int
	OrderBy   string
	Direction string
}

// TaskPage is one page of an owner's task list.
type TaskPage struct {
	Page  int          `json:"page"`
	Size  int          `json:"size"`
	Total int64        `json:"total"`
	Tasks []model.Task `json:"tasks"`
}

// TaskService handles owner-scoped task operations. The authenticated
// identity is the authoritative owner for every call; payloads may repeat it
// but can never override it.
type TaskService interface {
	List(ctx context.Context, ident auth.Identity, query ListQuery) (*TaskPage, error)
	Create(ctx context.Context, ident auth.Identity, in CreateTaskInput) (*model.Task, error)
	Patch(ctx context.Context, ident auth.Identity, id uuid.UUID, in PatchTaskInput) (*model.Task, error)
	Delete(ctx context.Context, ident auth.Identity, id uuid.UUID) (*model.Task, error)
}

type taskService struct {
	taskRepo repository.TaskRepository
	cache    *cache.Client
}

// NewTaskService creates a new task service.
func NewTaskService(taskRepo repository.TaskRepository, cache *cache.Client) TaskService {
	return &taskService{
		taskRepo: taskRepo,
		cache:    cache,
	}
}

// List returns one page of the identity's tasks with the owner's total count.
func (s *taskService) List(ctx context.Context, ident auth.Identity, query ListQuery) (*TaskPage, error) {
	if query.Page < 1 {
		query.Page = defaultPage
	}
	if query.Size < 1 {
		query.Size = defaultSize
	}
	if query.OrderBy == "" {
		query.OrderBy = defaultOrderBy
	}

	tasks, total, err := s.taskRepo.List(ctx, ident.UserID, repository.ListParams{
		Page:      query.Page,
		Size:      query.Size,
		OrderBy:   query.OrderBy,
		Direction: query.Direction,
	})
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []model.Task{}
	}

	return &TaskPage{
		Page:  query.Page,
		Size:  query.Size,
		Total: total,
		Tasks: tasks,
	}, nil
}

// Create persists a new task owned by the identity. Status defaults to
// pending when omitted. A payload naming a different owner is rejected.
func (s *taskService) Create(ctx context.Context, ident auth.Identity, in CreateTaskInput) (*model.Task, error) {
	if in.OwnerID != uuid.Nil && in.OwnerID != ident.UserID {
		return nil, apperrors.ErrOwnerMismatch
	}

	status := in.Status
	if status == "" {
		status = model.TaskStatusPending
	}

	task := &model.Task{
		Title:     in.Title,
		Priority:  in.Priority,
		Status:    status,
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
		UserID:    ident.UserID,
	}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	s.invalidateStats(ctx, ident.UserID)
	return task, nil
}

// Patch applies the supplied fields to the identity's task. Ownership never
// changes; user_id is not an updatable column.
func (s *taskService) Patch(ctx context.Context, ident auth.Identity, id uuid.UUID, in PatchTaskInput) (*model.Task, error) {
	if in.OwnerID != uuid.Nil && in.OwnerID != ident.UserID {
		return nil, apperrors.ErrOwnerMismatch
	}

	fields := map[string]interface{}{}
	if in.Title != nil {
		fields["title"] = *in.Title
	}
	if in.Priority != nil {
		fields["priority"] = *in.Priority
	}
	if in.Status != nil {
		fields["status"] = *in.Status
	}
	if in.StartTime != nil {
		fields["start_time"] = *in.StartTime
	}
	if in.EndTime != nil {
		fields["end_time"] = *in.EndTime
	}
	if len(fields) == 0 {
		return nil, apperrors.ErrEmptyUpdate
	}

	task, err := s.taskRepo.Patch(ctx, ident.UserID, id, fields)
	if err != nil {
		return nil, err
	}

	s.invalidateStats(ctx, ident.UserID)
	return task, nil
}

// Delete permanently removes the identity's task and returns the deleted
// record.
func (s *taskService) Delete(ctx context.Context, ident auth.Identity, id uuid.UUID) (*model.Task, error) {
	task, err := s.taskRepo.Delete(ctx, ident.UserID, id)
	if err != nil {
		return nil, err
	}

	s.invalidateStats(ctx, ident.UserID)
	return task, nil
}

func (s *taskService) invalidateStats(ctx context.Context, ownerID uuid.UUID) {
	_ = s.cache.Delete(ctx, statsCacheKeys(ownerID)...)
}
