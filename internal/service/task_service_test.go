package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"taskhub/internal/auth"
	apperrors "taskhub/internal/errors"
	"taskhub/internal/model"
	"taskhub/internal/repository"
)

// MockTaskRepository is a mock implementation of TaskRepository.
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) Create(ctx context.Context, task *model.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskRepository) List(ctx context.Context, ownerID uuid.UUID, params repository.ListParams) ([]model.Task, int64, error) {
	args := m.Called(ctx, ownerID, params)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]model.Task), args.Get(1).(int64), args.Error(2)
}

func (m *MockTaskRepository) FindAllByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Task, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Task), args.Error(1)
}

func (m *MockTaskRepository) Patch(ctx context.Context, ownerID, id uuid.UUID, fields map[string]interface{}) (*model.Task, error) {
	args := m.Called(ctx, ownerID, id, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Task), args.Error(1)
}

func (m *MockTaskRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) (*model.Task, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Task), args.Error(1)
}

func testIdentity() auth.Identity {
	return auth.Identity{UserID: uuid.New(), Username: "alice"}
}

func TestTaskService_Create_DefaultsStatusToPending(t *testing.T) {
	mockRepo := new(MockTaskRepository)
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Task")).Return(nil)
	taskService := NewTaskService(mockRepo, nil)
	ident := testIdentity()

	task, err := taskService.Create(context.Background(), ident, CreateTaskInput{
		Title:    "write report",
		Priority: 2,
	})

	assert.NoError(t, err)
	assert.Equal(t, model.TaskStatusPending, task.Status)
	assert.Equal(t, ident.UserID, task.UserID)
	mockRepo.AssertExpectations(t)
}

func TestTaskService_Create_KeepsSuppliedStatus(t *testing.T) {
	mockRepo := new(MockTaskRepository)
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Task")).Return(nil)
	taskService := NewTaskService(mockRepo, nil)

	start := time.Now().Add(-time.Hour)
	end := time.Now()
	task, err := taskService.Create(context.Background(), testIdentity(), CreateTaskInput{
		Title:     "write report",
		Priority:  5,
		Status:    model.TaskStatusFinished,
		StartTime: &start,
		EndTime:   &end,
	})

	assert.NoError(t, err)
	assert.Equal(t, model.TaskStatusFinished, task.Status)
	assert.Equal(t, &start, task.StartTime)
	assert.Equal(t, &end, task.EndTime)
}

func TestTaskService_Create_RejectsForeignOwner(t *testing.T) {
	mockRepo := new(MockTaskRepository)
	taskService := NewTaskService(mockRepo, nil)

	task, err := taskService.Create(context.Background(), testIdentity(), CreateTaskInput{
		Title:    "write report",
		Priority: 2,
		OwnerID:  uuid.New(),
	})

	assert.ErrorIs(t, err, apperrors.ErrOwnerMismatch)
	assert.Nil(t, task)
	mockRepo.AssertNotCalled(t, "Create")
}

func TestTaskService_Create_AcceptsMatchingOwner(t *testing.T) {
	mockRepo := new(MockTaskRepository)
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Task")).Return(nil)
	taskService := NewTaskService(mockRepo, nil)
	ident := testIdentity()

	task, err := taskService.Create(context.Background(), ident, CreateTaskInput{
		Title:    "write report",
		Priority: 2,
		OwnerID:  ident.UserID,
	})

	assert.NoError(t, err)
	assert.Equal(t, ident.UserID, task.UserID)
}

func TestTaskService_Patch_OnlySuppliedFields(t *testing.T) {
	mockRepo := new(MockTaskRepository)
	ident := testIdentity()
	taskID := uuid.New()
	title := "updated title"
	status := model.TaskStatusFinished

	mockRepo.On("Patch", mock.Anything, ident.UserID, taskID, mock.MatchedBy(func(fields map[string]interface{}) bool {
		if len(fields) != 2 {
			return false
		}
		return fields["title"] == title && fields["status"] == status
	})).Return(&model.Task{ID: taskID, Title: title, Status: status, UserID: ident.UserID}, nil)

	taskService := NewTaskService(mockRepo, nil)
	task, err := taskService.Patch(context.Background(), ident, taskID, PatchTaskInput{
		Title:  &title,
		Status: &status,
	})

	assert.NoError(t, err)
	assert.Equal(t, title, task.Title)
	mockRepo.AssertExpectations(t)
}

func TestTaskService_Patch_EmptyUpdateRejected(t *testing.T) {
	mockRepo := new(MockTaskRepository)
	taskService := NewTaskService(mockRepo, nil)

	task, err := taskService.Patch(context.Background(), testIdentity(), uuid.New(), PatchTaskInput{})

	assert.ErrorIs(t, err, apperrors.ErrEmptyUpdate)
	assert.Nil(t, task)
	mockRepo.AssertNotCalled(t, "Patch")
}

func TestTaskService_Patch_RejectsForeignOwner(t *testing.T) {
	mockRepo := new(MockTaskRepository)
	taskService := NewTaskService(mockRepo, nil)
	title := "updated title"

	task, err := taskService.Patch(context.Background(), testIdentity(), uuid.New(), PatchTaskInput{
		Title:   &title,
		OwnerID: uuid.New(),
	})

	assert.ErrorIs(t, err, apperrors.ErrOwnerMismatch)
	assert.Nil(t, task)
	mockRepo.AssertNotCalled(t, "Patch")
}

func TestTaskService_Patch_NotFound(t *testing.T) {
	mockRepo := new(MockTaskRepository)
	ident := testIdentity()
	taskID := uuid.New()
	title := "updated title"
	mockRepo.On("Patch", mock.Anything, ident.UserID, taskID, mock.Anything).Return(nil, apperrors.ErrTaskNotFound)

	taskService := NewTaskService(mockRepo, nil)
	task, err := taskService.Patch(context.Background(), ident, taskID, PatchTaskInput{Title: &title})

	assert.ErrorIs(t, err, apperrors.ErrTaskNotFound)
	assert.Nil(t, task)
}

func TestTaskService_List_AppliesDefaults(t *testing.T) {
	mockRepo := new(MockTaskRepository)
	ident := testIdentity()
	mockRepo.On("List", mock.Anything, ident.UserID, repository.ListParams{
		Page:    1,
		Size:    10,
		OrderBy: "priority",
	}).Return([]model.Task{}, int64(0), nil)

	taskService := NewTaskService(mockRepo, nil)
	page, err := taskService.List(context.Background(), ident, ListQuery{})

	assert.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.Size)
	assert.Equal(t, int64(0), page.Total)
	assert.NotNil(t, page.Tasks)
	mockRepo.AssertExpectations(t)
}

func TestTaskService_List_PassesThroughParamsAndTotal(t *testing.T) {
	mockRepo := new(MockTaskRepository)
	ident := testIdentity()
	tasks := []model.Task{{Title: "a"}, {Title: "b"}}
	mockRepo.On("List", mock.Anything, ident.UserID, repository.ListParams{
		Page:      2,
		Size:      5,
		OrderBy:   "title",
		Direction: "asc",
	}).Return(tasks, int64(12), nil)

	taskService := NewTaskService(mockRepo, nil)
	page, err := taskService.List(context.Background(), ident, ListQuery{
		Page:      2,
		Size:      5,
		OrderBy:   "title",
		Direction: "asc",
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(12), page.Total)
	assert.Len(t, page.Tasks, 2)
}

func TestTaskService_List_InvalidSortColumn(t *testing.T) {
	mockRepo := new(MockTaskRepository)
	ident := testIdentity()
	mockRepo.On("List", mock.Anything, ident.UserID, mock.Anything).Return(nil, int64(0), apperrors.ErrInvalidSortColumn)

	taskService := NewTaskService(mockRepo, nil)
	page, err := taskService.List(context.Background(), ident, ListQuery{OrderBy: "user_id"})

	assert.ErrorIs(t, err, apperrors.ErrInvalidSortColumn)
	assert.Nil(t, page)
}

func TestTaskService_Delete(t *testing.T) {
	mockRepo := new(MockTaskRepository)
	ident := testIdentity()
	taskID := uuid.New()
	mockRepo.On("Delete", mock.Anything, ident.UserID, taskID).Return(&model.Task{ID: taskID, UserID: ident.UserID}, nil)

	taskService := NewTaskService(mockRepo, nil)
	task, err := taskService.Delete(context.Background(), ident, taskID)

	assert.NoError(t, err)
	assert.Equal(t, taskID, task.ID)
	mockRepo.AssertExpectations(t)
}

func TestTaskService_Delete_NotFound(t *testing.T) {
	mockRepo := new(MockTaskRepository)
	ident := testIdentity()
	taskID := uuid.New()
	mockRepo.On("Delete", mock.Anything, ident.UserID, taskID).Return(nil, apperrors.ErrTaskNotFound)

	taskService := NewTaskService(mockRepo, nil)
	task, err := taskService.Delete(context.Background(), ident, taskID)

	assert.ErrorIs(t, err, apperrors.ErrTaskNotFound)
	assert.Nil(t, task)
}
