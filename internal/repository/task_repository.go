package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "taskhub/internal/errors"
	"taskhub/internal/model"
)

// sortColumns maps logical sort keys to the column references eligible for
// dynamic ordering. Anything outside this map is rejected before any query
// is built; caller input never reaches the ORDER BY clause directly.
var sortColumns = map[string]string{
	"priority":   "priority",
	"start_time": "start_time",
	"end_time":   "end_time",
	"title":      "title",
	"status":     "status",
}

// ListParams controls pagination and ordering for owner-scoped task lists.
type ListParams struct {
	Page      int
	Size      int
	OrderBy   string
	Direction string
}

// TaskRepository defines task persistence operations. Every operation is
// scoped to the owning user; mutations use compound (owner, id) predicates.
type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) error
	List(ctx context.Context, ownerID uuid.UUID, params ListParams) ([]model.Task, int64, error)
	FindAllByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Task, error)
	Patch(ctx context.Context, ownerID, id uuid.UUID, fields map[string]interface{}) (*model.Task, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) (*model.Task, error)
}

type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new task repository.
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

// orderClause resolves a logical sort key and direction to a safe ORDER BY
// fragment. Unknown keys fail; unknown directions fall back to DESC, the
// default direction.
func orderClause(orderBy, direction string) (string, error) {
	column, ok := sortColumns[orderBy]
	if !ok {
		return "", apperrors.ErrInvalidSortColumn
	}
	dir := "DESC"
	if direction == "asc" {
		dir = "ASC"
	}
	return column + " " + dir, nil
}

// pageOffset converts a 1-based page and size into the row offset for
// LIMIT/OFFSET pagination.
func pageOffset(page, size int) int {
	return (page - 1) * size
}

// Create creates a new task.
func (r *taskRepository) Create(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// List returns one page of the owner's tasks plus the owner's total count.
func (r *taskRepository) List(ctx context.Context, ownerID uuid.UUID, params ListParams) ([]model.Task, int64, error) {
	order, err := orderClause(params.OrderBy, params.Direction)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("user_id = ?", ownerID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order(order).
		Limit(params.Size).
		Offset(pageOffset(params.Page, params.Size)).
		Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// FindAllByOwner returns every task belonging to the owner.
func (r *taskRepository) FindAllByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Where("user_id = ?", ownerID).Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// Patch applies the supplied fields to the owner's task inside a transaction
// with a locked read, so a concurrent patch or delete on the same task cannot
// lose the update.
func (r *taskRepository) Patch(ctx context.Context, ownerID, id uuid.UUID, fields map[string]interface{}) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND user_id = ?", id, ownerID).
			First(&task).Error; err != nil {
			return err
		}
		if err := tx.Model(&task).Updates(fields).Error; err != nil {
			return err
		}
		// re-read so the returned record reflects exactly what was stored
		return tx.Where("id = ?", task.ID).First(&task).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

// Delete permanently removes the owner's task and returns the deleted record.
func (r *taskRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND user_id = ?", id, ownerID).
			First(&task).Error; err != nil {
			return err
		}
		return tx.Delete(&task).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}
