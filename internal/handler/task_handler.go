package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"taskhub/internal/auth"
	"taskhub/internal/errors"
	"taskhub/internal/model"
	"taskhub/internal/service"
)

// TaskHandler handles task CRUD endpoints.
type TaskHandler struct {
	taskService service.TaskService
}

// NewTaskHandler creates a new task handler.
func NewTaskHandler(taskService service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// CreateTaskRequest represents a task creation request. user_id is optional;
// when present it must match the authenticated user.
type CreateTaskRequest struct {
	Title     string     `json:"title" validate:"required,min=3,max=255"`
	Priority  int        `json:"priority" validate:"required,min=1,max=5"`
	Status    string     `json:"status" validate:"omitempty,oneof=pending finished"`
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
	UserID    string     `json:"user_id" validate:"omitempty,uuid"`
}

// PatchTaskRequest represents a partial task update. Absent fields keep
// their prior values.
type PatchTaskRequest struct {
	Title     *string    `json:"title" validate:"omitempty,min=3,max=255"`
	Priority  *int       `json:"priority" validate:"omitempty,min=1,max=5"`
	Status    *string    `json:"status" validate:"omitempty,oneof=pending finished"`
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
	UserID    string     `json:"user_id" validate:"omitempty,uuid"`
}

// DeleteTaskResponse confirms a deletion and returns the removed record.
type DeleteTaskResponse struct {
	Message string     `json:"message"`
	Task    model.Task `json:"task"`
}

// List godoc
// @Summary List the authenticated user's tasks
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default 1)"
// @Param size query int false "Page size (default 10)"
// @Param orderBy query string false "Sort key: priority, start_time, end_time, title, status"
// @Param orderDirection query string false "asc or desc (default desc)"
// @Success 200 {object} service.TaskPage
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /tasks [get]
func (h *TaskHandler) List(c echo.Context) error {
	ident, err := boundIdentity(c)
	if err != nil {
		return err
	}

	query := service.ListQuery{
		OrderBy:   c.QueryParam("orderBy"),
		Direction: c.QueryParam("orderDirection"),
	}
	if page, err := strconv.Atoi(c.QueryParam("page")); err == nil {
		query.Page = page
	}
	if size, err := strconv.Atoi(c.QueryParam("size")); err == nil {
		query.Size = size
	}

	page, err := h.taskService.List(c.Request().Context(), ident, query)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, page)
}

// Create godoc
// @Summary Create a task
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTaskRequest true "Task data"
// @Success 201 {object} model.Task
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /tasks [post]
func (h *TaskHandler) Create(c echo.Context) error {
	ident, err := boundIdentity(c)
	if err != nil {
		return err
	}

	var req CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
		})
	}

	ownerID, err := parseOwnerID(req.UserID)
	if err != nil {
		return err
	}

	task, err := h.taskService.Create(c.Request().Context(), ident, service.CreateTaskInput{
		Title:     req.Title,
		Priority:  req.Priority,
		Status:    model.TaskStatus(req.Status),
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		OwnerID:   ownerID,
	})
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusCreated, task)
}

// Patch godoc
// @Summary Update supplied fields of a task
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task ID"
// @Param request body PatchTaskRequest true "Fields to update"
// @Success 200 {object} model.Task
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /tasks/{id} [patch]
func (h *TaskHandler) Patch(c echo.Context) error {
	ident, err := boundIdentity(c)
	if err != nil {
		return err
	}

	id, err := parseTaskID(c.Param("id"))
	if err != nil {
		return err
	}

	var req PatchTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
		})
	}

	ownerID, err := parseOwnerID(req.UserID)
	if err != nil {
		return err
	}

	var status *model.TaskStatus
	if req.Status != nil {
		s := model.TaskStatus(*req.Status)
		status = &s
	}

	task, err := h.taskService.Patch(c.Request().Context(), ident, id, service.PatchTaskInput{
		Title:     req.Title,
		Priority:  req.Priority,
		Status:    status,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		OwnerID:   ownerID,
	})
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, task)
}

// Delete godoc
// @Summary Permanently delete a task
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task ID"
// @Success 200 {object} DeleteTaskResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /tasks/{id} [delete]
func (h *TaskHandler) Delete(c echo.Context) error {
	ident, err := boundIdentity(c)
	if err != nil {
		return err
	}

	id, err := parseTaskID(c.Param("id"))
	if err != nil {
		return err
	}

	task, err := h.taskService.Delete(c.Request().Context(), ident, id)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, DeleteTaskResponse{
		Message: "task deleted successfully",
		Task:    *task,
	})
}

// boundIdentity returns the identity placed on the context by the auth
// middleware. Its absence means the route was wired without the guard.
func boundIdentity(c echo.Context) (auth.Identity, error) {
	ident, ok := auth.IdentityFromContext(c)
	if !ok {
		return auth.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
			Error: "missing credential",
			Code:  "MISSING_CREDENTIAL",
		})
	}
	return ident, nil
}

func parseTaskID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "id must be a valid uuid",
			Code:  "INVALID_IDENTIFIER",
		})
	}
	return id, nil
}

func parseOwnerID(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "user_id must be a valid uuid",
			Code:  "INVALID_IDENTIFIER",
		})
	}
	return id, nil
}
