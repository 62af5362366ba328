package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"taskmanager/internal/middleware"
	"taskmanager/internal/model"
	"taskmanager/internal/service"
)

type TaskService interface {
	Create(ctx context.Context, owner *model.User, in service.CreateTaskInput) (*model.Task, error)
	List(ctx context.Context, owner *model.User, in service.ListTasksInput) (*service.TaskPage, error)
	Get(ctx context.Context, owner *model.User, id uuid.UUID) (*model.Task, error)
	Update(ctx context.Context, owner *model.User, id uuid.UUID, in service.UpdateTaskInput) (*model.Task, error)
	Delete(ctx context.Context, owner *model.User, id uuid.UUID) error
}

type TaskHandler struct {
	tasks TaskService
}

func NewTaskHandler(tasks TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

type TaskCreateRequest struct {
	Title       string              `json:"title" binding:"required" example:"Buy milk"`
	Description *string             `json:"description"`
	Priority    *model.TaskPriority `json:"priority" binding:"omitempty,taskpriority" swaggertype:"string" enums:"low,medium,high"`
	DueDate     *Timestamp          `json:"due_date" swaggertype:"string" format:"date-time"`
}

// TaskUpdateRequest is a partial update; omitted fields keep their value.
type TaskUpdateRequest struct {
	Title       *string             `json:"title"`
	Description *string             `json:"description"`
	Status      *model.TaskStatus   `json:"status" binding:"omitempty,taskstatus" swaggertype:"string" enums:"todo,in_progress,completed"`
	Priority    *model.TaskPriority `json:"priority" binding:"omitempty,taskpriority" swaggertype:"string" enums:"low,medium,high"`
	DueDate     *Timestamp          `json:"due_date" swaggertype:"string" format:"date-time"`
}

type TaskListQuery struct {
	Status   *model.TaskStatus   `form:"status" binding:"omitempty,taskstatus"`
	Priority *model.TaskPriority `form:"priority" binding:"omitempty,taskpriority"`
	Skip     int                 `form:"skip,default=0" binding:"min=0"`
	Limit    int                 `form:"limit,default=10" binding:"min=1,max=100"`
}

const msgInvalidTaskID = "Invalid task ID format"

// Create godoc
// @Summary      Create a task owned by the caller
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body TaskCreateRequest true "Task"
// @Success      200 {object} TaskResponse
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Router       /api/tasks/ [post]
func (h *TaskHandler) Create(c *gin.Context) {
	var req TaskCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	in := service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate.TimePtr(),
	}
	if req.Priority != nil {
		in.Priority = *req.Priority
	}

	task, err := h.tasks.Create(c.Request.Context(), middleware.CurrentUser(c), in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newTaskResponse(task))
}

// List godoc
// @Summary      List the caller's tasks
// @Description  Tasks are returned in creation order. X-Total-Count holds the number of matches across all pages.
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Param        status   query string false "Filter by status" Enums(todo, in_progress, completed)
// @Param        priority query string false "Filter by priority" Enums(low, medium, high)
// @Param        skip     query int    false "Tasks to skip" default(0) minimum(0)
// @Param        limit    query int    false "Page size" default(10) minimum(1) maximum(100)
// @Success      200 {array}  TaskResponse
// @Header       200 {integer} X-Total-Count "Total matching tasks"
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Router       /api/tasks/ [get]
func (h *TaskHandler) List(c *gin.Context) {
	var q TaskListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	page, err := h.tasks.List(c.Request.Context(), middleware.CurrentUser(c), service.ListTasksInput{
		Status:   q.Status,
		Priority: q.Priority,
		Skip:     q.Skip,
		Limit:    q.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]TaskResponse, 0, len(page.Tasks))
	for i := range page.Tasks {
		resp = append(resp, newTaskResponse(&page.Tasks[i]))
	}
	c.Header("X-Total-Count", strconv.FormatInt(page.Total, 10))
	c.JSON(http.StatusOK, resp)
}

// GetByID godoc
// @Summary      Get one of the caller's tasks
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Task ID" format(uuid)
// @Success      200 {object} TaskResponse
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /api/tasks/{id} [get]
func (h *TaskHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id", msgInvalidTaskID)
	if !ok {
		return
	}

	task, err := h.tasks.Get(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newTaskResponse(task))
}

// Update godoc
// @Summary      Partially update one of the caller's tasks
// @Description  Moving a task into completed stamps completed_at.
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string            true "Task ID" format(uuid)
// @Param        request body TaskUpdateRequest true "Fields to change"
// @Success      200 {object} TaskResponse
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /api/tasks/{id} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id", msgInvalidTaskID)
	if !ok {
		return
	}

	var req TaskUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	task, err := h.tasks.Update(c.Request.Context(), middleware.CurrentUser(c), id, service.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate.TimePtr(),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newTaskResponse(task))
}

// Delete godoc
// @Summary      Delete one of the caller's tasks
// @Tags         Tasks
// @Security     BearerAuth
// @Param        id path string true "Task ID" format(uuid)
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /api/tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id", msgInvalidTaskID)
	if !ok {
		return
	}

	if err := h.tasks.Delete(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
