package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"taskmanager/internal/apperror"
	"taskmanager/internal/model"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Detail string `json:"detail" example:"Task not found"`
}

type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  *string   `json:"full_name"`
	IsActive  bool      `json:"is_active"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

func newUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:        u.ID.String(),
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		IsActive:  u.IsActive,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
	}
}

type TaskResponse struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Description *string            `json:"description"`
	Status      model.TaskStatus   `json:"status" swaggertype:"string" enums:"todo,in_progress,completed"`
	Priority    model.TaskPriority `json:"priority" swaggertype:"string" enums:"low,medium,high"`
	DueDate     *time.Time         `json:"due_date"`
	OwnerID     string             `json:"owner_id"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
	CompletedAt *time.Time         `json:"completed_at"`
}

func newTaskResponse(t *model.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID.String(),
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		DueDate:     t.DueDate,
		OwnerID:     t.OwnerID.String(),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		CompletedAt: t.CompletedAt,
	}
}

// respondError writes err as {"detail": ...} with the status of its kind.
// Errors without a kind are logged through the context and hidden from the client.
func respondError(c *gin.Context, err error) {
	kind := apperror.KindOf(err)
	switch kind {
	case apperror.KindInternal:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Detail: "Internal server error"})
	case apperror.KindAuthentication:
		c.Header("WWW-Authenticate", "Bearer")
		c.JSON(kind.Status(), ErrorResponse{Detail: err.Error()})
	default:
		c.JSON(kind.Status(), ErrorResponse{Detail: err.Error()})
	}
}

// respondBindError reports a request that failed to bind or validate.
func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Detail: bindingDetail(err)})
}

func bindingDetail(err error) string {
	if errors.Is(err, errInvalidDatetime) {
		return msgInvalidDatetime
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid request body"
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return strings.Join(msgs, "; ")
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "taskstatus":
		return fmt.Sprintf("%s must be one of todo, in_progress, completed", fe.Field())
	case "taskpriority":
		return fmt.Sprintf("%s must be one of low, medium, high", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// parseID reads a UUID path parameter, replying 400 with detail when it is malformed.
func parseID(c *gin.Context, param, detail string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Detail: detail})
		return uuid.Nil, false
	}
	return id, true
}
