package handler_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"taskmanager/internal/apperror"
	"taskmanager/internal/handler"
	"taskmanager/internal/model"
	"taskmanager/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupTaskTest(user *model.User) (*gin.Engine, *MockTaskService) {
	r := gin.New()
	mockTasks := new(MockTaskService)
	taskHandler := handler.NewTaskHandler(mockTasks)

	tasks := r.Group("/api/tasks", withUser(user))
	tasks.POST("/", taskHandler.Create)
	tasks.GET("/", taskHandler.List)
	tasks.GET("/:id", taskHandler.GetByID)
	tasks.PUT("/:id", taskHandler.Update)
	tasks.DELETE("/:id", taskHandler.Delete)
	return r, mockTasks
}

func sampleTask(owner *model.User) *model.Task {
	now := time.Now().UTC()
	return &model.Task{
		ID:        uuid.New(),
		Title:     "Buy milk",
		Status:    model.StatusTodo,
		Priority:  model.PriorityHigh,
		OwnerID:   owner.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestCreateTask_Success(t *testing.T) {
	// Arrange
	user := testUser()
	router, mockTasks := setupTaskTest(user)
	task := sampleTask(user)
	mockTasks.On("Create", mock.Anything, user, service.CreateTaskInput{
		Title:    "Buy milk",
		Priority: model.PriorityHigh,
	}).Return(task, nil)

	// Act
	resp := serve(router, jsonRequest("POST", "/api/tasks/", map[string]string{
		"title":    "Buy milk",
		"priority": "high",
	}))

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)

	var body handler.TaskResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, task.ID.String(), body.ID)
	assert.Equal(t, model.StatusTodo, body.Status)
	assert.Equal(t, user.ID.String(), body.OwnerID)
	assert.Nil(t, body.CompletedAt)
	mockTasks.AssertExpectations(t)
}

func TestCreateTask_InvalidPriority(t *testing.T) {
	router, mockTasks := setupTaskTest(testUser())

	resp := serve(router, jsonRequest("POST", "/api/tasks/", map[string]string{
		"title":    "Buy milk",
		"priority": "urgent",
	}))

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "priority must be one of low, medium, high", decodeDetail(resp))
	mockTasks.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateTask_MissingTitle(t *testing.T) {
	router, _ := setupTaskTest(testUser())

	resp := serve(router, jsonRequest("POST", "/api/tasks/", map[string]string{"description": "no title"}))

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "title is required", decodeDetail(resp))
}

func TestCreateTask_DueDateFormats(t *testing.T) {
	want := time.Date(2024, 12, 31, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		name  string
		input string
	}{
		{name: "RFC 3339 with Z", input: "2024-12-31T10:00:00Z"},
		{name: "RFC 3339 with offset", input: "2024-12-31T12:00:00+02:00"},
		{name: "no timezone is UTC", input: "2024-12-31T10:00:00"},
		{name: "space separator", input: "2024-12-31 10:00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := testUser()
			router, mockTasks := setupTaskTest(user)
			mockTasks.On("Create", mock.Anything, user, mock.MatchedBy(func(in service.CreateTaskInput) bool {
				return in.DueDate != nil && in.DueDate.Equal(want)
			})).Return(sampleTask(user), nil)

			resp := serve(router, jsonRequest("POST", "/api/tasks/", map[string]string{
				"title":    "Write report",
				"due_date": tt.input,
			}))

			assert.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
			mockTasks.AssertExpectations(t)
		})
	}
}

func TestCreateTask_InvalidDueDate(t *testing.T) {
	router, mockTasks := setupTaskTest(testUser())

	resp := serve(router, jsonRequest("POST", "/api/tasks/", map[string]string{
		"title":    "Write report",
		"due_date": "next tuesday",
	}))

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, decodeDetail(resp), "Invalid datetime")
	mockTasks.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateTask_NullDueDateIsOmitted(t *testing.T) {
	user := testUser()
	router, mockTasks := setupTaskTest(user)
	task := sampleTask(user)
	title := "Renamed"
	mockTasks.On("Update", mock.Anything, user, task.ID, service.UpdateTaskInput{Title: &title}).
		Return(task, nil)

	resp := serve(router, jsonRequest("PUT", "/api/tasks/"+task.ID.String(), map[string]any{
		"title":    "Renamed",
		"due_date": nil,
	}))

	assert.Equal(t, http.StatusOK, resp.Code)
	mockTasks.AssertExpectations(t)
}

func TestListTasks_Defaults(t *testing.T) {
	user := testUser()
	router, mockTasks := setupTaskTest(user)
	tasks := []model.Task{*sampleTask(user), *sampleTask(user)}
	mockTasks.On("List", mock.Anything, user, service.ListTasksInput{Skip: 0, Limit: 10}).
		Return(&service.TaskPage{Tasks: tasks, Total: 12}, nil)

	req, _ := http.NewRequest("GET", "/api/tasks/", nil)
	resp := serve(router, req)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "12", resp.Header().Get("X-Total-Count"))

	var body []handler.TaskResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Len(t, body, 2)
	mockTasks.AssertExpectations(t)
}

func TestListTasks_Filters(t *testing.T) {
	user := testUser()
	router, mockTasks := setupTaskTest(user)
	status := model.StatusInProgress
	priority := model.PriorityLow
	mockTasks.On("List", mock.Anything, user, service.ListTasksInput{
		Status:   &status,
		Priority: &priority,
		Skip:     5,
		Limit:    20,
	}).Return(&service.TaskPage{}, nil)

	req, _ := http.NewRequest("GET", "/api/tasks/?status=in_progress&priority=low&skip=5&limit=20", nil)
	resp := serve(router, req)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `[]`, resp.Body.String())
	mockTasks.AssertExpectations(t)
}

func TestListTasks_BadQuery(t *testing.T) {
	router, mockTasks := setupTaskTest(testUser())

	for _, query := range []string{"limit=0", "limit=101", "skip=-1", "status=done", "limit=abc"} {
		req, _ := http.NewRequest("GET", "/api/tasks/?"+query, nil)
		resp := serve(router, req)
		assert.Equal(t, http.StatusBadRequest, resp.Code, query)
	}
	mockTasks.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetTask_InvalidID(t *testing.T) {
	router, _ := setupTaskTest(testUser())

	req, _ := http.NewRequest("GET", "/api/tasks/not-a-uuid", nil)
	resp := serve(router, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "Invalid task ID format", decodeDetail(resp))
}

func TestGetTask_NotFound(t *testing.T) {
	user := testUser()
	router, mockTasks := setupTaskTest(user)
	id := uuid.New()
	mockTasks.On("Get", mock.Anything, user, id).Return(nil, apperror.NotFound("Task not found"))

	req, _ := http.NewRequest("GET", "/api/tasks/"+id.String(), nil)
	resp := serve(router, req)

	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "Task not found", decodeDetail(resp))
}

func TestGetTask_InternalError(t *testing.T) {
	user := testUser()
	router, mockTasks := setupTaskTest(user)
	id := uuid.New()
	mockTasks.On("Get", mock.Anything, user, id).Return(nil, errors.New("database is locked"))

	req, _ := http.NewRequest("GET", "/api/tasks/"+id.String(), nil)
	resp := serve(router, req)

	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Equal(t, "Internal server error", decodeDetail(resp))
}

func TestUpdateTask_Partial(t *testing.T) {
	user := testUser()
	router, mockTasks := setupTaskTest(user)
	task := sampleTask(user)
	completed := model.StatusCompleted
	now := time.Now().UTC()
	task.Status = completed
	task.CompletedAt = &now
	mockTasks.On("Update", mock.Anything, user, task.ID, service.UpdateTaskInput{Status: &completed}).
		Return(task, nil)

	resp := serve(router, jsonRequest("PUT", "/api/tasks/"+task.ID.String(), map[string]string{"status": "completed"}))

	assert.Equal(t, http.StatusOK, resp.Code)
	var body handler.TaskResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, model.StatusCompleted, body.Status)
	assert.NotNil(t, body.CompletedAt)
	mockTasks.AssertExpectations(t)
}

func TestUpdateTask_InvalidStatus(t *testing.T) {
	router, _ := setupTaskTest(testUser())

	resp := serve(router, jsonRequest("PUT", "/api/tasks/"+uuid.NewString(), map[string]string{"status": "done"}))

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "status must be one of todo, in_progress, completed", decodeDetail(resp))
}

func TestDeleteTask(t *testing.T) {
	user := testUser()
	router, mockTasks := setupTaskTest(user)
	id := uuid.New()
	mockTasks.On("Delete", mock.Anything, user, id).Return(nil)

	req, _ := http.NewRequest("DELETE", "/api/tasks/"+id.String(), nil)
	resp := serve(router, req)

	assert.Equal(t, http.StatusNoContent, resp.Code)
	assert.Empty(t, resp.Body.String())
	mockTasks.AssertExpectations(t)
}
