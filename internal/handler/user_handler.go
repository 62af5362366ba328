package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"taskmanager/internal/middleware"
	"taskmanager/internal/model"
	"taskmanager/internal/service"
)

type UserService interface {
	UpdateSelf(ctx context.Context, user *model.User, in service.UpdateSelfInput) (*model.User, error)
	ListAll(ctx context.Context, admin *model.User) ([]model.User, error)
	SetActive(ctx context.Context, admin *model.User, targetID uuid.UUID, active bool) (*model.User, error)
	Delete(ctx context.Context, admin *model.User, targetID uuid.UUID) error
}

type UserHandler struct {
	users UserService
}

func NewUserHandler(users UserService) *UserHandler {
	return &UserHandler{users: users}
}

type UpdateMeRequest struct {
	Email    *string `json:"email" example:"alice@example.com"`
	FullName *string `json:"full_name" example:"Alice Liddell"`
}

const msgInvalidUserID = "Invalid user ID format"

// Me godoc
// @Summary      Get the caller's profile
// @Tags         Users
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} UserResponse
// @Failure      401 {object} ErrorResponse
// @Router       /api/users/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, newUserResponse(middleware.CurrentUser(c)))
}

// UpdateMe godoc
// @Summary      Update the caller's email or full name
// @Tags         Users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body UpdateMeRequest true "Profile fields"
// @Success      200 {object} UserResponse
// @Failure      400 {object} ErrorResponse
// @Router       /api/users/me [put]
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req UpdateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.users.UpdateSelf(c.Request.Context(), middleware.CurrentUser(c), service.UpdateSelfInput{
		Email:    req.Email,
		FullName: req.FullName,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newUserResponse(user))
}

// List godoc
// @Summary      List every user
// @Tags         Users
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array}  UserResponse
// @Failure      403 {object} ErrorResponse
// @Router       /api/users/ [get]
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.users.ListAll(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]UserResponse, 0, len(users))
	for i := range users {
		resp = append(resp, newUserResponse(&users[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// Activate godoc
// @Summary      Activate a user
// @Tags         Users
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "User ID" format(uuid)
// @Success      200 {object} UserResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /api/users/{id}/activate [put]
func (h *UserHandler) Activate(c *gin.Context) {
	h.setActive(c, true)
}

// Deactivate godoc
// @Summary      Deactivate a user
// @Tags         Users
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "User ID" format(uuid)
// @Success      200 {object} UserResponse
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /api/users/{id}/deactivate [put]
func (h *UserHandler) Deactivate(c *gin.Context) {
	h.setActive(c, false)
}

func (h *UserHandler) setActive(c *gin.Context, active bool) {
	id, ok := parseID(c, "id", msgInvalidUserID)
	if !ok {
		return
	}

	user, err := h.users.SetActive(c.Request.Context(), middleware.CurrentUser(c), id, active)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newUserResponse(user))
}

// Delete godoc
// @Summary      Delete a user and every task they own
// @Tags         Users
// @Security     BearerAuth
// @Param        id path string true "User ID" format(uuid)
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /api/users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id", msgInvalidUserID)
	if !ok {
		return
	}

	if err := h.users.Delete(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
