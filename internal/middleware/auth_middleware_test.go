package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"taskmanager/internal/apperror"
	"taskmanager/internal/middleware"
	"taskmanager/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) Resolve(ctx context.Context, token string) (*model.User, error) {
	args := m.Called(ctx, token)
	user := args.Get(0)
	if user == nil {
		return nil, args.Error(1)
	}
	return user.(*model.User), args.Error(1)
}

func setupRouter(resolver middleware.TokenResolver) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	protected := r.Group("/protected")
	protected.Use(middleware.Authenticate(resolver))

	protected.GET("/resource", func(c *gin.Context) {
		user := middleware.CurrentUser(c)
		if user == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "User not found in context"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "Access granted",
			"user_id": user.ID,
		})
	})

	admin := protected.Group("/admin")
	admin.Use(middleware.AdminOnly())
	admin.GET("/resource", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Admin access granted"})
	})

	return r
}

func doRequest(router *gin.Engine, path, authHeader string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("GET", path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestAuthenticate_ValidToken(t *testing.T) {
	// Arrange
	resolver := new(MockResolver)
	router := setupRouter(resolver)
	user := &model.User{ID: uuid.New(), Username: "alice", IsActive: true}
	resolver.On("Resolve", mock.Anything, "good-token").Return(user, nil)

	// Act
	resp := doRequest(router, "/protected/resource", "Bearer good-token")

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "Access granted")
	assert.Contains(t, resp.Body.String(), user.ID.String())
	resolver.AssertExpectations(t)
}

func TestAuthenticate_SchemeIsCaseInsensitive(t *testing.T) {
	resolver := new(MockResolver)
	router := setupRouter(resolver)
	resolver.On("Resolve", mock.Anything, "good-token").
		Return(&model.User{ID: uuid.New(), IsActive: true}, nil)

	resp := doRequest(router, "/protected/resource", "bearer good-token")

	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestAuthenticate_NoAuthHeader(t *testing.T) {
	// Arrange
	router := setupRouter(new(MockResolver))

	// Act
	resp := doRequest(router, "/protected/resource", "")

	// Assert
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, "Bearer", resp.Header().Get("WWW-Authenticate"))
	assert.JSONEq(t, `{"detail":"Could not validate credentials"}`, resp.Body.String())
}

func TestAuthenticate_InvalidAuthFormat(t *testing.T) {
	router := setupRouter(new(MockResolver))

	for _, header := range []string{"InvalidFormat token123", "Bearer", "Bearer   "} {
		resp := doRequest(router, "/protected/resource", header)

		assert.Equal(t, http.StatusUnauthorized, resp.Code, header)
		assert.Equal(t, "Bearer", resp.Header().Get("WWW-Authenticate"), header)
		assert.JSONEq(t, `{"detail":"Could not validate credentials"}`, resp.Body.String(), header)
	}
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	// Arrange
	resolver := new(MockResolver)
	router := setupRouter(resolver)
	resolver.On("Resolve", mock.Anything, "invalid-token").Return(nil, apperror.ErrInvalidCredentials)

	// Act
	resp := doRequest(router, "/protected/resource", "Bearer invalid-token")

	// Assert
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, "Bearer", resp.Header().Get("WWW-Authenticate"))
	assert.JSONEq(t, `{"detail":"Could not validate credentials"}`, resp.Body.String())
}

func TestAuthenticate_InactiveUser(t *testing.T) {
	resolver := new(MockResolver)
	router := setupRouter(resolver)
	resolver.On("Resolve", mock.Anything, "token").
		Return(&model.User{ID: uuid.New(), IsActive: false}, nil)

	resp := doRequest(router, "/protected/resource", "Bearer token")

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.JSONEq(t, `{"detail":"Inactive user"}`, resp.Body.String())
}

func TestAuthenticate_ResolverFailure(t *testing.T) {
	resolver := new(MockResolver)
	router := setupRouter(resolver)
	resolver.On("Resolve", mock.Anything, "token").Return(nil, errors.New("connection refused"))

	resp := doRequest(router, "/protected/resource", "Bearer token")

	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.JSONEq(t, `{"detail":"Internal server error"}`, resp.Body.String())
	assert.NotContains(t, resp.Body.String(), "connection refused")
}

func TestAdminOnly(t *testing.T) {
	resolver := new(MockResolver)
	router := setupRouter(resolver)
	resolver.On("Resolve", mock.Anything, "user-token").
		Return(&model.User{ID: uuid.New(), IsActive: true}, nil)
	resolver.On("Resolve", mock.Anything, "admin-token").
		Return(&model.User{ID: uuid.New(), IsActive: true, IsAdmin: true}, nil)

	resp := doRequest(router, "/protected/admin/resource", "Bearer user-token")
	assert.Equal(t, http.StatusForbidden, resp.Code)
	assert.JSONEq(t, `{"detail":"Not enough privileges"}`, resp.Body.String())

	resp = doRequest(router, "/protected/admin/resource", "Bearer admin-token")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "Admin access granted")
}

func TestAdminOnly_WithoutAuthenticate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin", middleware.AdminOnly(), func(c *gin.Context) { c.Status(http.StatusOK) })

	resp := doRequest(r, "/admin", "")

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}
