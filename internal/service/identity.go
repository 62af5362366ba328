package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"taskmanager/internal/apperror"
	"taskmanager/internal/auth"
	"taskmanager/internal/model"
	"taskmanager/internal/repository"
)

// IdentityResolver turns a bearer token into the user it was issued to.
type IdentityResolver struct {
	tokens *auth.TokenManager
	users  repository.UserRepositoryInterface
}

func NewIdentityResolver(tokens *auth.TokenManager, users repository.UserRepositoryInterface) *IdentityResolver {
	return &IdentityResolver{tokens: tokens, users: users}
}

// Resolve validates token and loads its subject. Every failure short of a
// database error is reported as apperror.ErrInvalidCredentials.
func (r *IdentityResolver) Resolve(ctx context.Context, token string) (*model.User, error) {
	claims, err := r.tokens.Validate(token)
	if err != nil {
		return nil, apperror.ErrInvalidCredentials
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, apperror.ErrInvalidCredentials
	}

	user, err := r.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, apperror.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func RequireActive(user *model.User) error {
	if !user.IsActive {
		return apperror.ErrInactiveUser
	}
	return nil
}

func RequireAdmin(user *model.User) error {
	if !user.IsAdmin {
		return apperror.ErrNotEnoughPrivilege
	}
	return nil
}
