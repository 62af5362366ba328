package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"taskmanager/internal/apperror"
	"taskmanager/internal/auth"
	"taskmanager/internal/model"
	"taskmanager/internal/repository"
	"taskmanager/internal/validate"
)

const (
	msgUsernameTaken   = "Username already registered"
	msgEmailTaken      = "Email already registered"
	msgUserNotFound    = "User not found"
	msgSelfDeactivate  = "Cannot deactivate yourself"
	msgSelfDelete      = "Cannot delete yourself"
	msgPasswordTooLong = "Password must be at most 72 bytes"
)

type RegisterInput struct {
	Username string
	Email    string
	Password string
	FullName *string
}

// UpdateSelfInput carries the optional profile fields a user may change on their own account.
type UpdateSelfInput struct {
	Email    *string
	FullName *string
}

type UserService struct {
	users  repository.UserRepositoryInterface
	hasher *auth.PasswordHasher
	tokens *auth.TokenManager
	log    logrus.FieldLogger
}

func NewUserService(
	users repository.UserRepositoryInterface,
	hasher *auth.PasswordHasher,
	tokens *auth.TokenManager,
	log logrus.FieldLogger,
) *UserService {
	return &UserService{users: users, hasher: hasher, tokens: tokens, log: log}
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	return s.register(ctx, in, false)
}

func (s *UserService) register(ctx context.Context, in RegisterInput, admin bool) (*model.User, error) {
	if err := validate.Registration(in.Username, in.Email, in.Password); err != nil {
		return nil, err
	}

	existing, err := s.users.FindByUsername(ctx, in.Username)
	if err != nil {
		return nil, fmt.Errorf("lookup username: %w", err)
	}
	if existing != nil {
		return nil, apperror.Conflict(msgUsernameTaken)
	}

	existing, err = s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("lookup email: %w", err)
	}
	if existing != nil {
		return nil, apperror.Conflict(msgEmailTaken)
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:       in.Username,
		Email:          in.Email,
		HashedPassword: hash,
		FullName:       validate.SanitizePtr(in.FullName),
		IsActive:       true,
		IsAdmin:        admin,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, s.duplicateConflict(ctx, in.Username)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": user.Username,
		"admin":    user.IsAdmin,
	}).Info("user registered")
	return user, nil
}

// duplicateConflict picks the conflict message for a unique violation that
// slipped past the pre-insert lookups.
func (s *UserService) duplicateConflict(ctx context.Context, username string) error {
	if existing, err := s.users.FindByUsername(ctx, username); err == nil && existing != nil {
		return apperror.Conflict(msgUsernameTaken)
	}
	return apperror.Conflict(msgEmailTaken)
}

func (s *UserService) hash(password string) (string, error) {
	hash, err := s.hasher.Hash(password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", apperror.Validation(msgPasswordTooLong)
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}

// Authenticate checks a username and password pair. An unknown username and
// a wrong password are indistinguishable to the caller.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("lookup username: %w", err)
	}
	if user == nil || !s.hasher.Verify(password, user.HashedPassword) {
		s.log.WithField("username", username).Warn("failed login attempt")
		return nil, apperror.ErrIncorrectLogin
	}
	return user, nil
}

// Login authenticates the pair and issues an access token for the user.
func (s *UserService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return "", err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

func (s *UserService) UpdateSelf(ctx context.Context, user *model.User, in UpdateSelfInput) (*model.User, error) {
	if in.Email != nil && *in.Email != "" && *in.Email != user.Email {
		if !validate.Email(*in.Email) {
			return nil, apperror.Validation(validate.MsgEmail)
		}
		existing, err := s.users.FindByEmail(ctx, *in.Email)
		if err != nil {
			return nil, fmt.Errorf("lookup email: %w", err)
		}
		if existing != nil {
			return nil, apperror.Conflict(msgEmailTaken)
		}
		user.Email = *in.Email
	}

	if in.FullName != nil && *in.FullName != "" {
		user.FullName = validate.SanitizePtr(in.FullName)
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, apperror.Conflict(msgEmailTaken)
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

func (s *UserService) ListAll(ctx context.Context, admin *model.User) ([]model.User, error) {
	if err := RequireAdmin(admin); err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// SetActive activates or deactivates the target account. An admin may not
// deactivate their own account.
func (s *UserService) SetActive(ctx context.Context, admin *model.User, targetID uuid.UUID, active bool) (*model.User, error) {
	if err := RequireAdmin(admin); err != nil {
		return nil, err
	}
	if !active && targetID == admin.ID {
		return nil, apperror.BadRequest(msgSelfDeactivate)
	}

	user, err := s.users.GetByID(ctx, targetID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, apperror.NotFound(msgUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	user.IsActive = active
	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.NotFound(msgUserNotFound)
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	event := "user activated"
	if !active {
		event = "user deactivated"
	}
	s.log.WithFields(logrus.Fields{"user_id": user.ID, "by": admin.ID}).Info(event)
	return user, nil
}

// Delete removes the target account together with every task it owns.
func (s *UserService) Delete(ctx context.Context, admin *model.User, targetID uuid.UUID) error {
	if err := RequireAdmin(admin); err != nil {
		return err
	}
	if targetID == admin.ID {
		return apperror.BadRequest(msgSelfDelete)
	}

	if err := s.users.Delete(ctx, targetID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperror.NotFound(msgUserNotFound)
		}
		return fmt.Errorf("delete user: %w", err)
	}

	s.log.WithFields(logrus.Fields{"user_id": targetID, "by": admin.ID}).Info("user deleted")
	return nil
}

// EnsureAdmin makes sure an active admin account named username exists,
// promoting an existing account or registering a new one.
func (s *UserService) EnsureAdmin(ctx context.Context, username, email, password string) (*model.User, error) {
	existing, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("lookup username: %w", err)
	}
	if existing == nil {
		return s.register(ctx, RegisterInput{Username: username, Email: email, Password: password}, true)
	}

	if existing.IsAdmin && existing.IsActive {
		return existing, nil
	}
	existing.IsAdmin = true
	existing.IsActive = true
	if err := s.users.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("promote user: %w", err)
	}
	s.log.WithField("user_id", existing.ID).Info("user promoted to admin")
	return existing, nil
}
