package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"taskmanager/internal/auth"
	"taskmanager/internal/database"
	"taskmanager/internal/model"
	"taskmanager/internal/repository"
	"taskmanager/internal/service"
)

const strongPassword = "Abc12345!"

type fixture struct {
	db       *gorm.DB
	users    *service.UserService
	tasks    *service.TaskService
	resolver *service.IdentityResolver
	tokens   *auth.TokenManager
	logHook  *test.Hook
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, _, err := database.Open("sqlite://:memory:", gormlogger.Discard)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	tokens, err := auth.NewTokenManager("test-secret", "HS256", time.Hour)
	require.NoError(t, err)

	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	return &fixture{
		db:       db,
		users:    service.NewUserService(userRepo, auth.NewPasswordHasher(bcrypt.MinCost), tokens, log),
		tasks:    service.NewTaskService(taskRepo, log),
		resolver: service.NewIdentityResolver(tokens, userRepo),
		tokens:   tokens,
		logHook:  hook,
	}
}

func (f *fixture) register(t *testing.T, username string) *model.User {
	t.Helper()
	user, err := f.users.Register(context.Background(), service.RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: strongPassword,
	})
	require.NoError(t, err)
	return user
}

func (f *fixture) admin(t *testing.T, username string) *model.User {
	t.Helper()
	user, err := f.users.EnsureAdmin(context.Background(), username, username+"@example.com", strongPassword)
	require.NoError(t, err)
	return user
}

func strPtr(s string) *string { return &s }
