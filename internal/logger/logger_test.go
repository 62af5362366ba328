package logger_test

import (
	"testing"

	"taskmanager/internal/logger"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	log := logger.New("warn", false)
	assert.Equal(t, logrus.WarnLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)

	log = logger.New("bogus", false)
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())

	log = logger.New("info", true)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, log.Formatter)
}

func TestGorm(t *testing.T) {
	assert.NotNil(t, logger.Gorm(logger.New("info", false), false))
}
