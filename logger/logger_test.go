package logger

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestInit(t *testing.T) {
	t.Run("default level", func(t *testing.T) {
		Init()
		assert.Equal(t, logrus.InfoLevel, Log.GetLevel())
		assert.IsType(t, &logrus.JSONFormatter{}, Log.Formatter)
	})

	t.Run("explicit level", func(t *testing.T) {
		Init("debug")
		assert.Equal(t, logrus.DebugLevel, Log.GetLevel())
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		Init("loud")
		assert.Equal(t, logrus.InfoLevel, Log.GetLevel())
	})
}
