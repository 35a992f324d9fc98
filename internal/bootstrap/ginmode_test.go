package bootstrap

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestSetGinMode(t *testing.T) {
	t.Cleanup(func() { gin.SetMode(gin.TestMode) })

	cases := map[string]string{
		"production":  gin.ReleaseMode,
		"Prod":        gin.ReleaseMode,
		"test":        gin.TestMode,
		"development": gin.DebugMode,
		"":            gin.DebugMode,
	}
	for env, want := range cases {
		SetGinMode(env)
		assert.Equal(t, want, gin.Mode(), "APP_ENV=%q", env)
	}
}
