package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("BLOG_TEST_STR", "value")
	t.Setenv("BLOG_TEST_BLANK", "   ")

	assert.Equal(t, "value", GetEnv("BLOG_TEST_STR", "def"))
	assert.Equal(t, "def", GetEnv("BLOG_TEST_BLANK", "def"))
	assert.Equal(t, "def", GetEnv("BLOG_TEST_UNSET", "def"))
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("BLOG_TEST_INT", "42")
	t.Setenv("BLOG_TEST_BAD_INT", "forty-two")

	assert.Equal(t, 42, GetEnvInt("BLOG_TEST_INT", 1))
	assert.Equal(t, 1, GetEnvInt("BLOG_TEST_BAD_INT", 1))
	assert.Equal(t, 1, GetEnvInt("BLOG_TEST_UNSET", 1))
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("BLOG_TEST_DUR", "1500ms")
	t.Setenv("BLOG_TEST_BAD_DUR", "soon")

	assert.Equal(t, 1500*time.Millisecond, GetEnvDuration("BLOG_TEST_DUR", time.Second))
	assert.Equal(t, time.Second, GetEnvDuration("BLOG_TEST_BAD_DUR", time.Second))
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("BLOG_TEST_BOOL", "true")
	t.Setenv("BLOG_TEST_BAD_BOOL", "maybe")

	assert.True(t, GetEnvBool("BLOG_TEST_BOOL", false))
	assert.True(t, GetEnvBool("BLOG_TEST_BAD_BOOL", true))
	assert.False(t, GetEnvBool("BLOG_TEST_UNSET", false))
}
