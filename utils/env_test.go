package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvAsDuration(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"milliseconds", "120000", 2 * time.Minute},
		{"duration string", "90s", 90 * time.Second},
		{"garbage falls back", "soon", time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_GRACE", tt.value)
			assert.Equal(t, tt.want, GetEnvAsDuration("TEST_GRACE", time.Minute))
		})
	}
}

func TestGetEnvDefaults(t *testing.T) {
	assert.Equal(t, "fallback", GetEnvAsString("SAFEHER_UNSET_KEY", "fallback"))
	assert.Equal(t, 42, GetEnvAsInt("SAFEHER_UNSET_KEY", 42))
	assert.True(t, GetEnvAsBool("SAFEHER_UNSET_KEY", true))

	t.Setenv("SAFEHER_BLANK", "   ")
	assert.Equal(t, "fallback", GetEnvAsString("SAFEHER_BLANK", "fallback"))
}

func TestIsPlaceholder(t *testing.T) {
	assert.True(t, IsPlaceholder(""))
	assert.True(t, IsPlaceholder("mongodb+srv://xxxxx"))
	assert.False(t, IsPlaceholder("mongodb://localhost:27017"))
}
