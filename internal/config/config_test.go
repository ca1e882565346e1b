package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 1.0, cfg.MinClipSize)
	assert.Equal(t, 30.0, cfg.RotateHandleOffset)
	assert.False(t, cfg.CenteredScaling)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("CENTERED_SCALING", "true")
	t.Setenv("ROTATE_HANDLE_OFFSET", "45")
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.True(t, cfg.CenteredScaling)
	assert.Equal(t, 45.0, cfg.RotateHandleOffset)
}

func TestOrigins(t *testing.T) {
	cfg := Config{AllowedOrigins: " http://a.test:5173 ,, https://b.test"}
	assert.Equal(t, []string{"http://a.test:5173", "https://b.test"}, cfg.Origins())
	assert.Equal(t, []string{"a.test:5173", "b.test"}, cfg.OriginHosts())
}

func TestLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"", slog.LevelInfo},
		{"loud", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, (&Config{LogLevel: tt.in}).Level())
		})
	}
}
