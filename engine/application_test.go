package engine

import (
	"testing"

	"github.com/spaghettifunk/wobble/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultApplicationConfig(t *testing.T) {
	cfg, err := DefaultApplicationConfig()
	require.NoError(t, err)

	assert.Equal(t, "Wobble", cfg.Name)
	assert.Equal(t, uint32(1024), cfg.StartWidth)
	assert.Equal(t, uint32(768), cfg.StartHeight)
	assert.Equal(t, core.InfoLevel, cfg.LogLevel)
	assert.False(t, cfg.Debug)
}

func TestParseApplicationConfig(t *testing.T) {
	cfg, err := ParseApplicationConfig([]byte(`
name = "test"
start_width = 640
start_height = 480
log_level = "debug"
debug = true
`))
	require.NoError(t, err)
	assert.Equal(t, "test", cfg.Name)
	assert.Equal(t, uint32(0), cfg.StartPosX)
	assert.Equal(t, core.DebugLevel, cfg.LogLevel)
	assert.True(t, cfg.Debug)
}

func TestParseApplicationConfigDefaultsLogLevel(t *testing.T) {
	cfg, err := ParseApplicationConfig([]byte("name = \"x\"\nstart_width = 1\nstart_height = 1\n"))
	require.NoError(t, err)
	assert.Equal(t, core.InfoLevel, cfg.LogLevel)
}

func TestParseApplicationConfigRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"malformed", "name = "},
		{"missing name", "start_width = 1\nstart_height = 1\n"},
		{"zero width", "name = \"x\"\nstart_width = 0\nstart_height = 1\n"},
		{"bad level", "name = \"x\"\nstart_width = 1\nstart_height = 1\nlog_level = \"loud\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseApplicationConfig([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}
