package mmapbuf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	opts, err := cfg.Options()
	require.NoError(t, err)

	o := applyOptions(opts)
	assert.Equal(t, ModeRead, o.mode)
	assert.Equal(t, ScopeShared, o.scope)
	assert.Equal(t, DefaultIncrement, o.increment)
	assert.False(t, o.hasLength)
	assert.False(t, o.hasFill)
	assert.Nil(t, o.ipc)
}

func TestConfig_Options(t *testing.T) {
	cfg := &Config{
		Mode:        "rw",
		Perm:        "0640",
		Scope:       "private",
		Length:      "4KiB",
		Offset:      "512",
		Advice:      "sequential",
		Increment:   "1MiB",
		Initialize:  ' ',
		MemoryLimit: "64MB",
		LockRetry:   5 * time.Millisecond,
		IPC:         &IPCSection{Key: 42, Perm: "0660"},
		LogLevel:    "debug",
	}

	opts, err := cfg.Options()
	require.NoError(t, err)

	o := applyOptions(opts)
	assert.Equal(t, ModeReadWrite, o.mode)
	assert.EqualValues(t, 0o640, o.perm)
	assert.Equal(t, ScopePrivate, o.scope)
	assert.Equal(t, 4096, o.length)
	assert.EqualValues(t, 512, o.offset)
	assert.Equal(t, AdviceSequential, o.advice)
	assert.Equal(t, 1<<20, o.increment)
	assert.True(t, o.hasFill)
	assert.Equal(t, byte(' '), o.fill)
	assert.NotNil(t, o.resources)
	assert.Equal(t, 5*time.Millisecond, o.lockRetry)
	require.NotNil(t, o.ipc)
	assert.Equal(t, 42, o.ipc.Key)
	assert.EqualValues(t, 0o660, o.ipc.Perm)
}

func TestConfig_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"mode", func(c *Config) { c.Mode = "x" }},
		{"scope", func(c *Config) { c.Scope = "global" }},
		{"advice", func(c *Config) { c.Advice = "often" }},
		{"initialize", func(c *Config) { c.Initialize = 256 }},
		{"length", func(c *Config) { c.Length = "lots" }},
		{"memory limit", func(c *Config) { c.MemoryLimit = "-1" }},
		{"ipc key", func(c *Config) { c.IPC = &IPCSection{Key: -3} }},
		{"perm", func(c *Config) { c.Perm = "rwx" }},
		{"log level", func(c *Config) { c.LogLevel = "trace" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			_, err := cfg.Options()
			require.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}
