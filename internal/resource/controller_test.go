package resource

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Mapped(t *testing.T) {
	c := NewController(Config{MappedLimitBytes: 100})

	require.NoError(t, c.AcquireMapped(50))
	assert.Equal(t, int64(50), c.Mapped())

	require.NoError(t, c.AcquireMapped(40))
	assert.Equal(t, int64(90), c.Mapped())

	// Acquire 20 (should fail - limit exceeded)
	err := c.AcquireMapped(20)
	assert.ErrorIs(t, err, ErrMemoryLimitExceeded)
	assert.Equal(t, int64(90), c.Mapped())

	c.ReleaseMapped(50)
	assert.Equal(t, int64(40), c.Mapped())

	require.NoError(t, c.AcquireMapped(20))
	assert.Equal(t, int64(60), c.Mapped())
}

func TestController_Unlimited(t *testing.T) {
	c := NewController(Config{})

	require.NoError(t, c.AcquireMapped(1000))
	assert.Equal(t, int64(1000), c.Mapped())
	assert.Equal(t, int64(0), c.MappedLimit())

	c.ReleaseMapped(500)
	assert.Equal(t, int64(500), c.Mapped())

	assert.True(t, c.TryAcquireSync(1<<30))
	assert.NoError(t, c.AcquireSync(context.Background(), 1<<30))
}

func TestController_NonPositive(t *testing.T) {
	c := NewController(Config{MappedLimitBytes: 10})
	assert.NoError(t, c.AcquireMapped(-1))
	assert.NoError(t, c.AcquireMapped(0))
	c.ReleaseMapped(-1)
	assert.Equal(t, int64(0), c.Mapped())
}

func TestController_NilSafe(t *testing.T) {
	var c *Controller

	assert.NoError(t, c.AcquireMapped(100))
	c.ReleaseMapped(100)
	assert.Equal(t, int64(0), c.Mapped())
	assert.Equal(t, int64(0), c.MappedLimit())

	assert.NoError(t, c.AcquireSync(context.Background(), 100))
	assert.True(t, c.TryAcquireSync(100))
}

func TestController_Sync(t *testing.T) {
	c := NewController(Config{SyncBytesPerSec: 1000})

	assert.True(t, c.TryAcquireSync(100))
	assert.NoError(t, c.AcquireSync(context.Background(), 500))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, c.AcquireSync(ctx, 5000))
}
