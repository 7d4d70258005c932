package resource

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrMemoryLimitExceeded is returned when the mapped-bytes limit would be exceeded.
var ErrMemoryLimitExceeded = errors.New("mapped memory limit exceeded")

// Config holds resource limits.
type Config struct {
	// MappedLimitBytes is the hard limit for bytes mapped by all buffers
	// sharing the controller. If 0, usage is only tracked.
	MappedLimitBytes int64

	// SyncBytesPerSec caps msync throughput. If 0, unlimited.
	SyncBytesPerSec int64
}

// Controller manages process-wide mapping resources.
type Controller struct {
	cfg Config

	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	syncLimiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	c := &Controller{cfg: cfg}

	if cfg.MappedLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MappedLimitBytes)
	}

	if cfg.SyncBytesPerSec > 0 {
		c.syncLimiter = rate.NewLimiter(rate.Limit(cfg.SyncBytesPerSec), int(cfg.SyncBytesPerSec))
	}

	return c
}

// AcquireMapped reserves bytes of mapped address space.
// Returns ErrMemoryLimitExceeded if limit would be exceeded.
// Non-blocking - callers decide whether to fail the resize.
func (c *Controller) AcquireMapped(bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}

	if c.memSem != nil {
		if !c.memSem.TryAcquire(bytes) {
			return ErrMemoryLimitExceeded
		}
	}

	c.memUsed.Add(bytes)
	return nil
}

// ReleaseMapped releases reserved address space.
func (c *Controller) ReleaseMapped(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}

	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// Mapped returns the bytes currently reserved.
func (c *Controller) Mapped() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// MappedLimit returns the configured limit in bytes (0 if unlimited).
func (c *Controller) MappedLimit() int64 {
	if c == nil {
		return 0
	}
	return c.cfg.MappedLimitBytes
}

// AcquireSync waits until the sync limit allows bytes to be flushed.
// Requests larger than one second of budget are split into bursts.
func (c *Controller) AcquireSync(ctx context.Context, bytes int) error {
	if c == nil || c.syncLimiter == nil {
		return nil
	}
	burst := c.syncLimiter.Burst()
	for bytes > 0 {
		n := min(bytes, burst)
		if err := c.syncLimiter.WaitN(ctx, n); err != nil {
			return err
		}
		bytes -= n
	}
	return nil
}

// TryAcquireSync attempts to take sync budget without blocking.
func (c *Controller) TryAcquireSync(bytes int) bool {
	if c == nil || c.syncLimiter == nil {
		return true
	}
	return c.syncLimiter.AllowN(time.Now(), bytes)
}
