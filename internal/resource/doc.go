// Package resource implements the Controller for process-wide limits on mapped buffers.
//
// The Controller manages two resources:
//
//   - Mapped bytes: track and cap the address space held by buffers (non-blocking, fail-fast)
//   - Sync IO: rate-limit bytes handed to msync so large flushes do not starve other IO
//
// # Mapped Bytes
//
// Tracking uses a weighted semaphore for the hard limit and an atomic counter
// for usage. AcquireMapped is non-blocking and returns ErrMemoryLimitExceeded
// immediately when the limit would be exceeded:
//
//	rc := resource.NewController(resource.Config{
//	    MappedLimitBytes: 1 << 30, // 1GB of mappings
//	})
//
//	if err := rc.AcquireMapped(newCap - oldCap); err != nil {
//	    // refuse to grow
//	}
//
// # Sync Rate Limiting
//
// Token bucket limiter consumed by Flush before each msync:
//
//	rc := resource.NewController(resource.Config{
//	    SyncBytesPerSec: 64 << 20,
//	})
//	if err := rc.AcquireSync(ctx, capacity); err != nil {
//	    return err
//	}
//
// # Nil Safety
//
// All methods handle nil Controller gracefully - they become no-ops.
// This allows optional resource limiting without nil checks everywhere.
package resource
