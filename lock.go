package mmapbuf

import (
	"context"
)

// Acquire takes the cross-process lock of an IPC-backed buffer. Nested
// calls on the same Buffer only count. With blocking false a lock held by
// another process yields ErrWouldBlock. On buffers without IPC it is a no-op.
func (b *Buffer) Acquire(blocking bool) error {
	return b.AcquireContext(context.Background(), blocking)
}

// AcquireContext is Acquire with a context bounding a blocking wait.
func (b *Buffer) AcquireContext(ctx context.Context, blocking bool) error {
	if err := b.checkUsable(); err != nil {
		return err
	}
	return b.acquire(ctx, blocking)
}

// Release undoes one Acquire. The outermost release publishes length and
// capacity to other processes and gives the semaphore back.
func (b *Buffer) Release() error {
	if b.closed {
		return ErrClosed
	}
	if b.lock == nil {
		return nil
	}
	return b.release()
}

// WithLock runs fn while holding the lock.
func (b *Buffer) WithLock(blocking bool, fn func(*Buffer) error) (err error) {
	if err := b.Acquire(blocking); err != nil {
		return err
	}
	defer func() {
		if rerr := b.release(); rerr != nil && err == nil {
			err = rerr
		}
	}()
	return fn(b)
}

func (b *Buffer) acquire(ctx context.Context, blocking bool) error {
	if b.lock == nil {
		return nil
	}
	out, err := b.lock.Acquire(ctx, blocking)
	if out.First || err != nil {
		b.metrics.RecordLock(out.Waited, out.Contended, err)
	}
	if err != nil {
		return err
	}
	if out.First {
		if err := b.reload(ctx); err != nil {
			_, _ = b.lock.Release()
			return err
		}
	}
	return nil
}

func (b *Buffer) release() error {
	if b.lock == nil {
		return nil
	}
	if b.lock.Count() == 1 && !b.closed && !b.invalid {
		b.publish(b.length, b.capacity)
	}
	_, err := b.lock.Release()
	return err
}

// modify runs a mutating operation under the lock. Frozen, closed and
// invalid buffers are rejected before the lock is touched.
func (b *Buffer) modify(blocking bool, fn func(ctx context.Context) (bool, error)) (changed bool, err error) {
	if err := b.checkWritable(); err != nil {
		return false, err
	}
	ctx := context.Background()
	if err := b.acquire(ctx, blocking); err != nil {
		return false, err
	}
	defer func() {
		if rerr := b.release(); rerr != nil && err == nil {
			err = rerr
		}
	}()
	if err := b.checkWritable(); err != nil {
		return false, err
	}
	return fn(ctx)
}

// read runs a query under the lock.
func (b *Buffer) read(fn func() error) (err error) {
	if err := b.checkUsable(); err != nil {
		return err
	}
	if err := b.acquire(context.Background(), true); err != nil {
		return err
	}
	defer func() {
		if rerr := b.release(); rerr != nil && err == nil {
			err = rerr
		}
	}()
	if err := b.checkUsable(); err != nil {
		return err
	}
	return fn()
}
