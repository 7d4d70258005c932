// Package semlock implements a re-entrant cross-process lock on top of a
// binary semaphore.
//
// The re-entrancy count lives in the process-local Lock, never in shared
// memory: nested acquisitions on the same handle cost one semaphore decrement
// and one increment in total. A Lock is not safe for concurrent use by
// multiple goroutines; it serializes processes, not threads.
package semlock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

var (
	// ErrWouldBlock is returned by a non-blocking Acquire while another holder has the semaphore.
	ErrWouldBlock = errors.New("semlock: lock is held elsewhere")
	// ErrNotLocked is returned by Release on a handle that holds nothing.
	ErrNotLocked = errors.New("semlock: release without acquire")
	// ErrRelease wraps a failure to give the semaphore back.
	ErrRelease = errors.New("semlock: release failed")
)

// DefaultRetryInterval paces blocking acquisition.
const DefaultRetryInterval = 10 * time.Millisecond

// Semaphore is the cross-process primitive. TryDown must not block and
// reports false when the semaphore is already taken.
type Semaphore interface {
	TryDown() (bool, error)
	Up() error
}

// Outcome describes one Acquire call.
type Outcome struct {
	// First is true when this call took the semaphore.
	First bool
	// Contended is true when at least one attempt found the semaphore taken.
	Contended bool
	// Waited is the time spent retrying.
	Waited time.Duration
}

// Lock is a re-entrant handle on a Semaphore.
type Lock struct {
	sem     Semaphore
	count   int
	limiter *rate.Limiter
}

// New returns a Lock over sem. A non-positive retry uses DefaultRetryInterval.
func New(sem Semaphore, retry time.Duration) *Lock {
	if retry <= 0 {
		retry = DefaultRetryInterval
	}
	return &Lock{
		sem:     sem,
		limiter: rate.NewLimiter(rate.Every(retry), 1),
	}
}

// Count returns the current re-entrancy depth.
func (l *Lock) Count() int { return l.count }

// Held reports whether this handle holds the semaphore.
func (l *Lock) Held() bool { return l.count > 0 }

// Acquire takes the lock. Nested calls only bump the count. When the
// semaphore is taken, a non-blocking call fails with ErrWouldBlock and a
// blocking call retries until it succeeds or ctx is done.
func (l *Lock) Acquire(ctx context.Context, blocking bool) (Outcome, error) {
	if l.count > 0 {
		l.count++
		return Outcome{}, nil
	}

	var out Outcome
	start := time.Now()
	for {
		ok, err := l.sem.TryDown()
		if err != nil {
			return out, err
		}
		if ok {
			break
		}
		out.Contended = true
		if !blocking {
			return out, ErrWouldBlock
		}
		if err := l.limiter.Wait(ctx); err != nil {
			out.Waited = time.Since(start)
			return out, err
		}
	}

	if out.Contended {
		out.Waited = time.Since(start)
	}
	out.First = true
	l.count = 1
	return out, nil
}

// Release undoes one Acquire. The outermost release gives the semaphore
// back and reports last=true.
func (l *Lock) Release() (last bool, err error) {
	if l.count == 0 {
		return false, ErrNotLocked
	}
	l.count--
	if l.count > 0 {
		return false, nil
	}
	if err := l.sem.Up(); err != nil {
		return true, fmt.Errorf("%w: %w", ErrRelease, err)
	}
	return true, nil
}
