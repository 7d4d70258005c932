package semlock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

type mockSemaphore struct {
	mock.Mock
}

func (m *mockSemaphore) TryDown() (bool, error) {
	args := m.Called()
	return args.Bool(0), args.Error(1)
}

func (m *mockSemaphore) Up() error {
	return m.Called().Error(0)
}

// chanSemaphore is an in-process binary semaphore shared by several Locks,
// standing in for a kernel semaphore shared by several processes.
type chanSemaphore struct {
	ch chan struct{}
}

func newChanSemaphore() *chanSemaphore {
	s := &chanSemaphore{ch: make(chan struct{}, 1)}
	s.ch <- struct{}{}
	return s
}

func (s *chanSemaphore) TryDown() (bool, error) {
	select {
	case <-s.ch:
		return true, nil
	default:
		return false, nil
	}
}

func (s *chanSemaphore) Up() error {
	select {
	case s.ch <- struct{}{}:
		return nil
	default:
		return errors.New("semaphore overflow")
	}
}

func TestLock_Reentrant(t *testing.T) {
	sem := new(mockSemaphore)
	sem.On("TryDown").Return(true, nil).Once()
	sem.On("Up").Return(nil).Once()

	l := New(sem, 0)
	ctx := context.Background()

	out, err := l.Acquire(ctx, true)
	require.NoError(t, err)
	assert.True(t, out.First)
	assert.False(t, out.Contended)

	for i := 0; i < 2; i++ {
		out, err = l.Acquire(ctx, false)
		require.NoError(t, err)
		assert.False(t, out.First)
	}
	assert.Equal(t, 3, l.Count())

	last, err := l.Release()
	require.NoError(t, err)
	assert.False(t, last)
	last, err = l.Release()
	require.NoError(t, err)
	assert.False(t, last)
	last, err = l.Release()
	require.NoError(t, err)
	assert.True(t, last)
	assert.False(t, l.Held())

	sem.AssertExpectations(t)
}

func TestLock_NonBlockingContended(t *testing.T) {
	sem := new(mockSemaphore)
	sem.On("TryDown").Return(false, nil).Once()

	l := New(sem, time.Millisecond)
	out, err := l.Acquire(context.Background(), false)
	assert.ErrorIs(t, err, ErrWouldBlock)
	assert.True(t, out.Contended)
	assert.Equal(t, 0, l.Count())

	sem.AssertExpectations(t)
	sem.AssertNotCalled(t, "Up")
}

func TestLock_BlockingRetries(t *testing.T) {
	sem := new(mockSemaphore)
	sem.On("TryDown").Return(false, nil).Twice()
	sem.On("TryDown").Return(true, nil).Once()

	l := New(sem, time.Millisecond)
	out, err := l.Acquire(context.Background(), true)
	require.NoError(t, err)
	assert.True(t, out.First)
	assert.True(t, out.Contended)
	assert.Equal(t, 1, l.Count())

	sem.AssertNumberOfCalls(t, "TryDown", 3)
}

func TestLock_BlockingCanceled(t *testing.T) {
	sem := new(mockSemaphore)
	sem.On("TryDown").Return(false, nil)

	l := New(sem, time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := l.Acquire(ctx, true)
	assert.Error(t, err)
	assert.False(t, l.Held())
}

func TestLock_TryDownError(t *testing.T) {
	boom := errors.New("semop failed")
	sem := new(mockSemaphore)
	sem.On("TryDown").Return(false, boom)

	l := New(sem, 0)
	_, err := l.Acquire(context.Background(), true)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, l.Count())
}

func TestLock_ReleaseErrors(t *testing.T) {
	sem := new(mockSemaphore)
	l := New(sem, 0)

	_, err := l.Release()
	assert.ErrorIs(t, err, ErrNotLocked)

	boom := errors.New("semop failed")
	sem.On("TryDown").Return(true, nil)
	sem.On("Up").Return(boom)

	_, err = l.Acquire(context.Background(), true)
	require.NoError(t, err)
	last, err := l.Release()
	assert.True(t, last)
	assert.ErrorIs(t, err, ErrRelease)
	assert.ErrorIs(t, err, boom)
}

func TestLock_TwoHandlesContend(t *testing.T) {
	shared := newChanSemaphore()
	a := New(shared, time.Millisecond)
	b := New(shared, time.Millisecond)
	ctx := context.Background()

	_, err := a.Acquire(ctx, true)
	require.NoError(t, err)

	_, err = b.Acquire(ctx, false)
	assert.ErrorIs(t, err, ErrWouldBlock)

	var (
		mu       sync.Mutex
		released bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out, err := b.Acquire(gctx, true)
		if err != nil {
			return err
		}
		mu.Lock()
		defer mu.Unlock()
		if !released {
			return errors.New("acquired while held")
		}
		if !out.Contended {
			return errors.New("expected contention")
		}
		_, err = b.Release()
		return err
	})

	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	released = true
	_, err = a.Release()
	mu.Unlock()
	require.NoError(t, err)

	require.NoError(t, g.Wait())
	assert.False(t, a.Held())
	assert.False(t, b.Held())
}
