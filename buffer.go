package mmapbuf

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/hupe1980/mmapbuf/internal/fs"
	"github.com/hupe1980/mmapbuf/internal/mmap"
	"github.com/hupe1980/mmapbuf/internal/resource"
	"github.com/hupe1980/mmapbuf/internal/semlock"
)

// Buffer is a mutable byte sequence living in a memory mapping.
//
// The logical length is at most the mapped capacity. Edits that grow past the
// capacity remap the backing file at a larger size; slices returned by Bytes
// must not be retained across such edits.
//
// A Buffer is not safe for concurrent use by multiple goroutines. IPC-backed
// buffers serialize processes through a semaphore, not goroutines.
type Buffer struct {
	opts      options
	log       *Logger
	metrics   MetricsCollector
	resources *resource.Controller
	fsys      fs.FileSystem

	path      string
	mapping   *mmap.Mapping
	length    int
	capacity  int
	offset    int64
	increment int
	prot      Prot
	scope     Scope

	fixed     bool
	anonymous bool
	frozen    bool
	invalid   bool
	closed    bool

	ipc  *ipcState
	lock *semlock.Lock
}

func newBuffer(o options) *Buffer {
	return &Buffer{
		opts:      o,
		log:       o.logger,
		metrics:   o.metrics,
		resources: o.resources,
		fsys:      o.fileSystem,
		increment: o.increment,
		scope:     o.scope,
	}
}

// Open maps the file at path.
//
// The mapping covers the whole file unless WithOffset or WithLength select a
// window, in which case the buffer is fixed-size. ModeRead (the default)
// yields a frozen buffer. A writable open of an empty file pre-extends it by
// the grow increment.
func Open(path string, optFns ...Option) (*Buffer, error) {
	o := applyOptions(optFns)
	b := newBuffer(o)
	b.path = path
	b.log = o.logger.WithPath(path)

	ctx := context.Background()
	err := b.openPath(ctx)
	if err == nil && o.ipc != nil {
		if err = b.setupIPC(ctx); err != nil {
			_ = b.teardown(ctx)
		}
	}
	b.log.LogOpen(ctx, "file", b.length, b.capacity, err)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Buffer) openPath(ctx context.Context) error {
	o := b.opts
	if (o.hasLength && o.length < 0) || (o.hasOffset && o.offset < 0) {
		return fmt.Errorf("%w: negative length or offset", ErrInvalidArgument)
	}

	f, err := b.fsys.OpenFile(b.path, o.mode.openFlags(), o.perm)
	if err != nil {
		return fmt.Errorf("open %s: %w", b.path, err)
	}
	defer f.Close()

	size, err := fs.Size(f)
	if err != nil {
		return fmt.Errorf("stat %s: %w", b.path, err)
	}
	if o.offset > size {
		return fmt.Errorf("%w: offset %d beyond file size %d", ErrInvalidArgument, o.offset, size)
	}

	length := size - o.offset
	if o.hasLength {
		if o.offset+int64(o.length) > size {
			return fmt.Errorf("%w: window %d+%d beyond file size %d", ErrInvalidArgument, o.offset, o.length, size)
		}
		length = int64(o.length)
	}

	b.offset = o.offset
	b.fixed = o.hasLength || o.hasOffset
	b.frozen = !o.mode.Writable()
	b.prot = ProtRead
	if !b.frozen {
		b.prot = ProtReadWrite
	}
	b.length = int(length)

	capacity := b.length
	if capacity == 0 && !b.frozen && b.resizable() {
		if err := fs.Extend(f, int64(b.increment)); err != nil {
			return fmt.Errorf("extend %s: %w", b.path, err)
		}
		capacity = b.increment
	}

	return b.mapInitial(ctx, f.Fd(), capacity)
}

// OpenFile maps an already open file. The buffer is fixed-size and never
// closes f; f must stay open only until OpenFile returns.
func OpenFile(f *os.File, optFns ...Option) (*Buffer, error) {
	o := applyOptions(optFns)
	b := newBuffer(o)
	b.path = f.Name()
	b.log = o.logger.WithPath(b.path)

	ctx := context.Background()
	err := b.openDescriptor(ctx, f)
	b.log.LogOpen(ctx, "descriptor", b.length, b.capacity, err)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Buffer) openDescriptor(ctx context.Context, f *os.File) error {
	o := b.opts
	if (o.hasLength && o.length < 0) || o.offset < 0 {
		return fmt.Errorf("%w: negative length or offset", ErrInvalidArgument)
	}
	fi, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", b.path, err)
	}
	size := fi.Size()
	if o.offset > size {
		return fmt.Errorf("%w: offset %d beyond file size %d", ErrInvalidArgument, o.offset, size)
	}
	length := size - o.offset
	if o.hasLength {
		if o.offset+int64(o.length) > size {
			return fmt.Errorf("%w: window %d+%d beyond file size %d", ErrInvalidArgument, o.offset, o.length, size)
		}
		length = int64(o.length)
	}

	b.offset = o.offset
	b.fixed = true
	b.frozen = !o.mode.Writable()
	b.prot = ProtRead
	if !b.frozen {
		b.prot = ProtReadWrite
	}
	b.length = int(length)
	return b.mapInitial(ctx, f.Fd(), b.length)
}

// NewAnonymous creates a buffer of length bytes that is not backed by a file.
//
// Anonymous buffers are writable unless WithMode(ModeRead) is given, and are
// always fixed-size. With WithIPC the region is a System V shared segment
// that other processes can attach to by key; a length of 0 with a positive
// key attaches to an existing segment and takes its size.
func NewAnonymous(length int, optFns ...Option) (*Buffer, error) {
	o := applyOptions(optFns)
	if !o.modeSet {
		o.mode = ModeReadWrite
	}
	b := newBuffer(o)
	b.anonymous = true
	b.fixed = true
	b.frozen = !o.mode.Writable()
	b.prot = ProtRead
	if !b.frozen {
		b.prot = ProtReadWrite
	}

	ctx := context.Background()
	if o.hasOffset {
		b.log.WarnContext(ctx, "offset ignored for anonymous buffer", "offset", o.offset)
	}
	if o.hasLength {
		length = o.length
	}

	var err error
	if o.ipc != nil {
		err = b.openSharedAnonymous(ctx, length)
	} else {
		err = b.openAnonymous(ctx, length)
	}
	b.log.LogOpen(ctx, "anonymous", b.length, b.capacity, err)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Buffer) openAnonymous(_ context.Context, length int) error {
	if length <= 0 {
		return fmt.Errorf("%w: anonymous length must be positive", ErrInvalidArgument)
	}
	if err := b.resources.AcquireMapped(int64(length)); err != nil {
		return err
	}
	m, err := mmap.MapAnon(length, ProtReadWrite, b.scope)
	if err != nil {
		b.resources.ReleaseMapped(int64(length))
		return mapErr("mmap", err)
	}
	if b.opts.hasFill {
		data := m.Bytes()
		for i := range data {
			data[i] = b.opts.fill
		}
	}
	if err := b.adopt(m); err != nil {
		b.resources.ReleaseMapped(int64(length))
		return err
	}
	b.length = length
	return nil
}

// mapInitial maps capacity bytes of fd at b.offset and applies the initial
// advice.
func (b *Buffer) mapInitial(_ context.Context, fd uintptr, capacity int) error {
	if err := b.resources.AcquireMapped(int64(capacity)); err != nil {
		return err
	}
	m, err := mmap.Map(fd, b.offset, capacity, b.prot, b.scope)
	if err != nil {
		b.resources.ReleaseMapped(int64(capacity))
		return mapErr("mmap", err)
	}
	if err := b.adopt(m); err != nil {
		b.resources.ReleaseMapped(int64(capacity))
		return err
	}
	return nil
}

// adopt installs m as the current mapping, applying the final protection
// and the configured advice.
func (b *Buffer) adopt(m *mmap.Mapping) error {
	if m.Prot() != b.prot {
		if err := m.Protect(b.prot); err != nil {
			_ = m.Close()
			return mapErr("mprotect", err)
		}
	}
	if b.opts.advice != AdviceNormal {
		if err := m.Advise(b.opts.advice); err != nil {
			_ = m.Close()
			return mapErr("madvise", err)
		}
	}
	b.mapping = m
	b.capacity = m.Size()
	return nil
}

// resizable reports whether the backing can follow a capacity change.
func (b *Buffer) resizable() bool {
	return !b.fixed && !b.anonymous && b.scope == ScopeShared && b.path != ""
}

// Close truncates a shared file-backed buffer to its length, unmaps it and
// releases IPC objects this handle created. It is idempotent.
func (b *Buffer) Close() error {
	if b == nil || b.closed {
		return nil
	}
	return b.teardown(context.Background())
}

func (b *Buffer) teardown(ctx context.Context) error {
	b.closed = true

	var errs []error
	locked := false
	if b.lock != nil && !b.invalid {
		if err := b.acquire(ctx, true); err != nil {
			errs = append(errs, err)
		} else {
			locked = true
		}
	}

	truncate := !b.invalid && !b.frozen && b.resizable()
	if locked {
		capacity := b.capacity
		if truncate {
			capacity = b.length
		}
		b.publish(b.length, capacity)
	}

	held := int64(b.capacity)
	if b.mapping != nil {
		if err := b.mapping.Close(); err != nil {
			errs = append(errs, mapErr("munmap", err))
		}
	}

	if truncate {
		if err := b.fsys.Truncate(b.path, b.offset+int64(b.length)); err != nil {
			errs = append(errs, fmt.Errorf("truncate %s: %w", b.path, err))
		} else {
			b.capacity = b.length
		}
	}

	if locked {
		if err := b.release(); err != nil {
			errs = append(errs, err)
		}
	}
	for b.lock != nil && b.lock.Held() {
		if _, err := b.lock.Release(); err != nil {
			errs = append(errs, err)
			break
		}
	}
	if b.ipc != nil {
		errs = append(errs, b.closeIPC(ctx))
	}

	b.resources.ReleaseMapped(held)
	b.mapping = nil
	return errors.Join(errs...)
}

func (b *Buffer) checkUsable() error {
	if b.closed {
		return ErrClosed
	}
	if b.invalid {
		return ErrInvalidState
	}
	return nil
}

func (b *Buffer) checkWritable() error {
	if err := b.checkUsable(); err != nil {
		return err
	}
	if b.frozen {
		return ErrReadOnly
	}
	return nil
}

// content is the logical view of the mapping.
func (b *Buffer) content() []byte {
	if b.mapping == nil {
		return nil
	}
	return b.mapping.Bytes()[:b.length]
}

// data is the full mapped capacity.
func (b *Buffer) data() []byte {
	if b.mapping == nil {
		return nil
	}
	return b.mapping.Bytes()
}
