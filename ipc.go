package mmapbuf

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/hupe1980/mmapbuf/internal/conv"
	"github.com/hupe1980/mmapbuf/internal/mmap"
	"github.com/hupe1980/mmapbuf/internal/semlock"
	"github.com/hupe1980/mmapbuf/internal/sysv"
)

// Shared header layout, little endian:
//
//	0  magic    uint32
//	4  version  uint32
//	8  length   uint64
//	16 capacity uint64
//	24 flags    uint32
//	28 reserved
//
// Anonymous segments place the content one page after the header so the
// content mapping stays page aligned.
const (
	headerSize    = 32
	headerMagic   = 0x4d4d4246 // "MMBF"
	headerVersion = 1

	flagTemporary = 1 << 0

	keyProject  = 'R'
	keyAttempts = 8
)

type ipcState struct {
	key       sysv.Key
	seg       *sysv.Segment
	sem       *sysv.Semaphore
	header    []byte
	headerSeg []byte // attached header-only segment of a file buffer
	creator   bool
	temporary bool // removed by the last handle to detach
	keyFile   string
}

func (b *Buffer) ipcConfig() IPCConfig {
	cfg := *b.opts.ipc
	if cfg.Perm == 0 {
		cfg.Perm = 0o600
	}
	return cfg
}

// openSharedAnonymous creates a content segment of length bytes, or
// attaches to an existing one when a key is given without a length.
func (b *Buffer) openSharedAnonymous(ctx context.Context, length int) error {
	cfg := b.ipcConfig()
	if cfg.Key > 0 && length <= 0 {
		return b.attachAnonymous(ctx, sysv.Key(cfg.Key))
	}
	if length <= 0 {
		return fmt.Errorf("%w: anonymous length must be positive", ErrInvalidArgument)
	}

	span := mmap.PageSize()
	st, data, err := b.createSegment(cfg, span+length)
	if errors.Is(err, os.ErrExist) && cfg.Key > 0 {
		return b.attachAnonymous(ctx, sysv.Key(cfg.Key))
	}
	if err != nil {
		return err
	}

	if err := b.resources.AcquireMapped(int64(length)); err != nil {
		b.abandon(ctx, st, data)
		return err
	}

	content := data[span:]
	if b.opts.hasFill {
		for i := range content {
			content[i] = b.opts.fill
		}
	}
	initHeader(data[:headerSize], length, length, st.temporary)

	m := mmap.Adopt(content, ProtReadWrite, func([]byte) error { return sysv.Detach(data) })
	if err := b.adopt(m); err != nil {
		b.resources.ReleaseMapped(int64(length))
		b.abandon(ctx, st, nil)
		return err
	}
	b.length = length
	st.header = data[:headerSize]

	if err := st.sem.SetValue(1); err != nil {
		_ = b.mapping.Close()
		b.mapping = nil
		b.resources.ReleaseMapped(int64(length))
		b.abandon(ctx, st, nil)
		return err
	}
	b.ipc = st
	b.lock = semlock.New(st.sem, b.opts.lockRetry)
	b.log = b.log.WithKey(int(st.key))
	b.log.LogIPC(ctx, int(st.key), true, length)
	return nil
}

func (b *Buffer) attachAnonymous(ctx context.Context, key sysv.Key) error {
	seg, err := sysv.OpenSegment(key, 0, 0, 0)
	if err != nil {
		return err
	}
	size, err := seg.Size()
	if err != nil {
		return err
	}
	span := mmap.PageSize()
	if size <= span {
		return fmt.Errorf("%w: segment %d is too small to hold a buffer", ErrInvalidArgument, key)
	}
	sem, err := sysv.OpenSemaphore(key, 0, 0)
	if err != nil {
		return err
	}
	data, err := seg.Attach(b.frozen)
	if err != nil {
		return err
	}

	capacity := size - span
	if err := b.resources.AcquireMapped(int64(capacity)); err != nil {
		_ = sysv.Detach(data)
		return err
	}
	prot := ProtReadWrite
	if b.frozen {
		prot = ProtRead
	}
	m := mmap.Adopt(data[span:], prot, func([]byte) error { return sysv.Detach(data) })
	if err := b.adopt(m); err != nil {
		b.resources.ReleaseMapped(int64(capacity))
		return err
	}

	b.ipc = &ipcState{key: key, seg: seg, sem: sem, header: data[:headerSize]}
	b.lock = semlock.New(sem, b.opts.lockRetry)
	b.log = b.log.WithKey(int(key))
	if err := b.syncHeader(ctx); err != nil {
		_ = b.mapping.Close()
		b.mapping = nil
		b.ipc, b.lock = nil, nil
		b.resources.ReleaseMapped(int64(capacity))
		return err
	}
	b.log.LogIPC(ctx, int(key), false, capacity)
	return nil
}

// setupIPC adds a shared header segment to a file buffer, or attaches to
// the one published under the configured key.
func (b *Buffer) setupIPC(ctx context.Context) error {
	cfg := b.ipcConfig()
	st, data, err := b.createSegment(cfg, headerSize)
	switch {
	case err == nil:
		initHeader(data, b.length, b.capacity, st.temporary)
		st.header, st.headerSeg = data, data
		if err := st.sem.SetValue(1); err != nil {
			b.abandon(ctx, st, data)
			return err
		}
		b.ipc = st
		b.lock = semlock.New(st.sem, b.opts.lockRetry)
		b.log = b.log.WithKey(int(st.key))
		b.log.LogIPC(ctx, int(st.key), true, headerSize)
		return nil
	case errors.Is(err, os.ErrExist) && cfg.Key > 0:
		return b.attachHeader(ctx, sysv.Key(cfg.Key))
	default:
		return err
	}
}

func (b *Buffer) attachHeader(ctx context.Context, key sysv.Key) error {
	seg, err := sysv.OpenSegment(key, 0, 0, 0)
	if err != nil {
		return err
	}
	size, err := seg.Size()
	if err != nil {
		return err
	}
	if size < headerSize {
		return fmt.Errorf("%w: segment %d is too small to hold a header", ErrInvalidArgument, key)
	}
	sem, err := sysv.OpenSemaphore(key, 0, 0)
	if err != nil {
		return err
	}
	data, err := seg.Attach(b.frozen)
	if err != nil {
		return err
	}

	b.ipc = &ipcState{key: key, seg: seg, sem: sem, header: data[:headerSize], headerSeg: data}
	b.lock = semlock.New(sem, b.opts.lockRetry)
	b.log = b.log.WithKey(int(key))
	if err := b.syncHeader(ctx); err != nil {
		return err
	}
	b.log.LogIPC(ctx, int(key), false, size)
	return nil
}

// createSegment creates a segment of size bytes and its semaphore. The
// semaphore is left at 0 so attachers wait until the creator has
// initialized the header. An explicit key that is already in use yields an
// error matching os.ErrExist; generated keys are retried.
func (b *Buffer) createSegment(cfg IPCConfig, size int) (*ipcState, []byte, error) {
	for attempt := 1; ; attempt++ {
		key := sysv.Key(cfg.Key)
		var keyFile string
		if key <= 0 {
			var err error
			if keyFile, err = tempKeyFile(b.fsys, ""); err != nil {
				return nil, nil, err
			}
			if key, err = sysv.Ftok(keyFile, keyProject); err != nil {
				_ = b.fsys.Remove(keyFile)
				return nil, nil, err
			}
		}

		seg, err := sysv.OpenSegment(key, size, sysv.Create|sysv.Exclusive, cfg.Perm)
		if err != nil {
			if keyFile != "" {
				_ = b.fsys.Remove(keyFile)
				if errors.Is(err, os.ErrExist) && attempt < keyAttempts {
					continue
				}
			}
			return nil, nil, err
		}

		st := &ipcState{key: key, seg: seg, creator: true, temporary: !cfg.Permanent, keyFile: keyFile}

		sem, err := sysv.OpenSemaphore(key, sysv.Create|sysv.Exclusive, cfg.Perm)
		if errors.Is(err, os.ErrExist) {
			// Left behind by an earlier owner of the key; the segment is ours.
			if sem, err = sysv.OpenSemaphore(key, 0, cfg.Perm); err == nil {
				err = sem.SetValue(0)
			}
		}
		if err != nil {
			b.abandon(context.Background(), st, nil)
			return nil, nil, err
		}
		st.sem = sem

		data, err := seg.Attach(false)
		if err != nil {
			b.abandon(context.Background(), st, nil)
			return nil, nil, err
		}
		return st, data, nil
	}
}

// abandon undoes a partially created IPC setup.
func (b *Buffer) abandon(ctx context.Context, st *ipcState, data []byte) {
	if data != nil {
		b.log.LogCleanup(ctx, "detach", sysv.Detach(data))
	}
	if st.sem != nil {
		b.log.LogCleanup(ctx, "semaphore", st.sem.Remove())
	}
	b.log.LogCleanup(ctx, "segment", st.seg.Remove())
	if st.keyFile != "" {
		b.log.LogCleanup(ctx, "key file", b.fsys.Remove(st.keyFile))
	}
}

// syncHeader takes and gives back the lock once, loading the shared state.
func (b *Buffer) syncHeader(ctx context.Context) error {
	if err := b.acquire(ctx, true); err != nil {
		return err
	}
	return b.release()
}

// reload adopts the length and capacity published by the last holder.
func (b *Buffer) reload(ctx context.Context) error {
	if b.ipc == nil {
		return nil
	}
	h := b.ipc.header
	if binary.LittleEndian.Uint32(h[0:4]) != headerMagic {
		return fmt.Errorf("%w: segment %d holds no buffer header", ErrInvalidArgument, b.ipc.key)
	}
	if v := binary.LittleEndian.Uint32(h[4:8]); v != headerVersion {
		return fmt.Errorf("%w: segment %d has header version %d", ErrInvalidArgument, b.ipc.key, v)
	}
	length, err := conv.Uint64ToInt(binary.LittleEndian.Uint64(h[8:16]))
	if err != nil {
		return fmt.Errorf("%w: segment %d length: %w", ErrInvalidArgument, b.ipc.key, err)
	}
	capacity, err := conv.Uint64ToInt(binary.LittleEndian.Uint64(h[16:24]))
	if err != nil {
		return fmt.Errorf("%w: segment %d capacity: %w", ErrInvalidArgument, b.ipc.key, err)
	}

	if !b.fixed && !b.anonymous && capacity != b.capacity {
		if err := b.followCapacity(ctx, capacity); err != nil {
			return err
		}
	}
	b.length = min(length, b.capacity)
	b.ipc.temporary = binary.LittleEndian.Uint32(h[24:28])&flagTemporary != 0
	return nil
}

// publish stores length and capacity for the next holder.
func (b *Buffer) publish(length, capacity int) {
	if b.ipc == nil || b.frozen || b.ipc.header == nil {
		return
	}
	h := b.ipc.header
	binary.LittleEndian.PutUint64(h[8:16], uint64(length))
	binary.LittleEndian.PutUint64(h[16:24], uint64(capacity))
}

func initHeader(h []byte, length, capacity int, temporary bool) {
	var flags uint32
	if temporary {
		flags |= flagTemporary
	}
	binary.LittleEndian.PutUint32(h[0:4], headerMagic)
	binary.LittleEndian.PutUint32(h[4:8], headerVersion)
	binary.LittleEndian.PutUint64(h[8:16], uint64(length))
	binary.LittleEndian.PutUint64(h[16:24], uint64(capacity))
	binary.LittleEndian.PutUint32(h[24:28], flags)
	clear(h[28:headerSize])
}

// closeIPC detaches the header segment. The creator removes its key file.
// A temporary set is removed by whichever handle sees no attachments left
// after detaching.
func (b *Buffer) closeIPC(ctx context.Context) error {
	st := b.ipc
	var err error
	if st.headerSeg != nil {
		err = sysv.Detach(st.headerSeg)
		st.headerSeg = nil
	}
	st.header = nil
	if st.creator && st.keyFile != "" {
		b.log.LogCleanup(ctx, "key file", b.fsys.Remove(st.keyFile))
	}
	if !st.temporary {
		return err
	}

	n, serr := st.seg.Attached()
	switch {
	case sysv.Gone(serr):
		return err
	case serr != nil:
		b.log.LogCleanup(ctx, "segment", serr)
		return err
	case n > 0:
		return err
	}
	b.log.LogCleanup(ctx, "segment", ignoreGone(st.seg.Remove()))
	b.log.LogCleanup(ctx, "semaphore", ignoreGone(st.sem.Remove()))
	return err
}

// ignoreGone drops the error of a removal another handle got to first.
func ignoreGone(err error) error {
	if sysv.Gone(err) {
		return nil
	}
	return err
}
