//go:build linux && (amd64 || arm64)

package sysv

import (
	"errors"
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Missing from x/sys/unix.
const (
	ipcNoWait = 0x800
	cmdGetVal = 12
	cmdSetVal = 16
	shmRdOnly = 0x1000
)

func ipcFlags(flags Flags, perm os.FileMode) int {
	f := permBits(perm)
	if flags&Create != 0 {
		f |= unix.IPC_CREAT
	}
	if flags&Exclusive != 0 {
		f |= unix.IPC_EXCL
	}
	return f
}

// Ftok derives a key from the identity of an existing file, the way ftok(3) does.
func Ftok(path string, proj byte) (Key, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return 0, fmt.Errorf("sysv: ftok %s: %w", path, err)
	}
	k := (uint64(st.Ino) & 0xffff) | ((uint64(st.Dev) & 0xff) << 16) | (uint64(proj) << 24)
	return Key(int32(uint32(k))), nil
}

// Semaphore is a System V semaphore set with a single member.
type Semaphore struct {
	id  int
	key Key
}

// OpenSemaphore gets or creates the semaphore set for key.
// A newly created semaphore starts at 0.
func OpenSemaphore(key Key, flags Flags, perm os.FileMode) (*Semaphore, error) {
	id, _, errno := unix.Syscall(unix.SYS_SEMGET, uintptr(key), 1, uintptr(ipcFlags(flags, perm)))
	if errno != 0 {
		return nil, fmt.Errorf("sysv: semget: %w", errno)
	}
	return &Semaphore{id: int(id), key: key}, nil
}

// ID returns the kernel identifier.
func (s *Semaphore) ID() int { return s.id }

// Key returns the key the semaphore was opened with.
func (s *Semaphore) Key() Key { return s.key }

type sembuf struct {
	num uint16
	op  int16
	flg int16
}

func (s *Semaphore) op(delta int16) error {
	buf := sembuf{num: 0, op: delta, flg: ipcNoWait}
	for {
		_, _, errno := unix.Syscall(unix.SYS_SEMOP, uintptr(s.id), uintptr(unsafe.Pointer(&buf)), 1)
		switch errno {
		case 0:
			return nil
		case unix.EINTR:
			continue
		case unix.EAGAIN:
			return ErrWouldBlock
		default:
			return fmt.Errorf("sysv: semop: %w", errno)
		}
	}
}

// TryDown decrements the semaphore without blocking. It reports false when
// the semaphore is already at zero.
func (s *Semaphore) TryDown() (bool, error) {
	err := s.op(-1)
	if errors.Is(err, ErrWouldBlock) {
		return false, nil
	}
	return err == nil, err
}

// Up increments the semaphore without blocking.
func (s *Semaphore) Up() error { return s.op(1) }

func (s *Semaphore) ctl(cmd int, arg uintptr) (int, error) {
	r, _, errno := unix.Syscall6(unix.SYS_SEMCTL, uintptr(s.id), 0, uintptr(cmd), arg, 0, 0)
	if errno != 0 {
		return 0, fmt.Errorf("sysv: semctl: %w", errno)
	}
	return int(r), nil
}

// SetValue sets the semaphore value.
func (s *Semaphore) SetValue(v int) error {
	_, err := s.ctl(cmdSetVal, uintptr(v))
	return err
}

// Value returns the semaphore value.
func (s *Semaphore) Value() (int, error) {
	return s.ctl(cmdGetVal, 0)
}

// Remove deletes the semaphore set. Processes blocked on it get EIDRM.
func (s *Semaphore) Remove() error {
	_, err := s.ctl(unix.IPC_RMID, 0)
	return err
}

// Segment is a System V shared-memory segment.
type Segment struct {
	id  int
	key Key
}

// OpenSegment gets or creates the segment for key. size may be 0 when
// attaching to an existing segment.
func OpenSegment(key Key, size int, flags Flags, perm os.FileMode) (*Segment, error) {
	id, err := unix.SysvShmGet(int(key), size, ipcFlags(flags, perm))
	if err != nil {
		return nil, fmt.Errorf("sysv: shmget: %w", err)
	}
	return &Segment{id: id, key: key}, nil
}

// ID returns the kernel identifier.
func (s *Segment) ID() int { return s.id }

// Key returns the key the segment was opened with.
func (s *Segment) Key() Key { return s.key }

// Size returns the segment size reported by the kernel.
func (s *Segment) Size() (int, error) {
	var desc unix.SysvShmDesc
	if _, err := unix.SysvShmCtl(s.id, unix.IPC_STAT, &desc); err != nil {
		return 0, fmt.Errorf("sysv: shmctl: %w", err)
	}
	return int(desc.Segsz), nil
}

// Attached returns the number of processes attached to the segment.
func (s *Segment) Attached() (int, error) {
	var desc unix.SysvShmDesc
	if _, err := unix.SysvShmCtl(s.id, unix.IPC_STAT, &desc); err != nil {
		return 0, fmt.Errorf("sysv: shmctl: %w", err)
	}
	return int(desc.Nattch), nil
}

// Attach maps the segment into the process.
func (s *Segment) Attach(readOnly bool) ([]byte, error) {
	flag := 0
	if readOnly {
		flag = shmRdOnly
	}
	data, err := unix.SysvShmAttach(s.id, 0, flag)
	if err != nil {
		return nil, fmt.Errorf("sysv: shmat: %w", err)
	}
	return data, nil
}

// Remove marks the segment for destruction once the last process detaches.
func (s *Segment) Remove() error {
	if _, err := unix.SysvShmCtl(s.id, unix.IPC_RMID, nil); err != nil {
		return fmt.Errorf("sysv: shmctl: %w", err)
	}
	return nil
}

// Detach unmaps memory returned by Attach.
func Detach(data []byte) error {
	return unix.SysvShmDetach(data)
}

// Unavailable reports whether err means the kernel refuses System V IPC to
// this process, as in restricted containers.
func Unavailable(err error) bool {
	return errors.Is(err, ErrUnsupported) ||
		errors.Is(err, unix.ENOSYS) ||
		errors.Is(err, unix.EPERM) ||
		errors.Is(err, unix.EACCES) ||
		errors.Is(err, unix.ENOSPC)
}

// Gone reports whether err means the object was already removed.
func Gone(err error) bool {
	return errors.Is(err, unix.EINVAL) || errors.Is(err, unix.EIDRM)
}
