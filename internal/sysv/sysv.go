package sysv

import (
	"errors"
	"os"
)

var (
	// ErrUnsupported is returned on platforms without System V IPC.
	ErrUnsupported = errors.New("sysv: unsupported platform")
	// ErrWouldBlock is returned when a non-blocking semop would have to wait.
	ErrWouldBlock = errors.New("sysv: operation would block")
)

// Key identifies an IPC object.
type Key int

// Private requests a new object that has no key.
const Private Key = 0

// Flags for Open*.
type Flags int

const (
	// Create creates the object when it does not exist.
	Create Flags = 1 << iota
	// Exclusive fails with an error matching os.ErrExist if it already exists.
	Exclusive
)

func permBits(perm os.FileMode) int {
	return int(perm.Perm())
}
