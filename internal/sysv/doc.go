// Package sysv wraps the System V IPC primitives used by shared buffers:
// a one-element semaphore set and a shared-memory segment, both addressed by
// an integer [Key].
//
// Only linux/amd64 and linux/arm64 are supported. Everywhere else the
// constructors return [ErrUnsupported].
package sysv
