//go:build !unix

package mmap

import "os"

// PageSize returns the OS page size.
func PageSize() int { return os.Getpagesize() }

func osMap(uintptr, int64, int, Prot, Scope) ([]byte, error) { return nil, ErrUnsupported }
func osMapAnon(int, Prot, Scope) ([]byte, error)             { return nil, ErrUnsupported }
func osUnmap([]byte) error                                   { return ErrUnsupported }
func osProtect([]byte, Prot) error                           { return ErrUnsupported }
func osAdvise([]byte, AccessPattern) error                   { return ErrUnsupported }
func osSync([]byte, SyncMode) error                          { return ErrUnsupported }
func osLock([]byte) error                                    { return ErrUnsupported }
func osUnlock([]byte) error                                  { return ErrUnsupported }
func osLockAll(LockFlags) error                              { return ErrUnsupported }
func osUnlockAll() error                                     { return ErrUnsupported }
