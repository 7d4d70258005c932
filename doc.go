// Package mmapbuf provides a resizable, memory-mapped byte buffer that can be
// edited in place like a string.
//
// A Buffer maps a file, an anonymous region or a System V shared segment and
// tracks a logical length separately from the mapped capacity. Every
// size-changing edit is a single range replacement: the tail is moved once and
// the new bytes are copied in. Growing past the capacity extends the backing
// file and remaps it; Flush and Close shrink the file back to the content.
//
// # Quick Start
//
//	buf, err := mmapbuf.Open("data.txt", mmapbuf.WithMode(mmapbuf.ModeReadWrite))
//	if err != nil {
//	    return err
//	}
//	defer buf.Close()
//
//	_ = buf.Replace(2, 3, []byte("XY"))   // splice
//	_ = buf.Append([]byte("ABC"))         // may grow and remap
//	_, _ = buf.Gsub(mmapbuf.MustCompile(`(\w+)@`), []byte("${1} at "))
//	_ = buf.Flush(mmapbuf.SyncSync)       // msync, shrink file to Len()
//
// # Size Rules
//
//   - Buffers opened with WithLength or WithOffset, descriptors passed to
//     OpenFile and anonymous buffers are fixed-size: edits must keep the
//     length, and a rejected edit changes nothing.
//   - Private (copy-on-write) buffers cannot grow.
//   - ModeRead and Protect(ProtRead) freeze a buffer: every modifying
//     operation returns ErrReadOnly.
//
// # Remapping
//
// A grow is unmap, extend the file by writing its last byte, map again. If
// the new mapping cannot be established the old one is restored; if that
// fails too the buffer reports ErrInvalidState until it is closed. Slices
// returned by Bytes are invalid after any operation that may remap.
//
// # Sharing Between Processes
//
// WithIPC coordinates processes through a System V semaphore keyed by an
// integer. Mutating operations take the lock around each edit; Acquire and
// Release hold it across several. Nested acquisitions by one Buffer count
// instead of touching the semaphore again.
//
//	a, _ := mmapbuf.NewAnonymous(4096, mmapbuf.WithIPC(mmapbuf.IPCConfig{Key: 0x4d42}))
//	b, _ := mmapbuf.NewAnonymous(0, mmapbuf.WithIPC(mmapbuf.IPCConfig{Key: 0x4d42}))
//
//	_ = a.Acquire(true)
//	err := b.Acquire(false) // ErrWouldBlock
//	_ = a.Release()
//
// A Buffer is not safe for concurrent use by multiple goroutines.
package mmapbuf
