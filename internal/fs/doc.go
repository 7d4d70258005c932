// Package fs provides the backing-file abstraction for mapped buffers.
//
// The package defines two key interfaces:
//
//   - [File]: an open backing file that can be resized and handed to mmap
//   - [FileSystem]: opens, stats, truncates and removes files
//
// # Implementations
//
//   - [LocalFS]: Production implementation using standard os package
//   - [FaultyFS]: Test utility for fault injection (simulate I/O errors)
//
// # Resizing
//
// [Resize] grows a file with the "write the last byte" trick: it seeks to
// size-1 and writes a single zero byte, so no dedicated resize primitive is
// needed and the gap reads back as zeros. Shrinking truncates.
//
// Tests can inject [FaultyFS] to make a resize fail halfway through a remap:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule("data.bin", fs.Fault{FailAfterBytes: 0})
//	// every write through a newly opened data.bin now fails
package fs
