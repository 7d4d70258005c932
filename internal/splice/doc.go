// Package splice implements the byte-level algorithms behind every in-place
// buffer edit.
//
// Everything here works on a plain []byte whose len is the mapped capacity and
// an explicit logical length. Nothing allocates a second copy of the content;
// the caller is responsible for making room (ensuring capacity) before calling
// [Apply] or [ApplyAll] with a growing edit.
package splice
