package splice

import "bytes"

// StripBounds returns the range left after removing leading and trailing
// whitespace.
func StripBounds(data []byte) (start, end int) {
	end = len(data)
	for start < end && IsSpace(data[start]) {
		start++
	}
	for end > start && IsSpace(data[end-1]) {
		end--
	}
	return start, end
}

// Strip moves the non-blank middle of data to offset 0 and returns its length.
func Strip(data []byte) int {
	start, end := StripBounds(data)
	if start > 0 {
		copy(data, data[start:end])
	}
	return end - start
}

// ChopLength returns the length after removing the last byte, or a trailing
// CRLF as a unit.
func ChopLength(data []byte) int {
	n := len(data)
	switch {
	case n == 0:
		return 0
	case n >= 2 && data[n-2] == '\r' && data[n-1] == '\n':
		return n - 2
	default:
		return n - 1
	}
}

// ChompNewline returns the length after removing a trailing "\n" or "\r\n".
func ChompNewline(data []byte) int {
	n := len(data)
	if n >= 2 && data[n-2] == '\r' && data[n-1] == '\n' {
		return n - 2
	}
	if n >= 1 && data[n-1] == '\n' {
		return n - 1
	}
	return n
}

// ChompLength returns the length after removing a trailing sep. A "\n" sep
// behaves like ChompNewline; an empty sep removes every trailing CR and LF.
func ChompLength(data []byte, sep []byte) int {
	n := len(data)
	switch {
	case len(sep) == 0:
		for n > 0 && (data[n-1] == '\n' || data[n-1] == '\r') {
			n--
		}
		return n
	case len(sep) == 1 && sep[0] == '\n':
		return ChompNewline(data)
	case bytes.HasSuffix(data, sep):
		return n - len(sep)
	default:
		return n
	}
}
