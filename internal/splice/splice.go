package splice

// Resolve turns a possibly negative position into an absolute one.
// Negative positions count back from length. ok is false when the result
// falls outside [0, length].
func Resolve(pos, length int) (abs int, ok bool) {
	if pos < 0 {
		pos += length
	}
	if pos < 0 || pos > length {
		return pos, false
	}
	return pos, true
}

// Clamp shortens remove so that [begin, begin+remove) ends at length at most.
// begin must already be resolved.
func Clamp(begin, remove, length int) int {
	if remove < 0 {
		return 0
	}
	if begin+remove > length {
		return length - begin
	}
	return remove
}

// Apply replaces data[begin:begin+remove] with repl and returns the new
// logical length. data must be large enough to hold the result; bytes outside
// the edited range keep their values and order.
func Apply(data []byte, length, begin, remove int, repl []byte) int {
	tail := begin + remove
	newTail := begin + len(repl)
	if tail != newTail {
		copy(data[newTail:], data[tail:length])
	}
	copy(data[begin:], repl)
	return length - remove + len(repl)
}

// Edit is one pending replacement against a snapshot of the content.
type Edit struct {
	Begin  int
	Remove int
	Insert []byte
}

// Delta is the change in length caused by e.
func (e Edit) Delta() int {
	return len(e.Insert) - e.Remove
}

// Peak returns the largest length reached while applying edits right to left
// starting from length, and the final length. edits must be sorted by Begin
// and must not overlap.
func Peak(length int, edits []Edit) (peak, final int) {
	peak, final = length, length
	for i := len(edits) - 1; i >= 0; i-- {
		final += edits[i].Delta()
		peak = max(peak, final)
	}
	return peak, final
}

// ApplyAll applies edits from the last to the first so that earlier offsets
// stay valid, and returns the new length. data must hold the peak length.
func ApplyAll(data []byte, length int, edits []Edit) int {
	for i := len(edits) - 1; i >= 0; i-- {
		e := edits[i]
		length = Apply(data, length, e.Begin, e.Remove, e.Insert)
	}
	return length
}
