// Package buffer provides small byte-slice helpers used by the receive
// window, adapted from yustack's buffer package (View), trimmed to what
// YARU actually needs: Prependable is dropped, and since YARU has no
// scatter-gather segments, VectorisedView is dropped in favor of a plain
// Concat helper for joining contiguous, already-delivered payloads.
package buffer

// View is a slice of a buffer, with convenience methods.
type View []byte

// NewView allocates a new buffer and returns an initialized view that
// covers the whole buffer.
func NewView(size int) View {
	return make(View, size)
}

// TrimFront removes the first "count" bytes from the visible section of
// the buffer.
func (v *View) TrimFront(count int) {
	*v = (*v)[count:]
}

// Concat returns a single View holding the concatenation of views, in
// order. It always allocates, so the returned View owns its storage
// independently of its inputs.
func Concat(views []View) View {
	size := 0
	for _, v := range views {
		size += len(v)
	}

	out := make(View, size)
	u := out
	for _, v := range views {
		n := copy(u, v)
		u = u[n:]
	}
	return out
}
