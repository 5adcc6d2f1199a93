// Package seqnum defines the types and arithmetic for YARU sequence
// numbers, the way yustack's transport/tcp package defines seqnum.Value
// and seqnum.Size for TCP segments.
package seqnum

// Value is a sequence number, identifying a DATA packet assigned by the
// sender. Unlike TCP's 32-bit, wrapping sequence space, YARU uses a 64-bit
// space that is never expected to wrap in the lifetime of a connection
// (spec.md §3), so comparisons are plain unsigned comparisons rather than
// the wraparound-aware arithmetic TCP needs.
type Value uint64

// Size is a difference between two Values, or a window width.
type Size uint64

// Add returns v+s.
func (v Value) Add(s Size) Value {
	return Value(uint64(v) + uint64(s))
}

// Sub returns v-s, saturating at zero instead of wrapping if the
// subtraction would underflow — used to compute a window's lower bound
// near the start of the sequence space.
func (v Value) Sub(s Size) Value {
	if uint64(s) > uint64(v) {
		return 0
	}
	return Value(uint64(v) - uint64(s))
}

// Size returns w-v, the number of sequence numbers between v (inclusive)
// and w (exclusive).
func (v Value) Size(w Value) Size {
	return Size(uint64(w) - uint64(v))
}

// LessThan returns true if v occurs before w in the sequence space.
func (v Value) LessThan(w Value) bool {
	return uint64(v) < uint64(w)
}

// LessThanEq returns true if v occurs before or at w.
func (v Value) LessThanEq(w Value) bool {
	return uint64(v) <= uint64(w)
}

// InWindow returns true if v lies in [base, base+size).
func (v Value) InWindow(base Value, size Size) bool {
	return base.LessThanEq(v) && v.LessThan(base.Add(size))
}
