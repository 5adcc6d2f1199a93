package yaru

import (
	"errors"

	"github.com/iamkroot/yaru/packet"
	"github.com/iamkroot/yaru/sendwindow"
)

// Sentinel errors surfaced by Socket, per spec.md §7. The codec and send
// window errors are re-exported here so callers only need to import the
// root package and use errors.Is, the way the teacher's types package
// centralizes its sentinel errors in one file (types/error.go).
var (
	ErrPayloadTooLarge  = packet.ErrPayloadTooLarge
	ErrMalformedPacket  = packet.ErrMalformedPacket
	ErrChecksumMismatch = packet.ErrChecksumMismatch
	ErrSendWindowFull   = sendwindow.ErrSendWindowFull

	// ErrClosed is returned by Write once the socket has been closed. Absent from the Python reference, which has no
	// explicit close; added per spec.md §9's redesign flag.
	ErrClosed = errors.New("yaru: socket closed")

	// ErrNotConnected is returned by Write before Connect has
	// established a peer address.
	ErrNotConnected = errors.New("yaru: socket has no connected peer")
)
