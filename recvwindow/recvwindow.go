// Package recvwindow implements the Receive Window component of spec.md
// §4.3: out-of-order inbound payloads buffered by sequence number,
// recv_base bookkeeping, and non-blocking in-order delivery. Grounded on
// yustack's transport/tcp receiver type (rcv.go), which holds rcvNxt and
// a pending-segment structure for data that arrived ahead of rcvNxt;
// adapted here to a flat per-sequence payload map (YARU has no segment
// coalescing or out-of-order SACK block negotiation, only duplicate
// single-sequence ACKs per spec.md §3).
package recvwindow

import (
	"net"

	"github.com/sirupsen/logrus"

	"github.com/iamkroot/yaru/buffer"
	"github.com/iamkroot/yaru/metrics"
	"github.com/iamkroot/yaru/seqnum"
	"github.com/iamkroot/yaru/tmutex"
	"github.com/iamkroot/yaru/waiter"
)

// AckSender transmits an ACK packet for seq to addr. Implemented by the
// yaru package's UDP-backed endpoint.
type AckSender interface {
	SendAck(seq seqnum.Value, addr net.Addr) error
}

// Window is the receiver side of one YARU endpoint. The zero value is
// not usable; construct with New. Window shares its mutex with the
// endpoint's sendwindow.Window, per spec.md §5.
type Window struct {
	mu      *tmutex.Mutex
	size    seqnum.Size
	acks    AckSender
	log     *logrus.Entry
	metrics *metrics.Socket
	readers waiter.Queue

	recvBuf  map[seqnum.Value]buffer.View
	recvBase seqnum.Value
}

// New constructs a receive window. mu must already be initialized
// (tmutex.Mutex.Init) and shared with the endpoint's send window.
func New(mu *tmutex.Mutex, windowSize seqnum.Size, acks AckSender, log *logrus.Entry, m *metrics.Socket) *Window {
	return &Window{
		mu:      mu,
		size:    windowSize,
		acks:    acks,
		log:     log,
		metrics: m,
		recvBuf: make(map[seqnum.Value]buffer.View),
	}
}

// OnData applies spec.md §4.3's three dispositions to a validated
// (seq, payload) pair arriving from addr: in-window new data is stored
// and acked, below-window data is re-acked without storing (the peer's
// prior ack was presumably lost), and anything else is dropped silently.
func (w *Window) OnData(seq seqnum.Value, payload []byte, addr net.Addr) {
	w.mu.Lock()
	defer w.mu.Unlock()

	base := w.recvBase
	upperExclusive := base.Add(w.size)
	lowerInclusive := base.Sub(w.size)

	switch {
	case seq.InWindow(base, w.size):
		w.sendAck(seq, addr)
		if _, exists := w.recvBuf[seq]; !exists {
			v := make(buffer.View, len(payload))
			copy(v, payload)
			w.recvBuf[seq] = v
		}
		if w.metrics != nil {
			w.metrics.SetRecvWindowOccupancy(len(w.recvBuf))
		}
		w.notifyIfDeliverable()

	case lowerInclusive.LessThanEq(seq) && seq.LessThan(base):
		w.sendAck(seq, addr)
		if w.log != nil {
			w.log.WithField("seq", uint64(seq)).Debug("recvwindow: below-window data, re-acking")
		}

	default:
		_ = upperExclusive // documents the in-window case's upper bound for readers
		if w.metrics != nil {
			w.metrics.IncPacketsDropped()
		}
		if w.log != nil {
			w.log.WithField("seq", uint64(seq)).Warn("recvwindow: out-of-range sequence dropped")
		}
	}
}

// sendAck must be called with mu held; it drops (and logs) ack transport
// errors rather than surfacing them, since acks are best-effort.
func (w *Window) sendAck(seq seqnum.Value, addr net.Addr) {
	if w.acks == nil {
		return
	}
	if err := w.acks.SendAck(seq, addr); err != nil && w.log != nil {
		w.log.WithError(err).WithField("seq", uint64(seq)).Warn("recvwindow: failed to send ack")
	}
}

// notifyIfDeliverable must be called with mu held.
func (w *Window) notifyIfDeliverable() {
	if _, ok := w.recvBuf[w.recvBase]; ok {
		w.readers.Notify(waiter.EventIn)
	}
}

// Read returns the concatenation of the contiguous run of payloads
// starting at recv_base, advancing recv_base past them. It never blocks:
// if recv_base has not arrived yet, it returns an empty, non-nil slice.
func (w *Window) Read() []byte {
	w.mu.Lock()
	defer w.mu.Unlock()

	var views []buffer.View
	for {
		v, ok := w.recvBuf[w.recvBase]
		if !ok {
			break
		}
		views = append(views, v)
		delete(w.recvBuf, w.recvBase)
		w.recvBase = w.recvBase.Add(1)
	}

	if w.metrics != nil {
		w.metrics.SetRecvWindowOccupancy(len(w.recvBuf))
	}

	if len(views) == 0 {
		return []byte{}
	}
	return buffer.Concat(views)
}

// Readable returns a channel that receives once data becomes available
// to Read (spec.md §5 "Suspension points": Read itself still never
// blocks; this is an additive convenience so a caller, like
// cmd/yaru-recv, need not busy-poll).
func (w *Window) Readable() chan struct{} {
	entry, ch := waiter.NewChannelEntry(nil)
	w.readers.EventRegister(&entry, waiter.EventIn)
	return ch
}

// Base returns recv_base, for tests and invariant checks.
func (w *Window) Base() seqnum.Value {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.recvBase
}

// Buffered returns the number of payloads currently held in recv_buf.
func (w *Window) Buffered() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.recvBuf)
}

// Keys returns the sequence numbers currently buffered, for the
// receive-window invariant check in tests.
func (w *Window) Keys() []seqnum.Value {
	w.mu.Lock()
	defer w.mu.Unlock()
	keys := make([]seqnum.Value, 0, len(w.recvBuf))
	for k := range w.recvBuf {
		keys = append(keys, k)
	}
	return keys
}
