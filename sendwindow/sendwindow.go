// Package sendwindow implements the Send Window component of spec.md
// §4.2: unacknowledged outbound packets keyed by sequence number, the
// send_base/send_next bookkeeping, and cumulative-ack-driven retirement.
// It is grounded on yustack's transport/tcp sender type (snd.go): a
// struct holding sndUna/sndNxt and a handleRcvdSegment method that
// retires entries off the front of a write list on ack arrival, adapted
// from a TCP segment list to YARU's flat per-sequence packet map (no
// congestion control, no segment coalescing).
package sendwindow

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iamkroot/yaru/metrics"
	"github.com/iamkroot/yaru/packet"
	"github.com/iamkroot/yaru/retransmit"
	"github.com/iamkroot/yaru/seqnum"
	"github.com/iamkroot/yaru/tmutex"
)

// ErrSendWindowFull is returned by Enqueue when send_next would advance
// past send_base+WINDOW_SIZE.
var ErrSendWindowFull = errors.New("sendwindow: window is saturated")

// Transmitter hands a serialized packet to the underlying datagram
// transport. Implemented by the yaru package's UDP-backed endpoint; kept
// as an interface here so the window has no dependency on net.UDPConn,
// the same separation the teacher keeps between sender and
// endpoint.sendRaw.
type Transmitter interface {
	Transmit(pkt []byte) error
}

// Window is the sender side of one YARU endpoint. The zero value is not
// usable; construct with New. Window does not own its lock — it shares
// the endpoint-wide tmutex.Mutex with the endpoint's recvwindow.Window,
// per spec.md §5.
type Window struct {
	mu      *tmutex.Mutex
	size    seqnum.Size
	timeout time.Duration
	tx      Transmitter
	log     *logrus.Entry
	metrics *metrics.Socket

	sendBuf  map[seqnum.Value][]byte
	ackedSet map[seqnum.Value]struct{}
	timers   map[seqnum.Value]*retransmit.Timer

	sendBase seqnum.Value
	sendNext seqnum.Value
}

// New constructs a send window. mu must already be initialized
// (tmutex.Mutex.Init) and shared with the endpoint's receive window.
func New(mu *tmutex.Mutex, windowSize seqnum.Size, timeout time.Duration, tx Transmitter, log *logrus.Entry, m *metrics.Socket) *Window {
	return &Window{
		mu:       mu,
		size:     windowSize,
		timeout:  timeout,
		tx:       tx,
		log:      log,
		metrics:  m,
		sendBuf:  make(map[seqnum.Value][]byte),
		ackedSet: make(map[seqnum.Value]struct{}),
		timers:   make(map[seqnum.Value]*retransmit.Timer),
	}
}

// Enqueue assigns the next sequence number to data, transmits it, and
// arms its retransmission timer.
func (w *Window) Enqueue(data []byte) (seqnum.Value, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.sendNext.LessThan(w.sendBase.Add(w.size)) {
		return 0, ErrSendWindowFull
	}

	seq := w.sendNext
	pkt, err := packet.Make(uint64(seq), data)
	if err != nil {
		return 0, err
	}

	w.sendBuf[seq] = pkt
	w.sendNext = w.sendNext.Add(1)
	w.armTimer(seq)

	if err := w.tx.Transmit(pkt); err != nil {
		w.log.WithError(err).WithField("seq", uint64(seq)).Warn("sendwindow: transmit failed")
	} else if w.metrics != nil {
		w.metrics.IncPacketsSent()
	}
	if w.metrics != nil {
		w.metrics.SetSendWindowOccupancy(len(w.sendBuf))
	}

	return seq, nil
}

// OnAck processes an ACK for the single sequence number seq, per spec.md
// §4.2: seq is marked acked, and send_base then advances over the
// contiguous run of acked sequence numbers, retiring each. Stale acks
// (seq < send_base) and acks for sequence numbers never assigned
// (seq >= send_next, an impossible/malformed peer) are ignored.
func (w *Window) OnAck(seq seqnum.Value) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if seq.LessThan(w.sendBase) || !seq.LessThan(w.sendNext) {
		return
	}

	w.ackedSet[seq] = struct{}{}

	for {
		if _, ok := w.ackedSet[w.sendBase]; !ok {
			break
		}
		if t, ok := w.timers[w.sendBase]; ok {
			t.Stop()
			delete(w.timers, w.sendBase)
		}
		delete(w.sendBuf, w.sendBase)
		delete(w.ackedSet, w.sendBase)
		w.sendBase = w.sendBase.Add(1)
	}

	if w.metrics != nil {
		w.metrics.SetSendWindowOccupancy(len(w.sendBuf))
	}
}

// onTimeout re-checks that seq is still unacknowledged before
// retransmitting, closing the race spec.md §9 calls out between a
// timeout firing and an ack retiring the same seq concurrently. Rearm is
// performed under mu, re-checked against send_buf immediately before the
// call, the same way OnAck calls Stop under mu — retransmit.Timer's own
// contract requires both ends of its lifecycle to be serialized by the
// caller, and Stop/Rearm on the very same *retransmit.Timer from two
// unsynchronized goroutines would otherwise race.
func (w *Window) onTimeout(seq seqnum.Value) {
	w.mu.Lock()
	pkt, ok := w.sendBuf[seq]
	w.mu.Unlock()

	if !ok {
		return
	}

	if err := w.tx.Transmit(pkt); err != nil {
		w.log.WithError(err).WithField("seq", uint64(seq)).Warn("sendwindow: retransmit failed")
	} else if w.metrics != nil {
		w.metrics.IncPacketsRetransmitted()
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.sendBuf[seq]; !ok {
		return
	}
	if timer, ok := w.timers[seq]; ok {
		timer.Rearm(func() { w.onTimeout(seq) })
	}
}

// armTimer must be called with mu held.
func (w *Window) armTimer(seq seqnum.Value) {
	w.timers[seq] = retransmit.New(w.timeout, func() { w.onTimeout(seq) })
}

// Occupied reports the number of packets currently unacknowledged.
func (w *Window) Occupied() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.sendBuf)
}

// Base returns send_base, for tests and invariant checks.
func (w *Window) Base() seqnum.Value {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sendBase
}

// Next returns send_next, for tests and invariant checks.
func (w *Window) Next() seqnum.Value {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sendNext
}

// TimerCount returns the number of live retransmission timers, for the
// send-window invariant check in tests (|send_buf| = |timers|).
func (w *Window) TimerCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.timers)
}
