// Package yaru implements the socket façade described in spec.md §4.5/§6:
// a reliable, in-order, connection-oriented byte stream layered on
// net.UDPConn, composed from the packet, sendwindow, and recvwindow
// packages. Grounded on yustack's transport/tcp endpoint (endpoint.go),
// which similarly composes a sender, a receiver, and a background
// protocol goroutine behind a small bind/connect/read/write/close API.
package yaru

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/rs/xid"
	"github.com/sirupsen/logrus"

	"github.com/iamkroot/yaru/metrics"
	"github.com/iamkroot/yaru/packet"
	"github.com/iamkroot/yaru/recvwindow"
	"github.com/iamkroot/yaru/seqnum"
	"github.com/iamkroot/yaru/sendwindow"
	"github.com/iamkroot/yaru/tmutex"
)

// Socket is one YARU endpoint. The zero value is not usable; construct
// with New.
type Socket struct {
	id  xid.ID
	cfg Config
	log *logrus.Entry

	mu   tmutex.Mutex
	send *sendwindow.Window
	recv *recvwindow.Window

	metrics *metrics.Socket

	conn *net.UDPConn

	peerMu sync.RWMutex
	peer   *net.UDPAddr

	closeOnce sync.Once
	closed    chan struct{}
}

// New creates an unbound endpoint. Unlike spec.md §6's "new()" contract,
// it does not spawn the receive loop itself: there is no net.UDPConn to
// read from until Bind creates one. Bind starts receiveLoop once the
// socket is bound (see REDESIGN FLAGS in SPEC_FULL.md). log may be nil,
// in which case a disabled logger is used; m may be nil to opt out of
// metrics collection.
func New(cfg Config, log *logrus.Entry, m *metrics.Socket) *Socket {
	cfg = cfg.withDefaults()
	id := xid.New()

	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = logrus.NewEntry(discard)
	}
	log = log.WithField("socket", id.String())

	s := &Socket{
		id:      id,
		cfg:     cfg,
		log:     log,
		metrics: m,
		closed:  make(chan struct{}),
	}
	s.mu.Init()
	s.send = sendwindow.New(&s.mu, seqnum.Size(cfg.WindowSize), cfg.Timeout, s, log, m)
	s.recv = recvwindow.New(&s.mu, seqnum.Size(cfg.WindowSize), s, log, m)
	return s
}

// Bind binds the underlying datagram socket to addr. addr may be ""
// or ":0" to bind an ephemeral local port, matching net.ListenUDP's
// conventions.
func (s *Socket) Bind(addr string) error {
	if addr == "" {
		addr = ":0"
	}
	laddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return fmt.Errorf("yaru: resolve bind address: %w", err)
	}
	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return fmt.Errorf("yaru: bind: %w", err)
	}
	s.conn = conn
	go s.receiveLoop()
	return nil
}

// Connect pins the default peer address used by Write.
func (s *Socket) Connect(addr string) error {
	if s.conn == nil {
		if err := s.Bind(":0"); err != nil {
			return err
		}
	}
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return fmt.Errorf("yaru: resolve peer address: %w", err)
	}
	s.peerMu.Lock()
	s.peer = raddr
	s.peerMu.Unlock()
	return nil
}

// LocalAddr returns the bound local address, or nil if the socket has
// not been bound.
func (s *Socket) LocalAddr() net.Addr {
	if s.conn == nil {
		return nil
	}
	return s.conn.LocalAddr()
}

// Write enqueues data as a DATA packet addressed to the connected peer.
// It never waits for window space: a saturated send window surfaces as
// ErrSendWindowFull immediately, per spec.md §5 "Suspension points". It
// does take the endpoint-wide lock with a blocking Lock, so it may wait
// for the short critical sections of the receive loop and timers.
func (s *Socket) Write(data []byte) error {
	select {
	case <-s.closed:
		return ErrClosed
	default:
	}

	s.peerMu.RLock()
	peer := s.peer
	s.peerMu.RUnlock()
	if peer == nil {
		return ErrNotConnected
	}

	if len(data) > packet.MaxDataSize {
		return fmt.Errorf("%w: %d > %d", ErrPayloadTooLarge, len(data), packet.MaxDataSize)
	}

	_, err := s.send.Enqueue(data)
	return err
}

// Read returns the next contiguous, in-order delivered payload run. It
// never blocks; the result is an empty, non-nil slice when nothing is
// deliverable yet.
func (s *Socket) Read() []byte {
	return s.recv.Read()
}

// Readable returns a channel that fires once when data becomes available
// to Read, so callers need not busy-poll (spec.md §5).
func (s *Socket) Readable() chan struct{} {
	return s.recv.Readable()
}

// Close cancels timers, stops the receive loop, and closes the
// underlying datagram socket. Outstanding unacked data is discarded, per
// spec.md §5 "no linger". Added explicitly per the redesign flag: the
// Python reference has no equivalent.
func (s *Socket) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.closed)
		// Retiring every outstanding sequence number stops its
		// retransmission timer and drops its buffered packet.
		for seq := s.send.Base(); seq.LessThan(s.send.Next()); seq = seq.Add(1) {
			s.send.OnAck(seq)
		}
		if s.conn != nil {
			err = s.conn.Close()
		}
	})
	return err
}

// Transmit implements sendwindow.Transmitter by writing pkt to the
// connected peer.
func (s *Socket) Transmit(pkt []byte) error {
	s.peerMu.RLock()
	peer := s.peer
	s.peerMu.RUnlock()
	if peer == nil {
		return ErrNotConnected
	}
	_, err := s.conn.WriteToUDP(pkt, peer)
	return err
}

// SendAck implements recvwindow.AckSender by writing a zero-length
// (ACK) packet for seq to addr.
func (s *Socket) SendAck(seq seqnum.Value, addr net.Addr) error {
	udpAddr, ok := addr.(*net.UDPAddr)
	if !ok {
		return fmt.Errorf("yaru: SendAck: unsupported address type %T", addr)
	}
	pkt, err := packet.Make(uint64(seq), nil)
	if err != nil {
		return err
	}
	_, err = s.conn.WriteToUDP(pkt, udpAddr)
	return err
}

// receiveLoop drains the datagram socket, validates packets, and routes
// DATA packets to the receive window (which emits acks) and ACK packets
// to the send window (which retires timers and advances send_base), per
// spec.md §4.5. Socket closure unblocks the pending ReadFromUDP with
// net.ErrClosed, which this loop treats as its shutdown signal, closing
// the open question spec.md §9 raises about an unhonored poll timeout in
// the reference implementation.
func (s *Socket) receiveLoop() {
	buf := make([]byte, packet.HeaderSize+packet.MaxDataSize)
	for {
		n, addr, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.log.WithError(err).Warn("yaru: receive loop: read failed")
			continue
		}

		pkt, err := packet.Parse(buf[:n])
		if err != nil {
			if s.metrics != nil {
				s.metrics.IncPacketsDropped()
			}
			s.log.WithError(err).WithField("addr", addr.String()).Info("yaru: dropping unparseable packet")
			continue
		}

		if pkt.IsACK() {
			s.send.OnAck(seqnum.Value(pkt.SeqNum))
			continue
		}
		s.recv.OnData(seqnum.Value(pkt.SeqNum), pkt.Payload, addr)
	}
}
