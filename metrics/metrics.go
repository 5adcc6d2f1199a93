// Package metrics exposes a prometheus.Collector for a YARU socket,
// adapted from runZeroInc-sockstats/pkg/exporter's TCPInfoCollector: a
// struct of counters/gauges updated under its own lock by the transport
// internals and drained by Collect when Prometheus scrapes it.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Socket tracks counters and gauges for a single YARU socket. The zero
// value is not usable; construct with New.
type Socket struct {
	mu sync.Mutex

	packetsSent          uint64
	packetsRetransmitted uint64
	packetsDropped       uint64
	sendWindowOccupancy  uint64
	recvWindowOccupancy  uint64

	labels      prometheus.Labels
	sentDesc    *prometheus.Desc
	retransDesc *prometheus.Desc
	droppedDesc *prometheus.Desc
	sendOccDesc *prometheus.Desc
	recvOccDesc *prometheus.Desc
}

// New creates a collector for one socket, identified by constLabels (for
// example {"socket": xid.New().String()}).
func New(constLabels prometheus.Labels) *Socket {
	return &Socket{
		labels: constLabels,
		sentDesc: prometheus.NewDesc(
			"yaru_packets_sent_total", "DATA packets transmitted for the first time (ACKs are not counted).", nil, constLabels),
		retransDesc: prometheus.NewDesc(
			"yaru_packets_retransmitted_total", "DATA packets retransmitted after timeout.", nil, constLabels),
		droppedDesc: prometheus.NewDesc(
			"yaru_packets_dropped_total", "Inbound packets dropped (checksum, malformed, out of window).", nil, constLabels),
		sendOccDesc: prometheus.NewDesc(
			"yaru_send_window_occupancy", "Unacknowledged packets currently held in send_buf.", nil, constLabels),
		recvOccDesc: prometheus.NewDesc(
			"yaru_recv_window_occupancy", "Received payloads not yet read, currently held in recv_buf.", nil, constLabels),
	}
}

// Describe implements prometheus.Collector.
func (s *Socket) Describe(descs chan<- *prometheus.Desc) {
	descs <- s.sentDesc
	descs <- s.retransDesc
	descs <- s.droppedDesc
	descs <- s.sendOccDesc
	descs <- s.recvOccDesc
}

// Collect implements prometheus.Collector.
func (s *Socket) Collect(out chan<- prometheus.Metric) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out <- prometheus.MustNewConstMetric(s.sentDesc, prometheus.CounterValue, float64(s.packetsSent))
	out <- prometheus.MustNewConstMetric(s.retransDesc, prometheus.CounterValue, float64(s.packetsRetransmitted))
	out <- prometheus.MustNewConstMetric(s.droppedDesc, prometheus.CounterValue, float64(s.packetsDropped))
	out <- prometheus.MustNewConstMetric(s.sendOccDesc, prometheus.GaugeValue, float64(s.sendWindowOccupancy))
	out <- prometheus.MustNewConstMetric(s.recvOccDesc, prometheus.GaugeValue, float64(s.recvWindowOccupancy))
}

func (s *Socket) IncPacketsSent() {
	s.mu.Lock()
	s.packetsSent++
	s.mu.Unlock()
}

func (s *Socket) IncPacketsRetransmitted() {
	s.mu.Lock()
	s.packetsRetransmitted++
	s.mu.Unlock()
}

func (s *Socket) IncPacketsDropped() {
	s.mu.Lock()
	s.packetsDropped++
	s.mu.Unlock()
}

func (s *Socket) SetSendWindowOccupancy(n int) {
	s.mu.Lock()
	s.sendWindowOccupancy = uint64(n)
	s.mu.Unlock()
}

func (s *Socket) SetRecvWindowOccupancy(n int) {
	s.mu.Lock()
	s.recvWindowOccupancy = uint64(n)
	s.mu.Unlock()
}
