package yaru

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func silentLog() *logrus.Entry {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(log)
}

func newPair(t *testing.T) (a, b *Socket) {
	t.Helper()
	cfg := Config{WindowSize: 16, Timeout: 200 * time.Millisecond}

	a = New(cfg, silentLog(), nil)
	b = New(cfg, silentLog(), nil)

	if err := a.Bind(""); err != nil {
		t.Fatalf("a.Bind: %v", err)
	}
	if err := b.Bind(""); err != nil {
		t.Fatalf("b.Bind: %v", err)
	}
	if err := a.Connect(b.LocalAddr().String()); err != nil {
		t.Fatalf("a.Connect: %v", err)
	}
	if err := b.Connect(a.LocalAddr().String()); err != nil {
		t.Fatalf("b.Connect: %v", err)
	}

	t.Cleanup(func() {
		a.Close()
		b.Close()
	})
	return a, b
}

func waitForRead(t *testing.T, s *Socket, want string) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	got := make([]byte, 0, len(want))
	for len(got) < len(want) {
		got = append(got, s.Read()...)
		if len(got) >= len(want) {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for %q, got %q so far", want, got)
		case <-time.After(5 * time.Millisecond):
		}
	}
	if string(got) != want {
		t.Fatalf("Read: got %q, want %q", got, want)
	}
}

func TestReliableDelivery(t *testing.T) {
	a, b := newPair(t)

	msg := "hello yaru"
	if err := a.Write([]byte(msg)); err != nil {
		t.Fatalf("Write: %v", err)
	}

	waitForRead(t, b, msg)
}

func TestInOrderDeliveryAcrossMultipleWrites(t *testing.T) {
	a, b := newPair(t)

	for _, chunk := range []string{"one ", "two ", "three"} {
		if err := a.Write([]byte(chunk)); err != nil {
			t.Fatalf("Write(%q): %v", chunk, err)
		}
	}

	waitForRead(t, b, "one two three")
}

func TestWriteTooLargeRejected(t *testing.T) {
	a, _ := newPair(t)

	big := make([]byte, 70000)
	if err := a.Write(big); err == nil {
		t.Fatalf("Write with oversize payload: want error, got nil")
	}
}

func TestWriteBeforeConnectFails(t *testing.T) {
	s := New(Config{}, silentLog(), nil)
	defer s.Close()
	if err := s.Bind(""); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if err := s.Write([]byte("x")); err != ErrNotConnected {
		t.Fatalf("Write before Connect: got %v, want ErrNotConnected", err)
	}
}

func TestWriteAfterCloseFails(t *testing.T) {
	a, _ := newPair(t)
	a.Close()
	if err := a.Write([]byte("x")); err != ErrClosed {
		t.Fatalf("Write after Close: got %v, want ErrClosed", err)
	}
}

func TestSendWindowSaturationBackpressure(t *testing.T) {
	cfg := Config{WindowSize: 2, Timeout: time.Hour}
	a := New(cfg, silentLog(), nil)
	b := New(cfg, silentLog(), nil)
	defer a.Close()
	defer b.Close()

	if err := a.Bind(""); err != nil {
		t.Fatalf("a.Bind: %v", err)
	}
	if err := b.Bind(""); err != nil {
		t.Fatalf("b.Bind: %v", err)
	}
	if err := a.Connect(b.LocalAddr().String()); err != nil {
		t.Fatalf("a.Connect: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := a.Write([]byte("x")); err != nil {
			t.Fatalf("Write %d: %v", i, err)
		}
	}
	if err := a.Write([]byte("x")); err != ErrSendWindowFull {
		t.Fatalf("Write while saturated: got %v, want ErrSendWindowFull", err)
	}
}
