package retransmit

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestFiresAfterTimeout(t *testing.T) {
	var fired int32
	done := make(chan struct{})
	New(20*time.Millisecond, func() {
		atomic.StoreInt32(&fired, 1)
		close(done)
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("timer did not fire within 1s")
	}

	if atomic.LoadInt32(&fired) != 1 {
		t.Fatalf("callback did not run")
	}
}

func TestRearmFiresIndefinitely(t *testing.T) {
	var count int32
	var rt *Timer
	fired := make(chan struct{}, 10)

	var fire func()
	fire = func() {
		atomic.AddInt32(&count, 1)
		fired <- struct{}{}
		rt.Rearm(fire)
	}
	rt = New(10*time.Millisecond, fire)

	for i := 0; i < 3; i++ {
		select {
		case <-fired:
		case <-time.After(time.Second):
			t.Fatalf("timer fired fewer than 3 times")
		}
	}
	rt.Stop()

	if atomic.LoadInt32(&count) < 3 {
		t.Fatalf("got %d fires, want at least 3", count)
	}
}

func TestStopPreventsFutureFires(t *testing.T) {
	var fired int32
	rt := New(50*time.Millisecond, func() {
		atomic.StoreInt32(&fired, 1)
	})
	rt.Stop()

	time.Sleep(150 * time.Millisecond)
	if atomic.LoadInt32(&fired) != 0 {
		t.Fatalf("fire ran after Stop")
	}
}
