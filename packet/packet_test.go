package packet

import (
	"bytes"
	"errors"
	"testing"
)

func TestRoundTripSmallPayload(t *testing.T) {
	buf, err := Make(3, []byte("supp"))
	if err != nil {
		t.Fatalf("Make: %v", err)
	}

	p, err := Parse(buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.SeqNum != 3 || !bytes.Equal(p.Payload, []byte("supp")) {
		t.Fatalf("got (%d, %q), want (3, %q)", p.SeqNum, p.Payload, "supp")
	}
}

func TestRoundTripMaxPayload(t *testing.T) {
	data := bytes.Repeat([]byte("S"), MaxDataSize)
	buf, err := Make(4, data)
	if err != nil {
		t.Fatalf("Make: %v", err)
	}
	if len(buf) != HeaderSize+MaxDataSize {
		t.Fatalf("serialized length = %d, want %d", len(buf), HeaderSize+MaxDataSize)
	}

	p, err := Parse(buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.SeqNum != 4 || !bytes.Equal(p.Payload, data) {
		t.Fatalf("payload mismatch after round trip")
	}
}

func TestOversizeRejected(t *testing.T) {
	data := bytes.Repeat([]byte("S"), MaxDataSize+1)
	if _, err := Make(0, data); !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("Make: got %v, want ErrPayloadTooLarge", err)
	}
}

func TestRoundTripProperty(t *testing.T) {
	seqs := []uint64{0, 1, 42, 1 << 40, ^uint64(0)}
	sizes := []int{0, 1, 100, MaxDataSize}
	for _, n := range seqs {
		for _, size := range sizes {
			data := bytes.Repeat([]byte{0xAB}, size)
			buf, err := Make(n, data)
			if err != nil {
				t.Fatalf("Make(%d, len=%d): %v", n, size, err)
			}
			p, err := Parse(buf)
			if err != nil {
				t.Fatalf("Parse(%d, len=%d): %v", n, size, err)
			}
			if p.SeqNum != n || !bytes.Equal(p.Payload, data) {
				t.Fatalf("round trip mismatch for seq=%d size=%d", n, size)
			}
		}
	}
}

func TestCorruptionDetected(t *testing.T) {
	buf, err := Make(7, []byte("hello world"))
	if err != nil {
		t.Fatalf("Make: %v", err)
	}

	for i := range buf {
		corrupt := make([]byte, len(buf))
		copy(corrupt, buf)
		corrupt[i] ^= 0x01

		_, err := Parse(corrupt)
		if err == nil {
			t.Fatalf("Parse accepted corrupted byte at offset %d", i)
		}
		if !errors.Is(err, ErrChecksumMismatch) && !errors.Is(err, ErrMalformedPacket) {
			t.Fatalf("Parse: unexpected error at offset %d: %v", i, err)
		}
	}
}

func TestParseMalformedShortBuffer(t *testing.T) {
	if _, err := Parse(make([]byte, HeaderSize-1)); !errors.Is(err, ErrMalformedPacket) {
		t.Fatalf("got %v, want ErrMalformedPacket", err)
	}
}

func TestParseMalformedLengthOverrun(t *testing.T) {
	buf, err := Make(1, []byte("abcd"))
	if err != nil {
		t.Fatalf("Make: %v", err)
	}
	truncated := buf[:len(buf)-2]
	if _, err := Parse(truncated); !errors.Is(err, ErrMalformedPacket) && !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("got %v, want a decode error", err)
	}
}

func TestIsACK(t *testing.T) {
	ackBuf, err := Make(9, nil)
	if err != nil {
		t.Fatalf("Make: %v", err)
	}
	p, err := Parse(ackBuf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !p.IsACK() {
		t.Fatalf("expected zero-length packet to be an ACK")
	}

	dataBuf, err := Make(9, []byte("x"))
	if err != nil {
		t.Fatalf("Make: %v", err)
	}
	p, err = Parse(dataBuf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.IsACK() {
		t.Fatalf("expected non-empty packet to not be an ACK")
	}
}

func TestTrailingBytesIgnored(t *testing.T) {
	buf, err := Make(2, []byte("ab"))
	if err != nil {
		t.Fatalf("Make: %v", err)
	}
	withTrailer := append(buf, []byte("garbage")...)

	p, err := Parse(withTrailer)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !bytes.Equal(p.Payload, []byte("ab")) {
		t.Fatalf("got payload %q, want %q", p.Payload, "ab")
	}
}
