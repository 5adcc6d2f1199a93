package seqnum

import "testing"

func TestAdd(t *testing.T) {
	v := Value(10)
	if got := v.Add(5); got != 15 {
		t.Fatalf("Add: got %v, want 15", got)
	}
}

func TestLessThan(t *testing.T) {
	if !Value(1).LessThan(Value(2)) {
		t.Fatalf("expected 1 < 2")
	}
	if Value(2).LessThan(Value(2)) {
		t.Fatalf("expected 2 is not < 2")
	}
	if !Value(2).LessThanEq(Value(2)) {
		t.Fatalf("expected 2 <= 2")
	}
}

func TestSubSaturates(t *testing.T) {
	if got := Value(5).Sub(Size(3)); got != 2 {
		t.Fatalf("Sub: got %v, want 2", got)
	}
	if got := Value(2).Sub(Size(5)); got != 0 {
		t.Fatalf("Sub underflow: got %v, want 0", got)
	}
}

func TestSizeDistance(t *testing.T) {
	if got := Value(3).Size(Value(10)); got != 7 {
		t.Fatalf("Size: got %v, want 7", got)
	}
}

func TestInWindow(t *testing.T) {
	base := Value(100)
	size := Size(4)
	cases := []struct {
		v    Value
		want bool
	}{
		{99, false},
		{100, true},
		{101, true},
		{103, true},
		{104, false},
	}
	for _, c := range cases {
		if got := c.v.InWindow(base, size); got != c.want {
			t.Fatalf("InWindow(%v, base=%v, size=%v): got %v, want %v", c.v, base, size, got, c.want)
		}
	}
}
