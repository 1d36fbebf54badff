package id

import "testing"

func TestNextMonotonic(t *testing.T) {
	g := NewGenerator()
	prev := ID(0)
	for i := 0; i < 10000; i++ {
		next := g.Next()
		if next == 0 {
			t.Fatal("zero id minted")
		}
		if next <= prev {
			t.Fatalf("id regressed: %d after %d", next, prev)
		}
		prev = next
	}
}

func TestNextClockBackwards(t *testing.T) {
	orig := NowMs
	defer func() { NowMs = orig }()

	now := int64(1_000_000)
	NowMs = func() int64 { return now }

	g := NewGenerator()
	a := g.Next()
	now = 999_999 // clock steps back
	b := g.Next()
	if b <= a {
		t.Fatalf("expected monotonic ids across clock regression: %d then %d", a, b)
	}
}

func TestStringDecimal(t *testing.T) {
	if got := ID(12345).String(); got != "12345" {
		t.Fatalf("String() = %q", got)
	}
}
