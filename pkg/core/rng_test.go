package core

import "testing"

func TestRNGDeterministic(t *testing.T) {
	a := NewRNG(7)
	b := NewRNG(7)
	for i := 0; i < 64; i++ {
		if a.IntN(1000) != b.IntN(1000) {
			t.Fatalf("draw %d differs for equal seeds", i)
		}
	}
}

func TestIntNBounds(t *testing.T) {
	r := NewRNG(1)
	if r.IntN(0) != 0 || r.IntN(-3) != 0 {
		t.Fatal("IntN must return 0 for non-positive n")
	}
	for i := 0; i < 256; i++ {
		if v := r.IntN(6); v < 0 || v >= 6 {
			t.Fatalf("IntN(6) = %d", v)
		}
	}
}

func TestChanceExtremes(t *testing.T) {
	r := NewRNG(3)
	for i := 0; i < 32; i++ {
		if r.Chance(0) {
			t.Fatal("Chance(0) returned true")
		}
		if !r.Chance(1) {
			t.Fatal("Chance(1) returned false")
		}
	}
}
