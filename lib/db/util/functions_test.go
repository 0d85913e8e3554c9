package util

import (
	"math/rand"
	"testing"
)

func TestHashBytesMatchesFNV1a(t *testing.T) {
	// reference values of 64 bit FNV-1a
	cases := map[string]uint64{
		"":       0xcbf29ce484222325,
		"a":      0xaf63dc4c8601ec8c,
		"foobar": 0x85944171f73967e8,
	}
	for in, want := range cases {
		if got := HashBytes([]byte(in), 0); got != want {
			t.Errorf("HashBytes(%q) = %#x, want %#x", in, got, want)
		}
		if got := HashString(in, 0); got != want {
			t.Errorf("HashString(%q) = %#x, want %#x", in, got, want)
		}
	}
}

func TestHashSeedChangesResult(t *testing.T) {
	if HashBytes([]byte("key"), 1) == HashBytes([]byte("key"), 2) {
		t.Errorf("Expected different seeds to produce different hashes")
	}
}

func TestHashTaggedIsFNV1aOverTagAndBytes(t *testing.T) {
	for _, in := range []string{"", "x", "hello world"} {
		want := HashBytes(append([]byte{7}, in...), 0)
		if got := HashTagged(7, []byte(in)); got != want {
			t.Errorf("HashTagged(7, %q) = %#x, want %#x", in, got, want)
		}
	}
}

func TestStepHashIsOdd(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	buf := make([]byte, 16)
	for i := 0; i < 10000; i++ {
		rnd.Read(buf)
		if h2 := StepHash(HashBytes(buf, 0)); h2&1 != 1 {
			t.Fatalf("StepHash returned even value %#x", h2)
		}
	}
}
