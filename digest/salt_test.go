package digest

import (
	"bytes"
	"testing"
)

func TestNewSaltLength(t *testing.T) {
	salt, err := NewSalt()
	if err != nil {
		t.Fatalf("NewSalt error: %v", err)
	}
	if len(salt) != SaltLength {
		t.Fatalf("salt length %d, want %d", len(salt), SaltLength)
	}
}

func TestNewSaltIsFreshPerCall(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 64; i++ {
		salt, err := NewSalt()
		if err != nil {
			t.Fatalf("NewSalt error: %v", err)
		}
		if seen[string(salt)] {
			t.Fatal("salt repeated across calls")
		}
		seen[string(salt)] = true
	}
}

func TestConstantTimeEqual(t *testing.T) {
	a := []byte{1, 2, 3, 4}
	b := []byte{1, 2, 3, 4}
	c := []byte{1, 2, 3, 5}

	if !ConstantTimeEqual(a, b) {
		t.Fatal("equal slices reported unequal")
	}
	if ConstantTimeEqual(a, c) {
		t.Fatal("unequal slices reported equal")
	}
	if ConstantTimeEqual(a, a[:3]) {
		t.Fatal("different lengths reported equal")
	}
	if !bytes.Equal(a, b) {
		t.Fatal("inputs were mutated")
	}
}
