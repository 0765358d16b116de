package digest

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func testSalt() []byte {
	salt := make([]byte, SaltLength)
	for i := range salt {
		salt[i] = byte(i + 1)
	}
	return salt
}

func testKey() []byte {
	key := make([]byte, KeyLength)
	for i := range key {
		key[i] = byte(0xA0 ^ i)
	}
	return key
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, cost := range []int{MinSupportedCost, 10, 15, MaxSupportedCost} {
		encoded, err := Encode(cost, testSalt(), testKey())
		if err != nil {
			t.Fatalf("Encode(cost=%d) error: %v", cost, err)
		}
		if len(encoded) != EncodedLength {
			t.Fatalf("encoded length %d, want %d", len(encoded), EncodedLength)
		}
		if !strings.HasPrefix(encoded, "c1") {
			t.Fatalf("missing version marker: %q", encoded)
		}

		gotCost, gotSalt, gotKey, err := Decode(encoded)
		if err != nil {
			t.Fatalf("Decode error: %v", err)
		}
		if gotCost != cost {
			t.Fatalf("cost %d, want %d", gotCost, cost)
		}
		if !bytes.Equal(gotSalt, testSalt()) {
			t.Fatal("salt did not round-trip")
		}
		if !bytes.Equal(gotKey, testKey()) {
			t.Fatal("key did not round-trip")
		}
	}
}

func TestEncodeRejectsUnsupportedCost(t *testing.T) {
	for _, cost := range []int{0, MinSupportedCost - 1, MaxSupportedCost + 1, 99} {
		if _, err := Encode(cost, testSalt(), testKey()); !errors.Is(err, ErrUnsupportedCost) {
			t.Fatalf("Encode(cost=%d) error = %v, want ErrUnsupportedCost", cost, err)
		}
	}
}

func TestEncodeRejectsWrongFieldSizes(t *testing.T) {
	if _, err := Encode(12, testSalt()[:SaltLength-1], testKey()); !errors.Is(err, ErrMalformedDigest) {
		t.Fatalf("short salt error = %v, want ErrMalformedDigest", err)
	}
	if _, err := Encode(12, testSalt(), append(testKey(), 0)); !errors.Is(err, ErrMalformedDigest) {
		t.Fatalf("long key error = %v, want ErrMalformedDigest", err)
	}
}

func TestDecodeRejectsMalformedStrings(t *testing.T) {
	valid, err := Encode(12, testSalt(), testKey())
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	cases := map[string]string{
		"empty":          "",
		"truncated":      valid[:EncodedLength-1],
		"padded":         valid + "A",
		"bad marker":     "x9" + valid[2:],
		"alpha cost":     valid[:2] + "ab" + valid[4:],
		"invalid base64": valid[:4] + strings.Repeat("$", EncodedLength-4),
	}

	for name, input := range cases {
		if _, _, _, err := Decode(input); !errors.Is(err, ErrMalformedDigest) {
			t.Fatalf("%s: Decode error = %v, want ErrMalformedDigest", name, err)
		}
	}
}

func TestDecodeRejectsOutOfRangeCost(t *testing.T) {
	valid, err := Encode(12, testSalt(), testKey())
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	for _, costField := range []string{"00", "03", "32", "99"} {
		tampered := valid[:2] + costField + valid[4:]
		if _, _, _, err := Decode(tampered); !errors.Is(err, ErrUnsupportedCost) {
			t.Fatalf("cost field %q: Decode error = %v, want ErrUnsupportedCost", costField, err)
		}
	}
}

func TestDecodeFailureIsNotVerificationFailure(t *testing.T) {
	// Decode errors carry their own sentinels so callers can log a
	// data-integrity concern instead of a user auth failure.
	_, _, _, err := Decode("not-a-valid-digest-string")
	if err == nil {
		t.Fatal("expected decode error")
	}
	if !errors.Is(err, ErrMalformedDigest) && !errors.Is(err, ErrUnsupportedCost) {
		t.Fatalf("error %v is outside the decode taxonomy", err)
	}
}
