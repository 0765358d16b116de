package digest

import (
	"encoding/base64"
	"fmt"
)

const (
	// SaltLength is the raw salt size in bytes, fixed by format version c1.
	SaltLength = 16
	// KeyLength is the derived key size in bytes, fixed by format version c1.
	KeyLength = 32

	// MinSupportedCost and MaxSupportedCost bound the cost factors the c1
	// format can carry. A deployment's accepted floor is configured above
	// this range, never below it.
	MinSupportedCost = 4
	MaxSupportedCost = 31

	versionMarker = "c1"
	costDigits    = 2

	encodedSaltLength = 22 // base64url, no padding, 16 bytes
	encodedKeyLength  = 43 // base64url, no padding, 32 bytes

	// EncodedLength is the exact length of every c1 digest string.
	EncodedLength = len(versionMarker) + costDigits + encodedSaltLength + encodedKeyLength
)

var b64 = base64.RawURLEncoding

// Encode serializes a (cost, salt, key) triple into the opaque c1 digest
// string. The result is stable, printable, and self-describing; callers
// persist it verbatim.
func Encode(cost int, salt, key []byte) (string, error) {
	if cost < MinSupportedCost || cost > MaxSupportedCost {
		return "", fmt.Errorf("%w: %d not in [%d, %d]", ErrUnsupportedCost, cost, MinSupportedCost, MaxSupportedCost)
	}
	if len(salt) != SaltLength {
		return "", fmt.Errorf("%w: salt length %d, want %d", ErrMalformedDigest, len(salt), SaltLength)
	}
	if len(key) != KeyLength {
		return "", fmt.Errorf("%w: key length %d, want %d", ErrMalformedDigest, len(key), KeyLength)
	}

	buf := make([]byte, 0, EncodedLength)
	buf = append(buf, versionMarker...)
	buf = append(buf, byte('0'+cost/10), byte('0'+cost%10))
	buf = b64.AppendEncode(buf, salt)
	buf = b64.AppendEncode(buf, key)
	return string(buf), nil
}

// Decode recovers the (cost, salt, key) triple from a c1 digest string.
// The string is sliced at fixed offsets; every field is validated before
// anything is returned. Strings of the wrong shape fail with
// [ErrMalformedDigest], and a well-formed string carrying an out-of-range
// cost fails with [ErrUnsupportedCost].
func Decode(encoded string) (cost int, salt, key []byte, err error) {
	if len(encoded) != EncodedLength {
		return 0, nil, nil, fmt.Errorf("%w: length %d, want %d", ErrMalformedDigest, len(encoded), EncodedLength)
	}
	if encoded[:len(versionMarker)] != versionMarker {
		return 0, nil, nil, fmt.Errorf("%w: unknown version marker %q", ErrMalformedDigest, encoded[:len(versionMarker)])
	}

	costField := encoded[len(versionMarker) : len(versionMarker)+costDigits]
	for i := 0; i < costDigits; i++ {
		if costField[i] < '0' || costField[i] > '9' {
			return 0, nil, nil, fmt.Errorf("%w: non-numeric cost field %q", ErrMalformedDigest, costField)
		}
	}
	cost = int(costField[0]-'0')*10 + int(costField[1]-'0')
	if cost < MinSupportedCost || cost > MaxSupportedCost {
		return 0, nil, nil, fmt.Errorf("%w: %d not in [%d, %d]", ErrUnsupportedCost, cost, MinSupportedCost, MaxSupportedCost)
	}

	saltStart := len(versionMarker) + costDigits
	keyStart := saltStart + encodedSaltLength

	salt, err = b64.DecodeString(encoded[saltStart:keyStart])
	if err != nil || len(salt) != SaltLength {
		return 0, nil, nil, fmt.Errorf("%w: invalid salt field", ErrMalformedDigest)
	}
	key, err = b64.DecodeString(encoded[keyStart:])
	if err != nil || len(key) != KeyLength {
		return 0, nil, nil, fmt.Errorf("%w: invalid key field", ErrMalformedDigest)
	}

	return cost, salt, key, nil
}
