package digest

import (
	"crypto/rand"
	"fmt"
	"io"
)

// NewSalt returns SaltLength bytes drawn from the operating system's
// cryptographically secure random source. Each credential-set operation
// must call it exactly once; salts are never reused across credentials
// or across re-hashes of the same credential.
//
// If the source cannot satisfy the read, NewSalt fails with
// [ErrRandomSourceUnavailable] and no salt is produced.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRandomSourceUnavailable, err)
	}
	return salt, nil
}
