package digest

import (
	"fmt"

	"golang.org/x/crypto/scrypt"
)

const (
	scryptBlockSize   = 8
	scryptParallelism = 1
)

// Scrypt is the default [Deriver]. The cost factor is the exponent of
// the scrypt CPU/memory parameter (N = 1 << cost), so each increment
// roughly doubles derivation time — the throttle that makes offline
// brute-force and dictionary attacks expensive.
//
// Scrypt is stateless and safe for concurrent use.
type Scrypt struct{}

// Derive computes the KeyLength-byte scrypt key for secret under salt at
// the given cost. Cost factors outside [MinSupportedCost,
// MaxSupportedCost] are rejected with [ErrUnsupportedCost], never
// silently clamped: a clamped-down cost would defeat the throttle.
func (Scrypt) Derive(secret, salt []byte, cost int) ([]byte, error) {
	if cost < MinSupportedCost || cost > MaxSupportedCost {
		return nil, fmt.Errorf("%w: %d not in [%d, %d]", ErrUnsupportedCost, cost, MinSupportedCost, MaxSupportedCost)
	}

	key, err := scrypt.Key(secret, salt, 1<<cost, scryptBlockSize, scryptParallelism, KeyLength)
	if err != nil {
		return nil, fmt.Errorf("scrypt derivation failed: %w", err)
	}
	return key, nil
}
