package digest

import "crypto/subtle"

// ConstantTimeEqual reports whether a and b are equal without leaking,
// through timing, where the first differing byte occurs. It is never a
// short-circuiting byte loop: the full length is always examined.
//
// Inputs of different lengths compare unequal; the length check itself
// carries no information an attacker does not already have, since key
// and salt lengths are public constants of the digest format.
func ConstantTimeEqual(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}
