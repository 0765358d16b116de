// Package digest implements the storage representation of a hashed
// credential: salt generation, the adaptive key derivation primitive,
// the fixed-width digest codec, and constant-time comparison.
//
// # Format
//
// Version c1 digests are a single printable string sliced positionally
// at decode time:
//
//	"c1" + cost (2 decimal digits, zero-padded) + salt (22 chars) + key (43 chars)
//
// Salt and key are base64url without padding. Total length is always
// [EncodedLength]. The cost factor and salt are recoverable from the
// string alone, so verification never depends on out-of-band state.
// Any change to field widths requires a new version marker.
//
// # What this package must NOT do
//
//   - Persist, log, or retain plaintext secrets.
//   - Fall back to a non-cryptographic random source for salts.
//   - Clamp an out-of-range cost factor instead of rejecting it.
package digest
