package digest

import "errors"

var (
	// ErrMalformedDigest is returned by Decode when the stored string does
	// not have the exact shape of a known digest version. It is distinct
	// from a verification failure: a malformed digest means "not a valid
	// digest", never "wrong secret".
	ErrMalformedDigest = errors.New("malformed digest")

	// ErrUnsupportedCost is returned when a cost factor falls outside
	// [MinSupportedCost, MaxSupportedCost], whether supplied by a caller
	// or embedded in a stored digest.
	ErrUnsupportedCost = errors.New("unsupported cost factor")

	// ErrRandomSourceUnavailable is returned when the cryptographically
	// secure random source cannot produce salt material. This is fatal for
	// the operation: no credential is produced from a degraded source.
	ErrRandomSourceUnavailable = errors.New("secure random source unavailable")
)
