package digest

// Deriver is the pluggable adaptive hash primitive. Implementations must
// be deterministic (identical secret, salt, and cost always yield the
// identical key), deliberately expensive with wall-clock cost roughly
// doubling per cost increment, and exhibit the avalanche property.
//
// Derivation is a blocking, non-cancellable unit of work: once started it
// runs to completion, since a partial key is meaningless. Timeout policy
// belongs to the caller.
//
// Implementations must be safe for concurrent use by multiple goroutines.
type Deriver interface {
	Derive(secret, salt []byte, cost int) ([]byte, error)
}
