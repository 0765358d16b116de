package credlock

// MatchResult is the outcome of verifying a plaintext secret against a
// stored digest. It is a value, not an error: NoMatch and Invalid are
// normal, expected outcomes that a caller surfaces as "authentication
// failed" without distinguishing them externally.
type MatchResult uint8

const (
	// MatchNoMatch means the stored digest decoded cleanly but the secret
	// is wrong, or no digest was ever set.
	MatchNoMatch MatchResult = iota
	// MatchOK means the derived candidate equals the stored key.
	MatchOK
	// MatchInvalid means the stored string is not a valid digest. Callers
	// should log it as a data-integrity concern, never treat it as "no
	// password set".
	MatchInvalid
)

// Matched reports whether the result is MatchOK. It is the only signal
// callers should branch on for granting access.
func (r MatchResult) Matched() bool {
	return r == MatchOK
}

func (r MatchResult) String() string {
	switch r {
	case MatchOK:
		return "match"
	case MatchNoMatch:
		return "no_match"
	case MatchInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}
