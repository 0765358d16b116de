// Package credlock hashes and verifies secrets for authentication. It
// wraps a deliberately slow, salted, adaptive key derivation primitive
// in a self-describing digest format and a credential lifecycle: set,
// verify, rotate, and cost-upgrade detection.
//
// Manager methods are safe to call from multiple goroutines after
// initialization through [Builder.Build]. Each call owns its own salt
// and comparison buffers; the module keeps no mutable state between
// calls beyond optional Redis-backed guard and rotation-ticket stores.
//
// # Architecture boundaries
//
// credlock is the public surface. It exposes [Manager], [Builder],
// [Config], [MatchResult], and the audit/metrics value types. Digest
// encoding and the derivation primitive live in the digest subpackage;
// rate limiting internals live under internal/ and are never exported.
//
// # What this package must NOT do
//
//   - Persist or query user records. Callers pass a stored digest in and
//     persist the returned digest verbatim; "no user found" is the
//     caller's explicit absent case, decided before calling Verify.
//   - Log or retain plaintext secrets anywhere, including audit events.
//   - Reveal, through errors or timing, whether a verification failed on
//     a malformed stored digest or on a wrong secret.
//
// # Performance contract
//
// Set, Verify, and Rotate are CPU-bound by design: at production cost
// factors a single derivation takes on the order of 100–250ms and runs
// to completion once started. Callers on shared request-handling pools
// must treat them as blocking, non-cancellable units of work.
package credlock
