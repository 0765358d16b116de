// Package rate provides the Redis-backed fixed-window counters behind
// guarded credential verification.
//
// # Window semantics
//
// Fixed-window counters: INCR + conditional EXPIRE on first hit. Key
// layout under the configured prefix:
//   - <prefix>:id:  — attempts per caller-supplied identifier
//   - <prefix>:ip:  — attempts per client IP
//
// # What this package must NOT do
//
//   - Decide verification policy (the Manager maps budgets to outcomes).
//   - Be imported outside the credlock module.
package rate
