package credlock

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/credlock/credlock/digest"
	"github.com/credlock/credlock/internal/rate"
)

// Manager orchestrates salt generation, key derivation, digest encoding,
// and constant-time comparison into the credential lifecycle. It is
// immutable after [Builder.Build] and safe for concurrent use; Set and
// Verify share nothing between calls.
type Manager struct {
	config  Config
	deriver digest.Deriver
	guard   *rate.Limiter
	tickets *ticketStore
	audit   *auditDispatcher
	metrics *Metrics

	// dummySalt feeds the constant-work derivation performed when a
	// stored digest does not decode, so decode failures are not
	// distinguishable from wrong-secret failures by timing.
	dummySalt []byte
}

// Close flushes the audit dispatcher. Pending operations finish first;
// Close does not interrupt in-flight derivations.
func (m *Manager) Close() {
	if m == nil {
		return
	}
	if m.audit != nil {
		m.audit.Close()
	}
}

// AuditDropped returns the number of audit events discarded under
// backpressure since construction.
func (m *Manager) AuditDropped() uint64 {
	if m == nil || m.audit == nil {
		return 0
	}
	return m.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of all counters.
func (m *Manager) MetricsSnapshot() MetricsSnapshot {
	if m == nil || m.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return m.metrics.Snapshot()
}

// TargetCost returns the cost factor applied to new digests.
func (m *Manager) TargetCost() int {
	if m == nil {
		return 0
	}
	return m.config.Digest.TargetCost
}

func (m *Manager) metricInc(id MetricID) {
	if m == nil || m.metrics == nil {
		return
	}
	m.metrics.Inc(id)
}

// Set hashes plaintext into a new opaque stored digest: fresh salt,
// derivation at the configured target cost, fixed-width encoding. The
// result is immutable; changing a credential always produces a new
// digest string. Empty plaintext fails with [ErrEmptySecret], and a
// failed salt draw propagates [digest.ErrRandomSourceUnavailable]
// without producing anything.
func (m *Manager) Set(plaintext string) (string, error) {
	if m == nil || m.deriver == nil {
		return "", ErrManagerNotReady
	}
	if plaintext == "" {
		m.metricInc(MetricSetRejected)
		m.emitAudit(context.Background(), auditEventSet, false, "", ErrEmptySecret, nil)
		return "", ErrEmptySecret
	}

	encoded, err := m.encodeFresh(plaintext)
	if err != nil {
		m.emitAudit(context.Background(), auditEventSet, false, "", err, nil)
		return "", err
	}

	m.metricInc(MetricSetSuccess)
	m.emitAudit(context.Background(), auditEventSet, true, "", nil, nil)
	return encoded, nil
}

// SetConfirmed is Set with a confirmation gate: when confirmation
// differs from plaintext it fails with [ErrConfirmationMismatch] and
// produces nothing, leaving any previously stored digest untouched.
// Callers with no confirmation requirement use Set directly.
func (m *Manager) SetConfirmed(plaintext, confirmation string) (string, error) {
	if m == nil || m.deriver == nil {
		return "", ErrManagerNotReady
	}
	if plaintext != confirmation {
		m.metricInc(MetricSetRejected)
		m.emitAudit(context.Background(), auditEventSet, false, "", ErrConfirmationMismatch, nil)
		return "", ErrConfirmationMismatch
	}
	return m.Set(plaintext)
}

// Verify checks plaintext against a stored digest and never fails with
// an error: malformed stored data yields [MatchInvalid], an absent
// digest yields [MatchNoMatch], and both paths still perform a full
// derivation so their timing matches a wrong-secret verification.
func (m *Manager) Verify(plaintext, stored string) MatchResult {
	if m == nil || m.deriver == nil {
		return MatchInvalid
	}

	if m.metrics != nil && m.metrics.LatencyEnabled() {
		start := time.Now()
		defer func() { m.metrics.Observe(MetricVerifyLatency, time.Since(start)) }()
	}

	if stored == "" {
		// No credential was ever set: cannot match, but the caller's
		// response timing must not reveal that.
		m.dummyDerive(plaintext)
		m.metricInc(MetricVerifyNoMatch)
		m.emitAudit(context.Background(), auditEventVerify, false, "", nil, func() map[string]string {
			return map[string]string{"result": MatchNoMatch.String()}
		})
		return MatchNoMatch
	}

	cost, salt, key, err := digest.Decode(stored)
	if err != nil {
		m.dummyDerive(plaintext)
		m.metricInc(MetricVerifyInvalid)
		m.emitAudit(context.Background(), auditEventVerify, false, "", err, func() map[string]string {
			return map[string]string{"result": MatchInvalid.String()}
		})
		return MatchInvalid
	}

	candidate, err := m.deriver.Derive([]byte(plaintext), salt, cost)
	if err != nil {
		m.metricInc(MetricVerifyInvalid)
		m.emitAudit(context.Background(), auditEventVerify, false, "", err, func() map[string]string {
			return map[string]string{"result": MatchInvalid.String()}
		})
		return MatchInvalid
	}

	if digest.ConstantTimeEqual(candidate, key) {
		m.metricInc(MetricVerifyMatch)
		m.emitAudit(context.Background(), auditEventVerify, true, "", nil, nil)
		return MatchOK
	}

	m.metricInc(MetricVerifyNoMatch)
	m.emitAudit(context.Background(), auditEventVerify, false, "", nil, func() map[string]string {
		return map[string]string{"result": MatchNoMatch.String()}
	})
	return MatchNoMatch
}

// VerifyGuarded is Verify behind the Redis attempt budget. identifier is
// the caller's stable key for the credential owner (never the plaintext);
// the client IP, when attached via [WithClientIP], is throttled
// independently. An exhausted budget fails with [ErrVerifyRateLimited]
// before any derivation work; an unreachable guard fails closed with
// [ErrGuardUnavailable].
func (m *Manager) VerifyGuarded(ctx context.Context, identifier, plaintext, stored string) (MatchResult, error) {
	if m == nil || m.deriver == nil {
		return MatchInvalid, ErrManagerNotReady
	}
	if m.guard == nil {
		return m.Verify(plaintext, stored), nil
	}

	ip := clientIPFromContext(ctx)

	if err := m.guard.Check(ctx, identifier, ip); err != nil {
		if errors.Is(err, rate.ErrRateLimited) {
			m.metricInc(MetricVerifyRateLimited)
			m.emitAudit(ctx, auditEventRateLimited, false, identifier, ErrVerifyRateLimited, nil)
			return MatchNoMatch, ErrVerifyRateLimited
		}
		return MatchNoMatch, errors.Join(ErrGuardUnavailable, err)
	}

	result := m.Verify(plaintext, stored)
	if result == MatchOK {
		// Counter reset is best-effort and must not fail the verification.
		if err := m.guard.Reset(ctx, identifier, ip); err != nil {
			log.Print("credlock: guard counter reset failed")
		}
		return result, nil
	}

	if err := m.guard.Increment(ctx, identifier, ip); err != nil {
		if errors.Is(err, rate.ErrRateLimited) {
			m.metricInc(MetricVerifyRateLimited)
			m.emitAudit(ctx, auditEventRateLimited, false, identifier, ErrVerifyRateLimited, nil)
			return result, ErrVerifyRateLimited
		}
		return result, errors.Join(ErrGuardUnavailable, err)
	}

	return result, nil
}

// NeedsUpgrade reports whether a stored digest should be re-set at the
// current target cost: true when its embedded cost is below the target,
// below the accepted floor, or when the string does not decode at all.
// The module never persists anything; callers act on the report after a
// successful verification.
func (m *Manager) NeedsUpgrade(stored string) bool {
	if m == nil {
		return false
	}

	cost, _, _, err := digest.Decode(stored)
	if err != nil || cost < m.config.Digest.MinCost || cost < m.config.Digest.TargetCost {
		m.metricInc(MetricUpgradeFlagged)
		m.emitAudit(context.Background(), auditEventUpgradeFlag, true, "", nil, nil)
		return true
	}

	return false
}

// Rotate replaces a credential: current must verify against stored, the
// replacement must not equal the current secret, and the result is a
// brand-new digest with fresh salt at the target cost. Nothing is
// produced on any failure.
func (m *Manager) Rotate(current, next, stored string) (string, error) {
	if m == nil || m.deriver == nil {
		return "", ErrManagerNotReady
	}
	if next == "" {
		m.metricInc(MetricSetRejected)
		m.emitAudit(context.Background(), auditEventRotate, false, "", ErrEmptySecret, nil)
		return "", ErrEmptySecret
	}

	if m.Verify(current, stored) != MatchOK {
		m.metricInc(MetricRotateInvalidCurrent)
		m.emitAudit(context.Background(), auditEventRotate, false, "", ErrCurrentMismatch, nil)
		return "", ErrCurrentMismatch
	}

	if m.Verify(next, stored) == MatchOK {
		m.metricInc(MetricRotateReuseRejected)
		m.emitAudit(context.Background(), auditEventRotate, false, "", ErrSecretReuse, nil)
		return "", ErrSecretReuse
	}

	encoded, err := m.encodeFresh(next)
	if err != nil {
		m.emitAudit(context.Background(), auditEventRotate, false, "", err, nil)
		return "", err
	}

	m.metricInc(MetricRotateSuccess)
	m.emitAudit(context.Background(), auditEventRotate, true, "", nil, nil)
	return encoded, nil
}

// RotateConfirmed is Rotate with the confirmation gate applied to the
// replacement secret.
func (m *Manager) RotateConfirmed(current, next, confirmation, stored string) (string, error) {
	if m == nil || m.deriver == nil {
		return "", ErrManagerNotReady
	}
	if next != confirmation {
		m.metricInc(MetricSetRejected)
		m.emitAudit(context.Background(), auditEventRotate, false, "", ErrConfirmationMismatch, nil)
		return "", ErrConfirmationMismatch
	}
	return m.Rotate(current, next, stored)
}

// encodeFresh draws a salt, derives at the target cost, and encodes.
// It is the one place new digests come from.
func (m *Manager) encodeFresh(plaintext string) (string, error) {
	salt, err := digest.NewSalt()
	if err != nil {
		return "", err
	}

	key, err := m.deriver.Derive([]byte(plaintext), salt, m.config.Digest.TargetCost)
	if err != nil {
		return "", err
	}

	return digest.Encode(m.config.Digest.TargetCost, salt, key)
}

// dummyDerive performs a derivation at the target cost and discards the
// result. Errors are ignored: the work is the point.
func (m *Manager) dummyDerive(plaintext string) {
	_, _ = m.deriver.Derive([]byte(plaintext), m.dummySalt, m.config.Digest.TargetCost)
}

func (m *Manager) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	subject string,
	opErr error,
	metadata func() map[string]string,
) {
	if m == nil || m.audit == nil {
		return
	}

	event := AuditEvent{
		Timestamp: time.Now(),
		EventType: eventType,
		Subject:   subject,
		IP:        clientIPFromContext(ctx),
		Success:   success,
	}
	if opErr != nil {
		event.Error = opErr.Error()
	}
	if metadata != nil {
		event.Metadata = metadata()
	}

	m.audit.Emit(ctx, event)
}
