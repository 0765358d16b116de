package credlock

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/credlock/credlock/digest"
)

func TestSetAndVerify(t *testing.T) {
	m := newTestManager(t, nil)

	stored, err := m.Set("correct horse battery staple")
	if err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if len(stored) != digest.EncodedLength {
		t.Fatalf("expected digest length %d, got %d", digest.EncodedLength, len(stored))
	}
	if !strings.HasPrefix(stored, "c1") {
		t.Fatalf("unexpected version marker: %s", stored[:2])
	}

	if got := m.Verify("correct horse battery staple", stored); got != MatchOK {
		t.Fatalf("expected MatchOK, got %v", got)
	}
	if got := m.Verify("wrong secret", stored); got != MatchNoMatch {
		t.Fatalf("expected MatchNoMatch for wrong secret, got %v", got)
	}
}

func TestSetProducesUniqueDigests(t *testing.T) {
	m := newTestManager(t, nil)

	seen := make(map[string]bool)
	for i := 0; i < 8; i++ {
		stored, err := m.Set("same secret")
		if err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		if seen[stored] {
			t.Fatal("two digests of the same secret were identical; salt reuse")
		}
		seen[stored] = true
	}
}

func TestSetRejectsEmptySecret(t *testing.T) {
	m := newTestManager(t, nil)

	if _, err := m.Set(""); !errors.Is(err, ErrEmptySecret) {
		t.Fatalf("expected ErrEmptySecret, got %v", err)
	}
	if got := m.metrics.Value(MetricSetRejected); got != 1 {
		t.Fatalf("expected 1 rejected set, got %d", got)
	}
}

func TestSetConfirmedGate(t *testing.T) {
	m := newTestManager(t, nil)

	if _, err := m.SetConfirmed("secret-a", "secret-b"); !errors.Is(err, ErrConfirmationMismatch) {
		t.Fatalf("expected ErrConfirmationMismatch, got %v", err)
	}

	stored, err := m.SetConfirmed("secret-a", "secret-a")
	if err != nil {
		t.Fatalf("SetConfirmed failed: %v", err)
	}
	if m.Verify("secret-a", stored) != MatchOK {
		t.Fatal("confirmed digest did not verify")
	}
}

func TestVerifyAbsentDigest(t *testing.T) {
	m := newTestManager(t, nil)

	if got := m.Verify("anything", ""); got != MatchNoMatch {
		t.Fatalf("expected MatchNoMatch for absent digest, got %v", got)
	}
	if got := m.metrics.Value(MetricVerifyNoMatch); got != 1 {
		t.Fatalf("expected 1 no-match, got %d", got)
	}
}

func TestVerifyCorruptDigest(t *testing.T) {
	m := newTestManager(t, nil)

	cases := []string{
		"not a digest at all",
		"c1",
		strings.Repeat("x", digest.EncodedLength),
		"c199" + strings.Repeat("A", digest.EncodedLength-4),
		"c2" + strings.Repeat("A", digest.EncodedLength-2),
	}

	for _, corrupt := range cases {
		if got := m.Verify("anything", corrupt); got != MatchInvalid {
			t.Fatalf("expected MatchInvalid for %q, got %v", corrupt, got)
		}
	}
	if got := m.metrics.Value(MetricVerifyInvalid); got != uint64(len(cases)) {
		t.Fatalf("expected %d invalid verifications, got %d", len(cases), got)
	}
}

func TestVerifyTruncatedDigest(t *testing.T) {
	m := newTestManager(t, nil)

	stored, err := m.Set("truncation target")
	if err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if got := m.Verify("truncation target", stored[:len(stored)-1]); got != MatchInvalid {
		t.Fatalf("expected MatchInvalid for truncated digest, got %v", got)
	}
}

func TestMatchResultSemantics(t *testing.T) {
	if MatchNoMatch != 0 {
		t.Fatal("zero value of MatchResult must be MatchNoMatch")
	}
	if MatchOK.Matched() != true || MatchNoMatch.Matched() || MatchInvalid.Matched() {
		t.Fatal("Matched must be true only for MatchOK")
	}
	if MatchOK.String() != "match" || MatchNoMatch.String() != "no_match" || MatchInvalid.String() != "invalid" {
		t.Fatalf("unexpected String values: %s %s %s", MatchOK, MatchNoMatch, MatchInvalid)
	}
}

func TestNeedsUpgrade(t *testing.T) {
	low := newTestManager(t, nil)
	stored, err := low.Set("upgrade me")
	if err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// Same cost as the issuing manager: no upgrade.
	if low.NeedsUpgrade(stored) {
		t.Fatal("digest at target cost flagged for upgrade")
	}

	// A manager with a higher target flags the same digest.
	high := newTestManager(t, func(cfg *Config) {
		cfg.Digest.TargetCost = testCost + 2
		cfg.Digest.MinCost = testCost + 1
	})
	if !high.NeedsUpgrade(stored) {
		t.Fatal("digest below target cost not flagged for upgrade")
	}
	if got := high.metrics.Value(MetricUpgradeFlagged); got != 1 {
		t.Fatalf("expected 1 upgrade flag, got %d", got)
	}

	// Undecodable digests are flagged too.
	if !low.NeedsUpgrade("garbage") {
		t.Fatal("undecodable digest not flagged for upgrade")
	}
}

func TestUpgradeOnVerifyFlow(t *testing.T) {
	old := newTestManager(t, nil)
	stored, err := old.Set("long lived secret")
	if err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	next := newTestManager(t, func(cfg *Config) {
		cfg.Digest.TargetCost = testCost + 1
	})

	// Digests minted at the old cost still verify under the new policy.
	if next.Verify("long lived secret", stored) != MatchOK {
		t.Fatal("old digest did not verify under raised target cost")
	}
	if !next.NeedsUpgrade(stored) {
		t.Fatal("old digest not flagged under raised target cost")
	}

	upgraded, err := next.Set("long lived secret")
	if err != nil {
		t.Fatalf("re-set failed: %v", err)
	}
	if next.NeedsUpgrade(upgraded) {
		t.Fatal("freshly minted digest flagged for upgrade")
	}
}

func TestRotate(t *testing.T) {
	m := newTestManager(t, nil)

	stored, err := m.Set("old secret")
	if err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	rotated, err := m.Rotate("old secret", "new secret", stored)
	if err != nil {
		t.Fatalf("Rotate failed: %v", err)
	}
	if rotated == stored {
		t.Fatal("rotation returned the original digest")
	}
	if m.Verify("new secret", rotated) != MatchOK {
		t.Fatal("rotated digest did not verify against new secret")
	}
	if m.Verify("old secret", rotated) == MatchOK {
		t.Fatal("rotated digest still verifies against old secret")
	}
}

func TestRotateRejectsWrongCurrent(t *testing.T) {
	m := newTestManager(t, nil)

	stored, err := m.Set("old secret")
	if err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if _, err := m.Rotate("not the old secret", "new secret", stored); !errors.Is(err, ErrCurrentMismatch) {
		t.Fatalf("expected ErrCurrentMismatch, got %v", err)
	}
	if got := m.metrics.Value(MetricRotateInvalidCurrent); got != 1 {
		t.Fatalf("expected 1 invalid-current rotation, got %d", got)
	}
}

func TestRotateRejectsReuse(t *testing.T) {
	m := newTestManager(t, nil)

	stored, err := m.Set("same secret")
	if err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if _, err := m.Rotate("same secret", "same secret", stored); !errors.Is(err, ErrSecretReuse) {
		t.Fatalf("expected ErrSecretReuse, got %v", err)
	}
}

func TestRotateRejectsEmptyNext(t *testing.T) {
	m := newTestManager(t, nil)

	stored, err := m.Set("old secret")
	if err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if _, err := m.Rotate("old secret", "", stored); !errors.Is(err, ErrEmptySecret) {
		t.Fatalf("expected ErrEmptySecret, got %v", err)
	}
}

func TestRotateConfirmedGate(t *testing.T) {
	m := newTestManager(t, nil)

	stored, err := m.Set("old secret")
	if err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if _, err := m.RotateConfirmed("old secret", "new secret", "different", stored); !errors.Is(err, ErrConfirmationMismatch) {
		t.Fatalf("expected ErrConfirmationMismatch, got %v", err)
	}

	rotated, err := m.RotateConfirmed("old secret", "new secret", "new secret", stored)
	if err != nil {
		t.Fatalf("RotateConfirmed failed: %v", err)
	}
	if m.Verify("new secret", rotated) != MatchOK {
		t.Fatal("rotated digest did not verify")
	}
}

func TestNilManagerIsSafe(t *testing.T) {
	var m *Manager

	if _, err := m.Set("x"); !errors.Is(err, ErrManagerNotReady) {
		t.Fatalf("expected ErrManagerNotReady from Set, got %v", err)
	}
	if got := m.Verify("x", "y"); got != MatchInvalid {
		t.Fatalf("expected MatchInvalid from nil Verify, got %v", got)
	}
	if m.NeedsUpgrade("y") {
		t.Fatal("nil manager reported upgrade")
	}
	if m.TargetCost() != 0 {
		t.Fatal("nil manager reported non-zero target cost")
	}
	m.Close()
}

func TestDecodeFailureTimingMatchesWrongSecret(t *testing.T) {
	if testing.Short() {
		t.Skip("timing measurement skipped in short mode")
	}

	m := newTestManager(t, func(cfg *Config) {
		cfg.Digest.TargetCost = 12
		cfg.Digest.MinCost = 12
	})

	stored, err := m.Set("timing probe secret")
	if err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	corrupt := strings.Repeat("x", digest.EncodedLength)

	const rounds = 5
	measure := func(target string) time.Duration {
		var total time.Duration
		for i := 0; i < rounds; i++ {
			start := time.Now()
			m.Verify("not the secret", target)
			total += time.Since(start)
		}
		return total / rounds
	}

	// Warm up caches before measuring.
	m.Verify("not the secret", stored)
	m.Verify("not the secret", corrupt)

	wrongSecret := measure(stored)
	decodeFailure := measure(corrupt)

	// A decode failure must not be observably cheaper than a wrong
	// secret. The bound is deliberately loose; scheduler noise at this
	// cost is far below the full derivation it guards against.
	if decodeFailure*4 < wrongSecret {
		t.Fatalf("decode-failure path too fast: %v vs wrong-secret %v", decodeFailure, wrongSecret)
	}
}

type failingDeriver struct{}

func (failingDeriver) Derive([]byte, []byte, int) ([]byte, error) {
	return nil, errors.New("derivation backend offline")
}

func TestSetPropagatesDeriverFailure(t *testing.T) {
	m, err := New().WithConfig(fastConfig()).WithDeriver(failingDeriver{}).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer m.Close()

	if _, err := m.Set("secret"); err == nil {
		t.Fatal("expected error from failing deriver")
	}
	if got := m.Verify("secret", strings.Repeat("A", digest.EncodedLength)); got != MatchInvalid {
		t.Fatalf("expected MatchInvalid on deriver failure, got %v", got)
	}
}
