package credlock

import (
	"errors"
	"fmt"
	"time"

	"github.com/credlock/credlock/digest"
)

// Config defines all Manager tuning. It is passed explicitly into
// [Builder.Build] and copied; there is no process-wide mutable
// configuration, so tests can run multiple configurations concurrently
// without interference.
type Config struct {
	Digest   DigestConfig
	Guard    GuardConfig
	Rotation RotationConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

/*
====================================
DIGEST CONFIG
====================================
*/

// DigestConfig controls the work factor of new and accepted digests.
// Salt and key lengths are fixed constants of the digest format version
// (digest.SaltLength, digest.KeyLength), not configuration.
type DigestConfig struct {
	// TargetCost is the cost exponent applied to every new digest. Choose
	// it so one derivation costs roughly 100–250ms on deployment hardware,
	// and raise it as hardware improves; NeedsUpgrade flags digests minted
	// below it.
	TargetCost int
	// MinCost is the accepted floor. Digests below it still verify, but
	// NeedsUpgrade always reports true for them.
	MinCost int
}

/*
====================================
GUARD CONFIG
====================================
*/

// GuardConfig controls the Redis-backed attempt limiter used by
// VerifyGuarded. The guard exists because the derivation throttle alone
// does not stop online guessing against a live endpoint.
type GuardConfig struct {
	Enabled          bool
	MaxAttempts      int
	Cooldown         time.Duration
	EnableIPThrottle bool
	RedisPrefix      string
}

/*
====================================
ROTATION CONFIG
====================================
*/

// RotationConfig controls out-of-band rotation tickets: signed,
// time-limited, single-use authorizations to set a new credential
// without knowing the current one.
type RotationConfig struct {
	Enabled    bool
	TicketTTL  time.Duration
	SigningKey []byte
	Issuer     string
}

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	// DropIfFull drops events under backpressure instead of blocking the
	// calling operation; drops are counted and exported.
	DropIfFull bool
}

// MetricsConfig controls the in-process counters and the verify latency
// histogram.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

func defaultConfig() Config {
	return Config{
		Digest: DigestConfig{
			TargetCost: 15,
			MinCost:    12,
		},
		Guard: GuardConfig{
			Enabled:          false,
			MaxAttempts:      10,
			Cooldown:         15 * time.Minute,
			EnableIPThrottle: true,
			RedisPrefix:      "cl",
		},
		Rotation: RotationConfig{
			Enabled:   false,
			TicketTTL: 30 * time.Minute,
			Issuer:    "credlock",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	if len(cfg.Rotation.SigningKey) > 0 {
		out.Rotation.SigningKey = make([]byte, len(cfg.Rotation.SigningKey))
		copy(out.Rotation.SigningKey, cfg.Rotation.SigningKey)
	}
	return out
}

const minSigningKeyBytes = 32

func validateConfig(cfg Config) error {
	if cfg.Digest.TargetCost < digest.MinSupportedCost || cfg.Digest.TargetCost > digest.MaxSupportedCost {
		return fmt.Errorf("target cost %d must be in [%d, %d]",
			cfg.Digest.TargetCost, digest.MinSupportedCost, digest.MaxSupportedCost)
	}
	if cfg.Digest.MinCost < digest.MinSupportedCost || cfg.Digest.MinCost > digest.MaxSupportedCost {
		return fmt.Errorf("min cost %d must be in [%d, %d]",
			cfg.Digest.MinCost, digest.MinSupportedCost, digest.MaxSupportedCost)
	}
	if cfg.Digest.MinCost > cfg.Digest.TargetCost {
		return errors.New("min cost must not exceed target cost")
	}

	if cfg.Guard.Enabled {
		if cfg.Guard.MaxAttempts <= 0 {
			return errors.New("guard max attempts must be positive")
		}
		if cfg.Guard.Cooldown <= 0 {
			return errors.New("guard cooldown must be positive")
		}
		if cfg.Guard.RedisPrefix == "" {
			return errors.New("guard redis prefix must not be empty")
		}
	}

	if cfg.Rotation.Enabled {
		if cfg.Rotation.TicketTTL <= 0 {
			return errors.New("rotation ticket TTL must be positive")
		}
		if len(cfg.Rotation.SigningKey) < minSigningKeyBytes {
			return fmt.Errorf("rotation signing key must be at least %d bytes", minSigningKeyBytes)
		}
		if cfg.Rotation.Issuer == "" {
			return errors.New("rotation issuer must not be empty")
		}
	}

	if cfg.Audit.Enabled && cfg.Audit.BufferSize <= 0 {
		return errors.New("audit buffer size must be positive")
	}

	return nil
}
