package credlock

import (
	"errors"

	"github.com/credlock/credlock/digest"
	"github.com/credlock/credlock/internal/rate"
	"github.com/redis/go-redis/v9"
)

// Builder assembles a [Manager]. Construction is allocation-only except
// for one draw from the secure random source (the constant-work salt);
// no I/O happens until Manager methods are called.
type Builder struct {
	config    Config
	redis     *redis.Client
	deriver   digest.Deriver
	auditSink AuditSink

	built bool
}

// New returns a Builder preloaded with the default configuration:
// target cost 15, accepted floor 12, guard and rotation disabled,
// metrics enabled.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the entire configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis supplies the Redis client backing the verify guard and the
// rotation ticket store. Required when either is enabled.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithDeriver replaces the adaptive hash primitive. The default is
// [digest.Scrypt]. Substitutes must honor the [digest.Deriver] contract;
// digests produced by different derivers do not verify against each
// other.
func (b *Builder) WithDeriver(d digest.Deriver) *Builder {
	b.deriver = d
	return b
}

// WithAuditSink supplies the destination for audit events. Ignored
// unless Config.Audit.Enabled is set.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithTargetCost overrides the cost factor applied to new digests.
func (b *Builder) WithTargetCost(cost int) *Builder {
	b.config.Digest.TargetCost = cost
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration and returns a ready Manager.
// A Builder builds at most once.
func (b *Builder) Build() (*Manager, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	if err := validateConfig(b.config); err != nil {
		return nil, err
	}
	if (b.config.Guard.Enabled || b.config.Rotation.Enabled) && b.redis == nil {
		return nil, errors.New("guard and rotation tickets require a redis client")
	}

	deriver := b.deriver
	if deriver == nil {
		deriver = digest.Scrypt{}
	}

	// The constant-work salt is fixed per Manager; it never appears in
	// any digest, so reuse across calls is harmless.
	dummySalt, err := digest.NewSalt()
	if err != nil {
		return nil, err
	}

	m := &Manager{
		config:    b.config,
		deriver:   deriver,
		metrics:   NewMetrics(b.config.Metrics),
		audit:     newAuditDispatcher(b.config.Audit, b.auditSink),
		dummySalt: dummySalt,
	}

	if b.config.Guard.Enabled {
		m.guard = rate.New(b.redis, rate.Config{
			Prefix:           b.config.Guard.RedisPrefix,
			EnableIPThrottle: b.config.Guard.EnableIPThrottle,
			MaxAttempts:      b.config.Guard.MaxAttempts,
			Cooldown:         b.config.Guard.Cooldown,
		})
	}

	if b.config.Rotation.Enabled {
		m.tickets = newTicketStore(b.redis)
	}

	b.built = true
	return m, nil
}
