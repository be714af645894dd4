package goCred

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/MrEthical07/goCred/password"
	"github.com/MrEthical07/goCred/record"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	clientv3 "go.etcd.io/etcd/client/v3"
)

// Builder assembles an [Engine]. A Builder is single-use and not safe for
// concurrent use; the Engine it produces is.
type Builder struct {
	config Config
	store  CredentialStore
	logger *slog.Logger

	built bool
}

// New describes the new operation and its observable behavior.
//
// New starts from [DefaultConfig]. Build fails until a salt and a store are supplied.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithStore sets a custom [CredentialStore].
func (b *Builder) WithStore(store CredentialStore) *Builder {
	b.store = store
	return b
}

// WithRedis stores records in Redis. The caller keeps ownership of client.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	if client == nil {
		b.store = nil
		return b
	}
	b.store = NewRedisStore(client)
	return b
}

// WithEtcd stores records in etcd. The caller keeps ownership of kv.
func (b *Builder) WithEtcd(kv clientv3.KV) *Builder {
	if kv == nil {
		b.store = nil
		return b
	}
	b.store = NewEtcdStore(kv)
	return b
}

// WithLogger sets the structured logger. The default discards everything.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the verify latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build returns an error wrapping [ErrConfiguration] when no store is set,
// when the salt does not decode, or when any parameter fails Validate.
// A Builder can only be built once.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if b.store == nil {
		return nil, fmt.Errorf("%w: credential store required", ErrConfiguration)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	salt, err := cfg.KDF.decodeSalt()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	kdf, err := password.NewScrypt(cfg.KDF.passwordConfig())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	logger := b.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	b.built = true

	return &Engine{
		config:   cfg,
		store:    b.store,
		kdf:      kdf,
		codec:    record.NewCodec(cfg.KDF.KeyLength),
		salt:     salt,
		logger:   logger.With("component", "gocred"),
		metrics:  NewMetrics(cfg.Metrics),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}, nil
}
