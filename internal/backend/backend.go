// Package backend opens the credential store selected by the binary
// configuration.
package backend

import (
	"context"
	"fmt"
	"io"

	goCred "github.com/MrEthical07/goCred"
	"github.com/MrEthical07/goCred/internal/config"
	"github.com/redis/go-redis/v9"
	clientv3 "go.etcd.io/etcd/client/v3"
)

// Backend is an open store plus the client that must be closed on shutdown.
type Backend struct {
	Store  goCred.CredentialStore
	Kind   string
	closer io.Closer
	ping   func(ctx context.Context) error
}

// Open connects to the configured backend. It does not contact the store;
// call Ping for that.
func Open(cfg config.BackendConfig) (*Backend, error) {
	switch cfg.Kind {
	case config.BackendRedis:
		client := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:      cfg.Redis.Addrs,
			Username:   cfg.Redis.Username,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			MasterName: cfg.Redis.MasterName,
		})
		return &Backend{
			Store:  goCred.NewRedisStore(client),
			Kind:   cfg.Kind,
			closer: client,
			ping: func(ctx context.Context) error {
				return client.Ping(ctx).Err()
			},
		}, nil

	case config.BackendEtcd:
		client, err := clientv3.New(clientv3.Config{
			Endpoints:   cfg.Etcd.Endpoints,
			DialTimeout: cfg.Etcd.DialTimeout,
			Username:    cfg.Etcd.Username,
			Password:    cfg.Etcd.Password,
		})
		if err != nil {
			return nil, fmt.Errorf("etcd client: %w", err)
		}
		return &Backend{
			Store:  goCred.NewEtcdStore(client),
			Kind:   cfg.Kind,
			closer: client,
			ping: func(ctx context.Context) error {
				// Any read proves a quorum answered.
				_, err := client.Get(ctx, "health", clientv3.WithCountOnly())
				return err
			},
		}, nil

	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Kind)
	}
}

// Ping checks that the backend answers.
func (b *Backend) Ping(ctx context.Context) error {
	if b == nil || b.ping == nil {
		return fmt.Errorf("%w: backend not open", goCred.ErrStoreUnavailable)
	}
	if err := b.ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", goCred.ErrStoreUnavailable, err)
	}
	return nil
}

// Close releases the underlying client.
func (b *Backend) Close() error {
	if b == nil || b.closer == nil {
		return nil
	}
	return b.closer.Close()
}
