package goCred

import (
	"context"

	"github.com/MrEthical07/goCred/internal/stores"
	"github.com/redis/go-redis/v9"
	clientv3 "go.etcd.io/etcd/client/v3"
)

// CredentialStore is the key-value contract the Engine needs from a backend.
//
// Implementations must return [ErrRecordNotFound] from Get for a missing
// key, wrap every transport, timeout or quorum fault in [ErrStoreUnavailable],
// and return [ErrStoreConflict] from CompareAndSwap when expected does not
// match. A nil expected means create-if-absent. Implementations must honour
// ctx cancellation and be safe for concurrent use.
type CredentialStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	CompareAndSwap(ctx context.Context, key string, expected, value []byte) error
}

// NewRedisStore returns a CredentialStore over a go-redis client. Standalone,
// sentinel and cluster clients all satisfy redis.UniversalClient.
func NewRedisStore(client redis.UniversalClient) CredentialStore {
	return stores.NewRedisCredentialStore(client)
}

// NewEtcdStore returns a CredentialStore over an etcd v3 KV, usually a
// *clientv3.Client.
func NewEtcdStore(kv clientv3.KV) CredentialStore {
	return stores.NewEtcdCredentialStore(kv)
}
