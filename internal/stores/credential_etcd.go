package stores

import (
	"context"
	"fmt"

	clientv3 "go.etcd.io/etcd/client/v3"
)

// EtcdCredentialStore keeps credential records as etcd keys. Conditional
// writes are single transactions, so they hold across a cluster without
// client-side locking.
type EtcdCredentialStore struct {
	kv clientv3.KV
}

// NewEtcdCredentialStore accepts a *clientv3.Client or any other clientv3.KV.
func NewEtcdCredentialStore(kv clientv3.KV) *EtcdCredentialStore {
	return &EtcdCredentialStore{kv: kv}
}

func (s *EtcdCredentialStore) Get(ctx context.Context, key string) ([]byte, error) {
	resp, err := s.kv.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if len(resp.Kvs) == 0 {
		return nil, ErrNotFound
	}
	return resp.Kvs[0].Value, nil
}

func (s *EtcdCredentialStore) Put(ctx context.Context, key string, value []byte) error {
	if _, err := s.kv.Put(ctx, key, string(value)); err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return nil
}

// CompareAndSwap writes value only if the key currently holds expected. A nil
// expected means the key must not exist yet.
func (s *EtcdCredentialStore) CompareAndSwap(ctx context.Context, key string, expected, value []byte) error {
	var cmp clientv3.Cmp
	if expected == nil {
		cmp = clientv3.Compare(clientv3.CreateRevision(key), "=", 0)
	} else {
		cmp = clientv3.Compare(clientv3.Value(key), "=", string(expected))
	}

	resp, err := s.kv.Txn(ctx).
		If(cmp).
		Then(clientv3.OpPut(key, string(value))).
		Commit()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if !resp.Succeeded {
		return ErrConflict
	}
	return nil
}
