package stores

import (
	"context"
	"errors"
	"sync"
	"testing"

	pb "go.etcd.io/etcd/api/v3/etcdserverpb"
	"go.etcd.io/etcd/api/v3/mvccpb"
	clientv3 "go.etcd.io/etcd/client/v3"
)

type fakeEntry struct {
	value     string
	createRev int64
}

// fakeKV implements the subset of clientv3.KV the store uses.
type fakeKV struct {
	clientv3.KV

	mu   sync.Mutex
	data map[string]fakeEntry
	rev  int64
	err  error
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string]fakeEntry{}}
}

func (f *fakeKV) Get(_ context.Context, key string, _ ...clientv3.OpOption) (*clientv3.GetResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}

	resp := &clientv3.GetResponse{}
	if e, ok := f.data[key]; ok {
		resp.Kvs = []*mvccpb.KeyValue{{Key: []byte(key), Value: []byte(e.value), CreateRevision: e.createRev}}
	}
	return resp, nil
}

func (f *fakeKV) Put(_ context.Context, key, val string, _ ...clientv3.OpOption) (*clientv3.PutResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.putLocked(key, val)
	return &clientv3.PutResponse{}, nil
}

func (f *fakeKV) putLocked(key, val string) {
	f.rev++
	e, ok := f.data[key]
	if !ok {
		e.createRev = f.rev
	}
	e.value = val
	f.data[key] = e
}

func (f *fakeKV) Txn(context.Context) clientv3.Txn {
	return &fakeTxn{kv: f}
}

type fakeTxn struct {
	kv   *fakeKV
	cmps []clientv3.Cmp
	then []clientv3.Op
}

func (t *fakeTxn) If(cs ...clientv3.Cmp) clientv3.Txn {
	t.cmps = append(t.cmps, cs...)
	return t
}

func (t *fakeTxn) Then(ops ...clientv3.Op) clientv3.Txn {
	t.then = append(t.then, ops...)
	return t
}

func (t *fakeTxn) Else(...clientv3.Op) clientv3.Txn {
	return t
}

func (t *fakeTxn) Commit() (*clientv3.TxnResponse, error) {
	t.kv.mu.Lock()
	defer t.kv.mu.Unlock()
	if t.kv.err != nil {
		return nil, t.kv.err
	}

	ok := true
	for i := range t.cmps {
		cmp := &t.cmps[i]
		e, exists := t.kv.data[string(cmp.KeyBytes())]
		switch cmp.Target {
		case pb.Compare_CREATE:
			want := cmp.TargetUnion.(*pb.Compare_CreateRevision).CreateRevision
			got := int64(0)
			if exists {
				got = e.createRev
			}
			ok = ok && got == want
		case pb.Compare_VALUE:
			ok = ok && exists && e.value == string(cmp.ValueBytes())
		default:
			ok = false
		}
	}

	if ok {
		for _, op := range t.then {
			if op.IsPut() {
				t.kv.putLocked(string(op.KeyBytes()), string(op.ValueBytes()))
			}
		}
	}
	return &clientv3.TxnResponse{Succeeded: ok}, nil
}

func TestEtcdGetMissingKey(t *testing.T) {
	store := NewEtcdCredentialStore(newFakeKV())

	if _, err := store.Get(context.Background(), "users/nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEtcdPutGet(t *testing.T) {
	store := NewEtcdCredentialStore(newFakeKV())
	ctx := context.Background()

	if err := store.Put(ctx, "k", []byte("v1")); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	got, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if string(got) != "v1" {
		t.Fatalf("unexpected value %q", got)
	}
}

func TestEtcdCompareAndSwap(t *testing.T) {
	store := NewEtcdCredentialStore(newFakeKV())
	ctx := context.Background()

	if err := store.CompareAndSwap(ctx, "k", nil, []byte("first")); err != nil {
		t.Fatalf("create error: %v", err)
	}
	if err := store.CompareAndSwap(ctx, "k", nil, []byte("again")); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict on duplicate create, got %v", err)
	}
	if err := store.CompareAndSwap(ctx, "k", []byte("stale"), []byte("x")); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict on stale value, got %v", err)
	}
	if err := store.CompareAndSwap(ctx, "k", []byte("first"), []byte("second")); err != nil {
		t.Fatalf("swap error: %v", err)
	}
	got, _ := store.Get(ctx, "k")
	if string(got) != "second" {
		t.Fatalf("expected swapped value, got %q", got)
	}
}

func TestEtcdUnavailable(t *testing.T) {
	kv := newFakeKV()
	kv.err = context.DeadlineExceeded
	store := NewEtcdCredentialStore(kv)
	ctx := context.Background()

	_, err := store.Get(ctx, "k")
	if !errors.Is(err, ErrUnavailable) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected ErrUnavailable wrapping deadline, got %v", err)
	}
	if err := store.Put(ctx, "k", []byte("v")); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable from Put, got %v", err)
	}
	if err := store.CompareAndSwap(ctx, "k", nil, []byte("v")); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable from CompareAndSwap, got %v", err)
	}
}
