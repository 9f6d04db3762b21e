package driftwatch_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/goforj/driftwatch"
	"github.com/goforj/driftwatch/drifttest"
)

func TestNATSStoreContract(t *testing.T) {
	store := driftwatch.NewNATSStore(newStubKeyValue())
	drifttest.RunStoreContract(t, store, drifttest.Options{
		SkipCloneCheck: true,
	})
}

func TestNATSStoreDeleteAbsentKey(t *testing.T) {
	store := driftwatch.NewNATSStore(newStubKeyValue())
	if err := store.Delete(context.Background(), "never-stored"); err != nil {
		t.Fatalf("expected purge of absent key to be tolerated: %v", err)
	}
}

func TestNATSStorePropagatesErrors(t *testing.T) {
	kv := newStubKeyValue()
	kv.getErr = errors.New("jetstream unavailable")
	store := driftwatch.NewNATSStore(kv)
	if _, _, err := store.Get(context.Background(), "r1"); err == nil {
		t.Fatalf("expected get error to propagate")
	}
}

// stubKeyValue is an in-memory NATSKeyValue used for unit tests.
type stubKeyValue struct {
	data map[string][]byte
	rev  uint64

	getErr  error
	putErr  error
	listErr error
}

func newStubKeyValue() *stubKeyValue {
	return &stubKeyValue{data: make(map[string][]byte)}
}

func (kv *stubKeyValue) Get(key string) (nats.KeyValueEntry, error) {
	if kv.getErr != nil {
		return nil, kv.getErr
	}
	val, ok := kv.data[key]
	if !ok {
		return nil, nats.ErrKeyNotFound
	}
	return &stubKVEntry{key: key, value: val, revision: kv.rev}, nil
}

func (kv *stubKeyValue) Put(key string, value []byte) (uint64, error) {
	if kv.putErr != nil {
		return 0, kv.putErr
	}
	kv.rev++
	kv.data[key] = append([]byte(nil), value...)
	return kv.rev, nil
}

func (kv *stubKeyValue) Purge(key string, _ ...nats.DeleteOpt) error {
	if _, ok := kv.data[key]; !ok {
		return nats.ErrKeyNotFound
	}
	delete(kv.data, key)
	return nil
}

func (kv *stubKeyValue) ListKeys(_ ...nats.WatchOpt) (nats.KeyLister, error) {
	if kv.listErr != nil {
		return nil, kv.listErr
	}
	if len(kv.data) == 0 {
		return nil, nats.ErrNoKeysFound
	}
	ch := make(chan string, len(kv.data))
	for key := range kv.data {
		ch <- key
	}
	close(ch)
	return &stubKeyLister{ch: ch}, nil
}

type stubKVEntry struct {
	key      string
	value    []byte
	revision uint64
}

func (e *stubKVEntry) Bucket() string             { return "drift_cache" }
func (e *stubKVEntry) Key() string                { return e.key }
func (e *stubKVEntry) Value() []byte              { return e.value }
func (e *stubKVEntry) Revision() uint64           { return e.revision }
func (e *stubKVEntry) Created() time.Time         { return time.Time{} }
func (e *stubKVEntry) Delta() uint64              { return 0 }
func (e *stubKVEntry) Operation() nats.KeyValueOp { return nats.KeyValuePut }

type stubKeyLister struct {
	ch chan string
}

func (l *stubKeyLister) Keys() <-chan string { return l.ch }
func (l *stubKeyLister) Stop() error         { return nil }
func (l *stubKeyLister) Error() <-chan error {
	ch := make(chan error)
	close(ch)
	return ch
}
