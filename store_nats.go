package driftwatch

import (
	"context"
	"errors"
	"strings"

	"github.com/nats-io/nats.go"
)

// NATSKeyValue captures the subset of nats.KeyValue used by the store.
type NATSKeyValue interface {
	Get(key string) (nats.KeyValueEntry, error)
	Put(key string, value []byte) (uint64, error)
	Purge(key string, opts ...nats.DeleteOpt) error
	ListKeys(opts ...nats.WatchOpt) (nats.KeyLister, error)
}

// natsStore keeps entries in a NATS JetStream key-value bucket. Key names are
// prefixed with the store prefix using '.' (NATS keys reject ':').
type natsStore struct {
	kv     NATSKeyValue
	prefix string
}

func newNATSStore(kv NATSKeyValue, prefix string) EntryStore {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &natsStore{kv: kv, prefix: prefix}
}

func (s *natsStore) Driver() Driver { return DriverNATS }

func (s *natsStore) Get(_ context.Context, id string) (*Entry, bool, error) {
	if s.kv == nil {
		return nil, false, errors.New("nats cache key-value unavailable")
	}
	kvEntry, err := s.kv.Get(s.cacheKey(id))
	if isNATSMiss(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if kvEntry.Operation() == nats.KeyValueDelete || kvEntry.Operation() == nats.KeyValuePurge {
		return nil, false, nil
	}
	entry, err := decodeEntry(kvEntry.Value())
	if err != nil {
		return nil, false, err
	}
	return entry, true, nil
}

func (s *natsStore) Put(_ context.Context, id string, entry *Entry) error {
	if s.kv == nil {
		return errors.New("nats cache key-value unavailable")
	}
	body, err := encodeEntry(entry)
	if err != nil {
		return err
	}
	_, err = s.kv.Put(s.cacheKey(id), body)
	return err
}

func (s *natsStore) Delete(_ context.Context, id string) error {
	if s.kv == nil {
		return errors.New("nats cache key-value unavailable")
	}
	err := s.kv.Purge(s.cacheKey(id))
	if isNATSMiss(err) {
		return nil
	}
	return err
}

func (s *natsStore) List(ctx context.Context) (map[string]*Entry, error) {
	if s.kv == nil {
		return nil, errors.New("nats cache key-value unavailable")
	}
	entries := make(map[string]*Entry)
	err := s.eachKey(func(key string) error {
		id := strings.TrimPrefix(key, s.prefix+".")
		entry, ok, err := s.Get(ctx, id)
		if err != nil || !ok {
			return err
		}
		entries[id] = entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *natsStore) Flush(_ context.Context) (int, error) {
	if s.kv == nil {
		return 0, errors.New("nats cache key-value unavailable")
	}
	removed := 0
	err := s.eachKey(func(key string) error {
		if err := s.kv.Purge(key); err != nil && !isNATSMiss(err) {
			return err
		}
		removed++
		return nil
	})
	return removed, err
}

func (s *natsStore) eachKey(fn func(key string) error) error {
	lister, err := s.kv.ListKeys()
	if err != nil {
		if isNATSMiss(err) {
			return nil
		}
		return err
	}
	defer lister.Stop()
	for key := range lister.Keys() {
		if !strings.HasPrefix(key, s.prefix+".") {
			continue
		}
		if err := fn(key); err != nil {
			return err
		}
	}
	return nil
}

func (s *natsStore) cacheKey(id string) string {
	return s.prefix + "." + id
}

func isNATSMiss(err error) bool {
	return errors.Is(err, nats.ErrKeyNotFound) || errors.Is(err, nats.ErrNoKeysFound)
}
