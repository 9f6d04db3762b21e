package driftwatch

import (
	"context"

	gocache "github.com/patrickmn/go-cache"
)

// memoryStore keeps entries in-process. go-cache provides the concurrent map;
// item-level expiry stays disabled because TTL semantics (lazy expiry on
// read, expired-but-present stats) are owned by the engine.
type memoryStore struct {
	cache *gocache.Cache
}

func newMemoryStore() EntryStore {
	return &memoryStore{
		cache: gocache.New(gocache.NoExpiration, 0),
	}
}

func (s *memoryStore) Driver() Driver {
	return DriverMemory
}

func (s *memoryStore) Get(_ context.Context, id string) (*Entry, bool, error) {
	item, ok := s.cache.Get(id)
	if !ok {
		return nil, false, nil
	}
	entry, ok := item.(*Entry)
	if !ok {
		return nil, false, nil
	}
	return entry.Clone(), true, nil
}

func (s *memoryStore) Put(_ context.Context, id string, entry *Entry) error {
	s.cache.Set(id, entry.Clone(), gocache.NoExpiration)
	return nil
}

func (s *memoryStore) Delete(_ context.Context, id string) error {
	s.cache.Delete(id)
	return nil
}

func (s *memoryStore) List(_ context.Context) (map[string]*Entry, error) {
	items := s.cache.Items()
	entries := make(map[string]*Entry, len(items))
	for id, item := range items {
		if entry, ok := item.Object.(*Entry); ok {
			entries[id] = entry.Clone()
		}
	}
	return entries, nil
}

func (s *memoryStore) Flush(_ context.Context) (int, error) {
	count := s.cache.ItemCount()
	s.cache.Flush()
	return count, nil
}
