package driftwatch

import "context"

// nullStore drops everything. Useful for exercising the zero-cache baseline
// where every record counts as uncached.
type nullStore struct{}

func newNullStore() EntryStore { return &nullStore{} }

func (s *nullStore) Driver() Driver { return DriverNull }

func (s *nullStore) Get(context.Context, string) (*Entry, bool, error) {
	return nil, false, nil
}

func (s *nullStore) Put(context.Context, string, *Entry) error { return nil }

func (s *nullStore) Delete(context.Context, string) error { return nil }

func (s *nullStore) List(context.Context) (map[string]*Entry, error) {
	return map[string]*Entry{}, nil
}

func (s *nullStore) Flush(context.Context) (int, error) { return 0, nil }
