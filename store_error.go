package driftwatch

import "context"

// errorStore is returned when a driver fails to initialize; it preserves the
// driver identity while surfacing the construction error on every call.
type errorStore struct {
	driver Driver
	err    error
}

func newErrorStore(driver Driver, err error) EntryStore {
	return &errorStore{driver: driver, err: err}
}

func (s *errorStore) Driver() Driver { return s.driver }

func (s *errorStore) Get(context.Context, string) (*Entry, bool, error) {
	return nil, false, s.err
}

func (s *errorStore) Put(context.Context, string, *Entry) error { return s.err }

func (s *errorStore) Delete(context.Context, string) error { return s.err }

func (s *errorStore) List(context.Context) (map[string]*Entry, error) {
	return nil, s.err
}

func (s *errorStore) Flush(context.Context) (int, error) { return 0, s.err }
