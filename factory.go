package driftwatch

import "context"

// NewStore returns a concrete entry store for the requested driver. Drivers
// that can fail to initialize (sql, dynamodb) return an error store that
// surfaces the construction error on every call, preserving driver identity.
func NewStore(ctx context.Context, cfg StoreConfig) EntryStore {
	cfg = cfg.withDefaults()
	switch cfg.Driver {
	case DriverNull:
		return newNullStore()
	case DriverRedis:
		return newRedisStore(cfg.RedisClient, cfg.Prefix)
	case DriverNATS:
		return newNATSStore(cfg.NATSKeyValue, cfg.Prefix)
	case DriverSQL:
		store, err := newSQLStore(cfg)
		if err != nil {
			return newErrorStore(DriverSQL, err)
		}
		return store
	case DriverDynamo:
		store, err := newDynamoStore(ctx, cfg)
		if err != nil {
			return newErrorStore(DriverDynamo, err)
		}
		return store
	default:
		return newMemoryStore()
	}
}

// NewStoreWith builds a store from a driver and functional options.
func NewStoreWith(ctx context.Context, driver Driver, opts ...StoreOption) EntryStore {
	cfg := StoreConfig{Driver: driver}
	for _, opt := range opts {
		cfg = opt(cfg)
	}
	return NewStore(ctx, cfg)
}

// NewMemoryStore is a convenience for the in-process store.
func NewMemoryStore() EntryStore {
	return newMemoryStore()
}

// NewNullStore is a convenience for the always-miss store.
func NewNullStore() EntryStore {
	return newNullStore()
}

// NewRedisStore is a convenience for a redis-backed store.
func NewRedisStore(client RedisClient, opts ...StoreOption) EntryStore {
	return NewStoreWith(context.Background(), DriverRedis, append([]StoreOption{WithRedisClient(client)}, opts...)...)
}

// NewNATSStore is a convenience for a NATS KV-backed store.
func NewNATSStore(kv NATSKeyValue, opts ...StoreOption) EntryStore {
	return NewStoreWith(context.Background(), DriverNATS, append([]StoreOption{WithNATSKeyValue(kv)}, opts...)...)
}

// NewSQLStore is a convenience for a relational store. driverName is one of
// "sqlite", "mysql", or "pgx".
func NewSQLStore(driverName, dsn string, opts ...StoreOption) EntryStore {
	return NewStoreWith(context.Background(), DriverSQL, append([]StoreOption{WithSQL(driverName, dsn)}, opts...)...)
}
