package driftwatch

import "time"

// StoreOption mutates StoreConfig when constructing a store.
type StoreOption func(StoreConfig) StoreConfig

// WithPrefix sets the key prefix for shared backends.
func WithPrefix(prefix string) StoreOption {
	return func(cfg StoreConfig) StoreConfig {
		cfg.Prefix = prefix
		return cfg
	}
}

// WithRedisClient sets the redis client; required for DriverRedis.
func WithRedisClient(client RedisClient) StoreOption {
	return func(cfg StoreConfig) StoreConfig {
		cfg.RedisClient = client
		return cfg
	}
}

// WithNATSKeyValue sets the NATS key-value bucket; required for DriverNATS.
func WithNATSKeyValue(kv NATSKeyValue) StoreOption {
	return func(cfg StoreConfig) StoreConfig {
		cfg.NATSKeyValue = kv
		return cfg
	}
}

// WithSQL sets the database/sql driver name and DSN; required for DriverSQL.
func WithSQL(driverName, dsn string) StoreOption {
	return func(cfg StoreConfig) StoreConfig {
		cfg.SQLDriverName = driverName
		cfg.SQLDSN = dsn
		return cfg
	}
}

// WithSQLTable overrides the cache table name.
func WithSQLTable(table string) StoreOption {
	return func(cfg StoreConfig) StoreConfig {
		cfg.SQLTable = table
		return cfg
	}
}

// WithDynamoClient sets a pre-built DynamoDB client.
func WithDynamoClient(client DynamoAPI) StoreOption {
	return func(cfg StoreConfig) StoreConfig {
		cfg.DynamoClient = client
		return cfg
	}
}

// WithDynamoTable overrides the DynamoDB table name.
func WithDynamoTable(table string) StoreOption {
	return func(cfg StoreConfig) StoreConfig {
		cfg.DynamoTable = table
		return cfg
	}
}

// WithDynamoEndpoint points the client at a local or alternative endpoint.
func WithDynamoEndpoint(endpoint, region, accessKey, secretKey string) StoreOption {
	return func(cfg StoreConfig) StoreConfig {
		cfg.DynamoEndpoint = endpoint
		cfg.DynamoRegion = region
		cfg.DynamoAccessKey = accessKey
		cfg.DynamoSecretKey = secretKey
		return cfg
	}
}

// EngineOption mutates an Engine during construction.
type EngineOption func(*Engine)

// WithDefaultTTL overrides the TTL assigned to new entries.
func WithDefaultTTL(ttl time.Duration) EngineOption {
	return func(e *Engine) {
		if ttl > 0 {
			e.defaultTTL = ttl
		}
	}
}

// WithNetworkDelay overrides the simulated round-trip delay. Zero disables
// the delay, which tests rely on.
func WithNetworkDelay(delay time.Duration) EngineOption {
	return func(e *Engine) {
		if delay >= 0 {
			e.delay = delay
		}
	}
}

// WithFailureRate sets the initial invalidation failure probability,
// clamped into [0,1].
func WithFailureRate(rate float64) EngineOption {
	return func(e *Engine) {
		e.failureRate = clampRate(rate)
	}
}

// WithFailureDecider substitutes the probabilistic failure decision,
// typically with SequenceDecider for reproducible tests.
func WithFailureDecider(decide FailureDecider) EngineOption {
	return func(e *Engine) {
		if decide != nil {
			e.decide = decide
		}
	}
}

// WithObserver attaches an observer to receive operation events.
func WithObserver(o Observer) EngineOption {
	return func(e *Engine) {
		e.observer = o
	}
}
