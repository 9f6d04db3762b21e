package driftwatch

import "time"

const (
	// DefaultTTL is applied to entries cached without an explicit TTL.
	DefaultTTL = 300 * time.Second

	// DefaultNetworkDelay models the round-trip cost of a remote cache.
	DefaultNetworkDelay = 100 * time.Millisecond

	// DefaultFailureRate is the probability a single invalidation is lost.
	DefaultFailureRate = 0.2

	defaultKeyPrefix = "driftwatch"
)

// StoreConfig controls how an EntryStore is constructed.
type StoreConfig struct {
	Driver Driver

	// Prefix namespaces keys on shared backends (redis, sql, nats, dynamo).
	Prefix string

	// RedisClient is required when DriverRedis is used.
	RedisClient RedisClient

	// NATSKeyValue is required when DriverNATS is used.
	NATSKeyValue NATSKeyValue

	// SQL driver settings; SQLDriverName is one of "sqlite", "mysql", "pgx".
	SQLDriverName string
	SQLDSN        string
	SQLTable      string

	// Dynamo settings. When DynamoClient is nil a client is constructed from
	// the endpoint/region/credential fields (local DynamoDB friendly).
	DynamoClient    DynamoAPI
	DynamoTable     string
	DynamoRegion    string
	DynamoEndpoint  string
	DynamoAccessKey string
	DynamoSecretKey string
}

func (c StoreConfig) withDefaults() StoreConfig {
	if c.Driver == "" {
		c.Driver = DriverMemory
	}
	if c.Prefix == "" {
		c.Prefix = defaultKeyPrefix
	}
	if c.SQLTable == "" {
		c.SQLTable = "drift_cache_entries"
	}
	if c.DynamoTable == "" {
		c.DynamoTable = "drift_cache_entries"
	}
	if c.DynamoRegion == "" {
		c.DynamoRegion = "us-east-1"
	}
	return c
}
