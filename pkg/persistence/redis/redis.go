package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/thortx/thortx-go/pkg/persistence"
	"github.com/thortx/thortx-go/pkg/thor"
	"go.uber.org/zap"
)

const (
	keyPrefixTx          = "thortx:tx:"
	keySchemaVersion     = "thortx:metadata:schema_version"
	currentSchemaVersion = "v1"

	// Redis has no prefix iteration, so ids are indexed in a set.
	keySetTxs = "thortx:txs:index"

	updateRetries = 5
)

// RedisJournal stores the transaction journal in Redis.
type RedisJournal struct {
	client    *redis.Client
	logger    *zap.Logger
	keyPrefix string
	mu        sync.RWMutex
	closed    bool
}

var _ persistence.ITxJournal = (*RedisJournal)(nil)

// RedisConfig holds the configuration for connecting to Redis
type RedisConfig struct {
	// Address is the Redis server address (host:port)
	Address  string
	Password string
	// DB is the Redis database number (0-15)
	DB int
	// KeyPrefix is prepended to every key, e.g. "ci:" gives "ci:thortx:tx:0x..".
	KeyPrefix string
}

func NewRedisJournal(cfg *RedisConfig, logger *zap.Logger) (*RedisJournal, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address cannot be empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Address, err)
	}

	rj := &RedisJournal{
		client:    client,
		logger:    logger,
		keyPrefix: cfg.KeyPrefix,
	}

	if err := rj.initSchema(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Sugar().Infow("Redis journal initialized", "address", cfg.Address, "db", cfg.DB, "key_prefix", cfg.KeyPrefix)
	return rj, nil
}

func (r *RedisJournal) prefixKey(key string) string {
	if r.keyPrefix == "" {
		return key
	}
	return r.keyPrefix + key
}

func (r *RedisJournal) txKey(id thor.Bytes32) string {
	return r.prefixKey(keyPrefixTx + id.String())
}

func (r *RedisJournal) initSchema(ctx context.Context) error {
	schemaKey := r.prefixKey(keySchemaVersion)

	existingVersion, err := r.client.Get(ctx, schemaKey).Result()
	if err == redis.Nil {
		return r.client.Set(ctx, schemaKey, currentSchemaVersion, 0).Err()
	}
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	if existingVersion != currentSchemaVersion {
		return fmt.Errorf("unsupported schema version: %s (expected: %s)", existingVersion, currentSchemaVersion)
	}
	return nil
}

func (r *RedisJournal) SaveTransaction(record *persistence.TxRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return fmt.Errorf("journal is closed")
	}

	data, err := persistence.MarshalTxRecord(record)
	if err != nil {
		return fmt.Errorf("failed to marshal TxRecord: %w", err)
	}

	ctx := context.Background()
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.txKey(record.ID), data, 0)
	pipe.SAdd(ctx, r.prefixKey(keySetTxs), record.ID.String())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save TxRecord: %w", err)
	}
	return nil
}

func (r *RedisJournal) LoadTransaction(id thor.Bytes32) (*persistence.TxRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, fmt.Errorf("journal is closed")
	}

	data, err := r.client.Get(context.Background(), r.txKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load TxRecord: %w", err)
	}

	record, err := persistence.UnmarshalTxRecord(data)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal TxRecord: %w", err)
	}
	return record, nil
}

func (r *RedisJournal) ListTransactions() ([]*persistence.TxRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, fmt.Errorf("journal is closed")
	}

	ctx := context.Background()
	indexKey := r.prefixKey(keySetTxs)

	ids, err := r.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list transaction ids: %w", err)
	}

	records := make([]*persistence.TxRecord, 0, len(ids))
	if len(ids) == 0 {
		return records, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.prefixKey(keyPrefixTx + id)
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch TxRecords: %w", err)
	}

	for i, val := range values {
		if val == nil {
			// indexed but gone, drop the stale index entry
			r.client.SRem(ctx, indexKey, ids[i])
			continue
		}

		data, ok := val.(string)
		if !ok {
			r.logger.Sugar().Warnw("Unexpected value type for TxRecord", "key", keys[i])
			continue
		}

		record, err := persistence.UnmarshalTxRecord([]byte(data))
		if err != nil {
			r.logger.Sugar().Warnw("Failed to unmarshal TxRecord, skipping", "key", keys[i], "error", err)
			continue
		}
		records = append(records, record)
	}

	persistence.SortRecords(records)
	return records, nil
}

// UpdateStatus rewrites the record under WATCH so concurrent updates of the
// same id do not lose each other.
func (r *RedisJournal) UpdateStatus(id thor.Bytes32, update *persistence.StatusUpdate) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return fmt.Errorf("journal is closed")
	}

	ctx := context.Background()
	key := r.txKey(id)

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err == redis.Nil {
			return fmt.Errorf("transaction %s not found in journal", id)
		}
		if err != nil {
			return fmt.Errorf("failed to load TxRecord: %w", err)
		}

		record, err := persistence.UnmarshalTxRecord(data)
		if err != nil {
			return fmt.Errorf("failed to unmarshal TxRecord: %w", err)
		}
		if err := record.Apply(update); err != nil {
			return err
		}
		updated, err := persistence.MarshalTxRecord(record)
		if err != nil {
			return fmt.Errorf("failed to marshal TxRecord: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, 0)
			return nil
		})
		return err
	}

	for i := 0; i < updateRetries; i++ {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("failed to update transaction %s: too much contention", id)
}

func (r *RedisJournal) DeleteTransaction(id thor.Bytes32) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return fmt.Errorf("journal is closed")
	}

	ctx := context.Background()
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.txKey(id))
	pipe.SRem(ctx, r.prefixKey(keySetTxs), id.String())
	_, err := pipe.Exec(ctx)
	return err
}

func (r *RedisJournal) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	if err := r.client.Close(); err != nil {
		return fmt.Errorf("failed to close Redis client: %w", err)
	}

	r.logger.Sugar().Info("Redis journal closed")
	return nil
}

func (r *RedisJournal) HealthCheck() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return fmt.Errorf("journal is closed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}

	_, err := r.client.Get(ctx, r.prefixKey(keySchemaVersion)).Result()
	if err == redis.Nil {
		return fmt.Errorf("schema version not found - database may not be properly initialized")
	}
	if err != nil {
		return fmt.Errorf("failed to verify schema version: %w", err)
	}
	return nil
}
