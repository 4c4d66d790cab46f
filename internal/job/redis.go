package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotConnected is returned when a RedisStore is used before
// Connect has succeeded.
var ErrNotConnected = errors.New("job: redis store not connected")

// DefaultTTL is the default expiration for persisted job records.
const DefaultTTL = 7 * 24 * time.Hour

// keyPrefix namespaces job records in Redis.
const keyPrefix = "petroast:job:"

// Compile-time check that RedisStore implements Store.
var _ Store = (*RedisStore)(nil)

// RedisStore is a Redis-backed implementation of Store. Records are
// serialized as JSON and written with a TTL so abandoned jobs expire
// without a domain-level delete. Expiry is invisible to the layers
// above: an expired job simply reads as ErrNotFound.
type RedisStore struct {
	// mu serializes read-modify-write cycles in Update so concurrent
	// poll and webhook writers cannot interleave partial field merges.
	mu        sync.Mutex
	client    *redis.Client
	addr      string
	ttl       time.Duration
	logger    *slog.Logger
	connected bool
}

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithTTL overrides the record expiration (default 7 days).
func WithTTL(ttl time.Duration) RedisStoreOption {
	return func(s *RedisStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithLogger sets the logger used for connection lifecycle messages.
func WithLogger(logger *slog.Logger) RedisStoreOption {
	return func(s *RedisStore) {
		s.logger = logger
	}
}

// NewRedisStore creates a RedisStore for the given redis URL
// (e.g. redis://localhost:6379/0). Connect must be called before use.
func NewRedisStore(url string, opts ...RedisStoreOption) (*RedisStore, error) {
	redisOpts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("job: parse redis url: %w", err)
	}

	s := &RedisStore{
		addr:   redisOpts.Addr,
		ttl:    DefaultTTL,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.client = redis.NewClient(redisOpts)
	return s, nil
}

// Connect verifies the Redis connection with a ping. The store fails
// fast on every operation until Connect succeeds.
func (s *RedisStore) Connect(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("job: redis ping %s: %w", s.addr, err)
	}
	s.connected = true
	s.logger.Info("connected to redis",
		slog.String("addr", s.addr),
		slog.Duration("job_ttl", s.ttl),
	)
	return nil
}

// Close releases the underlying Redis connection.
func (s *RedisStore) Close() error {
	s.connected = false
	return s.client.Close()
}

func (s *RedisStore) key(jobID string) string {
	return keyPrefix + jobID
}

// Upsert inserts or replaces a record with the configured TTL.
func (s *RedisStore) Upsert(ctx context.Context, record *Record) error {
	if !s.connected {
		return ErrNotConnected
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("job: marshal record %s: %w", record.JobID, err)
	}
	if err := s.client.Set(ctx, s.key(record.JobID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("job: store record %s: %w", record.JobID, err)
	}
	return nil
}

// Get retrieves a record by job ID.
func (s *RedisStore) Get(ctx context.Context, jobID string) (*Record, error) {
	if !s.connected {
		return nil, ErrNotConnected
	}
	data, err := s.client.Get(ctx, s.key(jobID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("job: fetch record %s: %w", jobID, err)
	}
	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("job: unmarshal record %s: %w", jobID, err)
	}
	return &record, nil
}

// Update fetches the record, applies the non-nil fields and writes it
// back, refreshing the TTL. The whole cycle runs under the store
// mutex so a single job's updates are linearized.
func (s *RedisStore) Update(ctx context.Context, jobID string, fields Fields) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	record.Apply(fields)
	if err := s.Upsert(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// Delete removes a record. Returns true if a record was deleted.
func (s *RedisStore) Delete(ctx context.Context, jobID string) (bool, error) {
	if !s.connected {
		return false, ErrNotConnected
	}
	n, err := s.client.Del(ctx, s.key(jobID)).Result()
	if err != nil {
		return false, fmt.Errorf("job: delete record %s: %w", jobID, err)
	}
	return n > 0, nil
}

// Exists reports whether a record is present for the job ID.
func (s *RedisStore) Exists(ctx context.Context, jobID string) (bool, error) {
	if !s.connected {
		return false, ErrNotConnected
	}
	n, err := s.client.Exists(ctx, s.key(jobID)).Result()
	if err != nil {
		return false, fmt.Errorf("job: check record %s: %w", jobID, err)
	}
	return n > 0, nil
}
