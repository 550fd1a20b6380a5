package session

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	"github.com/jwalitptl/clinic-console/pkg/security"
)

// Keys under which a session persists.
const (
	TokenKey = "omms_token"
	RoleKey  = "omms_role"
)

// Storage is the durable key/value space a session survives restarts in.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// MemoryStorage keeps values for the life of the process.
type MemoryStorage struct {
	c *cache.Cache
}

// NewMemoryStorage expires values after ttl; zero keeps them forever.
func NewMemoryStorage(ttl time.Duration) *MemoryStorage {
	exp, cleanup := cache.NoExpiration, time.Duration(0)
	if ttl > 0 {
		exp, cleanup = ttl, 2*ttl
	}
	return &MemoryStorage{c: cache.New(exp, cleanup)}
}

func (m *MemoryStorage) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return "", false, nil
	}
	return v.(string), true, nil
}

func (m *MemoryStorage) Set(_ context.Context, key, value string) error {
	m.c.SetDefault(key, value)
	return nil
}

func (m *MemoryStorage) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		m.c.Delete(k)
	}
	return nil
}

type RedisConfig struct {
	URL          string
	Prefix       string
	TTL          time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	PoolSize     int
	MinIdleConns int
	// Passphrase, when set, seals values with AES-GCM before they are written.
	Passphrase string
}

// RedisStorage persists sessions in redis so several console processes can
// share one sign-in.
type RedisStorage struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	seal   security.Encryptor
}

func NewRedisStorage(ctx context.Context, cfg RedisConfig) (*RedisStorage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	opts.MaxRetries = cfg.MaxRetries
	opts.MinRetryBackoff = cfg.RetryBackoff
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRedisStorageFromClient(client, cfg)
}

// NewRedisStorageFromClient wraps an existing client. Only Prefix, TTL and
// Passphrase are read from cfg.
func NewRedisStorageFromClient(client *redis.Client, cfg RedisConfig) (*RedisStorage, error) {
	s := &RedisStorage{client: client, prefix: cfg.Prefix, ttl: cfg.TTL}
	if cfg.Passphrase != "" {
		enc, err := security.NewPassphraseEncryptor(cfg.Passphrase)
		if err != nil {
			return nil, fmt.Errorf("failed to create session sealer: %w", err)
		}
		s.seal = enc
	}
	return s, nil
}

func (r *RedisStorage) key(k string) string { return r.prefix + k }

func (r *RedisStorage) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, r.key(key)).Result()
	if stderrors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if r.seal != nil {
		if v, err = security.DecryptString(r.seal, v); err != nil {
			return "", false, fmt.Errorf("failed to unseal %s: %w", key, err)
		}
	}
	return v, true, nil
}

func (r *RedisStorage) Set(ctx context.Context, key, value string) error {
	if r.seal != nil {
		sealed, err := security.EncryptString(r.seal, value)
		if err != nil {
			return fmt.Errorf("failed to seal %s: %w", key, err)
		}
		value = sealed
	}
	if err := r.client.Set(ctx, r.key(key), value, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (r *RedisStorage) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.key(k)
	}
	if err := r.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("failed to delete session keys: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	return r.client.Close()
}
