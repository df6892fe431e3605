// Package redis implements the vector store on Redis 8+ with RediSearch,
// via rueidis. Redis serialises writers server-side, so no busy-retry wrapper
// applies here.
package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/rueidis"

	"github.com/wardesk/faqdex/internal/domain"
)

// Config holds connection parameters for the Redis store.
type Config struct {
	Addrs     []string
	Username  string
	Password  string
	DB        int
	KeyPrefix string // e.g. "faqdex:"
	IndexName string // e.g. "faqdex-idx"
	// Dimensions is the embedding vector size, required to create the index.
	Dimensions int
}

// Store implements domain.VectorStore via rueidis.
type Store struct {
	client rueidis.Client
	prefix string
	index  string
}

var _ domain.VectorStore = (*Store)(nil)

// NewStore creates a Redis store and ensures the search index exists.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("redis: addrs is required")
	}
	if cfg.Dimensions <= 0 {
		return nil, fmt.Errorf("redis: dimensions is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
		AlwaysRESP2:  true, // FT.SEARCH result parsing expects RESP2 array format
	})
	if err != nil {
		return nil, fmt.Errorf("redis: create client: %w", err)
	}

	s := &Store{client: client, prefix: cfg.KeyPrefix, index: cfg.IndexName}
	if err := s.ensureIndex(ctx, cfg.Dimensions); err != nil {
		client.Close()
		return nil, err
	}
	return s, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	cmd := s.client.B().Ping().Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("redis: ping: %w", err)
	}
	return nil
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady polls Ping until the store responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("redis: timeout waiting for store: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

// ensureIndex creates the FT index if it does not exist yet. The vector field
// uses DISTANCE_METRIC COSINE so __vector_score is a cosine distance in [0, 2],
// which the engine's scoring formula expects unchanged.
func (s *Store) ensureIndex(ctx context.Context, dimensions int) error {
	info := s.client.B().Arbitrary("FT.INFO").Args(s.index).Build()
	if err := s.client.Do(ctx, info).Error(); err == nil {
		return nil
	} else if !isRedisErr(err, "unknown index") && !isRedisErr(err, "no such index") {
		return fmt.Errorf("redis: index info: %w", err)
	}

	create := s.client.B().Arbitrary("FT.CREATE").Args(
		s.index, "ON", "HASH", "PREFIX", "1", s.docKey(""),
		"SCHEMA",
		"category", "TAG",
		"vector", "VECTOR", "FLAT", "6",
		"TYPE", "FLOAT32",
		"DIM", strconv.Itoa(dimensions),
		"DISTANCE_METRIC", "COSINE",
	).Build()
	if err := s.client.Do(ctx, create).Error(); err != nil {
		if isRedisErr(err, "index already exists") {
			return nil
		}
		return fmt.Errorf("redis: create index: %w", err)
	}
	return nil
}

func (s *Store) docKey(id string) string {
	return s.prefix + "doc:" + id
}

func (s *Store) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return s.client.Do(ctx, cmd)
}

func (s *Store) b() rueidis.Builder {
	return s.client.B()
}

// isRedisErr checks if err is a Redis server error containing substr (case-insensitive).
func isRedisErr(err error, substr string) bool {
	re, ok := rueidis.IsRedisErr(err)
	if !ok {
		return false
	}
	return containsIgnoreCase(re.Error(), substr)
}

func containsIgnoreCase(s, substr string) bool {
	ls := len(s)
	lsub := len(substr)
	if lsub > ls {
		return false
	}
	for i := 0; i <= ls-lsub; i++ {
		match := true
		for j := 0; j < lsub; j++ {
			sc := s[i+j]
			tc := substr[j]
			if sc >= 'A' && sc <= 'Z' {
				sc += 'a' - 'A'
			}
			if tc >= 'A' && tc <= 'Z' {
				tc += 'a' - 'A'
			}
			if sc != tc {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
