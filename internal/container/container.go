// Package container wires configuration into provider and store singletons.
// Every dependency is built lazily on first use and exactly once; Set
// methods let tests swap in fakes before first use.
package container

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wardesk/faqdex/internal/config"
	"github.com/wardesk/faqdex/internal/domain"
	"github.com/wardesk/faqdex/internal/provider/openai"
	qdrantstore "github.com/wardesk/faqdex/internal/store/qdrant"
	redisstore "github.com/wardesk/faqdex/internal/store/redis"
	sqlitestore "github.com/wardesk/faqdex/internal/store/sqlite"
)

// Container holds the lazily constructed service dependencies.
type Container struct {
	cfg    config.Config
	logger *zap.Logger

	embedderOnce sync.Once
	embedder     domain.Embedder

	storeOnce sync.Once
	store     domain.VectorStore
	storeErr  error
	closer    func() error

	graderOnce sync.Once
	grader     domain.ChatGrader

	proGraderOnce sync.Once
	proGrader     domain.ChatGrader
}

// New creates a container around the loaded configuration.
func New(cfg config.Config, logger *zap.Logger) *Container {
	return &Container{cfg: cfg, logger: logger}
}

// Embedder returns the shared embedding provider.
func (c *Container) Embedder() domain.Embedder {
	c.embedderOnce.Do(func() {
		if c.embedder != nil {
			return
		}
		c.embedder = openai.NewEmbedder(&openai.EmbedderConfig{
			APIKey:              c.cfg.Embedding.APIKey,
			BaseURL:             c.cfg.Embedding.BaseURL,
			Model:               c.cfg.Embedding.Model,
			Dimensions:          c.cfg.Embedding.Dimensions,
			DocumentInstruction: c.cfg.Embedding.DocumentInstruction,
			QueryInstruction:    c.cfg.Embedding.QueryInstruction,
			Timeout:             time.Duration(c.cfg.Embedding.TimeoutSec) * time.Second,
			Logger:              c.logger,
		})
	})
	return c.embedder
}

// VectorStore returns the shared vector store, built per the configured driver.
func (c *Container) VectorStore(ctx context.Context) (domain.VectorStore, error) {
	c.storeOnce.Do(func() {
		if c.store != nil {
			return
		}
		c.store, c.closer, c.storeErr = c.buildStore(ctx)
	})
	return c.store, c.storeErr
}

func (c *Container) buildStore(ctx context.Context) (domain.VectorStore, func() error, error) {
	switch c.cfg.Store.Driver {
	case "sqlite":
		s, err := sqlitestore.NewStore(sqlitestore.Config{
			Path:        c.cfg.Store.SQLite.Path,
			MaxAttempts: c.cfg.Retry.MaxAttempts,
			BaseDelay:   time.Duration(c.cfg.Retry.BaseDelayMS) * time.Millisecond,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil

	case "redis":
		s, err := redisstore.NewStore(ctx, redisstore.Config{
			Addrs:      c.cfg.Store.Redis.Addrs,
			Password:   c.cfg.Store.Redis.Password,
			KeyPrefix:  c.cfg.Store.Redis.KeyPrefix,
			IndexName:  c.cfg.Store.Redis.IndexName,
			Dimensions: c.cfg.Embedding.Dimensions,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, func() error { s.Close(); return nil }, nil

	case "qdrant":
		s, err := qdrantstore.NewStore(ctx, qdrantstore.Config{
			Host:       c.cfg.Store.Qdrant.Host,
			Port:       c.cfg.Store.Qdrant.Port,
			APIKey:     c.cfg.Store.Qdrant.APIKey,
			UseTLS:     c.cfg.Store.Qdrant.UseTLS,
			Collection: c.cfg.Store.Qdrant.Collection,
			Dimensions: c.cfg.Embedding.Dimensions,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", c.cfg.Store.Driver)
	}
}

// Grader returns the default grading model client.
func (c *Container) Grader() domain.ChatGrader {
	c.graderOnce.Do(func() {
		if c.grader != nil {
			return
		}
		c.grader = openai.NewGrader(&openai.GraderConfig{
			APIKey:  c.cfg.Grading.APIKey,
			BaseURL: c.cfg.Grading.BaseURL,
			Model:   c.cfg.Grading.Model,
			Timeout: time.Duration(c.cfg.Grading.TimeoutSec) * time.Second,
			Logger:  c.logger,
		})
	})
	return c.grader
}

// ProGrader returns the stronger grading model client with its looser
// timeout. Without a configured pro model it falls back to the default grader.
func (c *Container) ProGrader() domain.ChatGrader {
	c.proGraderOnce.Do(func() {
		if c.proGrader != nil {
			return
		}
		if c.cfg.Grading.ProModel == "" {
			c.proGrader = c.Grader()
			return
		}
		c.proGrader = openai.NewGrader(&openai.GraderConfig{
			APIKey:  c.cfg.Grading.APIKey,
			BaseURL: c.cfg.Grading.BaseURL,
			Model:   c.cfg.Grading.ProModel,
			Timeout: time.Duration(c.cfg.Grading.ProTimeoutSec) * time.Second,
			Logger:  c.logger,
		})
	})
	return c.proGrader
}

// Close releases store resources created by the container.
func (c *Container) Close() error {
	if c.closer != nil {
		return c.closer()
	}
	return nil
}

// SetEmbedder overrides the embedder. Call before first use.
func (c *Container) SetEmbedder(e domain.Embedder) {
	c.embedder = e
}

// SetVectorStore overrides the vector store. Call before first use.
func (c *Container) SetVectorStore(s domain.VectorStore) {
	c.store = s
}

// SetGrader overrides the default grader. Call before first use.
func (c *Container) SetGrader(g domain.ChatGrader) {
	c.grader = g
}

// SetProGrader overrides the pro grader. Call before first use.
func (c *Container) SetProGrader(g domain.ChatGrader) {
	c.proGrader = g
}
