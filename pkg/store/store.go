// Package store implements SPEC_FULL.md §4.4: typed queries and
// transactions over the relational store, plus the embedded schema
// migrations that create it.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cuemby/vmctrl/pkg/apperr"
	"github.com/cuemby/vmctrl/pkg/log"
)

// Store wraps the process-wide connection pool. It is cheap to clone
// (the pool is itself a thread-safe handle) and is embedded in the
// application handle shared by every orchestration (spec §5).
type Store struct {
	Pool *pgxpool.Pool
}

// Config configures the pool's connection string and sizing.
type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Open parses cfg and establishes the pool, pinging once to fail fast
// on an unreachable database.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, apperr.WrapConfig(fmt.Errorf("parse dsn: %w", err))
	}

	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, apperr.WrapPersistence(fmt.Errorf("create pool: %w", err))
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, apperr.WrapPersistence(fmt.Errorf("ping: %w", err))
	}

	log.Info("connected to database")
	return &Store{Pool: pool}, nil
}

// Close releases every pooled connection.
func (s *Store) Close() {
	s.Pool.Close()
}
