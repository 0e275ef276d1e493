package database

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// Service represents a service that interacts with a database.
type Service interface {
	// Health returns a map of health status information.
	// The keys and values in the map are service-specific.
	Health(ctx context.Context) map[string]string

	// Close terminates the database connection.
	Close()

	Queries() *Queries
	Pool() *pgxpool.Pool
}

type service struct {
	pool *pgxpool.Pool
	q    *Queries
}

func (s *service) Queries() *Queries {
	return s.q
}

func (s *service) Pool() *pgxpool.Pool {
	return s.pool
}

// NewService opens a pool against connStr, pings it and applies the migrations.
func NewService(ctx context.Context, connStr string) (Service, error) {
	cfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := MigrateUp(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	log.Info().
		Str("host", cfg.ConnConfig.Host).
		Str("database", cfg.ConnConfig.Database).
		Msg("Connected to database")
	return &service{pool: pool, q: New(pool)}, nil
}

// Health checks the health of the database connection.
func (s *service) Health(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()

	stats := make(map[string]string)

	if err := s.pool.Ping(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		log.Error().Err(err).Msg("db down")
		return stats
	}

	poolStats := s.pool.Stat()
	stats["status"] = "up"
	stats["total_conns"] = strconv.Itoa(int(poolStats.TotalConns()))
	stats["idle_conns"] = strconv.Itoa(int(poolStats.IdleConns()))
	stats["acquired_conns"] = strconv.Itoa(int(poolStats.AcquiredConns()))
	stats["max_conns"] = strconv.Itoa(int(poolStats.MaxConns()))
	stats["acquire_count"] = strconv.FormatInt(poolStats.AcquireCount(), 10)
	stats["acquire_duration_ms"] = strconv.FormatInt(poolStats.AcquireDuration().Milliseconds(), 10)
	stats["empty_acquire_count"] = strconv.FormatInt(poolStats.EmptyAcquireCount(), 10)

	if poolStats.AcquiredConns() > (poolStats.MaxConns() * 8 / 10) { // 80% capacity
		stats["message"] = "The database connection pool is experiencing heavy load."
	}
	if poolStats.EmptyAcquireCount() > 0 {
		stats["message"] = "The application has tried to acquire a connection from an empty pool. Consider increasing max connections."
	}

	return stats
}

func (s *service) Close() {
	log.Info().Msg("Disconnected from database")
	s.pool.Close()
}
