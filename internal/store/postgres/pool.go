package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

const defaultApplicationName = "orgchart"

// PoolConfig configures the connection pool shared by the group and person stores.
// Zero values are replaced by defaults in NewPool.
type PoolConfig struct {
	// ConnString is a postgres:// URL or keyword/value DSN.
	ConnString string

	MaxConns int32
	MinConns int32

	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
	ConnectTimeout    time.Duration

	// StartupTimeout bounds how long NewPool keeps retrying the first ping.
	StartupTimeout time.Duration

	// ApplicationName is reported in pg_stat_activity unless the connection string sets one.
	ApplicationName string
}

func (c *PoolConfig) withDefaults() PoolConfig {
	out := *c
	if out.MaxConns == 0 {
		out.MaxConns = 20
	}
	if out.MinConns == 0 {
		out.MinConns = 5
	}
	if out.MaxConnLifetime == 0 {
		out.MaxConnLifetime = time.Hour
	}
	if out.MaxConnIdleTime == 0 {
		out.MaxConnIdleTime = 30 * time.Minute
	}
	if out.HealthCheckPeriod == 0 {
		out.HealthCheckPeriod = time.Minute
	}
	if out.ConnectTimeout == 0 {
		out.ConnectTimeout = 10 * time.Second
	}
	if out.StartupTimeout == 0 {
		out.StartupTimeout = 30 * time.Second
	}
	if out.ApplicationName == "" {
		out.ApplicationName = defaultApplicationName
	}
	return out
}

func (c PoolConfig) validate() error {
	if c.ConnString == "" {
		return errors.New("connection string is required")
	}
	if c.MinConns > c.MaxConns {
		return fmt.Errorf("min conns (%d) exceeds max conns (%d)", c.MinConns, c.MaxConns)
	}
	return nil
}

func (c PoolConfig) pgxConfig() (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(c.ConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	pc.MaxConns = c.MaxConns
	pc.MinConns = c.MinConns
	pc.MaxConnLifetime = c.MaxConnLifetime
	pc.MaxConnIdleTime = c.MaxConnIdleTime
	pc.HealthCheckPeriod = c.HealthCheckPeriod
	pc.ConnConfig.ConnectTimeout = c.ConnectTimeout
	if _, ok := pc.ConnConfig.RuntimeParams["application_name"]; !ok {
		pc.ConnConfig.RuntimeParams["application_name"] = c.ApplicationName
	}

	return pc, nil
}

// NewPool opens a pool and blocks until the database answers a ping.
// A database that is still starting is retried with exponential backoff.
func NewPool(ctx context.Context, cfg *PoolConfig) (*pgxpool.Pool, error) {
	if cfg == nil {
		return nil, errors.New("pool config is required")
	}

	c := cfg.withDefaults()
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("invalid pool config: %w", err)
	}

	pc, err := c.pgxConfig()
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := waitForDatabase(ctx, pool, c.StartupTimeout); err != nil {
		pool.Close()
		return nil, err
	}

	log.Info().
		Int32("max_conns", c.MaxConns).
		Str("host", pc.ConnConfig.Host).
		Str("database", pc.ConnConfig.Database).
		Msg("Connected to PostgreSQL")

	return pool, nil
}

func waitForDatabase(ctx context.Context, pool *pgxpool.Pool, timeout time.Duration) error {
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, pool.Ping(ctx)
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(timeout),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.Warn().Err(err).Dur("retry_in", next).Msg("Database not ready")
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}
