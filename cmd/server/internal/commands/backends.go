package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/wolfeidau/orgchart/internal/cache"
	"github.com/wolfeidau/orgchart/internal/store"
	memorystore "github.com/wolfeidau/orgchart/internal/store/memory"
	postgresstore "github.com/wolfeidau/orgchart/internal/store/postgres"
)

// StoreFlags selects and configures the relational store.
type StoreFlags struct {
	StoreType      string             `help:"store type (memory or postgres)" default:"memory" env:"ORGCHART_STORE_TYPE" enum:"memory,postgres"`
	StartupTimeout time.Duration      `help:"how long to retry connecting to postgres and redis on start" default:"30s" env:"ORGCHART_STARTUP_TIMEOUT"`
	PostgresStore  PostgresStoreFlags `embed:"" prefix:"postgres-"`
}

type PostgresStoreFlags struct {
	// Connection Configuration
	ConnString string `help:"PostgreSQL connection string" env:"POSTGRES_CONNECTION_STRING"`

	// Connection Pool Configuration
	MaxConns        int32         `help:"maximum number of connections in pool" default:"20"`
	MinConns        int32         `help:"minimum number of connections in pool" default:"5"`
	MaxConnLifetime time.Duration `help:"maximum connection lifetime" default:"1h"`
	MaxConnIdleTime time.Duration `help:"maximum connection idle time" default:"30m"`

	// Migration Configuration
	AutoMigrate bool `help:"run database migrations on startup" default:"false" env:"ORGCHART_POSTGRES_AUTO_MIGRATE"`
}

func (s *PostgresStoreFlags) Validate() error {
	if s.ConnString == "" {
		return errors.New("PostgreSQL connection string is required (--postgres-conn-string or POSTGRES_CONNECTION_STRING)")
	}
	return nil
}

func (s *PostgresStoreFlags) poolConfig(startup time.Duration) *postgresstore.PoolConfig {
	return &postgresstore.PoolConfig{
		ConnString:      s.ConnString,
		MaxConns:        s.MaxConns,
		MinConns:        s.MinConns,
		MaxConnLifetime: s.MaxConnLifetime,
		MaxConnIdleTime: s.MaxConnIdleTime,
		StartupTimeout:  startup,
	}
}

// CacheFlags selects and configures the organization snapshot cache.
type CacheFlags struct {
	CacheType string     `help:"cache type (memory or redis)" default:"memory" env:"ORGCHART_CACHE_TYPE" enum:"memory,redis"`
	Redis     RedisFlags `embed:"" prefix:"redis-"`
}

type RedisFlags struct {
	Addr     string `help:"Redis address" default:"localhost:6379" env:"REDIS_ADDR"`
	Password string `help:"Redis password" env:"REDIS_PASSWORD"`
	DB       int    `help:"Redis database number" default:"0" env:"REDIS_DB"`
	Prefix   string `help:"prefix applied to every cache key" default:"orgchart" env:"ORGCHART_REDIS_PREFIX"`
}

// backends holds the stores and cache for one process along with their cleanup.
type backends struct {
	groups  store.GroupStore
	people  store.PersonStore
	cache   cache.Store
	closers []func()
}

func (b *backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func openBackends(ctx context.Context, sf StoreFlags, cf CacheFlags) (*backends, error) {
	log := zerolog.Ctx(ctx)
	b := &backends{}

	switch sf.StoreType {
	case "postgres":
		if err := sf.PostgresStore.Validate(); err != nil {
			return nil, err
		}

		pool, err := postgresstore.NewPool(ctx, sf.PostgresStore.poolConfig(sf.StartupTimeout))
		if err != nil {
			return nil, fmt.Errorf("failed to create connection pool: %w", err)
		}
		b.closers = append(b.closers, pool.Close)

		if sf.PostgresStore.AutoMigrate {
			if err := postgresstore.RunMigrations(ctx, pool); err != nil {
				b.Close()
				return nil, fmt.Errorf("failed to run migrations: %w", err)
			}
			log.Info().Msg("Database migrations completed")
		}

		b.groups = postgresstore.NewGroupStore(pool)
		b.people = postgresstore.NewPersonStore(pool)
		log.Info().Msg("Using PostgreSQL stores with shared connection pool")

	default:
		b.groups, b.people = memorystore.NewStores()
		log.Info().Msg("Using in-memory stores")
	}

	switch cf.CacheType {
	case "redis":
		rc, err := cache.NewRedis(ctx, &cache.RedisConfig{
			Addr:           cf.Redis.Addr,
			Password:       cf.Redis.Password,
			DB:             cf.Redis.DB,
			Prefix:         cf.Redis.Prefix,
			StartupTimeout: sf.StartupTimeout,
		})
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		b.closers = append(b.closers, func() {
			if err := rc.Close(); err != nil {
				log.Error().Err(err).Msg("Failed to close redis client")
			}
		})
		b.cache = rc
		log.Info().Str("addr", cf.Redis.Addr).Msg("Using Redis organization cache")

	default:
		b.cache = cache.NewMemory()
		log.Info().Msg("Using in-memory organization cache")
	}

	return b, nil
}
