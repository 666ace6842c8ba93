package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/wolfeidau/orgchart/internal/logger"
	postgresstore "github.com/wolfeidau/orgchart/internal/store/postgres"
)

type MigrateCmd struct {
	StartupTimeout time.Duration      `help:"how long to retry connecting to postgres" default:"30s" env:"ORGCHART_STARTUP_TIMEOUT"`
	PostgresStore  PostgresStoreFlags `embed:"" prefix:"postgres-"`
}

func (c *MigrateCmd) Run(globals *Globals) error {
	log := logger.Setup(globals.Debug)
	ctx := log.WithContext(context.Background())

	if err := c.PostgresStore.Validate(); err != nil {
		return err
	}

	pool, err := postgresstore.NewPool(ctx, c.PostgresStore.poolConfig(c.StartupTimeout))
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	if err := postgresstore.RunMigrations(ctx, pool); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info().Msg("Database migrations completed")
	return nil
}
