package main

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/wolfeidau/orgchart/cmd/server/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Debug   bool `help:"Enable debug mode." env:"ORGCHART_DEBUG"`
		Version kong.VersionFlag
		Server  commands.ServerCmd  `cmd:"" default:"withargs" help:"Start the HTTP API server"`
		Migrate commands.MigrateCmd `cmd:"" help:"Apply database migrations and exit"`
		Seed    commands.SeedCmd    `cmd:"" help:"Load an organization from a YAML file"`
	}
)

func main() {
	// a missing .env is fine, environment variables and flags still apply
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		_, _ = os.Stderr.WriteString("failed to load .env: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Name("orgchart"),
		kong.Description("People and groups API with a cached organization tree."),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Version: version})
	cmd.FatalIfErrorf(err)
}
