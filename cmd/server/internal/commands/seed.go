package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/wolfeidau/orgchart/internal/logger"
	"github.com/wolfeidau/orgchart/internal/orgtree"
	"github.com/wolfeidau/orgchart/internal/seed"
	"github.com/wolfeidau/orgchart/internal/service"
)

type SeedCmd struct {
	File  string `help:"YAML organization file" required:"" type:"existingfile" short:"f"`
	Reset bool   `help:"delete all people and groups before seeding" default:"false"`

	StoreFlags `embed:""`
	CacheFlags `embed:""`
}

func (c *SeedCmd) Run(globals *Globals) error {
	log := logger.Setup(globals.Debug)
	ctx := log.WithContext(context.Background())

	f, err := os.Open(c.File)
	if err != nil {
		return fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()

	org, err := seed.Decode(f)
	if err != nil {
		return err
	}

	if c.StoreType == "memory" {
		log.Warn().Msg("Seeding the in-memory store, data is discarded when the command exits")
	}

	b, err := openBackends(ctx, c.StoreFlags, c.CacheFlags)
	if err != nil {
		return err
	}
	defer b.Close()

	view := orgtree.NewView(b.groups, b.people, b.cache)
	groups := service.NewGroupService(b.groups, b.people, view)
	people := service.NewPersonService(b.people, b.groups, view)

	if c.Reset {
		if err := people.DeleteAll(ctx); err != nil {
			return fmt.Errorf("failed to delete people: %w", err)
		}
		if err := groups.DeleteAll(ctx); err != nil {
			return fmt.Errorf("failed to delete groups: %w", err)
		}
	}

	res, err := seed.Apply(ctx, org, groups, people)
	if err != nil {
		return err
	}

	log.Info().
		Str("file", c.File).
		Int("groups", res.Groups).
		Int("people", res.People).
		Msg("Organization seeded")

	return nil
}
