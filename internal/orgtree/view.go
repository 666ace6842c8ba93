package orgtree

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/singleflight"

	"github.com/wolfeidau/orgchart/internal/cache"
	"github.com/wolfeidau/orgchart/internal/models"
	"github.com/wolfeidau/orgchart/internal/telemetry"
)

// OrganizationKey is the cache key holding the serialized organization tree.
const OrganizationKey = "ORG"

// GroupLister lists every group in primary key order.
type GroupLister interface {
	List(ctx context.Context) ([]*models.Group, error)
}

// PersonLister lists every person in primary key order.
type PersonLister interface {
	List(ctx context.Context) ([]*models.Person, error)
}

// View serves the organization tree from a single cached snapshot.
//
// Update rebuilds and overwrites the snapshot unconditionally. Concurrent updates
// race with last writer wins; there is no versioning on the cache key.
type View struct {
	groups  GroupLister
	people  PersonLister
	cache   cache.Store
	flight  singleflight.Group
	metrics *telemetry.Metrics
}

// NewView creates a view over the given stores and cache.
func NewView(groups GroupLister, people PersonLister, store cache.Store) *View {
	return &View{
		groups:  groups,
		people:  people,
		cache:   store,
		metrics: telemetry.GetMetrics(),
	}
}

// Get returns the cached tree, rebuilding it when the cache holds no snapshot.
// Concurrent misses share a single rebuild, which is not cancelled with the caller
// that started it.
func (v *View) Get(ctx context.Context) (*Tree, error) {
	logger := zerolog.Ctx(ctx)

	raw, err := v.cache.Get(ctx, OrganizationKey)
	switch {
	case err == nil:
		tree := NewTree()
		if err := json.Unmarshal([]byte(raw), tree); err != nil {
			logger.Warn().Err(err).Msg("discarding unreadable organization snapshot")
			break
		}
		v.metrics.OrganizationCacheHits.Add(ctx, 1)
		logger.Info().Str("key", OrganizationKey).Msg("organization cache hit")
		return tree, nil
	case errors.Is(err, cache.ErrMiss):
		logger.Warn().Str("key", OrganizationKey).Msg("organization cache miss")
	default:
		return nil, fmt.Errorf("failed to read organization snapshot: %w", err)
	}

	v.metrics.OrganizationCacheMisses.Add(ctx, 1)

	res, err, _ := v.flight.Do(OrganizationKey, func() (any, error) {
		return v.Update(context.WithoutCancel(ctx))
	})
	if err != nil {
		return nil, err
	}

	return res.(*Tree), nil
}

// Update rebuilds the tree from the stores and overwrites the cached snapshot.
func (v *View) Update(ctx context.Context) (*Tree, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "orgtree.rebuild")
	defer span.End()

	start := time.Now()

	tree, payload, err := v.build(ctx)
	if err != nil {
		v.metrics.OrganizationRebuildError.Add(ctx, 1)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := v.cache.Set(ctx, OrganizationKey, string(payload)); err != nil {
		v.metrics.OrganizationRebuildError.Add(ctx, 1)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to store organization snapshot: %w", err)
	}

	elapsed := time.Since(start)
	v.metrics.OrganizationRebuilds.Add(ctx, 1)
	v.metrics.OrganizationRebuildTime.Record(ctx, float64(elapsed.Milliseconds()))
	span.SetAttributes(
		attribute.Int("orgtree.top_level", tree.Len()),
		attribute.Int("orgtree.bytes", len(payload)),
	)

	zerolog.Ctx(ctx).Info().
		Int("top_level", tree.Len()).
		Dur("elapsed", elapsed).
		Msg("organization snapshot rebuilt")

	return tree, nil
}

// Clear removes the cached snapshot so the next Get rebuilds it.
func (v *View) Clear(ctx context.Context) error {
	if err := v.cache.Delete(ctx, OrganizationKey); err != nil {
		return fmt.Errorf("failed to clear organization snapshot: %w", err)
	}

	v.metrics.OrganizationCacheClears.Add(ctx, 1)
	zerolog.Ctx(ctx).Info().Str("key", OrganizationKey).Msg("organization cache cleared")

	return nil
}

func (v *View) build(ctx context.Context) (*Tree, []byte, error) {
	groups, err := v.groups.List(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list groups: %w", err)
	}

	people, err := v.people.List(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list people: %w", err)
	}

	tree := Assemble(groups, people)

	payload, err := json.Marshal(tree)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode organization tree: %w", err)
	}

	return tree, payload, nil
}
