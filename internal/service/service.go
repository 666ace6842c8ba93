// Package service applies person and group mutations and keeps the organization
// snapshot in step with them.
package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/wolfeidau/orgchart/internal/orgtree"
	"github.com/wolfeidau/orgchart/internal/telemetry"
)

// Refresher rebuilds the cached organization snapshot.
type Refresher interface {
	Update(ctx context.Context) (*orgtree.Tree, error)
}

// detach keeps the request's values, such as its logger and trace, but drops its
// cancellation. Once a mutation starts it runs to the snapshot rebuild even if the
// client goes away.
func detach(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}

// mutated records a successful mutation and rebuilds the snapshot. A rebuild
// failure fails the operation even though the row change has been persisted.
func mutated(ctx context.Context, view Refresher, entity, op string) error {
	telemetry.GetMetrics().MutationsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("entity", entity),
		attribute.String("operation", op),
	))

	zerolog.Ctx(ctx).Debug().Str("entity", entity).Str("operation", op).Msg("refreshing organization after mutation")

	if _, err := view.Update(detach(ctx)); err != nil {
		return fmt.Errorf("failed to refresh organization after %s %s: %w", op, entity, err)
	}
	return nil
}
