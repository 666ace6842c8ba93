package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/wolfeidau/orgchart/internal/store"
)

const groupNameConstraint = "people_groups_name_key"

// mapPostgresError translates constraint violations into the store's validation
// sentinels. Everything else is returned wrapped with a short classification.
func mapPostgresError(err error) error {
	var pgErr *pgconn.PgError
	if err == nil || !errors.As(err, &pgErr) {
		return err
	}

	switch {
	case pgErr.Code == pgerrcode.UniqueViolation && pgErr.ConstraintName == groupNameConstraint:
		return store.ErrGroupNameTaken
	case pgErr.Code == pgerrcode.UniqueViolation:
		return fmt.Errorf("%w: %s", store.ErrDuplicatePerson, pgErr.ConstraintName)
	case pgErr.Code == pgerrcode.ForeignKeyViolation:
		return fmt.Errorf("%w: %s", store.ErrUnknownGroupReference, pgErr.Detail)
	case pgerrcode.IsConnectionException(pgErr.Code):
		return fmt.Errorf("database connection error: %w", err)
	case pgerrcode.IsOperatorIntervention(pgErr.Code):
		// admin shutdown, crash shutdown and query cancellation
		return fmt.Errorf("database operation interrupted: %w", err)
	case pgerrcode.IsInsufficientResources(pgErr.Code):
		return fmt.Errorf("database resource limit: %w", err)
	default:
		return fmt.Errorf("postgres error [%s]: %s: %w", pgErr.Code, pgErr.Message, err)
	}
}
