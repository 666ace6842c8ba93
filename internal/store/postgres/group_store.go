package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/orgchart/internal/models"
	"github.com/wolfeidau/orgchart/internal/store"
)

const groupColumns = `id, name, parent_group_id, created_at, updated_at`

var _ store.GroupStore = (*GroupStore)(nil)

// GroupStore implements store.GroupStore using PostgreSQL.
type GroupStore struct {
	pool *pgxpool.Pool
}

// NewGroupStore creates a new PostgreSQL-backed group store.
// It shares the connection pool with the person store.
func NewGroupStore(pool *pgxpool.Pool) *GroupStore {
	return &GroupStore{
		pool: pool,
	}
}

// List returns every group ordered by ID.
func (s *GroupStore) List(ctx context.Context) ([]*models.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM people_groups ORDER BY id`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", mapPostgresError(err))
	}

	return collectGroups(rows)
}

// Get retrieves a group by ID.
func (s *GroupStore) Get(ctx context.Context, id int64) (*models.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM people_groups WHERE id = $1`

	var group models.Group
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&group.ID,
		&group.Name,
		&group.ParentGroupID,
		&group.CreatedAt,
		&group.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to get group: %w", mapPostgresError(err))
	}

	return &group, nil
}

// ListByParent returns the direct children of a group, or the roots when parentID is nil.
func (s *GroupStore) ListByParent(ctx context.Context, parentID *int64) ([]*models.Group, error) {
	query := `
		SELECT ` + groupColumns + `
		FROM people_groups
		WHERE parent_group_id IS NOT DISTINCT FROM $1
		ORDER BY id
	`

	rows, err := s.pool.Query(ctx, query, parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups by parent: %w", mapPostgresError(err))
	}

	return collectGroups(rows)
}

// Branch returns the group followed by its ancestors, nearest first.
// UNION rather than UNION ALL keeps the walk finite if the hierarchy ever contains a cycle.
func (s *GroupStore) Branch(ctx context.Context, id int64) ([]*models.Group, error) {
	query := `
		WITH RECURSIVE group_parents AS (
			SELECT ` + groupColumns + `
			FROM people_groups
			WHERE id = $1

			UNION

			SELECT pg.id, pg.name, pg.parent_group_id, pg.created_at, pg.updated_at
			FROM people_groups pg
			INNER JOIN group_parents gp ON gp.parent_group_id = pg.id
		)
		SELECT ` + groupColumns + ` FROM group_parents
	`

	rows, err := s.pool.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get group branch: %w", mapPostgresError(err))
	}

	groups, err := collectGroups(rows)
	if err != nil {
		return nil, err
	}

	return orderBranch(id, groups), nil
}

// DescendantIDs returns the descendant closure of a group, including the group itself.
func (s *GroupStore) DescendantIDs(ctx context.Context, id int64) ([]int64, error) {
	query := `
		WITH RECURSIVE group_descendants AS (
			SELECT id
			FROM people_groups
			WHERE id = $1

			UNION

			SELECT p.id
			FROM people_groups p
			INNER JOIN group_descendants gd ON p.parent_group_id = gd.id
		)
		SELECT id FROM group_descendants ORDER BY id
	`

	rows, err := s.pool.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get group descendants: %w", mapPostgresError(err))
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("failed to scan group descendants: %w", err)
	}

	return ids, nil
}

// Create inserts a group and returns its ID.
func (s *GroupStore) Create(ctx context.Context, group *models.GroupModel) (int64, error) {
	query := `
		INSERT INTO people_groups (name, parent_group_id)
		VALUES ($1, $2)
		RETURNING id
	`

	var id int64
	if err := s.pool.QueryRow(ctx, query, group.Name, group.ParentGroupID).Scan(&id); err != nil {
		return 0, mapPostgresError(err)
	}

	log.Debug().
		Int64("group_id", id).
		Str("name", group.Name).
		Msg("Created group")

	return id, nil
}

// Update overwrites the name and parent of a group.
func (s *GroupStore) Update(ctx context.Context, id int64, group *models.GroupModel) error {
	query := `
		UPDATE people_groups SET
			name = $2,
			parent_group_id = $3,
			updated_at = now()
		WHERE id = $1
	`

	result, err := s.pool.Exec(ctx, query, id, group.Name, group.ParentGroupID)
	if err != nil {
		return mapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return store.ErrGroupNotFound
	}

	log.Debug().
		Int64("group_id", id).
		Str("name", group.Name).
		Msg("Updated group")

	return nil
}

// Delete deletes a group by ID.
// Child groups and members are detached via ON DELETE SET NULL.
func (s *GroupStore) Delete(ctx context.Context, id int64) error {
	result, err := s.pool.Exec(ctx, `DELETE FROM people_groups WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", mapPostgresError(err))
	}

	if result.RowsAffected() == 0 {
		return store.ErrGroupNotFound
	}

	log.Info().Int64("group_id", id).Msg("Deleted group")

	return nil
}

// DeleteAll removes every group.
func (s *GroupStore) DeleteAll(ctx context.Context) error {
	result, err := s.pool.Exec(ctx, `DELETE FROM people_groups`)
	if err != nil {
		return fmt.Errorf("failed to delete groups: %w", mapPostgresError(err))
	}

	log.Info().Int64("count", result.RowsAffected()).Msg("Deleted all groups")

	return nil
}

// Touch bumps updated_at on a group.
func (s *GroupStore) Touch(ctx context.Context, id int64) error {
	result, err := s.pool.Exec(ctx, `UPDATE people_groups SET updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to touch group: %w", mapPostgresError(err))
	}

	if result.RowsAffected() == 0 {
		return store.ErrGroupNotFound
	}

	return nil
}

func collectGroups(rows pgx.Rows) ([]*models.Group, error) {
	defer rows.Close()

	groups := []*models.Group{}
	for rows.Next() {
		var group models.Group
		err := rows.Scan(
			&group.ID,
			&group.Name,
			&group.ParentGroupID,
			&group.CreatedAt,
			&group.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, &group)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating groups: %w", err)
	}

	return groups, nil
}

// orderBranch arranges an unordered ancestor set by following parent links from id.
func orderBranch(id int64, groups []*models.Group) []*models.Group {
	byID := make(map[int64]*models.Group, len(groups))
	for _, g := range groups {
		byID[g.ID] = g
	}

	branch := make([]*models.Group, 0, len(groups))
	for next, ok := byID[id]; ok; {
		branch = append(branch, next)
		delete(byID, next.ID)
		if next.ParentGroupID == nil {
			break
		}
		next, ok = byID[*next.ParentGroupID]
	}

	return branch
}
