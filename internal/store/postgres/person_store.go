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

const personColumns = `id, first_name, last_name, job_title, group_id, created_at, updated_at`

var _ store.PersonStore = (*PersonStore)(nil)

// PersonStore implements store.PersonStore using PostgreSQL.
type PersonStore struct {
	pool *pgxpool.Pool
}

// NewPersonStore creates a new PostgreSQL-backed person store.
func NewPersonStore(pool *pgxpool.Pool) *PersonStore {
	return &PersonStore{
		pool: pool,
	}
}

// List returns every person ordered by ID.
func (s *PersonStore) List(ctx context.Context) ([]*models.Person, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+personColumns+` FROM people ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list people: %w", mapPostgresError(err))
	}

	return collectPeople(rows)
}

// Get retrieves a person by ID.
func (s *PersonStore) Get(ctx context.Context, id int64) (*models.Person, error) {
	var person models.Person
	err := s.pool.QueryRow(ctx, `SELECT `+personColumns+` FROM people WHERE id = $1`, id).Scan(
		&person.ID,
		&person.FirstName,
		&person.LastName,
		&person.JobTitle,
		&person.GroupID,
		&person.CreatedAt,
		&person.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrPersonNotFound
		}
		return nil, fmt.Errorf("failed to get person: %w", mapPostgresError(err))
	}

	return &person, nil
}

// ListByGroup returns the direct members of a group, or ungrouped people when groupID is nil.
func (s *PersonStore) ListByGroup(ctx context.Context, groupID *int64) ([]*models.Person, error) {
	query := `
		SELECT ` + personColumns + `
		FROM people
		WHERE group_id IS NOT DISTINCT FROM $1
		ORDER BY id
	`

	rows, err := s.pool.Query(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list people by group: %w", mapPostgresError(err))
	}

	return collectPeople(rows)
}

// ListInExtendedGroup returns the members of a group and all of its descendant groups,
// optionally narrowed by LIKE patterns on first name and job title.
func (s *PersonStore) ListInExtendedGroup(ctx context.Context, groupID int64, filter store.MemberFilter) ([]*models.Person, error) {
	query := `
		WITH RECURSIVE descendant_groups AS (
			SELECT id
			FROM people_groups
			WHERE id = $1

			UNION

			SELECT pg.id
			FROM people_groups pg
			INNER JOIN descendant_groups dg ON pg.parent_group_id = dg.id
		)
		SELECT p.id, p.first_name, p.last_name, p.job_title, p.group_id, p.created_at, p.updated_at
		FROM people p
		INNER JOIN descendant_groups dg ON p.group_id = dg.id
		WHERE ($2::text IS NULL OR p.first_name LIKE $2)
		AND ($3::text IS NULL OR p.job_title LIKE $3)
		ORDER BY p.id
	`

	rows, err := s.pool.Query(ctx, query, groupID, filter.FirstName, filter.JobTitle)
	if err != nil {
		return nil, fmt.Errorf("failed to list extended group members: %w", mapPostgresError(err))
	}

	return collectPeople(rows)
}

// Create inserts a person and returns its ID.
func (s *PersonStore) Create(ctx context.Context, person *models.PersonModel) (int64, error) {
	query := `
		INSERT INTO people (first_name, last_name, job_title, group_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	var id int64
	err := s.pool.QueryRow(ctx, query,
		person.FirstName,
		person.LastName,
		person.JobTitle,
		person.GroupID,
	).Scan(&id)
	if err != nil {
		return 0, mapPostgresError(err)
	}

	log.Debug().
		Int64("person_id", id).
		Msg("Created person")

	return id, nil
}

// Update overwrites every column of a person.
func (s *PersonStore) Update(ctx context.Context, id int64, person *models.PersonModel) error {
	query := `
		UPDATE people SET
			first_name = $2,
			last_name = $3,
			job_title = $4,
			group_id = $5,
			updated_at = now()
		WHERE id = $1
	`

	result, err := s.pool.Exec(ctx, query,
		id,
		person.FirstName,
		person.LastName,
		person.JobTitle,
		person.GroupID,
	)
	if err != nil {
		return mapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return store.ErrPersonNotFound
	}

	log.Debug().
		Int64("person_id", id).
		Msg("Updated person")

	return nil
}

// Delete deletes a person by ID.
func (s *PersonStore) Delete(ctx context.Context, id int64) error {
	result, err := s.pool.Exec(ctx, `DELETE FROM people WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete person: %w", mapPostgresError(err))
	}

	if result.RowsAffected() == 0 {
		return store.ErrPersonNotFound
	}

	log.Info().Int64("person_id", id).Msg("Deleted person")

	return nil
}

// DeleteAll removes every person.
func (s *PersonStore) DeleteAll(ctx context.Context) error {
	result, err := s.pool.Exec(ctx, `DELETE FROM people`)
	if err != nil {
		return fmt.Errorf("failed to delete people: %w", mapPostgresError(err))
	}

	log.Info().Int64("count", result.RowsAffected()).Msg("Deleted all people")

	return nil
}

func collectPeople(rows pgx.Rows) ([]*models.Person, error) {
	defer rows.Close()

	people := []*models.Person{}
	for rows.Next() {
		var person models.Person
		err := rows.Scan(
			&person.ID,
			&person.FirstName,
			&person.LastName,
			&person.JobTitle,
			&person.GroupID,
			&person.CreatedAt,
			&person.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		people = append(people, &person)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating people: %w", err)
	}

	return people, nil
}
