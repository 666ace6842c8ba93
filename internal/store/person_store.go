package store

import (
	"context"

	"github.com/wolfeidau/orgchart/internal/models"
)

// MemberFilter narrows a group membership listing. Non-nil fields are SQL LIKE
// patterns matched against the corresponding column.
type MemberFilter struct {
	FirstName *string
	JobTitle  *string
}

// PersonStore defines the interface for person storage operations.
// All listings are returned in primary key order.
type PersonStore interface {
	// List returns every person.
	List(ctx context.Context) ([]*models.Person, error)

	// Get retrieves a person by ID.
	// Returns ErrPersonNotFound if the person doesn't exist.
	Get(ctx context.Context, id int64) (*models.Person, error)

	// ListByGroup returns the direct members of a group, or ungrouped people when groupID is nil.
	ListByGroup(ctx context.Context, groupID *int64) ([]*models.Person, error)

	// ListInExtendedGroup returns the members of a group and of all its descendant groups.
	ListInExtendedGroup(ctx context.Context, groupID int64, filter MemberFilter) ([]*models.Person, error)

	// Create inserts a person and returns its ID.
	// Returns ErrUnknownGroupReference if the group doesn't exist.
	Create(ctx context.Context, person *models.PersonModel) (int64, error)

	// Update overwrites every column of a person.
	// Returns ErrPersonNotFound or ErrUnknownGroupReference.
	Update(ctx context.Context, id int64, person *models.PersonModel) error

	// Delete deletes a person by ID.
	// Returns ErrPersonNotFound if the person doesn't exist.
	Delete(ctx context.Context, id int64) error

	// DeleteAll removes every person.
	DeleteAll(ctx context.Context) error
}
