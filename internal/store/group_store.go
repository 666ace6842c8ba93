package store

import (
	"context"

	"github.com/wolfeidau/orgchart/internal/models"
)

// GroupStore defines the interface for group storage operations.
// All listings are returned in primary key order.
type GroupStore interface {
	// List returns every group.
	List(ctx context.Context) ([]*models.Group, error)

	// Get retrieves a group by ID.
	// Returns ErrGroupNotFound if the group doesn't exist.
	Get(ctx context.Context, id int64) (*models.Group, error)

	// ListByParent returns the direct children of a group, or the root groups when parentID is nil.
	ListByParent(ctx context.Context, parentID *int64) ([]*models.Group, error)

	// Branch returns the group followed by its ancestors, nearest first.
	// Returns an empty slice if the group doesn't exist.
	Branch(ctx context.Context, id int64) ([]*models.Group, error)

	// DescendantIDs returns the descendant closure of a group, including the group itself.
	DescendantIDs(ctx context.Context, id int64) ([]int64, error)

	// Create inserts a group and returns its ID.
	// Returns ErrGroupNameTaken if the name is in use and ErrUnknownGroupReference
	// if the parent doesn't exist.
	Create(ctx context.Context, group *models.GroupModel) (int64, error)

	// Update overwrites the name and parent of a group.
	// Returns ErrGroupNotFound, ErrGroupNameTaken or ErrUnknownGroupReference.
	Update(ctx context.Context, id int64, group *models.GroupModel) error

	// Delete deletes a group by ID. Child groups become roots and members become ungrouped.
	// Returns ErrGroupNotFound if the group doesn't exist.
	Delete(ctx context.Context, id int64) error

	// DeleteAll removes every group.
	DeleteAll(ctx context.Context) error

	// Touch bumps the update timestamp of a group without changing its columns.
	// Returns ErrGroupNotFound if the group doesn't exist.
	Touch(ctx context.Context, id int64) error
}
