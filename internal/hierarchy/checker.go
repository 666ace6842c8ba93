// Package hierarchy validates group reparenting so that the parent links keep forming a forest.
package hierarchy

import (
	"context"
	"fmt"
	"slices"

	"github.com/wolfeidau/orgchart/internal/models"
	"github.com/wolfeidau/orgchart/internal/store"
)

var (
	ErrTargetGroupNotFound = fmt.Errorf("%w: target group does not exist", store.ErrValidation)
	ErrSelfParent          = fmt.Errorf("%w: a group can't be its own parent", store.ErrValidation)
	ErrDescendantParent    = fmt.Errorf("%w: a group can't have a descendant as a parent", store.ErrValidation)
)

// GroupReader is the read side of the group store used by the checker.
type GroupReader interface {
	Get(ctx context.Context, id int64) (*models.Group, error)
	DescendantIDs(ctx context.Context, id int64) ([]int64, error)
}

// Checker decides whether a group may be moved under a new parent.
type Checker struct {
	groups GroupReader
}

// NewChecker creates a checker reading from groups.
func NewChecker(groups GroupReader) *Checker {
	return &Checker{groups: groups}
}

// CheckReparent reports whether group groupID may take newParentID as its parent.
//
// Rules are applied in order:
//   - the group must exist
//   - keeping the current parent is always allowed
//   - a group can't be its own parent
//   - a root group may move anywhere else without a descendant check
//   - the new parent can't be in the descendant closure of the group
//
// The root bypass means a root can be moved under one of its own descendants,
// which detaches that subtree from the top level.
func (c *Checker) CheckReparent(ctx context.Context, groupID int64, newParentID *int64) error {
	current, err := c.groups.Get(ctx, groupID)
	if err != nil {
		if store.IsNotFound(err) {
			return ErrTargetGroupNotFound
		}
		return fmt.Errorf("failed to load group %d: %w", groupID, err)
	}

	if models.SameID(current.ParentGroupID, newParentID) {
		return nil
	}

	// moving to the top level can't close a cycle
	if newParentID == nil {
		return nil
	}

	// checked before the root bypass so that roots can't parent themselves either
	if *newParentID == groupID {
		return ErrSelfParent
	}

	if current.IsRoot() {
		return nil
	}

	descendants, err := c.groups.DescendantIDs(ctx, groupID)
	if err != nil {
		return fmt.Errorf("failed to load descendants of group %d: %w", groupID, err)
	}

	if slices.Contains(descendants, *newParentID) {
		return ErrDescendantParent
	}

	return nil
}
