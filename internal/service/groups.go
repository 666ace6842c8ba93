package service

import (
	"context"

	"github.com/wolfeidau/orgchart/internal/hierarchy"
	"github.com/wolfeidau/orgchart/internal/models"
	"github.com/wolfeidau/orgchart/internal/store"
)

// GroupService manages groups.
type GroupService struct {
	groups  store.GroupStore
	people  store.PersonStore
	checker *hierarchy.Checker
	view    Refresher
}

// NewGroupService creates a group service.
func NewGroupService(groups store.GroupStore, people store.PersonStore, view Refresher) *GroupService {
	return &GroupService{
		groups:  groups,
		people:  people,
		checker: hierarchy.NewChecker(groups),
		view:    view,
	}
}

func (s *GroupService) List(ctx context.Context) ([]*models.Group, error) {
	return s.groups.List(ctx)
}

func (s *GroupService) Get(ctx context.Context, id int64) (*models.Group, error) {
	return s.groups.Get(ctx, id)
}

// Children lists the direct children of a group, or the root groups when parentID is nil.
func (s *GroupService) Children(ctx context.Context, parentID *int64) ([]*models.Group, error) {
	if parentID != nil {
		if _, err := s.groups.Get(ctx, *parentID); err != nil {
			return nil, err
		}
	}
	return s.groups.ListByParent(ctx, parentID)
}

// Members returns the people in the group and in every group below it.
// Returns store.ErrGroupNotFound if the group doesn't exist.
func (s *GroupService) Members(ctx context.Context, id int64, filter store.MemberFilter) ([]*models.Person, error) {
	if _, err := s.groups.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.people.ListInExtendedGroup(ctx, id, filter)
}

// Create inserts a group. Name uniqueness and the parent reference are enforced by the store.
func (s *GroupService) Create(ctx context.Context, group *models.GroupModel) (int64, error) {
	ctx = detach(ctx)

	id, err := s.groups.Create(ctx, group)
	if err != nil {
		return 0, err
	}

	if err := mutated(ctx, s.view, "group", "create"); err != nil {
		return 0, err
	}
	return id, nil
}

// Update renames and reparents a group after checking the move keeps the hierarchy acyclic.
func (s *GroupService) Update(ctx context.Context, id int64, group *models.GroupModel) error {
	ctx = detach(ctx)

	if err := s.checker.CheckReparent(ctx, id, group.ParentGroupID); err != nil {
		return err
	}

	if err := s.groups.Update(ctx, id, group); err != nil {
		return err
	}

	return mutated(ctx, s.view, "group", "update")
}

// Delete removes a group. Its child groups become roots and its members become ungrouped.
func (s *GroupService) Delete(ctx context.Context, id int64) error {
	ctx = detach(ctx)

	if err := s.groups.Delete(ctx, id); err != nil {
		return err
	}
	return mutated(ctx, s.view, "group", "delete")
}

// DeleteAll removes every group.
func (s *GroupService) DeleteAll(ctx context.Context) error {
	ctx = detach(ctx)

	if err := s.groups.DeleteAll(ctx); err != nil {
		return err
	}
	return mutated(ctx, s.view, "group", "delete_all")
}
