package service

import (
	"context"
	"fmt"

	"github.com/wolfeidau/orgchart/internal/models"
	"github.com/wolfeidau/orgchart/internal/store"
)

// PersonService manages people.
type PersonService struct {
	people store.PersonStore
	groups store.GroupStore
	view   Refresher
}

// NewPersonService creates a person service.
func NewPersonService(people store.PersonStore, groups store.GroupStore, view Refresher) *PersonService {
	return &PersonService{
		people: people,
		groups: groups,
		view:   view,
	}
}

func (s *PersonService) List(ctx context.Context) ([]*models.Person, error) {
	return s.people.List(ctx)
}

func (s *PersonService) Get(ctx context.Context, id int64) (*models.Person, error) {
	return s.people.Get(ctx, id)
}

// InGroup lists the direct members of a group, or the ungrouped people when groupID is nil.
func (s *PersonService) InGroup(ctx context.Context, groupID *int64) ([]*models.Person, error) {
	if groupID != nil {
		if _, err := s.groups.Get(ctx, *groupID); err != nil {
			return nil, err
		}
	}
	return s.people.ListByGroup(ctx, groupID)
}

// Memberships returns the person's group followed by its ancestors, nearest first.
// An ungrouped person has no memberships.
func (s *PersonService) Memberships(ctx context.Context, id int64) ([]*models.Group, error) {
	person, err := s.people.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if person.GroupID == nil {
		return []*models.Group{}, nil
	}

	return s.groups.Branch(ctx, *person.GroupID)
}

// Create inserts a person. An unknown group is rejected by the store.
func (s *PersonService) Create(ctx context.Context, person *models.PersonModel) (int64, error) {
	ctx = detach(ctx)

	id, err := s.people.Create(ctx, person)
	if err != nil {
		return 0, err
	}

	if err := s.touch(ctx, person.GroupID); err != nil {
		return 0, err
	}

	if err := mutated(ctx, s.view, "person", "create"); err != nil {
		return 0, err
	}
	return id, nil
}

// Update overwrites a person. When the group changes, both the old and the new group are touched.
func (s *PersonService) Update(ctx context.Context, id int64, person *models.PersonModel) error {
	ctx = detach(ctx)

	existing, err := s.people.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.people.Update(ctx, id, person); err != nil {
		return err
	}

	if !models.SameID(existing.GroupID, person.GroupID) {
		if err := s.touch(ctx, person.GroupID); err != nil {
			return err
		}
		if err := s.touch(ctx, existing.GroupID); err != nil {
			return err
		}
	}

	return mutated(ctx, s.view, "person", "update")
}

// Delete removes a person. The person's group is left untouched.
func (s *PersonService) Delete(ctx context.Context, id int64) error {
	ctx = detach(ctx)

	if err := s.people.Delete(ctx, id); err != nil {
		return err
	}
	return mutated(ctx, s.view, "person", "delete")
}

// DeleteAll removes every person.
func (s *PersonService) DeleteAll(ctx context.Context) error {
	ctx = detach(ctx)

	if err := s.people.DeleteAll(ctx); err != nil {
		return err
	}
	return mutated(ctx, s.view, "person", "delete_all")
}

// touch bumps the update timestamp of a group whose membership changed.
// A group removed in the meantime is skipped.
func (s *PersonService) touch(ctx context.Context, groupID *int64) error {
	if groupID == nil {
		return nil
	}

	err := s.groups.Touch(ctx, *groupID)
	if err != nil && !store.IsNotFound(err) {
		return fmt.Errorf("failed to touch group %d: %w", *groupID, err)
	}
	return nil
}
