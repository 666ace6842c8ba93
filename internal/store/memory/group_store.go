package memory

import (
	"context"
	"slices"

	"github.com/wolfeidau/orgchart/internal/models"
	"github.com/wolfeidau/orgchart/internal/store"
)

var _ store.GroupStore = (*GroupStore)(nil)

// GroupStore implements store.GroupStore using in-memory storage.
type GroupStore struct {
	db *database
}

// List returns every group ordered by ID.
func (s *GroupStore) List(ctx context.Context) ([]*models.Group, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	return s.db.sortedGroups(func(*models.Group) bool { return true }), nil
}

// Get retrieves a group by ID.
func (s *GroupStore) Get(ctx context.Context, id int64) (*models.Group, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	group, exists := s.db.groups[id]
	if !exists {
		return nil, store.ErrGroupNotFound
	}

	return cloneGroup(group), nil
}

// ListByParent returns the direct children of a group, or the roots when parentID is nil.
func (s *GroupStore) ListByParent(ctx context.Context, parentID *int64) ([]*models.Group, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	return s.db.sortedGroups(func(g *models.Group) bool {
		return models.SameID(g.ParentGroupID, parentID)
	}), nil
}

// Branch returns the group followed by its ancestors, nearest first.
func (s *GroupStore) Branch(ctx context.Context, id int64) ([]*models.Group, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	branch := []*models.Group{}
	seen := map[int64]struct{}{}
	for next, ok := s.db.groups[id]; ok; {
		if _, loop := seen[next.ID]; loop {
			break
		}
		seen[next.ID] = struct{}{}
		branch = append(branch, cloneGroup(next))
		if next.ParentGroupID == nil {
			break
		}
		next, ok = s.db.groups[*next.ParentGroupID]
	}

	return branch, nil
}

// DescendantIDs returns the descendant closure of a group, including the group itself.
func (s *GroupStore) DescendantIDs(ctx context.Context, id int64) ([]int64, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	closure := s.db.descendants(id)
	ids := make([]int64, 0, len(closure))
	for gid := range closure {
		ids = append(ids, gid)
	}
	slices.Sort(ids)

	return ids, nil
}

// Create inserts a group and returns its ID.
func (s *GroupStore) Create(ctx context.Context, group *models.GroupModel) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if s.nameTaken(group.Name, 0) {
		return 0, store.ErrGroupNameTaken
	}
	if !s.db.groupExists(group.ParentGroupID) {
		return 0, store.ErrUnknownGroupReference
	}

	s.db.nextGroupID++
	now := s.db.now()
	s.db.groups[s.db.nextGroupID] = &models.Group{
		ID:            s.db.nextGroupID,
		Name:          group.Name,
		ParentGroupID: cloneID(group.ParentGroupID),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	return s.db.nextGroupID, nil
}

// Update overwrites the name and parent of a group.
func (s *GroupStore) Update(ctx context.Context, id int64, group *models.GroupModel) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	existing, exists := s.db.groups[id]
	if !exists {
		return store.ErrGroupNotFound
	}
	if s.nameTaken(group.Name, id) {
		return store.ErrGroupNameTaken
	}
	if !s.db.groupExists(group.ParentGroupID) {
		return store.ErrUnknownGroupReference
	}

	existing.Name = group.Name
	existing.ParentGroupID = cloneID(group.ParentGroupID)
	existing.UpdatedAt = s.db.now()

	return nil
}

// Delete deletes a group by ID, detaching its child groups and members.
func (s *GroupStore) Delete(ctx context.Context, id int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, exists := s.db.groups[id]; !exists {
		return store.ErrGroupNotFound
	}

	delete(s.db.groups, id)
	for _, g := range s.db.groups {
		if g.ParentGroupID != nil && *g.ParentGroupID == id {
			g.ParentGroupID = nil
		}
	}
	for _, p := range s.db.people {
		if p.GroupID != nil && *p.GroupID == id {
			p.GroupID = nil
		}
	}

	return nil
}

// DeleteAll removes every group and ungroups every person.
func (s *GroupStore) DeleteAll(ctx context.Context) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	clear(s.db.groups)
	for _, p := range s.db.people {
		p.GroupID = nil
	}

	return nil
}

// Touch bumps the update timestamp of a group.
func (s *GroupStore) Touch(ctx context.Context, id int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	group, exists := s.db.groups[id]
	if !exists {
		return store.ErrGroupNotFound
	}
	group.UpdatedAt = s.db.now()

	return nil
}

func (s *GroupStore) nameTaken(name string, except int64) bool {
	for _, g := range s.db.groups {
		if g.Name == name && g.ID != except {
			return true
		}
	}
	return false
}
