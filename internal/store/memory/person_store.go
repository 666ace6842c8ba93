package memory

import (
	"context"

	"github.com/wolfeidau/orgchart/internal/models"
	"github.com/wolfeidau/orgchart/internal/store"
)

var _ store.PersonStore = (*PersonStore)(nil)

// PersonStore implements store.PersonStore using in-memory storage.
type PersonStore struct {
	db *database
}

// List returns every person ordered by ID.
func (s *PersonStore) List(ctx context.Context) ([]*models.Person, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	return s.db.sortedPeople(func(*models.Person) bool { return true }), nil
}

// Get retrieves a person by ID.
func (s *PersonStore) Get(ctx context.Context, id int64) (*models.Person, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	person, exists := s.db.people[id]
	if !exists {
		return nil, store.ErrPersonNotFound
	}

	return clonePerson(person), nil
}

// ListByGroup returns the direct members of a group, or ungrouped people when groupID is nil.
func (s *PersonStore) ListByGroup(ctx context.Context, groupID *int64) ([]*models.Person, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	return s.db.sortedPeople(func(p *models.Person) bool {
		return models.SameID(p.GroupID, groupID)
	}), nil
}

// ListInExtendedGroup returns the members of a group and all of its descendant groups.
func (s *PersonStore) ListInExtendedGroup(ctx context.Context, groupID int64, filter store.MemberFilter) ([]*models.Person, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	closure := s.db.descendants(groupID)

	return s.db.sortedPeople(func(p *models.Person) bool {
		if p.GroupID == nil {
			return false
		}
		if _, ok := closure[*p.GroupID]; !ok {
			return false
		}
		if filter.FirstName != nil && !like(*filter.FirstName, p.FirstName) {
			return false
		}
		if filter.JobTitle != nil && !like(*filter.JobTitle, p.JobTitle) {
			return false
		}
		return true
	}), nil
}

// Create inserts a person and returns its ID.
func (s *PersonStore) Create(ctx context.Context, person *models.PersonModel) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if !s.db.groupExists(person.GroupID) {
		return 0, store.ErrUnknownGroupReference
	}

	s.db.nextPersonID++
	now := s.db.now()
	s.db.people[s.db.nextPersonID] = &models.Person{
		ID:        s.db.nextPersonID,
		FirstName: person.FirstName,
		LastName:  person.LastName,
		JobTitle:  person.JobTitle,
		GroupID:   cloneID(person.GroupID),
		CreatedAt: now,
		UpdatedAt: now,
	}

	return s.db.nextPersonID, nil
}

// Update overwrites every column of a person.
func (s *PersonStore) Update(ctx context.Context, id int64, person *models.PersonModel) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	existing, exists := s.db.people[id]
	if !exists {
		return store.ErrPersonNotFound
	}
	if !s.db.groupExists(person.GroupID) {
		return store.ErrUnknownGroupReference
	}

	existing.FirstName = person.FirstName
	existing.LastName = person.LastName
	existing.JobTitle = person.JobTitle
	existing.GroupID = cloneID(person.GroupID)
	existing.UpdatedAt = s.db.now()

	return nil
}

// Delete deletes a person by ID.
func (s *PersonStore) Delete(ctx context.Context, id int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, exists := s.db.people[id]; !exists {
		return store.ErrPersonNotFound
	}

	delete(s.db.people, id)

	return nil
}

// DeleteAll removes every person.
func (s *PersonStore) DeleteAll(ctx context.Context) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	clear(s.db.people)

	return nil
}
