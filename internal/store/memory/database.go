package memory

import (
	"cmp"
	"slices"
	"sync"
	"time"

	"github.com/wolfeidau/orgchart/internal/models"
)

// database is the state shared by the in-memory group and person stores so that
// foreign key behaviour (unknown references, ON DELETE SET NULL) matches PostgreSQL.
type database struct {
	mu sync.RWMutex

	groups       map[int64]*models.Group  // group_id -> Group
	people       map[int64]*models.Person // person_id -> Person
	nextGroupID  int64
	nextPersonID int64
	now          func() time.Time
}

// NewStores creates an in-memory group store and person store over the same data.
// This implementation is for testing and local development - data is lost on restart.
func NewStores() (*GroupStore, *PersonStore) {
	db := &database{
		groups: make(map[int64]*models.Group),
		people: make(map[int64]*models.Person),
		now:    time.Now,
	}
	return &GroupStore{db: db}, &PersonStore{db: db}
}

// sortedGroups returns clones of the matching groups in ID order. Callers hold the lock.
func (db *database) sortedGroups(match func(*models.Group) bool) []*models.Group {
	result := []*models.Group{}
	for _, g := range db.groups {
		if match(g) {
			result = append(result, cloneGroup(g))
		}
	}
	slices.SortFunc(result, func(a, b *models.Group) int { return cmp.Compare(a.ID, b.ID) })
	return result
}

// sortedPeople returns clones of the matching people in ID order. Callers hold the lock.
func (db *database) sortedPeople(match func(*models.Person) bool) []*models.Person {
	result := []*models.Person{}
	for _, p := range db.people {
		if match(p) {
			result = append(result, clonePerson(p))
		}
	}
	slices.SortFunc(result, func(a, b *models.Person) int { return cmp.Compare(a.ID, b.ID) })
	return result
}

// descendants walks child links breadth first. The visited set keeps the walk finite
// even when a reparented root has closed a cycle.
func (db *database) descendants(id int64) map[int64]struct{} {
	closure := map[int64]struct{}{}
	if _, ok := db.groups[id]; !ok {
		return closure
	}

	closure[id] = struct{}{}
	queue := []int64{id}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, g := range db.groups {
			if g.ParentGroupID == nil || *g.ParentGroupID != current {
				continue
			}
			if _, seen := closure[g.ID]; seen {
				continue
			}
			closure[g.ID] = struct{}{}
			queue = append(queue, g.ID)
		}
	}

	return closure
}

func (db *database) groupExists(id *int64) bool {
	if id == nil {
		return true
	}
	_, ok := db.groups[*id]
	return ok
}

func cloneID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func cloneGroup(g *models.Group) *models.Group {
	clone := *g
	clone.ParentGroupID = cloneID(g.ParentGroupID)
	return &clone
}

func clonePerson(p *models.Person) *models.Person {
	clone := *p
	clone.GroupID = cloneID(p.GroupID)
	return &clone
}
