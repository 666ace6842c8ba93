package orgtree

import "github.com/wolfeidau/orgchart/internal/models"

// member points at either a child group (by id) or a person.
type member struct {
	groupID int64
	person  *models.Person
}

type groupEntry struct {
	group   *models.Group
	members []member
}

type topEntry struct {
	key    string
	member member
}

// Assemble builds the organization tree from the complete set of groups and people.
//
// Groups are indexed by id and linked to their parents by lookup, so the result never
// follows live references around a cycle. Groups and people whose parent or group is
// not in the input are placed at the top level. Key collisions at the same level are
// resolved by the later entry in input order overwriting the earlier one.
func Assemble(groups []*models.Group, people []*models.Person) *Tree {
	index := make(map[int64]*groupEntry, len(groups))
	for _, g := range groups {
		index[g.ID] = &groupEntry{group: g}
	}

	var top []topEntry

	for _, g := range groups {
		if g.ParentGroupID != nil {
			if parent, ok := index[*g.ParentGroupID]; ok {
				parent.members = append(parent.members, member{groupID: g.ID})
				continue
			}
		}
		top = append(top, topEntry{key: g.Name, member: member{groupID: g.ID}})
	}

	for _, p := range people {
		if p.GroupID != nil {
			if group, ok := index[*p.GroupID]; ok {
				group.members = append(group.members, member{person: p})
				continue
			}
		}
		top = append(top, topEntry{key: p.DisplayName(), member: member{person: p}})
	}

	tree := NewTree()
	for _, entry := range top {
		tree.Set(entry.key, convert(index, entry.member, map[int64]bool{}))
	}

	return tree
}

// convert turns a member into a node. path holds the groups on the current descent.
func convert(index map[int64]*groupEntry, m member, path map[int64]bool) Node {
	if m.person != nil {
		return LeafNode{Title: m.person.JobTitle}
	}

	children := NewTree()
	entry := index[m.groupID]
	if path[m.groupID] {
		return GroupNode{Children: children}
	}
	path[m.groupID] = true
	defer delete(path, m.groupID)

	for _, child := range entry.members {
		if child.person != nil {
			children.Set(child.person.DisplayName(), convert(index, child, path))
			continue
		}
		children.Set(index[child.groupID].group.Name, convert(index, child, path))
	}

	return GroupNode{Children: children}
}
