package models

import "time"

// Group is a named node in the organization hierarchy. A nil ParentGroupID marks a root group.
type Group struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	ParentGroupID *int64    `json:"parentGroupId"`
	CreatedAt     time.Time `json:"dateCreated"`
	UpdatedAt     time.Time `json:"dateUpdated"`
}

// GroupModel holds the user supplied columns of a group.
type GroupModel struct {
	Name          string `json:"name" yaml:"name" validate:"required,max=255"`
	ParentGroupID *int64 `json:"parentGroupId" yaml:"parentGroupId" validate:"omitempty,gt=0"`
}

// IsRoot reports whether the group has no parent.
func (g *Group) IsRoot() bool {
	return g.ParentGroupID == nil
}
