package models

import "time"

// Person is a member of the organization, optionally belonging to a single group.
type Person struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	JobTitle  string    `json:"jobTitle"`
	GroupID   *int64    `json:"groupId"`
	CreatedAt time.Time `json:"dateCreated"`
	UpdatedAt time.Time `json:"dateUpdated"`
}

// PersonModel holds the user supplied columns of a person.
type PersonModel struct {
	FirstName string `json:"firstName" yaml:"firstName" validate:"required,max=255"`
	LastName  string `json:"lastName" yaml:"lastName" validate:"required,max=255"`
	JobTitle  string `json:"jobTitle" yaml:"jobTitle" validate:"required,max=255"`
	GroupID   *int64 `json:"groupId" yaml:"groupId" validate:"omitempty,gt=0"`
}

// DisplayName is the key used for the person in the organization tree.
func (p *Person) DisplayName() string {
	return p.FirstName + " " + p.LastName
}

// SameID compares two nullable ids.
func SameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
