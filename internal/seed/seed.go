// Package seed loads an organization described as nested YAML.
//
//	groups:
//	  - name: Engineering
//	    people:
//	      - {firstName: Ada, lastName: Lovelace, jobTitle: CTO}
//	    groups:
//	      - name: Backend
//	people:
//	  - {firstName: Grace, lastName: Hopper, jobTitle: Advisor}
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/wolfeidau/orgchart/internal/models"
)

// Organization is the root of a seed file. People listed here are ungrouped.
type Organization struct {
	Groups []Group   `yaml:"groups"`
	People []*Person `yaml:"people"`
}

// Group is a group with its direct members and child groups.
type Group struct {
	Name   string    `yaml:"name"`
	People []*Person `yaml:"people"`
	Groups []Group   `yaml:"groups"`
}

// Person is a member without a group reference; the enclosing group supplies it.
type Person struct {
	FirstName string `yaml:"firstName"`
	LastName  string `yaml:"lastName"`
	JobTitle  string `yaml:"jobTitle"`
}

// GroupCreator creates groups.
type GroupCreator interface {
	Create(ctx context.Context, group *models.GroupModel) (int64, error)
}

// PersonCreator creates people.
type PersonCreator interface {
	Create(ctx context.Context, person *models.PersonModel) (int64, error)
}

// Result counts what Apply created.
type Result struct {
	Groups int
	People int
}

// Decode reads a seed file.
func Decode(r io.Reader) (*Organization, error) {
	var org Organization

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&org); err != nil {
		if errors.Is(err, io.EOF) {
			return &org, nil
		}
		return nil, fmt.Errorf("failed to decode seed file: %w", err)
	}

	if err := org.validate(); err != nil {
		return nil, err
	}

	return &org, nil
}

func (o *Organization) validate() error {
	seen := map[string]bool{}

	var walk func(groups []Group, path string) error
	walk = func(groups []Group, path string) error {
		for _, g := range groups {
			if g.Name == "" {
				return fmt.Errorf("group under %q has no name", path)
			}
			if seen[g.Name] {
				return fmt.Errorf("group %q is declared more than once", g.Name)
			}
			seen[g.Name] = true

			for _, p := range g.People {
				if err := p.validate(g.Name); err != nil {
					return err
				}
			}
			if err := walk(g.Groups, path+"/"+g.Name); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(o.Groups, ""); err != nil {
		return err
	}
	for _, p := range o.People {
		if err := p.validate("/"); err != nil {
			return err
		}
	}
	return nil
}

func (p *Person) validate(group string) error {
	if p == nil || p.FirstName == "" || p.LastName == "" || p.JobTitle == "" {
		return fmt.Errorf("person in %q needs firstName, lastName and jobTitle", group)
	}
	return nil
}

// Apply creates the groups top down, then their members, then the ungrouped people.
func Apply(ctx context.Context, org *Organization, groups GroupCreator, people PersonCreator) (Result, error) {
	var res Result

	var create func(list []Group, parent *int64) error
	create = func(list []Group, parent *int64) error {
		for _, g := range list {
			id, err := groups.Create(ctx, &models.GroupModel{Name: g.Name, ParentGroupID: parent})
			if err != nil {
				return fmt.Errorf("failed to create group %q: %w", g.Name, err)
			}
			res.Groups++

			for _, p := range g.People {
				if err := createPerson(ctx, people, p, &id); err != nil {
					return err
				}
				res.People++
			}

			if err := create(g.Groups, &id); err != nil {
				return err
			}
		}
		return nil
	}

	if err := create(org.Groups, nil); err != nil {
		return res, err
	}

	for _, p := range org.People {
		if err := createPerson(ctx, people, p, nil); err != nil {
			return res, err
		}
		res.People++
	}

	return res, nil
}

func createPerson(ctx context.Context, people PersonCreator, p *Person, groupID *int64) error {
	_, err := people.Create(ctx, &models.PersonModel{
		FirstName: p.FirstName,
		LastName:  p.LastName,
		JobTitle:  p.JobTitle,
		GroupID:   groupID,
	})
	if err != nil {
		return fmt.Errorf("failed to create person %s %s: %w", p.FirstName, p.LastName, err)
	}
	return nil
}
