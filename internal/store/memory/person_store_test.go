package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wolfeidau/orgchart/internal/models"
	"github.com/wolfeidau/orgchart/internal/store"
)

func TestPersonStore_CRUD(t *testing.T) {
	ctx := context.Background()
	groups, people := NewStores()

	eng, err := groups.Create(ctx, &models.GroupModel{Name: "Eng"})
	require.NoError(t, err)

	id, err := people.Create(ctx, &models.PersonModel{FirstName: "Ada", LastName: "Lovelace", JobTitle: "Engineer", GroupID: &eng})
	require.NoError(t, err)

	p, err := people.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "Ada Lovelace", p.DisplayName())
	require.Equal(t, eng, *p.GroupID)

	members, err := people.ListByGroup(ctx, &eng)
	require.NoError(t, err)
	require.Len(t, members, 1)

	ungrouped, err := people.ListByGroup(ctx, nil)
	require.NoError(t, err)
	require.Empty(t, ungrouped)

	require.NoError(t, people.Update(ctx, id, &models.PersonModel{FirstName: "Ada", LastName: "King", JobTitle: "Countess"}))
	p, err = people.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "King", p.LastName)
	require.Nil(t, p.GroupID)

	missing := int64(77)
	require.ErrorIs(t, people.Update(ctx, id, &models.PersonModel{FirstName: "A", LastName: "B", JobTitle: "C", GroupID: &missing}), store.ErrUnknownGroupReference)
	require.ErrorIs(t, people.Update(ctx, 999, &models.PersonModel{FirstName: "A", LastName: "B", JobTitle: "C"}), store.ErrPersonNotFound)

	_, err = people.Create(ctx, &models.PersonModel{FirstName: "A", LastName: "B", JobTitle: "C", GroupID: &missing})
	require.ErrorIs(t, err, store.ErrUnknownGroupReference)

	require.NoError(t, people.Delete(ctx, id))
	_, err = people.Get(ctx, id)
	require.ErrorIs(t, err, store.ErrPersonNotFound)
	require.ErrorIs(t, people.Delete(ctx, id), store.ErrPersonNotFound)
}

func TestPersonStore_ListInExtendedGroup(t *testing.T) {
	ctx := context.Background()
	groups, people := NewStores()

	eng, err := groups.Create(ctx, &models.GroupModel{Name: "Eng"})
	require.NoError(t, err)
	web, err := groups.Create(ctx, &models.GroupModel{Name: "Web", ParentGroupID: &eng})
	require.NoError(t, err)
	ops, err := groups.Create(ctx, &models.GroupModel{Name: "Ops"})
	require.NoError(t, err)

	for _, m := range []*models.PersonModel{
		{FirstName: "Ann", LastName: "A", JobTitle: "Lead", GroupID: &eng},
		{FirstName: "Andy", LastName: "B", JobTitle: "Developer", GroupID: &web},
		{FirstName: "Bea", LastName: "C", JobTitle: "Developer", GroupID: &web},
		{FirstName: "Anton", LastName: "D", JobTitle: "Developer", GroupID: &ops},
		{FirstName: "Ana", LastName: "E", JobTitle: "Developer"},
	} {
		_, err := people.Create(ctx, m)
		require.NoError(t, err)
	}

	str := func(s string) *string { return &s }

	tests := []struct {
		name   string
		group  int64
		filter store.MemberFilter
		want   []string
	}{
		{name: "whole subtree", group: eng, want: []string{"Ann", "Andy", "Bea"}},
		{name: "leaf group", group: web, want: []string{"Andy", "Bea"}},
		{name: "first name prefix", group: eng, filter: store.MemberFilter{FirstName: str("An%")}, want: []string{"Ann", "Andy"}},
		{name: "single character wildcard", group: eng, filter: store.MemberFilter{FirstName: str("An_")}, want: []string{"Ann"}},
		{name: "job title", group: eng, filter: store.MemberFilter{JobTitle: str("%velop%")}, want: []string{"Andy", "Bea"}},
		{name: "both filters", group: eng, filter: store.MemberFilter{FirstName: str("B%"), JobTitle: str("Developer")}, want: []string{"Bea"}},
		{name: "case sensitive", group: eng, filter: store.MemberFilter{FirstName: str("ann")}, want: []string{}},
		{name: "unknown group", group: 99, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := people.ListInExtendedGroup(ctx, tt.group, tt.filter)
			require.NoError(t, err)

			names := []string{}
			for _, p := range got {
				names = append(names, p.FirstName)
			}
			require.Equal(t, tt.want, names)
		})
	}
}

func TestPersonStore_DeleteAll(t *testing.T) {
	ctx := context.Background()
	groups, people := NewStores()

	eng, err := groups.Create(ctx, &models.GroupModel{Name: "Eng"})
	require.NoError(t, err)
	_, err = people.Create(ctx, &models.PersonModel{FirstName: "A", LastName: "B", JobTitle: "C", GroupID: &eng})
	require.NoError(t, err)

	require.NoError(t, people.DeleteAll(ctx))

	list, err := people.List(ctx)
	require.NoError(t, err)
	require.Empty(t, list)

	_, err = groups.Get(ctx, eng)
	require.NoError(t, err)
}

func TestLike(t *testing.T) {
	tests := []struct {
		pattern string
		value   string
		want    bool
	}{
		{"abc", "abc", true},
		{"abc", "abcd", false},
		{"a%", "abcd", true},
		{"%d", "abcd", true},
		{"%", "", true},
		{"a_c", "abc", true},
		{"a_c", "ac", false},
		{"100\\%", "100%", true},
		{"100\\%", "1000", false},
		{"a.c", "abc", false},
		{"(x)", "(x)", true},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, like(tt.pattern, tt.value), "%q ~ %q", tt.pattern, tt.value)
	}
}
