package orgtree

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wolfeidau/orgchart/internal/models"
)

func id(v int64) *int64 { return &v }

func TestAssemble(t *testing.T) {
	t.Run("nests groups and members", func(t *testing.T) {
		groups := []*models.Group{
			{ID: 1, Name: "Eng"},
			{ID: 2, Name: "Backend", ParentGroupID: id(1)},
		}
		people := []*models.Person{
			{ID: 1, FirstName: "A", LastName: "B", JobTitle: "Dev", GroupID: id(2)},
		}

		data, err := json.Marshal(Assemble(groups, people))
		require.NoError(t, err)
		require.JSONEq(t, `{"Eng":{"Backend":{"A B":"Dev"}}}`, string(data))
		require.Equal(t, `{"Eng":{"Backend":{"A B":"Dev"}}}`, string(data))
	})

	t.Run("empty input", func(t *testing.T) {
		data, err := json.Marshal(Assemble(nil, nil))
		require.NoError(t, err)
		require.Equal(t, `{}`, string(data))
	})

	t.Run("ungrouped people and root groups share the top level", func(t *testing.T) {
		groups := []*models.Group{
			{ID: 1, Name: "Sales"},
			{ID: 2, Name: "Ops"},
		}
		people := []*models.Person{
			{ID: 1, FirstName: "Jo", LastName: "Smith", JobTitle: "CEO"},
			{ID: 2, FirstName: "Al", LastName: "Jones", JobTitle: "Rep", GroupID: id(1)},
		}

		tree := Assemble(groups, people)
		require.Equal(t, []string{"Sales", "Ops", "Jo Smith"}, tree.Keys())

		node, ok := tree.Get("Jo Smith")
		require.True(t, ok)
		require.Equal(t, LeafNode{Title: "CEO"}, node)
		require.Equal(t, []string{"Al Jones"}, tree.Group("Sales").Keys())
		require.Equal(t, 0, tree.Group("Ops").Len())
	})

	t.Run("child groups come before members added later in fetch order", func(t *testing.T) {
		groups := []*models.Group{
			{ID: 1, Name: "Root"},
			{ID: 3, Name: "Child", ParentGroupID: id(1)},
		}
		people := []*models.Person{
			{ID: 1, FirstName: "P", LastName: "One", JobTitle: "X", GroupID: id(1)},
		}

		tree := Assemble(groups, people)
		require.Equal(t, []string{"Child", "P One"}, tree.Group("Root").Keys())
	})

	t.Run("unknown references are placed at the top level", func(t *testing.T) {
		groups := []*models.Group{
			{ID: 5, Name: "Orphan", ParentGroupID: id(99)},
		}
		people := []*models.Person{
			{ID: 1, FirstName: "Lost", LastName: "Soul", JobTitle: "Wanderer", GroupID: id(42)},
		}

		tree := Assemble(groups, people)
		require.Equal(t, []string{"Orphan", "Lost Soul"}, tree.Keys())
	})

	t.Run("same display name overwrites and keeps the first position", func(t *testing.T) {
		people := []*models.Person{
			{ID: 1, FirstName: "Sam", LastName: "Lee", JobTitle: "First"},
			{ID: 2, FirstName: "Kim", LastName: "Park", JobTitle: "Other"},
			{ID: 3, FirstName: "Sam", LastName: "Lee", JobTitle: "Second"},
		}

		tree := Assemble(nil, people)
		require.Equal(t, []string{"Sam Lee", "Kim Park"}, tree.Keys())

		node, _ := tree.Get("Sam Lee")
		require.Equal(t, LeafNode{Title: "Second"}, node)
	})

	t.Run("person named like a sibling group replaces it", func(t *testing.T) {
		groups := []*models.Group{
			{ID: 1, Name: "Eng"},
			{ID: 2, Name: "Ada Lovelace", ParentGroupID: id(1)},
		}
		people := []*models.Person{
			{ID: 1, FirstName: "Ada", LastName: "Lovelace", JobTitle: "Engineer", GroupID: id(1)},
		}

		tree := Assemble(groups, people)
		node, ok := tree.Group("Eng").Get("Ada Lovelace")
		require.True(t, ok)
		require.Equal(t, LeafNode{Title: "Engineer"}, node)
	})

	t.Run("groups on a closed cycle terminate", func(t *testing.T) {
		groups := []*models.Group{
			{ID: 1, Name: "Top"},
			{ID: 2, Name: "A", ParentGroupID: id(3)},
			{ID: 3, Name: "B", ParentGroupID: id(2)},
		}

		tree := Assemble(groups, nil)
		require.Equal(t, []string{"Top"}, tree.Keys())
	})

	t.Run("repeated assembly is byte identical", func(t *testing.T) {
		groups := []*models.Group{
			{ID: 1, Name: "Eng"},
			{ID: 2, Name: "Web", ParentGroupID: id(1)},
			{ID: 3, Name: "Data", ParentGroupID: id(1)},
		}
		people := []*models.Person{
			{ID: 1, FirstName: "A", LastName: "A", JobTitle: "Dev", GroupID: id(3)},
			{ID: 2, FirstName: "B", LastName: "B", JobTitle: "Dev", GroupID: id(2)},
		}

		first, err := json.Marshal(Assemble(groups, people))
		require.NoError(t, err)
		second, err := json.Marshal(Assemble(groups, people))
		require.NoError(t, err)
		require.Equal(t, first, second)
	})
}
