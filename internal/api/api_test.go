package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wolfeidau/orgchart/internal/cache"
	"github.com/wolfeidau/orgchart/internal/orgtree"
	"github.com/wolfeidau/orgchart/internal/service"
	"github.com/wolfeidau/orgchart/internal/store/memory"
)

type testServer struct {
	handler http.Handler
	cache   *cache.Memory
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	groups, people := memory.NewStores()
	c := cache.NewMemory()
	view := orgtree.NewView(groups, people, c)

	h := NewHandler(
		service.NewGroupService(groups, people, view),
		service.NewPersonService(people, groups, view),
		view,
	)
	return &testServer{handler: h.Router(), cache: c}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) create(t *testing.T, path, body string) int64 {
	t.Helper()

	rec := s.do(t, http.MethodPost, path, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotZero(t, created.ID)
	return created.ID
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Message
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestGroupsAPI(t *testing.T) {
	t.Run("create and fetch", func(t *testing.T) {
		s := newTestServer(t)

		eng := s.create(t, "/groups", `{"name":"Eng"}`)
		s.create(t, "/groups", `{"name":"Backend","parentGroupId":`+itoa(eng)+`}`)

		rec := s.do(t, http.MethodGet, "/groups/"+itoa(eng), "")
		require.Equal(t, http.StatusOK, rec.Code)

		var group map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &group))
		require.Equal(t, "Eng", group["name"])
		require.Nil(t, group["parentGroupId"])
		require.Contains(t, group, "dateCreated")
		require.Contains(t, group, "dateUpdated")

		rec = s.do(t, http.MethodGet, "/groups", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var groups []map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &groups))
		require.Len(t, groups, 2)
	})

	t.Run("list filtered by parent", func(t *testing.T) {
		s := newTestServer(t)

		eng := s.create(t, "/groups", `{"name":"Eng"}`)
		s.create(t, "/groups", `{"name":"Sales"}`)
		s.create(t, "/groups", `{"name":"Backend","parentGroupId":`+itoa(eng)+`}`)

		names := func(path string) []string {
			rec := s.do(t, http.MethodGet, path, "")
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			var groups []struct {
				Name string `json:"name"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &groups))
			out := []string{}
			for _, g := range groups {
				out = append(out, g.Name)
			}
			return out
		}

		require.Equal(t, []string{"Eng", "Sales"}, names("/groups?parent=root"))
		require.Equal(t, []string{"Backend"}, names("/groups?parent="+itoa(eng)))
		require.Equal(t, []string{"Eng", "Sales", "Backend"}, names("/groups"))

		require.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/groups?parent=999", "").Code)
		require.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/groups?parent=abc", "").Code)
		require.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/groups?parent=0", "").Code)
	})

	t.Run("duplicate name conflicts", func(t *testing.T) {
		s := newTestServer(t)

		s.create(t, "/groups", `{"name":"X"}`)
		rec := s.do(t, http.MethodPost, "/groups", `{"name":"X"}`)
		require.Equal(t, http.StatusConflict, rec.Code)
		require.Contains(t, message(t, rec), "unique")
	})

	t.Run("invalid bodies are bad requests", func(t *testing.T) {
		s := newTestServer(t)

		for _, body := range []string{`{`, `{"name":""}`, `{"name":"   "}`, `{"name":"A","parentGroupId":0}`, `[]`} {
			rec := s.do(t, http.MethodPost, "/groups", body)
			require.Equal(t, http.StatusBadRequest, rec.Code, body)
			require.NotEmpty(t, message(t, rec))
		}
	})

	t.Run("unknown ids are not found", func(t *testing.T) {
		s := newTestServer(t)

		for _, path := range []string{"/groups/42", "/groups/0", "/groups/abc", "/groups/99999999999999999999"} {
			rec := s.do(t, http.MethodGet, path, "")
			require.Equal(t, http.StatusNotFound, rec.Code, path)
		}

		rec := s.do(t, http.MethodDelete, "/groups/42", "")
		require.Equal(t, http.StatusNotFound, rec.Code)

		rec = s.do(t, http.MethodGet, "/groups/42/members", "")
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("update enforces hierarchy rules", func(t *testing.T) {
		s := newTestServer(t)

		root := s.create(t, "/groups", `{"name":"root"}`)
		mid := s.create(t, "/groups", `{"name":"mid","parentGroupId":`+itoa(root)+`}`)
		leaf := s.create(t, "/groups", `{"name":"leaf","parentGroupId":`+itoa(mid)+`}`)

		rec := s.do(t, http.MethodPut, "/groups/"+itoa(mid), `{"name":"mid","parentGroupId":`+itoa(leaf)+`}`)
		require.Equal(t, http.StatusConflict, rec.Code)
		require.Contains(t, message(t, rec), "descendant")

		rec = s.do(t, http.MethodPut, "/groups/"+itoa(leaf), `{"name":"leaf","parentGroupId":`+itoa(leaf)+`}`)
		require.Equal(t, http.StatusConflict, rec.Code)

		rec = s.do(t, http.MethodPut, "/groups/777", `{"name":"ghost"}`)
		require.Equal(t, http.StatusConflict, rec.Code)
		require.Contains(t, message(t, rec), "target group does not exist")

		rec = s.do(t, http.MethodPut, "/groups/"+itoa(leaf), `{"name":"leaf","parentGroupId":`+itoa(root)+`}`)
		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Empty(t, rec.Body.String())
	})

	t.Run("members include descendant groups and honour filters", func(t *testing.T) {
		s := newTestServer(t)

		eng := s.create(t, "/groups", `{"name":"Eng"}`)
		web := s.create(t, "/groups", `{"name":"Web","parentGroupId":`+itoa(eng)+`}`)
		s.create(t, "/people", `{"firstName":"Ann","lastName":"A","jobTitle":"Lead","groupId":`+itoa(eng)+`}`)
		s.create(t, "/people", `{"firstName":"Andy","lastName":"B","jobTitle":"Developer","groupId":`+itoa(web)+`}`)
		s.create(t, "/people", `{"firstName":"Bea","lastName":"C","jobTitle":"Developer","groupId":`+itoa(web)+`}`)

		count := func(query string) int {
			rec := s.do(t, http.MethodGet, "/groups/"+itoa(eng)+"/members"+query, "")
			require.Equal(t, http.StatusOK, rec.Code)
			var people []map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &people))
			return len(people)
		}

		require.Equal(t, 3, count(""))
		require.Equal(t, 2, count("?firstName=An%25"))
		require.Equal(t, 2, count("?jobTitle=Dev%25"))
		require.Equal(t, 1, count("?firstName=An%25&jobTitle=Dev%25"))
	})

	t.Run("delete all", func(t *testing.T) {
		s := newTestServer(t)

		s.create(t, "/groups", `{"name":"A"}`)
		rec := s.do(t, http.MethodDelete, "/groups", "")
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = s.do(t, http.MethodGet, "/groups", "")
		require.JSONEq(t, `[]`, rec.Body.String())
	})
}

func TestPeopleAPI(t *testing.T) {
	t.Run("list filtered by group", func(t *testing.T) {
		s := newTestServer(t)

		eng := s.create(t, "/groups", `{"name":"Eng"}`)
		backend := s.create(t, "/groups", `{"name":"Backend","parentGroupId":`+itoa(eng)+`}`)
		s.create(t, "/people", `{"firstName":"Ada","lastName":"L","jobTitle":"Lead","groupId":`+itoa(eng)+`}`)
		s.create(t, "/people", `{"firstName":"Bob","lastName":"B","jobTitle":"Dev","groupId":`+itoa(backend)+`}`)
		s.create(t, "/people", `{"firstName":"Cy","lastName":"C","jobTitle":"Ops"}`)

		firstNames := func(path string) []string {
			rec := s.do(t, http.MethodGet, path, "")
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			var people []struct {
				FirstName string `json:"firstName"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &people))
			out := []string{}
			for _, p := range people {
				out = append(out, p.FirstName)
			}
			return out
		}

		// direct members only, unlike /groups/{id}/members
		require.Equal(t, []string{"Ada"}, firstNames("/people?group="+itoa(eng)))
		require.Equal(t, []string{"Cy"}, firstNames("/people?group=none"))
		require.Equal(t, []string{"Ada", "Bob", "Cy"}, firstNames("/people"))

		require.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/people?group=999", "").Code)
		require.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/people?group=root", "").Code)
	})

	t.Run("crud", func(t *testing.T) {
		s := newTestServer(t)

		eng := s.create(t, "/groups", `{"name":"Eng"}`)
		id := s.create(t, "/people", `{"firstName":"Ada","lastName":"Lovelace","jobTitle":"Engineer","groupId":`+itoa(eng)+`}`)

		rec := s.do(t, http.MethodGet, "/people/"+itoa(id), "")
		require.Equal(t, http.StatusOK, rec.Code)

		var person map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &person))
		require.Equal(t, "Ada", person["firstName"])
		require.Equal(t, "Lovelace", person["lastName"])
		require.Equal(t, "Engineer", person["jobTitle"])
		require.EqualValues(t, eng, person["groupId"])

		rec = s.do(t, http.MethodPut, "/people/"+itoa(id), `{"firstName":"Ada","lastName":"Lovelace","jobTitle":"Analyst"}`)
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = s.do(t, http.MethodGet, "/people/"+itoa(id), "")
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &person))
		require.Equal(t, "Analyst", person["jobTitle"])
		require.Nil(t, person["groupId"])

		rec = s.do(t, http.MethodDelete, "/people/"+itoa(id), "")
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = s.do(t, http.MethodGet, "/people/"+itoa(id), "")
		require.Equal(t, http.StatusNotFound, rec.Code)

		rec = s.do(t, http.MethodDelete, "/people/"+itoa(id), "")
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("unknown group conflicts", func(t *testing.T) {
		s := newTestServer(t)

		rec := s.do(t, http.MethodPost, "/people", `{"firstName":"A","lastName":"B","jobTitle":"C","groupId":5}`)
		require.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("missing fields are bad requests", func(t *testing.T) {
		s := newTestServer(t)

		rec := s.do(t, http.MethodPost, "/people", `{"firstName":"A"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Contains(t, message(t, rec), "lastName")
		require.Contains(t, message(t, rec), "jobTitle")
	})

	t.Run("update of a missing person is not found", func(t *testing.T) {
		s := newTestServer(t)

		rec := s.do(t, http.MethodPut, "/people/3", `{"firstName":"A","lastName":"B","jobTitle":"C"}`)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("memberships walk up from the person's group", func(t *testing.T) {
		s := newTestServer(t)

		eng := s.create(t, "/groups", `{"name":"Eng"}`)
		web := s.create(t, "/groups", `{"name":"Web","parentGroupId":`+itoa(eng)+`}`)
		loner := s.create(t, "/people", `{"firstName":"Lo","lastName":"Ner","jobTitle":"CEO"}`)
		dev := s.create(t, "/people", `{"firstName":"De","lastName":"V","jobTitle":"Dev","groupId":`+itoa(web)+`}`)

		rec := s.do(t, http.MethodGet, "/people/"+itoa(dev)+"/memberships", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var branch []map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &branch))
		require.Len(t, branch, 2)
		require.Equal(t, "Web", branch[0]["name"])
		require.Equal(t, "Eng", branch[1]["name"])

		rec = s.do(t, http.MethodGet, "/people/"+itoa(loner)+"/memberships", "")
		require.Equal(t, http.StatusOK, rec.Code)
		require.JSONEq(t, `[]`, rec.Body.String())

		rec = s.do(t, http.MethodGet, "/people/999/memberships", "")
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestOrganizationAPI(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/organization", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{}`, rec.Body.String())

	eng := s.create(t, "/groups", `{"name":"Eng"}`)
	backend := s.create(t, "/groups", `{"name":"Backend","parentGroupId":`+itoa(eng)+`}`)
	s.create(t, "/people", `{"firstName":"A","lastName":"B","jobTitle":"Dev","groupId":`+itoa(backend)+`}`)

	rec = s.do(t, http.MethodGet, "/organization", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, `{"Eng":{"Backend":{"A B":"Dev"}}}`, strings.TrimSpace(rec.Body.String()))

	rec = s.do(t, http.MethodDelete, "/organization/cache", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	_, err := s.cache.Get(context.Background(), orgtree.OrganizationKey)
	require.ErrorIs(t, err, cache.ErrMiss)

	rec = s.do(t, http.MethodGet, "/organization", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, `{"Eng":{"Backend":{"A B":"Dev"}}}`, strings.TrimSpace(rec.Body.String()))
}

type brokenView struct{}

func (brokenView) Get(ctx context.Context) (*orgtree.Tree, error) {
	return nil, errors.New("redis: connection refused")
}

func (brokenView) Clear(ctx context.Context) error {
	return errors.New("redis: connection refused")
}

func TestUnhandledErrorsAreGeneric(t *testing.T) {
	groups, people := memory.NewStores()
	view := orgtree.NewView(groups, people, cache.NewMemory())
	h := NewHandler(
		service.NewGroupService(groups, people, view),
		service.NewPersonService(people, groups, view),
		brokenView{},
	)
	s := &testServer{handler: h.Router()}

	rec := s.do(t, http.MethodGet, "/organization", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "internal server error", message(t, rec))

	rec = s.do(t, http.MethodDelete, "/organization/cache", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/nope", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "not found", message(t, rec))
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
