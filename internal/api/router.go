// Package api exposes people, groups and the organization view as a JSON HTTP API.
package api

import (
	"context"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/wolfeidau/orgchart/internal/orgtree"
	"github.com/wolfeidau/orgchart/internal/service"
)

// OrganizationView is the cached organization tree.
type OrganizationView interface {
	Get(ctx context.Context) (*orgtree.Tree, error)
	Clear(ctx context.Context) error
}

// Handler serves the HTTP API.
type Handler struct {
	groups   *service.GroupService
	people   *service.PersonService
	view     OrganizationView
	validate *validator.Validate
}

// NewHandler creates a handler over the domain services.
func NewHandler(groups *service.GroupService, people *service.PersonService, view OrganizationView) *Handler {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(jsonFieldName)

	return &Handler{
		groups:   groups,
		people:   people,
		view:     view,
		validate: validate,
	}
}

// Router returns the routes of the API.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	people := r.PathPrefix("/people").Subrouter()
	people.HandleFunc("", h.ListPeople).Methods(http.MethodGet)
	people.HandleFunc("", h.CreatePerson).Methods(http.MethodPost)
	people.HandleFunc("", h.DeletePeople).Methods(http.MethodDelete)
	people.HandleFunc("/{id:[0-9]+}", h.GetPerson).Methods(http.MethodGet)
	people.HandleFunc("/{id:[0-9]+}", h.UpdatePerson).Methods(http.MethodPut)
	people.HandleFunc("/{id:[0-9]+}", h.DeletePerson).Methods(http.MethodDelete)
	people.HandleFunc("/{id:[0-9]+}/memberships", h.PersonMemberships).Methods(http.MethodGet)

	groups := r.PathPrefix("/groups").Subrouter()
	groups.HandleFunc("", h.ListGroups).Methods(http.MethodGet)
	groups.HandleFunc("", h.CreateGroup).Methods(http.MethodPost)
	groups.HandleFunc("", h.DeleteGroups).Methods(http.MethodDelete)
	groups.HandleFunc("/{id:[0-9]+}", h.GetGroup).Methods(http.MethodGet)
	groups.HandleFunc("/{id:[0-9]+}", h.UpdateGroup).Methods(http.MethodPut)
	groups.HandleFunc("/{id:[0-9]+}", h.DeleteGroup).Methods(http.MethodDelete)
	groups.HandleFunc("/{id:[0-9]+}/members", h.GroupMembers).Methods(http.MethodGet)

	r.HandleFunc("/organization", h.GetOrganization).Methods(http.MethodGet)
	r.HandleFunc("/organization/cache", h.ClearOrganizationCache).Methods(http.MethodDelete)

	return r
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonFieldName reports validation failures using the JSON field names clients send.
func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}
