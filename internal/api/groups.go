package api

import (
	"net/http"
	"strings"

	"github.com/wolfeidau/orgchart/internal/models"
	"github.com/wolfeidau/orgchart/internal/store"
)

// ListGroups lists every group. With ?parent=<id> it lists the children of that
// group and with ?parent=root the top level groups.
func (h *Handler) ListGroups(w http.ResponseWriter, r *http.Request) {
	parentID, filtered, err := scopeQuery(r, "parent", "root")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	var groups []*models.Group
	if filtered {
		groups, err = h.groups.Children(r.Context(), parentID)
	} else {
		groups, err = h.groups.List(r.Context())
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

func (h *Handler) GetGroup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	group, err := h.groups.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

// GroupMembers lists the people in a group and its descendants. The optional
// firstName and jobTitle query parameters are SQL LIKE patterns.
func (h *Handler) GroupMembers(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	filter := store.MemberFilter{
		FirstName: optionalQuery(r, "firstName"),
		JobTitle:  optionalQuery(r, "jobTitle"),
	}

	people, err := h.groups.Members(r.Context(), id, filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, people)
}

func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var body models.GroupModel
	if msg, ok := h.decodeGroup(w, r, &body); !ok {
		writeMessage(w, http.StatusBadRequest, msg)
		return
	}

	id, err := h.groups.Create(r.Context(), &body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, createdResponse{ID: id})
}

func (h *Handler) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var body models.GroupModel
	if msg, ok := h.decodeGroup(w, r, &body); !ok {
		writeMessage(w, http.StatusBadRequest, msg)
		return
	}

	if err := h.groups.Update(r.Context(), id, &body); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.groups.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteGroups(w http.ResponseWriter, r *http.Request) {
	if err := h.groups.DeleteAll(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decodeGroup(w http.ResponseWriter, r *http.Request, body *models.GroupModel) (string, bool) {
	return h.decode(w, r, body, func() {
		body.Name = strings.TrimSpace(body.Name)
	})
}
