package api

import (
	"net/http"
	"strings"

	"github.com/wolfeidau/orgchart/internal/models"
)

// ListPeople lists every person. With ?group=<id> it lists the direct members of
// that group and with ?group=none the ungrouped people.
func (h *Handler) ListPeople(w http.ResponseWriter, r *http.Request) {
	groupID, filtered, err := scopeQuery(r, "group", "none")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	var people []*models.Person
	if filtered {
		people, err = h.people.InGroup(r.Context(), groupID)
	} else {
		people, err = h.people.List(r.Context())
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, people)
}

func (h *Handler) GetPerson(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	person, err := h.people.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, person)
}

func (h *Handler) PersonMemberships(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	branch, err := h.people.Memberships(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, branch)
}

func (h *Handler) CreatePerson(w http.ResponseWriter, r *http.Request) {
	var body models.PersonModel
	if msg, ok := h.decodePerson(w, r, &body); !ok {
		writeMessage(w, http.StatusBadRequest, msg)
		return
	}

	id, err := h.people.Create(r.Context(), &body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, createdResponse{ID: id})
}

func (h *Handler) UpdatePerson(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var body models.PersonModel
	if msg, ok := h.decodePerson(w, r, &body); !ok {
		writeMessage(w, http.StatusBadRequest, msg)
		return
	}

	if err := h.people.Update(r.Context(), id, &body); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeletePerson(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.people.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeletePeople(w http.ResponseWriter, r *http.Request) {
	if err := h.people.DeleteAll(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decodePerson(w http.ResponseWriter, r *http.Request, body *models.PersonModel) (string, bool) {
	return h.decode(w, r, body, func() {
		body.FirstName = strings.TrimSpace(body.FirstName)
		body.LastName = strings.TrimSpace(body.LastName)
		body.JobTitle = strings.TrimSpace(body.JobTitle)
	})
}
