package api

import "net/http"

func (h *Handler) GetOrganization(w http.ResponseWriter, r *http.Request) {
	tree, err := h.view.Get(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tree)
}

func (h *Handler) ClearOrganizationCache(w http.ResponseWriter, r *http.Request) {
	if err := h.view.Clear(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
