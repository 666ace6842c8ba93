package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/wolfeidau/orgchart/internal/store"
)

const maxBodyBytes = 1 << 20

var errInvalidID = fmt.Errorf("invalid id: %w", store.ErrNotFound)

type errorResponse struct {
	Message string `json:"message"`
}

type createdResponse struct {
	ID int64 `json:"id"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Message: message})
}

// writeError maps the error taxonomy to a status. Unclassified errors are logged
// and answered with a generic body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case store.IsValidation(err):
		writeMessage(w, http.StatusConflict, err.Error())
	case store.IsNotFound(err):
		writeMessage(w, http.StatusNotFound, err.Error())
	default:
		zerolog.Ctx(r.Context()).Error().
			Err(err).
			Str("method", r.Method).
			Str("url", r.URL.String()).
			Msg("unhandled error")
		writeMessage(w, http.StatusInternalServerError, "internal server error")
	}
}

// pathID reads the id route variable. Ids that can't name a row are reported as not found.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}

// decode reads a JSON body into dst, applies normalize and validates the result.
// The returned message is suitable for a 400 response.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any, normalize func()) (string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return "invalid request body: " + err.Error(), false
	}
	normalize()

	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err.Error(), false
		}
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fmt.Sprintf("%s failed the %q rule", fe.Field(), fe.Tag()))
		}
		return strings.Join(msgs, "; "), false
	}

	return "", true
}

// optionalQuery returns nil for a missing or empty query parameter.
func optionalQuery(r *http.Request, name string) *string {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil
	}
	return &v
}

// scopeQuery reads a group id query parameter. The keyword selects the nil scope,
// for example the top level. filtered is false when the parameter is absent.
func scopeQuery(r *http.Request, name, keyword string) (id *int64, filtered bool, err error) {
	v := r.URL.Query().Get(name)
	switch v {
	case "":
		return nil, false, nil
	case keyword:
		return nil, true, nil
	}

	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return nil, false, fmt.Errorf("%s must be a group id or %q", name, keyword)
	}
	return &n, true, nil
}
