package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/trafficreg/trafficreg/pkg/snowflake"
)

// errorResponse is the body of every rejected request.
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeStoreError maps a classified store error to its HTTP status. The
// sentinel prefix is stripped so the body names only the precondition.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrConflict):
		writeError(w, http.StatusConflict, detailOf(err, ErrConflict))
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, detailOf(err, ErrNotFound))
	case errors.Is(err, ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "Invalid authentication credentials.")
	default:
		writeError(w, http.StatusInternalServerError, "Internal server error.")
	}
}

func detailOf(err, sentinel error) string {
	msg := err.Error()
	prefix := sentinel.Error() + ": "
	if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
		return msg[len(prefix):]
	}
	return msg
}

// errUnprocessable marks a malformed filter or payload value; carries the
// offending parameter name.
type errUnprocessable struct{ param string }

func (e errUnprocessable) Error() string {
	return fmt.Sprintf("Invalid value for parameter %q.", e.param)
}

// Query-parameter decoding. Absent parameters decode to nil so they feed
// straight into the filter structs.

func queryInt64(r *http.Request, name string) (*int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, errUnprocessable{name}
	}
	return &v, nil
}

func queryCategory(r *http.Request, name string) (*int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || !ValidCategory(v) {
		return nil, errUnprocessable{name}
	}
	return &v, nil
}

func queryString(r *http.Request, name string) *string {
	if !r.URL.Query().Has(name) {
		return nil
	}
	v := r.URL.Query().Get(name)
	return &v
}

func queryTime(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, errUnprocessable{name}
	}
	return &v, nil
}

// idWindow intersects an explicit ID window with one derived from a
// creation-time window, so callers can combine both filter styles without
// one silently discarding the other.
func idWindow(r *http.Request, minID, maxID *int64) (*int64, *int64, error) {
	minAt, err := queryTime(r, "min_created_at")
	if err != nil {
		return nil, nil, err
	}
	maxAt, err := queryTime(r, "max_created_at")
	if err != nil {
		return nil, nil, err
	}
	if minAt == nil && maxAt == nil {
		return minID, maxID, nil
	}

	derivedMin, derivedMax := snowflake.Range(minAt, maxAt)
	if minID == nil || *minID < derivedMin {
		minID = &derivedMin
	}
	if maxID == nil || *maxID > derivedMax {
		maxID = &derivedMax
	}
	return minID, maxID, nil
}

// queryDecoder accumulates the first decoding error across a handler's
// optional parameters so list handlers don't repeat an error branch per
// filter.
type queryDecoder struct {
	r   *http.Request
	err error
}

func (d *queryDecoder) int64(name string) *int64 {
	if d.err != nil {
		return nil
	}
	v, err := queryInt64(d.r, name)
	if err != nil {
		d.err = err
	}
	return v
}

func (d *queryDecoder) category(name string) *int {
	if d.err != nil {
		return nil
	}
	v, err := queryCategory(d.r, name)
	if err != nil {
		d.err = err
	}
	return v
}

func (d *queryDecoder) str(name string) *string {
	return queryString(d.r, name)
}

// window decodes min_id/max_id and intersects them with the optional
// creation-time window.
func (d *queryDecoder) window() (*int64, *int64) {
	minID := d.int64("min_id")
	maxID := d.int64("max_id")
	if d.err != nil {
		return nil, nil
	}
	minID, maxID, err := idWindow(d.r, minID, maxID)
	if err != nil {
		d.err = err
	}
	return minID, maxID
}

// mustUser returns the caller placed in the context by the auth
// middleware. Routes calling it are always mounted behind the middleware.
func mustUser(r *http.Request) *User {
	u, ok := UserFromContext(r.Context())
	if !ok {
		panic("registry: handler reached without authenticated user")
	}
	return u
}
