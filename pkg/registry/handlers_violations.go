package registry

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/trafficreg/trafficreg/pkg/permissions"
)

// listViolationsHandler returns at most PageSize violations, ID descending.
// Unprivileged callers see only violations they created or that sit on a
// vehicle they own.
func listViolationsHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := mustUser(r)

		q := queryDecoder{r: r}
		minID, maxID := q.window()
		filter := ViolationFilter{
			ID:               q.int64("violation_id"),
			CreatorID:        q.int64("creator_id"),
			Category:         q.category("violation_category"),
			FineVND:          q.int64("violation_fine_vnd"),
			VideoURL:         q.str("violation_video_url"),
			RefutationsCount: q.int64("violation_refutations_count"),
			VehiclePlate:     q.str("vehicle_plate"),
			UserID:           q.int64("user_id"),
			MinID:            minID,
			MaxID:            maxID,
			RelatedTo:        listScope(caller),
		}
		if q.err != nil {
			writeError(w, http.StatusUnprocessableEntity, q.err.Error())
			return
		}

		violations, err := store.QueryViolations(r.Context(), filter)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, violations)
	}
}

// createViolationHandler logs a violation. Requires the create_violation
// capability; 409 when the plate is unknown.
func createViolationHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := mustUser(r)
		if !caller.Permissions.Allows(permissions.CreateViolation) {
			writeError(w, http.StatusForbidden, "Missing CREATE_VIOLATION permission")
			return
		}

		category, err := queryCategory(r, "violation_category")
		if err != nil || category == nil {
			writeError(w, http.StatusUnprocessableEntity, "violation_category must be 0, 1 or 2.")
			return
		}
		plate := r.URL.Query().Get("vehicle_plate")
		if plate == "" || len(plate) > PlateMaxLength {
			writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("vehicle_plate is required and at most %d characters.", PlateMaxLength))
			return
		}
		fineVND, err := queryInt64(r, "violation_fine_vnd")
		if err != nil || fineVND == nil {
			writeError(w, http.StatusUnprocessableEntity, "violation_fine_vnd is required.")
			return
		}
		videoURL := r.URL.Query().Get("violation_video_url")
		if videoURL == "" || len(videoURL) > VideoURLMaxLength {
			writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("violation_video_url is required and at most %d characters.", VideoURLMaxLength))
			return
		}

		id, err := store.CreateViolation(r.Context(), caller.ID, *category, plate, *fineVND, videoURL)
		if err != nil {
			writeStoreError(w, err)
			return
		}

		store.AppendAudit(r.Context(), caller.ID, "violation.create", fmt.Sprintf("violation:%d", id))
		writeJSON(w, http.StatusOK, id)
	}
}

// violationsByPlateHandler is the public lookup by plate; no token needed.
func violationsByPlateHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		plate := chi.URLParam(r, "plate")

		violations, err := store.QueryViolations(r.Context(), ViolationFilter{VehiclePlate: &plate})
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, violations)
	}
}

// deleteViolationHandler removes a violation; administrators only.
func deleteViolationHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := mustUser(r)
		if !caller.Permissions.Administrator() {
			writeError(w, http.StatusForbidden, "Missing ADMINISTRATOR permission")
			return
		}

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "Invalid violation ID.")
			return
		}

		if err := store.DeleteViolation(r.Context(), id); err != nil {
			writeStoreError(w, err)
			return
		}

		store.AppendAudit(r.Context(), caller.ID, "violation.delete", fmt.Sprintf("violation:%d", id))
		w.WriteHeader(http.StatusNoContent)
	}
}
