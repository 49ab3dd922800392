package registry

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/trafficreg/trafficreg/pkg/permissions"
)

// The whole detected-candidate surface is gated by manage_detected; the
// gate lives in the router so every handler here can assume it.

func requireManageDetected(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !mustUser(r).Permissions.Allows(permissions.ManageDetected) {
			writeError(w, http.StatusForbidden, "Missing MANAGE_DETECTED permission")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// listDetectedHandler returns at most PageSize detected candidates, ID
// descending.
func listDetectedHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := queryDecoder{r: r}
		minID, maxID := q.window()
		filter := DetectedFilter{
			ID:           q.int64("detected_id"),
			Category:     q.category("detected_category"),
			VideoURL:     q.str("detected_video_url"),
			VehiclePlate: q.str("vehicle_plate"),
			UserID:       q.int64("user_id"),
			MinID:        minID,
			MaxID:        maxID,
		}
		if q.err != nil {
			writeError(w, http.StatusUnprocessableEntity, q.err.Error())
			return
		}

		detected, err := store.QueryDetected(r.Context(), filter)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, detected)
	}
}

// createDetectedHandler records a camera-flagged candidate.
func createDetectedHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := mustUser(r)

		category, err := queryCategory(r, "detected_category")
		if err != nil || category == nil {
			writeError(w, http.StatusUnprocessableEntity, "detected_category must be 0, 1 or 2.")
			return
		}
		plate := r.URL.Query().Get("vehicle_plate")
		if plate == "" || len(plate) > PlateMaxLength {
			writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("vehicle_plate is required and at most %d characters.", PlateMaxLength))
			return
		}
		videoURL := r.URL.Query().Get("detected_video_url")

		id, err := store.CreateDetected(r.Context(), *category, plate, videoURL)
		if err != nil {
			writeStoreError(w, err)
			return
		}

		store.AppendAudit(r.Context(), caller.ID, "detected.create", fmt.Sprintf("detected:%d", id))
		writeJSON(w, http.StatusOK, id)
	}
}

// deleteDetectedHandler removes a candidate once it has been triaged into a
// real violation or dismissed.
func deleteDetectedHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := mustUser(r)

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "Invalid detected violation ID.")
			return
		}

		if err := store.DeleteDetected(r.Context(), id); err != nil {
			writeStoreError(w, err)
			return
		}

		store.AppendAudit(r.Context(), caller.ID, "detected.delete", fmt.Sprintf("detected:%d", id))
		w.WriteHeader(http.StatusNoContent)
	}
}
