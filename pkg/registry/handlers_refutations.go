package registry

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/trafficreg/trafficreg/pkg/permissions"
)

// listRefutationsHandler returns at most PageSize refutations, ID
// descending. Unprivileged callers see only refutations they authored, on
// violations they created, or on vehicles they own.
func listRefutationsHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := mustUser(r)

		q := queryDecoder{r: r}
		minID, maxID := q.window()
		filter := RefutationFilter{
			ID:           q.int64("refutation_id"),
			Message:      q.str("refutation_message"),
			Response:     q.str("refutation_response"),
			AuthorID:     q.int64("author_id"),
			ViolationID:  q.int64("violation_id"),
			VehiclePlate: q.str("vehicle_plate"),
			UserID:       q.int64("user_id"),
			MinID:        minID,
			MaxID:        maxID,
			RelatedTo:    listScope(caller),
		}
		if q.err != nil {
			writeError(w, http.StatusUnprocessableEntity, q.err.Error())
			return
		}

		refutations, err := store.QueryRefutations(r.Context(), filter)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, refutations)
	}
}

// refutationPayload is the body of POST /refutations.
type refutationPayload struct {
	ViolationID int64  `json:"violation_id"`
	Message     string `json:"message"`
}

// createRefutationHandler contests a violation. A caller holding the
// create_refutation capability may contest any violation; anyone else may
// only contest violations on vehicles they own.
func createRefutationHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := mustUser(r)

		var payload refutationPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
			return
		}
		if payload.ViolationID == 0 || payload.Message == "" {
			writeError(w, http.StatusUnprocessableEntity, "violation_id and message are required.")
			return
		}
		if len(payload.Message) > MessageMaxLength {
			writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("message is at most %d characters.", MessageMaxLength))
			return
		}

		if !caller.Permissions.Allows(permissions.CreateRefutation) {
			violations, err := store.QueryViolations(r.Context(), ViolationFilter{ID: &payload.ViolationID})
			if err != nil {
				writeStoreError(w, err)
				return
			}
			if len(violations) != 1 {
				writeError(w, http.StatusConflict, fmt.Sprintf("Violation %d does not exist.", payload.ViolationID))
				return
			}
			if violations[0].Vehicle.User.ID != caller.ID {
				writeError(w, http.StatusForbidden, "Missing CREATE_REFUTATION permission")
				return
			}
		}

		id, err := store.CreateRefutation(r.Context(), payload.ViolationID, caller.ID, payload.Message)
		if err != nil {
			writeStoreError(w, err)
			return
		}

		store.AppendAudit(r.Context(), caller.ID, "refutation.create", fmt.Sprintf("refutation:%d", id))
		writeJSON(w, http.StatusOK, id)
	}
}

// respondPayload is the body of POST /refutations/response.
type respondPayload struct {
	RefutationID int64  `json:"refutation_id"`
	Response     string `json:"response"`
}

// respondRefutationHandler records the one-time administrative response.
// Requires the respond_refutation capability.
func respondRefutationHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := mustUser(r)
		if !caller.Permissions.Allows(permissions.RespondRefutation) {
			writeError(w, http.StatusForbidden, "Missing RESPOND_REFUTATION permission")
			return
		}

		var payload respondPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
			return
		}
		if payload.RefutationID == 0 || payload.Response == "" {
			writeError(w, http.StatusUnprocessableEntity, "refutation_id and response are required.")
			return
		}
		if len(payload.Response) > MessageMaxLength {
			writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("response is at most %d characters.", MessageMaxLength))
			return
		}

		if err := store.RespondToRefutation(r.Context(), payload.RefutationID, payload.Response); err != nil {
			writeStoreError(w, err)
			return
		}

		store.AppendAudit(r.Context(), caller.ID, "refutation.respond", fmt.Sprintf("refutation:%d", payload.RefutationID))
		w.WriteHeader(http.StatusNoContent)
	}
}

// deleteRefutationHandler removes a refutation; administrators only.
func deleteRefutationHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := mustUser(r)
		if !caller.Permissions.Administrator() {
			writeError(w, http.StatusForbidden, "Missing ADMINISTRATOR permission")
			return
		}

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "Invalid refutation ID.")
			return
		}

		if err := store.DeleteRefutation(r.Context(), id); err != nil {
			writeStoreError(w, err)
			return
		}

		store.AppendAudit(r.Context(), caller.ID, "refutation.delete", fmt.Sprintf("refutation:%d", id))
		w.WriteHeader(http.StatusNoContent)
	}
}
