package registry

import (
	"fmt"
	"net/http"

	"github.com/trafficreg/trafficreg/pkg/permissions"
)

// listVehiclesHandler returns at most PageSize vehicles, plate ascending.
// Unprivileged callers are scoped to vehicles they own.
func listVehiclesHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := mustUser(r)

		q := queryDecoder{r: r}
		filter := VehicleFilter{
			Plate:           q.str("vehicle_plate"),
			ViolationsCount: q.int64("vehicle_violations_count"),
			UserID:          q.int64("user_id"),
			MinPlate:        q.str("min_plate"),
			MaxPlate:        q.str("max_plate"),
			RelatedTo:       listScope(caller),
		}
		if q.err != nil {
			writeError(w, http.StatusUnprocessableEntity, q.err.Error())
			return
		}

		vehicles, err := store.QueryVehicles(r.Context(), filter)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, vehicles)
	}
}

// registerVehicleHandler registers a plate. Registering for another user
// requires the create_vehicle capability; registering for oneself is always
// allowed.
func registerVehicleHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := mustUser(r)

		plate := r.URL.Query().Get("vehicle_plate")
		if plate == "" || len(plate) > PlateMaxLength {
			writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("vehicle_plate is required and at most %d characters.", PlateMaxLength))
			return
		}
		ownerID, err := queryInt64(r, "user_id")
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		target := caller.ID
		if ownerID != nil {
			target = *ownerID
		}
		if target != caller.ID && !caller.Permissions.Allows(permissions.CreateVehicle) {
			writeError(w, http.StatusForbidden, "Missing CREATE_VEHICLE permission")
			return
		}

		if err := store.CreateVehicle(r.Context(), plate, target); err != nil {
			writeStoreError(w, err)
			return
		}

		store.AppendAudit(r.Context(), caller.ID, "vehicle.register", "vehicle:"+plate)
		writeJSON(w, http.StatusOK, plate)
	}
}
