package registry

import (
	"fmt"
	"net/http"
)

// listTransactionsHandler returns at most PageSize transactions, ID
// descending. Unprivileged callers see only settlements they paid, on
// violations they created, or on vehicles they own.
func listTransactionsHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := mustUser(r)

		q := queryDecoder{r: r}
		minID, maxID := q.window()
		filter := TransactionFilter{
			ID:           q.int64("transaction_id"),
			ViolationID:  q.int64("violation_id"),
			VehiclePlate: q.str("vehicle_plate"),
			UserID:       q.int64("user_id"),
			PayerID:      q.int64("payer_id"),
			MinID:        minID,
			MaxID:        maxID,
			RelatedTo:    listScope(caller),
		}
		if q.err != nil {
			writeError(w, http.StatusUnprocessableEntity, q.err.Error())
			return
		}

		transactions, err := store.QueryTransactions(r.Context(), filter)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, transactions)
	}
}

// createTransactionHandler settles a violation, with the caller as payer.
// Any authenticated user may pay any fine; a violation settles once.
func createTransactionHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := mustUser(r)

		violationID, err := queryInt64(r, "violation_id")
		if err != nil || violationID == nil {
			writeError(w, http.StatusUnprocessableEntity, "violation_id is required.")
			return
		}

		id, err := store.CreateTransaction(r.Context(), *violationID, caller.ID)
		if err != nil {
			writeStoreError(w, err)
			return
		}

		store.AppendAudit(r.Context(), caller.ID, "transaction.create", fmt.Sprintf("transaction:%d", id))
		writeJSON(w, http.StatusOK, id)
	}
}
