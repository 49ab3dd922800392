package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// listUsersHandler returns at most PageSize users. Unprivileged callers
// only ever see their own row.
func listUsersHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := mustUser(r)

		q := queryDecoder{r: r}
		minID, maxID := q.window()
		filter := UserFilter{
			ID:       q.int64("user_id"),
			Fullname: q.str("user_fullname"),
			Phone:    q.str("user_phone"),
			MinID:    minID,
			MaxID:    maxID,
		}
		if q.err != nil {
			writeError(w, http.StatusUnprocessableEntity, q.err.Error())
			return
		}

		filter, allowed := scopeUserFilter(caller, filter)
		if !allowed {
			writeJSON(w, http.StatusOK, []User{})
			return
		}

		users, err := store.QueryUsers(r.Context(), filter)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, users)
	}
}

// userCreationPayload is the body of POST /users.
type userCreationPayload struct {
	Fullname string `json:"fullname"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// createUserHandler registers a user. Anonymous: registration is open.
func createUserHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload userCreationPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
			return
		}
		if payload.Fullname == "" || payload.Phone == "" || payload.Password == "" {
			writeError(w, http.StatusUnprocessableEntity, "fullname, phone and password are required.")
			return
		}

		id, err := store.CreateUser(r.Context(), payload.Fullname, payload.Phone, payload.Password)
		if err != nil {
			writeStoreError(w, err)
			return
		}

		store.AppendAudit(r.Context(), id, "user.create", fmt.Sprintf("user:%d", id))
		writeJSON(w, http.StatusOK, id)
	}
}

// loginPayload is the body of POST /users/login.
type loginPayload struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// loginResponse carries the issued bearer token.
type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// loginHandler exchanges phone+password for a bearer token. The 401
// response never distinguishes an unknown phone from a wrong password.
func loginHandler(auth *Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload loginPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
			return
		}

		token, err := auth.Login(r.Context(), payload.Phone, payload.Password)
		if err != nil {
			if errors.Is(err, ErrUnauthorized) {
				writeError(w, http.StatusUnauthorized, "Invalid authentication credentials.")
				return
			}
			writeStoreError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, loginResponse{AccessToken: token, TokenType: "bearer"})
	}
}

// currentUserHandler echoes the resolved caller.
func currentUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, mustUser(r))
	}
}
