package handlers

import (
	"net/http"
	"strings"

	"authrelay/internal/apperr"
	"authrelay/internal/repository"
	"authrelay/internal/services"
)

func ListUsers(svc *services.UserService, d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := repository.ParseFindQuery(r.URL.Query(), d.findDefaults())
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		result, err := svc.List(r.Context(), q)
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		respondJSON(w, http.StatusOK, result)
	}
}

func CreateUser(svc *services.UserService, d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req signUpReq
		if err := decodeBody(r, &req); err != nil {
			writeError(w, d.Log, err)
			return
		}
		req.Email = strings.TrimSpace(strings.ToLower(req.Email))
		if req.Email == "" || req.Username == "" || req.Password == "" {
			writeError(w, d.Log, apperr.Validation("email, username and password are required"))
			return
		}
		user, err := svc.Add(r.Context(), req.Email, req.Username, req.Password)
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		respondJSON(w, http.StatusCreated, user)
	}
}

func GetUser(svc *services.UserService, d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		cachedJSON(w, r, d, svc.CacheKey(id), func() (interface{}, error) {
			return svc.GetByID(r.Context(), id)
		})
	}
}

type userUpdateReq struct {
	Email    *string `json:"email"`
	Username *string `json:"username"`
	IsActive *bool   `json:"is_active"`
}

func (req userUpdateReq) changes() map[string]any {
	changes := map[string]any{}
	if req.Email != nil {
		changes["email"] = *req.Email
	}
	if req.Username != nil {
		changes["username"] = *req.Username
	}
	if req.IsActive != nil {
		changes["is_active"] = *req.IsActive
	}
	return changes
}

func UpdateUser(svc *services.UserService, d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		var req userUpdateReq
		if err := decodeBody(r, &req); err != nil {
			writeError(w, d.Log, err)
			return
		}
		user, err := svc.Update(r.Context(), id, req.changes())
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		respondJSON(w, http.StatusOK, user)
	}
}

// SetUserActive backs both the enable_user and disable patch endpoints.
func SetUserActive(svc *services.UserService, d Deps, active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		if err := svc.SetActive(r.Context(), id, active); err != nil {
			writeError(w, d.Log, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func DeleteUser(svc *services.UserService, d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			writeError(w, d.Log, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
