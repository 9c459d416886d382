package handlers

import (
	"net/http"

	"authrelay/internal/apperr"
	"authrelay/internal/auth"
	"authrelay/internal/repository"
	"authrelay/internal/services"
)

func ListApiKeys(svc *services.ApiKeyService, d Deps) http.HandlerFunc {
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

type apiKeyCreateReq struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}

func CreateApiKey(svc *services.ApiKeyService, d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req apiKeyCreateReq
		if err := decodeBody(r, &req); err != nil {
			writeError(w, d.Log, err)
			return
		}
		if req.UserID == "" || req.Name == "" {
			writeError(w, d.Log, apperr.Validation("user_id and name are required"))
			return
		}
		key, err := svc.Add(r.Context(), auth.FromContext(r.Context()).Username, req.UserID, req.Name)
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		respondJSON(w, http.StatusCreated, key)
	}
}

func GetApiKey(svc *services.ApiKeyService, d Deps) http.HandlerFunc {
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

type apiKeyUpdateReq struct {
	Name     *string `json:"name"`
	IsActive *bool   `json:"is_active"`
}

func UpdateApiKey(svc *services.ApiKeyService, d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		var req apiKeyUpdateReq
		if err := decodeBody(r, &req); err != nil {
			writeError(w, d.Log, err)
			return
		}
		changes := map[string]any{}
		if req.Name != nil {
			changes["name"] = *req.Name
		}
		if req.IsActive != nil {
			changes["is_active"] = *req.IsActive
		}
		key, err := svc.Update(r.Context(), id, changes)
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		respondJSON(w, http.StatusOK, key)
	}
}

func DeleteApiKey(svc *services.ApiKeyService, d Deps) http.HandlerFunc {
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
