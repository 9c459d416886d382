package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"authrelay/internal/apperr"
	"authrelay/internal/auth"
	"authrelay/internal/repository"
	"authrelay/internal/services"
)

func ListWebHooks(svc *services.WebHookService, d Deps) http.HandlerFunc {
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

type webhookCreateReq struct {
	ActionID string `json:"action_id"`
	Name     string `json:"name"`
}

func CreateWebHook(svc *services.WebHookService, d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req webhookCreateReq
		if err := decodeBody(r, &req); err != nil {
			writeError(w, d.Log, err)
			return
		}
		if req.ActionID == "" || req.Name == "" {
			writeError(w, d.Log, apperr.Validation("action_id and name are required"))
			return
		}
		webhook, err := svc.Add(r.Context(), auth.FromContext(r.Context()).ID, req.ActionID, req.Name)
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		respondJSON(w, http.StatusCreated, webhook)
	}
}

func GetWebHook(svc *services.WebHookService, d Deps) http.HandlerFunc {
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

type webhookUpdateReq struct {
	Name     *string `json:"name"`
	IsActive *bool   `json:"is_active"`
}

func UpdateWebHook(svc *services.WebHookService, d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		var req webhookUpdateReq
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
		webhook, err := svc.Update(r.Context(), id, changes)
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		respondJSON(w, http.StatusOK, webhook)
	}
}

func DeleteWebHook(svc *services.WebHookService, d Deps) http.HandlerFunc {
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

// TriggerWebHook authenticates the x-api-key header, authorizes the key
// against the webhook's action owner and enqueues the dispatch task,
// replying 202 before anything executes.
func TriggerWebHook(webhooks *services.WebHookService, keys *services.ApiKeyService, d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		values := r.Header.Values("x-api-key")
		if len(values) == 0 {
			writeError(w, d.Log, apperr.Validation("x-api-key header is required"))
			return
		}
		if values[0] == "" {
			writeError(w, d.Log, apperr.Forbidden("API key is required."))
			return
		}
		key, err := keys.GetByToken(r.Context(), values[0])
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				writeError(w, d.Log, apperr.Unauthorized("Invalid or inactive API key."))
				return
			}
			writeError(w, d.Log, err)
			return
		}
		if !key.IsActive {
			writeError(w, d.Log, apperr.Unauthorized("Invalid or inactive API key."))
			return
		}

		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		taskID, err := webhooks.Trigger(r.Context(), id, key)
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		respondJSON(w, http.StatusAccepted, map[string]string{"task_id": taskID})
	}
}

// WebHookStatus proxies the task queue backend's state for a dispatched task.
func WebHookStatus(svc *services.WebHookService, d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		taskID := chi.URLParam(r, "task_id")
		status, err := svc.TaskStatus(r.Context(), taskID)
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		respondJSON(w, http.StatusOK, status)
	}
}
