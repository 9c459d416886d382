package handlers

import (
	"io"
	"net/http"

	"authrelay/internal/apperr"
	"authrelay/internal/auth"
	"authrelay/internal/repository"
	"authrelay/internal/services"
)

const maxUploadBytes = 10 << 20

func ListActions(svc *services.ActionService, d Deps) http.HandlerFunc {
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

func CreateAction(svc *services.ActionService, d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req services.ActionInput
		if err := decodeBody(r, &req); err != nil {
			writeError(w, d.Log, err)
			return
		}
		if req.Name == "" || req.URL == "" {
			writeError(w, d.Log, apperr.Validation("name and url are required"))
			return
		}
		action, err := svc.Add(r.Context(), auth.FromContext(r.Context()).ID, req)
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		respondJSON(w, http.StatusCreated, action)
	}
}

func GetAction(svc *services.ActionService, d Deps) http.HandlerFunc {
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

// UploadActionFile stores a mapping file on the action. The multipart part
// must be named "file" and carry a YAML or JMESPath content type.
func UploadActionFile(svc *services.ActionService, d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			writeError(w, d.Log, apperr.Validation("Invalid multipart request"))
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, d.Log, apperr.Validation("file is required"))
			return
		}
		defer file.Close()
		content, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
		if err != nil {
			writeError(w, d.Log, apperr.BadRequest("could not read uploaded file"))
			return
		}
		action, err := svc.UploadFile(r.Context(), id, header.Header.Get("Content-Type"), content)
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		respondJSON(w, http.StatusOK, action)
	}
}

type actionUpdateReq struct {
	Name        *string `json:"name"`
	URL         *string `json:"url"`
	PathURL     *string `json:"path_url"`
	BodyVersion *string `json:"body_version"`
	Schedule    *string `json:"schedule"`
	FileMapping *string `json:"file_mapping"`
}

func (req actionUpdateReq) changes() map[string]any {
	changes := map[string]any{}
	if req.Name != nil {
		changes["name"] = *req.Name
	}
	if req.URL != nil {
		changes["url"] = *req.URL
	}
	if req.PathURL != nil {
		changes["path_url"] = *req.PathURL
	}
	if req.BodyVersion != nil {
		changes["body_version"] = *req.BodyVersion
	}
	if req.Schedule != nil {
		changes["schedule"] = *req.Schedule
	}
	if req.FileMapping != nil {
		changes["file_mapping"] = *req.FileMapping
	}
	return changes
}

func UpdateAction(svc *services.ActionService, d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		var req actionUpdateReq
		if err := decodeBody(r, &req); err != nil {
			writeError(w, d.Log, err)
			return
		}
		action, err := svc.Update(r.Context(), id, req.changes())
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		respondJSON(w, http.StatusOK, action)
	}
}

func DeleteAction(svc *services.ActionService, d Deps) http.HandlerFunc {
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
