package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"authrelay/internal/apperr"
	"authrelay/internal/cache"
	"authrelay/internal/config"
	"authrelay/internal/repository"
)

// Deps bundles what every handler constructor needs besides its service.
type Deps struct {
	Cfg   config.Config
	Cache *cache.Cache
	Log   *zap.SugaredLogger
}

func (d Deps) findDefaults() repository.Defaults {
	return repository.Defaults{
		Page:     d.Cfg.Page,
		PageSize: d.Cfg.PageSize,
		Ordering: d.Cfg.Ordering,
	}
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, lg *zap.SugaredLogger, err error) {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		respondJSON(w, ae.Status, map[string]string{"detail": ae.Detail})
		return
	}
	lg.Errorw("unhandled error", "error", err)
	respondJSON(w, http.StatusInternalServerError, map[string]string{"detail": "Internal server error"})
}

func decodeBody(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Validation(fmt.Sprintf("Invalid request body: %s", err))
	}
	return nil
}

func pathID(r *http.Request, name string) (string, error) {
	raw := chi.URLParam(r, name)
	if _, err := uuid.Parse(raw); err != nil {
		return "", apperr.Validation(fmt.Sprintf("Invalid id: %s", raw))
	}
	return raw, nil
}

// cachedJSON serves a single-resource GET through the per-id cache, marking
// the response HIT or MISS and attaching cache-control plus a weak ETag.
func cachedJSON(w http.ResponseWriter, r *http.Request, d Deps, key string, fetch func() (interface{}, error)) {
	if payload, ok := d.Cache.Get(r.Context(), key); ok {
		writeCached(w, d, "HIT", payload)
		return
	}
	v, err := fetch()
	if err != nil {
		writeError(w, d.Log, err)
		return
	}
	payload, err := json.Marshal(v)
	if err != nil {
		writeError(w, d.Log, err)
		return
	}
	d.Cache.Set(r.Context(), key, payload)
	writeCached(w, d, "MISS", payload)
}

func writeCached(w http.ResponseWriter, d Deps, status string, payload []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(d.Cfg.CacheStatusHeader, status)
	w.Header().Set("Cache-Control", fmt.Sprintf("max-age=%d", int(d.Cache.TTL().Seconds())))
	w.Header().Set("ETag", cache.ETag(payload))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}
