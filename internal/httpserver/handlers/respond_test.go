package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"authrelay/internal/apperr"
	"authrelay/internal/cache"
	"authrelay/internal/config"
)

func cacheDeps() Deps {
	return Deps{
		Cfg:   config.Config{CacheStatusHeader: "x-api-cache"},
		Cache: cache.New(nil, 360*time.Second, "", zap.NewNop().Sugar()),
		Log:   zap.NewNop().Sugar(),
	}
}

func TestCachedJSONMiss(t *testing.T) {
	d := cacheDeps()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/user/abc", nil)

	cachedJSON(rec, req, d, "UserService:abc", func() (interface{}, error) {
		return map[string]string{"id": "abc"}, nil
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "MISS", rec.Header().Get("x-api-cache"))
	assert.Equal(t, "max-age=360", rec.Header().Get("Cache-Control"))
	assert.JSONEq(t, `{"id":"abc"}`, rec.Body.String())

	payload, err := json.Marshal(map[string]string{"id": "abc"})
	require.NoError(t, err)
	etag := rec.Header().Get("ETag")
	assert.Equal(t, cache.ETag(payload), etag)
	assert.True(t, strings.HasPrefix(etag, `W/"`))
}

func TestCachedJSONFetchError(t *testing.T) {
	d := cacheDeps()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/user/abc", nil)

	cachedJSON(rec, req, d, "UserService:abc", func() (interface{}, error) {
		return nil, apperr.NotFound("Resource with id=abc not found")
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"detail":"Resource with id=abc not found"}`, rec.Body.String())
	assert.Empty(t, rec.Header().Get("x-api-cache"))
}

func TestWriteCachedHit(t *testing.T) {
	d := cacheDeps()
	rec := httptest.NewRecorder()
	payload := []byte(`{"id":"abc"}`)

	writeCached(rec, d, "HIT", payload)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "HIT", rec.Header().Get("x-api-cache"))
	assert.Equal(t, "max-age=360", rec.Header().Get("Cache-Control"))
	assert.Equal(t, cache.ETag(payload), rec.Header().Get("ETag"))
	assert.Equal(t, string(payload), rec.Body.String())
}
