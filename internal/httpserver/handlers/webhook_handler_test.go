package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func testDeps() Deps {
	return Deps{Log: zap.NewNop().Sugar()}
}

func TestTriggerWebHookHeaderMissing(t *testing.T) {
	h := TriggerWebHook(nil, nil, testDeps())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/webhooks/abc", nil))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t, `{"detail":"x-api-key header is required"}`, rec.Body.String())
}

func TestTriggerWebHookHeaderEmpty(t *testing.T) {
	h := TriggerWebHook(nil, nil, testDeps())

	req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/abc", nil)
	req.Header.Set("x-api-key", "")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"detail":"API key is required."}`, rec.Body.String())
}
