package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"authrelay/internal/models"
)

// injectUser simulates JWTAuth having already resolved the caller.
func injectUser(user *models.User) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

func authorizeStatus(t *testing.T, user *models.User, path string, allowSameID bool, roles ...models.UserRole) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	if user != nil {
		r.Use(injectUser(user))
	}
	r.With(Authorize(allowSameID, roles...)).Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestAuthorizeRoleAllowed(t *testing.T) {
	user := &models.User{ID: "u1", Role: models.RoleAdmin}
	rec := authorizeStatus(t, user, "/other", false, models.RoleAdmin)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthorizeSameIDAllowed(t *testing.T) {
	user := &models.User{ID: "u1", Role: models.RoleBaseUser}
	rec := authorizeStatus(t, user, "/u1", true, models.RoleModerator, models.RoleAdmin)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthorizeDenied(t *testing.T) {
	user := &models.User{ID: "u1", Role: models.RoleBaseUser}

	rec := authorizeStatus(t, user, "/u2", true, models.RoleModerator, models.RoleAdmin)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"detail":"Not enough permissions"}`, rec.Body.String())

	// allowSameID off: owning the resource is not enough.
	rec = authorizeStatus(t, user, "/u1", false, models.RoleAdmin)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuthorizeNoUser(t *testing.T) {
	rec := authorizeStatus(t, nil, "/u1", true, models.RoleAdmin)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"detail":"Not authenticated"}`, rec.Body.String())
}
