package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"authrelay/internal/models"
)

func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}

// JWTAuth verifies the bearer token, loads the embedded user and requires it
// to be active. The user is stored on the request context for handlers and
// the Authorize guard.
func JWTAuth(db *gorm.DB, secret, algorithm string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				writeDetail(w, http.StatusUnauthorized, "Not authenticated")
				return
			}
			payload, err := Verify(strings.TrimPrefix(h, "Bearer "), secret, algorithm)
			if err != nil {
				writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
				return
			}
			var user models.User
			if err := db.First(&user, "id = ?", payload.ID).Error; err != nil {
				writeDetail(w, http.StatusUnauthorized, "User not found")
				return
			}
			if !user.IsActive {
				writeDetail(w, http.StatusUnauthorized, "Inactive user")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), &user)))
		})
	}
}

// Authorize gates a route by role membership and, optionally, resource
// ownership: the call is permitted when the caller's role is in the allowed
// set, or when allowSameID is true and the caller's id equals the path id.
func Authorize(allowSameID bool, roles ...models.UserRole) func(http.Handler) http.Handler {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := FromContext(r.Context())
			if user == nil {
				writeDetail(w, http.StatusUnauthorized, "Not authenticated")
				return
			}
			if _, ok := allowed[user.Role]; !ok {
				if !(allowSameID && user.ID == chi.URLParam(r, "id")) {
					writeDetail(w, http.StatusForbidden, "Not enough permissions")
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
