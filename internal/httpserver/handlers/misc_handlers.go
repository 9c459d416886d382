package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"authrelay/internal/apperr"
)

func Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// SendEmail queues an in-process notification task and returns immediately.
func SendEmail(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := r.URL.Query().Get("email")
		if email == "" {
			writeError(w, d.Log, apperr.Validation("email is required"))
			return
		}
		go d.Log.Infow("email task received", "email", email)
		respondJSON(w, http.StatusOK, map[string]string{
			"detail": fmt.Sprintf("Email will be sent to %s", email),
		})
	}
}

const passwordAPIURL = "https://password.gabrielcarvalho.dev/v1/"

// FetchPassword proxies an external password-generator API.
func FetchPassword(d Deps) http.HandlerFunc {
	client := &http.Client{Timeout: 10 * time.Second}
	return func(w http.ResponseWriter, r *http.Request) {
		params := url.Values{
			"password_length": {"12"},
			"quantity":        {"1"},
			"has_punctuation": {"true"},
		}
		req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, passwordAPIURL+"?"+params.Encode(), nil)
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		resp, err := client.Do(req)
		if err != nil {
			d.Log.Errorw("password fetch failed", "error", err)
			writeError(w, d.Log, apperr.BadRequest("Error while fetching the API"))
			return
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			d.Log.Errorw("password fetch failed", "status", resp.StatusCode)
			writeError(w, d.Log, apperr.BadRequest("Error while fetching the API"))
			return
		}
		var payload struct {
			Data []string `json:"data"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil || len(payload.Data) == 0 {
			writeError(w, d.Log, apperr.BadRequest("Error while fetching the API"))
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"status":    "ok",
			"password":  payload.Data[0],
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}
