package handlers

import (
	"net/http"
	"strings"

	"authrelay/internal/apperr"
	"authrelay/internal/auth"
	"authrelay/internal/services"
)

type signUpReq struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func SignUp(svc *services.AuthService, d Deps) http.HandlerFunc {
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
		if !strings.Contains(req.Email, "@") {
			writeError(w, d.Log, apperr.Validation("Invalid email address"))
			return
		}
		user, err := svc.SignUp(r.Context(), req.Email, req.Username, req.Password)
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		respondJSON(w, http.StatusCreated, user)
	}
}

type signInReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func SignIn(svc *services.AuthService, d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req signInReq
		if err := decodeBody(r, &req); err != nil {
			writeError(w, d.Log, err)
			return
		}
		result, err := svc.SignIn(r.Context(), strings.ToLower(req.Email), req.Password)
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		respondJSON(w, http.StatusOK, result)
	}
}

func RefreshToken(svc *services.AuthService, d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := svc.RefreshToken(auth.FromContext(r.Context()))
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		respondJSON(w, http.StatusOK, result)
	}
}

func Me(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, auth.FromContext(r.Context()))
	}
}
