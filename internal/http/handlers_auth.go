package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"

	"fintrack/internal/services"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if msg := validateRegistration(req); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	user, err := s.auth.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			respondError(w, http.StatusConflict, "Email already registered")
			return
		}
		slog.ErrorContext(r.Context(), "Registration failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	respondMessage(w, http.StatusCreated, "User registered successfully", user)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			respondError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		slog.ErrorContext(r.Context(), "Login failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	respondMessage(w, http.StatusOK, "Login successful", user)
}

func validateRegistration(req registerRequest) string {
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return "Email and password are required"
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(req.Email)); err != nil {
		return "Invalid email address"
	}
	if len(req.Password) < 6 {
		return "Password must be at least 6 characters"
	}
	if len(req.Name) > 120 {
		return "Name must be at most 120 characters"
	}
	return ""
}
