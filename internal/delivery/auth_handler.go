package delivery

import (
	"encoding/json"
	"net/http"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/mediavault/internal/models"
	"github.com/Vovarama1992/mediavault/internal/ports"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type credentialsRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type adminResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type authResponse struct {
	Message string        `json:"message"`
	Token   string        `json:"token"`
	User    adminResponse `json:"user"`
}

type AuthHandler struct {
	auth ports.AuthService
	log  *logger.ZapLogger
}

func NewAuthHandler(auth ports.AuthService, log *logger.ZapLogger) *AuthHandler {
	return &AuthHandler{
		auth: auth,
		log:  log,
	}
}

// POST /auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	admin, token, err := h.auth.Signup(r.Context(), req.Email, req.Password)
	if err != nil {
		handleDomainError(w, h.log, "signup", err)
		return
	}

	h.log.Log(logger.LogEntry{
		Level:   "info",
		Message: "admin signed up",
		Fields:  map[string]any{"adminID": admin.ID},
	})

	writeJSON(w, http.StatusCreated, newAuthResponse("User created successfully", token, admin))
}

// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	admin, token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleDomainError(w, h.log, "login", err)
		return
	}

	h.log.Log(logger.LogEntry{
		Level:   "info",
		Message: "login success",
		Fields:  map[string]any{"adminID": admin.ID},
	})

	writeJSON(w, http.StatusOK, newAuthResponse("Login successful", token, admin))
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (credentialsRequest, bool) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid json")
		return req, false
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "email and password are required")
		return req, false
	}
	return req, true
}

func newAuthResponse(message, token string, admin *models.AdminUser) authResponse {
	return authResponse{
		Message: message,
		Token:   token,
		User:    adminResponse{ID: admin.ID, Email: admin.Email},
	}
}
