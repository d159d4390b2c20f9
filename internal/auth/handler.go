package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gigfinder/backend/internal/httpx"
	"github.com/gigfinder/backend/internal/models"
)

type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

// SchemaValidator checks a raw request body against a named schema.
type SchemaValidator interface {
	Validate(schema string, body []byte) error
}

type Handler struct {
	svc       Service
	validator SchemaValidator
	log       *slog.Logger
}

func NewHandler(svc Service, validator SchemaValidator, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, validator: validator, log: log}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !h.decode(w, r, "register", &req) {
		return
	}
	u, err := h.svc.Register(r.Context(), req.Email, req.Password, req.DisplayName, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, ErrDuplicateEmail):
			httpx.WriteError(w, http.StatusConflict, "email already registered")
		case errors.Is(err, ErrInvalidRole):
			httpx.WriteError(w, http.StatusBadRequest, "invalid role")
		default:
			h.log.Error("register failed", "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, "registration failed")
		}
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, userToResponse(u))
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.decode(w, r, "login", &req) {
		return
	}
	token, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			httpx.WriteError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h.log.Error("login failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "login failed")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, LoginResponse{Token: token})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, schema string, dst any) bool {
	body, err := httpx.ReadBody(r)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "failed to read body")
		return false
	}
	if h.validator != nil {
		if err := h.validator.Validate(schema, body); err != nil {
			httpx.WriteError(w, http.StatusUnprocessableEntity, err.Error())
			return false
		}
	}
	if err := json.Unmarshal(body, dst); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON")
		return false
	}
	return true
}

func userToResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:          u.ID.String(),
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        u.Role,
	}
}
