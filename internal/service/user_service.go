package service

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/listmasterapp/listmaster/internal/auth"
	"github.com/listmasterapp/listmaster/internal/metrics"
	"github.com/listmasterapp/listmaster/internal/storage"
)

// UserService handles registration, sign-in, profile updates and cascading
// account deletion.
type UserService struct {
	store         storage.Store
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
}

// NewUserService creates a new UserService.
func NewUserService(store storage.Store, authenticator auth.Authenticator, jwtManager *auth.JWTManager) *UserService {
	return &UserService{
		store:         store,
		authenticator: authenticator,
		jwtManager:    jwtManager,
	}
}

// RegisterPublicRoutes attaches the unauthenticated endpoints
// (registration, sign-in) to mux.
func (s *UserService) RegisterPublicRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /users/add_user", s.handleAddUser)
	mux.HandleFunc("GET /users/sign_in", s.handleSignIn)
}

// RegisterRoutes attaches the authenticated endpoints to mux.
func (s *UserService) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("DELETE /users/delete_user", s.handleDeleteUser)
	mux.HandleFunc("PUT /users/update_user_name", s.handleUpdateName)
	mux.HandleFunc("PUT /users/update_user_email", s.handleUpdateEmail)
	mux.HandleFunc("PUT /users/update_user_password", s.handleUpdatePassword)
}

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type registerResponse struct {
	ID        string `json:"id"`
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

func (s *UserService) handleAddUser(w http.ResponseWriter, r *http.Request) {
	const op = "user_register"
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Name == "" || req.Password == "" {
		writeInvalid(w, op, "email, name and password are required")
		return
	}

	user, err := s.authenticator.Register(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		writeAuthError(w, op, err)
		return
	}

	token, expiresAt, err := s.jwtManager.Generate(user)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}

	slog.Info("user registered", "user_id", user.ID, "email", user.Email)
	recordOK(op)
	writeJSON(w, http.StatusOK, registerResponse{
		ID:        user.ID,
		Token:     token,
		ExpiresAt: expiresAt.Format(time.RFC3339),
	})
}

type signInResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

func (s *UserService) handleSignIn(w http.ResponseWriter, r *http.Request) {
	const op = "user_sign_in"
	email := r.URL.Query().Get("email")
	password := r.URL.Query().Get("password")
	if email == "" || password == "" {
		writeInvalid(w, op, "email and password are required")
		return
	}

	user, err := s.authenticator.Authenticate(r.Context(), email, password)
	if err != nil {
		writeAuthError(w, op, err)
		return
	}

	token, expiresAt, err := s.jwtManager.Generate(user)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}

	slog.Info("user signed in", "user_id", user.ID)
	recordOK(op)
	writeJSON(w, http.StatusOK, signInResponse{
		ID:        user.ID,
		Name:      user.Name,
		Token:     token,
		ExpiresAt: expiresAt.Format(time.RFC3339),
	})
}

type userDeleteRequest struct {
	ID string `json:"id"`
}

func (s *UserService) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	const op = "user_delete"
	var req userDeleteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ID == "" {
		writeInvalid(w, op, "id is required")
		return
	}
	if !authorized(r, req.ID) {
		writeUnauthorized(w, op)
		return
	}

	if err := s.store.DeleteUser(r.Context(), req.ID); err != nil {
		writeDomainError(w, op, err)
		return
	}

	slog.Info("user deleted", "user_id", req.ID)
	recordOK(op)
	writeJSON(w, http.StatusOK, statusMessage{Message: "OK"})
}

type userUpdateRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
}

func (s *UserService) handleUpdateName(w http.ResponseWriter, r *http.Request) {
	const op = "user_update_name"
	var req userUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ID == "" || req.Name == "" {
		writeInvalid(w, op, "id and name are required")
		return
	}
	if !authorized(r, req.ID) {
		writeUnauthorized(w, op)
		return
	}

	if err := s.store.UpdateUserName(r.Context(), req.ID, req.Name); err != nil {
		writeDomainError(w, op, err)
		return
	}
	recordOK(op)
	writeJSON(w, http.StatusOK, statusMessage{Message: "OK"})
}

func (s *UserService) handleUpdateEmail(w http.ResponseWriter, r *http.Request) {
	const op = "user_update_email"
	var req userUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ID == "" || req.Email == "" {
		writeInvalid(w, op, "id and email are required")
		return
	}
	if !authorized(r, req.ID) {
		writeUnauthorized(w, op)
		return
	}

	if err := s.store.UpdateUserEmail(r.Context(), req.ID, req.Email); err != nil {
		writeDomainError(w, op, err)
		return
	}
	recordOK(op)
	writeJSON(w, http.StatusOK, statusMessage{Message: "OK"})
}

func (s *UserService) handleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	const op = "user_update_password"
	var req userUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ID == "" || req.Password == "" {
		writeInvalid(w, op, "id and password are required")
		return
	}
	if !authorized(r, req.ID) {
		writeUnauthorized(w, op)
		return
	}

	if err := s.authenticator.ValidateCredential(req.Password); err != nil {
		writeAuthError(w, op, err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}

	if err := s.store.UpdateUserPassword(r.Context(), req.ID, hash); err != nil {
		writeDomainError(w, op, err)
		return
	}
	recordOK(op)
	writeJSON(w, http.StatusOK, statusMessage{Message: "OK"})
}

// writeAuthError maps authenticator errors to HTTP statuses.
func writeAuthError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, auth.ErrEmailExists):
		metrics.Record(op, "conflict")
		writeJSON(w, http.StatusConflict, statusMessage{Message: err.Error()})
	case errors.Is(err, auth.ErrWeakPassword):
		metrics.Record(op, "invalid")
		writeJSON(w, http.StatusBadRequest, statusMessage{Message: err.Error()})
	case errors.Is(err, auth.ErrInvalidCredentials):
		metrics.Record(op, "forbidden")
		writeJSON(w, http.StatusUnauthorized, statusMessage{Message: err.Error()})
	default:
		writeDomainError(w, op, err)
	}
}
