// Package handler is the HTTP layer: it parses requests, calls a service and
// writes JSON. It knows nothing about SQL, and the services know nothing
// about HTTP.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/todo-service/internal/apperror"
	"github.com/sakif/todo-service/internal/auth"
	"github.com/sakif/todo-service/internal/model"
	"github.com/sakif/todo-service/internal/service"
)

// UserService is the subset of *service.UserService the handler calls.
// Tests substitute a testify mock.
type UserService interface {
	Register(ctx context.Context, username, email, password string) (*model.User, error)
	Login(ctx context.Context, identifier, password string) (*service.LoginResult, error)
	Delete(ctx context.Context, email, password string) error
	ListAll(ctx context.Context) ([]model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id int64) (*model.User, error)
}

// UserHandler serves the /users routes.
type UserHandler struct {
	users    UserService
	tokenTTL time.Duration
	logger   *slog.Logger
}

// NewUserHandler creates a UserHandler. tokenTTL sets the session cookie's Max-Age.
func NewUserHandler(users UserService, tokenTTL time.Duration, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, tokenTTL: tokenTTL, logger: logger}
}

// Routes returns the /users subrouter. requireAuth guards /me.
//
//	POST   /register        → HandleRegister
//	POST   /login           → HandleLogin
//	GET    /me              → HandleMe (authenticated)
//	GET    /find            → HandleList
//	GET    /email/{email}   → HandleFindByEmail
//	DELETE /delete          → HandleDelete
func (h *UserHandler) Routes(requireAuth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/register", h.HandleRegister)
	r.Post("/login", h.HandleLogin)
	r.With(requireAuth).Get("/me", h.HandleMe)
	r.Get("/find", h.HandleList)
	r.Get("/email/{email}", h.HandleFindByEmail)
	r.Delete("/delete", h.HandleDelete)
	return r
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleRegister creates an account.
//
// HTTP: POST /users/register
// REQUEST BODY: {"username":"alice","email":"a@x.com","password":"abc123"}
// RESPONSE: 201 with the user (no password hash)
func (h *UserHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	user, err := h.users.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// HandleLogin checks credentials and sets the session cookie.
//
// HTTP: POST /users/login?username=alice&password=abc123
// The identifier may also be passed as ?email=a@x.com.
func (h *UserHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	identifier := q.Get("username")
	if identifier == "" {
		identifier = q.Get("email")
	}

	result, err := h.users.Login(r.Context(), identifier, q.Get("password"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if result.Token != "" {
		// HttpOnly keeps the token out of reach of page scripts.
		http.SetCookie(w, &http.Cookie{
			Name:     auth.CookieName,
			Value:    result.Token,
			Path:     "/",
			MaxAge:   int(h.tokenTTL.Seconds()),
			HttpOnly: true,
			Secure:   r.TLS != nil,
			SameSite: http.SameSiteLaxMode,
		})
	}

	writeJSON(w, http.StatusOK, result.User)
}

// HandleMe returns the user behind the session token.
//
// HTTP: GET /users/me
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "valid authentication required",
		})
		return
	}

	user, err := h.users.FindByID(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleList returns every user.
//
// HTTP: GET /users/find
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListAll(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// HandleFindByEmail returns the user with the email in the path.
// An unknown email is not an error here: the body is JSON null.
//
// HTTP: GET /users/email/{email}
func (h *UserHandler) HandleFindByEmail(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	user, err := h.users.FindByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			var none *model.User
			writeJSON(w, http.StatusOK, none)
			return
		}
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleDelete removes an account after re-checking its password.
//
// HTTP: DELETE /users/delete?email=a@x.com&password=abc123
// RESPONSE: 204 No Content
func (h *UserHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if err := h.users.Delete(r.Context(), q.Get("email"), q.Get("password")); err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.logger.Info("account deleted via API")
	w.WriteHeader(http.StatusNoContent)
}
