package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"progress-service/internal/httputil"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	service   *Service
	env       string
	logger    *slog.Logger
	validator *validator.Validate
}

func NewHandler(service *Service, env string, logger *slog.Logger) *Handler {
	return &Handler{
		service:   service,
		env:       env,
		logger:    logger,
		validator: validator.New(),
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/auth/login", h.Login)
	router.Post("/auth/logout", h.Logout)
}

// Login accepts JSON or a form post.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.logger.WarnContext(r.Context(), "failed to decode request", "error", err)
			httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req = LoginRequest{
			Email:     r.PostForm.Get("email"),
			Password:  r.PostForm.Get("password"),
			FirstName: r.PostForm.Get("firstName"),
			LastName:  r.PostForm.Get("lastName"),
		}
	}
	req.Email = strings.TrimSpace(req.Email)
	req.Password = strings.TrimSpace(req.Password)

	// Logging in again from the same browser keeps the session.
	if token := tokenFromRequest(r); token != "" {
		if id, err := h.service.Authenticate(token); err == nil && id.Email == req.Email {
			req.SessionID = id.SessionID
		}
	}

	if err := h.validator.Struct(req); err != nil {
		h.logger.WarnContext(r.Context(), "validation failed", "error", err)
		httputil.RespondWithError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			httputil.RespondWithError(w, http.StatusUnauthorized, err.Error())
			return
		}
		h.logger.ErrorContext(r.Context(), "login failed", "error", err)
		httputil.RespondWithError(w, http.StatusServiceUnavailable, "login unavailable")
		return
	}

	h.logger.InfoContext(r.Context(), "user logged in", "user_id", resp.User.ID, "created", resp.Created)

	SetAuthCookie(w, resp.AccessToken, h.env, int(h.service.issuer.TTL().Seconds()))
	httputil.RespondWithJSON(w, http.StatusOK, resp)
}

// Logout forgets the session record and clears the cookie. An absent or
// expired token still clears the cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := tokenFromRequest(r); token != "" {
		if id, err := h.service.Authenticate(token); err == nil {
			if err := h.service.Logout(r.Context(), id.SessionID); err != nil {
				h.logger.WarnContext(r.Context(), "failed to forget session", "error", err)
			}
		}
	}

	ClearAuthCookie(w)
	w.WriteHeader(http.StatusNoContent)
}
