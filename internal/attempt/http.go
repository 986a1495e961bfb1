package attempt

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"progress-service/internal/auth"
	"progress-service/internal/db"
	"progress-service/internal/httputil"

	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 64 << 10

type Handler struct {
	service         Service
	defaultExercise string
	logger          *slog.Logger
}

func NewHandler(service Service, defaultExercise string, logger *slog.Logger) *Handler {
	return &Handler{
		service:         service,
		defaultExercise: defaultExercise,
		logger:          logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/attempts", h.SubmitAttempt)
}

// SubmitAttempt records a finished round. The body may be JSON or a form; an
// unreadable body counts as empty, so every field takes its default.
func (h *Handler) SubmitAttempt(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	sessionID, _ := auth.GetSessionID(r.Context())

	payload := ParsePayload(h.decodeBody(w, r, userID), h.defaultExercise)

	result, err := h.service.Submit(r.Context(), Submission{
		UserID:    userID,
		SessionID: sessionID,
		Payload:   payload,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "attempt recorded",
		"attempt_id", result.Attempt.ID, "user_id", userID, "points", result.Attempt.TotalPoints)

	httputil.RespondWithJSON(w, http.StatusCreated, result)
}

func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, userID int64) map[string]any {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		raw := map[string]any{}
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			h.logger.WarnContext(r.Context(), "undecodable attempt body, saving defaults", "user_id", userID, "error", err)
			return map[string]any{}
		}
		return raw
	}

	if err := r.ParseForm(); err != nil {
		h.logger.WarnContext(r.Context(), "undecodable attempt form, saving defaults", "user_id", userID, "error", err)
		return map[string]any{}
	}
	return FormValues(r.PostForm)
}

// handleServiceError fails closed: the client must never believe an attempt
// was saved when it was not.
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		h.logger.InfoContext(r.Context(), "invalid attempt", "error", err)
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, db.ErrInvalidReference):
		h.logger.WarnContext(r.Context(), "attempt for unknown user", "error", err)
		httputil.RespondWithError(w, http.StatusUnprocessableEntity, "unknown user")
	case errors.Is(err, db.ErrStorageUnavailable):
		h.logger.ErrorContext(r.Context(), "attempt not saved", "error", err)
		httputil.RespondWithError(w, http.StatusServiceUnavailable, "attempt not saved, please retry")
	default:
		h.logger.ErrorContext(r.Context(), "internal error", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal error")
	}
}
