package record

import (
	"log/slog"
	"net/http"

	"progress-service/internal/auth"
	"progress-service/internal/httputil"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	reconciler      *Reconciler
	defaultExercise string
	logger          *slog.Logger
}

func NewHandler(reconciler *Reconciler, defaultExercise string, logger *slog.Logger) *Handler {
	return &Handler{
		reconciler:      reconciler,
		defaultExercise: defaultExercise,
		logger:          logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/record", h.GetRecord)
}

type Response struct {
	ExerciseType string `json:"exerciseType"`
	Record       int    `json:"record"`
}

// GetRecord reports the session's record. The record is display-only, so a
// session store failure yields 0 rather than an error.
func (h *Handler) GetRecord(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := auth.GetSessionID(r.Context())
	userID, hasUser := auth.GetUserID(r.Context())
	if !ok || !hasUser {
		httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	exerciseType := r.URL.Query().Get("exercise_type")
	if exerciseType == "" {
		exerciseType = h.defaultExercise
	}

	value, err := h.reconciler.Current(r.Context(), sessionID, userID, exerciseType)
	if err != nil {
		h.logger.WarnContext(r.Context(), "failed to read session record", "error", err)
		value = 0
	}

	httputil.RespondWithJSON(w, http.StatusOK, Response{ExerciseType: exerciseType, Record: value})
}
