package roster

import (
	"errors"
	"log/slog"
	"net/http"

	"progress-service/internal/auth"
	"progress-service/internal/db"
	"progress-service/internal/httputil"
	"progress-service/internal/user"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service Service
	logger  *slog.Logger
}

func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	teachers := router.With(auth.RequireRole(user.RoleTeacher))
	teachers.Get("/courses/{courseID}/students", h.ListStudents)
	teachers.Delete("/courses/{courseID}/students/{studentID}", h.RemoveEnrollment)
}

func (h *Handler) ListStudents(w http.ResponseWriter, r *http.Request) {
	courseID, ok := httputil.ParseID(chi.URLParam(r, "courseID"))
	if !ok {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid course ID")
		return
	}

	if _, err := h.service.GetCourse(r.Context(), courseID); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	students, err := h.service.ListStudents(r.Context(), courseID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, students)
}

// RemoveEnrollment answers 204 whether or not the student was enrolled.
func (h *Handler) RemoveEnrollment(w http.ResponseWriter, r *http.Request) {
	courseID, ok := httputil.ParseID(chi.URLParam(r, "courseID"))
	if !ok {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid course ID")
		return
	}
	studentID, ok := httputil.ParseID(chi.URLParam(r, "studentID"))
	if !ok {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid student ID")
		return
	}

	h.logger.InfoContext(r.Context(), "removing enrollment", "course_id", courseID, "student_id", studentID)
	if err := h.service.Unenroll(r.Context(), studentID, courseID); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrCourseNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, "Course not found")
	case errors.Is(err, ErrInvalidInput):
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, db.ErrStorageUnavailable):
		h.logger.ErrorContext(r.Context(), "roster unavailable", "error", err)
		httputil.RespondWithError(w, http.StatusServiceUnavailable, "roster unavailable")
	default:
		h.logger.ErrorContext(r.Context(), "internal error", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal error")
	}
}
