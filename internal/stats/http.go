package stats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"progress-service/internal/auth"
	"progress-service/internal/db"
	"progress-service/internal/httputil"
	"progress-service/internal/metrics"
	"progress-service/internal/roster"
	"progress-service/internal/user"

	"github.com/go-chi/chi/v5"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// CourseLookup resolves the course of a cohort dashboard.
type CourseLookup interface {
	GetCourse(ctx context.Context, id int64) (*roster.Course, error)
}

type Handler struct {
	service  Service
	courses  CourseLookup
	location *time.Location
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewHandler(service Service, courses CourseLookup, location *time.Location, logger *slog.Logger, m *metrics.Metrics) *Handler {
	if location == nil {
		location = time.UTC
	}
	return &Handler{
		service:  service,
		courses:  courses,
		location: location,
		logger:   logger,
		metrics:  m,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/stats/me", h.GetPersonalDashboard)
	router.With(auth.RequireRole(user.RoleTeacher)).
		Get("/courses/{courseID}/stats", h.GetCohortDashboard)
}

type PersonalResponse struct {
	*PersonalStats
	Degraded bool `json:"degraded"`
}

type CohortResponse struct {
	CourseID int64        `json:"courseId"`
	Sort     SortMode     `json:"sort"`
	Rows     []StudentRow `json:"rows"`
	Degraded bool         `json:"degraded"`
}

// GetPersonalDashboard fails open: when storage is unavailable the student
// gets an empty dashboard flagged as degraded.
func (h *Handler) GetPersonalDashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	exerciseType := strings.TrimSpace(r.URL.Query().Get("exercise_type"))
	if exerciseType == "" {
		exerciseType = h.service.DefaultExerciseType()
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			httputil.RespondWithError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	personal, err := h.service.PersonalStats(r.Context(), userID, exerciseType, limit)
	if errors.Is(err, db.ErrStorageUnavailable) {
		h.logger.WarnContext(r.Context(), "personal dashboard degraded", "user_id", userID, "error", err)
		h.metrics.RecordDegradedRead(r.Context(), "personal")
		httputil.RespondWithJSON(w, http.StatusOK, PersonalResponse{PersonalStats: emptyPersonal(exerciseType), Degraded: true})
		return
	}
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordPersonalDashboard(r.Context())
	httputil.RespondWithJSON(w, http.StatusOK, PersonalResponse{PersonalStats: personal})
}

// GetCohortDashboard serves JSON, or a spreadsheet with format=xlsx. The JSON
// view fails open like the personal one; a download cannot be degraded, so it
// answers 503 instead.
func (h *Handler) GetCohortDashboard(w http.ResponseWriter, r *http.Request) {
	courseID, ok := httputil.ParseID(chi.URLParam(r, "courseID"))
	if !ok {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid course ID")
		return
	}

	query, err := h.parseCohortQuery(r, courseID)
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	export := wantsXLSX(r)

	rows, err := h.cohortRows(r.Context(), query)
	if errors.Is(err, db.ErrStorageUnavailable) {
		h.logger.WarnContext(r.Context(), "cohort dashboard degraded", "course_id", courseID, "error", err)
		h.metrics.RecordDegradedRead(r.Context(), "cohort")
		if export {
			httputil.RespondWithError(w, http.StatusServiceUnavailable, "statistics unavailable")
			return
		}
		httputil.RespondWithJSON(w, http.StatusOK, CohortResponse{CourseID: courseID, Sort: query.Sort, Rows: []StudentRow{}, Degraded: true})
		return
	}
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordCohortDashboard(r.Context(), string(query.Sort))

	if export {
		w.Header().Set("Content-Type", xlsxContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="course-%d-stats.xlsx"`, courseID))
		if err := ExportCohortXLSX(rows, w); err != nil {
			h.logger.ErrorContext(r.Context(), "failed to write export", "error", err)
		}
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, CohortResponse{CourseID: courseID, Sort: query.Sort, Rows: rows})
}

func (h *Handler) cohortRows(ctx context.Context, q CohortQuery) ([]StudentRow, error) {
	if _, err := h.courses.GetCourse(ctx, q.CourseID); err != nil {
		return nil, err
	}
	return h.service.CohortStats(ctx, q)
}

func (h *Handler) parseCohortQuery(r *http.Request, courseID int64) (CohortQuery, error) {
	values := r.URL.Query()
	q := CohortQuery{
		CourseID:     courseID,
		Query:        values.Get("q"),
		Sort:         ParseSortMode(values.Get("sort")),
		ExerciseType: strings.TrimSpace(values.Get("exercise_type")),
	}

	var err error
	if q.From, err = ParseBound(values.Get("from"), h.location); err != nil {
		return q, fmt.Errorf("invalid from: %w", err)
	}
	if q.To, err = ParseBound(values.Get("to"), h.location); err != nil {
		return q, fmt.Errorf("invalid to: %w", err)
	}
	return q, nil
}

// ParseBound accepts a date (midnight in loc) or an RFC 3339 timestamp. An
// empty value means unbounded.
func ParseBound(raw string, loc *time.Location) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.ParseInLocation(time.DateOnly, raw, loc); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("expected YYYY-MM-DD or RFC 3339, got %q", raw)
	}
	return &t, nil
}

func wantsXLSX(r *http.Request) bool {
	return r.URL.Query().Get("format") == "xlsx" ||
		strings.Contains(r.Header.Get("Accept"), xlsxContentType)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, roster.ErrCourseNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, "Course not found")
	case errors.Is(err, ErrInvalidInput), errors.Is(err, roster.ErrInvalidInput):
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "internal error", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal error")
	}
}
