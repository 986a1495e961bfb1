package roster_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"progress-service/internal/attempt"
	"progress-service/internal/auth"
	"progress-service/internal/db"
	"progress-service/internal/logger"
	"progress-service/internal/metrics"
	"progress-service/internal/roster"
	"progress-service/internal/user"
	"progress-service/testing/testdb"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoster_Shared(t *testing.T) {
	pg := testdb.SetupSharedPostgres(t)
	ctx := context.Background()

	users := user.NewRepository(pg.DB, metrics.NewMock())
	repo := roster.NewRepository(pg.DB, metrics.NewMock())
	svc := roster.NewService(repo, users)

	router := chi.NewRouter()
	roster.NewHandler(svc, logger.NewDiscard()).RegisterRoutes(router)

	createUser := func(t *testing.T, email, first, last, role string) int64 {
		u, err := users.Create(ctx, &user.User{Email: email, PasswordHash: "x", FirstName: first, LastName: last, Role: role})
		require.NoError(t, err)
		return u.ID
	}

	setupCourse := func(t *testing.T) (teacherID, courseID int64) {
		teacherID = createUser(t, "teacher@example.com", "Tina", "Teach", user.RoleTeacher)
		course, err := svc.CreateCourse(ctx, "Times tables 3B", teacherID)
		require.NoError(t, err)
		return teacherID, course.ID
	}

	asTeacher := func(req *http.Request, id int64) *http.Request {
		return req.WithContext(auth.WithIdentity(req.Context(), auth.Identity{UserID: id, Role: user.RoleTeacher, SessionID: "sid"}))
	}

	t.Run("CreateCourse_RequiresTeacher", func(t *testing.T) {
		testdb.CleanupTables(t, pg.DB, testdb.AllTables...)
		studentID := createUser(t, "s@example.com", "", "", user.RoleStudent)

		_, err := svc.CreateCourse(ctx, "Nope", studentID)
		assert.ErrorIs(t, err, roster.ErrNotTeacher)

		_, err = svc.CreateCourse(ctx, "  ", studentID)
		assert.ErrorIs(t, err, roster.ErrInvalidInput)
	})

	t.Run("ListStudents_Ordering", func(t *testing.T) {
		testdb.CleanupTables(t, pg.DB, testdb.AllTables...)
		_, courseID := setupCourse(t)

		ids := []int64{
			createUser(t, "zed@example.com", "", "", user.RoleStudent),
			createUser(t, "b.adams@example.com", "Bea", "Adams", user.RoleStudent),
			createUser(t, "a.adams@example.com", "Al", "Adams", user.RoleStudent),
			createUser(t, "amy@example.com", "", "", user.RoleStudent),
			createUser(t, "carl@example.com", "Carl", "Baker", user.RoleStudent),
		}
		for _, id := range ids {
			require.NoError(t, svc.Enroll(ctx, id, courseID))
		}
		createUser(t, "outsider@example.com", "Out", "Sider", user.RoleStudent)

		students, err := svc.ListStudents(ctx, courseID)
		require.NoError(t, err)

		var emails []string
		for _, s := range students {
			emails = append(emails, s.Email)
		}
		assert.Equal(t, []string{
			"a.adams@example.com",
			"b.adams@example.com",
			"carl@example.com",
			"amy@example.com",
			"zed@example.com",
		}, emails)
	})

	t.Run("Enroll_Idempotent", func(t *testing.T) {
		testdb.CleanupTables(t, pg.DB, testdb.AllTables...)
		_, courseID := setupCourse(t)
		sid := createUser(t, "s@example.com", "S", "One", user.RoleStudent)

		require.NoError(t, svc.Enroll(ctx, sid, courseID))
		require.NoError(t, svc.Enroll(ctx, sid, courseID))

		students, err := svc.ListStudents(ctx, courseID)
		require.NoError(t, err)
		assert.Len(t, students, 1)
	})

	t.Run("Enroll_UnknownCourse", func(t *testing.T) {
		testdb.CleanupTables(t, pg.DB, testdb.AllTables...)
		sid := createUser(t, "s@example.com", "S", "One", user.RoleStudent)

		err := svc.Enroll(ctx, sid, 999)
		assert.ErrorIs(t, err, db.ErrInvalidReference)
	})

	t.Run("Unenroll_KeepsAttempts", func(t *testing.T) {
		testdb.CleanupTables(t, pg.DB, testdb.AllTables...)
		_, courseID := setupCourse(t)
		sid := createUser(t, "s@example.com", "S", "One", user.RoleStudent)
		require.NoError(t, svc.Enroll(ctx, sid, courseID))

		attempts := attempt.NewRepository(pg.DB, metrics.NewMock())
		_, err := attempts.Create(ctx, &attempt.Attempt{UserID: sid, ExerciseType: attempt.DefaultExerciseType, TotalPoints: 40})
		require.NoError(t, err)

		require.NoError(t, svc.Unenroll(ctx, sid, courseID))

		students, err := svc.ListStudents(ctx, courseID)
		require.NoError(t, err)
		assert.Empty(t, students)

		best, err := attempts.BestScore(ctx, sid, attempt.DefaultExerciseType)
		require.NoError(t, err)
		assert.Equal(t, 40, best)
	})

	t.Run("Unenroll_NeverEnrolledIsNoop", func(t *testing.T) {
		testdb.CleanupTables(t, pg.DB, testdb.AllTables...)
		teacherID, courseID := setupCourse(t)
		sid := createUser(t, "s@example.com", "S", "One", user.RoleStudent)

		req := httptest.NewRequest(http.MethodDelete, "/courses/"+itoa(courseID)+"/students/"+itoa(sid), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, asTeacher(req, teacherID))

		assert.Equal(t, http.StatusNoContent, w.Code)

		students, err := svc.ListStudents(ctx, courseID)
		require.NoError(t, err)
		assert.Empty(t, students)
	})

	t.Run("Handler_ListStudents", func(t *testing.T) {
		testdb.CleanupTables(t, pg.DB, testdb.AllTables...)
		teacherID, courseID := setupCourse(t)
		sid := createUser(t, "s@example.com", "Sam", "One", user.RoleStudent)
		require.NoError(t, svc.Enroll(ctx, sid, courseID))

		req := httptest.NewRequest(http.MethodGet, "/courses/"+itoa(courseID)+"/students", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, asTeacher(req, teacherID))

		require.Equal(t, http.StatusOK, w.Code)
		var students []roster.StudentSummary
		require.NoError(t, json.NewDecoder(w.Body).Decode(&students))
		require.Len(t, students, 1)
		assert.Equal(t, "Sam", students[0].FirstName)
	})

	t.Run("Handler_UnknownCourse", func(t *testing.T) {
		testdb.CleanupTables(t, pg.DB, testdb.AllTables...)

		req := httptest.NewRequest(http.MethodGet, "/courses/404/students", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, asTeacher(req, 1))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Handler_StudentForbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/courses/1/students", nil)
		req = req.WithContext(auth.WithIdentity(req.Context(), auth.Identity{UserID: 5, Role: user.RoleStudent, SessionID: "sid"}))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
