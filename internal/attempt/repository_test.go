package attempt_test

import (
	"context"
	"sync"
	"testing"

	"progress-service/internal/attempt"
	"progress-service/internal/db"
	"progress-service/internal/metrics"
	"progress-service/internal/user"
	"progress-service/testing/testdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttemptRepository_Shared(t *testing.T) {
	pg := testdb.SetupSharedPostgres(t)
	ctx := context.Background()

	repo := attempt.NewRepository(pg.DB, metrics.NewMock())
	users := user.NewRepository(pg.DB, metrics.NewMock())

	createUser := func(t *testing.T, email string) int64 {
		u, err := users.Create(ctx, &user.User{Email: email, PasswordHash: "x"})
		require.NoError(t, err)
		return u.ID
	}

	record := func(t *testing.T, userID int64, correct, wrong, points int) *attempt.Attempt {
		a, err := repo.Create(ctx, &attempt.Attempt{
			UserID: userID, ExerciseType: attempt.DefaultExerciseType,
			CorrectCount: correct, WrongCount: wrong, TotalPoints: points,
		})
		require.NoError(t, err)
		return a
	}

	t.Run("Create_AssignsCompletedAt", func(t *testing.T) {
		testdb.CleanupTables(t, pg.DB, testdb.AllTables...)
		uid := createUser(t, "a@example.com")

		first := record(t, uid, 8, 2, 80)
		second := record(t, uid, 9, 1, 95)

		assert.NotZero(t, first.ID)
		assert.False(t, first.CompletedAt.IsZero())
		assert.False(t, second.CompletedAt.Before(first.CompletedAt))
	})

	t.Run("Create_UnknownUser", func(t *testing.T) {
		testdb.CleanupTables(t, pg.DB, testdb.AllTables...)

		_, err := repo.Create(ctx, &attempt.Attempt{UserID: 12345, ExerciseType: attempt.DefaultExerciseType})
		assert.ErrorIs(t, err, db.ErrInvalidReference)

		var count int
		require.NoError(t, pg.DB.NewSelect().Table("attempts").ColumnExpr("COUNT(*)").Scan(ctx, &count))
		assert.Zero(t, count, "no partial attempt may be visible")
	})

	t.Run("BestScore", func(t *testing.T) {
		testdb.CleanupTables(t, pg.DB, testdb.AllTables...)
		uid := createUser(t, "a@example.com")
		other := createUser(t, "b@example.com")

		best, err := repo.BestScore(ctx, uid, attempt.DefaultExerciseType)
		require.NoError(t, err)
		assert.Zero(t, best)

		record(t, uid, 8, 2, 80)
		record(t, uid, 9, 1, 95)
		record(t, uid, 3, 7, 30)
		record(t, other, 10, 0, 500)
		_, err = repo.Create(ctx, &attempt.Attempt{UserID: uid, ExerciseType: "division", TotalPoints: 999})
		require.NoError(t, err)

		best, err = repo.BestScore(ctx, uid, attempt.DefaultExerciseType)
		require.NoError(t, err)
		assert.Equal(t, 95, best)
	})

	t.Run("Recent_NewestFirstAndBounded", func(t *testing.T) {
		testdb.CleanupTables(t, pg.DB, testdb.AllTables...)
		uid := createUser(t, "a@example.com")

		for i := 1; i <= 12; i++ {
			record(t, uid, i, 0, i)
		}

		recent, err := repo.Recent(ctx, uid, attempt.DefaultExerciseType, 10)
		require.NoError(t, err)
		require.Len(t, recent, 10)
		assert.Equal(t, 12, recent[0].TotalPoints)
		assert.Equal(t, 3, recent[9].TotalPoints)

		short, err := repo.Recent(ctx, createUser(t, "new@example.com"), attempt.DefaultExerciseType, 10)
		require.NoError(t, err)
		assert.Empty(t, short)
	})

	t.Run("Totals", func(t *testing.T) {
		testdb.CleanupTables(t, pg.DB, testdb.AllTables...)
		uid := createUser(t, "a@example.com")

		empty, err := repo.Totals(ctx, uid, attempt.DefaultExerciseType)
		require.NoError(t, err)
		assert.Equal(t, attempt.Totals{}, empty)

		record(t, uid, 8, 2, 80)
		record(t, uid, 9, 1, 95)

		totals, err := repo.Totals(ctx, uid, attempt.DefaultExerciseType)
		require.NoError(t, err)
		assert.Equal(t, attempt.Totals{Sessions: 2, TotalCorrect: 17, TotalWrong: 3, Best: 95}, totals)
	})

	t.Run("ReadSnapshot", func(t *testing.T) {
		testdb.CleanupTables(t, pg.DB, testdb.AllTables...)
		uid := createUser(t, "a@example.com")
		record(t, uid, 1, 1, 10)

		err := repo.ReadSnapshot(ctx, func(ctx context.Context, snap attempt.Repository) error {
			before, err := snap.Totals(ctx, uid, attempt.DefaultExerciseType)
			require.NoError(t, err)

			// A concurrent commit is not visible inside the snapshot.
			record(t, uid, 5, 0, 50)

			recent, err := snap.Recent(ctx, uid, attempt.DefaultExerciseType, 10)
			require.NoError(t, err)
			assert.Len(t, recent, before.Sessions)
			return nil
		})
		require.NoError(t, err)

		after, err := repo.Totals(ctx, uid, attempt.DefaultExerciseType)
		require.NoError(t, err)
		assert.Equal(t, 2, after.Sessions)
	})

	t.Run("ConcurrentInserts", func(t *testing.T) {
		testdb.CleanupTables(t, pg.DB, testdb.AllTables...)
		uid := createUser(t, "a@example.com")

		var wg sync.WaitGroup
		for i := 1; i <= 20; i++ {
			wg.Add(1)
			go func(points int) {
				defer wg.Done()
				_, err := repo.Create(ctx, &attempt.Attempt{UserID: uid, ExerciseType: attempt.DefaultExerciseType, TotalPoints: points})
				assert.NoError(t, err)
			}(i)
		}
		wg.Wait()

		totals, err := repo.Totals(ctx, uid, attempt.DefaultExerciseType)
		require.NoError(t, err)
		assert.Equal(t, 20, totals.Sessions)
		assert.Equal(t, 20, totals.Best)
	})
}
