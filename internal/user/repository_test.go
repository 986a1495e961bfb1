package user_test

import (
	"context"
	"testing"

	"progress-service/internal/metrics"
	"progress-service/internal/user"
	"progress-service/testing/testdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_Shared(t *testing.T) {
	pg := testdb.SetupSharedPostgres(t)
	repo := user.NewRepository(pg.DB, metrics.NewMock())
	ctx := context.Background()

	t.Run("Create_DefaultsToStudent", func(t *testing.T) {
		testdb.CleanupTables(t, pg.DB, testdb.AllTables...)

		created, err := repo.Create(ctx, &user.User{Email: "ann@example.com", PasswordHash: "x"})
		require.NoError(t, err)

		assert.NotZero(t, created.ID)
		assert.Equal(t, user.RoleStudent, created.Role)
		assert.False(t, created.CreatedAt.IsZero())
	})

	t.Run("Create_DuplicateEmail", func(t *testing.T) {
		testdb.CleanupTables(t, pg.DB, testdb.AllTables...)

		_, err := repo.Create(ctx, &user.User{Email: "dup@example.com", PasswordHash: "x"})
		require.NoError(t, err)

		_, err = repo.Create(ctx, &user.User{Email: "dup@example.com", PasswordHash: "y"})
		assert.ErrorIs(t, err, user.ErrEmailExists)
	})

	t.Run("EmailIsCaseSensitive", func(t *testing.T) {
		testdb.CleanupTables(t, pg.DB, testdb.AllTables...)

		_, err := repo.Create(ctx, &user.User{Email: "Case@example.com", PasswordHash: "x"})
		require.NoError(t, err)

		_, err = repo.GetByEmail(ctx, "case@example.com")
		assert.ErrorIs(t, err, user.ErrUserNotFound)
	})

	t.Run("GetByID", func(t *testing.T) {
		testdb.CleanupTables(t, pg.DB, testdb.AllTables...)

		created, err := repo.Create(ctx, &user.User{
			Email: "teach@example.com", PasswordHash: "x", Role: user.RoleTeacher,
			FirstName: "Tina", LastName: "Teach",
		})
		require.NoError(t, err)

		found, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Tina", found.FirstName)
		assert.True(t, found.IsTeacher())

		_, err = repo.GetByID(ctx, created.ID+100)
		assert.ErrorIs(t, err, user.ErrUserNotFound)
	})
}
