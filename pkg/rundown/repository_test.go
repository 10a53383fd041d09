package rundown

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tripkas/tripkas/internal/test_utils"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

var pgContainer *postgres.PostgresContainer
var openDb func() *pgxpool.Pool

func TestMain(m *testing.M) {
	pgContainer, openDb = test_utils.TestWithDB()
	defer func() {
		if err := testcontainers.TerminateContainer(pgContainer); err != nil {
			log.Errorf("failed to terminate container: %s", err)
		}
	}()
	code := m.Run()
	os.Exit(code)
}

func setupTestRepository(t *testing.T) (context.Context, *RepositoryImpl, int) {
	ctx := context.Background()
	db := openDb()
	t.Cleanup(func() {
		db.Close()
		err := pgContainer.Restore(ctx)
		require.NoError(t, err)
	})
	ownerId := test_utils.SeedUser(t, db, "owner")
	planId := test_utils.SeedPlan(t, db, ownerId, "Flores")
	return ctx, NewRepository(db), planId
}

func TestRepositoryImpl_CreateAndList(t *testing.T) {
	t.Run("should list entries ordered by day and time", func(t *testing.T) {
		// given
		ctx, repo, planId := setupTestRepository(t)
		_, err := repo.Create(ctx, Entry{PlanId: planId, Day: day(18), StartTime: "06:00", Title: "Kelimutu"})
		require.NoError(t, err)
		_, err = repo.Create(ctx, Entry{PlanId: planId, Day: day(17), Title: "Arrive in Ende", Location: "Ende"})
		require.NoError(t, err)

		// when
		entries, err := repo.List(ctx, planId)

		// then
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "Arrive in Ende", entries[0].Title)
		assert.Equal(t, "Ende", entries[0].Location)
		assert.True(t, day(17).Equal(entries[0].Day))
		assert.Equal(t, "06:00", entries[1].StartTime)
		assert.Nil(t, entries[1].CalendarEventId)
	})
}

func TestRepositoryImpl_Update(t *testing.T) {
	t.Run("should keep the calendar event id", func(t *testing.T) {
		// given
		ctx, repo, planId := setupTestRepository(t)
		created, err := repo.Create(ctx, Entry{PlanId: planId, Day: day(17), Title: "Kelimutu"})
		require.NoError(t, err)
		require.NoError(t, repo.SetCalendarEventId(ctx, planId, created.Id, "evt-1"))

		// when
		created.Title = "Kelimutu lakes"
		updated, err := repo.Update(ctx, created)

		// then
		require.NoError(t, err)
		assert.Equal(t, "Kelimutu lakes", updated.Title)
		require.NotNil(t, updated.CalendarEventId)
		assert.Equal(t, "evt-1", *updated.CalendarEventId)
	})

	t.Run("should not update an entry of another plan", func(t *testing.T) {
		ctx, repo, planId := setupTestRepository(t)
		created, err := repo.Create(ctx, Entry{PlanId: planId, Day: day(17), Title: "Kelimutu"})
		require.NoError(t, err)

		created.PlanId = planId + 100
		_, err = repo.Update(ctx, created)

		assert.ErrorIs(t, err, ErrEntryNotFound)
	})
}

func TestRepositoryImpl_Delete(t *testing.T) {
	t.Run("should delete once", func(t *testing.T) {
		ctx, repo, planId := setupTestRepository(t)
		created, err := repo.Create(ctx, Entry{PlanId: planId, Day: day(17), Title: "Kelimutu"})
		require.NoError(t, err)

		first, err := repo.Delete(ctx, planId, created.Id)
		require.NoError(t, err)
		second, err := repo.Delete(ctx, planId, created.Id)
		require.NoError(t, err)

		assert.True(t, first)
		assert.False(t, second)
	})
}
