package participant

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

func setupTestRepository(t *testing.T) (context.Context, *RepositoryImpl, *pgxpool.Pool, int) {
	ctx := context.Background()
	db := openDb()
	t.Cleanup(func() {
		db.Close()
		err := pgContainer.Restore(ctx)
		require.NoError(t, err)
	})
	ownerId := test_utils.SeedUser(t, db, "owner")
	planId := test_utils.SeedPlan(t, db, ownerId, "Bali")
	return ctx, NewRepository(db), db, planId
}

func TestRepositoryImpl_Participants(t *testing.T) {
	t.Run("should create, update and list participants of a plan", func(t *testing.T) {
		// given
		ctx, repo, db, planId := setupTestRepository(t)
		otherPlan := test_utils.SeedPlan(t, db, test_utils.SeedUser(t, db, "other"), "Lombok")
		_, err := repo.CreateParticipant(ctx, Participant{PlanId: otherPlan, Name: "Stranger"})
		require.NoError(t, err)

		// when
		ayu, err := repo.CreateParticipant(ctx, Participant{PlanId: planId, Name: "Ayu"})
		require.NoError(t, err)
		ayu.Name = "Ayu Lestari"
		_, err = repo.UpdateParticipant(ctx, ayu)
		require.NoError(t, err)
		list, err := repo.ListParticipants(ctx, planId)

		// then
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "Ayu Lestari", list[0].Name)
		_, err = repo.GetParticipant(ctx, otherPlan, ayu.Id)
		assert.ErrorIs(t, err, ErrParticipantNotFound)
	})
}

func TestRepositoryImpl_DeleteParticipant(t *testing.T) {
	t.Run("should cascade contributions of the removed participant", func(t *testing.T) {
		// given
		ctx, repo, db, planId := setupTestRepository(t)
		collector := test_utils.SeedParticipant(t, db, planId, "Ayu")
		member := test_utils.SeedParticipant(t, db, planId, "Budi")
		var itemId int
		require.NoError(t, db.QueryRow(ctx, `INSERT INTO expense_item (plan_id, name, price, quantity, total, collector_id)
			VALUES ($1, 'Villa', 600000, 1, 600000, $2) RETURNING id`, planId, collector).Scan(&itemId))
		_, err := db.Exec(ctx, `INSERT INTO contribution (plan_id, expense_item_id, participant_id, amount) VALUES ($1, $2, $3, 300000)`,
			planId, itemId, member)
		require.NoError(t, err)

		// when
		deleted, err := repo.DeleteParticipant(ctx, planId, member)

		// then
		require.NoError(t, err)
		assert.True(t, deleted)
		var count int
		require.NoError(t, db.QueryRow(ctx, `SELECT COUNT(*) FROM contribution WHERE expense_item_id = $1`, itemId).Scan(&count))
		assert.Zero(t, count)
	})

	t.Run("should refuse to delete a collector", func(t *testing.T) {
		// given
		ctx, repo, db, planId := setupTestRepository(t)
		collector := test_utils.SeedParticipant(t, db, planId, "Ayu")
		_, err := db.Exec(ctx, `INSERT INTO expense_item (plan_id, name, price, quantity, total, collector_id)
			VALUES ($1, 'Villa', 600000, 1, 600000, $2)`, planId, collector)
		require.NoError(t, err)

		// when
		deleted, err := repo.DeleteParticipant(ctx, planId, collector)

		// then
		assert.False(t, deleted)
		assert.ErrorIs(t, err, ErrParticipantInUse)
	})
}
