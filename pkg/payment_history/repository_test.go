package payment_history

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/tripkas/tripkas/internal/database"
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

type fixture struct {
	planId         int
	participantId  int
	contributionId int
}

func setupTestRepository(t *testing.T) (context.Context, *RepositoryImpl, *pgxpool.Pool, fixture) {
	ctx := context.Background()
	db := openDb()
	t.Cleanup(func() {
		db.Close()
		err := pgContainer.Restore(ctx)
		require.NoError(t, err)
	})
	ownerId := test_utils.SeedUser(t, db, "owner")
	planId := test_utils.SeedPlan(t, db, ownerId, "Bali")
	participantId := test_utils.SeedParticipant(t, db, planId, "Ayu")
	var itemId, contributionId int
	require.NoError(t, db.QueryRow(ctx, `INSERT INTO expense_item (plan_id, name, price, quantity, total, collector_id)
		VALUES ($1, 'Villa', 300000, 1, 300000, $2) RETURNING id`, planId, participantId).Scan(&itemId))
	require.NoError(t, db.QueryRow(ctx, `INSERT INTO contribution (plan_id, expense_item_id, participant_id, amount)
		VALUES ($1, $2, $3, 300000) RETURNING id`, planId, itemId, participantId).Scan(&contributionId))
	return ctx, NewRepository(db), db, fixture{planId: planId, participantId: participantId, contributionId: contributionId}
}

func paymentRecord(f fixture, paid int64, at time.Time) Record {
	return newRecord(Change{
		PlanId:         f.planId,
		ContributionId: f.contributionId,
		ParticipantId:  f.participantId,
		Kind:           KindPayment,
		Method:         MethodTransfer,
		NewAmount:      decimal.NewFromInt(paid),
	}, at)
}

func TestRepositoryImpl_Insert(t *testing.T) {
	t.Run("should insert inside the caller's transaction", func(t *testing.T) {
		// given
		ctx, repo, db, f := setupTestRepository(t)
		at := time.Date(2026, 7, 2, 9, 30, 0, 0, time.UTC)

		// when
		err := database.WithTx(ctx, db, func(tx pgx.Tx) error {
			_, err := repo.Insert(ctx, tx, paymentRecord(f, 150000, at))
			return err
		})

		// then
		require.NoError(t, err)
		records, err := repo.List(ctx, f.planId, Filter{})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.True(t, decimal.NewFromInt(150000).Equal(records[0].ChangeAmount))
		assert.Equal(t, MethodTransfer, records[0].Method)
		assert.True(t, at.Equal(records[0].Created))
	})

	t.Run("should discard the record when the transaction rolls back", func(t *testing.T) {
		// given
		ctx, repo, db, f := setupTestRepository(t)

		// when
		err := database.WithTx(ctx, db, func(tx pgx.Tx) error {
			if _, err := repo.Insert(ctx, tx, paymentRecord(f, 150000, time.Now())); err != nil {
				return err
			}
			return assert.AnError
		})

		// then
		assert.ErrorIs(t, err, assert.AnError)
		records, err := repo.List(ctx, f.planId, Filter{})
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}

func TestRepositoryImpl_List(t *testing.T) {
	t.Run("should keep records after the contribution is removed", func(t *testing.T) {
		// given
		ctx, repo, db, f := setupTestRepository(t)
		_, err := repo.Insert(ctx, db, paymentRecord(f, 100000, time.Now()))
		require.NoError(t, err)

		// when
		_, err = db.Exec(ctx, `DELETE FROM contribution WHERE id = $1`, f.contributionId)
		require.NoError(t, err)

		// then
		records, err := repo.List(ctx, f.planId, Filter{ParticipantId: &f.participantId})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Nil(t, records[0].ContributionId)
	})

	t.Run("should filter by contribution and order newest first", func(t *testing.T) {
		// given
		ctx, repo, db, f := setupTestRepository(t)
		base := time.Date(2026, 7, 2, 9, 0, 0, 0, time.UTC)
		first, err := repo.Insert(ctx, db, paymentRecord(f, 100000, base))
		require.NoError(t, err)
		second, err := repo.Insert(ctx, db, paymentRecord(f, 200000, base.Add(time.Hour)))
		require.NoError(t, err)
		other := 999999

		// when
		records, err := repo.List(ctx, f.planId, Filter{ContributionId: &f.contributionId})
		none, noneErr := repo.List(ctx, f.planId, Filter{ContributionId: &other})

		// then
		require.NoError(t, err)
		require.NoError(t, noneErr)
		require.Len(t, records, 2)
		assert.Equal(t, second.Id, records[0].Id)
		assert.Equal(t, first.Id, records[1].Id)
		assert.Empty(t, none)
	})
}
