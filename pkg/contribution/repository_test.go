package contribution

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tripkas/tripkas/internal/database"
	"github.com/tripkas/tripkas/internal/test_utils"
	"github.com/tripkas/tripkas/internal/utils"
	"github.com/tripkas/tripkas/pkg/payment_history"
	"github.com/tripkas/tripkas/pkg/plan"
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

type dbFixture struct {
	db             *pgxpool.Pool
	planId         int
	contributionId int
	history        *payment_history.RepositoryImpl
}

func setupTestRepository(t *testing.T) (context.Context, dbFixture) {
	ctx := context.Background()
	db := openDb()
	t.Cleanup(func() {
		db.Close()
		err := pgContainer.Restore(ctx)
		require.NoError(t, err)
	})
	ownerId := test_utils.SeedUser(t, db, "owner")
	planId := test_utils.SeedPlan(t, db, ownerId, "Bali")
	ayu := test_utils.SeedParticipant(t, db, planId, "Ayu")
	var itemId, contributionId int
	require.NoError(t, db.QueryRow(ctx, `INSERT INTO expense_item (plan_id, name, price, quantity, total, collector_id)
		VALUES ($1, 'Villa', 300000, 1, 300000, $2) RETURNING id`, planId, ayu).Scan(&itemId))
	require.NoError(t, db.QueryRow(ctx, `INSERT INTO contribution (plan_id, expense_item_id, participant_id, amount)
		VALUES ($1, $2, $3, 300000) RETURNING id`, planId, itemId, ayu).Scan(&contributionId))
	return ctx, dbFixture{db: db, planId: planId, contributionId: contributionId, history: payment_history.NewRepository(db)}
}

func TestRepositoryImpl_MutationWithHistory(t *testing.T) {
	t.Run("should store the mutation and its record together", func(t *testing.T) {
		// given
		ctx, f := setupTestRepository(t)
		authorizer := plan.NewAuthorizerStub(plan.AccessEdit)
		clock := &utils.MockClock{FixedNow: time.Date(2026, 7, 2, 9, 30, 0, 0, time.UTC)}
		service := NewService(NewRepository(f.db), payment_history.NewService(f.history, authorizer, clock), authorizer, nil)

		// when
		_, err := service.SetMaxPay(ctx, f.planId, f.contributionId, d(100000))
		require.NoError(t, err)
		_, err = service.RecordPayment(ctx, f.planId, f.contributionId, Payment{Amount: d(100000), Method: "cash"})
		require.NoError(t, err)

		// then
		stored, err := NewRepository(f.db).Get(ctx, f.planId, f.contributionId)
		require.NoError(t, err)
		assertDecimal(t, 100000, stored.Paid)
		require.NotNil(t, stored.MaxPay)
		assertDecimal(t, 100000, *stored.MaxPay)
		assert.False(t, stored.IsPaid)
		records, err := f.history.List(ctx, f.planId, payment_history.Filter{ContributionId: &f.contributionId})
		require.NoError(t, err)
		assert.Len(t, records, 2)
	})

	t.Run("should roll back the contribution when the record cannot be written", func(t *testing.T) {
		// given
		ctx, f := setupTestRepository(t)
		repo := NewRepository(f.db)

		// when
		err := repo.WithTransaction(ctx, func(tx Repository, q database.Querier) error {
			c, err := tx.Get(ctx, f.planId, f.contributionId)
			if err != nil {
				return err
			}
			c.Paid = c.Amount
			c.refreshPaid()
			if err := tx.Update(ctx, c); err != nil {
				return err
			}
			return errors.New("history insert failed")
		})

		// then
		assert.Error(t, err)
		stored, err := repo.Get(ctx, f.planId, f.contributionId)
		require.NoError(t, err)
		assert.True(t, stored.Paid.IsZero())
		assert.False(t, stored.IsPaid)
	})
}

func TestRepositoryImpl_List(t *testing.T) {
	t.Run("should filter by participant", func(t *testing.T) {
		// given
		ctx, f := setupTestRepository(t)
		repo := NewRepository(f.db)
		stored, err := repo.Get(ctx, f.planId, f.contributionId)
		require.NoError(t, err)
		other := stored.ParticipantId + 1000

		// when
		mine, err := repo.List(ctx, f.planId, Filter{ParticipantId: &stored.ParticipantId})
		require.NoError(t, err)
		none, err := repo.List(ctx, f.planId, Filter{ParticipantId: &other})
		require.NoError(t, err)

		// then
		assert.Len(t, mine, 1)
		assert.Empty(t, none)
	})
}
