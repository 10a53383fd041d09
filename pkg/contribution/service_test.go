package contribution

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tripkas/tripkas/internal/database"
	"github.com/tripkas/tripkas/internal/event_bus"
	"github.com/tripkas/tripkas/internal/rest"
	"github.com/tripkas/tripkas/internal/utils"
	"github.com/tripkas/tripkas/pkg/payment_history"
	"github.com/tripkas/tripkas/pkg/plan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var repoStub = NewRepositoryStub()
var historyStub = payment_history.NewRepositoryStub()
var authorizer = plan.NewAuthorizerStub(plan.AccessEdit)
var clock = &utils.MockClock{FixedNow: time.Date(2026, 7, 2, 9, 30, 0, 0, time.UTC)}

var service *ServiceImpl
var bus *event_bus.EventBus

const planId = 10

func setup(t *testing.T) func() {
	authorizer.Access = plan.AccessEdit
	bus = event_bus.NewEventBus()
	history := payment_history.NewService(historyStub, authorizer, clock)
	service = NewService(repoStub, history, authorizer, bus)
	repoStub.Put(Contribution{Id: 1, PlanId: planId, ExpenseItemId: 5, ParticipantId: 7, Amount: d(300000)})
	return func() {
		t.Log("Teardown after test")
		repoStub.Cleanup()
		historyStub.Cleanup()
	}
}

func d(value int64) decimal.Decimal {
	return decimal.NewFromInt(value)
}

func assertDecimal(t *testing.T, expected int64, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, d(expected).Equal(actual), "expected %d, got %s", expected, actual)
}

func TestServiceImpl_RecordPayment(t *testing.T) {
	t.Run("should accumulate payments and write one record each", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		_, err := service.RecordPayment(context.Background(), planId, 1, Payment{Amount: d(100000), Method: "transfer"})
		require.NoError(t, err)
		c, err := service.RecordPayment(context.Background(), planId, 1, Payment{Amount: d(200000), Method: "ewallet", Note: "lunas"})

		// then
		require.NoError(t, err)
		assertDecimal(t, 300000, c.Paid)
		assert.True(t, c.IsPaid)
		records := historyStub.All()
		require.Len(t, records, 2)
		last := records[1]
		assert.Equal(t, payment_history.KindPayment, last.Kind)
		assert.Equal(t, payment_history.MethodEwallet, last.Method)
		assertDecimal(t, 100000, last.PreviousAmount)
		assertDecimal(t, 300000, last.NewAmount)
		assertDecimal(t, 200000, last.ChangeAmount)
		assert.Equal(t, 7, last.ParticipantId)
		assert.Equal(t, "lunas", last.Note)
		assert.Equal(t, clock.Now(), last.Created)
	})

	t.Run("should reject non-positive amounts and unknown methods without writing", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		_, amountErr := service.RecordPayment(context.Background(), planId, 1, Payment{Amount: d(0)})
		_, methodErr := service.RecordPayment(context.Background(), planId, 1, Payment{Amount: d(1000), Method: "crypto"})

		// then
		assert.ErrorIs(t, amountErr, rest.ErrInvalid)
		assert.ErrorIs(t, methodErr, rest.ErrInvalid)
		assert.Empty(t, historyStub.All())
	})

	t.Run("should report missing contributions", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		_, err := service.RecordPayment(context.Background(), planId, 404, Payment{Amount: d(1000)})

		// then
		assert.ErrorIs(t, err, ErrContributionNotFound)
		assert.Empty(t, historyStub.All())
	})
}

func TestServiceImpl_MarkPaid(t *testing.T) {
	t.Run("should pay the full amount with cash by default", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		c, err := service.MarkPaid(context.Background(), planId, 1, "", "")

		// then
		require.NoError(t, err)
		assertDecimal(t, 300000, c.Paid)
		assert.True(t, c.IsPaid)
		records := historyStub.All()
		require.Len(t, records, 1)
		assert.Equal(t, payment_history.MethodCash, records[0].Method)
		assertDecimal(t, 0, records[0].PreviousAmount)
		assertDecimal(t, 300000, records[0].ChangeAmount)
	})
}

func TestServiceImpl_MaxPay(t *testing.T) {
	t.Run("should record the effective cap before and after", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		capped, err := service.SetMaxPay(context.Background(), planId, 1, d(100000))
		require.NoError(t, err)
		uncapped, err := service.RemoveMaxPay(context.Background(), planId, 1)
		require.NoError(t, err)

		// then
		require.NotNil(t, capped.MaxPay)
		assertDecimal(t, 100000, *capped.MaxPay)
		assert.Nil(t, uncapped.MaxPay)
		records := historyStub.All()
		require.Len(t, records, 2)
		for _, rec := range records {
			assert.Equal(t, payment_history.KindCap, rec.Kind)
			assert.Equal(t, payment_history.MethodMaxPay, rec.Method)
		}
		assertDecimal(t, 300000, records[0].PreviousAmount)
		assertDecimal(t, 100000, records[0].NewAmount)
		assertDecimal(t, -200000, records[0].ChangeAmount)
		assertDecimal(t, 100000, records[1].PreviousAmount)
		assertDecimal(t, 300000, records[1].NewAmount)
	})

	t.Run("should reject negative caps", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		_, err := service.SetMaxPay(context.Background(), planId, 1, d(-1))

		// then
		assert.ErrorIs(t, err, rest.ErrInvalid)
	})
}

func TestServiceImpl_Adjust(t *testing.T) {
	t.Run("should change the nominal amount and refresh the paid flag", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		_, err := service.RecordPayment(context.Background(), planId, 1, Payment{Amount: d(250000)})
		require.NoError(t, err)

		// when
		c, err := service.Adjust(context.Background(), planId, 1, d(250000), "shared taxi")

		// then
		require.NoError(t, err)
		assert.True(t, c.IsPaid)
		records := historyStub.All()
		require.Len(t, records, 2)
		assert.Equal(t, payment_history.KindAdjustment, records[1].Kind)
		assert.Equal(t, payment_history.MethodManual, records[1].Method)
		assertDecimal(t, 300000, records[1].PreviousAmount)
		assertDecimal(t, 250000, records[1].NewAmount)
	})
}

func TestServiceImpl_List(t *testing.T) {
	t.Run("should not write history on reads", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		contributions, err := service.List(context.Background(), planId, Filter{})

		// then
		require.NoError(t, err)
		assert.Len(t, contributions, 1)
		assert.Empty(t, historyStub.All())
	})
}

type failingRecorder struct{}

func (failingRecorder) Record(ctx context.Context, q database.Querier, change payment_history.Change) (payment_history.Record, error) {
	return payment_history.Record{}, errors.New("history unavailable")
}

func TestServiceImpl_Atomicity(t *testing.T) {
	t.Run("should leave the contribution unchanged when history fails", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		failing := NewService(repoStub, failingRecorder{}, authorizer, bus)

		// when
		_, err := failing.MarkPaid(context.Background(), planId, 1, "cash", "")

		// then
		assert.Error(t, err)
		stored, err := repoStub.Get(context.Background(), planId, 1)
		require.NoError(t, err)
		assert.True(t, stored.Paid.IsZero())
		assert.False(t, stored.IsPaid)
	})
}

func TestServiceImpl_Events(t *testing.T) {
	t.Run("should publish one event per mutation", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		var received []event_bus.ContributionMutation
		event_bus.SubscribeTyped(bus, event_bus.ContributionChanged, func(e event_bus.EventT[event_bus.ContributionMutation]) error {
			received = append(received, e.Data)
			return nil
		})

		// when
		_, err := service.SetMaxPay(context.Background(), planId, 1, d(100000))
		require.NoError(t, err)

		// then
		assert.Equal(t, []event_bus.ContributionMutation{{PlanId: planId, ContributionId: 1, ParticipantId: 7, Kind: "cap"}}, received)
	})

	t.Run("should forbid viewers", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		authorizer.Access = plan.AccessView

		// when
		_, err := service.MarkPaid(context.Background(), planId, 1, "", "")

		// then
		assert.ErrorIs(t, err, plan.ErrForbidden)
		assert.Empty(t, historyStub.All())
	})
}
