package payment_history

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tripkas/tripkas/internal/rest"
	"github.com/tripkas/tripkas/internal/utils"
	"github.com/tripkas/tripkas/pkg/plan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var repoStub = NewRepositoryStub()
var authorizer = plan.NewAuthorizerStub(plan.AccessView)
var clock = &utils.MockClock{FixedNow: time.Date(2026, 7, 2, 9, 30, 0, 0, time.UTC)}

var service *ServiceImpl

func setup(t *testing.T) func() {
	authorizer.Access = plan.AccessView
	service = NewService(repoStub, authorizer, clock)
	return func() {
		t.Log("Teardown after test")
		repoStub.Cleanup()
	}
}

func TestServiceImpl_Record(t *testing.T) {
	t.Run("should compute the change and stamp the record", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		rec, err := service.Record(context.Background(), nil, Change{
			PlanId:         1,
			ContributionId: 7,
			ParticipantId:  3,
			Kind:           KindCap,
			Method:         MethodMaxPay,
			PreviousAmount: decimal.NewFromInt(300000),
			NewAmount:      decimal.NewFromInt(100000),
		})

		// then
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(-200000).Equal(rec.ChangeAmount))
		assert.Equal(t, clock.Now(), rec.Created)
		assert.Equal(t, 7, *rec.ContributionId)
		assert.Len(t, repoStub.All(), 1)
	})
}

func TestServiceImpl_List(t *testing.T) {
	t.Run("should filter by participant without writing", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		for _, participantId := range []int{1, 2, 1} {
			_, err := service.Record(context.Background(), nil, Change{
				PlanId:        1,
				ParticipantId: participantId,
				Kind:          KindPayment,
				Method:        MethodCash,
				NewAmount:     decimal.NewFromInt(1000),
			})
			require.NoError(t, err)
		}
		participantId := 1

		// when
		records, err := service.List(context.Background(), 1, Filter{ParticipantId: &participantId})

		// then
		require.NoError(t, err)
		assert.Len(t, records, 2)
		assert.Greater(t, records[0].Id, records[1].Id)
		assert.Len(t, repoStub.All(), 3)
	})

	t.Run("should require view access", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		authorizer.Access = plan.AccessNone

		// when
		_, err := service.List(context.Background(), 1, Filter{})

		// then
		assert.ErrorIs(t, err, plan.ErrForbidden)
	})
}

func TestParsePaymentMethod(t *testing.T) {
	method, err := ParsePaymentMethod("")
	require.NoError(t, err)
	assert.Equal(t, MethodCash, method)

	method, err = ParsePaymentMethod("ewallet")
	require.NoError(t, err)
	assert.Equal(t, MethodEwallet, method)

	_, err = ParsePaymentMethod("max_pay")
	assert.ErrorIs(t, err, rest.ErrInvalid)
}
