package settlement

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/tripkas/tripkas/pkg/contribution"
	"github.com/tripkas/tripkas/pkg/expense"
	"github.com/tripkas/tripkas/pkg/participant"
	"github.com/tripkas/tripkas/pkg/plan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var participantRepo = participant.NewRepositoryStub()
var expenseRepo = expense.NewRepositoryStub()
var contributionRepo = contribution.NewRepositoryStub()
var authorizer = plan.NewAuthorizerStub(plan.AccessView)
var public = &publicStub{}
var observer = &observerStub{}

var service *ServiceImpl

const planId = 3

type publicStub struct {
	plans map[string]plan.Plan
}

func (s *publicStub) GetPublicPlan(ctx context.Context, slug string, token string) (plan.Plan, error) {
	p, ok := s.plans[slug]
	if !ok {
		return plan.Plan{}, plan.ErrPlanNotFound
	}
	if p.HasPassword && token != "valid" {
		return plan.Plan{}, plan.ErrPasswordRequired
	}
	return p, nil
}

func (s *publicStub) Unlock(ctx context.Context, slug string, password string, clientKey string) (plan.UnlockResult, error) {
	return plan.UnlockResult{}, nil
}

type observerStub struct {
	observed int
}

func (o *observerStub) ObserveSettlement(d time.Duration) {
	o.observed++
}

func setup(t *testing.T) func() {
	authorizer.Access = plan.AccessView
	public.plans = map[string]plan.Plan{
		"open":   {Id: planId},
		"locked": {Id: planId, HasPassword: true},
	}
	observer.observed = 0
	service = NewService(participantRepo, expenseRepo, contributionRepo, authorizer, public, NewCsvRenderer(), observer)
	return func() {
		t.Log("Teardown after test")
		participantRepo.Cleanup()
		expenseRepo.Cleanup()
		contributionRepo.Cleanup()
	}
}

// seedVilla stores a 900,000 villa collected by Ayu and split three ways.
func seedVilla(t *testing.T, paid [3]int64) []participant.Participant {
	ctx := context.Background()
	var people []participant.Participant
	for _, name := range []string{"Ayu", "Budi", "Citra"} {
		p, err := participantRepo.CreateParticipant(ctx, participant.Participant{PlanId: planId, Name: name})
		require.NoError(t, err)
		people = append(people, p)
	}
	item, err := expenseRepo.CreateItem(ctx, expense.Item{PlanId: planId, Name: "Villa", Price: d(900000), Quantity: 1, Total: d(900000), CollectorId: people[0].Id})
	require.NoError(t, err)
	for i, p := range people {
		contributionRepo.Put(contribution.Contribution{
			Id:            i + 1,
			PlanId:        planId,
			ExpenseItemId: item.Id,
			ParticipantId: p.Id,
			Amount:        d(300000),
			Paid:          d(paid[i]),
		})
	}
	return people
}

func TestServiceImpl_GetView(t *testing.T) {
	t.Run("should compute the view from stored contributions", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		people := seedVilla(t, [3]int64{300000, 150000, 0})

		// when
		view, err := service.GetView(context.Background(), planId)

		// then
		require.NoError(t, err)
		require.Len(t, view.Groups, 1)
		group := view.Groups[0]
		assert.Equal(t, people[0].Id, group.CollectorId)
		assert.Equal(t, "Ayu", group.CollectorName)
		assert.Equal(t, []string{"Ayu", "Budi", "Citra"}, []string{group.Balances[0].Name, group.Balances[1].Name, group.Balances[2].Name})
		assertDecimal(t, 900000, view.TotalShare)
		assertDecimal(t, 450000, view.TotalPaid)
		assertDecimal(t, 450000, view.TotalOutstanding)
		assert.Equal(t, 1, observer.observed)
	})

	t.Run("should reflect caps on the next read", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		seedVilla(t, [3]int64{0, 0, 0})
		c, err := contributionRepo.Get(context.Background(), planId, 3)
		require.NoError(t, err)
		c.MaxPay = maxPay(100000)
		require.NoError(t, contributionRepo.Update(context.Background(), c))

		// when
		view, err := service.GetView(context.Background(), planId)

		// then
		require.NoError(t, err)
		balances := view.Groups[0].Balances
		assertDecimal(t, 400000, balances[0].Due)
		assertDecimal(t, 400000, balances[1].Due)
		assertDecimal(t, 100000, balances[2].Due)
	})

	t.Run("should refuse callers without access", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		authorizer.Access = plan.AccessNone

		// when
		_, err := service.GetView(context.Background(), planId)

		// then
		assert.ErrorIs(t, err, plan.ErrForbidden)
	})
}

func TestServiceImpl_GetReport(t *testing.T) {
	t.Run("should render balances with rupiah amounts", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		seedVilla(t, [3]int64{300000, 150000, 0})

		// when
		report, err := service.GetReport(context.Background(), planId)

		// then
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(report), "\n")
		require.Len(t, lines, 6)
		assert.Equal(t, "Collector,Participant,Share,Paid,Outstanding,Capped", lines[0])
		assert.Equal(t, "Ayu,Budi,Rp 300.000,Rp 150.000,Rp 150.000,no", lines[2])
		assert.Equal(t, "Ayu,Total,Rp 900.000,Rp 450.000,Rp 450.000,", lines[4])
		assert.Equal(t, "SUM,,Rp 900.000,Rp 450.000,Rp 450.000,", lines[5])
	})
}

func TestServiceImpl_GetPublicView(t *testing.T) {
	t.Run("should compute the view of an open plan without a user", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		seedVilla(t, [3]int64{0, 0, 0})
		authorizer.Access = plan.AccessNone

		// when
		view, err := service.GetPublicView(context.Background(), "open", "")

		// then
		require.NoError(t, err)
		assertDecimal(t, 900000, view.TotalOutstanding)
	})

	t.Run("should require a token for password protected plans", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		_, withoutToken := service.GetPublicView(context.Background(), "locked", "")
		_, withToken := service.GetPublicView(context.Background(), "locked", "valid")

		// then
		assert.ErrorIs(t, withoutToken, plan.ErrPasswordRequired)
		assert.NoError(t, withToken)
	})
}
