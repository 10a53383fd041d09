package expense

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/tripkas/tripkas/internal/rest"
	"github.com/tripkas/tripkas/pkg/participant"
	"github.com/tripkas/tripkas/pkg/plan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var repoStub = NewRepositoryStub()
var participantsStub = participant.NewRepositoryStub()
var authorizer = plan.NewAuthorizerStub(plan.AccessEdit)

var service *ServiceImpl

const planId = 10

func setup(t *testing.T) (func(), []participant.Participant) {
	authorizer.Access = plan.AccessEdit
	service = NewService(repoStub, participantsStub, authorizer)
	var roster []participant.Participant
	for _, name := range []string{"Ayu", "Budi", "Citra"} {
		p, err := participantsStub.CreateParticipant(context.Background(), participant.Participant{PlanId: planId, Name: name})
		require.NoError(t, err)
		roster = append(roster, p)
	}
	return func() {
		t.Log("Teardown after test")
		repoStub.Cleanup()
		participantsStub.Cleanup()
	}, roster
}

func refs(participants ...participant.Participant) []participant.Ref {
	result := make([]participant.Ref, 0, len(participants))
	for _, p := range participants {
		result = append(result, participant.RefById(p.Id))
	}
	return result
}

func amountsByParticipant(itemId int) map[int]decimal.Decimal {
	result := map[int]decimal.Decimal{}
	for _, sh := range repoStub.shares[itemId] {
		result[sh.ParticipantId] = sh.Amount
	}
	return result
}

func TestServiceImpl_CreateItem(t *testing.T) {
	t.Run("should split the total evenly across participants", func(t *testing.T) {
		teardown, roster := setup(t)
		defer teardown()

		// when
		item, err := service.CreateItem(context.Background(), ItemInput{
			PlanId:       planId,
			Name:         "Villa",
			Price:        decimal.NewFromInt(300000),
			Quantity:     3,
			Collector:    participant.RefById(roster[0].Id),
			Participants: refs(roster...),
		})

		// then
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(900000).Equal(item.Total))
		assert.Equal(t, []int{roster[0].Id, roster[1].Id, roster[2].Id}, item.ParticipantIds)
		for _, amount := range amountsByParticipant(item.Id) {
			assert.True(t, decimal.NewFromInt(300000).Equal(amount), amount.String())
		}
	})

	t.Run("should round each share to hundreds", func(t *testing.T) {
		teardown, roster := setup(t)
		defer teardown()

		// when
		item, err := service.CreateItem(context.Background(), ItemInput{
			PlanId:       planId,
			Name:         "Boat",
			Price:        decimal.NewFromInt(1000000),
			Quantity:     1,
			Collector:    participant.RefTo(roster[1]),
			Participants: refs(roster...),
		})

		// then
		require.NoError(t, err)
		for _, amount := range amountsByParticipant(item.Id) {
			assert.True(t, decimal.NewFromInt(333300).Equal(amount), amount.String())
		}
	})

	t.Run("should reject invalid input", func(t *testing.T) {
		teardown, roster := setup(t)
		defer teardown()

		valid := ItemInput{
			PlanId:       planId,
			Name:         "Villa",
			Price:        decimal.NewFromInt(100000),
			Quantity:     1,
			Collector:    participant.RefById(roster[0].Id),
			Participants: refs(roster[0]),
		}
		missingCategory := 404
		tests := []struct {
			name   string
			modify func(in *ItemInput)
		}{
			{name: "empty name", modify: func(in *ItemInput) { in.Name = " " }},
			{name: "zero price", modify: func(in *ItemInput) { in.Price = decimal.Zero }},
			{name: "zero quantity", modify: func(in *ItemInput) { in.Quantity = 0 }},
			{name: "no participants", modify: func(in *ItemInput) { in.Participants = nil }},
			{name: "no collector", modify: func(in *ItemInput) { in.Collector = participant.Ref{} }},
			{name: "collector outside plan", modify: func(in *ItemInput) { in.Collector = participant.RefById(999) }},
			{name: "participant outside plan", modify: func(in *ItemInput) { in.Participants = []participant.Ref{participant.RefById(999)} }},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				input := valid
				tt.modify(&input)

				_, err := service.CreateItem(context.Background(), input)

				assert.ErrorIs(t, err, rest.ErrInvalid)
			})
		}

		t.Run("unknown category", func(t *testing.T) {
			input := valid
			input.CategoryId = &missingCategory

			_, err := service.CreateItem(context.Background(), input)

			assert.ErrorIs(t, err, ErrCategoryNotFound)
		})
	})

	t.Run("should forbid viewers", func(t *testing.T) {
		teardown, roster := setup(t)
		defer teardown()

		// given
		authorizer.Access = plan.AccessView

		// when
		_, err := service.CreateItem(context.Background(), ItemInput{
			PlanId:       planId,
			Name:         "Villa",
			Price:        decimal.NewFromInt(100000),
			Quantity:     1,
			Collector:    participant.RefById(roster[0].Id),
			Participants: refs(roster...),
		})

		// then
		assert.ErrorIs(t, err, plan.ErrForbidden)
	})
}

func TestServiceImpl_UpdateItem(t *testing.T) {
	t.Run("should resync shares and keep payments of remaining participants", func(t *testing.T) {
		teardown, roster := setup(t)
		defer teardown()

		// given
		item, err := service.CreateItem(context.Background(), ItemInput{
			PlanId:       planId,
			Name:         "Villa",
			Price:        decimal.NewFromInt(900000),
			Quantity:     1,
			Collector:    participant.RefById(roster[0].Id),
			Participants: refs(roster...),
		})
		require.NoError(t, err)
		for i, sh := range repoStub.shares[item.Id] {
			if sh.ParticipantId == roster[0].Id {
				repoStub.shares[item.Id][i].Paid = decimal.NewFromInt(300000)
			}
		}

		// when
		updated, err := service.UpdateItem(context.Background(), ItemInput{
			Id:           item.Id,
			PlanId:       planId,
			Name:         "Villa",
			Price:        decimal.NewFromInt(1000000),
			Quantity:     1,
			Collector:    participant.RefById(roster[0].Id),
			Participants: refs(roster[0], roster[1]),
		})

		// then
		require.NoError(t, err)
		assert.Equal(t, []int{roster[0].Id, roster[1].Id}, updated.ParticipantIds)
		shares := repoStub.shares[item.Id]
		require.Len(t, shares, 2)
		for _, sh := range shares {
			assert.True(t, decimal.NewFromInt(500000).Equal(sh.Amount))
			if sh.ParticipantId == roster[0].Id {
				assert.True(t, decimal.NewFromInt(300000).Equal(sh.Paid))
			}
		}
	})

	t.Run("should report missing item", func(t *testing.T) {
		teardown, roster := setup(t)
		defer teardown()

		// when
		_, err := service.UpdateItem(context.Background(), ItemInput{
			Id:           404,
			PlanId:       planId,
			Name:         "Villa",
			Price:        decimal.NewFromInt(1000),
			Quantity:     1,
			Collector:    participant.RefById(roster[0].Id),
			Participants: refs(roster[0]),
		})

		// then
		assert.ErrorIs(t, err, ErrExpenseItemNotFound)
	})
}

func TestServiceImpl_Categories(t *testing.T) {
	t.Run("should detach items from a deleted category", func(t *testing.T) {
		teardown, roster := setup(t)
		defer teardown()

		// given
		category, err := service.CreateCategory(context.Background(), Category{PlanId: planId, Name: " Transport "})
		require.NoError(t, err)
		item, err := service.CreateItem(context.Background(), ItemInput{
			PlanId:       planId,
			CategoryId:   &category.Id,
			Name:         "Car rental",
			Price:        decimal.NewFromInt(500000),
			Quantity:     2,
			Collector:    participant.RefById(roster[0].Id),
			Participants: refs(roster...),
		})
		require.NoError(t, err)

		// when
		err = service.DeleteCategory(context.Background(), planId, category.Id)

		// then
		require.NoError(t, err)
		assert.Equal(t, "Transport", category.Name)
		stored, err := service.GetItem(context.Background(), planId, item.Id)
		require.NoError(t, err)
		assert.Nil(t, stored.CategoryId)
		assert.ErrorIs(t, service.DeleteCategory(context.Background(), planId, category.Id), ErrCategoryNotFound)
	})
}
