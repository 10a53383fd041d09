package expense

import (
	"context"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tripkas/tripkas/internal/money"
	"github.com/tripkas/tripkas/internal/rest"
	"github.com/tripkas/tripkas/pkg/participant"
	"github.com/tripkas/tripkas/pkg/plan"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	ListCategories(ctx context.Context, planId int) ([]Category, error)
	CreateCategory(ctx context.Context, category Category) (Category, error)
	DeleteCategory(ctx context.Context, planId int, categoryId int) error
	ListItems(ctx context.Context, planId int) ([]Item, error)
	GetItem(ctx context.Context, planId int, itemId int) (Item, error)
	// CreateItem stores the item and one contribution per participant, each owing an even share.
	CreateItem(ctx context.Context, input ItemInput) (Item, error)
	// UpdateItem stores the item and brings its contributions in line with the new participants
	// and total. Payments and caps of participants who stay are kept.
	UpdateItem(ctx context.Context, input ItemInput) (Item, error)
	DeleteItem(ctx context.Context, planId int, itemId int) error
}

type ServiceImpl struct {
	repo         Repository
	participants participant.Repository
	authorizer   plan.Authorizer
}

func NewService(repo Repository, participants participant.Repository, authorizer plan.Authorizer) *ServiceImpl {
	return &ServiceImpl{repo: repo, participants: participants, authorizer: authorizer}
}

func (s *ServiceImpl) ListCategories(ctx context.Context, planId int) ([]Category, error) {
	if err := s.authorizer.CanView(ctx, planId); err != nil {
		return nil, err
	}
	return s.repo.ListCategories(ctx, planId)
}

func (s *ServiceImpl) CreateCategory(ctx context.Context, category Category) (Category, error) {
	if err := s.authorizer.CanEdit(ctx, category.PlanId); err != nil {
		return Category{}, err
	}
	category.Name = strings.TrimSpace(category.Name)
	if category.Name == "" {
		return Category{}, rest.Invalid("category name is required")
	}
	return s.repo.CreateCategory(ctx, category)
}

func (s *ServiceImpl) DeleteCategory(ctx context.Context, planId int, categoryId int) error {
	if err := s.authorizer.CanEdit(ctx, planId); err != nil {
		return err
	}
	deleted, err := s.repo.DeleteCategory(ctx, planId, categoryId)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrCategoryNotFound
	}
	return nil
}

func (s *ServiceImpl) ListItems(ctx context.Context, planId int) ([]Item, error) {
	if err := s.authorizer.CanView(ctx, planId); err != nil {
		return nil, err
	}
	return s.repo.ListItems(ctx, planId)
}

func (s *ServiceImpl) GetItem(ctx context.Context, planId int, itemId int) (Item, error) {
	if err := s.authorizer.CanView(ctx, planId); err != nil {
		return Item{}, err
	}
	return s.repo.GetItem(ctx, planId, itemId)
}

func (s *ServiceImpl) CreateItem(ctx context.Context, input ItemInput) (Item, error) {
	if err := s.authorizer.CanEdit(ctx, input.PlanId); err != nil {
		return Item{}, err
	}
	item, err := s.prepare(ctx, input)
	if err != nil {
		return Item{}, err
	}

	var created Item
	err = s.repo.WithTransaction(ctx, func(repo Repository) error {
		created, err = repo.CreateItem(ctx, item)
		if err != nil {
			return err
		}
		return syncShares(ctx, repo, created.PlanId, created.Id, created.Total, item.ParticipantIds)
	})
	if err != nil {
		return Item{}, err
	}
	created.ParticipantIds = item.ParticipantIds
	return created, nil
}

func (s *ServiceImpl) UpdateItem(ctx context.Context, input ItemInput) (Item, error) {
	if err := s.authorizer.CanEdit(ctx, input.PlanId); err != nil {
		return Item{}, err
	}
	item, err := s.prepare(ctx, input)
	if err != nil {
		return Item{}, err
	}

	err = s.repo.WithTransaction(ctx, func(repo Repository) error {
		if _, err := repo.GetItem(ctx, item.PlanId, item.Id); err != nil {
			return err
		}
		if err := repo.UpdateItem(ctx, item); err != nil {
			return err
		}
		return syncShares(ctx, repo, item.PlanId, item.Id, item.Total, item.ParticipantIds)
	})
	if err != nil {
		return Item{}, err
	}
	return item, nil
}

func (s *ServiceImpl) DeleteItem(ctx context.Context, planId int, itemId int) error {
	if err := s.authorizer.CanEdit(ctx, planId); err != nil {
		return err
	}
	deleted, err := s.repo.DeleteItem(ctx, planId, itemId)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrExpenseItemNotFound
	}
	return nil
}

// prepare validates input, resolves its participant references against the plan roster and
// computes the total.
func (s *ServiceImpl) prepare(ctx context.Context, input ItemInput) (Item, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return Item{}, rest.Invalid("item name is required")
	}
	if !input.Price.IsPositive() {
		return Item{}, rest.Invalid("price must be greater than zero")
	}
	if input.Quantity < 1 {
		return Item{}, rest.Invalid("quantity must be at least 1")
	}
	if input.Collector.IsZero() {
		return Item{}, rest.Invalid("collector is required")
	}
	if len(input.Participants) == 0 {
		return Item{}, rest.Invalid("at least one participant is required")
	}
	if input.CategoryId != nil {
		if _, err := s.repo.GetCategory(ctx, input.PlanId, *input.CategoryId); err != nil {
			return Item{}, err
		}
	}

	participants, err := s.participants.ListParticipants(ctx, input.PlanId)
	if err != nil {
		return Item{}, err
	}
	roster := participant.NewRoster(participants)
	collector, err := participant.Resolve(roster, input.Collector)
	if err != nil {
		return Item{}, rest.Invalid("collector is not a participant of this plan")
	}
	resolved, err := participant.ResolveAll(roster, input.Participants)
	if err != nil {
		return Item{}, rest.Invalid("every participant must belong to this plan")
	}
	participantIds := make([]int, 0, len(resolved))
	for _, p := range resolved {
		participantIds = append(participantIds, p.Id)
	}
	sort.Ints(participantIds)

	return Item{
		Id:             input.Id,
		PlanId:         input.PlanId,
		CategoryId:     input.CategoryId,
		Name:           name,
		Price:          input.Price,
		Quantity:       input.Quantity,
		Total:          input.Price.Mul(decimal.NewFromInt(int64(input.Quantity))),
		CollectorId:    collector.Id,
		ParticipantIds: participantIds,
	}, nil
}

// syncShares makes the item's contributions match participantIds, each owing EvenShare of total.
// Rows of participants who stay keep their payments and caps, only the amount and paid flag change.
// Recomputed amounts are not user mutations and leave no payment history.
func syncShares(ctx context.Context, repo Repository, planId int, itemId int, total decimal.Decimal, participantIds []int) error {
	existing, err := repo.listShares(ctx, itemId)
	if err != nil {
		return err
	}
	amount := money.EvenShare(total, len(participantIds))

	wanted := make(map[int]bool, len(participantIds))
	for _, id := range participantIds {
		wanted[id] = true
	}
	kept := make(map[int]bool, len(existing))
	var removed []int
	for _, sh := range existing {
		if !wanted[sh.ParticipantId] {
			removed = append(removed, sh.Id)
			continue
		}
		kept[sh.ParticipantId] = true
		sh.Amount = amount
		if err := repo.updateShare(ctx, sh); err != nil {
			return err
		}
	}
	if err := repo.deleteShares(ctx, removed); err != nil {
		return err
	}
	for _, id := range participantIds {
		if kept[id] {
			continue
		}
		if err := repo.insertShare(ctx, planId, itemId, share{ParticipantId: id, Amount: amount}); err != nil {
			return err
		}
	}
	log.Debugf("synced contributions of item %d: %d kept, %d removed, %d added",
		itemId, len(kept), len(removed), len(participantIds)-len(kept))
	return nil
}
