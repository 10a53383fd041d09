package split_bill

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tripkas/tripkas/internal/rest"
	"github.com/tripkas/tripkas/pkg/participant"
	"github.com/tripkas/tripkas/pkg/plan"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	// Preview calculates a bill without storing it.
	Preview(ctx context.Context, bill SplitBill) (SplitBill, error)
	Create(ctx context.Context, bill SplitBill) (SplitBill, error)
	// Update recalculates the bill. Paid amounts of participants still on the bill are kept.
	Update(ctx context.Context, bill SplitBill) (SplitBill, error)
	Get(ctx context.Context, planId int, billId int) (SplitBill, error)
	List(ctx context.Context, planId int) ([]SplitBill, error)
	Delete(ctx context.Context, planId int, billId int) error
	RecordPayment(ctx context.Context, planId int, billId int, participantId int, paidAmount decimal.Decimal) (SplitBill, error)
}

type ServiceImpl struct {
	repo         Repository
	participants participant.Repository
	authorizer   plan.Authorizer
}

func NewService(repo Repository, participants participant.Repository, authorizer plan.Authorizer) *ServiceImpl {
	return &ServiceImpl{repo: repo, participants: participants, authorizer: authorizer}
}

func (s *ServiceImpl) Preview(ctx context.Context, bill SplitBill) (SplitBill, error) {
	if err := s.authorizer.CanView(ctx, bill.PlanId); err != nil {
		return SplitBill{}, err
	}
	if err := s.prepare(ctx, &bill); err != nil {
		return SplitBill{}, err
	}
	bill.Calculation = Calculate(bill.input(nil))
	return bill, nil
}

func (s *ServiceImpl) Create(ctx context.Context, bill SplitBill) (SplitBill, error) {
	if err := s.authorizer.CanEdit(ctx, bill.PlanId); err != nil {
		return SplitBill{}, err
	}
	if err := s.prepare(ctx, &bill); err != nil {
		return SplitBill{}, err
	}
	bill.Calculation = Calculate(bill.input(nil))

	var created SplitBill
	err := s.repo.WithTransaction(ctx, func(repo Repository) error {
		var err error
		created, err = repo.Create(ctx, bill)
		return err
	})
	if err != nil {
		return SplitBill{}, err
	}
	log.Debugf("Created split bill %d in plan %d", created.Id, created.PlanId)
	return created, nil
}

func (s *ServiceImpl) Update(ctx context.Context, bill SplitBill) (SplitBill, error) {
	if err := s.authorizer.CanEdit(ctx, bill.PlanId); err != nil {
		return SplitBill{}, err
	}
	if err := s.prepare(ctx, &bill); err != nil {
		return SplitBill{}, err
	}

	var updated SplitBill
	err := s.repo.WithTransaction(ctx, func(repo Repository) error {
		existing, err := repo.Get(ctx, bill.PlanId, bill.Id)
		if err != nil {
			return err
		}
		bill.Calculation = Calculate(bill.input(existing.Payments))
		bill.Created = existing.Created
		if err := repo.Update(ctx, bill); err != nil {
			return err
		}
		updated = bill
		return nil
	})
	if err != nil {
		return SplitBill{}, err
	}
	return updated, nil
}

func (s *ServiceImpl) Get(ctx context.Context, planId int, billId int) (SplitBill, error) {
	if err := s.authorizer.CanView(ctx, planId); err != nil {
		return SplitBill{}, err
	}
	return s.repo.Get(ctx, planId, billId)
}

func (s *ServiceImpl) List(ctx context.Context, planId int) ([]SplitBill, error) {
	if err := s.authorizer.CanView(ctx, planId); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, planId)
}

func (s *ServiceImpl) Delete(ctx context.Context, planId int, billId int) error {
	if err := s.authorizer.CanEdit(ctx, planId); err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, planId, billId)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrSplitBillNotFound
	}
	return nil
}

func (s *ServiceImpl) RecordPayment(ctx context.Context, planId int, billId int, participantId int, paidAmount decimal.Decimal) (SplitBill, error) {
	if err := s.authorizer.CanEdit(ctx, planId); err != nil {
		return SplitBill{}, err
	}
	if paidAmount.IsNegative() {
		return SplitBill{}, rest.Invalid("paid amount must not be negative")
	}

	var result SplitBill
	err := s.repo.WithTransaction(ctx, func(repo Repository) error {
		bill, err := repo.Get(ctx, planId, billId)
		if err != nil {
			return err
		}
		if participantId == bill.PayerId {
			return rest.Invalid("the payer's share is always settled")
		}
		payment, ok := bill.payment(participantId)
		if !ok {
			return ErrPaymentNotFound
		}
		payment.PaidAmount = paidAmount
		payment.IsPaid = paidAmount.GreaterThanOrEqual(payment.ShareAmount)
		if err := repo.UpdatePayment(ctx, billId, payment); err != nil {
			return err
		}
		for i := range bill.Payments {
			if bill.Payments[i].ParticipantId == participantId {
				bill.Payments[i] = payment
			}
		}
		result = bill
		return nil
	})
	if err != nil {
		return SplitBill{}, err
	}
	return result, nil
}

// prepare validates the bill and checks that every referenced participant belongs to the plan.
func (s *ServiceImpl) prepare(ctx context.Context, bill *SplitBill) error {
	bill.Title = strings.TrimSpace(bill.Title)
	if err := validate(*bill); err != nil {
		return err
	}

	participants, err := s.participants.ListParticipants(ctx, bill.PlanId)
	if err != nil {
		return err
	}
	roster := participant.NewRoster(participants)
	if _, err := participant.Resolve(roster, participant.RefById(bill.PayerId)); err != nil {
		return rest.Invalid("payer %d is not a participant of this plan", bill.PayerId)
	}
	for i, item := range bill.Items {
		refs := make([]participant.Ref, 0, len(item.ParticipantIds))
		for _, id := range item.ParticipantIds {
			refs = append(refs, participant.RefById(id))
		}
		resolved, err := participant.ResolveAll(roster, refs)
		if err != nil {
			return rest.Invalid("item %q has participants outside this plan", item.Name)
		}
		ids := make([]int, 0, len(resolved))
		for _, p := range resolved {
			ids = append(ids, p.Id)
		}
		bill.Items[i].ParticipantIds = ids
	}
	return nil
}

func validate(bill SplitBill) error {
	if bill.Title == "" {
		return rest.Invalid("title is required")
	}
	if bill.PayerId == 0 {
		return rest.Invalid("payer is required")
	}
	if len(bill.Items) == 0 {
		return rest.Invalid("at least one item is required")
	}
	for i, item := range bill.Items {
		if strings.TrimSpace(item.Name) == "" {
			return rest.Invalid("item %d has no name", i+1)
		}
		if !item.Price.IsPositive() {
			return rest.Invalid("price of %q must be greater than zero", item.Name)
		}
		if item.Quantity < 1 {
			return rest.Invalid("quantity of %q must be at least 1", item.Name)
		}
		if len(item.ParticipantIds) == 0 {
			return rest.Invalid("item %q needs at least one participant", item.Name)
		}
	}
	if bill.TaxPercent.IsNegative() || bill.ServicePercent.IsNegative() {
		return rest.Invalid("tax and service percent must not be negative")
	}
	if bill.RoundingIncrement.IsNegative() {
		return rest.Invalid("rounding increment must not be negative")
	}
	return nil
}
