package contribution

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/tripkas/tripkas/internal/database"
	"github.com/tripkas/tripkas/internal/event_bus"
	"github.com/tripkas/tripkas/internal/rest"
	"github.com/tripkas/tripkas/pkg/payment_history"
	"github.com/tripkas/tripkas/pkg/plan"
	log "github.com/sirupsen/logrus"
)

// Service changes the payment state of contributions. Every mutation stores exactly one payment
// history record in the transaction that changes the contribution.
type Service interface {
	List(ctx context.Context, planId int, filter Filter) ([]Contribution, error)
	// RecordPayment adds a payment to what the participant already paid.
	RecordPayment(ctx context.Context, planId int, contributionId int, payment Payment) (Contribution, error)
	// MarkPaid sets Paid to the full Amount.
	MarkPaid(ctx context.Context, planId int, contributionId int, method string, note string) (Contribution, error)
	SetMaxPay(ctx context.Context, planId int, contributionId int, maxPay decimal.Decimal) (Contribution, error)
	RemoveMaxPay(ctx context.Context, planId int, contributionId int) (Contribution, error)
	// Adjust overrides the nominal Amount.
	Adjust(ctx context.Context, planId int, contributionId int, amount decimal.Decimal, note string) (Contribution, error)
}

type ServiceImpl struct {
	repo       Repository
	history    payment_history.Recorder
	authorizer plan.Authorizer
	eventBus   *event_bus.EventBus
}

func NewService(repo Repository, history payment_history.Recorder, authorizer plan.Authorizer, eventBus *event_bus.EventBus) *ServiceImpl {
	return &ServiceImpl{repo: repo, history: history, authorizer: authorizer, eventBus: eventBus}
}

func (s *ServiceImpl) List(ctx context.Context, planId int, filter Filter) ([]Contribution, error) {
	if err := s.authorizer.CanView(ctx, planId); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, planId, filter)
}

func (s *ServiceImpl) RecordPayment(ctx context.Context, planId int, contributionId int, payment Payment) (Contribution, error) {
	if !payment.Amount.IsPositive() {
		return Contribution{}, rest.Invalid("payment amount must be greater than zero")
	}
	method, err := payment_history.ParsePaymentMethod(payment.Method)
	if err != nil {
		return Contribution{}, err
	}
	return s.mutate(ctx, planId, contributionId, func(c *Contribution) payment_history.Change {
		previous := c.Paid
		c.Paid = c.Paid.Add(payment.Amount)
		return payment_history.Change{
			Kind:           payment_history.KindPayment,
			Method:         method,
			PreviousAmount: previous,
			NewAmount:      c.Paid,
			Note:           payment.Note,
		}
	})
}

func (s *ServiceImpl) MarkPaid(ctx context.Context, planId int, contributionId int, method string, note string) (Contribution, error) {
	paymentMethod, err := payment_history.ParsePaymentMethod(method)
	if err != nil {
		return Contribution{}, err
	}
	return s.mutate(ctx, planId, contributionId, func(c *Contribution) payment_history.Change {
		previous := c.Paid
		c.Paid = c.Amount
		return payment_history.Change{
			Kind:           payment_history.KindPayment,
			Method:         paymentMethod,
			PreviousAmount: previous,
			NewAmount:      c.Paid,
			Note:           note,
		}
	})
}

func (s *ServiceImpl) SetMaxPay(ctx context.Context, planId int, contributionId int, maxPay decimal.Decimal) (Contribution, error) {
	if maxPay.IsNegative() {
		return Contribution{}, rest.Invalid("max pay must not be negative")
	}
	return s.mutate(ctx, planId, contributionId, func(c *Contribution) payment_history.Change {
		previous := c.EffectiveCap()
		c.MaxPay = &maxPay
		return payment_history.Change{
			Kind:           payment_history.KindCap,
			Method:         payment_history.MethodMaxPay,
			PreviousAmount: previous,
			NewAmount:      c.EffectiveCap(),
		}
	})
}

func (s *ServiceImpl) RemoveMaxPay(ctx context.Context, planId int, contributionId int) (Contribution, error) {
	return s.mutate(ctx, planId, contributionId, func(c *Contribution) payment_history.Change {
		previous := c.EffectiveCap()
		c.MaxPay = nil
		return payment_history.Change{
			Kind:           payment_history.KindCap,
			Method:         payment_history.MethodMaxPay,
			PreviousAmount: previous,
			NewAmount:      c.EffectiveCap(),
		}
	})
}

func (s *ServiceImpl) Adjust(ctx context.Context, planId int, contributionId int, amount decimal.Decimal, note string) (Contribution, error) {
	if amount.IsNegative() {
		return Contribution{}, rest.Invalid("amount must not be negative")
	}
	return s.mutate(ctx, planId, contributionId, func(c *Contribution) payment_history.Change {
		previous := c.Amount
		c.Amount = amount
		return payment_history.Change{
			Kind:           payment_history.KindAdjustment,
			Method:         payment_history.MethodManual,
			PreviousAmount: previous,
			NewAmount:      c.Amount,
			Note:           note,
		}
	})
}

// mutate loads the contribution, applies change, refreshes IsPaid and stores the contribution and
// its history record in one transaction.
func (s *ServiceImpl) mutate(ctx context.Context, planId int, contributionId int, change func(c *Contribution) payment_history.Change) (Contribution, error) {
	if err := s.authorizer.CanEdit(ctx, planId); err != nil {
		return Contribution{}, err
	}

	var result Contribution
	var kind payment_history.Kind
	err := s.repo.WithTransaction(ctx, func(repo Repository, tx database.Querier) error {
		c, err := repo.Get(ctx, planId, contributionId)
		if err != nil {
			return err
		}
		record := change(&c)
		c.refreshPaid()
		if err := repo.Update(ctx, c); err != nil {
			return err
		}

		record.PlanId = c.PlanId
		record.ContributionId = c.Id
		record.ParticipantId = c.ParticipantId
		if _, err := s.history.Record(ctx, tx, record); err != nil {
			return err
		}
		result = c
		kind = record.Kind
		return nil
	})
	if err != nil {
		return Contribution{}, err
	}

	s.publish(ctx, result, kind)
	return result, nil
}

func (s *ServiceImpl) publish(ctx context.Context, c Contribution, kind payment_history.Kind) {
	if s.eventBus == nil {
		return
	}
	err := s.eventBus.Publish(event_bus.NewEvent(ctx, event_bus.ContributionChanged, event_bus.ContributionMutation{
		PlanId:         c.PlanId,
		ContributionId: c.Id,
		ParticipantId:  c.ParticipantId,
		Kind:           string(kind),
	}))
	if err != nil {
		log.Errorf("failed to publish contribution change %d: %v", c.Id, err)
	}
}
