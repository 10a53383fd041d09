package split_bill

import (
	"context"
	"sort"
	"time"
)

type RepositoryStub struct {
	nextId int
	bills  map[int]SplitBill
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{bills: map[int]SplitBill{}}
}

func (s *RepositoryStub) Cleanup() {
	s.nextId = 0
	s.bills = map[int]SplitBill{}
}

func (s *RepositoryStub) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	snapshot := make(map[int]SplitBill, len(s.bills))
	for id, b := range s.bills {
		snapshot[id] = b
	}
	if err := fn(s); err != nil {
		s.bills = snapshot
		return err
	}
	return nil
}

func (s *RepositoryStub) List(ctx context.Context, planId int) ([]SplitBill, error) {
	result := make([]SplitBill, 0)
	for _, b := range s.bills {
		if b.PlanId == planId {
			result = append(result, b)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Id > result[j].Id })
	return result, nil
}

func (s *RepositoryStub) Get(ctx context.Context, planId int, billId int) (SplitBill, error) {
	b, ok := s.bills[billId]
	if !ok || b.PlanId != planId {
		return SplitBill{}, ErrSplitBillNotFound
	}
	b.Payments = append([]Payment(nil), b.Payments...)
	return b, nil
}

func (s *RepositoryStub) Create(ctx context.Context, bill SplitBill) (SplitBill, error) {
	s.nextId++
	bill.Id = s.nextId
	bill.Created = time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	s.bills[bill.Id] = bill
	return bill, nil
}

func (s *RepositoryStub) Update(ctx context.Context, bill SplitBill) error {
	existing, err := s.Get(ctx, bill.PlanId, bill.Id)
	if err != nil {
		return err
	}
	bill.Created = existing.Created
	s.bills[bill.Id] = bill
	return nil
}

func (s *RepositoryStub) Delete(ctx context.Context, planId int, billId int) (bool, error) {
	b, ok := s.bills[billId]
	if !ok || b.PlanId != planId {
		return false, nil
	}
	delete(s.bills, billId)
	return true, nil
}

func (s *RepositoryStub) UpdatePayment(ctx context.Context, billId int, payment Payment) error {
	b, ok := s.bills[billId]
	if !ok {
		return ErrSplitBillNotFound
	}
	payments := append([]Payment(nil), b.Payments...)
	for i, p := range payments {
		if p.ParticipantId == payment.ParticipantId {
			payments[i] = payment
			b.Payments = payments
			s.bills[billId] = b
			return nil
		}
	}
	return ErrPaymentNotFound
}
