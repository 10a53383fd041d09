package split_bill

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tripkas/tripkas/internal/rest"
)

var (
	ErrSplitBillNotFound = rest.NotFound("split bill not found")
	ErrPaymentNotFound   = rest.NotFound("participant is not part of this split bill")
)

type Item struct {
	Name           string
	Price          decimal.Decimal
	Quantity       int
	ParticipantIds []int
}

func (i Item) total() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Payment tracks what one participant owes the payer for a bill.
type Payment struct {
	ParticipantId int
	// SubtotalShare is the participant's part of the items before tax, service and rounding.
	SubtotalShare decimal.Decimal
	ShareAmount   decimal.Decimal
	PaidAmount    decimal.Decimal
	IsPaid        bool
}

// SplitBill is a one-off bill paid by one participant and shared by item.
type SplitBill struct {
	Id                int
	PlanId            int
	Title             string
	PayerId           int
	TaxPercent        decimal.Decimal
	ServicePercent    decimal.Decimal
	RoundingIncrement decimal.Decimal
	Items             []Item
	Calculation
	Created time.Time
}

func (b SplitBill) input(previous []Payment) CalculationInput {
	return CalculationInput{
		PayerId:           b.PayerId,
		TaxPercent:        b.TaxPercent,
		ServicePercent:    b.ServicePercent,
		RoundingIncrement: b.RoundingIncrement,
		Items:             b.Items,
		Previous:          previous,
	}
}

func (b SplitBill) payment(participantId int) (Payment, bool) {
	for _, p := range b.Payments {
		if p.ParticipantId == participantId {
			return p, true
		}
	}
	return Payment{}, false
}
