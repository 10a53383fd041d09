package split_bill

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/tripkas/tripkas/internal/money"
)

const sharePrecision = 8

type CalculationInput struct {
	PayerId           int
	TaxPercent        decimal.Decimal
	ServicePercent    decimal.Decimal
	RoundingIncrement decimal.Decimal
	Items             []Item
	// Previous payments of the bill being edited. Paid amounts carry over by participant.
	Previous []Payment
}

type Calculation struct {
	Subtotal     decimal.Decimal
	Tax          decimal.Decimal
	Service      decimal.Decimal
	RawTotal     decimal.Decimal
	RoundedTotal decimal.Decimal
	RoundingDiff decimal.Decimal
	Payments     []Payment
}

// Calculate divides the bill across the participants of each item. Tax, service and the
// rounding difference are spread in proportion to every participant's item subtotal.
// The payer is always listed and settled.
func Calculate(input CalculationInput) Calculation {
	var calc Calculation
	subtotals := make(map[int]decimal.Decimal)
	for _, item := range input.Items {
		total := item.total()
		calc.Subtotal = calc.Subtotal.Add(total)

		participants := distinct(item.ParticipantIds)
		if len(participants) == 0 {
			continue
		}
		perHead := total.DivRound(decimal.NewFromInt(int64(len(participants))), sharePrecision)
		for _, id := range participants {
			subtotals[id] = subtotals[id].Add(perHead)
		}
	}

	calc.Tax = money.Percent(calc.Subtotal, input.TaxPercent)
	calc.Service = money.Percent(calc.Subtotal, input.ServicePercent)
	calc.RawTotal = calc.Subtotal.Add(calc.Tax).Add(calc.Service)
	calc.RoundedTotal = money.CeilTo(calc.RawTotal, input.RoundingIncrement)
	calc.RoundingDiff = calc.RoundedTotal.Sub(calc.RawTotal)

	multiplier := decimal.NewFromInt(1)
	if !calc.Subtotal.IsZero() {
		multiplier = calc.RoundedTotal.Div(calc.Subtotal)
	}

	if _, ok := subtotals[input.PayerId]; !ok && input.PayerId != 0 {
		subtotals[input.PayerId] = decimal.Zero
	}
	previous := make(map[int]Payment, len(input.Previous))
	for _, p := range input.Previous {
		previous[p.ParticipantId] = p
	}

	calc.Payments = make([]Payment, 0, len(subtotals))
	for id, subtotal := range subtotals {
		p := Payment{
			ParticipantId: id,
			SubtotalShare: subtotal,
			ShareAmount:   subtotal.Mul(multiplier).Round(sharePrecision),
		}
		switch prev, ok := previous[id]; {
		case id == input.PayerId:
			p.PaidAmount = p.ShareAmount
			p.IsPaid = true
		case ok:
			p.PaidAmount = prev.PaidAmount
			p.IsPaid = prev.PaidAmount.GreaterThanOrEqual(p.ShareAmount)
		}
		calc.Payments = append(calc.Payments, p)
	}
	sort.Slice(calc.Payments, func(i, j int) bool { return calc.Payments[i].ParticipantId < calc.Payments[j].ParticipantId })
	return calc
}

func distinct(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	result := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}
