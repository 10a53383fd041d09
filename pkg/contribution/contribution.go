package contribution

import (
	"github.com/shopspring/decimal"
	"github.com/tripkas/tripkas/internal/rest"
)

var ErrContributionNotFound = rest.NotFound("contribution not found")

// Contribution is what one participant owes for one expense item. IsPaid caches Paid >= Amount.
type Contribution struct {
	Id            int
	PlanId        int
	ExpenseItemId int
	ParticipantId int
	Amount        decimal.Decimal
	Paid          decimal.Decimal
	IsPaid        bool
	// MaxPay caps the participant's obligation when lower than Amount.
	MaxPay *decimal.Decimal
}

// EffectiveCap is the obligation ceiling: MaxPay when set, otherwise Amount.
func (c Contribution) EffectiveCap() decimal.Decimal {
	if c.MaxPay != nil {
		return *c.MaxPay
	}
	return c.Amount
}

func (c *Contribution) refreshPaid() {
	c.IsPaid = c.Paid.GreaterThanOrEqual(c.Amount)
}

type Filter struct {
	ExpenseItemId *int
	ParticipantId *int
}

type Payment struct {
	Amount decimal.Decimal
	Method string
	Note   string
}
