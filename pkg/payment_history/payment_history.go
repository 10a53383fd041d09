package payment_history

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tripkas/tripkas/internal/rest"
)

type Kind string

const (
	KindPayment    Kind = "payment"
	KindAdjustment Kind = "adjustment"
	KindCap        Kind = "cap"
)

type Method string

const (
	MethodCash     Method = "cash"
	MethodTransfer Method = "transfer"
	MethodEwallet  Method = "ewallet"
	MethodOther    Method = "other"
	MethodMaxPay   Method = "max_pay"
	MethodManual   Method = "manual"
)

// ParsePaymentMethod validates a method chosen by the user for a payment. Empty defaults to cash.
func ParsePaymentMethod(value string) (Method, error) {
	switch m := Method(value); m {
	case "":
		return MethodCash, nil
	case MethodCash, MethodTransfer, MethodEwallet, MethodOther:
		return m, nil
	default:
		return "", rest.Invalid("invalid payment method %q", value)
	}
}

// Record is one immutable entry of the audit trail. ContributionId is nil once the
// contribution has been removed.
type Record struct {
	Id             int
	PlanId         int
	ContributionId *int
	ParticipantId  int
	Kind           Kind
	Method         Method
	PreviousAmount decimal.Decimal
	NewAmount      decimal.Decimal
	ChangeAmount   decimal.Decimal
	Note           string
	Created        time.Time
}

// Change describes a contribution mutation to be recorded.
type Change struct {
	PlanId         int
	ContributionId int
	ParticipantId  int
	Kind           Kind
	Method         Method
	PreviousAmount decimal.Decimal
	NewAmount      decimal.Decimal
	Note           string
}

func newRecord(c Change, at time.Time) Record {
	contributionId := c.ContributionId
	return Record{
		PlanId:         c.PlanId,
		ContributionId: &contributionId,
		ParticipantId:  c.ParticipantId,
		Kind:           c.Kind,
		Method:         c.Method,
		PreviousAmount: c.PreviousAmount,
		NewAmount:      c.NewAmount,
		ChangeAmount:   c.NewAmount.Sub(c.PreviousAmount),
		Note:           c.Note,
		Created:        at,
	}
}

// Filter narrows a listing. Nil fields are not applied.
type Filter struct {
	ContributionId *int
	ParticipantId  *int
}
