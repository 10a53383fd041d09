package settlement

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/tripkas/tripkas/internal/money"
)

// Line is one contribution as seen by the engine.
type Line struct {
	CollectorId   int
	ParticipantId int
	Amount        decimal.Decimal
	Paid          decimal.Decimal
	MaxPay        *decimal.Decimal
}

// capped reports whether the line's cap lowers what is owed for it.
func (l Line) capped() bool {
	return l.MaxPay != nil && l.MaxPay.LessThan(l.Amount)
}

func (l Line) cappedAmount() decimal.Decimal {
	if l.MaxPay == nil {
		return l.Amount
	}
	return decimal.Min(*l.MaxPay, l.Amount)
}

// Balance is what a participant owes within one collector group.
type Balance struct {
	ParticipantId int
	Name          string
	// Nominal is the sum of the participant's contribution amounts.
	Nominal decimal.Decimal
	Paid    decimal.Decimal
	// Due is the obligation after max pay redistribution.
	Due         decimal.Decimal
	Outstanding decimal.Decimal
	Capped      bool
}

type Group struct {
	CollectorId     int
	CollectorName   string
	TotalAmount     decimal.Decimal
	CappedAmount    decimal.Decimal
	RemainingAmount decimal.Decimal
	PerUncapped     decimal.Decimal
	// Unassigned is the remainder nobody is charged for because every participant is capped.
	Unassigned       decimal.Decimal
	Balances         []Balance
	TotalShare       decimal.Decimal
	TotalPaid        decimal.Decimal
	TotalOutstanding decimal.Decimal
}

type View struct {
	Groups           []Group
	TotalShare       decimal.Decimal
	TotalPaid        decimal.Decimal
	TotalOutstanding decimal.Decimal
}

// Compute groups lines by collector and works out every participant's obligation.
// Capped participants owe their capped sum. When a group has capped participants the rest of the
// group total is split flat across the uncapped ones, otherwise everyone owes their nominal sum.
func Compute(lines []Line) View {
	byCollector := make(map[int][]Line)
	for _, l := range lines {
		byCollector[l.CollectorId] = append(byCollector[l.CollectorId], l)
	}
	collectorIds := make([]int, 0, len(byCollector))
	for id := range byCollector {
		collectorIds = append(collectorIds, id)
	}
	sort.Ints(collectorIds)

	view := View{Groups: make([]Group, 0, len(collectorIds))}
	for _, collectorId := range collectorIds {
		group := computeGroup(collectorId, byCollector[collectorId])
		view.TotalShare = view.TotalShare.Add(group.TotalShare)
		view.TotalPaid = view.TotalPaid.Add(group.TotalPaid)
		view.TotalOutstanding = view.TotalOutstanding.Add(group.TotalOutstanding)
		view.Groups = append(view.Groups, group)
	}
	return view
}

type participantLines struct {
	balance Balance
	capped  decimal.Decimal
}

func computeGroup(collectorId int, lines []Line) Group {
	group := Group{CollectorId: collectorId}
	participants := make(map[int]*participantLines)
	for _, l := range lines {
		p, ok := participants[l.ParticipantId]
		if !ok {
			p = &participantLines{balance: Balance{ParticipantId: l.ParticipantId}}
			participants[l.ParticipantId] = p
		}
		p.balance.Nominal = p.balance.Nominal.Add(l.Amount)
		p.balance.Paid = p.balance.Paid.Add(l.Paid)
		p.capped = p.capped.Add(l.cappedAmount())
		if l.capped() {
			p.balance.Capped = true
		}
		group.TotalAmount = group.TotalAmount.Add(l.Amount)
	}

	cappedCount := 0
	for _, p := range participants {
		if p.balance.Capped {
			cappedCount++
			group.CappedAmount = group.CappedAmount.Add(p.capped)
		}
	}
	uncappedCount := len(participants) - cappedCount
	group.RemainingAmount = group.TotalAmount.Sub(group.CappedAmount)
	// redistribution only applies once caps hold back a positive amount, a group of zero caps keeps nominal shares
	redistribute := group.CappedAmount.IsPositive()
	if redistribute {
		if uncappedCount > 0 {
			group.PerUncapped = group.RemainingAmount.DivRound(decimal.NewFromInt(int64(uncappedCount)), 2)
		} else {
			group.Unassigned = group.RemainingAmount
		}
	}

	ids := make([]int, 0, len(participants))
	for id := range participants {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	group.Balances = make([]Balance, 0, len(ids))
	for _, id := range ids {
		p := participants[id]
		b := p.balance
		switch {
		case b.Capped:
			b.Due = p.capped
		case redistribute:
			b.Due = group.PerUncapped
		default:
			b.Due = b.Nominal
		}
		b.Outstanding = money.NonNegative(b.Due.Sub(b.Paid))

		group.TotalShare = group.TotalShare.Add(b.Due)
		group.TotalPaid = group.TotalPaid.Add(b.Paid)
		group.TotalOutstanding = group.TotalOutstanding.Add(b.Outstanding)
		group.Balances = append(group.Balances, b)
	}
	return group
}

// decorate fills in display names. Unknown ids keep an empty name.
func (v *View) decorate(names map[int]string) {
	for i := range v.Groups {
		g := &v.Groups[i]
		g.CollectorName = names[g.CollectorId]
		for j := range g.Balances {
			g.Balances[j].Name = names[g.Balances[j].ParticipantId]
		}
	}
}
