package expense

import (
	"github.com/shopspring/decimal"
	"github.com/tripkas/tripkas/internal/rest"
	"github.com/tripkas/tripkas/pkg/participant"
)

var (
	ErrCategoryNotFound    = rest.NotFound("expense category not found")
	ErrExpenseItemNotFound = rest.NotFound("expense item not found")
)

type Category struct {
	Id     int
	PlanId int
	Name   string
}

// Item is something bought for the trip. Total is stored and refreshed on every edit.
// ParticipantIds are the participants splitting it, one contribution each.
type Item struct {
	Id             int
	PlanId         int
	CategoryId     *int
	Name           string
	Price          decimal.Decimal
	Quantity       int
	Total          decimal.Decimal
	CollectorId    int
	ParticipantIds []int
}

// ItemInput is an item as sent by clients, with participant references still unresolved.
type ItemInput struct {
	Id           int
	PlanId       int
	CategoryId   *int
	Name         string
	Price        decimal.Decimal
	Quantity     int
	Collector    participant.Ref
	Participants []participant.Ref
}

// share is the part of a contribution row the expense sync reads and writes.
type share struct {
	Id            int
	ParticipantId int
	Amount        decimal.Decimal
	Paid          decimal.Decimal
}
