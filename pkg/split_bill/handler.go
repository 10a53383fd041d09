package split_bill

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tripkas/tripkas/internal/rest"
	"github.com/tripkas/tripkas/pkg/participant"
	log "github.com/sirupsen/logrus"
)

type ItemDTO struct {
	Name         string            `json:"name"`
	Price        decimal.Decimal   `json:"price"`
	Quantity     int               `json:"quantity"`
	Participants []participant.Ref `json:"participants"`
}

type PaymentDTO struct {
	ParticipantId int             `json:"participantId"`
	SubtotalShare decimal.Decimal `json:"subtotalShare"`
	ShareAmount   decimal.Decimal `json:"shareAmount"`
	PaidAmount    decimal.Decimal `json:"paidAmount"`
	IsPaid        bool            `json:"isPaid"`
}

// SplitBillRequestDTO accepts the payer and item participants either as ids or as participant objects.
type SplitBillRequestDTO struct {
	Title             string          `json:"title"`
	Payer             participant.Ref `json:"payer"`
	TaxPercent        decimal.Decimal `json:"taxPercent"`
	ServicePercent    decimal.Decimal `json:"servicePercent"`
	RoundingIncrement decimal.Decimal `json:"roundingIncrement"`
	Items             []ItemDTO       `json:"items"`
}

type SplitBillDTO struct {
	Id                int             `json:"id,omitempty"`
	Title             string          `json:"title"`
	PayerId           int             `json:"payerId"`
	TaxPercent        decimal.Decimal `json:"taxPercent"`
	ServicePercent    decimal.Decimal `json:"servicePercent"`
	RoundingIncrement decimal.Decimal `json:"roundingIncrement"`
	Items             []ItemDTO       `json:"items"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	Tax               decimal.Decimal `json:"tax"`
	Service           decimal.Decimal `json:"service"`
	RawTotal          decimal.Decimal `json:"rawTotal"`
	RoundedTotal      decimal.Decimal `json:"roundedTotal"`
	RoundingDiff      decimal.Decimal `json:"roundingDiff"`
	Payments          []PaymentDTO    `json:"payments"`
	Created           *time.Time      `json:"created,omitempty"`
}

type RecordPaymentDTO struct {
	PaidAmount decimal.Decimal `json:"paidAmount"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Preview godoc
// @Summary Calculate a split bill without saving it
// @Tags SplitBill
// @Accept json
// @Produce json
// @Param planId path int true "Plan ID"
// @Param bill body SplitBillRequestDTO true "Bill"
// @Success 200 {object} SplitBillDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid bill"
// @Router /api/plan/{planId}/splitbill/preview [post]
// @Security XUserId
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	bill, err := decodeBill(r, 0)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	preview, err := h.service.Preview(r.Context(), bill)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toDTO(preview))
}

// List godoc
// @Summary List split bills of a plan
// @Tags SplitBill
// @Produce json
// @Param planId path int true "Plan ID"
// @Success 200 {array} SplitBillDTO
// @Router /api/plan/{planId}/splitbill [get]
// @Security XUserId
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	planId, err := rest.IntVar(r, "planId")
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	bills, err := h.service.List(r.Context(), planId)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	result := make([]SplitBillDTO, 0, len(bills))
	for _, b := range bills {
		result = append(result, toDTO(b))
	}
	rest.WriteJSON(w, http.StatusOK, result)
}

// Create godoc
// @Summary Create a split bill
// @Tags SplitBill
// @Accept json
// @Produce json
// @Param planId path int true "Plan ID"
// @Param bill body SplitBillRequestDTO true "Bill"
// @Success 201 {object} SplitBillDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid bill"
// @Router /api/plan/{planId}/splitbill [post]
// @Security XUserId
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	bill, err := decodeBill(r, 0)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	log.Debugf("Creating split bill %q in plan %d", bill.Title, bill.PlanId)
	created, err := h.service.Create(r.Context(), bill)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, toDTO(created))
}

// Get godoc
// @Summary Get a split bill
// @Tags SplitBill
// @Produce json
// @Param planId path int true "Plan ID"
// @Param billId path int true "Split bill ID"
// @Success 200 {object} SplitBillDTO
// @Failure 404 {object} rest.ErrorResponse "Split bill not found"
// @Router /api/plan/{planId}/splitbill/{billId} [get]
// @Security XUserId
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	planId, billId, err := billVars(r)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	bill, err := h.service.Get(r.Context(), planId, billId)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toDTO(bill))
}

// Update godoc
// @Summary Update a split bill
// @Description Recalculates the bill. Paid amounts of remaining participants are kept.
// @Tags SplitBill
// @Accept json
// @Produce json
// @Param planId path int true "Plan ID"
// @Param billId path int true "Split bill ID"
// @Param bill body SplitBillRequestDTO true "Bill"
// @Success 200 {object} SplitBillDTO
// @Router /api/plan/{planId}/splitbill/{billId} [put]
// @Security XUserId
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	billId, err := rest.IntVar(r, "billId")
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	bill, err := decodeBill(r, billId)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	updated, err := h.service.Update(r.Context(), bill)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toDTO(updated))
}

// Delete godoc
// @Summary Delete a split bill
// @Tags SplitBill
// @Param planId path int true "Plan ID"
// @Param billId path int true "Split bill ID"
// @Success 204
// @Router /api/plan/{planId}/splitbill/{billId} [delete]
// @Security XUserId
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	planId, billId, err := billVars(r)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), planId, billId); err != nil {
		rest.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RecordPayment godoc
// @Summary Record what a participant paid towards a split bill
// @Tags SplitBill
// @Accept json
// @Produce json
// @Param planId path int true "Plan ID"
// @Param billId path int true "Split bill ID"
// @Param participantId path int true "Participant ID"
// @Param payment body RecordPaymentDTO true "Paid amount"
// @Success 200 {object} SplitBillDTO
// @Router /api/plan/{planId}/splitbill/{billId}/payment/{participantId} [put]
// @Security XUserId
func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	planId, billId, err := billVars(r)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	participantId, err := rest.IntVar(r, "participantId")
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	var dto RecordPaymentDTO
	if err := rest.DecodeJSON(r, &dto); err != nil {
		rest.WriteError(w, err)
		return
	}
	bill, err := h.service.RecordPayment(r.Context(), planId, billId, participantId, dto.PaidAmount)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toDTO(bill))
}

func billVars(r *http.Request) (int, int, error) {
	planId, err := rest.IntVar(r, "planId")
	if err != nil {
		return 0, 0, err
	}
	billId, err := rest.IntVar(r, "billId")
	if err != nil {
		return 0, 0, err
	}
	return planId, billId, nil
}

func decodeBill(r *http.Request, billId int) (SplitBill, error) {
	planId, err := rest.IntVar(r, "planId")
	if err != nil {
		return SplitBill{}, err
	}
	var dto SplitBillRequestDTO
	if err := rest.DecodeJSON(r, &dto); err != nil {
		return SplitBill{}, err
	}
	if dto.Payer.IsZero() {
		return SplitBill{}, rest.Invalid("payer is required")
	}
	items := make([]Item, 0, len(dto.Items))
	for _, item := range dto.Items {
		ids := make([]int, 0, len(item.Participants))
		for _, ref := range item.Participants {
			ids = append(ids, ref.Id())
		}
		items = append(items, Item{Name: item.Name, Price: item.Price, Quantity: item.Quantity, ParticipantIds: ids})
	}
	return SplitBill{
		Id:                billId,
		PlanId:            planId,
		Title:             dto.Title,
		PayerId:           dto.Payer.Id(),
		TaxPercent:        dto.TaxPercent,
		ServicePercent:    dto.ServicePercent,
		RoundingIncrement: dto.RoundingIncrement,
		Items:             items,
	}, nil
}

func toDTO(b SplitBill) SplitBillDTO {
	items := make([]ItemDTO, 0, len(b.Items))
	for _, item := range b.Items {
		refs := make([]participant.Ref, 0, len(item.ParticipantIds))
		for _, id := range item.ParticipantIds {
			refs = append(refs, participant.RefById(id))
		}
		items = append(items, ItemDTO{Name: item.Name, Price: item.Price, Quantity: item.Quantity, Participants: refs})
	}
	payments := make([]PaymentDTO, 0, len(b.Payments))
	for _, p := range b.Payments {
		payments = append(payments, PaymentDTO{
			ParticipantId: p.ParticipantId,
			SubtotalShare: p.SubtotalShare,
			ShareAmount:   p.ShareAmount,
			PaidAmount:    p.PaidAmount,
			IsPaid:        p.IsPaid,
		})
	}
	dto := SplitBillDTO{
		Id:                b.Id,
		Title:             b.Title,
		PayerId:           b.PayerId,
		TaxPercent:        b.TaxPercent,
		ServicePercent:    b.ServicePercent,
		RoundingIncrement: b.RoundingIncrement,
		Items:             items,
		Subtotal:          b.Subtotal,
		Tax:               b.Tax,
		Service:           b.Service,
		RawTotal:          b.RawTotal,
		RoundedTotal:      b.RoundedTotal,
		RoundingDiff:      b.RoundingDiff,
		Payments:          payments,
	}
	if !b.Created.IsZero() {
		created := b.Created
		dto.Created = &created
	}
	return dto
}
