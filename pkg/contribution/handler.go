package contribution

import (
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/tripkas/tripkas/internal/rest"
	log "github.com/sirupsen/logrus"
)

type ContributionDTO struct {
	Id            int              `json:"id"`
	ExpenseItemId int              `json:"expenseItemId"`
	ParticipantId int              `json:"participantId"`
	Amount        decimal.Decimal  `json:"amount"`
	Paid          decimal.Decimal  `json:"paid"`
	IsPaid        bool             `json:"isPaid"`
	MaxPay        *decimal.Decimal `json:"maxPay"`
}

type PaymentDTO struct {
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method"`
	Note   string          `json:"note"`
}

type MarkPaidDTO struct {
	Method string `json:"method"`
	Note   string `json:"note"`
}

type MaxPayDTO struct {
	MaxPay decimal.Decimal `json:"maxPay"`
}

type AdjustDTO struct {
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// List godoc
// @Summary List contributions of a plan
// @Tags Contribution
// @Produce json
// @Param planId path int true "Plan ID"
// @Param expenseItemId query int false "Expense item ID"
// @Param participantId query int false "Participant ID"
// @Success 200 {array} ContributionDTO
// @Router /api/plan/{planId}/contribution [get]
// @Security XUserId
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	planId, err := rest.IntVar(r, "planId")
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	var filter Filter
	for name, target := range map[string]**int{"expenseItemId": &filter.ExpenseItemId, "participantId": &filter.ParticipantId} {
		value := r.URL.Query().Get(name)
		if value == "" {
			continue
		}
		parsed, err := strconv.Atoi(value)
		if err != nil {
			rest.WriteError(w, rest.Invalid("invalid %s: %s", name, value))
			return
		}
		*target = &parsed
	}

	contributions, err := h.service.List(r.Context(), planId, filter)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	dtos := make([]ContributionDTO, 0, len(contributions))
	for _, c := range contributions {
		dtos = append(dtos, toDTO(c))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// RecordPayment godoc
// @Summary Record a payment
// @Description Adds the amount to what the participant paid and records it in the payment history
// @Tags Contribution
// @Accept json
// @Produce json
// @Param planId path int true "Plan ID"
// @Param id path int true "Contribution ID"
// @Param payment body PaymentDTO true "Payment (method: cash, transfer, ewallet or other)"
// @Success 200 {object} ContributionDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid payment"
// @Failure 404 {object} rest.ErrorResponse "Contribution not found"
// @Router /api/plan/{planId}/contribution/{id}/payment [put]
// @Security XUserId
func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	planId, contributionId, ok := pathIds(w, r)
	if !ok {
		return
	}
	var dto PaymentDTO
	if err := rest.DecodeJSON(r, &dto); err != nil {
		rest.WriteError(w, err)
		return
	}
	log.Debugf("Recording payment on contribution %d", contributionId)
	c, err := h.service.RecordPayment(r.Context(), planId, contributionId, Payment{Amount: dto.Amount, Method: dto.Method, Note: dto.Note})
	h.respond(w, c, err)
}

// MarkPaid godoc
// @Summary Mark a contribution as fully paid
// @Tags Contribution
// @Accept json
// @Produce json
// @Param planId path int true "Plan ID"
// @Param id path int true "Contribution ID"
// @Param body body MarkPaidDTO false "Payment method, defaults to cash"
// @Success 200 {object} ContributionDTO
// @Router /api/plan/{planId}/contribution/{id}/paid [put]
// @Security XUserId
func (h *Handler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	planId, contributionId, ok := pathIds(w, r)
	if !ok {
		return
	}
	var dto MarkPaidDTO
	if r.ContentLength != 0 {
		if err := rest.DecodeJSON(r, &dto); err != nil {
			rest.WriteError(w, err)
			return
		}
	}
	c, err := h.service.MarkPaid(r.Context(), planId, contributionId, dto.Method, dto.Note)
	h.respond(w, c, err)
}

// SetMaxPay godoc
// @Summary Cap what a participant pays for an item
// @Description The shortfall is spread over uncapped participants of the same collector in the settlement
// @Tags Contribution
// @Accept json
// @Produce json
// @Param planId path int true "Plan ID"
// @Param id path int true "Contribution ID"
// @Param body body MaxPayDTO true "Cap"
// @Success 200 {object} ContributionDTO
// @Router /api/plan/{planId}/contribution/{id}/maxpay [put]
// @Security XUserId
func (h *Handler) SetMaxPay(w http.ResponseWriter, r *http.Request) {
	planId, contributionId, ok := pathIds(w, r)
	if !ok {
		return
	}
	var dto MaxPayDTO
	if err := rest.DecodeJSON(r, &dto); err != nil {
		rest.WriteError(w, err)
		return
	}
	c, err := h.service.SetMaxPay(r.Context(), planId, contributionId, dto.MaxPay)
	h.respond(w, c, err)
}

// RemoveMaxPay godoc
// @Summary Remove the cap of a contribution
// @Tags Contribution
// @Produce json
// @Param planId path int true "Plan ID"
// @Param id path int true "Contribution ID"
// @Success 200 {object} ContributionDTO
// @Router /api/plan/{planId}/contribution/{id}/maxpay [delete]
// @Security XUserId
func (h *Handler) RemoveMaxPay(w http.ResponseWriter, r *http.Request) {
	planId, contributionId, ok := pathIds(w, r)
	if !ok {
		return
	}
	c, err := h.service.RemoveMaxPay(r.Context(), planId, contributionId)
	h.respond(w, c, err)
}

// Adjust godoc
// @Summary Manually change the amount owed
// @Tags Contribution
// @Accept json
// @Produce json
// @Param planId path int true "Plan ID"
// @Param id path int true "Contribution ID"
// @Param body body AdjustDTO true "New amount"
// @Success 200 {object} ContributionDTO
// @Router /api/plan/{planId}/contribution/{id}/amount [put]
// @Security XUserId
func (h *Handler) Adjust(w http.ResponseWriter, r *http.Request) {
	planId, contributionId, ok := pathIds(w, r)
	if !ok {
		return
	}
	var dto AdjustDTO
	if err := rest.DecodeJSON(r, &dto); err != nil {
		rest.WriteError(w, err)
		return
	}
	c, err := h.service.Adjust(r.Context(), planId, contributionId, dto.Amount, dto.Note)
	h.respond(w, c, err)
}

func (h *Handler) respond(w http.ResponseWriter, c Contribution, err error) {
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toDTO(c))
}

func pathIds(w http.ResponseWriter, r *http.Request) (int, int, bool) {
	planId, err := rest.IntVar(r, "planId")
	if err != nil {
		rest.WriteError(w, err)
		return 0, 0, false
	}
	contributionId, err := rest.IntVar(r, "id")
	if err != nil {
		rest.WriteError(w, err)
		return 0, 0, false
	}
	return planId, contributionId, true
}

func toDTO(c Contribution) ContributionDTO {
	return ContributionDTO{
		Id:            c.Id,
		ExpenseItemId: c.ExpenseItemId,
		ParticipantId: c.ParticipantId,
		Amount:        c.Amount,
		Paid:          c.Paid,
		IsPaid:        c.IsPaid,
		MaxPay:        c.MaxPay,
	}
}
