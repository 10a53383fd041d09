package payment_history

import (
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tripkas/tripkas/internal/rest"
	log "github.com/sirupsen/logrus"
)

type RecordDTO struct {
	Id             int             `json:"id"`
	ContributionId *int            `json:"contributionId"`
	ParticipantId  int             `json:"participantId"`
	Kind           Kind            `json:"kind"`
	Method         Method          `json:"method"`
	PreviousAmount decimal.Decimal `json:"previousAmount"`
	NewAmount      decimal.Decimal `json:"newAmount"`
	ChangeAmount   decimal.Decimal `json:"changeAmount"`
	Note           string          `json:"note"`
	Created        time.Time       `json:"created"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// List godoc
// @Summary List payment history of a plan
// @Description Newest first, optionally filtered by contribution or participant
// @Tags PaymentHistory
// @Produce json
// @Param planId path int true "Plan ID"
// @Param contributionId query int false "Contribution ID"
// @Param participantId query int false "Participant ID"
// @Success 200 {array} RecordDTO
// @Router /api/plan/{planId}/history [get]
// @Security XUserId
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	planId, err := rest.IntVar(r, "planId")
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	log.Debugf("Listing payment history of plan %d", planId)

	var filter Filter
	if filter.ContributionId, err = optionalIntQuery(r, "contributionId"); err != nil {
		rest.WriteError(w, err)
		return
	}
	if filter.ParticipantId, err = optionalIntQuery(r, "participantId"); err != nil {
		rest.WriteError(w, err)
		return
	}

	records, err := h.service.List(r.Context(), planId, filter)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	dtos := make([]RecordDTO, 0, len(records))
	for _, rec := range records {
		dtos = append(dtos, RecordDTO{
			Id:             rec.Id,
			ContributionId: rec.ContributionId,
			ParticipantId:  rec.ParticipantId,
			Kind:           rec.Kind,
			Method:         rec.Method,
			PreviousAmount: rec.PreviousAmount,
			NewAmount:      rec.NewAmount,
			ChangeAmount:   rec.ChangeAmount,
			Note:           rec.Note,
			Created:        rec.Created,
		})
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

func optionalIntQuery(r *http.Request, name string) (*int, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return nil, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return nil, rest.Invalid("invalid %s: %s", name, value)
	}
	return &parsed, nil
}
