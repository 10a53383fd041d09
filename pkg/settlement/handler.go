package settlement

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/tripkas/tripkas/internal/rest"
	"github.com/tripkas/tripkas/pkg/plan"
	log "github.com/sirupsen/logrus"
)

type BalanceDTO struct {
	ParticipantId   int             `json:"participantId"`
	Name            string          `json:"name"`
	TotalIuran      decimal.Decimal `json:"totalIuran"`
	TotalPaid       decimal.Decimal `json:"totalPaid"`
	TotalHarusBayar decimal.Decimal `json:"totalHarusBayar"`
	Kurang          decimal.Decimal `json:"kurang"`
	IsCapped        bool            `json:"isCapped"`
}

type GroupDTO struct {
	CollectorId     int             `json:"collectorId"`
	CollectorName   string          `json:"collectorName"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	CappedAmount    decimal.Decimal `json:"cappedAmount"`
	RemainingAmount decimal.Decimal `json:"remainingAmount"`
	PerUncapped     decimal.Decimal `json:"perUncapped"`
	Unassigned      decimal.Decimal `json:"unassigned"`
	Participants    []BalanceDTO    `json:"participants"`
	TotalShare      decimal.Decimal `json:"totalShare"`
	TotalPaid       decimal.Decimal `json:"totalPaid"`
	TotalKurang     decimal.Decimal `json:"totalKurang"`
}

type ViewDTO struct {
	Groups      []GroupDTO      `json:"groups"`
	TotalShare  decimal.Decimal `json:"totalShare"`
	TotalPaid   decimal.Decimal `json:"totalPaid"`
	TotalKurang decimal.Decimal `json:"totalKurang"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetView godoc
// @Summary Get the settlement of a plan
// @Description Outstanding balances per collector after max pay redistribution
// @Tags Settlement
// @Produce json
// @Param planId path int true "Plan ID"
// @Success 200 {object} ViewDTO
// @Failure 403 {object} rest.ErrorResponse "No access to the plan"
// @Router /api/plan/{planId}/settlement [get]
// @Security XUserId
func (h *Handler) GetView(w http.ResponseWriter, r *http.Request) {
	planId, err := rest.IntVar(r, "planId")
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	log.Debugf("Computing settlement of plan %d", planId)
	view, err := h.service.GetView(r.Context(), planId)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toDTO(view))
}

// GetReport godoc
// @Summary Download the outstanding balances of a plan
// @Tags Settlement
// @Produce text/csv
// @Param planId path int true "Plan ID"
// @Success 200 {string} string "CSV report"
// @Router /api/plan/{planId}/settlement/report.csv [get]
// @Security XUserId
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	planId, err := rest.IntVar(r, "planId")
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	report, err := h.service.GetReport(r.Context(), planId)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"settlement-%d.csv\"", planId))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(report)); err != nil {
		log.Errorf("failed to write settlement report: %v", err)
	}
}

// GetPublicView godoc
// @Summary Get the settlement of a shared plan
// @Tags Public
// @Produce json
// @Param slug path string true "Share slug"
// @Param X-Plan-Token header string false "Access token for password protected plans"
// @Success 200 {object} ViewDTO
// @Failure 401 {object} rest.ErrorResponse "Password required"
// @Failure 404 {object} rest.ErrorResponse "Plan not found"
// @Router /api/public/{slug}/settlement [get]
func (h *Handler) GetPublicView(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	view, err := h.service.GetPublicView(r.Context(), slug, r.Header.Get(plan.TokenHeader))
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toDTO(view))
}

func toDTO(view View) ViewDTO {
	groups := make([]GroupDTO, 0, len(view.Groups))
	for _, g := range view.Groups {
		balances := make([]BalanceDTO, 0, len(g.Balances))
		for _, b := range g.Balances {
			balances = append(balances, BalanceDTO{
				ParticipantId:   b.ParticipantId,
				Name:            b.Name,
				TotalIuran:      b.Nominal,
				TotalPaid:       b.Paid,
				TotalHarusBayar: b.Due,
				Kurang:          b.Outstanding,
				IsCapped:        b.Capped,
			})
		}
		groups = append(groups, GroupDTO{
			CollectorId:     g.CollectorId,
			CollectorName:   g.CollectorName,
			TotalAmount:     g.TotalAmount,
			CappedAmount:    g.CappedAmount,
			RemainingAmount: g.RemainingAmount,
			PerUncapped:     g.PerUncapped,
			Unassigned:      g.Unassigned,
			Participants:    balances,
			TotalShare:      g.TotalShare,
			TotalPaid:       g.TotalPaid,
			TotalKurang:     g.TotalOutstanding,
		})
	}
	return ViewDTO{
		Groups:      groups,
		TotalShare:  view.TotalShare,
		TotalPaid:   view.TotalPaid,
		TotalKurang: view.TotalOutstanding,
	}
}
