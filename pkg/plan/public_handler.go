package plan

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/tripkas/tripkas/internal/rest"
	log "github.com/sirupsen/logrus"
)

// TokenHeader carries the access token of a password protected public plan.
const TokenHeader = "X-Plan-Token"

type PublicPlanDTO struct {
	Title       string  `json:"title"`
	Destination string  `json:"destination"`
	StartDate   *string `json:"startDate,omitempty"`
	EndDate     *string `json:"endDate,omitempty"`
	ShareSlug   string  `json:"shareSlug"`
}

type UnlockRequestDTO struct {
	Password string `json:"password"`
}

type UnlockResponseDTO struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type PublicHandler struct {
	service PublicService
}

func NewPublicHandler(service PublicService) *PublicHandler {
	return &PublicHandler{service: service}
}

// GetPublicPlan godoc
// @Summary Get a shared plan
// @Tags Public
// @Produce json
// @Param slug path string true "Share slug"
// @Param X-Plan-Token header string false "Access token for password protected plans"
// @Success 200 {object} PublicPlanDTO
// @Failure 401 {object} rest.ErrorResponse "Password required"
// @Failure 404 {object} rest.ErrorResponse "Plan not found"
// @Router /api/public/{slug} [get]
func (h *PublicHandler) GetPublicPlan(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	log.Debugf("Getting public plan %s", slug)
	p, err := h.service.GetPublicPlan(r.Context(), slug, r.Header.Get(TokenHeader))
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, PublicPlanDTO{
		Title:       p.Title,
		Destination: p.Destination,
		StartDate:   rest.FormatOptionalDate(p.StartDate),
		EndDate:     rest.FormatOptionalDate(p.EndDate),
		ShareSlug:   p.ShareSlug,
	})
}

// Unlock godoc
// @Summary Unlock a password protected plan
// @Description Exchanges the share password for a short-lived access token
// @Tags Public
// @Accept json
// @Produce json
// @Param slug path string true "Share slug"
// @Param body body UnlockRequestDTO true "Password"
// @Success 200 {object} UnlockResponseDTO
// @Failure 401 {object} rest.ErrorResponse "Invalid password"
// @Failure 429 {object} rest.ErrorResponse "Too many attempts"
// @Router /api/public/{slug}/unlock [post]
func (h *PublicHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	var dto UnlockRequestDTO
	if err := rest.DecodeJSON(r, &dto); err != nil {
		rest.WriteError(w, err)
		return
	}
	result, err := h.service.Unlock(r.Context(), slug, dto.Password, clientKey(r))
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, UnlockResponseDTO{Token: result.Token, ExpiresAt: result.ExpiresAt})
}

// clientKey identifies the caller for unlock rate limiting.
func clientKey(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
