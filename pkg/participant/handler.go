package participant

import (
	"net/http"

	"github.com/tripkas/tripkas/internal/rest"
	log "github.com/sirupsen/logrus"
)

type ParticipantDTO struct {
	Id     int    `json:"id"`
	Name   string `json:"name"`
	UserId *int   `json:"userId,omitempty"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// List godoc
// @Summary List plan participants
// @Tags Participant
// @Produce json
// @Param planId path int true "Plan ID"
// @Success 200 {array} ParticipantDTO
// @Router /api/plan/{planId}/participant [get]
// @Security XUserId
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	planId, err := rest.IntVar(r, "planId")
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	log.Debugf("Listing participants of plan %d", planId)
	participants, err := h.service.List(r.Context(), planId)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	dtos := make([]ParticipantDTO, 0, len(participants))
	for _, p := range participants {
		dtos = append(dtos, toDTO(p))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// Create godoc
// @Summary Add a participant
// @Tags Participant
// @Accept json
// @Produce json
// @Param planId path int true "Plan ID"
// @Param participant body ParticipantDTO true "Participant"
// @Success 201 {object} ParticipantDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid participant"
// @Router /api/plan/{planId}/participant [post]
// @Security XUserId
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	planId, err := rest.IntVar(r, "planId")
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	var dto ParticipantDTO
	if err := rest.DecodeJSON(r, &dto); err != nil {
		rest.WriteError(w, err)
		return
	}
	created, err := h.service.Create(r.Context(), Participant{PlanId: planId, Name: dto.Name, UserId: dto.UserId})
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, toDTO(created))
}

// Update godoc
// @Summary Rename or relink a participant
// @Tags Participant
// @Accept json
// @Produce json
// @Param planId path int true "Plan ID"
// @Param participantId path int true "Participant ID"
// @Param participant body ParticipantDTO true "Participant"
// @Success 200 {object} ParticipantDTO
// @Failure 404 {object} rest.ErrorResponse "Participant not found"
// @Router /api/plan/{planId}/participant/{participantId} [put]
// @Security XUserId
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	planId, err := rest.IntVar(r, "planId")
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	participantId, err := rest.IntVar(r, "participantId")
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	var dto ParticipantDTO
	if err := rest.DecodeJSON(r, &dto); err != nil {
		rest.WriteError(w, err)
		return
	}
	updated, err := h.service.Update(r.Context(), Participant{Id: participantId, PlanId: planId, Name: dto.Name, UserId: dto.UserId})
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toDTO(updated))
}

// Delete godoc
// @Summary Remove a participant
// @Description Removes the participant with their contributions. Collectors and split bill payers cannot be removed.
// @Tags Participant
// @Param planId path int true "Plan ID"
// @Param participantId path int true "Participant ID"
// @Success 204 "No Content"
// @Failure 409 {object} rest.ErrorResponse "Participant still in use"
// @Router /api/plan/{planId}/participant/{participantId} [delete]
// @Security XUserId
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	planId, err := rest.IntVar(r, "planId")
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	participantId, err := rest.IntVar(r, "participantId")
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	log.Debugf("Deleting participant %d of plan %d", participantId, planId)
	if err := h.service.Delete(r.Context(), planId, participantId); err != nil {
		rest.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toDTO(p Participant) ParticipantDTO {
	return ParticipantDTO{Id: p.Id, Name: p.Name, UserId: p.UserId}
}
