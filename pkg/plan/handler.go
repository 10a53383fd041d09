package plan

import (
	"net/http"
	"time"

	"github.com/tripkas/tripkas/internal/rest"
	log "github.com/sirupsen/logrus"
)

type PlanDTO struct {
	Id          int       `json:"id"`
	OwnerId     int       `json:"ownerId"`
	Title       string    `json:"title"`
	Destination string    `json:"destination"`
	StartDate   *string   `json:"startDate,omitempty"`
	EndDate     *string   `json:"endDate,omitempty"`
	IsPublic    bool      `json:"isPublic"`
	ShareSlug   string    `json:"shareSlug"`
	HasPassword bool      `json:"hasPassword"`
	Created     time.Time `json:"created"`
}

type ShareSettingsDTO struct {
	IsPublic       bool   `json:"isPublic"`
	Password       string `json:"password,omitempty"`
	RemovePassword bool   `json:"removePassword,omitempty"`
}

type CollaboratorDTO struct {
	UserId int              `json:"userId"`
	Role   CollaboratorRole `json:"role"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// ListPlans godoc
// @Summary List plans
// @Description Plans the current user owns or collaborates on
// @Tags Plan
// @Produce json
// @Success 200 {array} PlanDTO
// @Router /api/plan [get]
// @Security XUserId
func (h *Handler) ListPlans(w http.ResponseWriter, r *http.Request) {
	log.Debug("Listing plans")
	plans, err := h.service.ListPlans(r.Context())
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	dtos := make([]PlanDTO, 0, len(plans))
	for _, p := range plans {
		dtos = append(dtos, PlanToDTO(p))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// CreatePlan godoc
// @Summary Create a plan
// @Tags Plan
// @Accept json
// @Produce json
// @Param plan body PlanDTO true "Plan"
// @Success 201 {object} PlanDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid plan"
// @Failure 403 {object} rest.ErrorResponse "Free plan limit reached"
// @Router /api/plan [post]
// @Security XUserId
func (h *Handler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating plan")
	var dto PlanDTO
	if err := rest.DecodeJSON(r, &dto); err != nil {
		rest.WriteError(w, err)
		return
	}
	plan, err := DTOToPlan(dto)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	created, err := h.service.CreatePlan(r.Context(), plan)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, PlanToDTO(created))
}

// GetPlan godoc
// @Summary Get a plan
// @Tags Plan
// @Produce json
// @Param planId path int true "Plan ID"
// @Success 200 {object} PlanDTO
// @Failure 403 {object} rest.ErrorResponse "No access"
// @Failure 404 {object} rest.ErrorResponse "Plan not found"
// @Router /api/plan/{planId} [get]
// @Security XUserId
func (h *Handler) GetPlan(w http.ResponseWriter, r *http.Request) {
	planId, err := rest.IntVar(r, "planId")
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	log.Debugf("Getting plan %d", planId)
	plan, err := h.service.GetPlan(r.Context(), planId)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, PlanToDTO(plan))
}

// UpdatePlan godoc
// @Summary Update a plan
// @Tags Plan
// @Accept json
// @Produce json
// @Param planId path int true "Plan ID"
// @Param plan body PlanDTO true "Plan"
// @Success 200 {object} PlanDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid plan"
// @Failure 404 {object} rest.ErrorResponse "Plan not found"
// @Router /api/plan/{planId} [put]
// @Security XUserId
func (h *Handler) UpdatePlan(w http.ResponseWriter, r *http.Request) {
	planId, err := rest.IntVar(r, "planId")
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	log.Debugf("Updating plan %d", planId)
	var dto PlanDTO
	if err := rest.DecodeJSON(r, &dto); err != nil {
		rest.WriteError(w, err)
		return
	}
	plan, err := DTOToPlan(dto)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	plan.Id = planId
	updated, err := h.service.UpdatePlan(r.Context(), plan)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, PlanToDTO(updated))
}

// DeletePlan godoc
// @Summary Delete a plan with everything in it
// @Tags Plan
// @Param planId path int true "Plan ID"
// @Success 204 "No Content"
// @Failure 403 {object} rest.ErrorResponse "Only the owner can delete a plan"
// @Failure 404 {object} rest.ErrorResponse "Plan not found"
// @Router /api/plan/{planId} [delete]
// @Security XUserId
func (h *Handler) DeletePlan(w http.ResponseWriter, r *http.Request) {
	planId, err := rest.IntVar(r, "planId")
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	log.Debugf("Deleting plan %d", planId)
	if err := h.service.DeletePlan(r.Context(), planId); err != nil {
		rest.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateSharing godoc
// @Summary Configure the public share link
// @Description Makes the plan public or private and sets or removes the share password
// @Tags Plan
// @Accept json
// @Produce json
// @Param planId path int true "Plan ID"
// @Param settings body ShareSettingsDTO true "Share settings"
// @Success 200 {object} PlanDTO
// @Router /api/plan/{planId}/share [put]
// @Security XUserId
func (h *Handler) UpdateSharing(w http.ResponseWriter, r *http.Request) {
	planId, err := rest.IntVar(r, "planId")
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	log.Debugf("Updating sharing of plan %d", planId)
	var dto ShareSettingsDTO
	if err := rest.DecodeJSON(r, &dto); err != nil {
		rest.WriteError(w, err)
		return
	}
	updated, err := h.service.UpdateSharing(r.Context(), planId, ShareSettings{
		IsPublic:       dto.IsPublic,
		Password:       dto.Password,
		RemovePassword: dto.RemovePassword,
	})
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, PlanToDTO(updated))
}

// ListCollaborators godoc
// @Summary List plan collaborators
// @Tags Plan
// @Produce json
// @Param planId path int true "Plan ID"
// @Success 200 {array} CollaboratorDTO
// @Router /api/plan/{planId}/collaborator [get]
// @Security XUserId
func (h *Handler) ListCollaborators(w http.ResponseWriter, r *http.Request) {
	planId, err := rest.IntVar(r, "planId")
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	collaborators, err := h.service.ListCollaborators(r.Context(), planId)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	dtos := make([]CollaboratorDTO, 0, len(collaborators))
	for _, c := range collaborators {
		dtos = append(dtos, CollaboratorDTO{UserId: c.UserId, Role: c.Role})
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// AddCollaborator godoc
// @Summary Invite a user to a plan
// @Description Adds the user as admin or viewer, or changes the role of an existing collaborator
// @Tags Plan
// @Accept json
// @Produce json
// @Param planId path int true "Plan ID"
// @Param collaborator body CollaboratorDTO true "Collaborator"
// @Success 200 {object} CollaboratorDTO
// @Router /api/plan/{planId}/collaborator [post]
// @Security XUserId
func (h *Handler) AddCollaborator(w http.ResponseWriter, r *http.Request) {
	planId, err := rest.IntVar(r, "planId")
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	var dto CollaboratorDTO
	if err := rest.DecodeJSON(r, &dto); err != nil {
		rest.WriteError(w, err)
		return
	}
	log.Debugf("Adding collaborator %d to plan %d", dto.UserId, planId)
	c, err := h.service.AddCollaborator(r.Context(), Collaborator{PlanId: planId, UserId: dto.UserId, Role: dto.Role})
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, CollaboratorDTO{UserId: c.UserId, Role: c.Role})
}

// RemoveCollaborator godoc
// @Summary Remove a collaborator from a plan
// @Tags Plan
// @Param planId path int true "Plan ID"
// @Param userId path int true "User ID"
// @Success 204 "No Content"
// @Router /api/plan/{planId}/collaborator/{userId} [delete]
// @Security XUserId
func (h *Handler) RemoveCollaborator(w http.ResponseWriter, r *http.Request) {
	planId, err := rest.IntVar(r, "planId")
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	userId, err := rest.IntVar(r, "userId")
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	if err := h.service.RemoveCollaborator(r.Context(), planId, userId); err != nil {
		rest.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func PlanToDTO(p Plan) PlanDTO {
	return PlanDTO{
		Id:          p.Id,
		OwnerId:     p.OwnerId,
		Title:       p.Title,
		Destination: p.Destination,
		StartDate:   rest.FormatOptionalDate(p.StartDate),
		EndDate:     rest.FormatOptionalDate(p.EndDate),
		IsPublic:    p.IsPublic,
		ShareSlug:   p.ShareSlug,
		HasPassword: p.HasPassword,
		Created:     p.Created,
	}
}

func DTOToPlan(dto PlanDTO) (Plan, error) {
	start, err := rest.ParseOptionalDate("startDate", dto.StartDate)
	if err != nil {
		return Plan{}, err
	}
	end, err := rest.ParseOptionalDate("endDate", dto.EndDate)
	if err != nil {
		return Plan{}, err
	}
	return Plan{
		Id:          dto.Id,
		Title:       dto.Title,
		Destination: dto.Destination,
		StartDate:   start,
		EndDate:     end,
	}, nil
}
