package note

import (
	"net/http"
	"time"

	"github.com/tripkas/tripkas/internal/rest"
)

type NoteDTO struct {
	Id      int       `json:"id"`
	Title   string    `json:"title"`
	Content string    `json:"content"`
	Updated time.Time `json:"updated"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// List godoc
// @Summary List plan notes, most recently updated first
// @Tags Note
// @Produce json
// @Param planId path int true "Plan ID"
// @Success 200 {array} NoteDTO
// @Router /api/plan/{planId}/note [get]
// @Security XUserId
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	planId, err := rest.IntVar(r, "planId")
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	notes, err := h.service.List(r.Context(), planId)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	result := make([]NoteDTO, 0, len(notes))
	for _, n := range notes {
		result = append(result, toDTO(n))
	}
	rest.WriteJSON(w, http.StatusOK, result)
}

// Create godoc
// @Summary Add a note
// @Tags Note
// @Accept json
// @Produce json
// @Param planId path int true "Plan ID"
// @Param note body NoteDTO true "Note"
// @Success 201 {object} NoteDTO
// @Router /api/plan/{planId}/note [post]
// @Security XUserId
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	n, err := decodeNote(r, 0)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	created, err := h.service.Create(r.Context(), n)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, toDTO(created))
}

// Update godoc
// @Summary Update a note
// @Tags Note
// @Accept json
// @Produce json
// @Param planId path int true "Plan ID"
// @Param noteId path int true "Note ID"
// @Param note body NoteDTO true "Note"
// @Success 200 {object} NoteDTO
// @Router /api/plan/{planId}/note/{noteId} [put]
// @Security XUserId
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	noteId, err := rest.IntVar(r, "noteId")
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	n, err := decodeNote(r, noteId)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	updated, err := h.service.Update(r.Context(), n)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toDTO(updated))
}

// Delete godoc
// @Summary Delete a note
// @Tags Note
// @Param planId path int true "Plan ID"
// @Param noteId path int true "Note ID"
// @Success 204
// @Router /api/plan/{planId}/note/{noteId} [delete]
// @Security XUserId
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	planId, err := rest.IntVar(r, "planId")
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	noteId, err := rest.IntVar(r, "noteId")
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), planId, noteId); err != nil {
		rest.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeNote(r *http.Request, noteId int) (Note, error) {
	planId, err := rest.IntVar(r, "planId")
	if err != nil {
		return Note{}, err
	}
	var dto NoteDTO
	if err := rest.DecodeJSON(r, &dto); err != nil {
		return Note{}, err
	}
	return Note{Id: noteId, PlanId: planId, Title: dto.Title, Content: dto.Content}, nil
}

func toDTO(n Note) NoteDTO {
	return NoteDTO{Id: n.Id, Title: n.Title, Content: n.Content, Updated: n.Updated}
}
