package rundown

import (
	"net/http"

	"github.com/tripkas/tripkas/internal/rest"
	log "github.com/sirupsen/logrus"
)

type EntryDTO struct {
	Id              int     `json:"id"`
	Day             string  `json:"day"`
	StartTime       string  `json:"startTime"`
	EndTime         string  `json:"endTime"`
	Title           string  `json:"title"`
	Location        string  `json:"location"`
	Notes           string  `json:"notes"`
	CalendarEventId *string `json:"calendarEventId,omitempty"`
}

type ExportResultDTO struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// List godoc
// @Summary List the rundown of a plan
// @Tags Rundown
// @Produce json
// @Param planId path int true "Plan ID"
// @Success 200 {array} EntryDTO
// @Router /api/plan/{planId}/rundown [get]
// @Security XUserId
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	planId, err := rest.IntVar(r, "planId")
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	entries, err := h.service.List(r.Context(), planId)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	result := make([]EntryDTO, 0, len(entries))
	for _, e := range entries {
		result = append(result, toDTO(e))
	}
	rest.WriteJSON(w, http.StatusOK, result)
}

// Create godoc
// @Summary Add a rundown entry
// @Tags Rundown
// @Accept json
// @Produce json
// @Param planId path int true "Plan ID"
// @Param entry body EntryDTO true "Entry"
// @Success 201 {object} EntryDTO
// @Router /api/plan/{planId}/rundown [post]
// @Security XUserId
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	entry, err := decodeEntry(r, 0)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	created, err := h.service.Create(r.Context(), entry)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, toDTO(created))
}

// Update godoc
// @Summary Update a rundown entry
// @Tags Rundown
// @Accept json
// @Produce json
// @Param planId path int true "Plan ID"
// @Param entryId path int true "Entry ID"
// @Param entry body EntryDTO true "Entry"
// @Success 200 {object} EntryDTO
// @Router /api/plan/{planId}/rundown/{entryId} [put]
// @Security XUserId
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	entryId, err := rest.IntVar(r, "entryId")
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	entry, err := decodeEntry(r, entryId)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	updated, err := h.service.Update(r.Context(), entry)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toDTO(updated))
}

// Delete godoc
// @Summary Delete a rundown entry
// @Tags Rundown
// @Param planId path int true "Plan ID"
// @Param entryId path int true "Entry ID"
// @Success 204
// @Router /api/plan/{planId}/rundown/{entryId} [delete]
// @Security XUserId
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	planId, err := rest.IntVar(r, "planId")
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	entryId, err := rest.IntVar(r, "entryId")
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), planId, entryId); err != nil {
		rest.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Export godoc
// @Summary Export the rundown to Google Calendar
// @Tags Rundown
// @Produce json
// @Param planId path int true "Plan ID"
// @Param calendarId query string true "Google calendar ID"
// @Param timeZone query string false "IANA time zone of the entry times, Asia/Jakarta by default"
// @Success 200 {object} ExportResultDTO
// @Failure 403 {object} rest.ErrorResponse "Google Calendar is not connected"
// @Router /api/plan/{planId}/rundown/export [post]
// @Security XUserId
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	planId, err := rest.IntVar(r, "planId")
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	calendarId := r.URL.Query().Get("calendarId")
	log.Debugf("Exporting rundown of plan %d to calendar %s", planId, calendarId)
	result, err := h.service.Export(r.Context(), planId, calendarId, r.URL.Query().Get("timeZone"))
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, ExportResultDTO{Created: result.Created, Updated: result.Updated})
}

func decodeEntry(r *http.Request, entryId int) (Entry, error) {
	planId, err := rest.IntVar(r, "planId")
	if err != nil {
		return Entry{}, err
	}
	var dto EntryDTO
	if err := rest.DecodeJSON(r, &dto); err != nil {
		return Entry{}, err
	}
	day, err := rest.ParseDate("day", dto.Day)
	if err != nil {
		return Entry{}, err
	}
	return Entry{
		Id:        entryId,
		PlanId:    planId,
		Day:       day,
		StartTime: dto.StartTime,
		EndTime:   dto.EndTime,
		Title:     dto.Title,
		Location:  dto.Location,
		Notes:     dto.Notes,
	}, nil
}

func toDTO(e Entry) EntryDTO {
	return EntryDTO{
		Id:              e.Id,
		Day:             e.Day.Format(rest.DateLayout),
		StartTime:       e.StartTime,
		EndTime:         e.EndTime,
		Title:           e.Title,
		Location:        e.Location,
		Notes:           e.Notes,
		CalendarEventId: e.CalendarEventId,
	}
}
