package google

import (
	"net/http"

	"github.com/tripkas/tripkas/internal/rest"
)

type CalendarItemDto struct {
	Id       string `json:"id"`
	Summary  string `json:"summary"`
	TimeZone string `json:"timeZone"`
	Primary  bool   `json:"primary"`
}

type Handler struct {
	service Service
}

func NewHandler(s Service) *Handler {
	return &Handler{s}
}

// ListCalendars godoc
// @Summary List the writable Google calendars of the current user
// @Tags Google
// @Produce json
// @Success 200 {array} CalendarItemDto
// @Failure 403 {object} rest.ErrorResponse "Google Calendar is not connected"
// @Router /api/integrations/google/calendars [get]
// @Security XUserId
func (h *Handler) ListCalendars(w http.ResponseWriter, r *http.Request) {
	calendars, err := h.service.ListCalendars(r.Context())
	if err != nil {
		rest.WriteError(w, err)
		return
	}

	result := make([]CalendarItemDto, 0, len(calendars))
	for _, c := range calendars {
		result = append(result, CalendarItemDto{Id: c.Id, Summary: c.Summary, TimeZone: c.TimeZone, Primary: c.Primary})
	}
	rest.WriteJSON(w, http.StatusOK, result)
}
