package expense

import (
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/tripkas/tripkas/internal/rest"
	"github.com/tripkas/tripkas/pkg/participant"
	log "github.com/sirupsen/logrus"
)

type CategoryDTO struct {
	Id   int    `json:"id"`
	Name string `json:"name"`
}

type ItemDTO struct {
	Id             int             `json:"id"`
	CategoryId     *int            `json:"categoryId"`
	Name           string          `json:"name"`
	Price          decimal.Decimal `json:"price"`
	Quantity       int             `json:"quantity"`
	Total          decimal.Decimal `json:"total"`
	CollectorId    int             `json:"collectorId"`
	ParticipantIds []int           `json:"participantIds"`
}

// ItemRequestDTO accepts the collector and participants as ids or as participant objects.
type ItemRequestDTO struct {
	CategoryId   *int              `json:"categoryId"`
	Name         string            `json:"name"`
	Price        decimal.Decimal   `json:"price"`
	Quantity     int               `json:"quantity"`
	Collector    participant.Ref   `json:"collector"`
	Participants []participant.Ref `json:"participants"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// ListCategories godoc
// @Summary List expense categories
// @Tags Expense
// @Produce json
// @Param planId path int true "Plan ID"
// @Success 200 {array} CategoryDTO
// @Router /api/plan/{planId}/expense/category [get]
// @Security XUserId
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	planId, err := rest.IntVar(r, "planId")
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	categories, err := h.service.ListCategories(r.Context(), planId)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	dtos := make([]CategoryDTO, 0, len(categories))
	for _, c := range categories {
		dtos = append(dtos, CategoryDTO{Id: c.Id, Name: c.Name})
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// CreateCategory godoc
// @Summary Create an expense category
// @Tags Expense
// @Accept json
// @Produce json
// @Param planId path int true "Plan ID"
// @Param category body CategoryDTO true "Category"
// @Success 201 {object} CategoryDTO
// @Router /api/plan/{planId}/expense/category [post]
// @Security XUserId
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	planId, err := rest.IntVar(r, "planId")
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	var dto CategoryDTO
	if err := rest.DecodeJSON(r, &dto); err != nil {
		rest.WriteError(w, err)
		return
	}
	created, err := h.service.CreateCategory(r.Context(), Category{PlanId: planId, Name: dto.Name})
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, CategoryDTO{Id: created.Id, Name: created.Name})
}

// DeleteCategory godoc
// @Summary Delete an expense category
// @Description Items of the category are kept without a category
// @Tags Expense
// @Param planId path int true "Plan ID"
// @Param categoryId path int true "Category ID"
// @Success 204 "No Content"
// @Router /api/plan/{planId}/expense/category/{categoryId} [delete]
// @Security XUserId
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	planId, err := rest.IntVar(r, "planId")
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	categoryId, err := rest.IntVar(r, "categoryId")
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	if err := h.service.DeleteCategory(r.Context(), planId, categoryId); err != nil {
		rest.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListItems godoc
// @Summary List expense items
// @Tags Expense
// @Produce json
// @Param planId path int true "Plan ID"
// @Success 200 {array} ItemDTO
// @Router /api/plan/{planId}/expense [get]
// @Security XUserId
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	planId, err := rest.IntVar(r, "planId")
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	log.Debugf("Listing expense items of plan %d", planId)
	items, err := h.service.ListItems(r.Context(), planId)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	dtos := make([]ItemDTO, 0, len(items))
	for _, item := range items {
		dtos = append(dtos, itemToDTO(item))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// GetItem godoc
// @Summary Get an expense item
// @Tags Expense
// @Produce json
// @Param planId path int true "Plan ID"
// @Param itemId path int true "Item ID"
// @Success 200 {object} ItemDTO
// @Failure 404 {object} rest.ErrorResponse "Item not found"
// @Router /api/plan/{planId}/expense/{itemId} [get]
// @Security XUserId
func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	planId, err := rest.IntVar(r, "planId")
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	itemId, err := rest.IntVar(r, "itemId")
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	item, err := h.service.GetItem(r.Context(), planId, itemId)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, itemToDTO(item))
}

// CreateItem godoc
// @Summary Create an expense item
// @Description Creates the item and one contribution per participant with an even share of the total
// @Tags Expense
// @Accept json
// @Produce json
// @Param planId path int true "Plan ID"
// @Param item body ItemRequestDTO true "Item"
// @Success 201 {object} ItemDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid item"
// @Router /api/plan/{planId}/expense [post]
// @Security XUserId
func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	planId, err := rest.IntVar(r, "planId")
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	log.Debugf("Creating expense item in plan %d", planId)
	var dto ItemRequestDTO
	if err := rest.DecodeJSON(r, &dto); err != nil {
		rest.WriteError(w, err)
		return
	}
	created, err := h.service.CreateItem(r.Context(), requestToInput(planId, 0, dto))
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, itemToDTO(created))
}

// UpdateItem godoc
// @Summary Update an expense item
// @Description Recomputes the even split and adds or removes contributions. Payments and caps are kept.
// @Tags Expense
// @Accept json
// @Produce json
// @Param planId path int true "Plan ID"
// @Param itemId path int true "Item ID"
// @Param item body ItemRequestDTO true "Item"
// @Success 200 {object} ItemDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid item"
// @Failure 404 {object} rest.ErrorResponse "Item not found"
// @Router /api/plan/{planId}/expense/{itemId} [put]
// @Security XUserId
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	planId, err := rest.IntVar(r, "planId")
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	itemId, err := rest.IntVar(r, "itemId")
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	log.Debugf("Updating expense item %d in plan %d", itemId, planId)
	var dto ItemRequestDTO
	if err := rest.DecodeJSON(r, &dto); err != nil {
		rest.WriteError(w, err)
		return
	}
	updated, err := h.service.UpdateItem(r.Context(), requestToInput(planId, itemId, dto))
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, itemToDTO(updated))
}

// DeleteItem godoc
// @Summary Delete an expense item with its contributions
// @Tags Expense
// @Param planId path int true "Plan ID"
// @Param itemId path int true "Item ID"
// @Success 204 "No Content"
// @Router /api/plan/{planId}/expense/{itemId} [delete]
// @Security XUserId
func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	planId, err := rest.IntVar(r, "planId")
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	itemId, err := rest.IntVar(r, "itemId")
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	if err := h.service.DeleteItem(r.Context(), planId, itemId); err != nil {
		rest.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func requestToInput(planId int, itemId int, dto ItemRequestDTO) ItemInput {
	return ItemInput{
		Id:           itemId,
		PlanId:       planId,
		CategoryId:   dto.CategoryId,
		Name:         dto.Name,
		Price:        dto.Price,
		Quantity:     dto.Quantity,
		Collector:    dto.Collector,
		Participants: dto.Participants,
	}
}

func itemToDTO(item Item) ItemDTO {
	participantIds := item.ParticipantIds
	if participantIds == nil {
		participantIds = []int{}
	}
	return ItemDTO{
		Id:             item.Id,
		CategoryId:     item.CategoryId,
		Name:           item.Name,
		Price:          item.Price,
		Quantity:       item.Quantity,
		Total:          item.Total,
		CollectorId:    item.CollectorId,
		ParticipantIds: participantIds,
	}
}
