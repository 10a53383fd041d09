package user

import (
	"net/http"

	"github.com/tripkas/tripkas/internal/rest"
	log "github.com/sirupsen/logrus"
)

type UserDTO struct {
	Id          int    `json:"id"`
	Uid         string `json:"uid"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Role        Role   `json:"role"`
	IsPremium   bool   `json:"isPremium"`
}

type Handler struct {
	userService Service
}

func NewHandler(userService Service) *Handler {
	return &Handler{
		userService: userService,
	}
}

// CreateUser godoc
// @Summary Create a new user
// @Description Register a new user in the system
// @Tags User
// @Accept json
// @Produce json
// @Param user body UserDTO true "User"
// @Success 201 {object} UserDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Failure 409 {object} rest.ErrorResponse "Username is already taken"
// @Router /api/user [post]
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating user")

	var dto UserDTO
	if err := rest.DecodeJSON(r, &dto); err != nil {
		rest.WriteError(w, err)
		return
	}

	createdUser, err := h.userService.CreateUser(r.Context(), User{
		Uid:         dto.Uid,
		Username:    dto.Username,
		DisplayName: dto.DisplayName,
	})
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	log.Tracef("Created user: %+v", createdUser)

	rest.WriteJSON(w, http.StatusCreated, userToDTO(createdUser))
}

// CurrentUser godoc
// @Summary Get current user
// @Description Retrieve the currently authenticated user's information
// @Tags User
// @Produce json
// @Success 200 {object} UserDTO
// @Failure 401 {object} rest.ErrorResponse "User not found"
// @Router /api/user/current [get]
// @Security XUserId
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	log.Trace("Getting current user")

	currentUser, err := h.userService.GetCurrentUser(r.Context())
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, userToDTO(currentUser))
}

// UpdateUser godoc
// @Summary Update current user
// @Description Update the display name of the currently authenticated user
// @Tags User
// @Accept json
// @Produce json
// @Param user body UserDTO true "User"
// @Success 200 {object} UserDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Router /api/user/current [put]
// @Security XUserId
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	log.Trace("Updating user")

	var dto UserDTO
	if err := rest.DecodeJSON(r, &dto); err != nil {
		rest.WriteError(w, err)
		return
	}

	updatedUser, err := h.userService.UpdateUser(r.Context(), User{DisplayName: dto.DisplayName})
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, userToDTO(updatedUser))
}

// GetAvailableUsers godoc
// @Summary Get all users
// @Description Retrieve a list of all registered users, e.g. to pick collaborators
// @Tags User
// @Produce json
// @Success 200 {array} UserDTO
// @Router /api/user [get]
// @Security XUserId
func (h *Handler) GetAvailableUsers(w http.ResponseWriter, r *http.Request) {
	log.Trace("Getting available users")

	users, err := h.userService.GetAllUsers(r.Context())
	if err != nil {
		rest.WriteError(w, err)
		return
	}

	usersDTO := make([]UserDTO, 0, len(users))
	for _, u := range users {
		usersDTO = append(usersDTO, userToDTO(u))
	}
	rest.WriteJSON(w, http.StatusOK, usersDTO)
}

func userToDTO(u User) UserDTO {
	return UserDTO{
		Id:          u.Id,
		Uid:         u.Uid,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Role:        u.Role,
		IsPremium:   u.IsPremium,
	}
}
