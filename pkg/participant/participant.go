package participant

import "github.com/tripkas/tripkas/internal/rest"

var (
	ErrParticipantNotFound = rest.NotFound("participant not found")
	ErrParticipantInUse    = rest.Conflict("participant collects an expense or paid a split bill and cannot be removed")
)

type Participant struct {
	Id     int
	PlanId int
	Name   string
	// UserId links the participant to a registered user, nil for guests.
	UserId *int
}
