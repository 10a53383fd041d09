package note

import (
	"time"

	"github.com/tripkas/tripkas/internal/rest"
)

var ErrNoteNotFound = rest.NotFound("note not found")

type Note struct {
	Id      int
	PlanId  int
	Title   string
	Content string
	Updated time.Time
}
