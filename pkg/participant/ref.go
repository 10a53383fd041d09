package participant

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Ref points at a participant either by id or by carrying the participant itself. Clients send
// both shapes, so every Ref is resolved against the plan roster before it is used.
type Ref struct {
	id        int
	populated *Participant
}

func RefById(id int) Ref {
	return Ref{id: id}
}

func RefTo(p Participant) Ref {
	return Ref{id: p.Id, populated: &p}
}

func (r Ref) Id() int {
	return r.id
}

// Populated returns the embedded participant when the reference carries one.
func (r Ref) Populated() (Participant, bool) {
	if r.populated == nil {
		return Participant{}, false
	}
	return *r.populated, true
}

func (r Ref) IsZero() bool {
	return r.id == 0
}

type refObject struct {
	Id     int    `json:"id"`
	Name   string `json:"name"`
	UserId *int   `json:"userId,omitempty"`
}

// UnmarshalJSON accepts a bare id (12) or a participant object ({"id": 12, "name": "Ayu"}).
func (r *Ref) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = Ref{}
		return nil
	}
	if len(data) > 0 && data[0] == '{' {
		var obj refObject
		if err := json.Unmarshal(data, &obj); err != nil {
			return fmt.Errorf("invalid participant: %w", err)
		}
		if obj.Id <= 0 {
			return fmt.Errorf("participant object without id")
		}
		*r = RefTo(Participant{Id: obj.Id, Name: obj.Name, UserId: obj.UserId})
		return nil
	}
	var id int
	if err := json.Unmarshal(data, &id); err != nil {
		return fmt.Errorf("participant must be an id or an object: %w", err)
	}
	*r = RefById(id)
	return nil
}

// MarshalJSON always writes the id.
func (r Ref) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.id)
}

// Roster is the set of participants of one plan, keyed by id.
type Roster map[int]Participant

func NewRoster(participants []Participant) Roster {
	roster := make(Roster, len(participants))
	for _, p := range participants {
		roster[p.Id] = p
	}
	return roster
}

// Resolve turns ref into the participant stored in roster. Embedded participant data is ignored in
// favour of the roster entry, so a reference to someone outside the plan never resolves.
func Resolve(roster Roster, ref Ref) (Participant, error) {
	p, ok := roster[ref.id]
	if !ok {
		return Participant{}, fmt.Errorf("%w: %d", ErrParticipantNotFound, ref.id)
	}
	return p, nil
}

// ResolveAll resolves refs in order and drops duplicates.
func ResolveAll(roster Roster, refs []Ref) ([]Participant, error) {
	seen := make(map[int]bool, len(refs))
	resolved := make([]Participant, 0, len(refs))
	for _, ref := range refs {
		p, err := Resolve(roster, ref)
		if err != nil {
			return nil, err
		}
		if seen[p.Id] {
			continue
		}
		seen[p.Id] = true
		resolved = append(resolved, p)
	}
	return resolved, nil
}
