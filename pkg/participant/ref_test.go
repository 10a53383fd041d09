package participant

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRef_UnmarshalJSON(t *testing.T) {
	t.Run("should decode a bare id", func(t *testing.T) {
		var ref Ref
		require.NoError(t, json.Unmarshal([]byte(`12`), &ref))

		assert.Equal(t, 12, ref.Id())
		_, populated := ref.Populated()
		assert.False(t, populated)
	})

	t.Run("should decode a populated participant", func(t *testing.T) {
		var ref Ref
		require.NoError(t, json.Unmarshal([]byte(`{"id": 12, "name": "Ayu"}`), &ref))

		p, populated := ref.Populated()
		assert.True(t, populated)
		assert.Equal(t, 12, ref.Id())
		assert.Equal(t, "Ayu", p.Name)
	})

	t.Run("should decode mixed lists", func(t *testing.T) {
		var refs []Ref
		require.NoError(t, json.Unmarshal([]byte(`[1, {"id": 2, "name": "Budi"}, 3]`), &refs))

		ids := []int{refs[0].Id(), refs[1].Id(), refs[2].Id()}
		assert.Equal(t, []int{1, 2, 3}, ids)
	})

	t.Run("should reject other shapes", func(t *testing.T) {
		var ref Ref
		assert.Error(t, json.Unmarshal([]byte(`"ayu"`), &ref))
		assert.Error(t, json.Unmarshal([]byte(`{"name": "Ayu"}`), &ref))
	})

	t.Run("should encode as id", func(t *testing.T) {
		data, err := json.Marshal(RefTo(Participant{Id: 5, Name: "Citra"}))

		require.NoError(t, err)
		assert.JSONEq(t, `5`, string(data))
	})
}

func TestResolve(t *testing.T) {
	roster := NewRoster([]Participant{
		{Id: 1, PlanId: 10, Name: "Ayu"},
		{Id: 2, PlanId: 10, Name: "Budi"},
	})

	t.Run("should prefer the roster entry over embedded data", func(t *testing.T) {
		p, err := Resolve(roster, RefTo(Participant{Id: 2, Name: "Stale name"}))

		require.NoError(t, err)
		assert.Equal(t, "Budi", p.Name)
		assert.Equal(t, 10, p.PlanId)
	})

	t.Run("should not resolve participants of other plans", func(t *testing.T) {
		_, err := Resolve(roster, RefById(99))

		assert.ErrorIs(t, err, ErrParticipantNotFound)
	})

	t.Run("should resolve all refs without duplicates", func(t *testing.T) {
		resolved, err := ResolveAll(roster, []Ref{RefById(2), RefById(1), RefTo(Participant{Id: 2})})

		require.NoError(t, err)
		require.Len(t, resolved, 2)
		assert.Equal(t, "Budi", resolved[0].Name)
		assert.Equal(t, "Ayu", resolved[1].Name)
	})
}
