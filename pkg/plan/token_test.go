package plan

import (
	"testing"
	"time"

	"github.com/tripkas/tripkas/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	plan := Plan{Id: 7, ShareSlug: "5b7f2a36-8d1c-4e0a-9a53-1b7d9c5f0e11"}

	t.Run("should accept a fresh token for the same plan", func(t *testing.T) {
		// given
		manager := NewTokenManager("secret", time.Hour, &utils.MockClock{FixedNow: now})

		// when
		token, expiresAt, err := manager.Generate(plan)
		require.NoError(t, err)

		// then
		assert.Equal(t, now.Add(time.Hour), expiresAt)
		assert.NoError(t, manager.Validate(token, plan))
	})

	t.Run("should reject an expired token", func(t *testing.T) {
		// given
		clock := &utils.MockClock{FixedNow: now}
		manager := NewTokenManager("secret", time.Hour, clock)
		token, _, err := manager.Generate(plan)
		require.NoError(t, err)

		// when
		clock.Advance(2 * time.Hour)

		// then
		assert.ErrorIs(t, manager.Validate(token, plan), ErrInvalidToken)
	})

	t.Run("should reject a token issued for another plan", func(t *testing.T) {
		// given
		manager := NewTokenManager("secret", time.Hour, &utils.MockClock{FixedNow: now})
		token, _, err := manager.Generate(Plan{Id: 8, ShareSlug: "another-slug"})
		require.NoError(t, err)

		// then
		assert.ErrorIs(t, manager.Validate(token, plan), ErrInvalidToken)
	})

	t.Run("should reject a token signed with another secret", func(t *testing.T) {
		// given
		token, _, err := NewTokenManager("other", time.Hour, &utils.MockClock{FixedNow: now}).Generate(plan)
		require.NoError(t, err)

		// then
		manager := NewTokenManager("secret", time.Hour, &utils.MockClock{FixedNow: now})
		assert.ErrorIs(t, manager.Validate(token, plan), ErrInvalidToken)
	})

	t.Run("should require a token", func(t *testing.T) {
		manager := NewTokenManager("secret", time.Hour, &utils.MockClock{FixedNow: now})

		assert.ErrorIs(t, manager.Validate("", plan), ErrPasswordRequired)
	})
}
