package plan

import (
	"context"
	"testing"
	"time"

	"github.com/tripkas/tripkas/internal/cache"
	"github.com/tripkas/tripkas/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type publicFixture struct {
	repo    *RepositoryStub
	store   *cache.MemoryStore
	clock   *utils.MockClock
	service *PublicServiceImpl
}

func setupPublic(t *testing.T) publicFixture {
	clock := &utils.MockClock{FixedNow: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	repo := NewRepositoryStub()
	store := cache.NewMemoryStore(clock)
	tokens := NewTokenManager("secret", time.Hour, clock)
	return publicFixture{
		repo:    repo,
		store:   store,
		clock:   clock,
		service: NewPublicService(repo, store, tokens, UnlockLimit{Attempts: 3, Window: 15 * time.Minute}),
	}
}

func (f publicFixture) createPlan(t *testing.T, slug string, isPublic bool, password string) Plan {
	var hash *string
	if password != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		require.NoError(t, err)
		s := string(h)
		hash = &s
	}
	plan, err := f.repo.CreatePlan(context.Background(), Plan{OwnerId: 1, Title: "Bali", ShareSlug: slug, IsPublic: isPublic}, hash)
	require.NoError(t, err)
	return plan
}

func TestPublicServiceImpl_GetPublicPlan(t *testing.T) {
	t.Run("should return an open public plan", func(t *testing.T) {
		// given
		f := setupPublic(t)
		created := f.createPlan(t, "open-slug", true, "")

		// when
		plan, err := f.service.GetPublicPlan(context.Background(), "open-slug", "")

		// then
		require.NoError(t, err)
		assert.Equal(t, created.Id, plan.Id)
	})

	t.Run("should hide private plans", func(t *testing.T) {
		// given
		f := setupPublic(t)
		f.createPlan(t, "private-slug", false, "")

		// when
		_, err := f.service.GetPublicPlan(context.Background(), "private-slug", "")

		// then
		assert.ErrorIs(t, err, ErrPlanNotFound)
	})

	t.Run("should require a token for password protected plans", func(t *testing.T) {
		// given
		f := setupPublic(t)
		f.createPlan(t, "locked-slug", true, "rahasia")

		// when
		_, err := f.service.GetPublicPlan(context.Background(), "locked-slug", "")

		// then
		assert.ErrorIs(t, err, ErrPasswordRequired)
	})

	t.Run("should serve the plan from cache", func(t *testing.T) {
		// given
		f := setupPublic(t)
		created := f.createPlan(t, "cached-slug", true, "")
		_, err := f.service.GetPublicPlan(context.Background(), "cached-slug", "")
		require.NoError(t, err)
		_, err = f.repo.DeletePlan(context.Background(), created.Id)
		require.NoError(t, err)

		// when
		plan, err := f.service.GetPublicPlan(context.Background(), "cached-slug", "")

		// then
		require.NoError(t, err)
		assert.Equal(t, created.Id, plan.Id)
	})
}

func TestPublicServiceImpl_Unlock(t *testing.T) {
	t.Run("should exchange the password for a working token", func(t *testing.T) {
		// given
		f := setupPublic(t)
		f.createPlan(t, "locked-slug", true, "rahasia")

		// when
		result, err := f.service.Unlock(context.Background(), "locked-slug", "rahasia", "10.0.0.1")
		require.NoError(t, err)
		plan, err := f.service.GetPublicPlan(context.Background(), "locked-slug", result.Token)

		// then
		require.NoError(t, err)
		assert.Equal(t, "Bali", plan.Title)
		assert.Equal(t, f.clock.Now().Add(time.Hour), result.ExpiresAt)
	})

	t.Run("should reject a wrong password", func(t *testing.T) {
		// given
		f := setupPublic(t)
		f.createPlan(t, "locked-slug", true, "rahasia")

		// when
		_, err := f.service.Unlock(context.Background(), "locked-slug", "salah", "10.0.0.1")

		// then
		assert.ErrorIs(t, err, ErrInvalidPassword)
	})

	t.Run("should block a client after too many attempts until the window passes", func(t *testing.T) {
		// given
		f := setupPublic(t)
		f.createPlan(t, "locked-slug", true, "rahasia")
		for i := 0; i < 3; i++ {
			_, err := f.service.Unlock(context.Background(), "locked-slug", "salah", "10.0.0.1")
			require.ErrorIs(t, err, ErrInvalidPassword)
		}

		// when
		_, blocked := f.service.Unlock(context.Background(), "locked-slug", "rahasia", "10.0.0.1")
		_, otherClient := f.service.Unlock(context.Background(), "locked-slug", "rahasia", "10.0.0.2")
		f.clock.Advance(16 * time.Minute)
		_, afterWindow := f.service.Unlock(context.Background(), "locked-slug", "rahasia", "10.0.0.1")

		// then
		assert.ErrorIs(t, blocked, ErrTooManyAttempts)
		assert.NoError(t, otherClient)
		assert.NoError(t, afterWindow)
	})

	t.Run("should reset attempts after a successful unlock", func(t *testing.T) {
		// given
		f := setupPublic(t)
		f.createPlan(t, "locked-slug", true, "rahasia")
		for i := 0; i < 2; i++ {
			_, _ = f.service.Unlock(context.Background(), "locked-slug", "salah", "10.0.0.1")
		}
		_, err := f.service.Unlock(context.Background(), "locked-slug", "rahasia", "10.0.0.1")
		require.NoError(t, err)

		// when
		for i := 0; i < 2; i++ {
			_, _ = f.service.Unlock(context.Background(), "locked-slug", "salah", "10.0.0.1")
		}
		_, err = f.service.Unlock(context.Background(), "locked-slug", "rahasia", "10.0.0.1")

		// then
		assert.NoError(t, err)
	})
}
