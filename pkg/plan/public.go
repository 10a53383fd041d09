package plan

import (
	"context"
	"fmt"
	"time"

	"github.com/tripkas/tripkas/internal/cache"
	"github.com/tripkas/tripkas/internal/event_bus"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const publicPlanTTL = 5 * time.Minute

// PublicService serves plans through their share link to callers without an account.
type PublicService interface {
	// GetPublicPlan returns the plan shared under slug. Password protected plans need a token
	// obtained from Unlock.
	GetPublicPlan(ctx context.Context, slug string, token string) (Plan, error)
	Unlock(ctx context.Context, slug string, password string, clientKey string) (UnlockResult, error)
}

type UnlockResult struct {
	Token     string
	ExpiresAt time.Time
}

type UnlockLimit struct {
	Attempts int
	Window   time.Duration
}

type PublicServiceImpl struct {
	repo   Repository
	store  cache.Store
	tokens *TokenManager
	limit  UnlockLimit
}

func NewPublicService(repo Repository, store cache.Store, tokens *TokenManager, limit UnlockLimit) *PublicServiceImpl {
	return &PublicServiceImpl{repo: repo, store: store, tokens: tokens, limit: limit}
}

func (s *PublicServiceImpl) GetPublicPlan(ctx context.Context, slug string, token string) (Plan, error) {
	plan, err := s.lookup(ctx, slug)
	if err != nil {
		return Plan{}, err
	}
	if plan.HasPassword {
		if err := s.tokens.Validate(token, plan); err != nil {
			return Plan{}, err
		}
	}
	return plan, nil
}

func (s *PublicServiceImpl) Unlock(ctx context.Context, slug string, password string, clientKey string) (UnlockResult, error) {
	plan, err := s.lookup(ctx, slug)
	if err != nil {
		return UnlockResult{}, err
	}
	if !plan.HasPassword {
		token, expiresAt, err := s.tokens.Generate(plan)
		if err != nil {
			return UnlockResult{}, err
		}
		return UnlockResult{Token: token, ExpiresAt: expiresAt}, nil
	}

	if s.limit.Attempts > 0 {
		attempts, err := s.store.Increment(ctx, unlockAttemptsKey(slug, clientKey), s.limit.Window)
		if err != nil {
			// unlocking stays possible while the cache is down
			log.Warnf("failed to count unlock attempts for %s: %v", slug, err)
		} else if attempts > int64(s.limit.Attempts) {
			return UnlockResult{}, ErrTooManyAttempts
		}
	}

	hash, err := s.repo.GetPasswordHash(ctx, plan.Id)
	if err != nil {
		return UnlockResult{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		log.Debugf("wrong password for shared plan %d", plan.Id)
		return UnlockResult{}, ErrInvalidPassword
	}
	if err := s.store.Delete(ctx, unlockAttemptsKey(slug, clientKey)); err != nil {
		log.Warnf("failed to reset unlock attempts for %s: %v", slug, err)
	}

	token, expiresAt, err := s.tokens.Generate(plan)
	if err != nil {
		return UnlockResult{}, err
	}
	return UnlockResult{Token: token, ExpiresAt: expiresAt}, nil
}

// lookup resolves a slug to a public plan. Private plans are reported as not found.
func (s *PublicServiceImpl) lookup(ctx context.Context, slug string) (Plan, error) {
	plan, err := cache.GetOrSet(ctx, s.store, publicPlanKey(slug), publicPlanTTL, func() (Plan, error) {
		return s.repo.GetPlanBySlug(ctx, slug)
	})
	if err != nil {
		return Plan{}, err
	}
	if !plan.IsPublic {
		return Plan{}, ErrPlanNotFound
	}
	return plan, nil
}

// SubscribeCacheInvalidation drops cached public plans whenever a plan changes or is deleted.
func SubscribeCacheInvalidation(bus *event_bus.EventBus, store cache.Store) {
	invalidate := func(e event_bus.EventT[event_bus.PlanChanged]) error {
		if e.Data.ShareSlug == "" {
			return nil
		}
		if err := store.Delete(e.Context(), publicPlanKey(e.Data.ShareSlug)); err != nil {
			return fmt.Errorf("failed to invalidate public plan %d: %w", e.Data.PlanId, err)
		}
		return nil
	}
	event_bus.SubscribeTyped(bus, event_bus.PlanUpdated, invalidate)
	event_bus.SubscribeTyped(bus, event_bus.PlanDeleted, invalidate)
}

func publicPlanKey(slug string) string {
	return "tripkas:public-plan:" + slug
}

func unlockAttemptsKey(slug string, clientKey string) string {
	return "tripkas:unlock-attempts:" + slug + ":" + clientKey
}
