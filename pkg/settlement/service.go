package settlement

import (
	"context"
	"fmt"
	"time"

	"github.com/tripkas/tripkas/pkg/contribution"
	"github.com/tripkas/tripkas/pkg/expense"
	"github.com/tripkas/tripkas/pkg/participant"
	"github.com/tripkas/tripkas/pkg/plan"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type Service interface {
	GetView(ctx context.Context, planId int) (View, error)
	// GetReport renders the outstanding balances of a plan as CSV.
	GetReport(ctx context.Context, planId int) (string, error)
	// GetPublicView computes the view of a plan shared under slug.
	GetPublicView(ctx context.Context, slug string, token string) (View, error)
}

// Observer receives the time spent computing each view.
type Observer interface {
	ObserveSettlement(d time.Duration)
}

type ServiceImpl struct {
	participants  participant.Repository
	expenses      expense.Repository
	contributions contribution.Repository
	authorizer    plan.Authorizer
	public        plan.PublicService
	renderer      Renderer
	observer      Observer
}

func NewService(
	participants participant.Repository,
	expenses expense.Repository,
	contributions contribution.Repository,
	authorizer plan.Authorizer,
	public plan.PublicService,
	renderer Renderer,
	observer Observer,
) *ServiceImpl {
	return &ServiceImpl{
		participants:  participants,
		expenses:      expenses,
		contributions: contributions,
		authorizer:    authorizer,
		public:        public,
		renderer:      renderer,
		observer:      observer,
	}
}

func (s *ServiceImpl) GetView(ctx context.Context, planId int) (View, error) {
	if err := s.authorizer.CanView(ctx, planId); err != nil {
		return View{}, err
	}
	return s.compute(ctx, planId)
}

func (s *ServiceImpl) GetReport(ctx context.Context, planId int) (string, error) {
	view, err := s.GetView(ctx, planId)
	if err != nil {
		return "", err
	}
	return s.renderer.Render(view)
}

func (s *ServiceImpl) GetPublicView(ctx context.Context, slug string, token string) (View, error) {
	p, err := s.public.GetPublicPlan(ctx, slug, token)
	if err != nil {
		return View{}, err
	}
	return s.compute(ctx, p.Id)
}

func (s *ServiceImpl) compute(ctx context.Context, planId int) (View, error) {
	var participants []participant.Participant
	var items []expense.Item
	var contributions []contribution.Contribution

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		participants, err = s.participants.ListParticipants(gctx, planId)
		return err
	})
	g.Go(func() error {
		var err error
		items, err = s.expenses.ListItems(gctx, planId)
		return err
	})
	g.Go(func() error {
		var err error
		contributions, err = s.contributions.List(gctx, planId, contribution.Filter{})
		return err
	})
	if err := g.Wait(); err != nil {
		return View{}, fmt.Errorf("failed to load settlement inputs of plan %d: %w", planId, err)
	}

	start := time.Now()
	roster := participant.NewRoster(participants)
	lines := buildLines(roster, items, contributions)
	view := Compute(lines)

	names := make(map[int]string, len(participants))
	for _, p := range participants {
		names[p.Id] = p.Name
	}
	view.decorate(names)

	if s.observer != nil {
		s.observer.ObserveSettlement(time.Since(start))
	}
	return view, nil
}

// buildLines attaches each contribution to the collector of its expense item. Contributions whose
// item or collector cannot be resolved are left out.
func buildLines(roster participant.Roster, items []expense.Item, contributions []contribution.Contribution) []Line {
	collectors := make(map[int]int, len(items))
	for _, item := range items {
		collector, err := participant.Resolve(roster, participant.RefById(item.CollectorId))
		if err != nil {
			log.Warnf("expense item %d has unknown collector %d", item.Id, item.CollectorId)
			continue
		}
		collectors[item.Id] = collector.Id
	}

	lines := make([]Line, 0, len(contributions))
	for _, c := range contributions {
		collectorId, ok := collectors[c.ExpenseItemId]
		if !ok {
			log.Warnf("contribution %d references unknown expense item %d", c.Id, c.ExpenseItemId)
			continue
		}
		lines = append(lines, Line{
			CollectorId:   collectorId,
			ParticipantId: c.ParticipantId,
			Amount:        c.Amount,
			Paid:          c.Paid,
			MaxPay:        c.MaxPay,
		})
	}
	return lines
}
