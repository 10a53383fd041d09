package app

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tripkas/tripkas/internal/cache"
	"github.com/tripkas/tripkas/internal/config"
	"github.com/tripkas/tripkas/internal/event_bus"
	"github.com/tripkas/tripkas/internal/metrics"
	"github.com/tripkas/tripkas/internal/utils"
	"github.com/tripkas/tripkas/pkg/contribution"
	"github.com/tripkas/tripkas/pkg/expense"
	"github.com/tripkas/tripkas/pkg/google"
	"github.com/tripkas/tripkas/pkg/note"
	"github.com/tripkas/tripkas/pkg/participant"
	"github.com/tripkas/tripkas/pkg/payment_history"
	"github.com/tripkas/tripkas/pkg/plan"
	"github.com/tripkas/tripkas/pkg/rundown"
	"github.com/tripkas/tripkas/pkg/settlement"
	"github.com/tripkas/tripkas/pkg/split_bill"
	"github.com/tripkas/tripkas/pkg/user"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Clock    utils.Clock
	EventBus *event_bus.EventBus
	Metrics  *metrics.Metrics

	UserRepo    user.Repo
	UserService user.Service
	UserHandler *user.Handler

	PlanRepo          plan.Repository
	Authorizer        plan.Authorizer
	PlanService       *plan.ServiceImpl
	PlanHandler       *plan.Handler
	PublicPlanService *plan.PublicServiceImpl
	PublicPlanHandler *plan.PublicHandler

	ParticipantRepo    participant.Repository
	ParticipantService *participant.ServiceImpl
	ParticipantHandler *participant.Handler

	ExpenseRepo    expense.Repository
	ExpenseService *expense.ServiceImpl
	ExpenseHandler *expense.Handler

	PaymentHistoryRepo    payment_history.Repository
	PaymentHistoryService *payment_history.ServiceImpl
	PaymentHistoryHandler *payment_history.Handler

	ContributionRepo    contribution.Repository
	ContributionService *contribution.ServiceImpl
	ContributionHandler *contribution.Handler

	SettlementService *settlement.ServiceImpl
	SettlementHandler *settlement.Handler

	SplitBillService *split_bill.ServiceImpl
	SplitBillHandler *split_bill.Handler

	GoogleAuth    *google.GoogleAuth
	GoogleService google.Service
	GoogleHandler *google.Handler

	RundownService *rundown.ServiceImpl
	RundownHandler *rundown.Handler

	NoteService *note.ServiceImpl
	NoteHandler *note.Handler
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *pgxpool.Pool, store cache.Store, cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.Clock = &utils.SystemClock{}
	deps.EventBus = event_bus.NewEventBus()
	deps.Metrics = metrics.New()
	deps.Metrics.SubscribeTo(deps.EventBus)

	deps.UserRepo = user.NewUserRepo(db)
	deps.UserService = user.NewUserService(deps.UserRepo, cfg.Auth.EnvAdmins)
	deps.UserHandler = user.NewHandler(deps.UserService)

	deps.PlanRepo = plan.NewRepository(db)
	deps.Authorizer = plan.NewAuthorizer(deps.PlanRepo)
	deps.PlanService = plan.NewService(deps.PlanRepo, deps.Authorizer, deps.UserRepo, deps.EventBus, cfg.Limits.FreePlans)
	deps.PlanHandler = plan.NewHandler(deps.PlanService)
	tokens := plan.NewTokenManager(cfg.Auth.JwtSecret, cfg.Auth.PublicTokenTTL, deps.Clock)
	deps.PublicPlanService = plan.NewPublicService(deps.PlanRepo, store, tokens, plan.UnlockLimit{
		Attempts: cfg.Auth.UnlockAttempts,
		Window:   cfg.Auth.UnlockWindow,
	})
	deps.PublicPlanHandler = plan.NewPublicHandler(deps.PublicPlanService)
	plan.SubscribeCacheInvalidation(deps.EventBus, store)

	deps.ParticipantRepo = participant.NewRepository(db)
	deps.ParticipantService = participant.NewService(deps.ParticipantRepo, deps.Authorizer, deps.UserRepo)
	deps.ParticipantHandler = participant.NewHandler(deps.ParticipantService)

	deps.ExpenseRepo = expense.NewRepository(db)
	deps.ExpenseService = expense.NewService(deps.ExpenseRepo, deps.ParticipantRepo, deps.Authorizer)
	deps.ExpenseHandler = expense.NewHandler(deps.ExpenseService)

	deps.PaymentHistoryRepo = payment_history.NewRepository(db)
	deps.PaymentHistoryService = payment_history.NewService(deps.PaymentHistoryRepo, deps.Authorizer, deps.Clock)
	deps.PaymentHistoryHandler = payment_history.NewHandler(deps.PaymentHistoryService)

	deps.ContributionRepo = contribution.NewRepository(db)
	deps.ContributionService = contribution.NewService(deps.ContributionRepo, deps.PaymentHistoryService, deps.Authorizer, deps.EventBus)
	deps.ContributionHandler = contribution.NewHandler(deps.ContributionService)

	deps.SettlementService = settlement.NewService(
		deps.ParticipantRepo,
		deps.ExpenseRepo,
		deps.ContributionRepo,
		deps.Authorizer,
		deps.PublicPlanService,
		settlement.NewCsvRenderer(),
		deps.Metrics,
	)
	deps.SettlementHandler = settlement.NewHandler(deps.SettlementService)

	deps.SplitBillService = split_bill.NewService(split_bill.NewRepository(db), deps.ParticipantRepo, deps.Authorizer)
	deps.SplitBillHandler = split_bill.NewHandler(deps.SplitBillService)

	deps.GoogleAuth = google.NewGoogleAuth(google.NewTokenRepository(db), cfg)
	deps.GoogleService = google.NewService(deps.GoogleAuth)
	deps.GoogleHandler = google.NewHandler(deps.GoogleService)

	deps.RundownService = rundown.NewService(rundown.NewRepository(db), deps.Authorizer, deps.GoogleService)
	deps.RundownHandler = rundown.NewHandler(deps.RundownService)

	deps.NoteService = note.NewService(note.NewRepository(db), deps.Authorizer, deps.Clock)
	deps.NoteHandler = note.NewHandler(deps.NoteService)

	return deps
}
