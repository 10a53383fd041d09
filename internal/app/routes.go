package app

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	// Plans
	r.HandleFunc("/api/plan", deps.PlanHandler.ListPlans).Methods("GET")
	r.HandleFunc("/api/plan", deps.PlanHandler.CreatePlan).Methods("POST")
	r.HandleFunc("/api/plan/{planId}", deps.PlanHandler.GetPlan).Methods("GET")
	r.HandleFunc("/api/plan/{planId}", deps.PlanHandler.UpdatePlan).Methods("PUT")
	r.HandleFunc("/api/plan/{planId}", deps.PlanHandler.DeletePlan).Methods("DELETE")
	r.HandleFunc("/api/plan/{planId}/share", deps.PlanHandler.UpdateSharing).Methods("PUT")
	r.HandleFunc("/api/plan/{planId}/collaborator", deps.PlanHandler.ListCollaborators).Methods("GET")
	r.HandleFunc("/api/plan/{planId}/collaborator", deps.PlanHandler.AddCollaborator).Methods("POST")
	r.HandleFunc("/api/plan/{planId}/collaborator/{userId}", deps.PlanHandler.RemoveCollaborator).Methods("DELETE")

	// Participants
	r.HandleFunc("/api/plan/{planId}/participant", deps.ParticipantHandler.List).Methods("GET")
	r.HandleFunc("/api/plan/{planId}/participant", deps.ParticipantHandler.Create).Methods("POST")
	r.HandleFunc("/api/plan/{planId}/participant/{participantId}", deps.ParticipantHandler.Update).Methods("PUT")
	r.HandleFunc("/api/plan/{planId}/participant/{participantId}", deps.ParticipantHandler.Delete).Methods("DELETE")

	// Expenses
	r.HandleFunc("/api/plan/{planId}/expense/category", deps.ExpenseHandler.ListCategories).Methods("GET")
	r.HandleFunc("/api/plan/{planId}/expense/category", deps.ExpenseHandler.CreateCategory).Methods("POST")
	r.HandleFunc("/api/plan/{planId}/expense/category/{categoryId}", deps.ExpenseHandler.DeleteCategory).Methods("DELETE")
	r.HandleFunc("/api/plan/{planId}/expense", deps.ExpenseHandler.ListItems).Methods("GET")
	r.HandleFunc("/api/plan/{planId}/expense", deps.ExpenseHandler.CreateItem).Methods("POST")
	r.HandleFunc("/api/plan/{planId}/expense/{itemId}", deps.ExpenseHandler.GetItem).Methods("GET")
	r.HandleFunc("/api/plan/{planId}/expense/{itemId}", deps.ExpenseHandler.UpdateItem).Methods("PUT")
	r.HandleFunc("/api/plan/{planId}/expense/{itemId}", deps.ExpenseHandler.DeleteItem).Methods("DELETE")

	// Contributions and their history
	r.HandleFunc("/api/plan/{planId}/contribution", deps.ContributionHandler.List).Methods("GET")
	r.HandleFunc("/api/plan/{planId}/contribution/{id}/payment", deps.ContributionHandler.RecordPayment).Methods("PUT")
	r.HandleFunc("/api/plan/{planId}/contribution/{id}/paid", deps.ContributionHandler.MarkPaid).Methods("PUT")
	r.HandleFunc("/api/plan/{planId}/contribution/{id}/maxpay", deps.ContributionHandler.SetMaxPay).Methods("PUT")
	r.HandleFunc("/api/plan/{planId}/contribution/{id}/maxpay", deps.ContributionHandler.RemoveMaxPay).Methods("DELETE")
	r.HandleFunc("/api/plan/{planId}/contribution/{id}/amount", deps.ContributionHandler.Adjust).Methods("PUT")
	r.HandleFunc("/api/plan/{planId}/history", deps.PaymentHistoryHandler.List).Methods("GET")

	// Settlement
	r.HandleFunc("/api/plan/{planId}/settlement", deps.SettlementHandler.GetView).Methods("GET")
	r.HandleFunc("/api/plan/{planId}/settlement/report.csv", deps.SettlementHandler.GetReport).Methods("GET")

	// Split bills
	r.HandleFunc("/api/plan/{planId}/splitbill/preview", deps.SplitBillHandler.Preview).Methods("POST")
	r.HandleFunc("/api/plan/{planId}/splitbill", deps.SplitBillHandler.List).Methods("GET")
	r.HandleFunc("/api/plan/{planId}/splitbill", deps.SplitBillHandler.Create).Methods("POST")
	r.HandleFunc("/api/plan/{planId}/splitbill/{billId}", deps.SplitBillHandler.Get).Methods("GET")
	r.HandleFunc("/api/plan/{planId}/splitbill/{billId}", deps.SplitBillHandler.Update).Methods("PUT")
	r.HandleFunc("/api/plan/{planId}/splitbill/{billId}", deps.SplitBillHandler.Delete).Methods("DELETE")
	r.HandleFunc("/api/plan/{planId}/splitbill/{billId}/payment/{participantId}", deps.SplitBillHandler.RecordPayment).Methods("PUT")

	// Rundown
	r.HandleFunc("/api/plan/{planId}/rundown", deps.RundownHandler.List).Methods("GET")
	r.HandleFunc("/api/plan/{planId}/rundown", deps.RundownHandler.Create).Methods("POST")
	r.HandleFunc("/api/plan/{planId}/rundown/export", deps.RundownHandler.Export).Methods("POST")
	r.HandleFunc("/api/plan/{planId}/rundown/{entryId}", deps.RundownHandler.Update).Methods("PUT")
	r.HandleFunc("/api/plan/{planId}/rundown/{entryId}", deps.RundownHandler.Delete).Methods("DELETE")

	// Notes
	r.HandleFunc("/api/plan/{planId}/note", deps.NoteHandler.List).Methods("GET")
	r.HandleFunc("/api/plan/{planId}/note", deps.NoteHandler.Create).Methods("POST")
	r.HandleFunc("/api/plan/{planId}/note/{noteId}", deps.NoteHandler.Update).Methods("PUT")
	r.HandleFunc("/api/plan/{planId}/note/{noteId}", deps.NoteHandler.Delete).Methods("DELETE")

	// User management
	r.HandleFunc("/api/user/current", deps.UserHandler.CurrentUser).Methods("GET")
	r.HandleFunc("/api/user/current", deps.UserHandler.UpdateUser).Methods("PUT")
	r.HandleFunc("/api/user", deps.UserHandler.CreateUser).Methods("POST")
	r.HandleFunc("/api/user", deps.UserHandler.GetAvailableUsers).Methods("GET")

	// Public share links
	r.HandleFunc("/api/public/{slug}", deps.PublicPlanHandler.GetPublicPlan).Methods("GET")
	r.HandleFunc("/api/public/{slug}/unlock", deps.PublicPlanHandler.Unlock).Methods("POST")
	r.HandleFunc("/api/public/{slug}/settlement", deps.SettlementHandler.GetPublicView).Methods("GET")

	// Google integration
	r.HandleFunc("/api/integrations/google/auth/login", deps.GoogleAuth.OAuthLogin).Methods("GET")
	r.HandleFunc("/api/integrations/google/auth/logout", deps.GoogleAuth.OAuthLogout).Methods("DELETE")
	r.HandleFunc("/api/integrations/google/auth/callback", deps.GoogleAuth.OAuthCallback).Methods("GET")
	r.HandleFunc("/api/integrations/google/calendars", deps.GoogleHandler.ListCalendars).Methods("GET")

	r.Handle("/metrics", deps.Metrics.Handler()).Methods("GET")
}
