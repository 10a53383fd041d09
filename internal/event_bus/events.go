package event_bus

const (
	PlanUpdated         EventType = "plan.updated"
	PlanDeleted         EventType = "plan.deleted"
	ContributionChanged EventType = "contribution.changed"
)

type PlanChanged struct {
	PlanId    int
	ShareSlug string
}

// ContributionMutation is published after a contribution mutation and its history record were committed.
type ContributionMutation struct {
	PlanId         int
	ContributionId int
	ParticipantId  int
	// Kind is the payment history kind: payment, cap or adjustment.
	Kind string
}
