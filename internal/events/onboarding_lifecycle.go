package events

import "time"

const OnboardingLifecycleTopic = "hr.onboarding.lifecycle.v1"

// OnboardingLifecycleEvent is emitted once per recorded lifecycle action.
type OnboardingLifecycleEvent struct {
	EventType    string    `json:"event_type"`
	RequestID    string    `json:"request_id,omitempty"`
	OnboardingID string    `json:"onboarding_id"`
	Subsidiary   string    `json:"subsidiary"`
	Status       string    `json:"status"`
	ActorType    string    `json:"actor_type"`
	ActorID      string    `json:"actor_id,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}
