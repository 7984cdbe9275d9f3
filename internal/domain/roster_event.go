package domain

import "time"

// RosterEventType enumerates the kinds of membership change.
type RosterEventType string

const (
	EventSignup     RosterEventType = "signup"
	EventUnregister RosterEventType = "unregister"
)

// RosterEvent records one successful signup or unregister.
type RosterEvent struct {
	ID               string          `json:"id"`
	Type             RosterEventType `json:"type"`
	Activity         string          `json:"activity"`
	Email            string          `json:"email"`
	ParticipantCount int             `json:"participant_count"`
	OccurredAt       time.Time       `json:"occurred_at"`
}
