package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DigestItem is one problem area surfaced by the weekly digest: a topic the
// user answered incorrectly often enough during the trailing week.
type DigestItem struct {
	Topic       string  `json:"topic"`
	Attempts    int     `json:"attempts"`
	Failures    int     `json:"failures"`
	FailureRate float64 `json:"failure_rate"`
}

// NotificationCandidate is a user selected by an activity signal for one
// notification category. Candidates are built per detection run and consumed
// immediately; they are never persisted.
type NotificationCandidate struct {
	UserID                primitive.ObjectID `json:"user_id"`
	Email                 string             `json:"email"`
	DisplayName           string             `json:"display_name"`
	Category              Category           `json:"category"`
	Priority              int                `json:"priority"`
	DaysInactive          int                `json:"days_inactive,omitempty"`
	DaysSinceRegistration int                `json:"days_since_registration,omitempty"`
	DigestItems           []DigestItem       `json:"digest_items,omitempty"`
}
