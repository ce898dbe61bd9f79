package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationPreference holds the per-category opt-in flags for one user.
// A row is created lazily with all categories enabled on first read and is
// never hard-deleted.
type NotificationPreference struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID              primitive.ObjectID `bson:"user_id" json:"user_id"`
	InactivityGentle    bool               `bson:"inactivity_gentle" json:"inactivity_gentle"`
	InactivityUrgent    bool               `bson:"inactivity_urgent" json:"inactivity_urgent"`
	MotivationalWelcome bool               `bson:"motivational_welcome" json:"motivational_welcome"`
	ImmediateWelcome    bool               `bson:"immediate_welcome" json:"immediate_welcome"`
	WeeklyDigest        bool               `bson:"weekly_digest" json:"weekly_digest"`
	SupportReply        bool               `bson:"support_reply" json:"support_reply"`
	OptedOutOfAll       bool               `bson:"opted_out_of_all" json:"opted_out_of_all"`
	OptedOutAt          *time.Time         `bson:"opted_out_at,omitempty" json:"opted_out_at,omitempty"`
	CreatedAt           time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt           time.Time          `bson:"updated_at" json:"updated_at"`
}

// DefaultPreference returns the all-enabled preference row created on first read.
func DefaultPreference(userID primitive.ObjectID) *NotificationPreference {
	now := time.Now()
	return &NotificationPreference{
		UserID:              userID,
		InactivityGentle:    Categories[CategoryInactivityGentle].DefaultEnabled,
		InactivityUrgent:    Categories[CategoryInactivityUrgent].DefaultEnabled,
		MotivationalWelcome: Categories[CategoryMotivationalWelcome].DefaultEnabled,
		ImmediateWelcome:    Categories[CategoryImmediateWelcome].DefaultEnabled,
		WeeklyDigest:        Categories[CategoryWeeklyDigest].DefaultEnabled,
		SupportReply:        Categories[CategorySupportReply].DefaultEnabled,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

// DeniedPreference returns an all-disabled row. It is what preference reads
// degrade to when the store errors, so uncertainty never causes a send.
func DeniedPreference(userID primitive.ObjectID) *NotificationPreference {
	return &NotificationPreference{UserID: userID, OptedOutOfAll: true}
}

// Allows reports whether the category may be sent to this user. The global
// opt-out wins over every per-category flag; unknown categories are denied.
func (p *NotificationPreference) Allows(c Category) bool {
	if p.OptedOutOfAll {
		return false
	}
	switch c {
	case CategoryInactivityGentle:
		return p.InactivityGentle
	case CategoryInactivityUrgent:
		return p.InactivityUrgent
	case CategoryMotivationalWelcome:
		return p.MotivationalWelcome
	case CategoryImmediateWelcome:
		return p.ImmediateWelcome
	case CategoryWeeklyDigest:
		return p.WeeklyDigest
	case CategorySupportReply:
		return p.SupportReply
	default:
		return false
	}
}

// Disable clears the flag for a single category.
func (p *NotificationPreference) Disable(c Category) {
	switch c {
	case CategoryInactivityGentle:
		p.InactivityGentle = false
	case CategoryInactivityUrgent:
		p.InactivityUrgent = false
	case CategoryMotivationalWelcome:
		p.MotivationalWelcome = false
	case CategoryImmediateWelcome:
		p.ImmediateWelcome = false
	case CategoryWeeklyDigest:
		p.WeeklyDigest = false
	case CategorySupportReply:
		p.SupportReply = false
	}
}

// DisableAll clears every category flag and sets the global opt-out.
func (p *NotificationPreference) DisableAll(at time.Time) {
	for _, c := range AllCategories() {
		p.Disable(c)
	}
	p.OptedOutOfAll = true
	p.OptedOutAt = &at
}
