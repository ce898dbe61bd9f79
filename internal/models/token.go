package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TokenTTL is how long an unsubscribe token stays redeemable.
const TokenTTL = 30 * 24 * time.Hour

// UnsubscribeToken is a single-use credential that authorizes a preference
// change without authentication. It is bound to the email address the user
// had at send time.
type UnsubscribeToken struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Token     string             `bson:"token" json:"token"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Email     string             `bson:"email" json:"email"`
	Category  Category           `bson:"category" json:"category"`
	ExpiresAt time.Time          `bson:"expires_at" json:"expires_at"`
	UsedAt    *time.Time         `bson:"used_at,omitempty" json:"used_at,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// Redeemable reports whether the token is still unused and unexpired.
func (t *UnsubscribeToken) Redeemable(now time.Time) bool {
	return t.UsedAt == nil && now.Before(t.ExpiresAt)
}
