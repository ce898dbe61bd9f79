package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SupportTicket is a user support request. When an admin replies, the user is
// emailed unless they are currently online in the app.
type SupportTicket struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID `bson:"user_id" json:"user_id"`
	Subject    string             `bson:"subject" json:"subject"`
	Message    string             `bson:"message" json:"message"`
	AdminReply string             `bson:"admin_reply" json:"admin_reply"`
	Status     string             `bson:"status" json:"status"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
	RepliedAt  *time.Time         `bson:"replied_at,omitempty" json:"replied_at,omitempty"`
}
