package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SendStatus is the terminal outcome of one send attempt.
type SendStatus string

const (
	StatusSent      SendStatus = "sent"
	StatusFailed    SendStatus = "failed"
	StatusCancelled SendStatus = "cancelled"
)

// EmailLogEntry is one row per send attempt in the append-only email_logs
// collection. Entries are never updated after insertion.
type EmailLogEntry struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Email     string             `bson:"email" json:"email"`
	Category  Category           `bson:"category" json:"category"`
	Subject   string             `bson:"subject" json:"subject"`
	Status    SendStatus         `bson:"status" json:"status"`
	Error     string             `bson:"error,omitempty" json:"error,omitempty"`
	MessageID string             `bson:"message_id,omitempty" json:"message_id,omitempty"`
	BatchID   string             `bson:"batch_id,omitempty" json:"batch_id,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
