package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DisputeKind distinguishes question disputes from psychometric-test disputes.
type DisputeKind string

const (
	DisputeKindGeneral      DisputeKind = "general"
	DisputeKindPsychometric DisputeKind = "psychometric"
)

// DisputeStatus is the review state of a dispute.
type DisputeStatus string

const (
	DisputeStatusPending  DisputeStatus = "pending"
	DisputeStatusAccepted DisputeStatus = "accepted"
	DisputeStatusRejected DisputeStatus = "rejected"
)

// Dispute is a user challenge against a question (impugnación). The admin
// resolution triggers a transactional email to the user.
type Dispute struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID `bson:"user_id" json:"user_id"`
	QuestionID    primitive.ObjectID `bson:"question_id" json:"question_id"`
	Kind          DisputeKind        `bson:"kind" json:"kind"`
	Reason        string             `bson:"reason" json:"reason"`
	Status        DisputeStatus      `bson:"status" json:"status"`
	AdminResponse string             `bson:"admin_response" json:"admin_response"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	ResolvedAt    *time.Time         `bson:"resolved_at,omitempty" json:"resolved_at,omitempty"`
}
