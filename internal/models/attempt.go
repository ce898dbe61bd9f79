package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TestAttempt is one answered question from a practice test. The weekly
// digest aggregates these per topic to find problem areas.
type TestAttempt struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"user_id" json:"user_id"`
	QuestionID  primitive.ObjectID `bson:"question_id" json:"question_id"`
	Topic       string             `bson:"topic" json:"topic"`
	Correct     bool               `bson:"correct" json:"correct"`
	CompletedAt time.Time          `bson:"completed_at" json:"completed_at"`
}
