package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/opositest/notification-service/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// AttemptRepository handles the test_attempts collection.
type AttemptRepository struct {
	collection *mongo.Collection
}

func NewAttemptRepository(db *mongo.Database) *AttemptRepository {
	return &AttemptRepository{
		collection: db.Collection("test_attempts"),
	}
}

// HasAnyAttempt reports whether the user completed at least one practice question.
func (r *AttemptRepository) HasAnyAttempt(ctx context.Context, userID primitive.ObjectID) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"user_id": userID}, nil)
	if err != nil {
		return false, fmt.Errorf("failed to count attempts: %v", err)
	}
	return count > 0, nil
}

// GetUserAttemptsSince returns the user's attempts completed after the cutoff.
func (r *AttemptRepository) GetUserAttemptsSince(ctx context.Context, userID primitive.ObjectID, since time.Time) ([]models.TestAttempt, error) {
	filter := bson.M{
		"user_id":      userID,
		"completed_at": bson.M{"$gte": since},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch attempts: %v", err)
	}
	defer cursor.Close(ctx)

	var attempts []models.TestAttempt
	if err := cursor.All(ctx, &attempts); err != nil {
		return nil, fmt.Errorf("failed to decode attempts: %v", err)
	}
	return attempts, nil
}
