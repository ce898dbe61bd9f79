package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/opositest/notification-service/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// PreferenceRepository handles the email_preferences collection.
type PreferenceRepository struct {
	collection *mongo.Collection
}

func NewPreferenceRepository(db *mongo.Database) *PreferenceRepository {
	return &PreferenceRepository{
		collection: db.Collection("email_preferences"),
	}
}

// Get fetches the preference row for a user. A missing row is reported as
// mongo.ErrNoDocuments so callers can tell absence from a real read failure.
func (r *PreferenceRepository) Get(ctx context.Context, userID primitive.ObjectID) (*models.NotificationPreference, error) {
	var pref models.NotificationPreference
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&pref)
	if err != nil {
		return nil, err
	}
	return &pref, nil
}

// Insert creates a preference row.
func (r *PreferenceRepository) Insert(ctx context.Context, pref *models.NotificationPreference) error {
	_, err := r.collection.InsertOne(ctx, pref)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert preference row")
		return fmt.Errorf("failed to insert preferences: %v", err)
	}
	return nil
}

// Update replaces the mutable fields of a user's preference row.
func (r *PreferenceRepository) Update(ctx context.Context, userID primitive.ObjectID, pref *models.NotificationPreference) error {
	update := bson.M{"$set": bson.M{
		"inactivity_gentle":    pref.InactivityGentle,
		"inactivity_urgent":    pref.InactivityUrgent,
		"motivational_welcome": pref.MotivationalWelcome,
		"immediate_welcome":    pref.ImmediateWelcome,
		"weekly_digest":        pref.WeeklyDigest,
		"support_reply":        pref.SupportReply,
		"opted_out_of_all":     pref.OptedOutOfAll,
		"opted_out_at":         pref.OptedOutAt,
		"updated_at":           time.Now(),
	}}

	_, err := r.collection.UpdateOne(ctx, bson.M{"user_id": userID}, update)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"userID": userID.Hex(),
			"error":  err,
		}).Error("Failed to update preferences")
		return fmt.Errorf("failed to update preferences: %v", err)
	}
	return nil
}
