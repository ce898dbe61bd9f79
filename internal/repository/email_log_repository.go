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
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EmailLogRepository handles the append-only email_logs collection. Entries
// are inserted once and never updated.
type EmailLogRepository struct {
	collection *mongo.Collection
}

func NewEmailLogRepository(db *mongo.Database) *EmailLogRepository {
	return &EmailLogRepository{
		collection: db.Collection("email_logs"),
	}
}

// Insert appends one send-attempt record.
func (r *EmailLogRepository) Insert(ctx context.Context, entry *models.EmailLogEntry) error {
	entry.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, entry)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert email log entry")
		return fmt.Errorf("failed to insert email log: %v", err)
	}
	return nil
}

// GetLatestByCategory returns the most recent log entry of a category for a
// user, used for near-duplicate suppression. Missing entries are reported as
// mongo.ErrNoDocuments.
func (r *EmailLogRepository) GetLatestByCategory(ctx context.Context, userID primitive.ObjectID, category models.Category) (*models.EmailLogEntry, error) {
	filter := bson.M{
		"user_id":  userID,
		"category": category,
		"status":   models.StatusSent,
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})

	var entry models.EmailLogEntry
	err := r.collection.FindOne(ctx, filter, opts).Decode(&entry)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListByBatchAndStatus returns the entries of one batch with a given status,
// used by the retry path to rebuild the failed subset.
func (r *EmailLogRepository) ListByBatchAndStatus(ctx context.Context, batchID string, status models.SendStatus) ([]models.EmailLogEntry, error) {
	filter := bson.M{"batch_id": batchID, "status": status}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch batch entries: %v", err)
	}
	defer cursor.Close(ctx)

	var entries []models.EmailLogEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode batch entries: %v", err)
	}
	return entries, nil
}

// ListRecent returns the newest log entries for the admin panel.
func (r *EmailLogRepository) ListRecent(ctx context.Context, limit int) ([]models.EmailLogEntry, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch email logs: %v", err)
	}
	defer cursor.Close(ctx)

	var entries []models.EmailLogEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode email logs: %v", err)
	}
	return entries, nil
}
