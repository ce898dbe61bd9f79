package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/opositest/notification-service/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// TokenRepository handles the email_unsubscribe_tokens collection.
type TokenRepository struct {
	collection *mongo.Collection
}

func NewTokenRepository(db *mongo.Database) *TokenRepository {
	return &TokenRepository{
		collection: db.Collection("email_unsubscribe_tokens"),
	}
}

// Insert stores a freshly issued token.
func (r *TokenRepository) Insert(ctx context.Context, token *models.UnsubscribeToken) error {
	_, err := r.collection.InsertOne(ctx, token)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert unsubscribe token")
		return fmt.Errorf("failed to insert token: %v", err)
	}
	return nil
}

// FindByToken looks up a token row regardless of its state. A missing row is
// reported as mongo.ErrNoDocuments.
func (r *TokenRepository) FindByToken(ctx context.Context, token string) (*models.UnsubscribeToken, error) {
	var row models.UnsubscribeToken
	err := r.collection.FindOne(ctx, bson.M{"token": token}).Decode(&row)
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// MarkUsedIfUnused atomically marks a token used, but only if it is still
// unused and unexpired. Returns false when another redemption already claimed
// it. The conditional update is what makes double redemption impossible.
func (r *TokenRepository) MarkUsedIfUnused(ctx context.Context, token string, now time.Time) (bool, error) {
	filter := bson.M{
		"token":      token,
		"used_at":    nil,
		"expires_at": bson.M{"$gt": now},
	}
	update := bson.M{"$set": bson.M{"used_at": now}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		logrus.WithError(err).Error("Failed to mark token as used")
		return false, fmt.Errorf("failed to mark token used: %v", err)
	}
	return result.ModifiedCount == 1, nil
}

// DeleteExpired garbage-collects tokens past their expiration.
func (r *TokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lte": time.Now()}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %v", err)
	}
	logrus.Infof("Deleted %d expired unsubscribe tokens", result.DeletedCount)
	return result.DeletedCount, nil
}
