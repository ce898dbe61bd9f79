package repository

import (
	"context"
	"fmt"

	"github.com/opositest/notification-service/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// SupportRepository handles the support_tickets collection.
type SupportRepository struct {
	collection *mongo.Collection
}

func NewSupportRepository(db *mongo.Database) *SupportRepository {
	return &SupportRepository{
		collection: db.Collection("support_tickets"),
	}
}

// GetByID retrieves a support ticket. A missing row is reported as mongo.ErrNoDocuments.
func (r *SupportRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.SupportTicket, error) {
	var ticket models.SupportTicket
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&ticket)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find support ticket: %v", err)
	}
	return &ticket, nil
}
