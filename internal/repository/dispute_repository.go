package repository

import (
	"context"
	"fmt"

	"github.com/opositest/notification-service/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// DisputeRepository handles the disputes collection.
type DisputeRepository struct {
	collection *mongo.Collection
}

func NewDisputeRepository(db *mongo.Database) *DisputeRepository {
	return &DisputeRepository{
		collection: db.Collection("disputes"),
	}
}

// GetByID retrieves a dispute. A missing row is reported as mongo.ErrNoDocuments.
func (r *DisputeRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Dispute, error) {
	var dispute models.Dispute
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&dispute)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find dispute: %v", err)
	}
	return &dispute, nil
}
