package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shopfront/internal/models"
	"shopfront/pkg/mongodb"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoReviewRepository is a MongoDB implementation of ReviewRepository.
// Uniqueness of (user, product) comes from the index created by mongodb.EnsureIndexes.
type MongoReviewRepository struct {
	collection *mongo.Collection
}

// NewMongoReviewRepository creates a new instance of MongoReviewRepository.
func NewMongoReviewRepository(db *mongo.Database) *MongoReviewRepository {
	return &MongoReviewRepository{
		collection: db.Collection(mongodb.ReviewsCollection),
	}
}

// Create inserts a review, translating unique index violations to ErrDuplicate.
func (r *MongoReviewRepository) Create(ctx context.Context, review *models.Review) error {
	if review.ID == "" {
		review.ID = uuid.New().String()
	}
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now().UTC()
	}
	if _, err := r.collection.InsertOne(ctx, review); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("review by user %s for product %s: %w", review.UserID, review.ProductID, ErrDuplicate)
		}
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

// GetByUserAndProduct retrieves the user's review of a product.
func (r *MongoReviewRepository) GetByUserAndProduct(ctx context.Context, userID, productID string) (*models.Review, error) {
	var review models.Review
	err := r.collection.FindOne(ctx, bson.M{"user": userID, "product": productID}).Decode(&review)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("review by user %s for product %s: %w", userID, productID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return &review, nil
}

// GetByProduct retrieves a product's reviews, newest first.
func (r *MongoReviewRepository) GetByProduct(ctx context.Context, productID string) ([]models.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return r.find(ctx, bson.M{"product": productID}, opts)
}

// GetByUser retrieves all reviews written by a user.
func (r *MongoReviewRepository) GetByUser(ctx context.Context, userID string) ([]models.Review, error) {
	return r.find(ctx, bson.M{"user": userID})
}

func (r *MongoReviewRepository) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Review, error) {
	cursor, err := r.collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to find reviews: %w", err)
	}
	defer cursor.Close(ctx)

	reviews := make([]models.Review, 0)
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}
	return reviews, nil
}
