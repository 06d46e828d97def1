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
)

// MongoOrderRepository is a MongoDB implementation of OrderRepository.
type MongoOrderRepository struct {
	collection *mongo.Collection
}

// NewMongoOrderRepository creates a new instance of MongoOrderRepository.
func NewMongoOrderRepository(db *mongo.Database) *MongoOrderRepository {
	return &MongoOrderRepository{
		collection: db.Collection(mongodb.OrdersCollection),
	}
}

// GetAll retrieves all orders.
func (r *MongoOrderRepository) GetAll(ctx context.Context) ([]models.Order, error) {
	return r.find(ctx, bson.M{})
}

// GetByID retrieves a single order by its ID.
func (r *MongoOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&order); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

// GetByUser retrieves every order placed by userID.
func (r *MongoOrderRepository) GetByUser(ctx context.Context, userID string) ([]models.Order, error) {
	return r.find(ctx, bson.M{"user": userID})
}

// GetByUserAndStatus retrieves the orders of userID in the given status.
func (r *MongoOrderRepository) GetByUserAndStatus(ctx context.Context, userID, status string) ([]models.Order, error) {
	return r.find(ctx, bson.M{"user": userID, "status": status})
}

// GetUnviewed retrieves orders an admin has not seen yet.
func (r *MongoOrderRepository) GetUnviewed(ctx context.Context) ([]models.Order, error) {
	return r.find(ctx, bson.M{"viewed": false})
}

// CountUnviewed counts orders an admin has not seen yet.
func (r *MongoOrderRepository) CountUnviewed(ctx context.Context) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"viewed": false})
	if err != nil {
		return 0, fmt.Errorf("failed to count unviewed orders: %w", err)
	}
	return count, nil
}

// Create inserts a new order.
func (r *MongoOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	order.CreatedAt = now
	order.UpdatedAt = now
	if _, err := r.collection.InsertOne(ctx, order); err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// UpdateStatus overwrites the status of an order.
func (r *MongoOrderRepository) UpdateStatus(ctx context.Context, id string, status string) error {
	return r.set(ctx, id, bson.M{"status": status})
}

// SetPayment records whether the order has been paid.
func (r *MongoOrderRepository) SetPayment(ctx context.Context, id string, paid bool) error {
	return r.set(ctx, id, bson.M{"payment": paid})
}

// MarkViewed flags the given orders as seen. It does not touch updatedAt,
// which doubles as the delivery timestamp for delivered orders.
func (r *MongoOrderRepository) MarkViewed(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := r.collection.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		bson.M{"$set": bson.M{"viewed": true}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark orders viewed: %w", err)
	}
	return res.MatchedCount, nil
}

func (r *MongoOrderRepository) set(ctx context.Context, id string, fields bson.M) error {
	fields["updatedAt"] = time.Now().UTC()
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("failed to update order %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *MongoOrderRepository) find(ctx context.Context, filter bson.M) ([]models.Order, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find orders: %w", err)
	}
	defer cursor.Close(ctx)

	orders := make([]models.Order, 0)
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}
	return orders, nil
}
