package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Collection names.
const (
	OrdersCollection   = "orders"
	ReviewsCollection  = "reviews"
	ProductsCollection = "products"
)

// Config holds MongoDB connection details.
type Config struct {
	URI      string
	Database string
}

// Client wraps the driver client together with the application database.
type Client struct {
	client *mongo.Client
	DB     *mongo.Database
	log    *zap.Logger
}

// Connect opens the connection, pings the server and ensures indexes exist.
func Connect(ctx context.Context, cfg Config, log *zap.Logger) (*Client, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(10 * time.Second).
		SetSocketTimeout(45 * time.Second)

	client, err := mongo.Connect(timeoutCtx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(timeoutCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	c := &Client{client: client, DB: client.Database(cfg.Database), log: log}
	if err := c.EnsureIndexes(timeoutCtx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	log.Info("connected to MongoDB", zap.String("database", cfg.Database))
	return c, nil
}

// EnsureIndexes creates the indexes the repositories rely on. The unique
// (user, product) index on reviews is what guarantees one review per product
// per user under concurrent submissions.
func (c *Client) EnsureIndexes(ctx context.Context) error {
	reviewIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user", Value: 1}, {Key: "product", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("user_product_unique"),
		},
		{
			Keys: bson.D{{Key: "product", Value: 1}, {Key: "createdAt", Value: -1}},
		},
	}
	if _, err := c.DB.Collection(ReviewsCollection).Indexes().CreateMany(ctx, reviewIndexes); err != nil {
		return fmt.Errorf("failed to create review indexes: %w", err)
	}

	orderIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "viewed", Value: 1}}},
	}
	if _, err := c.DB.Collection(OrdersCollection).Indexes().CreateMany(ctx, orderIndexes); err != nil {
		return fmt.Errorf("failed to create order indexes: %w", err)
	}
	return nil
}

// Ping checks that the server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, nil)
}

// Close disconnects from MongoDB
func (c *Client) Close() error {
	disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.client.Disconnect(disconnectCtx); err != nil {
		return fmt.Errorf("failed to disconnect from MongoDB: %w", err)
	}
	c.log.Info("disconnected from MongoDB")
	return nil
}
