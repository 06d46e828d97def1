package services

import (
	"context"
	"io"
	"time"

	"shopfront/pkg/payment"
	"shopfront/pkg/storage"
)

// EventPublisher publishes domain events. *rabbitmq.Client satisfies it.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload interface{}) error
}

// ImageUploader stores review images. *storage.S3Uploader satisfies it.
type ImageUploader interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (*storage.Object, error)
}

// JSONCache caches JSON documents. Incr must be atomic across processes.
// *cache.RedisCache satisfies it.
type JSONCache interface {
	GetJSON(ctx context.Context, key string, dst interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
}

// CheckoutGateway opens hosted card payment sessions. *payment.StripeGateway satisfies it.
type CheckoutGateway interface {
	CreateCheckoutSession(orderID string, items []payment.LineItem) (string, error)
}
