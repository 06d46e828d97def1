package models

import "time"

// ReviewImage references an image stored in object storage.
type ReviewImage struct {
	PublicID string `json:"public_id" bson:"public_id"`
	URL      string `json:"url" bson:"url"`
}

// Review is a user's review of a product, optionally tied to the order it came from.
type Review struct {
	ID        string       `json:"_id" bson:"_id"`
	UserID    string       `json:"userId" bson:"user"`
	ProductID string       `json:"productId" bson:"product"`
	OrderID   string       `json:"orderId,omitempty" bson:"order,omitempty"`
	Rating    *int         `json:"rating" bson:"rating,omitempty"`
	Comment   string       `json:"comment,omitempty" bson:"comment,omitempty"`
	Image     *ReviewImage `json:"image,omitempty" bson:"image,omitempty"`
	CreatedAt time.Time    `json:"createdAt" bson:"createdAt"`
}

// HasRating reports whether the review carries a usable numeric rating.
func (r *Review) HasRating() bool {
	return r.Rating != nil && *r.Rating > 0
}

// PublicReview is the trimmed form returned to the submitting user.
type PublicReview struct {
	ID        string       `json:"_id"`
	Rating    *int         `json:"rating"`
	Comment   string       `json:"comment"`
	Image     *ReviewImage `json:"image"`
	CreatedAt time.Time    `json:"createdAt"`
}

// ProductReview is a review annotated with its author's display name.
type ProductReview struct {
	ID        string       `json:"_id"`
	UserName  string       `json:"userName"`
	Rating    *int         `json:"rating"`
	Comment   *string      `json:"comment"`
	Image     *ReviewImage `json:"image"`
	CreatedAt time.Time    `json:"createdAt"`
}

// ProductReviewSummary is the public review listing of a product.
type ProductReviewSummary struct {
	Reviews       []ProductReview `json:"reviews"`
	TotalReviews  int             `json:"totalReviews"`
	AverageRating float64         `json:"averageRating"`
}

// EligibleProduct is a delivered order item the user may still review.
type EligibleProduct struct {
	OrderID       string    `json:"orderId"`
	ProductID     string    `json:"productId"`
	ProductName   string    `json:"productName"`
	ProductImage  string    `json:"productImage"`
	DeliveredDate time.Time `json:"deliveredDate"`
	OrderDate     time.Time `json:"orderDate"`
}
