package models

import "time"

// Product represents a catalog entry. Seller details are denormalized onto
// the product, which is where seller performance is seeded from.
type Product struct {
	ID          string    `json:"_id" bson:"_id" validate:"omitempty,uuid"`
	Name        string    `json:"name" bson:"name" validate:"required,min=3,max=100"`
	Description string    `json:"description" bson:"description" validate:"omitempty,max=500"`
	Price       float64   `json:"price" bson:"price" validate:"required,gt=0"`
	Image       []string  `json:"image" bson:"image"`
	Category    string    `json:"category" bson:"category" validate:"required"`
	SubCategory string    `json:"subCategory" bson:"subCategory"`
	Sizes       []string  `json:"sizes" bson:"sizes"`
	BestSeller  bool      `json:"bestseller" bson:"bestseller"`
	SellerName  string    `json:"sellername" bson:"sellername"`
	SellerPhone string    `json:"sellerphone" bson:"sellerphone"`
	Date        time.Time `json:"date" bson:"date"`
}
