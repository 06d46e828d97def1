package models

import "time"

// Order statuses. Any status may follow any other; admins drive transitions.
const (
	StatusOrderPlaced = "Order Placed"
	StatusProcessing  = "Processing"
	StatusShipped     = "Shipped"
	StatusDelivered   = "Delivered"
	StatusCancelled   = "Cancelled"
)

// Payment methods accepted at checkout.
const (
	PaymentCOD    = "COD"
	PaymentCard   = "Card"
	PaymentWallet = "Wallet"
)

// OrderStatuses lists every valid status in lifecycle order.
var OrderStatuses = []string{StatusOrderPlaced, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}

// IsValidStatus reports whether status is one of OrderStatuses.
func IsValidStatus(status string) bool {
	for _, s := range OrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// IsValidPaymentMethod reports whether method is an accepted payment method.
func IsValidPaymentMethod(method string) bool {
	switch method {
	case PaymentCOD, PaymentCard, PaymentWallet:
		return true
	}
	return false
}

// Address is the free-form shipping address captured at checkout.
type Address map[string]interface{}

// OrderItem represents a single line within an order. Product details are
// copied from the catalog when the order is placed.
type OrderItem struct {
	ProductID  string   `json:"productId" bson:"product"`
	Name       string   `json:"name" bson:"name"`
	Image      []string `json:"image" bson:"image"`
	Price      float64  `json:"price" bson:"price"` // Price at the time of order
	Quantity   int      `json:"quantity" bson:"quantity"`
	Size       string   `json:"size" bson:"size"`
	SellerName string   `json:"sellername" bson:"sellername,omitempty"`
	// Reviewed is derived from the review collection on read and never stored.
	Reviewed bool `json:"reviewed" bson:"-"`
}

// LineTotal is price × quantity for the item.
func (i OrderItem) LineTotal() float64 {
	return i.Price * float64(i.Quantity)
}

// Order represents a customer order.
type Order struct {
	ID            string      `json:"_id" bson:"_id"`
	UserID        string      `json:"userId" bson:"user"`
	Items         []OrderItem `json:"items" bson:"items"`
	Amount        float64     `json:"amount" bson:"amount"`
	Address       Address     `json:"address" bson:"address"`
	Status        string      `json:"status" bson:"status"`
	PaymentMethod string      `json:"paymentMethod" bson:"paymentMethod"`
	Payment       bool        `json:"payment" bson:"payment"`
	Date          time.Time   `json:"date" bson:"date"`
	Viewed        bool        `json:"viewed" bson:"viewed"`
	CreatedAt     time.Time   `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt" bson:"updatedAt"`
}

// ItemsTotal sums LineTotal over all items.
func (o *Order) ItemsTotal() float64 {
	var total float64
	for _, item := range o.Items {
		total += item.LineTotal()
	}
	return total
}

// FindItem returns the first item referencing productID.
func (o *Order) FindItem(productID string) (*OrderItem, bool) {
	for i := range o.Items {
		if o.Items[i].ProductID == productID {
			return &o.Items[i], true
		}
	}
	return nil, false
}
