package payment

import (
	"fmt"
	"math"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/checkout/session"
)

// LineItem is one priced line of a checkout.
type LineItem struct {
	Name      string
	UnitPrice float64
	Quantity  int
}

// StripeGateway opens hosted Stripe checkout sessions.
type StripeGateway struct {
	currency    string
	frontendURL string
}

// NewStripeGateway configures the Stripe API key and returns a gateway.
func NewStripeGateway(secretKey, currency, frontendURL string) *StripeGateway {
	stripe.Key = secretKey
	return &StripeGateway{currency: currency, frontendURL: frontendURL}
}

// CreateCheckoutSession opens a payment session for the order and returns the
// URL the customer is redirected to. Both outcomes land on the storefront's
// verify page, which reports back through /api/order/verifyStripe.
func (g *StripeGateway) CreateCheckoutSession(orderID string, items []LineItem) (string, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(items))
	for _, item := range items {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(g.currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
				},
				UnitAmount: stripe.Int64(toMinorUnits(item.UnitPrice)),
			},
			Quantity: stripe.Int64(int64(item.Quantity)),
		})
	}

	params := &stripe.CheckoutSessionParams{
		SuccessURL: stripe.String(fmt.Sprintf("%s/verify?success=true&orderId=%s", g.frontendURL, orderID)),
		CancelURL:  stripe.String(fmt.Sprintf("%s/verify?success=false&orderId=%s", g.frontendURL, orderID)),
		LineItems:  lineItems,
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
	}
	params.AddMetadata("orderId", orderID)

	s, err := session.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create stripe checkout session: %w", err)
	}
	return s.URL, nil
}

func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
