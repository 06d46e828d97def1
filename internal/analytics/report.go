package analytics

import (
	"time"

	"shopfront/internal/models"
)

// Summary is the admin analytics view over a filtered order set.
type Summary struct {
	SalesByCategory         []GroupSales   `json:"salesByCategory"`
	SalesBySubCategory      []GroupSales   `json:"salesBySubCategory"`
	SellerPerformance       []SellerStats  `json:"sellerPerformance"`
	MonthlyTrends           []MonthBucket  `json:"monthlyTrends"`
	OrderStatusDistribution []StatusCount  `json:"orderStatusDistribution"`
	RevenueByPaymentMethod  []PaymentStats `json:"revenueByPaymentMethod"`
}

// Dashboard is the admin landing page overview over every order.
type Dashboard struct {
	TotalProducts  int             `json:"totalProducts"`
	TotalOrders    int             `json:"totalOrders"`
	TotalRevenue   float64         `json:"totalRevenue"`
	TotalSellers   int             `json:"totalSellers"`
	RecentOrders   []models.Order  `json:"recentOrders"`
	TopSellers     []SellerStats   `json:"topSellers"`
	MonthlyRevenue []MonthBucket   `json:"monthlyRevenue"`
	WeeklyStats    []WeekBucket    `json:"weeklyStats"`
	YearlyStats    []YearBucket    `json:"yearlyStats"`
	CategoryStats  []CategoryCount `json:"categoryStats"`
}

// BuildSummary computes the analytics summary. The monthly trend always
// covers all orders; everything else uses those matching f.
func BuildSummary(orders []models.Order, products []models.Product, f OrderFilter, now time.Time) Summary {
	filtered := FilterOrders(orders, f, now)
	return Summary{
		SalesByCategory:         SalesByCategory(filtered, products),
		SalesBySubCategory:      SalesBySubCategory(filtered, products),
		SellerPerformance:       SellerPerformance(filtered, products),
		MonthlyTrends:           MonthlyTrend(orders, now),
		OrderStatusDistribution: StatusDistribution(filtered),
		RevenueByPaymentMethod:  RevenueByPaymentMethod(filtered),
	}
}

// BuildDashboard computes the dashboard overview.
func BuildDashboard(orders []models.Order, products []models.Product, now time.Time) Dashboard {
	sellers := make(map[string]struct{})
	for _, p := range products {
		if p.SellerName != "" {
			sellers[p.SellerName] = struct{}{}
		}
	}

	return Dashboard{
		TotalProducts:  len(products),
		TotalOrders:    len(orders),
		TotalRevenue:   TotalRevenue(orders),
		TotalSellers:   len(sellers),
		RecentOrders:   RecentOrders(orders, 5),
		TopSellers:     TopSellers(orders, products, 5),
		MonthlyRevenue: MonthlyTrend(orders, now),
		WeeklyStats:    WeeklyRevenue(orders, now),
		YearlyStats:    YearlyRevenue(orders, now),
		CategoryStats:  CategoryCounts(products),
	}
}
