// Package analytics derives read-only sales statistics from orders and the
// product catalog. Every function is pure.
package analytics

import (
	"fmt"
	"sort"
	"time"

	"shopfront/internal/models"
)

// MonthKeyLayout formats monthly trend buckets, e.g. "Jan 2025".
const MonthKeyLayout = "Jan 2006"

// GroupSales is revenue and quantity for one category or sub-category.
type GroupSales struct {
	Name     string  `json:"name"`
	Revenue  float64 `json:"revenue"`
	Quantity int     `json:"quantity"`
}

// SellerStats is a seller's catalog footprint and the revenue its items earned.
type SellerStats struct {
	Name     string  `json:"name"`
	Phone    string  `json:"phone"`
	Products int     `json:"products"`
	Revenue  float64 `json:"revenue"`
	Orders   int     `json:"orders"`
}

// MonthBucket is one calendar month of the trailing trend.
type MonthBucket struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
	Orders  int     `json:"orders"`
}

// WeekBucket is one trailing 7-day window, "Week 4" being the most recent.
type WeekBucket struct {
	Week    string  `json:"week"`
	Revenue float64 `json:"revenue"`
}

// YearBucket is revenue for a calendar year.
type YearBucket struct {
	Year    int     `json:"year"`
	Revenue float64 `json:"revenue"`
}

// StatusCount is the number of orders in one status.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// PaymentStats is the order amount and count for one payment method.
type PaymentStats struct {
	Method  string  `json:"method"`
	Revenue float64 `json:"revenue"`
	Count   int     `json:"count"`
}

// CategoryCount is the number of catalog products in a category.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// catalog resolves order items to products by id, then by name.
type catalog struct {
	byID   map[string]*models.Product
	byName map[string]*models.Product
}

func newCatalog(products []models.Product) catalog {
	c := catalog{
		byID:   make(map[string]*models.Product, len(products)),
		byName: make(map[string]*models.Product, len(products)),
	}
	for i := range products {
		p := &products[i]
		if _, ok := c.byID[p.ID]; !ok {
			c.byID[p.ID] = p
		}
		if _, ok := c.byName[p.Name]; !ok {
			c.byName[p.Name] = p
		}
	}
	return c
}

func (c catalog) lookup(item models.OrderItem) (*models.Product, bool) {
	if p, ok := c.byID[item.ProductID]; ok {
		return p, true
	}
	p, ok := c.byName[item.Name]
	return p, ok
}

// SalesByCategory sums item revenue and quantity per product category. Every
// catalog category appears, sorted by revenue descending.
func SalesByCategory(orders []models.Order, products []models.Product) []GroupSales {
	return salesBy(orders, products, func(p *models.Product) string { return p.Category })
}

// SalesBySubCategory is SalesByCategory keyed by sub-category.
func SalesBySubCategory(orders []models.Order, products []models.Product) []GroupSales {
	return salesBy(orders, products, func(p *models.Product) string { return p.SubCategory })
}

func salesBy(orders []models.Order, products []models.Product, key func(*models.Product) string) []GroupSales {
	groups := make(map[string]*GroupSales)
	var names []string
	for i := range products {
		name := key(&products[i])
		if _, ok := groups[name]; !ok {
			groups[name] = &GroupSales{Name: name}
			names = append(names, name)
		}
	}

	cat := newCatalog(products)
	for _, order := range orders {
		for _, item := range order.Items {
			p, ok := cat.lookup(item)
			if !ok {
				continue
			}
			g := groups[key(p)]
			g.Revenue += item.LineTotal()
			g.Quantity += item.Quantity
		}
	}

	result := make([]GroupSales, 0, len(names))
	for _, name := range names {
		result = append(result, *groups[name])
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Revenue > result[j].Revenue })
	return result
}

// SellerPerformance seeds one entry per catalog seller and adds the revenue
// and item count of every order item sold by them. An item is credited to the
// seller name recorded on it, or to its catalog product's seller when the
// item carries none. Sellers without sales are kept with zero revenue.
// Sorted by revenue descending.
func SellerPerformance(orders []models.Order, products []models.Product) []SellerStats {
	sellers := make(map[string]*SellerStats)
	var names []string
	for _, p := range products {
		s, ok := sellers[p.SellerName]
		if !ok {
			s = &SellerStats{Name: p.SellerName, Phone: p.SellerPhone}
			sellers[p.SellerName] = s
			names = append(names, p.SellerName)
		}
		s.Products++
	}

	cat := newCatalog(products)
	for _, order := range orders {
		for _, item := range order.Items {
			name := item.SellerName
			if name == "" {
				p, ok := cat.lookup(item)
				if !ok {
					continue
				}
				name = p.SellerName
			}
			s, ok := sellers[name]
			if !ok {
				continue
			}
			s.Revenue += item.LineTotal()
			s.Orders++
		}
	}

	result := make([]SellerStats, 0, len(names))
	for _, name := range names {
		result = append(result, *sellers[name])
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Revenue > result[j].Revenue })
	return result
}

// TopSellers returns the first n entries of SellerPerformance, ignoring
// products without a seller name.
func TopSellers(orders []models.Order, products []models.Product, n int) []SellerStats {
	named := make([]models.Product, 0, len(products))
	for _, p := range products {
		if p.SellerName != "" {
			named = append(named, p)
		}
	}
	all := SellerPerformance(orders, named)
	if len(all) > n {
		all = all[:n]
	}
	return all
}

// MonthlyTrend buckets orders into the six calendar months ending with now's
// month, oldest first. Revenue is the order amount. Months without orders
// are reported as zero.
func MonthlyTrend(orders []models.Order, now time.Time) []MonthBucket {
	const months = 6
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	buckets := make([]MonthBucket, months)
	index := make(map[string]int, months)
	for i := 0; i < months; i++ {
		key := first.AddDate(0, i-(months-1), 0).Format(MonthKeyLayout)
		buckets[i] = MonthBucket{Month: key}
		index[key] = i
	}

	for _, order := range orders {
		i, ok := index[order.Date.In(now.Location()).Format(MonthKeyLayout)]
		if !ok {
			continue
		}
		buckets[i].Revenue += order.Amount
		buckets[i].Orders++
	}
	return buckets
}

// WeeklyRevenue sums order amounts over four trailing 7-day windows ending at
// now, "Week 1" being the oldest.
func WeeklyRevenue(orders []models.Order, now time.Time) []WeekBucket {
	const weeks = 4
	buckets := make([]WeekBucket, weeks)
	for i := range buckets {
		buckets[i].Week = fmt.Sprintf("Week %d", i+1)
	}

	for _, order := range orders {
		elapsed := now.Sub(order.Date)
		if elapsed < 0 {
			continue
		}
		weeksAgo := int(elapsed.Hours() / 24 / 7)
		if weeksAgo >= weeks {
			continue
		}
		buckets[weeks-1-weeksAgo].Revenue += order.Amount
	}
	return buckets
}

// YearlyRevenue sums order amounts for the previous and current calendar year.
func YearlyRevenue(orders []models.Order, now time.Time) []YearBucket {
	buckets := []YearBucket{{Year: now.Year() - 1}, {Year: now.Year()}}
	for _, order := range orders {
		switch order.Date.In(now.Location()).Year() {
		case buckets[0].Year:
			buckets[0].Revenue += order.Amount
		case buckets[1].Year:
			buckets[1].Revenue += order.Amount
		}
	}
	return buckets
}

// StatusDistribution counts orders per status present in orders, in
// lifecycle order. Statuses without orders are omitted.
func StatusDistribution(orders []models.Order) []StatusCount {
	counts := make(map[string]int)
	for _, order := range orders {
		counts[order.Status]++
	}

	result := make([]StatusCount, 0, len(counts))
	for _, status := range models.OrderStatuses {
		if n, ok := counts[status]; ok {
			result = append(result, StatusCount{Status: status, Count: n})
			delete(counts, status)
		}
	}
	// Statuses outside the known set still count towards the total.
	var unknown []string
	for status := range counts {
		unknown = append(unknown, status)
	}
	sort.Strings(unknown)
	for _, status := range unknown {
		result = append(result, StatusCount{Status: status, Count: counts[status]})
	}
	return result
}

// RevenueByPaymentMethod sums order amounts and counts orders per payment
// method, ordered by first appearance.
func RevenueByPaymentMethod(orders []models.Order) []PaymentStats {
	index := make(map[string]int)
	var result []PaymentStats
	for _, order := range orders {
		i, ok := index[order.PaymentMethod]
		if !ok {
			i = len(result)
			index[order.PaymentMethod] = i
			result = append(result, PaymentStats{Method: order.PaymentMethod})
		}
		result[i].Revenue += order.Amount
		result[i].Count++
	}
	return result
}

// CategoryCounts counts catalog products per category, ordered by first appearance.
func CategoryCounts(products []models.Product) []CategoryCount {
	index := make(map[string]int)
	var result []CategoryCount
	for _, p := range products {
		i, ok := index[p.Category]
		if !ok {
			i = len(result)
			index[p.Category] = i
			result = append(result, CategoryCount{Category: p.Category})
		}
		result[i].Count++
	}
	return result
}

// TotalRevenue sums order amounts.
func TotalRevenue(orders []models.Order) float64 {
	var total float64
	for _, order := range orders {
		total += order.Amount
	}
	return total
}

// RecentOrders returns up to n orders, newest date first. The input is not modified.
func RecentOrders(orders []models.Order, n int) []models.Order {
	sorted := make([]models.Order, len(orders))
	copy(sorted, orders)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.After(sorted[j].Date) })
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// PercentOfMax expresses each value as a percentage of the largest one.
// When the largest value is not positive every percentage is zero.
func PercentOfMax(values []float64) []float64 {
	result := make([]float64, len(values))
	var top float64
	for _, v := range values {
		if v > top {
			top = v
		}
	}
	if top <= 0 {
		return result
	}
	for i, v := range values {
		result[i] = v / top * 100
	}
	return result
}
