package analytics

import (
	"time"

	"shopfront/internal/models"
)

// Date ranges accepted by the order list filter.
const (
	DateRangeToday = "today"
	DateRangeWeek  = "week"
	DateRangeMonth = "month"
)

// OrderFilter narrows a full order listing. Zero fields do not filter.
// Days keeps orders placed within the trailing number of days and is applied
// in addition to DateRange.
type OrderFilter struct {
	Status        string `json:"status" query:"status"`
	PaymentMethod string `json:"paymentMethod" query:"paymentMethod" validate:"omitempty,oneof=COD Card Wallet"`
	DateRange     string `json:"dateRange" query:"dateRange" validate:"omitempty,oneof=today week month"`
	Days          int    `json:"days" query:"days" validate:"gte=0"`
}

// FilterOrders returns the orders matching f, preserving input order.
func FilterOrders(orders []models.Order, f OrderFilter, now time.Time) []models.Order {
	result := make([]models.Order, 0, len(orders))
	for _, order := range orders {
		if f.Status != "" && order.Status != f.Status {
			continue
		}
		if f.PaymentMethod != "" && order.PaymentMethod != f.PaymentMethod {
			continue
		}
		if !inDateRange(order.Date, f.DateRange, now) {
			continue
		}
		if f.Days > 0 && order.Date.Before(now.AddDate(0, 0, -f.Days)) {
			continue
		}
		result = append(result, order)
	}
	return result
}

func inDateRange(date time.Time, dateRange string, now time.Time) bool {
	today := startOfDay(now)
	switch dateRange {
	case DateRangeToday:
		return startOfDay(date.In(now.Location())).Equal(today)
	case DateRangeWeek:
		return !date.Before(today.AddDate(0, 0, -7))
	case DateRangeMonth:
		return !date.Before(today.AddDate(0, -1, 0))
	default:
		return true
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
