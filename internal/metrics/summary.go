package metrics

import (
	"github.com/ariefcatur/go-food-orders/internal/orders"
	"github.com/shopspring/decimal"
	"time"
)

type Summary struct {
	GeneratedAt       time.Time
	TimeZone          string
	TodayOrders       int
	TodayRevenue      decimal.Decimal
	OrdersChange      int
	RevenueChange     int
	PeakOrderWindow   string
	PeakRevenueWindow string
	AverageOrderValue decimal.Decimal
	TopSellingItem    string
	StatusCounts      map[orders.Status]int
}

type SummaryView struct {
	GeneratedAt       time.Time             `json:"generated_at"`
	TimeZone          string                `json:"time_zone"`
	TodayOrders       int                   `json:"today_orders"`
	TodayRevenue      string                `json:"today_revenue"`
	OrdersChange      int                   `json:"orders_change_pct"`
	RevenueChange     int                   `json:"revenue_change_pct"`
	PeakOrderWindow   string                `json:"peak_order_window"`
	PeakRevenueWindow string                `json:"peak_revenue_window"`
	AverageOrderValue string                `json:"average_order_value"`
	TopSellingItem    string                `json:"top_selling_item"`
	StatusCounts      map[orders.Status]int `json:"status_counts"`
}

func (s Summary) View() SummaryView {
	return SummaryView{
		GeneratedAt:       s.GeneratedAt,
		TimeZone:          s.TimeZone,
		TodayOrders:       s.TodayOrders,
		TodayRevenue:      s.TodayRevenue.StringFixed(2),
		OrdersChange:      s.OrdersChange,
		RevenueChange:     s.RevenueChange,
		PeakOrderWindow:   s.PeakOrderWindow,
		PeakRevenueWindow: s.PeakRevenueWindow,
		AverageOrderValue: s.AverageOrderValue.StringFixed(2),
		TopSellingItem:    s.TopSellingItem,
		StatusCounts:      s.StatusCounts,
	}
}

// Summarize computes every dashboard KPI for ref's calendar day in loc.
func Summarize(list []orders.Order, ref time.Time, loc *time.Location) Summary {
	loc = location(loc)
	today := dateOf(ref, loc)

	s := Summary{
		GeneratedAt:       ref,
		TimeZone:          loc.String(),
		TodayRevenue:      decimal.Zero,
		OrdersChange:      DailyComparison(list, MetricCount, ref, loc),
		RevenueChange:     DailyComparison(list, MetricRevenue, ref, loc),
		PeakOrderWindow:   PeakWindow(list, MetricCount, loc),
		PeakRevenueWindow: PeakWindow(list, MetricRevenue, loc),
		AverageOrderValue: AverageOrderValue(list),
		TopSellingItem:    TopSellingItem(list),
		StatusCounts:      make(map[orders.Status]int, len(orders.Statuses)),
	}
	for _, st := range orders.Statuses {
		s.StatusCounts[st] = 0
	}
	for _, o := range list {
		s.StatusCounts[o.Status]++
		if dateOf(o.CreatedAt, loc) == today {
			s.TodayOrders++
			s.TodayRevenue = s.TodayRevenue.Add(o.ChargedAmount())
		}
	}
	return s
}

// Dashboard binds a location and a clock so callers get "now" by default.
type Dashboard struct {
	Location *time.Location
	Now      func() time.Time
}

func (d Dashboard) Summarize(list []orders.Order) Summary {
	now := d.Now
	if now == nil {
		now = time.Now
	}
	return Summarize(list, now(), d.Location)
}
