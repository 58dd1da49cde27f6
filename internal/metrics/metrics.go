// Package metrics derives restaurant dashboard KPIs from an order list.
// Every function is pure: no I/O, no clocks, inputs are never mutated.
// Calendar days and hours are taken in the caller supplied location; a nil
// location means UTC.
package metrics

import (
	"fmt"
	"github.com/ariefcatur/go-food-orders/internal/orders"
	"github.com/shopspring/decimal"
	"time"
)

type Metric string

const (
	MetricCount   Metric = "count"
	MetricRevenue Metric = "revenue"
)

const (
	NoData        = "No data"
	NotApplicable = "N/A"
)

var hundred = decimal.NewFromInt(100)

func ParseMetric(s string) (Metric, error) {
	switch m := Metric(s); m {
	case MetricCount, MetricRevenue:
		return m, nil
	}
	return "", fmt.Errorf("unknown metric %q", s)
}

// value kontribusi satu order ke bucket
func (m Metric) value(o orders.Order) decimal.Decimal {
	if m == MetricRevenue {
		return o.ChargedAmount()
	}
	return decimal.NewFromInt(1)
}

// DailyComparison returns the signed percent change of metric between the
// calendar day of ref and the day before it.
func DailyComparison(list []orders.Order, metric Metric, ref time.Time, loc *time.Location) int {
	loc = location(loc)
	today := dateOf(ref, loc)
	yesterday := today.prev()

	t, y := decimal.Zero, decimal.Zero
	for _, o := range list {
		switch dateOf(o.CreatedAt, loc) {
		case today:
			t = t.Add(metric.value(o))
		case yesterday:
			y = y.Add(metric.value(o))
		}
	}
	return PercentChange(t, y)
}

// PercentChange: round(((today - yesterday) / yesterday) * 100), half away
// from zero. yesterday == 0 gives 100 when today > 0, else 0.
func PercentChange(today, yesterday decimal.Decimal) int {
	if yesterday.IsZero() {
		if today.IsPositive() {
			return 100
		}
		return 0
	}
	return int(today.Sub(yesterday).Mul(hundred).Div(yesterday).Round(0).IntPart())
}

// PeakWindow finds the busiest pair of adjacent hours (h, h+1) for h in 0..22.
// There is no wrap-around pair. The lowest h wins a tie.
func PeakWindow(list []orders.Order, metric Metric, loc *time.Location) string {
	if len(list) == 0 {
		return NoData
	}
	loc = location(loc)

	var hours [24]decimal.Decimal
	for _, o := range list {
		h := hourOf(o.CreatedAt, loc)
		hours[h] = hours[h].Add(metric.value(o))
	}

	best, bestVal := 0, hours[0].Add(hours[1])
	for h := 1; h <= 22; h++ {
		if v := hours[h].Add(hours[h+1]); v.GreaterThan(bestVal) {
			best, bestVal = h, v
		}
	}
	return windowLabel(best)
}

// TopSellingItem sums quantities per item name across all orders. Items with
// quantity < 1 contribute nothing. The first name seen wins a tie.
func TopSellingItem(list []orders.Order) string {
	qty := map[string]int{}
	var seen []string
	for _, o := range list {
		for _, it := range o.Items {
			if it.Quantity < 1 {
				continue
			}
			if _, ok := qty[it.FoodItemName]; !ok {
				seen = append(seen, it.FoodItemName)
			}
			qty[it.FoodItemName] += it.Quantity
		}
	}
	if len(seen) == 0 {
		return NotApplicable
	}

	top := seen[0]
	for _, name := range seen[1:] {
		if qty[name] > qty[top] {
			top = name
		}
	}
	return top
}

// AverageOrderValue is the mean charged amount, 0 for an empty list.
func AverageOrderValue(list []orders.Order) decimal.Decimal {
	if len(list) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, o := range list {
		sum = sum.Add(o.ChargedAmount())
	}
	return sum.Div(decimal.NewFromInt(int64(len(list))))
}
