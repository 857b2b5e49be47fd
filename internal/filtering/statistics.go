package filtering

import (
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/bubbletea-slz/teahouse/internal/entity"
)

// Statistics aggregates counts and revenue over the full order collection.
type Statistics struct {
	Total        int             `json:"total"`
	TodayCount   int             `json:"todayCount"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
	TodayRevenue decimal.Decimal `json:"todayRevenue"`
}

// Compute derives statistics from an unfiltered snapshot. "Today" means
// calendar-day equality with now in the local timezone.
func Compute(orders []entity.Order, now time.Time) Statistics {
	today := lo.Filter(orders, func(o entity.Order, _ int) bool {
		return sameDay(o.CreatedAt, now)
	})

	sum := func(subset []entity.Order) decimal.Decimal {
		return lo.Reduce(subset, func(acc decimal.Decimal, o entity.Order, _ int) decimal.Decimal {
			return acc.Add(o.Price)
		}, decimal.Zero)
	}

	return Statistics{
		Total:        len(orders),
		TodayCount:   len(today),
		TotalRevenue: sum(orders),
		TodayRevenue: sum(today),
	}
}
