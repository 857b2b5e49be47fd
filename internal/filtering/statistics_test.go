package filtering_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/bubbletea-slz/teahouse/internal/entity"
	"github.com/bubbletea-slz/teahouse/internal/filtering"
)

func priced(id int64, price string, createdAt time.Time) entity.Order {
	return entity.Order{
		ID:        id,
		Client:    "Client",
		TeaType:   entity.TeaGreen,
		Size:      entity.SizeSmall,
		Price:     decimal.RequireFromString(price),
		Status:    entity.StatusPending,
		CreatedAt: createdAt,
	}
}

func TestCompute(t *testing.T) {
	t.Run("empty collection", func(t *testing.T) {
		got := filtering.Compute(nil, now)

		assert.Equal(t, 0, got.Total)
		assert.Equal(t, 0, got.TodayCount)
		assert.True(t, got.TotalRevenue.IsZero())
		assert.True(t, got.TodayRevenue.IsZero())
	})

	t.Run("splits totals between today and all time", func(t *testing.T) {
		orders := []entity.Order{
			priced(1, "15", now.Add(-time.Hour)),
			priced(2, "17", now.Add(-2*time.Hour)),
			priced(3, "20", now.AddDate(0, 0, -1)),
			priced(4, "20", now.AddDate(0, 0, -30)),
		}

		got := filtering.Compute(orders, now)

		assert.Equal(t, 4, got.Total)
		assert.Equal(t, 2, got.TodayCount)
		assert.True(t, decimal.RequireFromString("72").Equal(got.TotalRevenue),
			"total revenue = %s", got.TotalRevenue)
		assert.True(t, decimal.RequireFromString("32").Equal(got.TodayRevenue),
			"today revenue = %s", got.TodayRevenue)
	})

	t.Run("canceled orders still count toward revenue", func(t *testing.T) {
		canceled := priced(1, "17", now.Add(-time.Minute))
		canceled.Status = entity.StatusCanceled

		got := filtering.Compute([]entity.Order{canceled}, now)

		assert.Equal(t, 1, got.TodayCount)
		assert.True(t, decimal.RequireFromString("17").Equal(got.TodayRevenue))
	})
}
