package filtering_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bubbletea-slz/teahouse/internal/entity"
	"github.com/bubbletea-slz/teahouse/internal/filtering"
)

var now = time.Date(2025, time.June, 15, 14, 0, 0, 0, time.Local)

func makeOrder(id int64, client string, status entity.Status, createdAt time.Time) entity.Order {
	return entity.Order{
		ID:           id,
		PurchaseCode: entity.PurchaseCode(id, createdAt),
		Client:       client,
		TeaType:      entity.TeaMilk,
		Size:         entity.SizeMedium,
		Price:        decimal.NewFromFloat(17.00),
		Status:       status,
		CreatedAt:    createdAt,
	}
}

func sampleOrders() []entity.Order {
	return []entity.Order{
		makeOrder(1, "Ana", entity.StatusPending, now.Add(-30*time.Minute)),
		makeOrder(2, "Bruno", entity.StatusDelivered, now.AddDate(0, 0, -1)),
		makeOrder(3, "Mariana", entity.StatusReady, now.AddDate(0, 0, -5)),
		makeOrder(4, "Carlos", entity.StatusPending, now.AddDate(0, 0, -10)),
	}
}

func ids(orders []entity.Order) []int64 {
	out := make([]int64, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.ID)
	}
	return out
}

func TestApply_ClientFilter(t *testing.T) {
	orders := sampleOrders()

	t.Run("matches client name case-insensitively", func(t *testing.T) {
		got := filtering.Apply(orders, filtering.Filter{Client: "ana"}, now)
		// "ana" is a substring of both Ana and Mariana.
		assert.ElementsMatch(t, []int64{1, 3}, ids(got))
	})

	t.Run("matches purchase code", func(t *testing.T) {
		code := orders[1].PurchaseCode
		got := filtering.Apply(orders, filtering.Filter{Client: code}, now)
		require.Len(t, got, 1)
		assert.Equal(t, int64(2), got[0].ID)
	})

	t.Run("no match yields empty result", func(t *testing.T) {
		got := filtering.Apply(orders, filtering.Filter{Client: "zebra"}, now)
		assert.Empty(t, got)
	})
}

func TestApply_StatusFilter(t *testing.T) {
	orders := sampleOrders()

	t.Run("exact status match", func(t *testing.T) {
		got := filtering.Apply(orders, filtering.Filter{Status: entity.StatusPending}, now)
		assert.ElementsMatch(t, []int64{1, 4}, ids(got))
	})

	t.Run("sentinel all passes everything", func(t *testing.T) {
		got := filtering.Apply(orders, filtering.Filter{Status: "all"}, now)
		assert.Len(t, got, len(orders))
	})
}

func TestApply_DateBuckets(t *testing.T) {
	orders := sampleOrders()

	t.Run("today", func(t *testing.T) {
		got := filtering.Apply(orders, filtering.Filter{DateBucket: filtering.BucketToday}, now)
		assert.Equal(t, []int64{1}, ids(got))
	})

	t.Run("yesterday", func(t *testing.T) {
		got := filtering.Apply(orders, filtering.Filter{DateBucket: filtering.BucketYesterday}, now)
		assert.Equal(t, []int64{2}, ids(got))
	})

	t.Run("week is a rolling window", func(t *testing.T) {
		got := filtering.Apply(orders, filtering.Filter{DateBucket: filtering.BucketWeek}, now)
		assert.ElementsMatch(t, []int64{1, 2, 3}, ids(got))
	})

	t.Run("unknown bucket passes everything", func(t *testing.T) {
		got := filtering.Apply(orders, filtering.Filter{DateBucket: "fortnight"}, now)
		assert.Len(t, got, len(orders))
	})
}

func TestApply_Composition(t *testing.T) {
	orders := sampleOrders()

	got := filtering.Apply(orders, filtering.Filter{
		Client:     "a",
		Status:     entity.StatusPending,
		DateBucket: filtering.BucketWeek,
	}, now)
	// Filters AND together: pending, created within 7 days, name contains "a".
	assert.Equal(t, []int64{1}, ids(got))
}

func TestApply_Sorting(t *testing.T) {
	orders := sampleOrders()

	t.Run("most recent first", func(t *testing.T) {
		got := filtering.Apply(orders, filtering.Filter{}, now)
		require.Len(t, got, 4)
		for i := 1; i < len(got); i++ {
			assert.False(t, got[i-1].CreatedAt.Before(got[i].CreatedAt))
		}
		assert.Equal(t, []int64{1, 2, 3, 4}, ids(got))
	})

	t.Run("ties keep insertion order", func(t *testing.T) {
		ts := now.Add(-time.Hour)
		tied := []entity.Order{
			makeOrder(10, "First", entity.StatusPending, ts),
			makeOrder(11, "Second", entity.StatusPending, ts),
			makeOrder(12, "Third", entity.StatusPending, ts),
		}
		got := filtering.Apply(tied, filtering.Filter{}, now)
		assert.Equal(t, []int64{10, 11, 12}, ids(got))
	})
}

func TestApply_PureOverSnapshot(t *testing.T) {
	orders := sampleOrders()
	filter := filtering.Filter{Status: entity.StatusPending}

	t.Run("idempotent for the same filter", func(t *testing.T) {
		first := filtering.Apply(orders, filter, now)
		second := filtering.Apply(orders, filter, now)
		assert.Equal(t, first, second)
	})

	t.Run("input slice is not mutated", func(t *testing.T) {
		before := ids(orders)
		_ = filtering.Apply(orders, filtering.Filter{}, now)
		assert.Equal(t, before, ids(orders))
	})
}
