package entity_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bubbletea-slz/teahouse/internal/entity"
)

func TestParseTeaType(t *testing.T) {
	t.Run("accepts every menu item", func(t *testing.T) {
		for _, raw := range []string{"green-tea", "mango-strawberry", "milk-tea"} {
			tea, err := entity.ParseTeaType(raw)
			require.NoError(t, err)
			assert.Equal(t, entity.TeaType(raw), tea)
		}
	})

	t.Run("normalises case and whitespace", func(t *testing.T) {
		tea, err := entity.ParseTeaType("  Milk-Tea ")
		require.NoError(t, err)
		assert.Equal(t, entity.TeaMilk, tea)
	})

	t.Run("rejects unknown values", func(t *testing.T) {
		_, err := entity.ParseTeaType("coffee")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown tea type")
	})
}

func TestParseSize(t *testing.T) {
	t.Run("accepts the three cup sizes", func(t *testing.T) {
		for _, raw := range []string{"small", "medium", "large"} {
			size, err := entity.ParseSize(raw)
			require.NoError(t, err)
			assert.Equal(t, entity.Size(raw), size)
		}
	})

	t.Run("rejects unknown values", func(t *testing.T) {
		_, err := entity.ParseSize("venti")
		require.Error(t, err)
	})
}

func TestParseStatus(t *testing.T) {
	t.Run("accepts every lifecycle status", func(t *testing.T) {
		for _, status := range entity.Statuses() {
			parsed, err := entity.ParseStatus(string(status))
			require.NoError(t, err)
			assert.Equal(t, status, parsed)
		}
	})

	t.Run("rejects unknown values", func(t *testing.T) {
		_, err := entity.ParseStatus("shipped")
		require.Error(t, err)
	})
}

func TestPurchaseCode(t *testing.T) {
	createdAt := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

	t.Run("pads the id and appends the 2-digit year", func(t *testing.T) {
		assert.Equal(t, "BTS000125", entity.PurchaseCode(1, createdAt))
		assert.Equal(t, "BTS004225", entity.PurchaseCode(42, createdAt))
	})

	t.Run("is deterministic for id and year", func(t *testing.T) {
		later := createdAt.Add(5 * time.Hour)
		assert.Equal(t, entity.PurchaseCode(7, createdAt), entity.PurchaseCode(7, later))
	})
}

func TestDefaultPriceList(t *testing.T) {
	prices := entity.DefaultPriceList()

	expected := map[entity.Size]string{
		entity.SizeSmall:  "15",
		entity.SizeMedium: "17",
		entity.SizeLarge:  "20",
	}
	for size, want := range expected {
		price, err := prices.PriceFor(size)
		require.NoError(t, err)
		assert.True(t, price.Equal(decimal.RequireFromString(want)), "size %s", size)
	}

	_, err := prices.PriceFor(entity.Size("jumbo"))
	require.Error(t, err)
}
