package local_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bubbletea-slz/teahouse/internal/entity"
	"github.com/bubbletea-slz/teahouse/internal/filtering"
	"github.com/bubbletea-slz/teahouse/internal/store"
	"github.com/bubbletea-slz/teahouse/internal/store/local"
)

var (
	clock = time.Date(2025, time.June, 15, 10, 0, 0, 0, time.Local)
	price = decimal.RequireFromString("17")
)

func newRepository(t *testing.T) *local.Repository {
	t.Helper()
	return local.New(local.NewMemoryDumper(), local.WithNow(func() time.Time { return clock }))
}

func draft(client string) entity.Draft {
	return entity.Draft{
		Client:  client,
		TeaType: entity.TeaMilk,
		Size:    entity.SizeMedium,
	}
}

// failingDumper loads fine but refuses to persist, simulating a broken
// durable backend.
type failingDumper struct {
	inner *local.MemoryDumper
	fail  bool
}

func (f *failingDumper) Load(ctx context.Context) (store.Snapshot, error) {
	return f.inner.Load(ctx)
}

func (f *failingDumper) Save(ctx context.Context, snap store.Snapshot) error {
	if f.fail {
		return errors.New("disk full")
	}
	return f.inner.Save(ctx, snap)
}

func TestRepository_Create(t *testing.T) {
	ctx := context.Background()
	repo := newRepository(t)

	t.Run("fills derived fields", func(t *testing.T) {
		order, err := repo.Create(ctx, entity.Draft{
			Client:  "Ana Souza",
			TeaType: entity.TeaMilk,
			Size:    entity.SizeMedium,
			Notes:   "less ice",
		}, price)
		require.NoError(t, err)

		assert.Equal(t, int64(1), order.ID)
		assert.Equal(t, "BTS000125", order.PurchaseCode)
		assert.Equal(t, entity.StatusPending, order.Status)
		assert.True(t, price.Equal(order.Price))
		assert.Equal(t, clock, order.CreatedAt)
		assert.Equal(t, clock, order.StatusChangedAt)
	})

	t.Run("ids are sequential without gaps", func(t *testing.T) {
		for want := int64(2); want <= 4; want++ {
			order, err := repo.Create(ctx, draft("Bruno"), price)
			require.NoError(t, err)
			assert.Equal(t, want, order.ID)
		}
	})

	t.Run("round trip through GetByID", func(t *testing.T) {
		created, err := repo.Create(ctx, draft("Carla"), price)
		require.NoError(t, err)

		got, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created, got)
	})
}

func TestRepository_GetByID_NotFound(t *testing.T) {
	repo := newRepository(t)

	_, err := repo.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRepository_Update(t *testing.T) {
	ctx := context.Background()
	repo := newRepository(t)

	created, err := repo.Create(ctx, draft("Ana"), price)
	require.NoError(t, err)

	t.Run("merges only the fields present in the patch", func(t *testing.T) {
		notes := "no sugar"
		size := entity.SizeLarge
		newPrice := decimal.RequireFromString("20")

		updated, err := repo.Update(ctx, created.ID, store.Patch{
			Notes: &notes,
			Size:  &size,
			Price: &newPrice,
		})
		require.NoError(t, err)

		assert.Equal(t, "no sugar", updated.Notes)
		assert.Equal(t, entity.SizeLarge, updated.Size)
		assert.True(t, newPrice.Equal(updated.Price))
		assert.Equal(t, "Ana", updated.Client)
		assert.Equal(t, created.PurchaseCode, updated.PurchaseCode)
		assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	})

	t.Run("status change via UpdateStatus", func(t *testing.T) {
		updated, err := repo.UpdateStatus(ctx, created.ID, entity.StatusReady)
		require.NoError(t, err)
		assert.Equal(t, entity.StatusReady, updated.Status)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := repo.Update(ctx, 99, store.Patch{})
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := newRepository(t)

	first, err := repo.Create(ctx, draft("Ana"), price)
	require.NoError(t, err)
	second, err := repo.Create(ctx, draft("Bruno"), price)
	require.NoError(t, err)

	t.Run("returns the removed order", func(t *testing.T) {
		removed, err := repo.Delete(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, first, removed)

		_, err = repo.GetByID(ctx, first.ID)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("other orders survive", func(t *testing.T) {
		got, err := repo.GetByID(ctx, second.ID)
		require.NoError(t, err)
		assert.Equal(t, second, got)
	})

	t.Run("deleted ids are not reused", func(t *testing.T) {
		third, err := repo.Create(ctx, draft("Carla"), price)
		require.NoError(t, err)
		assert.Equal(t, int64(3), third.ID)
	})
}

func TestRepository_ClearAll(t *testing.T) {
	ctx := context.Background()
	repo := newRepository(t)

	for i := 0; i < 3; i++ {
		_, err := repo.Create(ctx, draft("Ana"), price)
		require.NoError(t, err)
	}

	removed, err := repo.ClearAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	orders, err := repo.List(ctx, filtering.Filter{})
	require.NoError(t, err)
	assert.Empty(t, orders)

	// The identity sequence restarts after a full clear.
	order, err := repo.Create(ctx, draft("Bruno"), price)
	require.NoError(t, err)
	assert.Equal(t, int64(1), order.ID)
}

func TestRepository_FailedSaveLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	dumper := &failingDumper{inner: local.NewMemoryDumper()}
	repo := local.New(dumper, local.WithNow(func() time.Time { return clock }))

	created, err := repo.Create(ctx, draft("Ana"), price)
	require.NoError(t, err)

	dumper.fail = true

	t.Run("create", func(t *testing.T) {
		_, err := repo.Create(ctx, draft("Bruno"), price)
		require.Error(t, err)

		orders, listErr := repo.List(ctx, filtering.Filter{})
		require.NoError(t, listErr)
		assert.Len(t, orders, 1)
	})

	t.Run("update", func(t *testing.T) {
		notes := "oat milk"
		_, err := repo.Update(ctx, created.ID, store.Patch{Notes: &notes})
		require.Error(t, err)

		got, getErr := repo.GetByID(ctx, created.ID)
		require.NoError(t, getErr)
		assert.Empty(t, got.Notes)
	})

	t.Run("delete", func(t *testing.T) {
		_, err := repo.Delete(ctx, created.ID)
		require.Error(t, err)

		_, getErr := repo.GetByID(ctx, created.ID)
		assert.NoError(t, getErr)
	})

	t.Run("id sequence did not advance", func(t *testing.T) {
		dumper.fail = false
		order, err := repo.Create(ctx, draft("Carla"), price)
		require.NoError(t, err)
		assert.Equal(t, int64(2), order.ID)
	})
}

func TestRepository_LoadsExistingSnapshot(t *testing.T) {
	ctx := context.Background()
	dumper := local.NewMemoryDumper()

	seeded := entity.Order{
		ID:           7,
		PurchaseCode: "BTS000725",
		Client:       "Ana",
		TeaType:      entity.TeaGreen,
		Size:         entity.SizeSmall,
		Price:        decimal.RequireFromString("15"),
		Status:       entity.StatusDelivered,
		CreatedAt:    clock.AddDate(0, 0, -2),
	}
	require.NoError(t, dumper.Save(ctx, store.Snapshot{
		Orders: []entity.Order{seeded},
		NextID: 8,
	}))

	repo := local.New(dumper, local.WithNow(func() time.Time { return clock }))

	got, err := repo.GetByID(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, seeded, got)

	order, err := repo.Create(ctx, draft("Bruno"), price)
	require.NoError(t, err)
	assert.Equal(t, int64(8), order.ID)
}
