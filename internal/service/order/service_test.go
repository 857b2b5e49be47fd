package order_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bubbletea-slz/teahouse/internal/cache"
	"github.com/bubbletea-slz/teahouse/internal/config"
	"github.com/bubbletea-slz/teahouse/internal/entity"
	"github.com/bubbletea-slz/teahouse/internal/messaging"
	"github.com/bubbletea-slz/teahouse/internal/service/order"
	"github.com/bubbletea-slz/teahouse/internal/store/local"
	"github.com/bubbletea-slz/teahouse/pkg/errorbank"
)

// fakeCache is a map-backed cache.Store that counts invalidations.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	deletes int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]byte{}}
}

func (f *fakeCache) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, ok := f.entries[key]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return raw, nil
}

func (f *fakeCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = value
	return nil
}

func (f *fakeCache) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, key)
	f.deletes++
	return nil
}

// fakePublisher records published event payloads.
type fakePublisher struct {
	mu     sync.Mutex
	events [][]byte
	keys   []string
}

func (f *fakePublisher) Publish(_ context.Context, key []byte, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, string(key))
	f.events = append(f.events, value)
	return nil
}

func (f *fakePublisher) Consume(_ context.Context, _ messaging.Handler) error {
	return errors.New("not a consumer")
}

func (f *fakePublisher) Topic() string { return "orders.events" }

type fixture struct {
	service   *order.Service
	cache     *fakeCache
	publisher *fakePublisher
}

func testConfig() config.Config {
	cfg := config.Config{}
	cfg.Pricing = config.Pricing{Small: 15, Medium: 17, Large: 20}
	cfg.Cache.DefaultTTL = time.Minute
	cfg.Messaging.Enabled = true
	cfg.Messaging.Kafka.Topic = "orders.events"
	return cfg
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	c := newFakeCache()
	p := &fakePublisher{}
	svc := order.NewService(order.Params{
		Store:     local.New(local.NewMemoryDumper()),
		Cache:     c,
		Config:    testConfig(),
		Logger:    zap.NewNop(),
		Publisher: p,
	})
	return fixture{service: svc, cache: c, publisher: p}
}

func kindOf(t *testing.T, err error) errorbank.Kind {
	t.Helper()
	var appErr *errorbank.AppError
	require.ErrorAs(t, err, &appErr)
	return appErr.Kind()
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path snapshots the price table", func(t *testing.T) {
		fix := newFixture(t)

		created, err := fix.service.Create(ctx, order.CreateInput{
			Client:  "  Ana Souza  ",
			TeaType: "milk-tea",
			Size:    "medium",
			Notes:   " less ice ",
		})
		require.NoError(t, err)

		assert.Equal(t, int64(1), created.ID)
		assert.Equal(t, "Ana Souza", created.Client)
		assert.Equal(t, "less ice", created.Notes)
		assert.Equal(t, entity.StatusPending, created.Status)
		assert.True(t, decimal.NewFromInt(17).Equal(created.Price))
	})

	t.Run("rejects short client name", func(t *testing.T) {
		fix := newFixture(t)

		_, err := fix.service.Create(ctx, order.CreateInput{Client: " A ", TeaType: "milk-tea", Size: "small"})
		assert.Equal(t, errorbank.KindBadRequest, kindOf(t, err))
	})

	t.Run("rejects unknown tea type and size", func(t *testing.T) {
		fix := newFixture(t)

		_, err := fix.service.Create(ctx, order.CreateInput{Client: "Ana", TeaType: "oolong", Size: "small"})
		assert.Equal(t, errorbank.KindBadRequest, kindOf(t, err))

		_, err = fix.service.Create(ctx, order.CreateInput{Client: "Ana", TeaType: "milk-tea", Size: "venti"})
		assert.Equal(t, errorbank.KindBadRequest, kindOf(t, err))
	})

	t.Run("publishes the created event", func(t *testing.T) {
		fix := newFixture(t)

		created, err := fix.service.Create(ctx, order.CreateInput{Client: "Ana", TeaType: "green-tea", Size: "small"})
		require.NoError(t, err)

		require.Len(t, fix.publisher.events, 1)
		assert.Equal(t, "order-1", fix.publisher.keys[0])

		var event order.OrderCreatedEvent
		require.NoError(t, json.Unmarshal(fix.publisher.events[0], &event))
		assert.Equal(t, order.EventOrderCreated, event.Type)
		assert.Equal(t, created.PurchaseCode, event.PurchaseCode)
	})
}

// Orders keep the price in force when they were created, even after the
// price table changes.
func TestService_PriceSnapshotSurvivesTableChanges(t *testing.T) {
	ctx := context.Background()
	dumper := local.NewMemoryDumper()
	shared := local.New(dumper)

	oldService := order.NewService(order.Params{
		Store: shared, Cache: newFakeCache(), Config: testConfig(),
		Logger: zap.NewNop(), Publisher: &fakePublisher{},
	})

	created, err := oldService.Create(ctx, order.CreateInput{Client: "Ana", TeaType: "milk-tea", Size: "medium"})
	require.NoError(t, err)
	require.True(t, decimal.NewFromInt(17).Equal(created.Price))

	raised := testConfig()
	raised.Pricing.Medium = 19
	newService := order.NewService(order.Params{
		Store: shared, Cache: newFakeCache(), Config: raised,
		Logger: zap.NewNop(), Publisher: &fakePublisher{},
	})

	got, err := newService.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(17).Equal(got.Price), "stored price must not move with the table")

	fresh, err := newService.Create(ctx, order.CreateInput{Client: "Bruno", TeaType: "milk-tea", Size: "medium"})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(19).Equal(fresh.Price))
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("size change re-snapshots the price", func(t *testing.T) {
		fix := newFixture(t)
		created, err := fix.service.Create(ctx, order.CreateInput{Client: "Ana", TeaType: "milk-tea", Size: "small"})
		require.NoError(t, err)

		size := "large"
		updated, err := fix.service.Update(ctx, created.ID, order.UpdateInput{Size: &size})
		require.NoError(t, err)

		assert.Equal(t, entity.SizeLarge, updated.Size)
		assert.True(t, decimal.NewFromInt(20).Equal(updated.Price))
	})

	t.Run("notes change keeps the price", func(t *testing.T) {
		fix := newFixture(t)
		created, err := fix.service.Create(ctx, order.CreateInput{Client: "Ana", TeaType: "milk-tea", Size: "small"})
		require.NoError(t, err)

		notes := "extra pearls"
		updated, err := fix.service.Update(ctx, created.ID, order.UpdateInput{Notes: &notes})
		require.NoError(t, err)

		assert.Equal(t, "extra pearls", updated.Notes)
		assert.True(t, created.Price.Equal(updated.Price))
	})

	t.Run("unknown order", func(t *testing.T) {
		fix := newFixture(t)

		notes := "whatever"
		_, err := fix.service.Update(ctx, 404, order.UpdateInput{Notes: &notes})
		assert.Equal(t, errorbank.KindNotFound, kindOf(t, err))
	})
}

func TestService_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("moves through the lifecycle and emits events", func(t *testing.T) {
		fix := newFixture(t)
		created, err := fix.service.Create(ctx, order.CreateInput{Client: "Ana", TeaType: "milk-tea", Size: "medium"})
		require.NoError(t, err)

		for _, next := range []string{"preparing", "ready", "delivered"} {
			updated, err := fix.service.UpdateStatus(ctx, created.ID, next)
			require.NoError(t, err)
			assert.Equal(t, entity.Status(next), updated.Status)
		}

		// One created event plus one per status move.
		require.Len(t, fix.publisher.events, 4)

		var last order.OrderStatusChangedEvent
		require.NoError(t, json.Unmarshal(fix.publisher.events[3], &last))
		assert.Equal(t, order.EventOrderStatusChanged, last.Type)
		assert.Equal(t, "ready", last.From)
		assert.Equal(t, "delivered", last.To)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		fix := newFixture(t)
		created, err := fix.service.Create(ctx, order.CreateInput{Client: "Ana", TeaType: "milk-tea", Size: "medium"})
		require.NoError(t, err)

		_, err = fix.service.UpdateStatus(ctx, created.ID, "shipped")
		assert.Equal(t, errorbank.KindBadRequest, kindOf(t, err))
	})

	t.Run("unknown order", func(t *testing.T) {
		fix := newFixture(t)

		_, err := fix.service.UpdateStatus(ctx, 404, "ready")
		assert.Equal(t, errorbank.KindNotFound, kindOf(t, err))
	})
}

func TestService_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	fix := newFixture(t)

	ana, err := fix.service.Create(ctx, order.CreateInput{Client: "Ana", TeaType: "milk-tea", Size: "medium"})
	require.NoError(t, err)
	bruno, err := fix.service.Create(ctx, order.CreateInput{Client: "Bruno", TeaType: "green-tea", Size: "small"})
	require.NoError(t, err)

	_, err = fix.service.UpdateStatus(ctx, ana.ID, "delivered")
	require.NoError(t, err)

	t.Run("list by status", func(t *testing.T) {
		got, err := fix.service.List(ctx, order.ListInput{Status: "delivered"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, ana.ID, got[0].ID)
	})

	t.Run("invalid status filter", func(t *testing.T) {
		_, err := fix.service.List(ctx, order.ListInput{Status: "shipped"})
		assert.Equal(t, errorbank.KindBadRequest, kindOf(t, err))
	})

	t.Run("delete then list", func(t *testing.T) {
		removed, err := fix.service.Delete(ctx, bruno.ID)
		require.NoError(t, err)
		assert.Equal(t, bruno.ID, removed.ID)

		got, err := fix.service.List(ctx, order.ListInput{})
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("clear all", func(t *testing.T) {
		count, err := fix.service.ClearAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		next, err := fix.service.Create(ctx, order.CreateInput{Client: "Carla", TeaType: "mango-strawberry", Size: "large"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), next.ID)
	})
}

func TestService_Statistics(t *testing.T) {
	ctx := context.Background()
	fix := newFixture(t)

	_, err := fix.service.Create(ctx, order.CreateInput{Client: "Ana", TeaType: "milk-tea", Size: "medium"})
	require.NoError(t, err)
	_, err = fix.service.Create(ctx, order.CreateInput{Client: "Bruno", TeaType: "green-tea", Size: "small"})
	require.NoError(t, err)

	t.Run("computes and caches", func(t *testing.T) {
		stats, err := fix.service.Statistics(ctx)
		require.NoError(t, err)

		assert.Equal(t, 2, stats.Total)
		assert.Equal(t, 2, stats.TodayCount)
		assert.True(t, decimal.NewFromInt(32).Equal(stats.TotalRevenue))

		_, cached := fix.cache.entries["orders:statistics"]
		assert.True(t, cached)
	})

	t.Run("cache hit skips the store", func(t *testing.T) {
		canned := `{"total":99,"todayCount":9,"totalRevenue":"1","todayRevenue":"1"}`
		fix.cache.entries["orders:statistics"] = []byte(canned)

		stats, err := fix.service.Statistics(ctx)
		require.NoError(t, err)
		assert.Equal(t, 99, stats.Total)
	})

	t.Run("mutations invalidate the cache", func(t *testing.T) {
		before := fix.cache.deletes
		_, err := fix.service.Create(ctx, order.CreateInput{Client: "Carla", TeaType: "milk-tea", Size: "large"})
		require.NoError(t, err)
		assert.Greater(t, fix.cache.deletes, before)

		_, cached := fix.cache.entries["orders:statistics"]
		assert.False(t, cached)
	})
}
