// Package local implements the order store as an in-memory collection
// synchronized with a durable backend through the snapshot Dumper
// contract. Every mutation is staged on a copy, persisted, and only then
// committed in memory, so a failed save never leaves phantom state.
package local

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/bubbletea-slz/teahouse/internal/entity"
	"github.com/bubbletea-slz/teahouse/internal/filtering"
	"github.com/bubbletea-slz/teahouse/internal/store"
)

var tracer = otel.Tracer("github.com/bubbletea-slz/teahouse/store/local")

// Repository owns the in-memory order collection and the identity
// sequence. It satisfies store.Store.
type Repository struct {
	mu     sync.Mutex
	dumper store.Dumper
	loaded bool
	orders []entity.Order
	nextID int64
	now    func() time.Time
}

// Option customises a Repository.
type Option func(*Repository)

// WithNow overrides the clock, used by tests.
func WithNow(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// New builds a repository over the given durable backend. The snapshot
// is loaded lazily on first use.
func New(dumper store.Dumper, opts ...Option) *Repository {
	r := &Repository{
		dumper: dumper,
		nextID: 1,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ensureLoaded hydrates the collection from the backend once.
// Callers must hold the mutex.
func (r *Repository) ensureLoaded(ctx context.Context) error {
	if r.loaded {
		return nil
	}
	snap, err := r.dumper.Load(ctx)
	if err != nil {
		return fmt.Errorf("load orders: %w", err)
	}
	r.orders = snap.Orders
	r.nextID = snap.NextID
	if r.nextID < 1 {
		r.nextID = 1
	}
	r.loaded = true
	return nil
}

// commit persists the staged snapshot and swaps it in on success.
func (r *Repository) commit(ctx context.Context, staged store.Snapshot) error {
	if err := r.dumper.Save(ctx, staged); err != nil {
		return fmt.Errorf("save orders: %w", err)
	}
	r.orders = staged.Orders
	r.nextID = staged.NextID
	return nil
}

// Create allocates the next id, derives the purchase code, and persists
// the order with pending status.
func (r *Repository) Create(ctx context.Context, draft entity.Draft, price decimal.Decimal) (entity.Order, error) {
	ctx, span := tracer.Start(ctx, "OrderRepository.Create", trace.WithAttributes(attribute.String("order.client", draft.Client)))
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensureLoaded(ctx); err != nil {
		return entity.Order{}, spanErr(span, err)
	}

	now := r.now()
	order := entity.Order{
		ID:              r.nextID,
		PurchaseCode:    entity.PurchaseCode(r.nextID, now),
		Client:          draft.Client,
		TeaType:         draft.TeaType,
		Size:            draft.Size,
		Notes:           draft.Notes,
		Price:           price,
		Status:          entity.StatusPending,
		CreatedAt:       now,
		StatusChangedAt: now,
	}

	staged := store.Snapshot{
		Orders: append(slices.Clone(r.orders), order),
		NextID: r.nextID + 1,
	}
	if err := r.commit(ctx, staged); err != nil {
		return entity.Order{}, spanErr(span, err)
	}
	return order, nil
}

// List returns a filtered, sorted snapshot. State is never mutated.
func (r *Repository) List(ctx context.Context, f filtering.Filter) ([]entity.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return filtering.Apply(r.orders, f, r.now()), nil
}

// GetByID scans the collection for a matching order.
func (r *Repository) GetByID(ctx context.Context, id int64) (entity.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensureLoaded(ctx); err != nil {
		return entity.Order{}, err
	}
	idx := slices.IndexFunc(r.orders, func(o entity.Order) bool { return o.ID == id })
	if idx < 0 {
		return entity.Order{}, store.ErrNotFound
	}
	return r.orders[idx], nil
}

// Update merges the patch into the stored order. Immutable fields are
// not part of the patch shape; every update refreshes StatusChangedAt.
func (r *Repository) Update(ctx context.Context, id int64, patch store.Patch) (entity.Order, error) {
	ctx, span := tracer.Start(ctx, "OrderRepository.Update", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensureLoaded(ctx); err != nil {
		return entity.Order{}, spanErr(span, err)
	}

	idx := slices.IndexFunc(r.orders, func(o entity.Order) bool { return o.ID == id })
	if idx < 0 {
		span.SetStatus(codes.Error, "not found")
		return entity.Order{}, store.ErrNotFound
	}

	updated := r.orders[idx]
	if patch.Client != nil {
		updated.Client = *patch.Client
	}
	if patch.TeaType != nil {
		updated.TeaType = *patch.TeaType
	}
	if patch.Size != nil {
		updated.Size = *patch.Size
	}
	if patch.Notes != nil {
		updated.Notes = *patch.Notes
	}
	if patch.Price != nil {
		updated.Price = *patch.Price
	}
	if patch.Status != nil {
		updated.Status = *patch.Status
	}
	updated.StatusChangedAt = r.now()

	staged := store.Snapshot{Orders: slices.Clone(r.orders), NextID: r.nextID}
	staged.Orders[idx] = updated

	if err := r.commit(ctx, staged); err != nil {
		return entity.Order{}, spanErr(span, err)
	}
	return updated, nil
}

// UpdateStatus is a convenience wrapper over Update.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status entity.Status) (entity.Order, error) {
	return r.Update(ctx, id, store.Patch{Status: &status})
}

// Delete removes the order and returns it.
func (r *Repository) Delete(ctx context.Context, id int64) (entity.Order, error) {
	ctx, span := tracer.Start(ctx, "OrderRepository.Delete", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensureLoaded(ctx); err != nil {
		return entity.Order{}, spanErr(span, err)
	}

	idx := slices.IndexFunc(r.orders, func(o entity.Order) bool { return o.ID == id })
	if idx < 0 {
		span.SetStatus(codes.Error, "not found")
		return entity.Order{}, store.ErrNotFound
	}
	removed := r.orders[idx]

	staged := store.Snapshot{Orders: slices.Delete(slices.Clone(r.orders), idx, idx+1), NextID: r.nextID}
	if err := r.commit(ctx, staged); err != nil {
		return entity.Order{}, spanErr(span, err)
	}
	return removed, nil
}

// ClearAll empties the collection and resets the identity sequence to 1.
func (r *Repository) ClearAll(ctx context.Context) (int, error) {
	ctx, span := tracer.Start(ctx, "OrderRepository.ClearAll")
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensureLoaded(ctx); err != nil {
		return 0, spanErr(span, err)
	}

	count := len(r.orders)
	if err := r.commit(ctx, store.Snapshot{Orders: []entity.Order{}, NextID: 1}); err != nil {
		return 0, spanErr(span, err)
	}
	return count, nil
}

// Statistics computes aggregates over the unfiltered collection.
func (r *Repository) Statistics(ctx context.Context) (filtering.Statistics, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensureLoaded(ctx); err != nil {
		return filtering.Statistics{}, err
	}
	return filtering.Compute(r.orders, r.now()), nil
}

func spanErr(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
