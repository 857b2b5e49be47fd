// Package store defines the persistence ports for the order engine and
// selects a concrete driver from configuration.
package store

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/bubbletea-slz/teahouse/internal/entity"
	"github.com/bubbletea-slz/teahouse/internal/filtering"
)

// ErrNotFound is returned when an operation targets a nonexistent order id.
var ErrNotFound = errors.New("order not found")

// Snapshot is the full persisted state of the local order collection.
// Local backends replace the whole document on every save.
type Snapshot struct {
	Orders []entity.Order `json:"orders"`
	NextID int64          `json:"nextId"`
}

// Dumper loads and saves the snapshot for local store variants. An empty
// backend must yield a zero-order snapshot with NextID 1.
type Dumper interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
}

// Patch carries the mutable fields of an order update. Nil fields are
// left untouched. Identity, purchase code, and creation time are not
// patchable.
type Patch struct {
	Client  *string
	TeaType *entity.TeaType
	Size    *entity.Size
	Notes   *string
	Price   *decimal.Decimal
	Status  *entity.Status
}

// Store is the engine contract the service layer depends on. Two families
// of implementations exist: the local repository (in-memory collection
// synchronized through a Dumper) and the remote REST client.
type Store interface {
	// Create allocates identity for the draft, stamps the supplied unit
	// price, and persists the new order with pending status.
	Create(ctx context.Context, draft entity.Draft, price decimal.Decimal) (entity.Order, error)

	// List returns a filtered snapshot sorted most recent first.
	List(ctx context.Context, f filtering.Filter) ([]entity.Order, error)

	// GetByID returns the order or ErrNotFound.
	GetByID(ctx context.Context, id int64) (entity.Order, error)

	// Update merges the patch into the order and refreshes its
	// status-changed timestamp. Returns ErrNotFound for unknown ids.
	Update(ctx context.Context, id int64, patch Patch) (entity.Order, error)

	// UpdateStatus changes only the order status.
	UpdateStatus(ctx context.Context, id int64, status entity.Status) (entity.Order, error)

	// Delete removes the order and returns it, or ErrNotFound.
	Delete(ctx context.Context, id int64) (entity.Order, error)

	// ClearAll empties the collection, resets the identity sequence,
	// and returns the number of orders removed.
	ClearAll(ctx context.Context) (int, error)

	// Statistics aggregates counts and revenue over the whole collection.
	Statistics(ctx context.Context) (filtering.Statistics, error)
}
