package local

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/bubbletea-slz/teahouse/internal/entity"
	"github.com/bubbletea-slz/teahouse/internal/store"
)

// sequenceRow holds the identity sequence in a single-row table so the
// dump survives restarts together with the orders themselves.
type sequenceRow struct {
	bun.BaseModel `bun:"table:order_sequence"`

	ID     int64 `bun:",pk"`
	NextID int64 `bun:"next_id,notnull"`
}

// SQLDumper persists the snapshot in a relational database through Bun.
// Save replaces the whole orders table in one transaction, matching the
// dump-and-replace contract of the other backends.
type SQLDumper struct {
	db *bun.DB
}

// NewSQLDumper wraps an established bun connection.
func NewSQLDumper(db *bun.DB) *SQLDumper {
	return &SQLDumper{db: db}
}

// Load reads all orders and the stored sequence value.
func (d *SQLDumper) Load(ctx context.Context) (store.Snapshot, error) {
	var orders []entity.Order
	if err := d.db.NewSelect().Model(&orders).Order("id ASC").Scan(ctx); err != nil {
		return store.Snapshot{}, fmt.Errorf("select orders: %w", err)
	}

	seq := new(sequenceRow)
	err := d.db.NewSelect().Model(seq).Where("id = 1").Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		seq.NextID = 1
	} else if err != nil {
		return store.Snapshot{}, fmt.Errorf("select sequence: %w", err)
	}

	if seq.NextID < 1 {
		seq.NextID = 1
	}
	return store.Snapshot{Orders: orders, NextID: seq.NextID}, nil
}

// Save rewrites both tables transactionally.
func (d *SQLDumper) Save(ctx context.Context, snap store.Snapshot) error {
	return d.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*entity.Order)(nil)).Where("1 = 1").Exec(ctx); err != nil {
			return fmt.Errorf("clear orders: %w", err)
		}
		if len(snap.Orders) > 0 {
			if _, err := tx.NewInsert().Model(&snap.Orders).Exec(ctx); err != nil {
				return fmt.Errorf("insert orders: %w", err)
			}
		}

		if _, err := tx.NewDelete().Model((*sequenceRow)(nil)).Where("id = 1").Exec(ctx); err != nil {
			return fmt.Errorf("clear sequence: %w", err)
		}
		seq := sequenceRow{ID: 1, NextID: snap.NextID}
		if _, err := tx.NewInsert().Model(&seq).Exec(ctx); err != nil {
			return fmt.Errorf("insert sequence: %w", err)
		}
		return nil
	})
}
