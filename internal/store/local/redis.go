package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/bubbletea-slz/teahouse/internal/store"
)

// RedisDumper persists the whole order snapshot as a single JSON document
// under a fixed key, mirroring the dump-and-replace data-sync model.
type RedisDumper struct {
	client *goredis.Client
	key    string
}

// NewRedisDumper wraps an established redis client.
func NewRedisDumper(client *goredis.Client, key string) *RedisDumper {
	return &RedisDumper{client: client, key: key}
}

// Load fetches and decodes the snapshot document. A missing key yields
// an empty collection with the sequence at 1.
func (d *RedisDumper) Load(ctx context.Context) (store.Snapshot, error) {
	raw, err := d.client.Get(ctx, d.key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return store.Snapshot{NextID: 1}, nil
	}
	if err != nil {
		return store.Snapshot{}, fmt.Errorf("redis get %s: %w", d.key, err)
	}

	var snap store.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return store.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.NextID < 1 {
		snap.NextID = 1
	}
	return snap, nil
}

// Save overwrites the snapshot document. No TTL: orders are durable.
func (d *RedisDumper) Save(ctx context.Context, snap store.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := d.client.Set(ctx, d.key, raw, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", d.key, err)
	}
	return nil
}
