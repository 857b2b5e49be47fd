package local

import (
	"context"
	"slices"
	"sync"

	"github.com/bubbletea-slz/teahouse/internal/store"
)

// MemoryDumper keeps the snapshot in process memory. It backs the
// "memory" store driver and doubles as the test backend.
type MemoryDumper struct {
	mu   sync.Mutex
	snap store.Snapshot
	set  bool
}

// NewMemoryDumper returns an empty in-process backend.
func NewMemoryDumper() *MemoryDumper {
	return &MemoryDumper{}
}

// Load returns the last saved snapshot, or an empty one.
func (m *MemoryDumper) Load(_ context.Context) (store.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return store.Snapshot{NextID: 1}, nil
	}
	return store.Snapshot{Orders: slices.Clone(m.snap.Orders), NextID: m.snap.NextID}, nil
}

// Save replaces the stored snapshot.
func (m *MemoryDumper) Save(_ context.Context, snap store.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = store.Snapshot{Orders: slices.Clone(snap.Orders), NextID: snap.NextID}
	m.set = true
	return nil
}
