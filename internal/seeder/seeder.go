package seeder

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/bubbletea-slz/teahouse/internal/entity"
	"github.com/bubbletea-slz/teahouse/internal/store"
)

// Module provides the seeder to Fx.
var Module = fx.Provide(New)

// Seeder creates sample orders for local/dev setups. It goes through
// the order store so any configured backend gets seeded the same way.
type Seeder struct {
	store  store.Store
	prices entity.PriceList
	logger *zap.Logger
}

// New constructs a Seeder over the configured order store.
func New(st store.Store, logger *zap.Logger) *Seeder {
	return &Seeder{store: st, prices: entity.DefaultPriceList(), logger: logger}
}

// Orders seeds a handful of example orders.
func (s *Seeder) Orders(ctx context.Context) error {
	samples := []entity.Draft{
		{Client: "Ana Souza", TeaType: entity.TeaMilk, Size: entity.SizeMedium, Notes: "less ice"},
		{Client: "Bruno Lima", TeaType: entity.TeaGreen, Size: entity.SizeSmall},
		{Client: "Carla Mendes", TeaType: entity.TeaMangoStrawberry, Size: entity.SizeLarge, Notes: "extra pearls"},
	}

	for _, draft := range samples {
		price, err := s.prices.PriceFor(draft.Size)
		if err != nil {
			return err
		}
		if _, err := s.store.Create(ctx, draft, price); err != nil {
			return err
		}
	}

	s.logger.Info("seeded orders", zap.Int("count", len(samples)))
	return nil
}
