package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/bubbletea-slz/teahouse/internal/cache"
	"github.com/bubbletea-slz/teahouse/internal/config"
	"github.com/bubbletea-slz/teahouse/internal/entity"
	"github.com/bubbletea-slz/teahouse/internal/filtering"
	"github.com/bubbletea-slz/teahouse/internal/messaging"
	"github.com/bubbletea-slz/teahouse/internal/policy"
	"github.com/bubbletea-slz/teahouse/internal/store"
	"github.com/bubbletea-slz/teahouse/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/bubbletea-slz/teahouse/service/order")

const statisticsCacheKey = "orders:statistics"

// Service implements the order lifecycle on top of the configured store.
// It owns draft validation, price snapshotting, and the status policy;
// the store stays free of business rules.
type Service struct {
	store     store.Store
	prices    entity.PriceList
	cache     cache.Store
	cacheTTL  time.Duration
	logger    *zap.Logger
	publisher messaging.Client
	messaging messagingConfig
}

// messagingConfig contains messaging specific knobs we care about.
type messagingConfig struct {
	enabled bool
	topic   string
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Store     store.Store
	Cache     cache.Store
	Config    config.Config
	Logger    *zap.Logger
	Publisher messaging.Client
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		store: p.Store,
		prices: entity.PriceList{
			entity.SizeSmall:  decimal.NewFromFloat(p.Config.Pricing.Small),
			entity.SizeMedium: decimal.NewFromFloat(p.Config.Pricing.Medium),
			entity.SizeLarge:  decimal.NewFromFloat(p.Config.Pricing.Large),
		},
		cache:     p.Cache,
		cacheTTL:  p.Config.Cache.DefaultTTL,
		logger:    p.Logger,
		publisher: p.Publisher,
		messaging: messagingConfig{
			enabled: p.Config.Messaging.Enabled,
			topic:   p.Config.Messaging.Kafka.Topic,
		},
	}
}

// CreateInput carries the raw draft fields from the caller.
type CreateInput struct {
	Client  string
	TeaType string
	Size    string
	Notes   string
}

// UpdateInput carries a partial edit; nil fields are not touched.
// Identity, purchase code, and creation time are never editable.
type UpdateInput struct {
	Client  *string
	TeaType *string
	Size    *string
	Notes   *string
}

// ListInput carries raw filter values from the caller.
type ListInput struct {
	Client string
	Status string
	Date   string
}

// Create validates the draft, snapshots the unit price from the current
// price table, and stores the new pending order.
func (s *Service) Create(ctx context.Context, in CreateInput) (entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Create")
	defer span.End()

	draft, price, err := s.validateDraft(in)
	if err != nil {
		return entity.Order{}, err
	}

	order, err := s.store.Create(ctx, draft, price)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store error")
		return entity.Order{}, errorbank.Internal("failed to create order", errorbank.WithCause(err))
	}

	s.invalidateStatistics(ctx)
	s.publishOrderCreated(ctx, order)
	return order, nil
}

// List returns a filtered and sorted view of the collection.
func (s *Service) List(ctx context.Context, in ListInput) ([]entity.Order, error) {
	filter := filtering.Filter{
		Client:     strings.TrimSpace(in.Client),
		DateBucket: filtering.DateBucket(in.Date),
	}

	if raw := strings.TrimSpace(in.Status); raw != "" && raw != "all" {
		status, err := entity.ParseStatus(raw)
		if err != nil {
			return nil, errorbank.BadRequest("invalid status filter", errorbank.WithCause(err))
		}
		filter.Status = status
	}

	orders, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, errorbank.Internal("failed to list orders", errorbank.WithCause(err))
	}
	return orders, nil
}

// Get retrieves an order by id.
func (s *Service) Get(ctx context.Context, id int64) (entity.Order, error) {
	order, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return entity.Order{}, errorbank.NotFound("order not found")
		}
		return entity.Order{}, errorbank.Internal("failed to load order", errorbank.WithCause(err))
	}
	return order, nil
}

// Update merges an edit into the order. Changing the size re-snapshots
// the unit price from the current table; nothing else ever recomputes it.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Update", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	patch := store.Patch{Notes: in.Notes}

	if in.Client != nil {
		trimmed := strings.TrimSpace(*in.Client)
		if len(trimmed) < 2 {
			return entity.Order{}, errorbank.BadRequest("client name must have at least 2 characters")
		}
		patch.Client = &trimmed
	}
	if in.TeaType != nil {
		tea, err := entity.ParseTeaType(*in.TeaType)
		if err != nil {
			return entity.Order{}, errorbank.BadRequest("invalid tea type", errorbank.WithCause(err))
		}
		patch.TeaType = &tea
	}
	if in.Size != nil {
		size, err := entity.ParseSize(*in.Size)
		if err != nil {
			return entity.Order{}, errorbank.BadRequest("invalid size", errorbank.WithCause(err))
		}
		price, err := s.prices.PriceFor(size)
		if err != nil {
			return entity.Order{}, errorbank.BadRequest("invalid size", errorbank.WithCause(err))
		}
		patch.Size = &size
		patch.Price = &price
	}

	order, err := s.store.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return entity.Order{}, errorbank.NotFound("order not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "store error")
		return entity.Order{}, errorbank.Internal("failed to update order", errorbank.WithCause(err))
	}

	s.invalidateStatistics(ctx)
	return order, nil
}

// UpdateStatus moves the order to a new status through the transition
// policy.
func (s *Service) UpdateStatus(ctx context.Context, id int64, rawStatus string) (entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.UpdateStatus", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	newStatus, err := entity.ParseStatus(rawStatus)
	if err != nil {
		return entity.Order{}, errorbank.BadRequest("invalid status", errorbank.WithCause(err))
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return entity.Order{}, err
	}

	next, err := policy.Transition(current.Status, newStatus)
	if err != nil {
		return entity.Order{}, errorbank.Unprocessable(err.Error())
	}

	order, err := s.store.UpdateStatus(ctx, id, next)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return entity.Order{}, errorbank.NotFound("order not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "store error")
		return entity.Order{}, errorbank.Internal("failed to update order status", errorbank.WithCause(err))
	}

	s.invalidateStatistics(ctx)
	s.publishStatusChanged(ctx, current.Status, order)
	return order, nil
}

// Delete removes the order and returns the removed record.
func (s *Service) Delete(ctx context.Context, id int64) (entity.Order, error) {
	order, err := s.store.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return entity.Order{}, errorbank.NotFound("order not found")
		}
		return entity.Order{}, errorbank.Internal("failed to delete order", errorbank.WithCause(err))
	}

	s.invalidateStatistics(ctx)
	return order, nil
}

// ClearAll wipes the collection and resets the identity sequence.
func (s *Service) ClearAll(ctx context.Context) (int, error) {
	count, err := s.store.ClearAll(ctx)
	if err != nil {
		return count, errorbank.Internal("failed to clear orders", errorbank.WithCause(err))
	}

	s.invalidateStatistics(ctx)
	return count, nil
}

// Statistics returns the aggregate dashboard numbers, consulting the
// cache first.
func (s *Service) Statistics(ctx context.Context) (filtering.Statistics, error) {
	if raw, err := s.cache.Get(ctx, statisticsCacheKey); err == nil {
		var stats filtering.Statistics
		if err := json.Unmarshal(raw, &stats); err == nil {
			return stats, nil
		}
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("statistics cache read failed", zap.Error(err))
	}

	stats, err := s.store.Statistics(ctx)
	if err != nil {
		return filtering.Statistics{}, errorbank.Internal("failed to compute statistics", errorbank.WithCause(err))
	}

	if raw, err := json.Marshal(stats); err == nil {
		if err := s.cache.Set(ctx, statisticsCacheKey, raw, s.cacheTTL); err != nil {
			s.logger.Warn("statistics cache write failed", zap.Error(err))
		}
	}
	return stats, nil
}

// validateDraft enforces the draft contract: trimmed client of at least
// 2 characters and recognised enum values.
func (s *Service) validateDraft(in CreateInput) (entity.Draft, decimal.Decimal, error) {
	client := strings.TrimSpace(in.Client)
	if len(client) < 2 {
		return entity.Draft{}, decimal.Zero, errorbank.BadRequest("client name must have at least 2 characters")
	}

	tea, err := entity.ParseTeaType(in.TeaType)
	if err != nil {
		return entity.Draft{}, decimal.Zero, errorbank.BadRequest("invalid tea type", errorbank.WithCause(err))
	}

	size, err := entity.ParseSize(in.Size)
	if err != nil {
		return entity.Draft{}, decimal.Zero, errorbank.BadRequest("invalid size", errorbank.WithCause(err))
	}

	price, err := s.prices.PriceFor(size)
	if err != nil {
		return entity.Draft{}, decimal.Zero, errorbank.BadRequest("invalid size", errorbank.WithCause(err))
	}

	return entity.Draft{
		Client:  client,
		TeaType: tea,
		Size:    size,
		Notes:   strings.TrimSpace(in.Notes),
	}, price, nil
}

func (s *Service) invalidateStatistics(ctx context.Context) {
	if err := s.cache.Delete(ctx, statisticsCacheKey); err != nil {
		s.logger.Warn("statistics cache invalidation failed", zap.Error(err))
	}
}

func (s *Service) publishOrderCreated(ctx context.Context, order entity.Order) {
	if !s.messaging.enabled || s.publisher == nil {
		return
	}
	event := OrderCreatedEvent{
		Type:         EventOrderCreated,
		ID:           order.ID,
		PurchaseCode: order.PurchaseCode,
		Client:       order.Client,
		TeaType:      string(order.TeaType),
		Size:         string(order.Size),
		Price:        order.Price,
		Status:       string(order.Status),
		CreatedAt:    order.CreatedAt,
	}
	s.publish(ctx, order.ID, event)
}

func (s *Service) publishStatusChanged(ctx context.Context, from entity.Status, order entity.Order) {
	if !s.messaging.enabled || s.publisher == nil {
		return
	}
	event := OrderStatusChangedEvent{
		Type:         EventOrderStatusChanged,
		ID:           order.ID,
		PurchaseCode: order.PurchaseCode,
		From:         string(from),
		To:           string(order.Status),
		ChangedAt:    order.StatusChangedAt,
	}
	s.publish(ctx, order.ID, event)
}

func (s *Service) publish(ctx context.Context, id int64, event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("marshal order event", zap.Error(err))
		return
	}
	if err := s.publisher.Publish(ctx, []byte(fmt.Sprintf("order-%d", id)), payload); err != nil {
		s.logger.Error("publish order event", zap.Error(err))
	}
}
