package order

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/bubbletea-slz/teahouse/internal/config"
	"github.com/bubbletea-slz/teahouse/internal/messaging"
	ordersvc "github.com/bubbletea-slz/teahouse/internal/service/order"
	"github.com/bubbletea-slz/teahouse/internal/worker"
)

var workerTracer = otel.Tracer("github.com/bubbletea-slz/teahouse/worker/order")

// Module registers order-related worker handlers.
var Module = fx.Module("worker_order",
	fx.Provide(
		fx.Annotate(
			NewOrderEventsHandler,
			fx.ResultTags(`group:"worker.handlers"`),
		),
	),
)

// NewOrderEventsHandler consumes order lifecycle events from the bus.
// It is the kitchen-display side of the shop: created orders and status
// moves land here for downstream processing.
func NewOrderEventsHandler(logger *zap.Logger, cfg config.Config) worker.HandlerRegistration {
	handler := func(ctx context.Context, msg messaging.Message) error {
		ctx, span := workerTracer.Start(ctx, "worker.orders.process", trace.WithAttributes(
			attribute.String("messaging.topic", msg.Topic),
		))
		defer span.End()

		var envelope ordersvc.EventEnvelope
		if err := json.Unmarshal(msg.Value, &envelope); err != nil {
			logger.Error("failed to decode order event", zap.Error(err))
			span.RecordError(err)
			span.SetStatus(codes.Error, "decode error")
			return err
		}

		switch envelope.Type {
		case ordersvc.EventOrderCreated:
			var event ordersvc.OrderCreatedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, "decode error")
				return err
			}
			logger.Info("order created",
				zap.Int64("id", event.ID),
				zap.String("purchaseCode", event.PurchaseCode),
				zap.String("teaType", event.TeaType),
				zap.String("size", event.Size),
			)
		case ordersvc.EventOrderStatusChanged:
			var event ordersvc.OrderStatusChangedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, "decode error")
				return err
			}
			logger.Info("order status changed",
				zap.Int64("id", event.ID),
				zap.String("purchaseCode", event.PurchaseCode),
				zap.String("from", event.From),
				zap.String("to", event.To),
			)
		default:
			logger.Warn("unknown order event type", zap.String("type", envelope.Type))
		}

		return nil
	}

	return worker.HandlerRegistration{
		Topic:   cfg.Messaging.Kafka.Topic,
		Handler: handler,
	}
}
