package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	deadlinedomain "github.com/Apurer/canteen-orders/internal/domains/deadlines/domain"
	menudomain "github.com/Apurer/canteen-orders/internal/domains/menu/domain"
	orderdomain "github.com/Apurer/canteen-orders/internal/domains/orders/domain"
	orderports "github.com/Apurer/canteen-orders/internal/domains/orders/ports"
)

const tracerName = "github.com/Apurer/canteen-orders/internal/domains/orders/adapters/observability/service"

// Service decorates the order service with tracing, logging, and metrics.
type Service struct {
	inner   orderports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wraps the core order service.
func New(inner orderports.Service, opts ...Option) orderports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return s
}

func (s *Service) Finalize(ctx context.Context, input orderports.FinalizeInput) (*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.Finalize", trace.WithAttributes(
		attribute.Int64("user.id", input.UserID),
		attribute.String("order.date", input.Date.Format("2006-01-02")),
		attribute.Int("order.lines", len(input.Lines))))
	defer span.End()

	s.logInfo(ctx, "finalizing cart", slog.Int64("user.id", input.UserID), slog.Int("lines", len(input.Lines)))
	result, err := s.inner.Finalize(ctx, input)
	if err != nil {
		s.metrics.recordRejected(ctx, "finalize", err)
		return nil, s.handleError(ctx, span, err, "failed to finalize cart", slog.Int64("user.id", input.UserID))
	}
	s.metrics.recordFinalized(ctx)
	span.SetAttributes(attribute.Int64("order.id", result.ID))
	s.logInfo(ctx, "order created", slog.Int64("order.id", result.ID), slog.String("total", result.Total.StringFixed(2)))
	return result, nil
}

func (s *Service) ChangeStatus(ctx context.Context, input orderports.ChangeStatusInput) (*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ChangeStatus", trace.WithAttributes(
		attribute.Int64("order.id", input.OrderID),
		attribute.String("order.status", string(input.Status)),
		attribute.Int64("actor.id", input.ActorID)))
	defer span.End()

	s.logInfo(ctx, "changing order status", slog.Int64("order.id", input.OrderID), slog.String("status", string(input.Status)))
	result, err := s.inner.ChangeStatus(ctx, input)
	if err != nil {
		s.metrics.recordRejected(ctx, "change_status", err)
		return nil, s.handleError(ctx, span, err, "failed to change order status", slog.Int64("order.id", input.OrderID))
	}
	s.metrics.recordTransition(ctx, result.Status)
	s.logInfo(ctx, "order status changed", slog.Int64("order.id", result.ID), slog.String("status", string(result.Status)))
	return result, nil
}

func (s *Service) Cancel(ctx context.Context, orderID, userID int64) (*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.Cancel", trace.WithAttributes(
		attribute.Int64("order.id", orderID), attribute.Int64("user.id", userID)))
	defer span.End()

	s.logInfo(ctx, "cancelling order", slog.Int64("order.id", orderID), slog.Int64("user.id", userID))
	result, err := s.inner.Cancel(ctx, orderID, userID)
	if err != nil {
		s.metrics.recordRejected(ctx, "cancel", err)
		return nil, s.handleError(ctx, span, err, "failed to cancel order", slog.Int64("order.id", orderID))
	}
	s.metrics.recordTransition(ctx, result.Status)
	s.logInfo(ctx, "order cancelled", slog.Int64("order.id", result.ID))
	return result, nil
}

func (s *Service) AddItem(ctx context.Context, input orderports.AddItemInput) (*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.AddItem", trace.WithAttributes(
		attribute.Int64("order.id", input.OrderID),
		attribute.Int64("dish.id", input.DishID),
		attribute.Int("quantity", input.Quantity)))
	defer span.End()

	s.logInfo(ctx, "adding order item", slog.Int64("order.id", input.OrderID), slog.Int64("dish.id", input.DishID))
	result, err := s.inner.AddItem(ctx, input)
	if err != nil {
		s.metrics.recordRejected(ctx, "add_item", err)
		return nil, s.handleError(ctx, span, err, "failed to add order item", slog.Int64("order.id", input.OrderID))
	}
	s.logInfo(ctx, "order item added", slog.Int64("order.id", result.ID), slog.String("total", result.Total.StringFixed(2)))
	return result, nil
}

func (s *Service) RemoveItem(ctx context.Context, input orderports.RemoveItemInput) (*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.RemoveItem", trace.WithAttributes(
		attribute.Int64("order.id", input.OrderID), attribute.Int64("item.id", input.ItemID)))
	defer span.End()

	s.logInfo(ctx, "removing order item", slog.Int64("order.id", input.OrderID), slog.Int64("item.id", input.ItemID))
	result, err := s.inner.RemoveItem(ctx, input)
	if err != nil {
		s.metrics.recordRejected(ctx, "remove_item", err)
		return nil, s.handleError(ctx, span, err, "failed to remove order item", slog.Int64("order.id", input.OrderID))
	}
	s.logInfo(ctx, "order item removed", slog.Int64("order.id", result.ID), slog.String("total", result.Total.StringFixed(2)))
	return result, nil
}

func (s *Service) Get(ctx context.Context, orderID int64) (*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.Get", trace.WithAttributes(attribute.Int64("order.id", orderID)))
	defer span.End()

	result, err := s.inner.Get(ctx, orderID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load order", slog.Int64("order.id", orderID))
	}
	return result, nil
}

func (s *Service) ListForUser(ctx context.Context, userID int64, filter orderports.Filter) ([]*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ListForUser", trace.WithAttributes(attribute.Int64("user.id", userID)))
	defer span.End()

	result, err := s.inner.ListForUser(ctx, userID, filter)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list user orders", slog.Int64("user.id", userID))
	}
	span.SetAttributes(attribute.Int("orders.count", len(result)))
	return result, nil
}

func (s *Service) List(ctx context.Context, filter orderports.Filter) ([]*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.List")
	defer span.End()

	result, err := s.inner.List(ctx, filter)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list orders")
	}
	span.SetAttributes(attribute.Int("orders.count", len(result)))
	return result, nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

// handleError records err on the span. Business rejections are logged at warn
// level since the caller is expected to recover from them.
func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if reason := rejectionReason(err); reason != "" && s.logger != nil {
		attrs = append(attrs, slog.String("reason", reason), slog.String("error", err.Error()))
		s.logger.LogAttrs(ctx, slog.LevelWarn, msg, attrs...)
		return err
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, menudomain.ErrInsufficientAvailability):
		return "insufficient_availability"
	case errors.Is(err, deadlinedomain.ErrDeadlinePassed):
		return "deadline_passed"
	case errors.Is(err, orderdomain.ErrDuplicateOrder):
		return "duplicate_order"
	case errors.Is(err, orderports.ErrNotFound):
		return "not_found"
	default:
		return ""
	}
}

type serviceMetrics struct {
	ordersFinalized   metric.Int64Counter
	ordersTransitions metric.Int64Counter
	ordersRejected    metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	finalized, _ := m.Int64Counter("orders.service.finalized", metric.WithDescription("Number of carts committed to orders"))
	transitions, _ := m.Int64Counter("orders.service.transitions", metric.WithDescription("Number of order status changes"))
	rejected, _ := m.Int64Counter("orders.service.rejected", metric.WithDescription("Number of order operations rejected"))
	return serviceMetrics{ordersFinalized: finalized, ordersTransitions: transitions, ordersRejected: rejected}
}

func (m serviceMetrics) recordFinalized(ctx context.Context) {
	if m.ordersFinalized != nil {
		m.ordersFinalized.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordTransition(ctx context.Context, status orderdomain.Status) {
	if m.ordersTransitions != nil {
		m.ordersTransitions.Add(ctx, 1, metric.WithAttributes(attribute.String("order.status", string(status))))
	}
}

func (m serviceMetrics) recordRejected(ctx context.Context, operation string, err error) {
	if m.ordersRejected == nil {
		return
	}
	reason := rejectionReason(err)
	if reason == "" {
		reason = "other"
	}
	m.ordersRejected.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation), attribute.String("reason", reason)))
}

var _ orderports.Service = (*Service)(nil)
