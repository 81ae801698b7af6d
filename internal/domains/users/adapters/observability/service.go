package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	userdomain "github.com/Apurer/canteen-orders/internal/domains/users/domain"
	userports "github.com/Apurer/canteen-orders/internal/domains/users/ports"
)

const tracerName = "github.com/Apurer/canteen-orders/internal/domains/users/adapters/observability/service"

// Service decorates the user service with tracing, logging, and metrics.
type Service struct {
	inner   userports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) { s.tracer = tr }
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) { s.metrics = newServiceMetrics(m) }
}

// New wraps the core user service.
func New(inner userports.Service, opts ...Option) userports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
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
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

func (s *Service) Register(ctx context.Context, input userports.RegisterInput) (*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Register", trace.WithAttributes(attribute.Int64("user.chat_id", input.ChatID)))
	defer span.End()
	result, err := s.inner.Register(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to register user", slog.Int64("chat_id", input.ChatID))
	}
	s.metrics.recordRegistered(ctx, result.Role)
	s.logInfo(ctx, "user registered", slog.Int64("user.id", result.ID), slog.String("role", string(result.Role)))
	return result, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Get", trace.WithAttributes(attribute.Int64("user.id", id)))
	defer span.End()
	return s.inner.Get(ctx, id)
}

func (s *Service) GetByChatID(ctx context.Context, chatID int64) (*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.GetByChatID", trace.WithAttributes(attribute.Int64("user.chat_id", chatID)))
	defer span.End()
	return s.inner.GetByChatID(ctx, chatID)
}

func (s *Service) ListManagers(ctx context.Context) ([]*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.ListManagers")
	defer span.End()
	result, err := s.inner.ListManagers(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list managers")
	}
	span.SetAttributes(attribute.Int("user.managers.count", len(result)))
	return result, nil
}

func (s *Service) SetRole(ctx context.Context, id int64, role userdomain.Role) (*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.SetRole", trace.WithAttributes(attribute.Int64("user.id", id), attribute.String("user.role", string(role))))
	defer span.End()
	result, err := s.inner.SetRole(ctx, id, role)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to change role", slog.Int64("user.id", id))
	}
	s.metrics.recordUpdated(ctx)
	s.logInfo(ctx, "user role changed", slog.Int64("user.id", id), slog.String("role", string(role)))
	return result, nil
}

func (s *Service) SetBlocked(ctx context.Context, id int64, blocked bool) (*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.SetBlocked", trace.WithAttributes(attribute.Int64("user.id", id), attribute.Bool("user.blocked", blocked)))
	defer span.End()
	result, err := s.inner.SetBlocked(ctx, id, blocked)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to change block flag", slog.Int64("user.id", id))
	}
	s.metrics.recordUpdated(ctx)
	s.logInfo(ctx, "user block flag changed", slog.Int64("user.id", id), slog.Bool("blocked", blocked))
	return result, nil
}

func (s *Service) AssignOffice(ctx context.Context, id int64, officeID *int64) (*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.AssignOffice", trace.WithAttributes(attribute.Int64("user.id", id)))
	defer span.End()
	result, err := s.inner.AssignOffice(ctx, id, officeID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to assign office", slog.Int64("user.id", id))
	}
	s.metrics.recordUpdated(ctx)
	return result, nil
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
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

type serviceMetrics struct {
	registered metric.Int64Counter
	updated    metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	registered, _ := m.Int64Counter("users.service.registered", metric.WithDescription("Number of user registrations"))
	updated, _ := m.Int64Counter("users.service.updated", metric.WithDescription("Number of administrative user updates"))
	return serviceMetrics{registered: registered, updated: updated}
}

func (m serviceMetrics) recordRegistered(ctx context.Context, role userdomain.Role) {
	if m.registered != nil {
		m.registered.Add(ctx, 1, metric.WithAttributes(attribute.String("user.role", string(role))))
	}
}

func (m serviceMetrics) recordUpdated(ctx context.Context) {
	if m.updated != nil {
		m.updated.Add(ctx, 1)
	}
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var _ userports.Service = (*Service)(nil)
