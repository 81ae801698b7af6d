package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"gorm.io/gorm"

	cartmemory "github.com/Apurer/canteen-orders/internal/domains/cart/adapters/memory"
	cartpostgres "github.com/Apurer/canteen-orders/internal/domains/cart/adapters/persistence/postgres"
	cartredis "github.com/Apurer/canteen-orders/internal/domains/cart/adapters/redis"
	cartapp "github.com/Apurer/canteen-orders/internal/domains/cart/application"
	cartports "github.com/Apurer/canteen-orders/internal/domains/cart/ports"
	deadlinememory "github.com/Apurer/canteen-orders/internal/domains/deadlines/adapters/memory"
	deadlinepostgres "github.com/Apurer/canteen-orders/internal/domains/deadlines/adapters/persistence/postgres"
	deadlineapp "github.com/Apurer/canteen-orders/internal/domains/deadlines/application"
	deadlineports "github.com/Apurer/canteen-orders/internal/domains/deadlines/ports"
	menumemory "github.com/Apurer/canteen-orders/internal/domains/menu/adapters/memory"
	menupostgres "github.com/Apurer/canteen-orders/internal/domains/menu/adapters/persistence/postgres"
	menuapp "github.com/Apurer/canteen-orders/internal/domains/menu/application"
	menuports "github.com/Apurer/canteen-orders/internal/domains/menu/ports"
	ordermemory "github.com/Apurer/canteen-orders/internal/domains/orders/adapters/memory"
	ordernotify "github.com/Apurer/canteen-orders/internal/domains/orders/adapters/notify"
	orderobs "github.com/Apurer/canteen-orders/internal/domains/orders/adapters/observability"
	orderpostgres "github.com/Apurer/canteen-orders/internal/domains/orders/adapters/persistence/postgres"
	orderapp "github.com/Apurer/canteen-orders/internal/domains/orders/application"
	orderports "github.com/Apurer/canteen-orders/internal/domains/orders/ports"
	usermemory "github.com/Apurer/canteen-orders/internal/domains/users/adapters/memory"
	userobs "github.com/Apurer/canteen-orders/internal/domains/users/adapters/observability"
	userpostgres "github.com/Apurer/canteen-orders/internal/domains/users/adapters/persistence/postgres"
	userapp "github.com/Apurer/canteen-orders/internal/domains/users/application"
	userports "github.com/Apurer/canteen-orders/internal/domains/users/ports"
	"github.com/Apurer/canteen-orders/internal/platform/migrations"
	platformobservability "github.com/Apurer/canteen-orders/internal/platform/observability"
	platformpostgres "github.com/Apurer/canteen-orders/internal/platform/postgres"
	platformredis "github.com/Apurer/canteen-orders/internal/platform/redis"
	"github.com/Apurer/canteen-orders/internal/server"
)

const serviceName = "canteen-api"

// Run boots the canteen HTTP API with observability, repositories and the
// notifier wired. It returns when ctx is cancelled and the server drained.
func Run(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	db, cleanupDB := platformpostgres.ConnectOrFallback(ctx, cfg.PostgresDSN, platformpostgres.PoolConfig{MaxOpenConns: cfg.PostgresMaxConns}, logger)
	defer cleanupDB()
	if db != nil {
		if err := migrations.Run(db); err != nil {
			return fmt.Errorf("failed to migrate schema: %w", err)
		}
	}
	repos := buildRepositories(db)

	menuService := menuapp.NewService(repos.menu, repos.dishes)
	deadlineService := deadlineapp.NewService(repos.deadlines, deadlineOptions(cfg)...)
	userService := userobs.New(
		userapp.NewService(repos.users, cfg.AdminChatIDs...),
		userobs.WithLogger(logger),
		userobs.WithTracer(instruments.Tracer("internal.users.application")),
		userobs.WithMeter(instruments.Meter("internal.users.application")),
	)

	notifier, closeNotifier := buildNotifier(cfg, instruments)
	defer closeNotifier()
	orderService := orderobs.New(
		orderapp.NewService(
			repos.orders,
			menuService.Ledger(),
			deadlineService,
			userService,
			menuService,
			orderapp.WithNotifier(notifier),
			orderapp.WithAdminRecipients(cfg.AdminChatIDs...),
			orderapp.WithLogger(logger),
			orderapp.WithLimits(cfg.Limits),
		),
		orderobs.WithLogger(logger),
		orderobs.WithTracer(instruments.Tracer("internal.orders.application")),
		orderobs.WithMeter(instruments.Meter("internal.orders.application")),
	)

	sessions, closeSessions := buildSessionStore(ctx, cfg, db, logger)
	defer closeSessions()
	cartService := cartapp.NewService(sessions, menuService, menuService, orderService,
		cartapp.WithMaxLineQuantity(cfg.Limits.MaxLineQuantity))

	handlers := server.ApiHandleFunctions{
		MenuAPI:     server.NewMenuAPI(menuService),
		CartAPI:     server.NewCartAPI(cartService),
		OrderAPI:    server.NewOrderAPI(orderService),
		DeadlineAPI: server.NewDeadlineAPI(deadlineService),
		UserAPI:     server.NewUserAPI(userService),
		Users:       userService,
	}
	router := server.NewRouter(handlers, otelgin.Middleware(serviceName))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("canteen API listening", slog.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("canteen API server exited", slog.String("addr", srv.Addr), slog.String("error", err.Error()))
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down canteen API")
	drainCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(drainCtx)
}

type repositories struct {
	menu      menuports.Repository
	dishes    menuports.DishRepository
	deadlines deadlineports.Repository
	users     userports.Repository
	orders    orderports.Repository
}

// buildRepositories picks Postgres when db is set and memory otherwise. The
// memory orders repository shares the menu store so one order transaction
// covers the ledger too.
func buildRepositories(db *gorm.DB) repositories {
	if db != nil {
		return repositories{
			menu:      menupostgres.NewRepository(db),
			dishes:    menupostgres.NewDishRepository(db),
			deadlines: deadlinepostgres.NewRepository(db),
			users:     userpostgres.NewRepository(db),
			orders:    orderpostgres.NewRepository(db),
		}
	}
	menuRepo := menumemory.NewRepository()
	return repositories{
		menu:      menuRepo,
		dishes:    menumemory.NewDishRepository(),
		deadlines: deadlinememory.NewRepository(),
		users:     usermemory.NewRepository(),
		orders:    ordermemory.NewRepository(menuRepo),
	}
}

func deadlineOptions(cfg Config) []deadlineapp.Option {
	if cfg.DefaultCutoff == nil {
		return nil
	}
	return []deadlineapp.Option{deadlineapp.WithDefaultCutoff(*cfg.DefaultCutoff, cfg.Location)}
}

// buildSessionStore prefers Redis, then Postgres, then process memory.
func buildSessionStore(ctx context.Context, cfg Config, db *gorm.DB, logger *slog.Logger) (cartports.SessionStore, func()) {
	if cfg.RedisAddr != "" {
		rdb, err := platformredis.Connect(ctx, platformredis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err == nil {
			logger.Info("cart sessions stored in redis", slog.String("addr", cfg.RedisAddr))
			return cartredis.NewSessionStore(rdb, cfg.CartTTL), func() { _ = rdb.Close() }
		}
		logger.Warn("redis unavailable, falling back", slog.String("error", err.Error()))
	}
	if db != nil {
		logger.Info("cart sessions stored in postgres")
		return cartpostgres.NewSessionStore(db, cfg.CartTTL), func() {}
	}
	logger.Warn("cart sessions kept in memory")
	store := cartmemory.NewSessionStore(cfg.CartTTL)
	purgeCtx, stop := context.WithCancel(ctx)
	go purgeLoop(purgeCtx, cfg.SessionPurgePeriod, logger, store.Purge)
	return store, stop
}

// purgeLoop drops expired sessions every period until ctx ends.
func purgeLoop(ctx context.Context, period time.Duration, logger *slog.Logger, purge func(context.Context) (int64, error)) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := purge(ctx)
			if err != nil {
				logger.Warn("cart session purge failed", slog.String("error", err.Error()))
				continue
			}
			if n > 0 {
				logger.Debug("expired cart sessions purged", slog.Int64("removed", n))
			}
		}
	}
}

// buildNotifier selects the delivery backend. Any backend that cannot start
// degrades to the log notifier so ordering never depends on it.
func buildNotifier(cfg Config, instruments *platformobservability.Instruments) (orderports.Notifier, func()) {
	logger := effectiveLogger(instruments)
	fallback := ordernotify.NewLogNotifier(logger)
	switch cfg.Notifier {
	case NotifierAMQP:
		n, err := ordernotify.DialAMQP(cfg.RabbitMQURL)
		if err != nil {
			logger.Warn("rabbitmq unavailable, logging notifications instead", slog.String("error", err.Error()))
			return fallback, func() {}
		}
		logger.Info("notifications published to rabbitmq", slog.String("queue", ordernotify.NotificationQueue))
		return n, func() { _ = n.Close() }
	case NotifierTemporal:
		c, err := ConnectTemporalClient(cfg, instruments)
		if err != nil {
			logger.Warn("Temporal unavailable, logging notifications instead", slog.String("error", err.Error()))
			return fallback, func() {}
		}
		logger.Info("notifications delivered through Temporal", slog.String("namespace", cfg.TemporalNamespace))
		return ordernotify.NewTemporalNotifier(c), c.Close
	default:
		return fallback, func() {}
	}
}

// ConnectTemporalClient dials Temporal with the tracing interceptor installed.
func ConnectTemporalClient(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer("temporal-client")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(effectiveLogger(instruments)),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
