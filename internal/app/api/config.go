package api

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"

	deadlinedomain "github.com/Apurer/canteen-orders/internal/domains/deadlines/domain"
	orderapp "github.com/Apurer/canteen-orders/internal/domains/orders/application"
)

// Notifier backends selectable with NOTIFIER.
const (
	NotifierLog      = "log"
	NotifierAMQP     = "amqp"
	NotifierTemporal = "temporal"
)

// Config carries environment-driven settings shared by the canteen processes.
type Config struct {
	Port               string
	PostgresDSN        string
	PostgresMaxConns   int
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	RabbitMQURL        string
	TemporalAddress    string
	TemporalNamespace  string
	TemporalDisabled   bool
	Notifier           string
	AdminChatIDs       []int64
	DefaultCutoff      *deadlinedomain.ClockTime
	Location           *time.Location
	Limits             orderapp.Limits
	CartTTL            time.Duration
	SessionPurgePeriod time.Duration
}

// LoadConfig reads a local .env when present, then environment variables,
// applies defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("read .env: %w", err)
	}
	cfg := Config{
		Port:              envDefault("PORT", "8080"),
		PostgresDSN:       strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		RedisAddr:         strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		RabbitMQURL:       strings.TrimSpace(os.Getenv("RABBITMQ_URL")),
		TemporalAddress:   envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace: envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:  isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		Notifier:          strings.ToLower(envDefault("NOTIFIER", NotifierLog)),
		Limits:            orderapp.DefaultLimits,
		Location:          time.Local,
	}

	var err error
	if cfg.PostgresMaxConns, err = envInt("POSTGRES_MAX_OPEN_CONNS", 0); err != nil {
		return Config{}, err
	}
	if raw := strings.TrimSpace(os.Getenv("REDIS_DB")); raw != "" {
		if cfg.RedisDB, err = strconv.Atoi(raw); err != nil || cfg.RedisDB < 0 {
			return Config{}, errors.New("REDIS_DB must be a non-negative integer")
		}
	}
	if cfg.Limits.MaxLineQuantity, err = envInt("MAX_LINE_QUANTITY", orderapp.DefaultLimits.MaxLineQuantity); err != nil {
		return Config{}, err
	}
	if cfg.Limits.MaxDaysAhead, err = envInt("MAX_DAYS_AHEAD", orderapp.DefaultLimits.MaxDaysAhead); err != nil {
		return Config{}, err
	}
	ttlHours, err := envInt("CART_TTL_HOURS", 24)
	if err != nil {
		return Config{}, err
	}
	cfg.CartTTL = time.Duration(ttlHours) * time.Hour
	purgeMinutes, err := envInt("SESSION_PURGE_INTERVAL_MINUTES", 60)
	if err != nil {
		return Config{}, err
	}
	cfg.SessionPurgePeriod = time.Duration(purgeMinutes) * time.Minute

	if raw := strings.TrimSpace(os.Getenv("ORDER_DEADLINE")); raw != "" {
		clock, err := deadlinedomain.ParseClock(raw)
		if err != nil {
			return Config{}, fmt.Errorf("ORDER_DEADLINE: %w", err)
		}
		cfg.DefaultCutoff = &clock
	}
	if raw := strings.TrimSpace(os.Getenv("DEADLINE_TIMEZONE")); raw != "" {
		loc, err := time.LoadLocation(raw)
		if err != nil {
			return Config{}, fmt.Errorf("DEADLINE_TIMEZONE: %w", err)
		}
		cfg.Location = loc
	}
	if cfg.AdminChatIDs, err = parseIDs(os.Getenv("ADMIN_CHAT_IDS")); err != nil {
		return Config{}, err
	}
	switch cfg.Notifier {
	case NotifierLog, NotifierTemporal:
	case NotifierAMQP:
		if cfg.RabbitMQURL == "" {
			return Config{}, errors.New("NOTIFIER=amqp requires RABBITMQ_URL")
		}
	default:
		return Config{}, fmt.Errorf("NOTIFIER must be one of log, amqp, temporal; got %q", cfg.Notifier)
	}
	return cfg, nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

// envInt reads a positive integer; an unset key yields fallback.
func envInt(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", key)
	}
	return n, nil
}

func parseIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("ADMIN_CHAT_IDS: %q is not a chat id", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
