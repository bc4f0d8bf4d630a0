package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fjod/go_foodcourt/internal/cart"
	"github.com/fjod/go_foodcourt/internal/checkout"
	"github.com/fjod/go_foodcourt/internal/order"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	StoreMemory   = "memory"
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
)

type Config struct {
	HTTPPort string
	GRPCPort string

	CatalogStore  string
	MongoURI      string
	MongoDBName   string
	RedisAddr     string
	RedisPassword string

	OrderStore string
	Postgres   order.Credentials

	KafkaBrokers     []string
	OrderEventsTopic string

	Pricing     checkout.PricingConfig
	PaymentMode string
	CartPolicy  cart.Policy

	CartSessionTTL  time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	PaymentTimeout  time.Duration
	ProbeInterval   time.Duration

	LogLevel string
}

// Load reads the configuration from the environment, after applying an
// optional .env file. Every invalid value is reported.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	p := &parser{}
	cfg := &Config{
		HTTPPort: getEnv("HTTP_PORT", "8080"),
		GRPCPort: getEnv("GRPC_PORT", "50051"),

		CatalogStore:  p.oneOf("CATALOG_STORE", StoreMongo, StoreMongo, StoreMemory),
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:   getEnv("MONGO_DB_NAME", "foodcourt"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		OrderStore: p.oneOf("ORDER_STORE", StorePostgres, StorePostgres, StoreMemory),
		Postgres: order.Credentials{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              p.integer("DB_PORT", 5432),
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", "postgres"),
			DBName:            getEnv("DB_NAME", "foodcourt"),
			MigrationsDirPath: getEnv("MIGRATIONS_PATH", "./internal/order/migrations"),
		},

		KafkaBrokers:     splitList(os.Getenv("KAFKA_BROKERS")),
		OrderEventsTopic: getEnv("ORDER_EVENTS_TOPIC", "order-events"),

		Pricing: checkout.PricingConfig{
			TaxRate:     p.amount("TAX_RATE", "0.05"),
			DeliveryFee: p.amount("DELIVERY_FEE", "0"),
			Currency:    getEnv("CURRENCY", "INR"),
		},
		PaymentMode: p.oneOf("PAYMENT_MODE", "random", "random", "approve", "decline"),
		CartPolicy:  p.policy("CART_POLICY"),

		CartSessionTTL:  p.duration("CART_SESSION_TTL", 2*time.Hour),
		RequestTimeout:  p.duration("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout: p.duration("SHUTDOWN_TIMEOUT", 10*time.Second),
		PaymentTimeout:  p.duration("PAYMENT_TIMEOUT", 5*time.Second),
		ProbeInterval:   p.duration("PROBE_INTERVAL", 10*time.Second),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if cfg.Pricing.TaxRate.IsNegative() {
		p.fail("TAX_RATE", "must not be negative")
	}
	if cfg.Pricing.DeliveryFee.IsNegative() {
		p.fail("DELIVERY_FEE", "must not be negative")
	}

	if err := errors.Join(p.errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parser collects errors so one run reports every bad key.
type parser struct {
	errs []error
}

func (p *parser) fail(key, msg string) {
	p.errs = append(p.errs, fmt.Errorf("invalid %s: %s", key, msg))
}

func (p *parser) integer(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.fail(key, err.Error())
		return def
	}
	return v
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v <= 0 {
		p.fail(key, "must be a positive duration like 30s")
		return def
	}
	return v
}

func (p *parser) amount(key, def string) decimal.Decimal {
	v, err := decimal.NewFromString(getEnv(key, def))
	if err != nil {
		p.fail(key, err.Error())
		return decimal.Zero
	}
	return v
}

func (p *parser) oneOf(key, def string, allowed ...string) string {
	v := strings.ToLower(getEnv(key, def))
	for _, a := range allowed {
		if v == a {
			return v
		}
	}
	p.fail(key, fmt.Sprintf("must be one of %s", strings.Join(allowed, ", ")))
	return def
}

func (p *parser) policy(key string) cart.Policy {
	policy, ok := cart.PolicyByName(os.Getenv(key))
	if !ok {
		p.fail(key, "must be multi or single")
		return cart.AllowAll{}
	}
	return policy
}
