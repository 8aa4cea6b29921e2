package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	App     AppConfig
	Server  ServerConfig
	Storage StorageConfig
	Pricing PricingConfig
	Catalog CatalogConfig
	Kafka   KafkaConfig
}

type AppConfig struct {
	Name    string
	Env     string
	LogFile string
}

type ServerConfig struct {
	Host string
	Port int
}

// StorageConfig points at the two whole-object snapshot files. FeedLedgerPath
// is the optional replica ledger kept by the order feed consumer.
type StorageConfig struct {
	CartPath       string
	LedgerPath     string
	FeedLedgerPath string
}

type PricingConfig struct {
	TaxRate          decimal.Decimal
	FreeShippingOver decimal.Decimal
	ShippingFee      decimal.Decimal
	MaxLineQuantity  int
}

// CatalogConfig configures the optional remote product feed. An empty FeedURL
// means the built-in sample catalog is used.
type CatalogConfig struct {
	FeedURL  string
	PageSize int
	Timeout  time.Duration
}

// KafkaConfig is optional; with no brokers order events are not published.
type KafkaConfig struct {
	Brokers       []string
	OrderTopic    string
	ConsumerGroup string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		App: AppConfig{
			Name:    getEnv("APP_NAME", "shopcart"),
			Env:     getEnv("APP_ENV", "local"),
			LogFile: getEnv("LOG_FILE", ""),
		},
		Server: ServerConfig{
			Host: getEnv("HTTP_HOST", "0.0.0.0"),
			Port: getEnvAsInt("HTTP_PORT", 8030),
		},
		Storage: StorageConfig{
			CartPath:       getEnv("CART_SNAPSHOT_PATH", "cart_data.avro"),
			LedgerPath:     getEnv("LEDGER_SNAPSHOT_PATH", "orders.avro"),
			FeedLedgerPath: getEnv("ORDERFEED_LEDGER_PATH", ""),
		},
		Pricing: PricingConfig{
			TaxRate:          getEnvAsDecimal("PRICING_TAX_RATE", decimal.RequireFromString("0.18")),
			FreeShippingOver: getEnvAsDecimal("PRICING_FREE_SHIPPING_OVER", decimal.NewFromInt(2000)),
			ShippingFee:      getEnvAsDecimal("PRICING_SHIPPING_FEE", decimal.NewFromInt(99)),
			MaxLineQuantity:  getEnvAsInt("CART_MAX_LINE_QTY", 999),
		},
		Catalog: CatalogConfig{
			FeedURL:  getEnv("CATALOG_FEED_URL", ""),
			PageSize: getEnvAsInt("CATALOG_PAGE_SIZE", 100),
			Timeout:  time.Duration(getEnvAsInt("CATALOG_TIMEOUT_MS", 10000)) * time.Millisecond,
		},
		Kafka: KafkaConfig{
			Brokers:       splitAndTrim(getEnv("KAFKA_BOOTSTRAP_SERVERS", "")),
			OrderTopic:    getEnv("KAFKA_ORDER_TOPIC", "orders.placed"),
			ConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "shopcart-orderfeed"),
		},
	}

	return cfg, cfg.validate()
}

func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Enabled reports whether order events should be published.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0 && k.OrderTopic != ""
}

/* ================= helpers ================= */

func (c *Config) validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("HTTP_PORT is invalid")
	}
	if c.Storage.CartPath == "" || c.Storage.LedgerPath == "" {
		return fmt.Errorf("snapshot paths must not be empty")
	}
	if c.Storage.CartPath == c.Storage.LedgerPath {
		return fmt.Errorf("cart and ledger snapshots must use different files")
	}
	if p := c.Storage.FeedLedgerPath; p != "" && (p == c.Storage.LedgerPath || p == c.Storage.CartPath) {
		return fmt.Errorf("ORDERFEED_LEDGER_PATH must not reuse a snapshot file")
	}
	if c.Pricing.TaxRate.IsNegative() || c.Pricing.ShippingFee.IsNegative() || c.Pricing.FreeShippingOver.IsNegative() {
		return fmt.Errorf("pricing values must not be negative")
	}
	if c.Pricing.MaxLineQuantity < 1 || c.Pricing.MaxLineQuantity > math.MaxInt32 {
		return fmt.Errorf("CART_MAX_LINE_QTY must be between 1 and %d", math.MaxInt32)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if v, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvAsDecimal(key string, defaultVal decimal.Decimal) decimal.Decimal {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := decimal.NewFromString(strings.TrimSpace(v)); err == nil {
			return d
		}
	}
	return defaultVal
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if val := strings.TrimSpace(p); val != "" {
			out = append(out, val)
		}
	}
	return out
}
