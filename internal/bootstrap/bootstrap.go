// Package bootstrap wires the cart service from configuration for the
// command-line programs.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"shopcart/internal/application/checkout"
	"shopcart/internal/config"
	"shopcart/internal/domain/catalog"
	"shopcart/internal/domain/pricing"
	"shopcart/internal/infrastructure/http/catalogfeed"
	kafkainfra "shopcart/internal/infrastructure/messaging/kafka"
	"shopcart/internal/infrastructure/persistence/file"
	"shopcart/pkg/logger"
	"shopcart/pkg/metrics"
)

// Catalog loads the remote feed when one is configured and falls back to the
// built-in products when it is not or when the feed fails.
func Catalog(ctx context.Context, cfg config.CatalogConfig, log logger.Logger) (*catalog.InMemory, error) {
	if cfg.FeedURL != "" {
		products, err := catalogfeed.NewClient(cfg, log).FetchProducts(ctx)
		if err == nil && len(products) > 0 {
			return catalog.NewInMemory(products)
		}
		log.Warn("Catalog feed unavailable, using built-in products",
			logger.String("url", cfg.FeedURL),
			logger.Error(err),
		)
	}
	return catalog.NewInMemory(catalog.DefaultProducts())
}

func Policy(cfg config.PricingConfig) pricing.Policy {
	return pricing.Policy{
		TaxRate:          cfg.TaxRate,
		FreeShippingOver: cfg.FreeShippingOver,
		ShippingFee:      cfg.ShippingFee,
	}
}

// App is a ready checkout service and the resources behind it.
type App struct {
	Service  *checkout.Service
	Registry *prometheus.Registry
	producer *kafkainfra.OrderProducer
}

// NewApp builds the service and restores both snapshots. Order events are
// published only when Kafka is configured.
func NewApp(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	cat, err := Catalog(ctx, cfg.Catalog, log)
	if err != nil {
		return nil, fmt.Errorf("build catalog: %w", err)
	}
	carts, err := file.NewCartRepository(cfg.Storage.CartPath)
	if err != nil {
		return nil, fmt.Errorf("cart repository: %w", err)
	}
	ledgers, err := file.NewLedgerRepository(cfg.Storage.LedgerPath)
	if err != nil {
		return nil, fmt.Errorf("ledger repository: %w", err)
	}

	app := &App{Registry: prometheus.NewRegistry()}
	opts := checkout.Options{
		Policy:          Policy(cfg.Pricing),
		MaxLineQuantity: cfg.Pricing.MaxLineQuantity,
		Logger:          log,
		Metrics:         metrics.NewCheckoutMetrics(app.Registry),
	}
	if cfg.Kafka.Enabled() {
		producer, err := kafkainfra.NewOrderProducer(cfg.Kafka, log)
		if err != nil {
			return nil, err
		}
		app.producer = producer
		opts.Publisher = producer
	}

	app.Service = checkout.NewService(cat, carts, ledgers, opts)
	if err := app.Service.Open(ctx); err != nil {
		log.Warn("Starting with empty state after snapshot load failure",
			logger.String("status", app.Service.Status()),
			logger.Error(err),
		)
	}
	return app, nil
}

func (a *App) Close(ctx context.Context) error {
	if a.producer != nil {
		return a.producer.Close(ctx)
	}
	return nil
}
