package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerConfig_Address(t *testing.T) {
	tests := []struct {
		name   string
		server ServerConfig
		want   string
	}{
		{
			name:   "localhost default port",
			server: ServerConfig{Host: "localhost", Port: 8030},
			want:   "localhost:8030",
		},
		{
			name:   "bind all interfaces",
			server: ServerConfig{Host: "0.0.0.0", Port: 8080},
			want:   "0.0.0.0:8080",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.server.Address())
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"HTTP_PORT", "CART_SNAPSHOT_PATH", "LEDGER_SNAPSHOT_PATH", "PRICING_TAX_RATE",
		"PRICING_FREE_SHIPPING_OVER", "PRICING_SHIPPING_FEE", "CART_MAX_LINE_QTY",
		"KAFKA_BOOTSTRAP_SERVERS",
	} {
		t.Setenv(key, "")
	}
	// t.Setenv cannot unset; empty values fall back through the parsers below.
	t.Setenv("HTTP_PORT", "8030")
	t.Setenv("CART_SNAPSHOT_PATH", "cart_data.avro")
	t.Setenv("LEDGER_SNAPSHOT_PATH", "orders.avro")
	t.Setenv("CART_MAX_LINE_QTY", "999")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, decimal.RequireFromString("0.18").Equal(cfg.Pricing.TaxRate))
	assert.True(t, decimal.NewFromInt(2000).Equal(cfg.Pricing.FreeShippingOver))
	assert.True(t, decimal.NewFromInt(99).Equal(cfg.Pricing.ShippingFee))
	assert.Equal(t, 999, cfg.Pricing.MaxLineQuantity)
	assert.False(t, cfg.Kafka.Enabled())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("CART_SNAPSHOT_PATH", "/tmp/c.avro")
	t.Setenv("LEDGER_SNAPSHOT_PATH", "/tmp/l.avro")
	t.Setenv("PRICING_TAX_RATE", "0.05")
	t.Setenv("CART_MAX_LINE_QTY", "10")
	t.Setenv("KAFKA_BOOTSTRAP_SERVERS", "k1:9092, k2:9092 ,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "/tmp/c.avro", cfg.Storage.CartPath)
	assert.True(t, decimal.RequireFromString("0.05").Equal(cfg.Pricing.TaxRate))
	assert.Equal(t, 10, cfg.Pricing.MaxLineQuantity)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Kafka.Enabled())
}

func TestLoad_SameSnapshotPathRejected(t *testing.T) {
	t.Setenv("HTTP_PORT", "8030")
	t.Setenv("CART_SNAPSHOT_PATH", "state.avro")
	t.Setenv("LEDGER_SNAPSHOT_PATH", "state.avro")
	t.Setenv("CART_MAX_LINE_QTY", "999")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_FeedLedgerMustNotReuseSnapshot(t *testing.T) {
	t.Setenv("HTTP_PORT", "8030")
	t.Setenv("CART_SNAPSHOT_PATH", "cart_data.avro")
	t.Setenv("LEDGER_SNAPSHOT_PATH", "orders.avro")
	t.Setenv("CART_MAX_LINE_QTY", "999")
	t.Setenv("ORDERFEED_LEDGER_PATH", "orders.avro")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("ORDERFEED_LEDGER_PATH", "orders_feed.avro")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "orders_feed.avro", cfg.Storage.FeedLedgerPath)
}

func TestLoad_MaxLineQuantityBounds(t *testing.T) {
	t.Setenv("HTTP_PORT", "8030")
	t.Setenv("CART_SNAPSHOT_PATH", "cart_data.avro")
	t.Setenv("LEDGER_SNAPSHOT_PATH", "orders.avro")
	t.Setenv("ORDERFEED_LEDGER_PATH", "")

	for _, v := range []string{"0", "-1", "3000000000"} {
		t.Run(v, func(t *testing.T) {
			t.Setenv("CART_MAX_LINE_QTY", v)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
