package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TIMEZONE", "UTC")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8081", cfg.HTTPAddr)
	assert.Equal(t, []string{"kafka:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "UTC", cfg.Location.String())
	assert.Equal(t, 30, cfg.DashboardWindowDays)
	assert.Equal(t, "500", cfg.Billing.FreeDeliveryThreshold.String())
	assert.Equal(t, "50", cfg.Billing.DeliveryFee.String())
	assert.Equal(t, "0.05", cfg.Billing.TaxRate.String())
	assert.Contains(t, cfg.Promos, "WELCOME20")
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("FREE_DELIVERY_THRESHOLD", "799.50")
	t.Setenv("TAX_RATE", "0.18")
	t.Setenv("PROMO_CODES", "FEAST:15")
	t.Setenv("TRACKER_WORKERS", "3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "799.5", cfg.Billing.FreeDeliveryThreshold.String())
	assert.Equal(t, "0.18", cfg.Billing.TaxRate.String())
	assert.Len(t, cfg.Promos, 1)
	assert.Equal(t, 3, cfg.TrackerWorkers)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"TIMEZONE":        "Mars/Olympus_Mons",
		"DELIVERY_FEE":    "fifty",
		"TAX_RATE":        "-0.05",
		"TRACKER_WORKERS": "many",
		"PROMO_CODES":     "BROKEN",
		"RATE_RPS":        "fast",
	}
	for key, val := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv("TIMEZONE", "UTC")
			t.Setenv(key, val)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
