package config

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettlementConfigRereadsEnvironment(t *testing.T) {
	t.Setenv("REFERRAL_RATE", "0.05")
	t.Setenv("MIN_TRANSACTION_AMOUNT", "10")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	got := cfg.SettlementConfig(context.Background())
	assert.True(t, got.ReferralRate.Equal(decimal.RequireFromString("0.05")))
	assert.True(t, got.MinTransactionAmount.Equal(decimal.NewFromInt(10)))

	// Operators adjust the knobs while the server keeps running.
	t.Setenv("REFERRAL_RATE", "0.10")
	t.Setenv("MIN_TRANSACTION_AMOUNT", "25")
	t.Setenv("RATE_TIERS", "50:4,500:6")

	got = cfg.SettlementConfig(context.Background())
	assert.True(t, got.ReferralRate.Equal(decimal.RequireFromString("0.10")))
	assert.True(t, got.MinTransactionAmount.Equal(decimal.NewFromInt(25)))
	require.Len(t, got.RateTable, 2)
	assert.True(t, got.RateTable[0].DailyRatePercent.Equal(decimal.NewFromInt(4)))
}

func TestSettlementConfigFallsBackToStartupValues(t *testing.T) {
	t.Setenv("REFERRAL_RATE", "0.05")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	t.Setenv("REFERRAL_RATE", "not-a-rate")
	t.Setenv("MIN_TRANSACTION_AMOUNT", "-5")
	t.Setenv("DEFAULT_WINDOW_DAYS", "0")

	got := cfg.SettlementConfig(context.Background())
	assert.True(t, got.ReferralRate.Equal(cfg.ReferralRate))
	assert.True(t, got.MinTransactionAmount.Equal(cfg.MinTransactionAmount))
	assert.Equal(t, cfg.DefaultWindowDays, got.DefaultWindowDays)
}
