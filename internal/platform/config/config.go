package config

import (
	"context"
	"log"
	"time"

	"github.com/finovest/invest_ledger_app/internal/core/domain"
	portssvc "github.com/finovest/invest_ledger_app/internal/core/ports/services"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL       string
	Port              string
	IsProduction      bool
	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string
	RateLimit         string

	// Settlement parameters.
	ReferralRate         decimal.Decimal
	RateTable            domain.RateTable
	DefaultWindowDays    int
	MinTransactionAmount decimal.Decimal
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_EXPIRY_DURATION", "1h")
	viper.SetDefault("JWT_ISSUER", "invest-ledger-app")
	viper.SetDefault("RATE_LIMIT", "100-M")
	viper.SetDefault("REFERRAL_RATE", "0.05")
	viper.SetDefault("DEFAULT_WINDOW_DAYS", domain.AccrualCapDays)
	viper.SetDefault("MIN_TRANSACTION_AMOUNT", "10")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.RateLimit = viper.GetString("RATE_LIMIT")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")

	jwtExpiryStr := viper.GetString("JWT_EXPIRY_DURATION")
	jwtExpiryDuration, err := time.ParseDuration(jwtExpiryStr)
	if err != nil {
		jwtExpiryDuration = time.Hour
		log.Printf("Warning: Invalid value for JWT_EXPIRY_DURATION ('%s'). Defaulting to %s.\n", jwtExpiryStr, jwtExpiryDuration.String())
	}
	cfg.JWTExpiryDuration = jwtExpiryDuration

	referralRateStr := viper.GetString("REFERRAL_RATE")
	referralRate, err := decimal.NewFromString(referralRateStr)
	if err != nil || referralRate.IsNegative() || referralRate.GreaterThan(decimal.NewFromInt(1)) {
		referralRate = decimal.RequireFromString("0.05")
		log.Printf("Warning: Invalid value for REFERRAL_RATE ('%s'). Defaulting to %s.\n", referralRateStr, referralRate.String())
	}
	cfg.ReferralRate = referralRate

	cfg.DefaultWindowDays = viper.GetInt("DEFAULT_WINDOW_DAYS")
	if cfg.DefaultWindowDays <= 0 {
		cfg.DefaultWindowDays = domain.AccrualCapDays
	}

	minAmountStr := viper.GetString("MIN_TRANSACTION_AMOUNT")
	minAmount, err := decimal.NewFromString(minAmountStr)
	if err != nil || minAmount.IsNegative() {
		minAmount = decimal.NewFromInt(10)
		log.Printf("Warning: Invalid value for MIN_TRANSACTION_AMOUNT ('%s'). Defaulting to %s.\n", minAmountStr, minAmount.String())
	}
	cfg.MinTransactionAmount = minAmount

	cfg.RateTable = loadRateTable()

	return cfg, nil
}

// loadRateTable parses RATE_TIERS ("threshold:rate,threshold:rate,...") and
// falls back to the standard schedule when unset or malformed.
func loadRateTable() domain.RateTable {
	viper.SetDefault("RATE_TIERS", "")
	raw := viper.GetString("RATE_TIERS")
	if raw == "" {
		return domain.DefaultRateTable()
	}
	table, err := ParseRateTiers(raw)
	if err != nil {
		log.Printf("Warning: Invalid value for RATE_TIERS ('%s'): %v. Using default schedule.\n", raw, err)
		return domain.DefaultRateTable()
	}
	return table
}

var _ portssvc.ConfigSource = (*Config)(nil)

// SettlementConfig implements portssvc.ConfigSource. The settlement knobs are
// re-read from the environment on every call, so operators can adjust rates
// without restarting the server. A value that is unset or fails to parse falls
// back to the one validated at startup.
func (c *Config) SettlementConfig(ctx context.Context) portssvc.SettlementConfig {
	out := portssvc.SettlementConfig{
		ReferralRate:         c.ReferralRate,
		RateTable:            c.RateTable,
		DefaultWindowDays:    c.DefaultWindowDays,
		MinTransactionAmount: c.MinTransactionAmount,
	}

	if rate, err := decimal.NewFromString(viper.GetString("REFERRAL_RATE")); err == nil && !rate.IsNegative() && !rate.GreaterThan(decimal.NewFromInt(1)) {
		out.ReferralRate = rate
	}
	if days := viper.GetInt("DEFAULT_WINDOW_DAYS"); days > 0 {
		out.DefaultWindowDays = days
	}
	if min, err := decimal.NewFromString(viper.GetString("MIN_TRANSACTION_AMOUNT")); err == nil && !min.IsNegative() {
		out.MinTransactionAmount = min
	}
	if raw := viper.GetString("RATE_TIERS"); raw != "" {
		if table, err := ParseRateTiers(raw); err == nil {
			out.RateTable = table
		}
	}
	return out
}
