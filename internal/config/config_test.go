package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestLoad_DefaultsWithSecrets(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "test-secret")
	t.Setenv("PAYSTACK_SECRET_KEY", "sk_test_abc")

	cfg, err := Load()
	assert.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, "./migrations", cfg.Database.MigrationsPath)
	assert.Equal(t, "6379", cfg.Redis.Port)
	assert.Equal(t, 24, cfg.JWT.ExpiryHours)
	assert.Equal(t, "https://api.paystack.co", cfg.Paystack.BaseURL)

	assert.True(t, cfg.Savings.MinimumDeposit.Equal(decimal.RequireFromString("1000")))
	assert.True(t, cfg.Savings.AnnualInterestRate.Equal(decimal.RequireFromString("0.10")))
	assert.True(t, cfg.Billing.MonthlyAmount.Equal(decimal.RequireFromString("1500")))
	assert.True(t, cfg.Billing.AnnualAmount.Equal(decimal.RequireFromString("15000")))
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "test-secret")
	t.Setenv("PAYSTACK_SECRET_KEY", "sk_test_abc")
	t.Setenv("DATABASE_HOST", "db.internal")
	t.Setenv("SAVINGS_MINIMUM_DEPOSIT", "2500")
	t.Setenv("PORT", "9090")

	cfg, err := Load()
	assert.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.True(t, cfg.Savings.MinimumDeposit.Equal(decimal.RequireFromString("2500")))
}

func TestLoad_InvalidDecimal(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "test-secret")
	t.Setenv("PAYSTACK_SECRET_KEY", "sk_test_abc")
	t.Setenv("SAVINGS_MINIMUM_DEPOSIT", "not-a-number")

	_, err := Load()
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	base := func() *Config {
		return &Config{
			JWT:      JWTConfig{SecretKey: "secret"},
			Paystack: PaystackConfig{SecretKey: "sk_test"},
			Savings: SavingsConfig{
				MinimumDeposit:     decimal.RequireFromString("1000"),
				AnnualInterestRate: decimal.RequireFromString("0.10"),
			},
		}
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, base().Validate())
	})

	t.Run("missing jwt secret", func(t *testing.T) {
		cfg := base()
		cfg.JWT.SecretKey = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing paystack secret", func(t *testing.T) {
		cfg := base()
		cfg.Paystack.SecretKey = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("negative deposit floor", func(t *testing.T) {
		cfg := base()
		cfg.Savings.MinimumDeposit = decimal.RequireFromString("-1")
		assert.Error(t, cfg.Validate())
	})

	t.Run("zero interest rate", func(t *testing.T) {
		cfg := base()
		cfg.Savings.AnnualInterestRate = decimal.Zero
		assert.Error(t, cfg.Validate())
	})
}
