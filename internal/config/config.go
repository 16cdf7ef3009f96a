package config

import (
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config is the process-wide configuration, loaded once at startup and passed
// to components explicitly. Business logic never reads ambient state.
type Config struct {
	Port     string
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Paystack PaystackConfig
	Savings  SavingsConfig
	Billing  BillingConfig
}

type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	MigrationsPath  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	SecretKey   string
	ExpiryHours int
}

type PaystackConfig struct {
	SecretKey string
	BaseURL   string
	Timeout   time.Duration
}

// SavingsConfig carries the deposit floor and the fixed annual interest rate.
// Quarterly accrual uses AnnualInterestRate / 4.
type SavingsConfig struct {
	MinimumDeposit     decimal.Decimal
	AnnualInterestRate decimal.Decimal
}

// BillingConfig maps paid plans to their charge amounts in major units.
type BillingConfig struct {
	MonthlyAmount decimal.Decimal
	AnnualAmount  decimal.Decimal
}

// Load reads .env plus environment variables and materializes the Config.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Config file not found, using environment and defaults: %v", err)
	}

	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.name", "DATABASE_NAME")
	viper.BindEnv("database.ssl_mode", "DATABASE_SSL_MODE")
	viper.BindEnv("database.migrations_path", "DATABASE_MIGRATIONS_PATH")

	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")

	viper.BindEnv("jwt.secret_key", "JWT_SECRET_KEY")
	viper.BindEnv("jwt.expiry_hours", "JWT_EXPIRY_HOURS")

	viper.BindEnv("paystack.secret_key", "PAYSTACK_SECRET_KEY")
	viper.BindEnv("paystack.base_url", "PAYSTACK_BASE_URL")

	viper.BindEnv("savings.minimum_deposit", "SAVINGS_MINIMUM_DEPOSIT")
	viper.BindEnv("savings.annual_interest_rate", "SAVINGS_ANNUAL_INTEREST_RATE")

	viper.BindEnv("billing.monthly_amount", "BILLING_MONTHLY_AMOUNT")
	viper.BindEnv("billing.annual_amount", "BILLING_ANNUAL_AMOUNT")

	viper.BindEnv("port", "PORT")

	setDefaults()

	minDeposit, err := decimal.NewFromString(viper.GetString("savings.minimum_deposit"))
	if err != nil {
		return nil, fmt.Errorf("invalid savings.minimum_deposit: %w", err)
	}
	annualRate, err := decimal.NewFromString(viper.GetString("savings.annual_interest_rate"))
	if err != nil {
		return nil, fmt.Errorf("invalid savings.annual_interest_rate: %w", err)
	}
	monthlyAmount, err := decimal.NewFromString(viper.GetString("billing.monthly_amount"))
	if err != nil {
		return nil, fmt.Errorf("invalid billing.monthly_amount: %w", err)
	}
	annualAmount, err := decimal.NewFromString(viper.GetString("billing.annual_amount"))
	if err != nil {
		return nil, fmt.Errorf("invalid billing.annual_amount: %w", err)
	}

	cfg := &Config{
		Port: viper.GetString("port"),
		Database: DatabaseConfig{
			Host:            viper.GetString("database.host"),
			Port:            viper.GetString("database.port"),
			User:            viper.GetString("database.user"),
			Password:        viper.GetString("database.password"),
			Name:            viper.GetString("database.name"),
			SSLMode:         viper.GetString("database.ssl_mode"),
			MaxOpenConns:    viper.GetInt("database.max_open_conns"),
			MaxIdleConns:    viper.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: viper.GetDuration("database.conn_max_lifetime"),
			MigrationsPath:  viper.GetString("database.migrations_path"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("redis.host"),
			Port:     viper.GetString("redis.port"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			SecretKey:   viper.GetString("jwt.secret_key"),
			ExpiryHours: viper.GetInt("jwt.expiry_hours"),
		},
		Paystack: PaystackConfig{
			SecretKey: viper.GetString("paystack.secret_key"),
			BaseURL:   viper.GetString("paystack.base_url"),
			Timeout:   viper.GetDuration("paystack.timeout"),
		},
		Savings: SavingsConfig{
			MinimumDeposit:     minDeposit,
			AnnualInterestRate: annualRate,
		},
		Billing: BillingConfig{
			MonthlyAmount: monthlyAmount,
			AnnualAmount:  annualAmount,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that have no sane default.
func (c *Config) Validate() error {
	if c.JWT.SecretKey == "" {
		return fmt.Errorf("jwt.secret_key is required")
	}
	if c.Paystack.SecretKey == "" {
		return fmt.Errorf("paystack.secret_key is required")
	}
	if c.Savings.MinimumDeposit.IsNegative() {
		return fmt.Errorf("savings.minimum_deposit must not be negative")
	}
	if !c.Savings.AnnualInterestRate.IsPositive() {
		return fmt.Errorf("savings.annual_interest_rate must be positive")
	}
	return nil
}

func setDefaults() {
	viper.SetDefault("port", "8080")

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", "5432")
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "password")
	viper.SetDefault("database.name", "taxaware")
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", time.Minute*5)
	viper.SetDefault("database.migrations_path", "./migrations")

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", "6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("jwt.expiry_hours", 24)

	viper.SetDefault("paystack.base_url", "https://api.paystack.co")
	viper.SetDefault("paystack.timeout", 10*time.Second)

	viper.SetDefault("savings.minimum_deposit", "1000")
	viper.SetDefault("savings.annual_interest_rate", "0.10")

	viper.SetDefault("billing.monthly_amount", "1500")
	viper.SetDefault("billing.annual_amount", "15000")
}
