package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config is the whole application's settings.
type Config struct {
	Port  string // server port (8080)
	GoEnv string // dev/prod

	DatabaseURL      string // takes precedence over POSTGRES_*
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     int
	PostgresSSLMode  string

	JWTSecret string

	PaystackSecretKey   string
	PaystackBaseURL     string
	PaystackCallbackURL string
	PaystackCurrency    string
	GatewayTimeout      time.Duration
	// amount due -> processor currency, before the x100 minor unit step
	ConversionFactor decimal.Decimal

	ShippingRatePerUnit decimal.Decimal
	TaxRatePercent      decimal.Decimal
	TaxIncludesShipping bool

	CheckoutSessionTTL time.Duration
	VerifyStuckAfter   time.Duration
	ReconcileInterval  time.Duration

	AppEmail     string // sender
	CompanyEmail string // operator inbox
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string

	KafkaBrokers   []string // empty disables the outbox relay
	OutboxInterval time.Duration
	OutboxBatch    int
}

// Load reads .env (if any), the process environment and an optional YAML
// file named by CONFIG_FILE.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	if path := v.GetString("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("GO_ENV", "dev")
	v.SetDefault("POSTGRES_HOST", "localhost")
	v.SetDefault("POSTGRES_PORT", 5432)
	v.SetDefault("POSTGRES_USER", "postgres")
	v.SetDefault("POSTGRES_PASSWORD", "postgres")
	v.SetDefault("POSTGRES_DB", "storefront")
	v.SetDefault("POSTGRES_SSLMODE", "disable")
	v.SetDefault("PAYSTACK_BASE_URL", "https://api.paystack.co")
	v.SetDefault("PAYSTACK_CURRENCY", "NGN")
	v.SetDefault("GATEWAY_TIMEOUT", "15s")
	v.SetDefault("CURRENCY_CONVERSION_FACTOR", "1700")
	v.SetDefault("SHIPPING_RATE_PER_UNIT", "3")
	v.SetDefault("TAX_RATE_PERCENT", "10")
	v.SetDefault("TAX_INCLUDES_SHIPPING", true)
	v.SetDefault("CHECKOUT_SESSION_TTL", "24h")
	v.SetDefault("VERIFY_STUCK_AFTER", "10m")
	v.SetDefault("RECONCILE_INTERVAL", "5m")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("OUTBOX_INTERVAL", "2s")
	v.SetDefault("OUTBOX_BATCH", 100)
}

func fromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		Port:  v.GetString("PORT"),
		GoEnv: v.GetString("GO_ENV"),

		DatabaseURL:      v.GetString("DATABASE_URL"),
		PostgresUser:     v.GetString("POSTGRES_USER"),
		PostgresPassword: v.GetString("POSTGRES_PASSWORD"),
		PostgresDB:       v.GetString("POSTGRES_DB"),
		PostgresHost:     v.GetString("POSTGRES_HOST"),
		PostgresPort:     v.GetInt("POSTGRES_PORT"),
		PostgresSSLMode:  v.GetString("POSTGRES_SSLMODE"),

		JWTSecret: v.GetString("JWT_SECRET"),

		PaystackSecretKey:   v.GetString("PAYSTACK_SECRET_KEY"),
		PaystackBaseURL:     strings.TrimRight(v.GetString("PAYSTACK_BASE_URL"), "/"),
		PaystackCallbackURL: v.GetString("PAYSTACK_CALLBACK_URL"),
		PaystackCurrency:    strings.ToUpper(strings.TrimSpace(v.GetString("PAYSTACK_CURRENCY"))),
		GatewayTimeout:      v.GetDuration("GATEWAY_TIMEOUT"),

		TaxIncludesShipping: v.GetBool("TAX_INCLUDES_SHIPPING"),

		CheckoutSessionTTL: v.GetDuration("CHECKOUT_SESSION_TTL"),
		VerifyStuckAfter:   v.GetDuration("VERIFY_STUCK_AFTER"),
		ReconcileInterval:  v.GetDuration("RECONCILE_INTERVAL"),

		AppEmail:     v.GetString("APP_EMAIL"),
		CompanyEmail: v.GetString("COMPANY_EMAIL"),
		SMTPHost:     v.GetString("SMTP_HOST"),
		SMTPPort:     v.GetInt("SMTP_PORT"),
		SMTPUser:     v.GetString("SMTP_USER"),
		SMTPPassword: v.GetString("SMTP_PASSWORD"),

		KafkaBrokers:   splitCSV(v.GetString("KAFKA_BROKERS")),
		OutboxInterval: v.GetDuration("OUTBOX_INTERVAL"),
		OutboxBatch:    v.GetInt("OUTBOX_BATCH"),
	}

	var err error
	if cfg.ConversionFactor, err = mustDecimal(v, "CURRENCY_CONVERSION_FACTOR"); err != nil {
		return Config{}, err
	}
	if cfg.ShippingRatePerUnit, err = mustDecimal(v, "SHIPPING_RATE_PER_UNIT"); err != nil {
		return Config{}, err
	}
	if cfg.TaxRatePercent, err = mustDecimal(v, "TAX_RATE_PERCENT"); err != nil {
		return Config{}, err
	}

	// required
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.PaystackSecretKey == "" {
		return Config{}, fmt.Errorf("PAYSTACK_SECRET_KEY is required")
	}
	if cfg.AppEmail == "" {
		return Config{}, fmt.Errorf("APP_EMAIL is required")
	}
	if cfg.CompanyEmail == "" {
		return Config{}, fmt.Errorf("COMPANY_EMAIL is required")
	}
	if !cfg.ConversionFactor.IsPositive() {
		return Config{}, fmt.Errorf("CURRENCY_CONVERSION_FACTOR must be positive")
	}
	if cfg.GatewayTimeout <= 0 {
		return Config{}, fmt.Errorf("GATEWAY_TIMEOUT must be a positive duration")
	}
	if cfg.CheckoutSessionTTL <= 0 {
		return Config{}, fmt.Errorf("CHECKOUT_SESSION_TTL must be a positive duration")
	}

	return cfg, nil
}

// DSN for gorm's postgres driver.
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresSSLMode,
	)
}

func (c Config) IsProd() bool {
	return c.GoEnv == "prod"
}

func mustDecimal(v *viper.Viper, key string) (decimal.Decimal, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return decimal.Zero, fmt.Errorf("%s is required", key)
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s must be number: %w", key, err)
	}
	return d, nil
}

func splitCSV(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
