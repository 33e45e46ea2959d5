package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

// EnvPrefix namespaces every environment variable the service reads.
const EnvPrefix = "DAWAT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App        AppConfig
	DB         DBConfig
	Redis      RedisConfig
	Stripe     StripeConfig
	Cart       CartConfig
	Checkout   CheckoutConfig
	Validation ValidationConfig
	Sheets     SheetsConfig
	Email      EmailConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"DAWAT_APP_ENV" required:"true"`
	Port         string `envconfig:"DAWAT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"DAWAT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"DAWAT_LOG_WARN_STACK" default:"false"`

	ExtraCORSOrigins []string `envconfig:"DAWAT_APP_EXTRA_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	Driver string `envconfig:"DAWAT_DB_DRIVER" default:"sqlite"`
	DSN    string `envconfig:"DAWAT_DB_DSN" default:"file:dawat.db"`

	MaxOpenConns    int           `envconfig:"DAWAT_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"DAWAT_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"DAWAT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"DAWAT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"DAWAT_REDIS_URL" required:"true"`
	PoolSize     int           `envconfig:"DAWAT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DAWAT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DAWAT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DAWAT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"DAWAT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type StripeConfig struct {
	APIKey string `envconfig:"DAWAT_STRIPE_API_KEY"`
	Env    string `envconfig:"DAWAT_STRIPE_ENV" default:"test"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type CartConfig struct {
	FreeDeliveryThreshold decimal.Decimal `envconfig:"DAWAT_CART_FREE_DELIVERY_THRESHOLD" default:"169.00"`
	DeliveryFee           decimal.Decimal `envconfig:"DAWAT_CART_DELIVERY_FEE" default:"15.00"`
	SessionTTL            time.Duration   `envconfig:"DAWAT_CART_SESSION_TTL" default:"168h"`
}

type CheckoutConfig struct {
	SessionTTL      time.Duration `envconfig:"DAWAT_CHECKOUT_SESSION_TTL" default:"1h"`
	ConfirmGuardTTL time.Duration `envconfig:"DAWAT_CHECKOUT_CONFIRM_GUARD_TTL" default:"2m"`
	Currency        string        `envconfig:"DAWAT_CHECKOUT_CURRENCY" default:"aud"`
}

// ValidationConfig carries the delivery-area rule. The postcode prefix is a
// business constant, not a format rule, so it stays configurable.
type ValidationConfig struct {
	PostcodePrefix string `envconfig:"DAWAT_VALIDATION_POSTCODE_PREFIX" default:"3"`
}

type SheetsConfig struct {
	WebAppURL string        `envconfig:"DAWAT_SHEETS_WEB_APP_URL"`
	Timeout   time.Duration `envconfig:"DAWAT_SHEETS_TIMEOUT" default:"10s"`
	Timezone  string        `envconfig:"DAWAT_SHEETS_TIMEZONE" default:"Australia/Melbourne"`
}

type EmailConfig struct {
	BaseURL    string        `envconfig:"DAWAT_EMAIL_BASE_URL" default:"https://api.emailjs.com/api/v1.0/email/send"`
	ServiceID  string        `envconfig:"DAWAT_EMAIL_SERVICE_ID"`
	TemplateID string        `envconfig:"DAWAT_EMAIL_TEMPLATE_ID"`
	PublicKey  string        `envconfig:"DAWAT_EMAIL_PUBLIC_KEY"`
	OwnerName  string        `envconfig:"DAWAT_EMAIL_OWNER_NAME" default:"Dawat by Taskerway"`
	OwnerEmail string        `envconfig:"DAWAT_EMAIL_OWNER_EMAIL"`
	Timeout    time.Duration `envconfig:"DAWAT_EMAIL_TIMEOUT" default:"10s"`
}
