package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix scopes every environment variable read by Load.
	EnvPrefix = "storefront"

	AppEnvDev  = "development"
	AppEnvProd = "production"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Cart         CartConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Cart.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREFRONT_APP_ENV" default:"development"`
	Port         string `envconfig:"STOREFRONT_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"STOREFRONT_DB_DSN" default:"file:storefront.db?_fk=1"`
	Driver string `envconfig:"STOREFRONT_DB_DRIVER" default:"sqlite"`

	MaxOpenConns    int           `envconfig:"STOREFRONT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STOREFRONT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREFRONT_REDIS_URL"`
	Address      string        `envconfig:"STOREFRONT_REDIS_ADDRESS"`
	Password     string        `envconfig:"STOREFRONT_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREFRONT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREFRONT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOREFRONT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"STOREFRONT_REDIS_WRITE_TIMEOUT" default:"3s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"STOREFRONT_JWT_SECRET" default:"dev-only-secret"`
	Issuer            string `envconfig:"STOREFRONT_JWT_ISSUER" default:"storefront"`
	ExpirationMinutes int    `envconfig:"STOREFRONT_JWT_EXPIRATION_MINUTES" default:"60"`
}

func (j JWTConfig) AccessTokenTTL() time.Duration {
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKiB    uint32 `envconfig:"STOREFRONT_PASSWORD_ARGON_MEMORY_KIB" default:"65536"`
	ArgonTime         uint32 `envconfig:"STOREFRONT_PASSWORD_ARGON_TIME" default:"1"`
	ArgonParallelism  uint8  `envconfig:"STOREFRONT_PASSWORD_ARGON_PARALLELISM" default:"4"`
	ArgonSaltLength   uint32 `envconfig:"STOREFRONT_PASSWORD_ARGON_SALT_LENGTH" default:"16"`
	ArgonKeyLength    uint32 `envconfig:"STOREFRONT_PASSWORD_ARGON_KEY_LENGTH" default:"32"`
	MinPasswordLength int    `envconfig:"STOREFRONT_PASSWORD_MIN_LENGTH" default:"8"`
}

// CartConfig controls cart pricing and persistence behavior.
type CartConfig struct {
	TaxRate               float64       `envconfig:"STOREFRONT_CART_TAX_RATE" default:"0.10"`
	ShippingFlatFee       float64       `envconfig:"STOREFRONT_CART_SHIPPING_FLAT_FEE" default:"10.00"`
	FreeShippingThreshold float64       `envconfig:"STOREFRONT_CART_FREE_SHIPPING_THRESHOLD" default:"100.00"`
	Currency              string        `envconfig:"STOREFRONT_CART_CURRENCY" default:"USD"`
	QuantityPolicy        string        `envconfig:"STOREFRONT_CART_QUANTITY_POLICY" default:"clamp_to_stock"`
	PersistenceBackend    string        `envconfig:"STOREFRONT_CART_PERSISTENCE" default:"file"`
	FileDir               string        `envconfig:"STOREFRONT_CART_FILE_DIR" default:"./data/carts"`
	RedisTTL              time.Duration `envconfig:"STOREFRONT_CART_REDIS_TTL" default:"720h"`
}

func (c CartConfig) validate() error {
	if c.TaxRate < 0 || c.TaxRate >= 1 {
		return fmt.Errorf("cart tax rate must be in [0, 1): got %v", c.TaxRate)
	}
	if c.ShippingFlatFee < 0 {
		return fmt.Errorf("cart shipping flat fee must be non-negative: got %v", c.ShippingFlatFee)
	}
	if c.FreeShippingThreshold < 0 {
		return fmt.Errorf("cart free shipping threshold must be non-negative: got %v", c.FreeShippingThreshold)
	}
	switch c.PersistenceBackend {
	case "file", "redis", "memory":
	default:
		return fmt.Errorf("unknown cart persistence backend %q", c.PersistenceBackend)
	}
	switch c.QuantityPolicy {
	case "clamp_to_stock", "reject_exceeds_stock":
	default:
		return fmt.Errorf("unknown cart quantity policy %q", c.QuantityPolicy)
	}
	return nil
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"STOREFRONT_FEATURE_AUTO_MIGRATE" default:"true"`
	SeedCatalog bool `envconfig:"STOREFRONT_FEATURE_SEED_CATALOG" default:"false"`
}
