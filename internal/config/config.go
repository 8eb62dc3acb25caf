package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fjod/go_grocery/internal/cart"
)

const (
	CatalogSQLite = "sqlite"
	CatalogHTTP   = "http"

	devJWTSecret = "dev-secret-change-me"
)

type Config struct {
	ServiceName string
	AppEnv      string
	LogLevel    string

	HTTPPort int
	GRPCPort int

	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	ClientTimeout   time.Duration
	VendorTimeout   time.Duration
	SubmitTimeout   time.Duration
	NavigationDelay time.Duration

	JWTSecret string

	CatalogSource     string
	CatalogDBPath     string
	CatalogMigrations string
	CatalogURL        string
	OrdersURL         string
	// FavoritesURL empty disables the favorites routes.
	FavoritesURL string

	// Empty endpoints below switch the matching backend off.
	MongoURI      string
	MongoDB       string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CartCacheTTL  time.Duration

	PostgresHost       string
	PostgresPort       int
	PostgresUser       string
	PostgresPassword   string
	PostgresDB         string
	PostgresMigrations string

	KafkaBrokers []string
	KafkaGroupID string

	MixedVendorPolicy  cart.MixedVendorPolicy
	RequireCoordinates bool
}

func Load() (Config, error) {
	cfg := Config{
		ServiceName: getEnv("SERVICE_NAME", "grocery-api"),
		AppEnv:      getEnv("APP_ENV", "dev"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		HTTPPort: getEnvInt("HTTP_PORT", 8080),
		GRPCPort: getEnvInt("GRPC_PORT", 50051),

		RequestTimeout:  getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		ClientTimeout:   getEnvDuration("CLIENT_TIMEOUT", 20*time.Second),
		VendorTimeout:   getEnvDuration("VENDOR_TIMEOUT", 3*time.Second),
		SubmitTimeout:   getEnvDuration("SUBMIT_TIMEOUT", 15*time.Second),
		NavigationDelay: getEnvDuration("NAVIGATION_DELAY", 0),

		JWTSecret: getEnv("JWT_SECRET", devJWTSecret),

		CatalogSource:     strings.ToLower(getEnv("CATALOG_SOURCE", CatalogSQLite)),
		CatalogDBPath:     getEnv("CATALOG_DB_PATH", "file:catalog.db"),
		CatalogMigrations: getEnv("CATALOG_MIGRATIONS", "internal/catalog/migrations"),
		CatalogURL:        getEnv("CATALOG_URL", "http://localhost:5000"),
		OrdersURL:         getEnv("ORDERS_URL", "http://localhost:5000"),
		FavoritesURL:      getEnv("FAVORITES_URL", ""),

		MongoURI:      getEnv("MONGO_URI", ""),
		MongoDB:       getEnv("MONGO_DB", "grocery"),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		CartCacheTTL:  getEnvDuration("CART_CACHE_TTL", 15*time.Minute),

		PostgresHost:       getEnv("POSTGRES_HOST", ""),
		PostgresPort:       getEnvInt("POSTGRES_PORT", 5432),
		PostgresUser:       getEnv("POSTGRES_USER", "postgres"),
		PostgresPassword:   getEnv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:         getEnv("POSTGRES_DB", "grocery"),
		PostgresMigrations: getEnv("POSTGRES_MIGRATIONS", "internal/repository/migrations"),

		KafkaBrokers: getEnvList("KAFKA_BROKERS"),
		KafkaGroupID: getEnv("KAFKA_GROUP_ID", ""),

		RequireCoordinates: getEnvBool("REQUIRE_COORDINATES", false),
	}

	policy, err := cart.ParseMixedVendorPolicy(getEnv("MIXED_VENDOR_POLICY", ""))
	if err != nil {
		return Config{}, err
	}
	cfg.MixedVendorPolicy = policy

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.CatalogSource != CatalogSQLite && c.CatalogSource != CatalogHTTP {
		return fmt.Errorf("CATALOG_SOURCE must be %q or %q, got %q", CatalogSQLite, CatalogHTTP, c.CatalogSource)
	}
	if c.SubmitTimeout <= 0 {
		return fmt.Errorf("SUBMIT_TIMEOUT must be positive")
	}
	if c.ClientTimeout < c.SubmitTimeout {
		return fmt.Errorf("CLIENT_TIMEOUT (%s) must not be shorter than SUBMIT_TIMEOUT (%s)", c.ClientTimeout, c.SubmitTimeout)
	}
	if c.AppEnv == "prod" && c.JWTSecret == devJWTSecret {
		return fmt.Errorf("JWT_SECRET must be set in prod")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)

	if v == "" {
		return def
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}

	return n
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
