package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/laraibshahid/carrental/pkg/database"
)

// JWTConfig holds token signing configuration.
type JWTConfig struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// KafkaConfig holds event broker configuration.
type KafkaConfig struct {
	Brokers []string
}

// RedisConfig holds cache configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// BookingPolicyConfig holds tunables for the booking scheduler.
type BookingPolicyConfig struct {
	MinDuration    time.Duration
	MaxDuration    time.Duration
	PaymentTimeout time.Duration
	SweepInterval  time.Duration

	// Payment simulator tunables.
	AuthorizeSuccessRate float64
	AuthorizeLatency     time.Duration
}

// ServiceConfig holds all configuration for the rental service.
type ServiceConfig struct {
	Port          string
	AppEnv        string
	DBConfig      database.PostgresConfig
	MigrationsDir string
	JWTConfig     JWTConfig
	KafkaConfig   KafkaConfig
	RedisConfig   RedisConfig
	BookingPolicy BookingPolicyConfig
}

// Load reads configuration from environment variables with the RENTAL_ prefix.
func Load() (*ServiceConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("RENTAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("SERVICE_PORT", ":8080")
	v.SetDefault("APP_ENV", "development")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "carrental")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("MIGRATIONS_DIR", "migrations")

	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ACCESS_TTL", "15m")
	v.SetDefault("JWT_REFRESH_TTL", "168h")

	v.SetDefault("KAFKA_BROKERS", "localhost:9092")

	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_TTL", "5m")

	v.SetDefault("BOOKING_MIN_DURATION", "1h")
	v.SetDefault("BOOKING_MAX_DURATION", "720h")
	v.SetDefault("PAYMENT_TIMEOUT", "5s")
	v.SetDefault("SWEEP_INTERVAL", "1m")
	v.SetDefault("AUTHORIZE_SUCCESS_RATE", 0.95)
	v.SetDefault("AUTHORIZE_LATENCY", "100ms")

	return &ServiceConfig{
		Port:   v.GetString("SERVICE_PORT"),
		AppEnv: v.GetString("APP_ENV"),
		DBConfig: database.PostgresConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		MigrationsDir: v.GetString("MIGRATIONS_DIR"),
		JWTConfig: JWTConfig{
			Secret:     v.GetString("JWT_SECRET"),
			AccessTTL:  v.GetDuration("JWT_ACCESS_TTL"),
			RefreshTTL: v.GetDuration("JWT_REFRESH_TTL"),
		},
		KafkaConfig: KafkaConfig{
			Brokers: strings.Split(v.GetString("KAFKA_BROKERS"), ","),
		},
		RedisConfig: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			TTL:      v.GetDuration("REDIS_TTL"),
		},
		BookingPolicy: BookingPolicyConfig{
			MinDuration:          v.GetDuration("BOOKING_MIN_DURATION"),
			MaxDuration:          v.GetDuration("BOOKING_MAX_DURATION"),
			PaymentTimeout:       v.GetDuration("PAYMENT_TIMEOUT"),
			SweepInterval:        v.GetDuration("SWEEP_INTERVAL"),
			AuthorizeSuccessRate: v.GetFloat64("AUTHORIZE_SUCCESS_RATE"),
			AuthorizeLatency:     v.GetDuration("AUTHORIZE_LATENCY"),
		},
	}, nil
}
