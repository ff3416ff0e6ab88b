package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process level configuration for the API and the sweep.
type Server struct {
	Addr        string
	Environment string
	LogLevel    string

	// DatabaseURL selects the Postgres stores; empty keeps everything in memory.
	DatabaseURL    string
	Redis          RedisConfig
	SchemeCacheTTL time.Duration

	JWTSigningKey string
	JWTIssuer     string
	JWTAudience   string

	// AdminToken guards catalog ingestion over HTTP; empty disables the route.
	AdminToken string

	Push  PushConfig
	Sweep SweepConfig
}

// RedisConfig holds connection settings for the optional catalog cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// PushConfig selects and configures the notification transport.
type PushConfig struct {
	Driver         string // log | fcm | kafka
	FCMProjectID   string
	FCMAccessToken string
	FCMBaseURL     string
	KafkaBrokers   []string
	KafkaTopic     string
}

// SweepConfig controls the daily deadline reminder run.
type SweepConfig struct {
	Enabled     bool
	At          string // HH:MM wall clock in Timezone
	Timezone    string
	Concurrency int
	WindowDays  int
}

const (
	PushDriverLog   = "log"
	PushDriverFCM   = "fcm"
	PushDriverKafka = "kafka"
)

// IsProduction reports whether the process runs with production defaults.
func (s Server) IsProduction() bool {
	return s.Environment == "production"
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	return Server{
		Addr:           envString("SARKAR_ADDR", ":8080"),
		Environment:    envString("ENVIRONMENT", "development"),
		LogLevel:       envString("LOG_LEVEL", "info"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		SchemeCacheTTL: envDuration("SCHEME_CACHE_TTL", 5*time.Minute),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		JWTSigningKey: jwtSigningKey,
		JWTIssuer:     os.Getenv("JWT_ISSUER"),
		JWTAudience:   os.Getenv("JWT_AUDIENCE"),
		AdminToken:    os.Getenv("ADMIN_TOKEN"),
		Push: PushConfig{
			Driver:         strings.ToLower(envString("PUSH_DRIVER", PushDriverLog)),
			FCMProjectID:   os.Getenv("FCM_PROJECT_ID"),
			FCMAccessToken: os.Getenv("FCM_ACCESS_TOKEN"),
			FCMBaseURL:     envString("FCM_BASE_URL", "https://fcm.googleapis.com"),
			KafkaBrokers:   envList("KAFKA_BROKERS"),
			KafkaTopic:     envString("KAFKA_TOPIC", "scheme-deadline-reminders"),
		},
		Sweep: SweepConfig{
			Enabled:     envBool("SWEEP_ENABLED", true),
			At:          envString("SWEEP_AT", "09:00"),
			Timezone:    envString("SWEEP_TIMEZONE", "Asia/Kolkata"),
			Concurrency: envInt("SWEEP_CONCURRENCY", 16),
			WindowDays:  envInt("SWEEP_WINDOW_DAYS", 7),
		},
	}
}

func envString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func envBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return v
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key)))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func envList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
