package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process-level configuration so main stays lean.
type Server struct {
	Addr     string
	LogLevel string

	// Provider is the remote biometric backend (liveness + similarity index).
	Provider Provider

	// Groups partition the searched population. DefaultGroup serves /login,
	// PinocchioGroup serves /pinocchio-login.
	DefaultGroup   string
	PinocchioGroup string

	// TieBreak maps group name to tie-break mode ("strict" or "oldest-wins").
	// Modes are deployment configuration, never inferred from data shape.
	TieBreak map[string]string

	// JWTPrivateKeyPath points at the ES512 PEM used to sign capability tokens.
	JWTPrivateKeyPath string

	// SDKPublicKeyPath and IssuerKeyPath serve static key material to clients.
	SDKPublicKeyPath string
	IssuerKeyPath    string

	// Host is the externally visible base URL, used in issuer documents.
	Host string

	Postgres PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
}

// Provider holds the remote biometric backend connection settings.
type Provider struct {
	BaseURL string
	// MinMatchScore is the similarity threshold for duplicate search.
	MinMatchScore int
	Timeout       time.Duration
}

// PostgresConfig holds the membership ledger database settings.
type PostgresConfig struct {
	DSN string
}

// RedisConfig holds connection settings for the enrollment lock backend.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig holds the telemetry relay settings. Empty brokers disable the
// Kafka sink; events then go to the structured log.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	cfg := Server{
		Addr:              envOr("FACESIGN_ADDR", ":8080"),
		LogLevel:          envOr("FACESIGN_LOG_LEVEL", "info"),
		DefaultGroup:      envOr("FACESIGN_GROUP_NAME", "facesign-users"),
		PinocchioGroup:    envOr("FACESIGN_PINOCCHIO_GROUP_NAME", "pinocchio-users"),
		JWTPrivateKeyPath: os.Getenv("FACESIGN_JWT_PRIVATE_KEY"),
		SDKPublicKeyPath:  os.Getenv("FACESIGN_SDK_PUBLIC_KEY"),
		IssuerKeyPath:     os.Getenv("FACESIGN_ISSUER_KEY_MULTIBASE"),
		Host:              envOr("FACESIGN_HOST", "http://localhost:8080"),
		Provider: Provider{
			BaseURL:       envOr("FACESIGN_PROVIDER_URL", "http://localhost:9000/"),
			MinMatchScore: envInt("FACESIGN_MIN_MATCH_SCORE", 15),
			Timeout:       envDuration("FACESIGN_PROVIDER_TIMEOUT", 30*time.Second),
		},
		Postgres: PostgresConfig{
			DSN: os.Getenv("FACESIGN_POSTGRES_DSN"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("FACESIGN_REDIS_URL"),
			PoolSize:     envInt("FACESIGN_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("FACESIGN_REDIS_MIN_IDLE", 2),
			DialTimeout:  envDuration("FACESIGN_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("FACESIGN_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("FACESIGN_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers: splitNonEmpty(os.Getenv("FACESIGN_KAFKA_BROKERS")),
			Topic:   envOr("FACESIGN_KAFKA_TOPIC", "facesign.telemetry"),
		},
	}

	cfg.TieBreak = parseTieBreak(os.Getenv("FACESIGN_TIEBREAK"), cfg)
	return cfg
}

// parseTieBreak reads "group=mode" pairs separated by commas. The default
// group stays strict and the pinocchio group tolerates soft duplicates unless
// overridden.
func parseTieBreak(raw string, cfg Server) map[string]string {
	modes := map[string]string{
		cfg.DefaultGroup:   "strict",
		cfg.PinocchioGroup: "oldest-wins",
	}
	for _, pair := range splitNonEmpty(raw) {
		name, mode, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		modes[strings.TrimSpace(name)] = strings.TrimSpace(mode)
	}
	return modes
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitNonEmpty(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
