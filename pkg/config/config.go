package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Typesense   TypesenseConfig
	OpenAI      OpenAIConfig
	OTEL        OTELConfig
	Catalog     CatalogConfig
	Triage      TriageConfig
	Events      EventsConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string
	CacheTTL       time.Duration
}

// DatabaseConfig holds database configuration. An empty Host disables
// the triage history store.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig holds Redis configuration. An empty Host disables caching
// and the Redis-backed analytics counters.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// TypesenseConfig holds Typesense configuration
type TypesenseConfig struct {
	URL    string
	APIKey string
}

// OpenAIConfig holds the external classifier configuration
type OpenAIConfig struct {
	APIKey         string
	Model          string
	BaseURL        string
	RateLimitRPM   int
	RateLimitBurst int
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// CatalogConfig points at the static reference data files
type CatalogConfig struct {
	SymptomsPath   string
	FacilitiesPath string
}

// TriageConfig holds matching and ranking knobs
type TriageConfig struct {
	DefaultLatitude         float64
	DefaultLongitude        float64
	DefaultMaxDistanceKm    float64
	ClassifierTimeout       time.Duration
	ClassifierMinConfidence float64
	ClassifierCacheTTL      time.Duration
}

// EventsConfig selects where triage events are published
type EventsConfig struct {
	Backend      string // none, redis, kafka
	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroupID string
	RedisChannel string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Environment: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),

			// Wildcard is for development; set ALLOWED_ORIGINS in production
			AllowedOrigins: getEnvAsSlice("ALLOWED_ORIGINS", []string{"*"}),
			CacheTTL:       getEnvAsDuration("HTTP_CACHE_TTL", 10*time.Minute),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", ""),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "careroute"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", ""),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Typesense: TypesenseConfig{
			URL:    getEnv("TYPESENSE_URL", ""),
			APIKey: getEnv("TYPESENSE_API_KEY", "xyz"),
		},
		OpenAI: OpenAIConfig{
			APIKey:         getEnv("OPENAI_API_KEY", ""),
			Model:          getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			BaseURL:        getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			RateLimitRPM:   getEnvAsInt("OPENAI_RATE_LIMIT_RPM", 60),
			RateLimitBurst: getEnvAsInt("OPENAI_RATE_LIMIT_BURST", 5),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "careroute"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
		Catalog: CatalogConfig{
			SymptomsPath:   getEnv("SYMPTOMS_CATALOG_PATH", "data/symptoms.json"),
			FacilitiesPath: getEnv("FACILITIES_CATALOG_PATH", "data/facilities.json"),
		},
		Triage: TriageConfig{
			// Bangalore city centre
			DefaultLatitude:         getEnvAsFloat("TRIAGE_DEFAULT_LAT", 12.9716),
			DefaultLongitude:        getEnvAsFloat("TRIAGE_DEFAULT_LNG", 77.5946),
			DefaultMaxDistanceKm:    getEnvAsFloat("TRIAGE_DEFAULT_MAX_DISTANCE_KM", 20),
			ClassifierTimeout:       getEnvAsDuration("CLASSIFIER_TIMEOUT", 8*time.Second),
			ClassifierMinConfidence: getEnvAsFloat("CLASSIFIER_MIN_CONFIDENCE", 0.5),
			ClassifierCacheTTL:      getEnvAsDuration("CLASSIFIER_CACHE_TTL", 24*time.Hour),
		},
		Events: EventsConfig{
			Backend:      strings.ToLower(getEnv("EVENTS_BACKEND", "none")),
			KafkaBrokers: getEnvAsSlice("KAFKA_BROKERS", []string{"localhost:9092"}),
			KafkaTopic:   getEnv("KAFKA_TRIAGE_TOPIC", "triage-events"),
			KafkaGroupID: getEnv("KAFKA_STREAM_GROUP", ""),
			RedisChannel: getEnv("REDIS_TRIAGE_CHANNEL", "triage:events"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the services cannot run with
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid SERVER_PORT %d", c.Server.Port)
	}
	if c.Triage.DefaultLatitude < -90 || c.Triage.DefaultLatitude > 90 {
		return fmt.Errorf("invalid TRIAGE_DEFAULT_LAT %f", c.Triage.DefaultLatitude)
	}
	if c.Triage.DefaultLongitude < -180 || c.Triage.DefaultLongitude > 180 {
		return fmt.Errorf("invalid TRIAGE_DEFAULT_LNG %f", c.Triage.DefaultLongitude)
	}
	if c.Triage.DefaultMaxDistanceKm <= 0 {
		return fmt.Errorf("TRIAGE_DEFAULT_MAX_DISTANCE_KM must be positive")
	}
	if c.Triage.ClassifierTimeout <= 0 {
		return fmt.Errorf("CLASSIFIER_TIMEOUT must be positive")
	}
	switch c.Events.Backend {
	case "none", "redis", "kafka":
	default:
		return fmt.Errorf("unknown EVENTS_BACKEND %q", c.Events.Backend)
	}
	return nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// Enabled reports whether a database host is configured
func (c *DatabaseConfig) Enabled() bool {
	return c.Host != ""
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Enabled reports whether a Redis host is configured
func (c *RedisConfig) Enabled() bool {
	return c.Host != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
