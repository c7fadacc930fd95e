package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Server settings
	ServerPort      string        `yaml:"server_port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	Debug           bool          `yaml:"debug"`
	Env             string        `yaml:"env"`
	Version         string        `yaml:"version"`
	StaticDir       string        `yaml:"static_dir"`

	Log       LogConfig       `yaml:"log"`
	YouTube   YouTubeConfig   `yaml:"youtube"`
	LLM       LLMConfig       `yaml:"llm"`
	Cache     CacheConfig     `yaml:"cache"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Spaces    SpacesConfig    `yaml:"spaces"`
	Session   SessionConfig   `yaml:"session"`
	CORS      CORSConfig      `yaml:"cors"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type LogConfig struct {
	Dir   string `yaml:"dir"`
	Level string `yaml:"level"`
}

type YouTubeConfig struct {
	APIKey     string        `yaml:"api_key"`
	APIBaseURL string        `yaml:"api_base_url"`
	WatchURL   string        `yaml:"watch_url"`
	MaxResults int           `yaml:"max_results"`
	Languages  []string      `yaml:"languages"`
	Timeout    time.Duration `yaml:"timeout"`
}

type LLMConfig struct {
	APIKey              string        `yaml:"api_key"`
	BaseURL             string        `yaml:"base_url"`
	Model               string        `yaml:"model"`
	Timeout             time.Duration `yaml:"timeout"`
	MaxTranscriptChars  int           `yaml:"max_transcript_chars"`
	TranslationLanguage string        `yaml:"translation_language"`
}

type CacheConfig struct {
	Size  int    `yaml:"size"`
	Store string `yaml:"store"`
}

type DatabaseConfig struct {
	Path           string `yaml:"path"`
	MaxConnections int    `yaml:"max_connections"`
}

type RedisConfig struct {
	URL       string        `yaml:"url"`
	TTL       time.Duration `yaml:"ttl"`
	KeyPrefix string        `yaml:"key_prefix"`
}

type SpacesConfig struct {
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
}

type SessionConfig struct {
	Store       string        `yaml:"store"`
	TTL         time.Duration `yaml:"ttl"`
	MaxSessions int           `yaml:"max_sessions"`
	CookieName  string        `yaml:"cookie_name"`
}

type CORSConfig struct {
	Enabled          bool     `yaml:"enabled"`
	AllowedOrigins   []string `yaml:"allowed_origins"`
	AllowedMethods   []string `yaml:"allowed_methods"`
	AllowedHeaders   []string `yaml:"allowed_headers"`
	ExposedHeaders   []string `yaml:"exposed_headers"`
	AllowCredentials bool     `yaml:"allow_credentials"`
	MaxAge           int      `yaml:"max_age"`
}

// RateLimitConfig holds limits in "N per unit" form, e.g. "30 per minute".
type RateLimitConfig struct {
	Enabled   bool     `yaml:"enabled"`
	Default   []string `yaml:"default"`
	Search    string   `yaml:"search"`
	Summarize string   `yaml:"summarize"`
	Chat      string   `yaml:"chat"`
	MaxIPs    int      `yaml:"max_ips"`

	// TrustProxy keys clients on X-Forwarded-For instead of the peer address.
	// Enable only behind a proxy that overwrites the header.
	TrustProxy bool `yaml:"trust_proxy"`
}

const (
	StoreNone   = "none"
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
	StoreS3     = "s3"
)

// Default returns the built-in configuration before any file or env overlay.
func Default() *Config {
	return &Config{
		ServerPort:      "5000",
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    120 * time.Second,
		IdleTimeout:     60 * time.Second,
		RequestTimeout:  110 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		Env:             "development",
		Version:         "1.0.0",
		StaticDir:       "./static",

		Log: LogConfig{
			Dir:   "./logs",
			Level: "info",
		},
		YouTube: YouTubeConfig{
			APIBaseURL: "https://www.googleapis.com/youtube/v3",
			WatchURL:   "https://www.youtube.com/watch",
			MaxResults: 5,
			Languages:  []string{"en"},
			Timeout:    20 * time.Second,
		},
		LLM: LLMConfig{
			BaseURL:             "https://openrouter.ai/api/v1",
			Model:               "anthropic/claude-3.5-sonnet",
			Timeout:             90 * time.Second,
			MaxTranscriptChars:  120000,
			TranslationLanguage: "German",
		},
		Cache: CacheConfig{
			Size:  100,
			Store: StoreNone,
		},
		Database: DatabaseConfig{
			Path:           "./data/transcripts.db",
			MaxConnections: 10,
		},
		Redis: RedisConfig{
			URL:       "redis://localhost:6379/0",
			TTL:       24 * time.Hour,
			KeyPrefix: "videovoyager:",
		},
		Spaces: SpacesConfig{
			Region: "us-east-1",
			Prefix: "transcripts",
		},
		Session: SessionConfig{
			Store:       StoreMemory,
			TTL:         2 * time.Hour,
			MaxSessions: 1000,
			CookieName:  "vv_session",
		},
		CORS: CORSConfig{
			Enabled:        true,
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "X-Session-ID", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID", "X-Session-ID"},
			MaxAge:         86400,
		},
		RateLimit: RateLimitConfig{
			Enabled:   true,
			Default:   []string{"200 per day", "50 per hour"},
			Search:    "30 per minute",
			Summarize: "10 per minute",
			Chat:      "20 per minute",
			MaxIPs:    10000,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file named by
// CONFIG_FILE, and environment variables (a .env file is loaded first if present).
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).Warn("Failed to load .env file")
	}

	cfg := Default()

	if path := GetEnv("CONFIG_FILE", ""); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read config file %s", path)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return errors.Wrapf(err, "parse config file %s", path)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.ServerPort = GetEnv("SERVER_PORT", GetEnv("PORT", c.ServerPort))
	c.ReadTimeout = getEnvAsDuration("READ_TIMEOUT", c.ReadTimeout)
	c.WriteTimeout = getEnvAsDuration("WRITE_TIMEOUT", c.WriteTimeout)
	c.IdleTimeout = getEnvAsDuration("IDLE_TIMEOUT", c.IdleTimeout)
	c.RequestTimeout = getEnvAsDuration("REQUEST_TIMEOUT", c.RequestTimeout)
	c.ShutdownTimeout = getEnvAsDuration("SHUTDOWN_TIMEOUT", c.ShutdownTimeout)
	c.Debug = getEnvAsBool("DEBUG", c.Debug)
	c.Env = GetEnv("ENV", c.Env)
	c.Version = GetEnv("VERSION", c.Version)
	c.StaticDir = GetEnv("STATIC_DIR", c.StaticDir)

	c.Log.Dir = GetEnv("LOG_DIR", c.Log.Dir)
	c.Log.Level = GetEnv("LOG_LEVEL", c.Log.Level)
	if c.Debug {
		c.Log.Level = "debug"
	}

	c.YouTube.APIKey = GetEnv("YOUTUBE_API_KEY", c.YouTube.APIKey)
	c.YouTube.APIBaseURL = GetEnv("YOUTUBE_API_BASE_URL", c.YouTube.APIBaseURL)
	c.YouTube.WatchURL = GetEnv("YOUTUBE_WATCH_URL", c.YouTube.WatchURL)
	c.YouTube.MaxResults = getEnvAsInt("YOUTUBE_MAX_RESULTS", c.YouTube.MaxResults)
	c.YouTube.Languages = getEnvAsStringSlice("YOUTUBE_TRANSCRIPT_LANGUAGES", c.YouTube.Languages)
	c.YouTube.Timeout = getEnvAsDuration("YOUTUBE_TIMEOUT", c.YouTube.Timeout)

	c.LLM.APIKey = GetEnv("OPENROUTER_API_KEY", c.LLM.APIKey)
	c.LLM.BaseURL = GetEnv("LLM_BASE_URL", c.LLM.BaseURL)
	c.LLM.Model = GetEnv("LLM_MODEL", c.LLM.Model)
	c.LLM.Timeout = getEnvAsDuration("LLM_TIMEOUT", c.LLM.Timeout)
	c.LLM.MaxTranscriptChars = getEnvAsInt("LLM_MAX_TRANSCRIPT_CHARS", c.LLM.MaxTranscriptChars)
	c.LLM.TranslationLanguage = GetEnv("TRANSLATION_LANGUAGE", c.LLM.TranslationLanguage)

	c.Cache.Size = getEnvAsInt("TRANSCRIPT_CACHE_SIZE", c.Cache.Size)
	c.Cache.Store = GetEnv("TRANSCRIPT_STORE", c.Cache.Store)

	c.Database.Path = GetEnv("DB_PATH", c.Database.Path)
	c.Database.MaxConnections = getEnvAsInt("DB_MAX_CONNECTIONS", c.Database.MaxConnections)

	c.Redis.URL = GetEnv("REDIS_URL", c.Redis.URL)
	c.Redis.TTL = getEnvAsDuration("REDIS_TTL", c.Redis.TTL)
	c.Redis.KeyPrefix = GetEnv("REDIS_KEY_PREFIX", c.Redis.KeyPrefix)

	c.Spaces.AccessKey = GetEnv("SPACES_ACCESS_KEY", c.Spaces.AccessKey)
	c.Spaces.SecretKey = GetEnv("SPACES_SECRET_KEY", c.Spaces.SecretKey)
	c.Spaces.Region = GetEnv("SPACES_REGION", c.Spaces.Region)
	c.Spaces.Endpoint = GetEnv("SPACES_ENDPOINT", c.Spaces.Endpoint)
	c.Spaces.Bucket = GetEnv("SPACES_BUCKET", c.Spaces.Bucket)
	c.Spaces.Prefix = GetEnv("SPACES_PREFIX", c.Spaces.Prefix)

	c.Session.Store = GetEnv("SESSION_STORE", c.Session.Store)
	c.Session.TTL = getEnvAsDuration("SESSION_TTL", c.Session.TTL)
	c.Session.MaxSessions = getEnvAsInt("SESSION_MAX", c.Session.MaxSessions)
	c.Session.CookieName = GetEnv("SESSION_COOKIE_NAME", c.Session.CookieName)

	c.CORS.Enabled = getEnvAsBool("CORS_ENABLED", c.CORS.Enabled)
	c.CORS.AllowedOrigins = getEnvAsStringSlice("CORS_ALLOWED_ORIGINS", c.CORS.AllowedOrigins)
	c.CORS.AllowedMethods = getEnvAsStringSlice("CORS_ALLOWED_METHODS", c.CORS.AllowedMethods)
	c.CORS.AllowedHeaders = getEnvAsStringSlice("CORS_ALLOWED_HEADERS", c.CORS.AllowedHeaders)
	c.CORS.ExposedHeaders = getEnvAsStringSlice("CORS_EXPOSED_HEADERS", c.CORS.ExposedHeaders)
	c.CORS.AllowCredentials = getEnvAsBool("CORS_ALLOW_CREDENTIALS", c.CORS.AllowCredentials)
	c.CORS.MaxAge = getEnvAsInt("CORS_MAX_AGE", c.CORS.MaxAge)

	c.RateLimit.Enabled = getEnvAsBool("RATE_LIMIT_ENABLED", c.RateLimit.Enabled)
	c.RateLimit.Default = getEnvAsStringSlice("RATE_LIMIT_DEFAULT", c.RateLimit.Default)
	c.RateLimit.Search = GetEnv("RATE_LIMIT_SEARCH", c.RateLimit.Search)
	c.RateLimit.Summarize = GetEnv("RATE_LIMIT_SUMMARIZE", c.RateLimit.Summarize)
	c.RateLimit.Chat = GetEnv("RATE_LIMIT_CHAT", c.RateLimit.Chat)
	c.RateLimit.MaxIPs = getEnvAsInt("RATE_LIMIT_MAX_IPS", c.RateLimit.MaxIPs)
	c.RateLimit.TrustProxy = getEnvAsBool("RATE_LIMIT_TRUST_PROXY", c.RateLimit.TrustProxy)
}

// IsProduction reports whether ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) Validate() error {
	if c.ServerPort == "" {
		return errors.New("server port is required")
	}
	if c.YouTube.APIKey == "" {
		return errors.New("YOUTUBE_API_KEY is required")
	}
	if c.LLM.APIKey == "" {
		return errors.New("OPENROUTER_API_KEY is required")
	}

	if err := validateTimeouts(c); err != nil {
		return err
	}

	if c.YouTube.MaxResults <= 0 {
		return errors.New("youtube max results must be greater than 0")
	}
	if c.LLM.Model == "" {
		return errors.New("llm model is required")
	}
	if c.LLM.MaxTranscriptChars < 0 {
		return errors.New("llm max transcript chars must not be negative")
	}
	if c.Cache.Size <= 0 {
		return errors.New("transcript cache size must be greater than 0")
	}

	return validateStores(c)
}

func validateTimeouts(c *Config) error {
	timeouts := []struct {
		value time.Duration
		name  string
	}{
		{c.ReadTimeout, "read timeout"},
		{c.WriteTimeout, "write timeout"},
		{c.IdleTimeout, "idle timeout"},
		{c.RequestTimeout, "request timeout"},
		{c.ShutdownTimeout, "shutdown timeout"},
		{c.YouTube.Timeout, "youtube timeout"},
		{c.LLM.Timeout, "llm timeout"},
	}

	for _, t := range timeouts {
		if t.value <= 0 {
			return errors.Errorf("%s must be greater than 0", t.name)
		}
	}
	return nil
}

func validateStores(c *Config) error {
	switch c.Cache.Store {
	case StoreNone, "":
	case StoreSQLite:
		if c.Database.Path == "" {
			return errors.New("database path is required for the sqlite transcript store")
		}
	case StoreRedis:
		if c.Redis.URL == "" {
			return errors.New("redis url is required for the redis transcript store")
		}
	case StoreS3:
		if c.Spaces.Bucket == "" || c.Spaces.Endpoint == "" {
			return errors.New("spaces bucket and endpoint are required for the s3 transcript store")
		}
	default:
		return errors.Errorf("unknown transcript store %q", c.Cache.Store)
	}

	switch c.Session.Store {
	case StoreMemory, "":
		if c.Session.MaxSessions <= 0 {
			return errors.New("session max must be greater than 0")
		}
	case StoreRedis:
		if c.Redis.URL == "" {
			return errors.New("redis url is required for the redis session store")
		}
	default:
		return errors.Errorf("unknown session store %q", c.Session.Store)
	}

	if c.Session.TTL <= 0 {
		return errors.New("session ttl must be greater than 0")
	}
	return nil
}

func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		logrus.WithFields(logrus.Fields{
			"key":          key,
			"value":        value,
			"defaultValue": defaultValue,
		}).Warn("Invalid duration, using default")
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		logrus.WithFields(logrus.Fields{
			"key":          key,
			"value":        value,
			"defaultValue": defaultValue,
		}).Warn("Invalid integer, using default")
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
		logrus.WithFields(logrus.Fields{
			"key":          key,
			"value":        value,
			"defaultValue": defaultValue,
		}).Warn("Invalid boolean, using default")
	}
	return defaultValue
}

func getEnvAsStringSlice(key string, defaultValue []string) []string {
	if value, exists := os.LookupEnv(key); exists {
		if value = strings.TrimSpace(value); value != "" {
			parts := strings.Split(value, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			return parts
		}
	}
	return defaultValue
}
