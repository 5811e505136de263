package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Store drivers selectable through STORE_DRIVER.
const (
	DriverSupabase = "supabase"
	DriverPostgres = "postgres"
	DriverSqlite   = "sqlite"
	DriverMemory   = "memory"
)

// Config is built once at startup and handed to every component that needs it.
type Config struct {
	IsDevelopment bool
	Port          string

	StoreDriver string
	SupabaseURL string
	SupabaseKey string
	DatabaseURL string

	JWTSecret   string
	JWTIssuer   string
	JWTAudience string

	OpenAIKey         string
	OpenAIModel       string
	OpenAIBaseURL     string
	CompletionTimeout time.Duration

	RedisURL       string
	AllowedOrigins []string

	// WorkspaceIdleTTL is how long an owner's canvas stays in memory without
	// requests before it is dropped.
	WorkspaceIdleTTL time.Duration

	DefaultMapTitle    string
	DefaultNodeLabel   string
	DefaultNodeContent string
}

// fileConfig is the optional YAML file named by MINDCANVAS_CONFIG. It only
// carries non-secret settings; secrets come from the environment.
type fileConfig struct {
	Server struct {
		Port           string   `yaml:"port"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`
	Store struct {
		Driver string `yaml:"driver"`
	} `yaml:"store"`
	Completion struct {
		Model   string `yaml:"model"`
		BaseURL string `yaml:"base_url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"completion"`
	Canvas struct {
		DefaultMapTitle    string `yaml:"default_map_title"`
		DefaultNodeLabel   string `yaml:"default_node_label"`
		DefaultNodeContent string `yaml:"default_node_content"`
	} `yaml:"canvas"`
}

func defaults() *Config {
	return &Config{
		Port:               "8080",
		StoreDriver:        DriverSupabase,
		JWTAudience:        "authenticated",
		OpenAIModel:        "gpt-4o-mini",
		CompletionTimeout:  60 * time.Second,
		WorkspaceIdleTTL:   30 * time.Minute,
		AllowedOrigins:     []string{"http://localhost:3000"},
		DefaultMapTitle:    "My First Mind Map",
		DefaultNodeLabel:   "New Thought",
		DefaultNodeContent: "<p>New idea...</p>",
	}
}

// LoadDotEnv reads a .env file outside production. A missing file is not an error.
func LoadDotEnv() error {
	if os.Getenv("RAILWAY_ENVIRONMENT_NAME") != "" {
		return nil
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Load builds the configuration from the optional YAML file and the
// environment. Missing required settings are returned as an error; callers
// treat that as fatal.
func Load() (*Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (*Config, error) {
	cfg := defaults()

	if path := getenv("MINDCANVAS_CONFIG"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	cfg.IsDevelopment = getenv("APP_ENV") == "development"
	setString(&cfg.Port, getenv("PORT"))
	setString(&cfg.StoreDriver, strings.ToLower(getenv("STORE_DRIVER")))
	cfg.SupabaseURL = strings.TrimRight(getenv("SUPABASE_URL"), "/")
	cfg.SupabaseKey = getenv("SUPABASE_SERVICE_ROLE_KEY")
	cfg.DatabaseURL = getenv("DB_URL")
	cfg.JWTSecret = getenv("SUPABASE_JWT_SECRET")
	setString(&cfg.JWTIssuer, getenv("JWT_ISSUER"))
	setString(&cfg.JWTAudience, getenv("JWT_AUDIENCE"))
	cfg.OpenAIKey = getenv("OPENAI_API_KEY")
	setString(&cfg.OpenAIModel, getenv("OPENAI_MODEL"))
	setString(&cfg.OpenAIBaseURL, getenv("OPENAI_BASE_URL"))
	cfg.RedisURL = getenv("REDIS_URL")

	if raw := getenv("COMPLETION_TIMEOUT"); raw != "" {
		timeout, err := parseTimeout(raw)
		if err != nil {
			return nil, fmt.Errorf("COMPLETION_TIMEOUT: %w", err)
		}
		cfg.CompletionTimeout = timeout
	}

	if raw := getenv("WORKSPACE_IDLE_TTL"); raw != "" {
		ttl, err := parseTimeout(raw)
		if err != nil {
			return nil, fmt.Errorf("WORKSPACE_IDLE_TTL: %w", err)
		}
		cfg.WorkspaceIdleTTL = ttl
	}

	if raw := getenv("CORS_ALLOWED_ORIGINS"); raw != "" {
		cfg.AllowedOrigins = splitList(raw)
	}

	if cfg.JWTIssuer == "" && cfg.SupabaseURL != "" {
		cfg.JWTIssuer = cfg.SupabaseURL + "/auth/v1"
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	setString(&c.Port, fc.Server.Port)
	if len(fc.Server.AllowedOrigins) > 0 {
		c.AllowedOrigins = fc.Server.AllowedOrigins
	}
	setString(&c.StoreDriver, strings.ToLower(fc.Store.Driver))
	setString(&c.OpenAIModel, fc.Completion.Model)
	setString(&c.OpenAIBaseURL, fc.Completion.BaseURL)
	if fc.Completion.Timeout != "" {
		timeout, err := parseTimeout(fc.Completion.Timeout)
		if err != nil {
			return fmt.Errorf("completion.timeout: %w", err)
		}
		c.CompletionTimeout = timeout
	}
	setString(&c.DefaultMapTitle, fc.Canvas.DefaultMapTitle)
	setString(&c.DefaultNodeLabel, fc.Canvas.DefaultNodeLabel)
	setString(&c.DefaultNodeContent, fc.Canvas.DefaultNodeContent)
	return nil
}

func (c *Config) validate() error {
	var missing []string

	switch c.StoreDriver {
	case DriverSupabase:
		if c.SupabaseURL == "" {
			missing = append(missing, "SUPABASE_URL")
		}
		if c.SupabaseKey == "" {
			missing = append(missing, "SUPABASE_SERVICE_ROLE_KEY")
		}
	case DriverPostgres, DriverSqlite:
		if c.DatabaseURL == "" {
			missing = append(missing, "DB_URL")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	if c.OpenAIKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}
	if c.JWTSecret == "" {
		missing = append(missing, "SUPABASE_JWT_SECRET")
	}
	if c.JWTIssuer == "" {
		missing = append(missing, "JWT_ISSUER")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return "0.0.0.0:" + c.Port
}

func setString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

// parseTimeout accepts a Go duration ("90s") or a bare number of seconds.
func parseTimeout(raw string) (time.Duration, error) {
	if secs, err := strconv.Atoi(raw); err == nil {
		if secs <= 0 {
			return 0, fmt.Errorf("must be positive, got %d", secs)
		}
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive, got %s", raw)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
