package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var ErrMissingEnvironmentVariables = errors.New("missing required environment variables")

// LLM providers.
const (
	ProviderGroq   = "groq"
	ProviderGemini = "gemini"
)

// Question-text split strategies for mcq.split.
const (
	SplitMarker   = "marker"
	SplitFirstDot = "first_dot"
)

// Database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverNone     = "none"
)

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env           string    `mapstructure:"env"`          // local, dev, production
	Port          string    `mapstructure:"port"`         // HTTP listen port
	FrontendURL   string    `mapstructure:"frontend_url"` // allowed CORS origin
	SessionSecret string    `mapstructure:"-"`            // cookie signing key, from environment
	LLM           LLM       `mapstructure:"llm"`          // which model answers prompts
	Groq          Groq      `mapstructure:"groq"`         // Groq chat completion settings
	Gemini        Gemini    `mapstructure:"gemini"`       // Gemini embeddings / transcription settings
	Retrieval     Retrieval `mapstructure:"retrieval"`    // chunking and top-k
	DB            DB        `mapstructure:"database"`     // result history storage
	R2            R2        `mapstructure:"r2"`           // optional material archive
	Discord       Discord   `mapstructure:"discord"`      // optional webhook notifications
	Upload        Upload    `mapstructure:"upload"`       // upload limits
	MCQ           MCQ       `mapstructure:"mcq"`          // question parsing
	YouTube       YouTube   `mapstructure:"youtube"`      // transcript fetching
	Session       Session   `mapstructure:"session"`      // in-memory session lifetime
}

type LLM struct {
	Provider string `mapstructure:"provider"`
}

type Groq struct {
	APIKey  string `mapstructure:"-"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

type Gemini struct {
	APIKey         string `mapstructure:"-"`
	Model          string `mapstructure:"model"`
	EmbeddingModel string `mapstructure:"embedding_model"`
}

type Retrieval struct {
	TopK         int `mapstructure:"top_k"`
	ChunkSize    int `mapstructure:"chunk_size"`
	ChunkOverlap int `mapstructure:"chunk_overlap"`
}

// DB contains result-store configuration.
type DB struct {
	Driver string `mapstructure:"driver"`
	URL    string `mapstructure:"-"`
}

// DSN returns the connection string for the configured driver.
func (db DB) DSN() (string, error) {
	switch db.Driver {
	case DriverNone:
		return "", nil
	case DriverSQLite:
		if db.URL == "" {
			return "file:learnassess.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)", nil
		}
		return db.URL, nil
	case DriverPostgres:
		if db.URL == "" {
			return "", ErrMissingEnvironmentVariables
		}
		return db.URL, nil
	}
	return "", fmt.Errorf("unsupported database driver %q", db.Driver)
}

// R2 holds Cloudflare R2 credentials. All fields must be set for uploads
// to be archived.
type R2 struct {
	AccountID       string `mapstructure:"account_id"`
	BucketName      string `mapstructure:"bucket_name"`
	AccessKeyID     string `mapstructure:"-"`
	SecretAccessKey string `mapstructure:"-"`
	PublicURL       string `mapstructure:"public_url"`
}

// Enabled reports whether every R2 setting is present.
func (r R2) Enabled() bool {
	return r.AccountID != "" && r.BucketName != "" && r.AccessKeyID != "" && r.SecretAccessKey != "" && r.PublicURL != ""
}

type Discord struct {
	WebhookURL string `mapstructure:"-"`
}

type Upload struct {
	MaxBytes int64 `mapstructure:"max_bytes"`
}

// MCQ.Split is "marker" (strip the Q1./Q1)/Question 1: prefix) or
// "first_dot" (drop everything up to the first dot).
type MCQ struct {
	Split string `mapstructure:"split"`
}

type YouTube struct {
	Lang string `mapstructure:"lang"`
}

type Session struct {
	MaxIdle time.Duration `mapstructure:"max_idle"`
}

// Load reads configuration from config files and environment variables.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	v.SetDefault("env", "local")
	v.SetDefault("port", "8080")
	v.SetDefault("frontend_url", "http://localhost:5173")
	v.SetDefault("llm.provider", ProviderGroq)
	v.SetDefault("groq.model", "llama-3.3-70b-versatile")
	v.SetDefault("groq.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("gemini.model", "gemini-2.0-flash")
	v.SetDefault("gemini.embedding_model", "text-embedding-004")
	v.SetDefault("retrieval.top_k", 4)
	v.SetDefault("retrieval.chunk_size", 1024)
	v.SetDefault("retrieval.chunk_overlap", 128)
	v.SetDefault("database.driver", DriverNone)
	v.SetDefault("upload.max_bytes", 64<<20)
	v.SetDefault("mcq.split", SplitMarker)
	v.SetDefault("youtube.lang", "")
	v.SetDefault("session.max_idle", "2h")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("env", "APP_ENV")
	_ = v.BindEnv("port", "PORT")
	_ = v.BindEnv("frontend_url", "FRONTEND_URL")
	_ = v.BindEnv("session_secret", "SESSION_SECRET")
	_ = v.BindEnv("llm.provider", "LLM_PROVIDER")
	_ = v.BindEnv("groq_api_key", "GROQ_API_KEY")
	_ = v.BindEnv("gemini_api_key", "GEMINI_API_KEY", "GOOGLE_API_KEY")
	_ = v.BindEnv("database.driver", "DATABASE_DRIVER")
	_ = v.BindEnv("database_url", "DATABASE_URL")
	_ = v.BindEnv("r2.account_id", "CLOUDFLARE_ACCOUNT_ID")
	_ = v.BindEnv("r2.bucket_name", "R2_BUCKET_NAME")
	_ = v.BindEnv("r2.public_url", "R2_PUBLIC_URL")
	_ = v.BindEnv("r2_access_key_id", "R2_ACCESS_KEY_ID")
	_ = v.BindEnv("r2_secret_access_key", "R2_SECRET_ACCESS_KEY")
	_ = v.BindEnv("discord_webhook_url", "DISCORD_WEBHOOK_URL")

	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// Secrets only come from the environment.
	cfg.SessionSecret = v.GetString("session_secret")
	cfg.Groq.APIKey = v.GetString("groq_api_key")
	cfg.Gemini.APIKey = v.GetString("gemini_api_key")
	cfg.DB.URL = v.GetString("database_url")
	cfg.R2.AccessKeyID = v.GetString("r2_access_key_id")
	cfg.R2.SecretAccessKey = v.GetString("r2_secret_access_key")
	cfg.Discord.WebhookURL = v.GetString("discord_webhook_url")

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	// Embeddings always go through Gemini.
	if c.Gemini.APIKey == "" {
		return fmt.Errorf("%w: GEMINI_API_KEY", ErrMissingEnvironmentVariables)
	}
	switch c.LLM.Provider {
	case ProviderGroq:
		if c.Groq.APIKey == "" {
			return fmt.Errorf("%w: GROQ_API_KEY", ErrMissingEnvironmentVariables)
		}
	case ProviderGemini:
	default:
		return fmt.Errorf("unsupported llm provider %q", c.LLM.Provider)
	}
	if c.SessionSecret == "" {
		return fmt.Errorf("%w: SESSION_SECRET", ErrMissingEnvironmentVariables)
	}
	if _, err := c.DB.DSN(); err != nil {
		return err
	}
	if c.Session.MaxIdle <= 0 {
		return fmt.Errorf("session.max_idle must be positive")
	}
	if c.MCQ.Split != SplitMarker && c.MCQ.Split != SplitFirstDot {
		return fmt.Errorf("unsupported mcq.split %q", c.MCQ.Split)
	}
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("retrieval.top_k must be positive, got %d", c.Retrieval.TopK)
	}
	if c.Retrieval.ChunkOverlap >= c.Retrieval.ChunkSize {
		return fmt.Errorf("retrieval.chunk_overlap (%d) must be smaller than retrieval.chunk_size (%d)", c.Retrieval.ChunkOverlap, c.Retrieval.ChunkSize)
	}
	return nil
}
