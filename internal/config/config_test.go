package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("GEMINI_API_KEY", "gem")
	t.Setenv("GROQ_API_KEY", "groq")
	t.Setenv("SESSION_SECRET", "secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ProviderGroq, cfg.LLM.Provider)
	assert.Equal(t, "llama-3.3-70b-versatile", cfg.Groq.Model)
	assert.Equal(t, "text-embedding-004", cfg.Gemini.EmbeddingModel)
	assert.Equal(t, 4, cfg.Retrieval.TopK)
	assert.Equal(t, DriverNone, cfg.DB.Driver)
	assert.Equal(t, "groq", cfg.Groq.APIKey)
	assert.False(t, cfg.R2.Enabled())
	assert.Equal(t, SplitMarker, cfg.MCQ.Split)
	assert.Equal(t, 2*time.Hour, cfg.Session.MaxIdle)
}

func TestUnknownSplitRejected(t *testing.T) {
	setRequired(t)
	t.Setenv("MCQ_SPLIT", "semicolon")

	_, err := load(viper.New())
	assert.ErrorContains(t, err, "mcq.split")
}

func TestNonPositiveTopKRejected(t *testing.T) {
	setRequired(t)
	t.Setenv("RETRIEVAL_TOP_K", "-1")

	_, err := load(viper.New())
	assert.ErrorContains(t, err, "retrieval.top_k")
}

func TestLoadFromYAML(t *testing.T) {
	setRequired(t)

	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(`
env: production
retrieval:
  top_k: 8
database:
  driver: sqlite
session:
  max_idle: 30m
youtube:
  lang: de
`)))
	cfg, err := load(v)
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, 8, cfg.Retrieval.TopK)
	assert.Equal(t, 30*time.Minute, cfg.Session.MaxIdle)
	assert.Equal(t, "de", cfg.YouTube.Lang)
	dsn, err := cfg.DB.DSN()
	require.NoError(t, err)
	assert.Contains(t, dsn, "learnassess.db")
}

func TestLoadMissingKeys(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GROQ_API_KEY", "groq")
	t.Setenv("SESSION_SECRET", "secret")

	_, err := load(viper.New())
	assert.ErrorIs(t, err, ErrMissingEnvironmentVariables)
}

func TestGeminiProviderNeedsNoGroqKey(t *testing.T) {
	setRequired(t)
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("LLM_PROVIDER", ProviderGemini)

	cfg, err := load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, ProviderGemini, cfg.LLM.Provider)
}

func TestPostgresNeedsURL(t *testing.T) {
	setRequired(t)
	t.Setenv("DATABASE_DRIVER", DriverPostgres)
	t.Setenv("DATABASE_URL", "")

	_, err := load(viper.New())
	assert.ErrorIs(t, err, ErrMissingEnvironmentVariables)
}
