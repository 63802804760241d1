package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server    Server
	Database  Database
	Auth      Auth
	LLM       LLM
	Log       Log
	Telemetry Telemetry
}

type Server struct {
	Port      string
	StaticDir string
}

type Database struct {
	Driver      string // "postgres" or "sqlite"
	URL         string
	Host        string
	Port        string
	User        string
	Password    string
	Name        string
	SSLMode     string
	AuthRole    string
	AutoMigrate bool
}

type Auth struct {
	JWTSecret string
}

type LLM struct {
	Provider          string // "ollama", "gemini", "openai"
	OllamaBaseURL     string
	OllamaModel       string
	GeminiApiKey      string
	GeminiModel       string
	OpenAIApiKey      string
	OpenAIModel       string
	OpenAIBaseURL     string
	EnrichmentTimeout time.Duration
	ChatTimeout       time.Duration
	RateLimitRPS      float64
	RateLimitBurst    int
}

type Log struct {
	Level  string
	Format string // "console" or "json"
}

type Telemetry struct {
	MetricsEnabled bool
	TracingEnabled bool
}

// DSN returns the connection string for the configured driver.
// DATABASE_URL wins over the discrete fields.
func (d Database) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	if d.Driver == "sqlite" {
		if d.Name == "" {
			return "file::memory:?cache=shared"
		}
		return d.Name
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "5000")
	v.SetDefault("STATIC_DIR", "../campus-well-link/dist")

	v.SetDefault("DATABASE_DRIVER", "postgres")
	v.SetDefault("DATABASE_HOST", "localhost")
	v.SetDefault("DATABASE_PORT", "5432")
	v.SetDefault("DATABASE_USER", "postgres")
	v.SetDefault("DATABASE_NAME", "postgres")
	v.SetDefault("DATABASE_SSLMODE", "disable")
	v.SetDefault("DATABASE_AUTH_ROLE", "authenticated")
	v.SetDefault("DATABASE_AUTO_MIGRATE", false)

	v.SetDefault("LLM_PROVIDER", "ollama")
	v.SetDefault("OLLAMA_BASE_URL", "http://127.0.0.1:11434")
	v.SetDefault("OLLAMA_MODEL", "llama3")
	v.SetDefault("GEMINI_MODEL", "gemini-1.5-flash")
	v.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	v.SetDefault("LLM_ENRICHMENT_TIMEOUT", "30s")
	v.SetDefault("LLM_CHAT_TIMEOUT", "60s")
	v.SetDefault("LLM_RATE_LIMIT_RPS", 5.0)
	v.SetDefault("LLM_RATE_LIMIT_BURST", 10)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("TRACING_ENABLED", false)
}

func NewConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	var config Config

	config.Server.Port = v.GetString("SERVER_PORT")
	config.Server.StaticDir = v.GetString("STATIC_DIR")

	config.Database.Driver = strings.ToLower(v.GetString("DATABASE_DRIVER"))
	config.Database.URL = v.GetString("DATABASE_URL")
	config.Database.Host = v.GetString("DATABASE_HOST")
	config.Database.Port = v.GetString("DATABASE_PORT")
	config.Database.User = v.GetString("DATABASE_USER")
	config.Database.Password = v.GetString("DATABASE_PASSWORD")
	config.Database.Name = v.GetString("DATABASE_NAME")
	config.Database.SSLMode = v.GetString("DATABASE_SSLMODE")
	config.Database.AuthRole = v.GetString("DATABASE_AUTH_ROLE")
	config.Database.AutoMigrate = v.GetBool("DATABASE_AUTO_MIGRATE")

	config.Auth.JWTSecret = v.GetString("SUPABASE_JWT_SECRET")

	config.LLM.Provider = strings.ToLower(v.GetString("LLM_PROVIDER"))
	config.LLM.OllamaBaseURL = strings.TrimSuffix(v.GetString("OLLAMA_BASE_URL"), "/")
	config.LLM.OllamaModel = v.GetString("OLLAMA_MODEL")
	config.LLM.GeminiApiKey = v.GetString("GEMINI_API_KEY")
	config.LLM.GeminiModel = v.GetString("GEMINI_MODEL")
	config.LLM.OpenAIApiKey = v.GetString("OPENAI_API_KEY")
	config.LLM.OpenAIModel = v.GetString("OPENAI_MODEL")
	config.LLM.OpenAIBaseURL = v.GetString("OPENAI_BASE_URL")
	config.LLM.EnrichmentTimeout = v.GetDuration("LLM_ENRICHMENT_TIMEOUT")
	config.LLM.ChatTimeout = v.GetDuration("LLM_CHAT_TIMEOUT")
	config.LLM.RateLimitRPS = v.GetFloat64("LLM_RATE_LIMIT_RPS")
	config.LLM.RateLimitBurst = v.GetInt("LLM_RATE_LIMIT_BURST")

	config.Log.Level = v.GetString("LOG_LEVEL")
	config.Log.Format = v.GetString("LOG_FORMAT")

	config.Telemetry.MetricsEnabled = v.GetBool("METRICS_ENABLED")
	config.Telemetry.TracingEnabled = v.GetBool("TRACING_ENABLED")

	if err := config.validate(); err != nil {
		return nil, err
	}

	log.Info().
		Str("port", config.Server.Port).
		Str("db_driver", config.Database.Driver).
		Str("llm_provider", config.LLM.Provider).
		Bool("jwt_secret_present", config.Auth.JWTSecret != "").
		Msg("Config loaded")
	return &config, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.Database.Driver)
	}
	switch c.LLM.Provider {
	case "ollama", "gemini", "openai":
	default:
		return fmt.Errorf("unsupported LLM_PROVIDER %q", c.LLM.Provider)
	}
	if c.LLM.EnrichmentTimeout <= 0 {
		return fmt.Errorf("LLM_ENRICHMENT_TIMEOUT must be positive")
	}
	if c.LLM.ChatTimeout <= 0 {
		return fmt.Errorf("LLM_CHAT_TIMEOUT must be positive")
	}
	return nil
}
