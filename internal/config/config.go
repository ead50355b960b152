package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration. It is built once at startup and
// passed to constructors; nothing reads credentials from the environment later.
type Config struct {
	LLM struct {
		Provider     string  `yaml:"provider"` // openai | gemini
		Model        string  `yaml:"model"`
		BaseURL      string  `yaml:"base_url"`
		Temperature  float64 `yaml:"temperature"`
		OpenAIAPIKey string  `yaml:"openai_api_key"`
		GeminiAPIKey string  `yaml:"gemini_api_key"`
	} `yaml:"llm"`
	DataSource struct {
		Provider string `yaml:"provider"` // yahoo | twelvedata | mock
		Symbol   string `yaml:"symbol"`
		BaseURL  string `yaml:"base_url"`
		APIKey   string `yaml:"api_key"`
		Timezone string `yaml:"timezone"`
	} `yaml:"data_source"`
	Search struct {
		Region       string   `yaml:"region"`
		ExtraQueries []string `yaml:"extra_queries"`
	} `yaml:"search"`
	Crew struct {
		Reading bool `yaml:"reading"`
	} `yaml:"crew"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
		Polling  bool   `yaml:"polling"`
	} `yaml:"telegram"`
	Schedule struct {
		Cron string `yaml:"cron"`
	} `yaml:"schedule"`
	Metrics struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`
	Proxy string `yaml:"proxy"`
}

// Load reads an optional .env file and an optional YAML file, then applies
// environment variable overrides and defaults.
func Load(path, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	}

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.LLM.OpenAIAPIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.LLM.GeminiAPIKey = v
	}
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		cfg.DataSource.Provider = v
	}
	if v := os.Getenv("TWELVEDATA_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("TELEGRAM_POLLING"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Telegram.Polling = b
		}
	}
	if v := os.Getenv("CRON_SCHEDULE"); v != "" {
		cfg.Schedule.Cron = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	cfg.LLM.Provider = strings.ToLower(cfg.LLM.Provider)
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "openai"
	}
	cfg.DataSource.Provider = strings.ToLower(cfg.DataSource.Provider)
	if cfg.DataSource.Provider == "" {
		cfg.DataSource.Provider = "yahoo"
	}
	if cfg.DataSource.Symbol == "" {
		switch cfg.DataSource.Provider {
		case "twelvedata":
			cfg.DataSource.Symbol = "XAU/USD"
		default:
			cfg.DataSource.Symbol = "GC=F"
		}
	}
	if cfg.DataSource.Timezone == "" {
		cfg.DataSource.Timezone = "UTC"
	}
	if cfg.Search.Region == "" {
		cfg.Search.Region = "wt-wt"
	}

	return cfg, nil
}

// APIKey returns the credential of the configured LLM provider.
func (c *Config) APIKey() string {
	if c.LLM.Provider == "gemini" {
		return c.LLM.GeminiAPIKey
	}
	return c.LLM.OpenAIAPIKey
}

// Daemon reports whether the process should keep running after the first run.
func (c *Config) Daemon() bool {
	return c.Schedule.Cron != "" || c.Telegram.Polling
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case "openai":
		if c.LLM.OpenAIAPIKey == "" {
			return fmt.Errorf("llm.openai_api_key (OPENAI_API_KEY) is required")
		}
	case "gemini":
		if c.LLM.GeminiAPIKey == "" {
			return fmt.Errorf("llm.gemini_api_key (GEMINI_API_KEY) is required")
		}
	default:
		return fmt.Errorf("llm.provider must be openai or gemini, got %q", c.LLM.Provider)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be within [0, 2]")
	}

	switch c.DataSource.Provider {
	case "yahoo", "mock":
	case "twelvedata":
		if c.DataSource.APIKey == "" {
			return fmt.Errorf("data_source.api_key (TWELVEDATA_API_KEY) is required for twelvedata")
		}
	default:
		return fmt.Errorf("data_source.provider must be yahoo, twelvedata or mock, got %q", c.DataSource.Provider)
	}

	if c.Telegram.Polling && c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required for polling")
	}
	if c.Telegram.BotToken != "" && c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	return nil
}
