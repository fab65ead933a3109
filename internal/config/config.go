// Package config loads configuration from environment variables, with an
// optional YAML file overlay, and sets up logging.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LLM provider names for the model server.
const (
	ProviderOllama    = "ollama"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Config holds all configuration values.
type Config struct {
	// Conversation client
	ServerURL      string  // model server base URL
	UseLocalData   bool    // offline mode: answer from the corpus
	CorpusPath     string  // knowledge corpus file (json or yaml)
	MinConfidence  float64 // retrieval acceptance threshold
	MaxSuggestions int
	TypingDelay    time.Duration // per-character reveal delay

	// Session storage
	DataDir       string // directory for the session database and logs
	StorageSecret string // obfuscation key for persisted sessions

	// Model server
	ListenAddr      string
	LLMProvider     string
	LLMModel        string
	OllamaHost      string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	LikesPath       string // feedback sink file

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// Load reads configuration from environment variables. When POPPIT_CONFIG
// points at a YAML file (or poppit.yaml exists in the data dir), values set
// there override the environment.
func Load() Config {
	dataDir := getEnv("POPPIT_DATA_DIR", defaultDataDir())

	cfg := Config{
		ServerURL:      getEnv("POPPIT_SERVER_URL", "http://localhost:8000"),
		UseLocalData:   getEnv("POPPIT_USE_LOCAL_DATA", "false") == "true",
		CorpusPath:     getEnv("POPPIT_CORPUS", "data.json"),
		MinConfidence:  getEnvFloat("POPPIT_MIN_CONFIDENCE", 0.3),
		MaxSuggestions: getEnvInt("POPPIT_MAX_SUGGESTIONS", 3),
		TypingDelay:    getEnvDuration("POPPIT_TYPING_DELAY", 20*time.Millisecond),

		DataDir:       dataDir,
		StorageSecret: getEnv("POPPIT_STORAGE_SECRET", "PoppitAI-SecureChat-2026"),

		ListenAddr:      getEnv("POPPIT_LISTEN_ADDR", ":8000"),
		LLMProvider:     getEnv("POPPIT_LLM_PROVIDER", ProviderOllama),
		LLMModel:        getEnv("POPPIT_LLM_MODEL", "gemma:2b"),
		OllamaHost:      getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		LikesPath:       getEnv("POPPIT_LIKES_FILE", "like.json"),

		LogFile:  getEnv("POPPIT_LOG_FILE", filepath.Join(dataDir, "poppit.log")),
		LogLevel: parseLogLevel(getEnv("POPPIT_LOG_LEVEL", "INFO")),
	}

	if path := configFilePath(dataDir); path != "" {
		if err := overlayFile(&cfg, path); err != nil {
			slog.Warn("config file ignored", "path", path, "error", err)
		}
	}
	return cfg
}

// fileConfig is the YAML shape of the optional config file. Secrets stay in
// the environment.
type fileConfig struct {
	ServerURL      string  `yaml:"server_url"`
	UseLocalData   *bool   `yaml:"use_local_data"`
	CorpusPath     string  `yaml:"corpus"`
	MinConfidence  float64 `yaml:"min_confidence"`
	MaxSuggestions int     `yaml:"max_suggestions"`
	ListenAddr     string  `yaml:"listen_addr"`
	LLMProvider    string  `yaml:"llm_provider"`
	LLMModel       string  `yaml:"llm_model"`
	LogLevel       string  `yaml:"log_level"`
}

func configFilePath(dataDir string) string {
	if p := os.Getenv("POPPIT_CONFIG"); p != "" {
		return p
	}
	p := filepath.Join(dataDir, "poppit.yaml")
	if _, err := os.Stat(p); err == nil {
		return p
	}
	return ""
}

func overlayFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	if fc.ServerURL != "" {
		cfg.ServerURL = fc.ServerURL
	}
	if fc.UseLocalData != nil {
		cfg.UseLocalData = *fc.UseLocalData
	}
	if fc.CorpusPath != "" {
		cfg.CorpusPath = fc.CorpusPath
	}
	if fc.MinConfidence > 0 {
		cfg.MinConfidence = fc.MinConfidence
	}
	if fc.MaxSuggestions > 0 {
		cfg.MaxSuggestions = fc.MaxSuggestions
	}
	if fc.ListenAddr != "" {
		cfg.ListenAddr = fc.ListenAddr
	}
	if fc.LLMProvider != "" {
		cfg.LLMProvider = fc.LLMProvider
	}
	if fc.LLMModel != "" {
		cfg.LLMModel = fc.LLMModel
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = parseLogLevel(fc.LogLevel)
	}
	return nil
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".poppit")
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
