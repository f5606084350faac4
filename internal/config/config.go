package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Audit log backends.
const (
	MemoryFile   = "file"
	MemorySQLite = "sqlite"
	MemoryNone   = "none"
)

// OCR backends.
const (
	OCRNone    = "none"
	OCRMistral = "mistral"
	OCRGoogle  = "gcp"
)

// Config collects every runtime setting of the service and the CLI.
type Config struct {
	Port           string
	AllowedOrigins []string
	LogLevel       string
	LogFormat      string

	LLMAPIKey      string
	LLMBaseURL     string
	LLMModel       string
	LLMTemperature float64
	LLMMaxTokens   int
	LLMTimeout     time.Duration

	EmphasizeKeywords bool

	MemoryBackend string
	MemoryPath    string
	MemoryDBPath  string

	OCRBackend      string
	MistralAPIKey   string
	MistralBaseURL  string
	MistralOCRModel string
	MaxUploadBytes  int64
}

// Load reads configuration from the environment and, when CONFIG_FILE is set,
// from that YAML file. Environment variables win over file values.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.AutomaticEnv()
	// The first non-empty variable wins, so deployments that only export the
	// provider-specific name keep working.
	if err := v.BindEnv("llm_api_key", "LLM_API_KEY", "GROQ_API_KEY", "OPENAI_API_KEY"); err != nil {
		return nil, fmt.Errorf("bind llm_api_key: %w", err)
	}

	if file := strings.TrimSpace(v.GetString("config_file")); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) {
				return nil, fmt.Errorf("config file %s not found: %w", file, err)
			}
			return nil, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	cfg := &Config{
		Port:              strings.TrimSpace(v.GetString("port")),
		AllowedOrigins:    splitList(v.GetString("allowed_origins")),
		LogLevel:          strings.ToLower(strings.TrimSpace(v.GetString("log_level"))),
		LogFormat:         strings.ToLower(strings.TrimSpace(v.GetString("log_format"))),
		LLMAPIKey:         strings.TrimSpace(v.GetString("llm_api_key")),
		LLMBaseURL:        strings.TrimSpace(v.GetString("llm_base_url")),
		LLMModel:          strings.TrimSpace(v.GetString("llm_model")),
		LLMTemperature:    v.GetFloat64("llm_temperature"),
		LLMMaxTokens:      v.GetInt("llm_max_tokens"),
		LLMTimeout:        v.GetDuration("llm_timeout"),
		EmphasizeKeywords: v.GetBool("emphasize_keywords"),
		MemoryBackend:     strings.ToLower(strings.TrimSpace(v.GetString("memory_backend"))),
		MemoryPath:        strings.TrimSpace(v.GetString("memory_path")),
		MemoryDBPath:      strings.TrimSpace(v.GetString("memory_db_path")),
		OCRBackend:        strings.ToLower(strings.TrimSpace(v.GetString("ocr_backend"))),
		MistralAPIKey:     strings.TrimSpace(v.GetString("mistral_api_key")),
		MistralBaseURL:    strings.TrimSpace(v.GetString("mistral_base_url")),
		MistralOCRModel:   strings.TrimSpace(v.GetString("mistral_ocr_model")),
		MaxUploadBytes:    v.GetInt64("max_upload_bytes"),
	}

	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}
	switch cfg.MemoryBackend {
	case MemoryFile, MemorySQLite, MemoryNone:
	default:
		return nil, fmt.Errorf("unknown MEMORY_BACKEND %q (want file, sqlite or none)", cfg.MemoryBackend)
	}
	switch cfg.OCRBackend {
	case OCRNone, OCRMistral, OCRGoogle:
	default:
		return nil, fmt.Errorf("unknown OCR_BACKEND %q (want none, mistral or gcp)", cfg.OCRBackend)
	}

	return cfg, nil
}

const defaultMaxUploadBytes = 10 << 20

func setDefaults(v *viper.Viper) {
	v.SetDefault("config_file", "")
	v.SetDefault("port", "5000")
	v.SetDefault("allowed_origins", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	v.SetDefault("llm_base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("llm_model", "llama-3.1-8b-instant")
	v.SetDefault("llm_temperature", 0.7)
	v.SetDefault("llm_max_tokens", 400)
	v.SetDefault("llm_timeout", 60*time.Second)

	v.SetDefault("emphasize_keywords", false)

	v.SetDefault("memory_backend", "file")
	v.SetDefault("memory_path", "data/memory.json")
	v.SetDefault("memory_db_path", "data/memory.db")

	v.SetDefault("ocr_backend", "none")
	v.SetDefault("mistral_api_key", "")
	v.SetDefault("mistral_base_url", "https://api.mistral.ai/v1")
	v.SetDefault("mistral_ocr_model", "mistral-ocr-latest")
	v.SetDefault("max_upload_bytes", defaultMaxUploadBytes)
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
