package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Settings is the service configuration.
type Settings struct {
	// Server
	Addr            string
	CORSOrigins     []string
	ShutdownTimeout time.Duration

	// LLM
	GoogleAPIKey   string
	GeminiBaseURL  string
	ChatModel      string
	ReasoningModel string
	Temperature    float64
	LLMTimeout     time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration

	// Retrieval
	QdrantURL      string
	QdrantAPIKey   string
	Collection     string
	TopK           int
	ScoreThreshold float64
	EmbeddingModel string
	HFAPIKey       string
	HFBaseURL      string

	// Flowchart
	CachePath  string
	NoiseLines []string

	// Logging
	LogLevel  string
	LogFormat string
}

// DefaultNoiseLines are flowchart lines produced by reflection widgets that
// carry no meaning for the model.
var DefaultNoiseLines = []string{
	"├── Reflection",
	`├── Print: ""`,
	`│   ├── "Reflective Learning"`,
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		Addr:            ":8000",
		CORSOrigins:     []string{"*"},
		ShutdownTimeout: 10 * time.Second,

		GeminiBaseURL:  "https://generativelanguage.googleapis.com/v1beta",
		ChatModel:      "gemini-2.0-flash",
		ReasoningModel: "gemini-2.5-flash",
		Temperature:    0.7,
		LLMTimeout:     60 * time.Second,
		MaxRetries:     3,
		RetryBackoff:   500 * time.Millisecond,

		Collection:     "mb_docs",
		TopK:           3,
		ScoreThreshold: 0.3,
		EmbeddingModel: "sentence-transformers/all-MiniLM-L6-v2",
		HFBaseURL:      "https://api-inference.huggingface.co",

		CachePath:  ":memory:",
		NoiseLines: append([]string(nil), DefaultNoiseLines...),

		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load assembles settings from defaults, the optional config file, .env files
// and the process environment, later sources winning.
// Missing .env files are ignored; a missing config file is an error.
func Load(path string, envFiles ...string) (Settings, error) {
	s := Defaults()
	if path != "" {
		cfg, err := ReadFile(path)
		if err != nil {
			return Settings{}, err
		}
		s.Apply(cfg)
	}

	env, err := readEnvFiles(envFiles)
	if err != nil {
		return Settings{}, err
	}
	s.ApplyEnv(func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := env[key]
		return v, ok
	})
	return s, nil
}

// Sections are the top-level keys a settings file may use.
var Sections = []string{"server", "llm", "retrieval", "cache", "flowchart", "log"}

// ReadFile reads a .yaml, .yml or .json settings file. JSON is decoded by
// the YAML parser. Top-level keys outside Sections are rejected so a
// misspelled section does not silently fall back to defaults.
func ReadFile(path string) (Config, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml", ".json":
	default:
		return Config{}, fmt.Errorf("settings file %s: unsupported extension %q", path, ext)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read settings file: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("settings file %s: %w", path, err)
	}
	if err := checkSections(cfg); err != nil {
		return Config{}, fmt.Errorf("settings file %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a YAML or JSON document without checking its keys.
func Parse(data []byte) (Config, error) {
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Config{}, fmt.Errorf("parse: %w", err)
	}
	return New(m), nil
}

func checkSections(cfg Config) error {
	var result *multierror.Error
	for _, key := range cfg.Keys() {
		if !slices.Contains(Sections, key) {
			result = multierror.Append(result, fmt.Errorf("unknown section %q", key))
		}
	}
	return result.ErrorOrNil()
}

func readEnvFiles(files []string) (map[string]string, error) {
	merged := make(map[string]string)
	for _, f := range files {
		m, err := godotenv.Read(f)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read env file %s: %w", f, err)
		}
		// Earlier files win, matching godotenv.Load.
		for k, v := range m {
			if _, ok := merged[k]; !ok {
				merged[k] = v
			}
		}
	}
	return merged, nil
}

// Apply overlays values present in cfg.
//
//	server:    {addr, cors_origins, shutdown_timeout}
//	llm:       {api_key, base_url, chat_model, reasoning_model, temperature,
//	            timeout, max_retries, retry_backoff}
//	retrieval: {qdrant_url, qdrant_api_key, collection, top_k, score_threshold,
//	            embedding_model, hf_api_key, hf_base_url}
//	cache:     {path}
//	flowchart: {noise_lines}
//	log:       {level, format}
func (s *Settings) Apply(cfg Config) {
	srv := cfg.Section("server")
	s.Addr = srv.String("addr", s.Addr)
	s.CORSOrigins = srv.StringSlice("cors_origins", s.CORSOrigins)
	s.ShutdownTimeout = srv.Duration("shutdown_timeout", s.ShutdownTimeout)

	llm := cfg.Section("llm")
	s.GoogleAPIKey = llm.String("api_key", s.GoogleAPIKey)
	s.GeminiBaseURL = llm.String("base_url", s.GeminiBaseURL)
	s.ChatModel = llm.String("chat_model", s.ChatModel)
	s.ReasoningModel = llm.String("reasoning_model", s.ReasoningModel)
	s.Temperature = llm.Float("temperature", s.Temperature)
	s.LLMTimeout = llm.Duration("timeout", s.LLMTimeout)
	s.MaxRetries = llm.Int("max_retries", s.MaxRetries)
	s.RetryBackoff = llm.Duration("retry_backoff", s.RetryBackoff)

	ret := cfg.Section("retrieval")
	s.QdrantURL = ret.String("qdrant_url", s.QdrantURL)
	s.QdrantAPIKey = ret.String("qdrant_api_key", s.QdrantAPIKey)
	s.Collection = ret.String("collection", s.Collection)
	s.TopK = ret.Int("top_k", s.TopK)
	s.ScoreThreshold = ret.Float("score_threshold", s.ScoreThreshold)
	s.EmbeddingModel = ret.String("embedding_model", s.EmbeddingModel)
	s.HFAPIKey = ret.String("hf_api_key", s.HFAPIKey)
	s.HFBaseURL = ret.String("hf_base_url", s.HFBaseURL)

	s.CachePath = cfg.String("cache.path", s.CachePath)
	s.NoiseLines = cfg.StringSlice("flowchart.noise_lines", s.NoiseLines)

	s.LogLevel = cfg.String("log.level", s.LogLevel)
	s.LogFormat = cfg.String("log.format", s.LogFormat)
}

// ApplyEnv overlays environment variables found by lookup.
// Unparseable numbers and durations are ignored.
func (s *Settings) ApplyEnv(lookup func(string) (string, bool)) {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str("BLOCKMENTOR_ADDR", &s.Addr)
	if v, ok := lookup("BLOCKMENTOR_CORS_ORIGINS"); ok && v != "" {
		s.CORSOrigins = splitList(v)
	}

	str("GOOGLE_API_KEY", &s.GoogleAPIKey)
	str("GEMINI_BASE_URL", &s.GeminiBaseURL)
	str("BLOCKMENTOR_CHAT_MODEL", &s.ChatModel)
	str("BLOCKMENTOR_REASONING_MODEL", &s.ReasoningModel)
	if v, ok := lookup("BLOCKMENTOR_TEMPERATURE"); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			s.Temperature = f
		}
	}
	if v, ok := lookup("BLOCKMENTOR_LLM_TIMEOUT"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			s.LLMTimeout = d
		}
	}

	str("QDRANT_URL", &s.QdrantURL)
	str("QDRANT_API_KEY", &s.QdrantAPIKey)
	str("QDRANT_COLLECTION", &s.Collection)
	str("EMBEDDING_MODEL", &s.EmbeddingModel)
	str("HF_API_KEY", &s.HFAPIKey)

	str("BLOCKMENTOR_CACHE", &s.CachePath)
	str("BLOCKMENTOR_LOG_LEVEL", &s.LogLevel)
	str("BLOCKMENTOR_LOG_FORMAT", &s.LogFormat)
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate reports every invalid setting at once.
func (s Settings) Validate() error {
	var result *multierror.Error

	if s.Addr == "" {
		result = multierror.Append(result, errors.New("server address is empty"))
	}
	if s.ShutdownTimeout < 0 {
		result = multierror.Append(result, fmt.Errorf("shutdown timeout %s is negative", s.ShutdownTimeout))
	}
	if s.ChatModel == "" || s.ReasoningModel == "" {
		result = multierror.Append(result, errors.New("chat and reasoning model names are required"))
	}
	if s.Temperature < 0 || s.Temperature > 2 {
		result = multierror.Append(result, fmt.Errorf("temperature %v is outside [0, 2]", s.Temperature))
	}
	if s.LLMTimeout <= 0 {
		result = multierror.Append(result, fmt.Errorf("llm timeout %s must be positive", s.LLMTimeout))
	}
	if s.MaxRetries < 0 {
		result = multierror.Append(result, fmt.Errorf("max retries %d is negative", s.MaxRetries))
	}
	if err := checkURL("gemini base url", s.GeminiBaseURL); err != nil {
		result = multierror.Append(result, err)
	}
	if s.QdrantURL != "" {
		if err := checkURL("qdrant url", s.QdrantURL); err != nil {
			result = multierror.Append(result, err)
		}
		if s.Collection == "" {
			result = multierror.Append(result, errors.New("qdrant collection is empty"))
		}
	}
	if s.TopK <= 0 {
		result = multierror.Append(result, fmt.Errorf("top k %d must be positive", s.TopK))
	}
	switch strings.ToLower(s.LogFormat) {
	case "text", "json":
	default:
		result = multierror.Append(result, fmt.Errorf("unknown log format %q", s.LogFormat))
	}
	switch strings.ToLower(s.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		result = multierror.Append(result, fmt.Errorf("unknown log level %q", s.LogLevel))
	}

	return result.ErrorOrNil()
}

// RetrievalEnabled reports whether a vector store is configured.
func (s Settings) RetrievalEnabled() bool {
	return s.QdrantURL != ""
}

func checkURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s %q must be http or https", name, raw)
	}
	return nil
}
