/*
Package config loads blockmentor configuration.

# Documents

Config wraps a decoded YAML or JSON document and extracts typed values with
defaults. Keys may address nested sections with dots:

	cfg, err := config.ReadFile("blockmentor.yaml")
	timeout := cfg.Duration("llm.timeout", time.Minute)
	origins := cfg.StringSlice("server.cors_origins", []string{"*"})

Missing keys and type mismatches return the default. ReadFile rejects
top-level keys other than the known Sections; Parse accepts any document.

# Settings

Settings is the typed service configuration. Load layers its sources:

 1. Defaults
 2. the config file, when a path is given
 3. the process environment
 4. .env files (variables already set in the environment win)

	s, err := config.Load("blockmentor.yaml", ".env")
	if err != nil {
	    return err
	}
	if err := s.Validate(); err != nil {
	    // every problem, aggregated
	}

Recognized environment variables: GOOGLE_API_KEY, GEMINI_BASE_URL,
QDRANT_URL, QDRANT_API_KEY, QDRANT_COLLECTION, EMBEDDING_MODEL, HF_API_KEY,
BLOCKMENTOR_ADDR, BLOCKMENTOR_CORS_ORIGINS, BLOCKMENTOR_CHAT_MODEL,
BLOCKMENTOR_REASONING_MODEL, BLOCKMENTOR_TEMPERATURE, BLOCKMENTOR_LLM_TIMEOUT,
BLOCKMENTOR_CACHE, BLOCKMENTOR_LOG_LEVEL and BLOCKMENTOR_LOG_FORMAT.

# Thread Safety

Config is safe for concurrent reads as long as the source map is not
modified.
*/
package config
