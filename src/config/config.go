// Package config handles wingmate configuration: a TOML file for the stable
// surface, environment variables for secrets and the local endpoint.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/wingmate-ai/wingmate/src/gateway"
	"github.com/wingmate-ai/wingmate/src/logging"
	"github.com/wingmate-ai/wingmate/src/models"
)

// Config is the full configuration surface.
type Config struct {
	Assistant AssistantConfig `toml:"assistant"`
	Cloud     CloudConfig     `toml:"cloud"`
	Local     LocalConfig     `toml:"local"`
	Cache     CacheConfig     `toml:"cache"`
}

// AssistantConfig selects the provider mode and answer style.
type AssistantConfig struct {
	Persona  string `toml:"persona"`
	UseLocal bool   `toml:"use_local"`
}

// CloudConfig configures the hosted backend.
type CloudConfig struct {
	Engine string `toml:"engine"` // gemini, openai, anthropic
	Model  string `toml:"model"`
	APIKey string `toml:"api_key"` // usually left empty in the file; see env overlay
}

// LocalConfig configures the self-hosted inference server.
type LocalConfig struct {
	Endpoint    string  `toml:"endpoint"`
	Model       string  `toml:"model"`
	Temperature float64 `toml:"temperature"`
	TopP        float64 `toml:"top_p"`
}

// CacheConfig configures the optional answer cache.
type CacheConfig struct {
	Enabled    bool   `toml:"enabled"`
	Size       int    `toml:"size"`
	TTLSeconds int    `toml:"ttl_seconds"`
	Path       string `toml:"path"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Cloud: CloudConfig{
			Engine: "gemini",
			Model:  "gemini-2.0-flash",
		},
		Local: LocalConfig{
			Endpoint:    models.DefaultOllamaHost,
			Model:       "llama3.2",
			Temperature: 0.7,
			TopP:        0.9,
		},
		Cache: CacheConfig{
			Size:       128,
			TTLSeconds: 300,
		},
	}
}

// Load reads path on top of the defaults, then applies the environment
// overlay. A missing file is not an error; the defaults plus environment
// apply.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overlays values from the environment. Credentials and OLLAMA_HOST
// take precedence over the file when set, so keys stay out of config files
// and the endpoint follows the usual Ollama convention.
func (c *Config) applyEnv() {
	if key := apiKeyFromEnv(c.Cloud.Engine); key != "" {
		c.Cloud.APIKey = key
	}
	if host := os.Getenv("OLLAMA_HOST"); host != "" {
		c.Local.Endpoint = host
	}
}

func apiKeyFromEnv(engine string) string {
	switch engine {
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	case "anthropic", "claude":
		return os.Getenv("ANTHROPIC_API_KEY")
	default:
		if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
			return key
		}
		return os.Getenv("GEMINI_API_KEY")
	}
}

// Gateway maps the file configuration onto a gateway.Config.
func (c *Config) Gateway(logger logging.Logger) gateway.Config {
	gc := gateway.Config{
		UseLocal:      c.Assistant.UseLocal,
		CloudEngine:   c.Cloud.Engine,
		APIKey:        c.Cloud.APIKey,
		CloudModel:    c.Cloud.Model,
		LocalEndpoint: c.Local.Endpoint,
		LocalModel:    c.Local.Model,
		LocalOptions: models.OllamaOptions{
			Temperature: c.Local.Temperature,
			TopP:        c.Local.TopP,
		},
		Persona: c.Assistant.Persona,
		Logger:  logger,
	}
	if c.Cache.Enabled {
		gc.Cache = &gateway.CacheConfig{
			Size: c.Cache.Size,
			TTL:  time.Duration(c.Cache.TTLSeconds) * time.Second,
			Path: c.Cache.Path,
		}
	}
	return gc
}
