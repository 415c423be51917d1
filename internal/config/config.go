// Package config loads switchboard's configuration surface via typed
// envStr/envInt/envBool/envFloat env-var helpers. Most callers embedding
// switchboard as a library construct a Config literal directly; Load
// exists for the demo binary and for environments that configure the
// router purely through the environment.
package config

import (
	"encoding/json"
	"os"
	"strconv"
	"time"

	"github.com/relaymesh/switchboard/pkg/models"
)

// ClassifierKind selects which classifier(s) the dispatcher uses for
// Simple-complexity requests.
type ClassifierKind string

const (
	ClassifierBuiltin  ClassifierKind = "builtin"
	ClassifierExternal ClassifierKind = "external"
	ClassifierHybrid   ClassifierKind = "hybrid"
)

// ServiceConfig describes one routable service and its keywords, as
// loaded from configuration (as opposed to models.ServiceDefinition,
// which is the validated runtime value built from it).
type ServiceConfig struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"display_name"`
	Keywords    []string `json:"keywords"`
}

// EdgeConfig describes one directed graph edge as loaded from configuration.
type EdgeConfig struct {
	From        string  `json:"from"`
	To          string  `json:"to"`
	LatencyMs   float64 `json:"latency"`
	Cost        float64 `json:"cost"`
	Reliability float64 `json:"reliability"`
}

// CacheConfig configures the PathCache in front of the pathfinder.
type CacheConfig struct {
	Enabled bool
	MaxSize int
	TTLMs   int
}

// GraphConfig configures the Dijkstra subsystem.
type GraphConfig struct {
	Enabled bool
	Source  string
	Edges   []EdgeConfig
	Cache   CacheConfig
}

// ExternalConfig configures the external LLM classifier.
type ExternalConfig struct {
	APIKey      string
	Model       string
	Temperature float64
	MaxRetries  int
	TimeoutMs   int
	BackoffMs   int
}

// Config is switchboard's full configuration surface: classifier
// selection, confidence threshold, the service list, graph/cache
// settings, and external LLM settings.
type Config struct {
	Classifier          ClassifierKind
	ConfidenceThreshold float64
	Services            []ServiceConfig
	Graph               GraphConfig
	External            ExternalConfig
}

// Validate fails fast on startup-detected invalid settings: a blank
// service id or keyword, a missing graph source when the graph is
// enabled, or a missing API key when the external classifier is in use.
func (c Config) Validate() error {
	for _, svc := range c.Services {
		if svc.ID == "" {
			return &models.ConfigurationError{Reason: "service definition has a blank id"}
		}
		for _, kw := range svc.Keywords {
			if kw == "" {
				return &models.ConfigurationError{Reason: "service " + svc.ID + " has a blank keyword"}
			}
		}
	}
	if c.Graph.Enabled && c.Graph.Source == "" {
		return &models.ConfigurationError{Reason: "graph.source is required when graph.enabled is true"}
	}
	if (c.Classifier == ClassifierExternal || c.Classifier == ClassifierHybrid) && c.External.APIKey == "" {
		return &models.ConfigurationError{Reason: "external.api_key is required for the external classifier"}
	}
	return nil
}

// Default returns a Config populated with every §6 default.
func Default() Config {
	return Config{
		Classifier:          ClassifierBuiltin,
		ConfidenceThreshold: 0.7,
		Services:            nil,
		Graph: GraphConfig{
			Enabled: false,
			Source:  "gateway",
			Edges:   nil,
			Cache: CacheConfig{
				Enabled: true,
				MaxSize: 1000,
				TTLMs:   300_000,
			},
		},
		External: ExternalConfig{
			Model:       "gpt-4o-mini",
			Temperature: 0.0,
			MaxRetries:  2,
			TimeoutMs:   30_000,
			BackoffMs:   500,
		},
	}
}

// Load reads a Config from environment variables, falling back to
// Default() for anything unset. SWITCHBOARD_SERVICES and
// SWITCHBOARD_GRAPH_EDGES are JSON-encoded arrays of ServiceConfig and
// EdgeConfig respectively, matching the shapes a caller would otherwise
// build programmatically.
func Load() Config {
	cfg := Default()

	cfg.Classifier = ClassifierKind(envStr("SWITCHBOARD_CLASSIFIER", string(cfg.Classifier)))
	cfg.ConfidenceThreshold = envFloat("SWITCHBOARD_CONFIDENCE_THRESHOLD", cfg.ConfidenceThreshold)

	if raw := os.Getenv("SWITCHBOARD_SERVICES"); raw != "" {
		var services []ServiceConfig
		if err := json.Unmarshal([]byte(raw), &services); err == nil {
			cfg.Services = services
		}
	}

	cfg.Graph.Enabled = envBool("SWITCHBOARD_GRAPH_ENABLED", cfg.Graph.Enabled)
	cfg.Graph.Source = envStr("SWITCHBOARD_GRAPH_SOURCE", cfg.Graph.Source)
	if raw := os.Getenv("SWITCHBOARD_GRAPH_EDGES"); raw != "" {
		var edges []EdgeConfig
		if err := json.Unmarshal([]byte(raw), &edges); err == nil {
			cfg.Graph.Edges = edges
		}
	}
	cfg.Graph.Cache.Enabled = envBool("SWITCHBOARD_GRAPH_CACHE_ENABLED", cfg.Graph.Cache.Enabled)
	cfg.Graph.Cache.MaxSize = envInt("SWITCHBOARD_GRAPH_CACHE_MAX_SIZE", cfg.Graph.Cache.MaxSize)
	cfg.Graph.Cache.TTLMs = envInt("SWITCHBOARD_GRAPH_CACHE_TTL_MS", cfg.Graph.Cache.TTLMs)

	cfg.External.APIKey = envStr("SWITCHBOARD_EXTERNAL_API_KEY", cfg.External.APIKey)
	cfg.External.Model = envStr("SWITCHBOARD_EXTERNAL_MODEL", cfg.External.Model)
	cfg.External.Temperature = envFloat("SWITCHBOARD_EXTERNAL_TEMPERATURE", cfg.External.Temperature)
	cfg.External.MaxRetries = envInt("SWITCHBOARD_EXTERNAL_MAX_RETRIES", cfg.External.MaxRetries)
	cfg.External.TimeoutMs = envInt("SWITCHBOARD_EXTERNAL_TIMEOUT_MS", cfg.External.TimeoutMs)
	cfg.External.BackoffMs = envInt("SWITCHBOARD_EXTERNAL_BACKOFF_MS", cfg.External.BackoffMs)

	return cfg
}

// CacheTTL returns the configured cache TTL as a time.Duration.
func (c CacheConfig) CacheTTL() time.Duration {
	return time.Duration(c.TTLMs) * time.Millisecond
}

// Timeout returns the configured external request timeout as a time.Duration.
func (c ExternalConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// Backoff returns the configured initial retry backoff as a time.Duration.
func (c ExternalConfig) Backoff() time.Duration {
	return time.Duration(c.BackoffMs) * time.Millisecond
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
