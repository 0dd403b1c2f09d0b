package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration for the harness. Values come from an
// optional YAML file layered under ZENBOT_* environment overrides, with
// defaults matching the shipped system.
type Config struct {
	Agent     AgentConfig     `mapstructure:"agent"`
	OrderAPI  OrderAPIConfig  `mapstructure:"order_api"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Sentiment SentimentConfig `mapstructure:"sentiment"`
	Policy    PolicyConfig    `mapstructure:"policy"`
	Eval      EvalConfig      `mapstructure:"eval"`
}

// AgentConfig selects which router variant handles messages.
type AgentConfig struct {
	// Variant is "baseline" or "zenbot".
	Variant string `mapstructure:"variant"`
}

// OrderAPIConfig controls the order-operations gateway.
type OrderAPIConfig struct {
	// Simulate short-circuits network calls with canned randomized
	// outcomes. Defaults to true so the harness runs without backends.
	Simulate  bool          `mapstructure:"simulate"`
	CancelURL string        `mapstructure:"cancel_url"`
	TrackURL  string        `mapstructure:"track_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// LLMConfig points the tool-calling agent and the judge at an
// OpenAI-compatible chat-completions endpoint.
type LLMConfig struct {
	BaseURL             string        `mapstructure:"base_url"`
	APIKey              string        `mapstructure:"api_key"`
	Model               string        `mapstructure:"model"`
	Timeout             time.Duration `mapstructure:"timeout"`
	DecisionTemperature float64       `mapstructure:"decision_temperature"`
	RewriteTemperature  float64       `mapstructure:"rewrite_temperature"`
}

// SentimentConfig controls the frustration pre-check.
type SentimentConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	// FrustrationThreshold gates escalation. The shipped value of 10.0
	// sits above the classifier's [0,1] score range, so escalation never
	// fires; the hook is kept configurable on purpose.
	FrustrationThreshold float64 `mapstructure:"frustration_threshold"`
	CacheSize            int     `mapstructure:"cache_size"`
}

// PolicyConfig holds the cancellation business rules.
type PolicyConfig struct {
	CancellationWindowDays       int      `mapstructure:"cancellation_window_days"`
	ReturnWindowDays             int      `mapstructure:"return_window_days"`
	MaxCancellationsPerUserMonth int      `mapstructure:"max_cancellations_per_user_per_month"`
	BlackoutDates                []string `mapstructure:"blackout_dates"`
	// QuotaDBPath, when set, backs the per-user cancellation counters
	// with SQLite instead of process memory.
	QuotaDBPath string `mapstructure:"quota_db_path"`
}

// EvalConfig holds evaluation thresholds.
type EvalConfig struct {
	// PassThreshold is the mean judge score at or above which an example
	// counts as a binary pass.
	PassThreshold float64 `mapstructure:"pass_threshold"`
	// SlowThresholdSeconds marks responses counted as slow in the
	// latency summary.
	SlowThresholdSeconds float64 `mapstructure:"slow_threshold_seconds"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("agent.variant", "baseline")

	v.SetDefault("order_api.simulate", true)
	v.SetDefault("order_api.cancel_url", "https://api.example.com/OrderCancellation")
	v.SetDefault("order_api.track_url", "https://api.example.com/OrderTracking")
	v.SetDefault("order_api.timeout", 5*time.Second)

	v.SetDefault("llm.base_url", "http://localhost:8080/v1")
	v.SetDefault("llm.model", "local")
	v.SetDefault("llm.timeout", 60*time.Second)
	v.SetDefault("llm.decision_temperature", 0.15)
	v.SetDefault("llm.rewrite_temperature", 0.5)

	v.SetDefault("sentiment.frustration_threshold", 10.0)
	v.SetDefault("sentiment.cache_size", 256)

	v.SetDefault("policy.cancellation_window_days", 10)
	v.SetDefault("policy.return_window_days", 30)
	v.SetDefault("policy.max_cancellations_per_user_per_month", 3)
	v.SetDefault("policy.blackout_dates", []string{"2025-12-25", "2025-01-01"})

	v.SetDefault("eval.pass_threshold", 4.0)
	v.SetDefault("eval.slow_threshold_seconds", 1.0)
}

// Load reads configuration from path (optional; empty means defaults and
// environment only) and applies ZENBOT_* environment overrides, e.g.
// ZENBOT_ORDER_API_SIMULATE=false.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("ZENBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations no component could run with.
func (c *Config) Validate() error {
	switch c.Agent.Variant {
	case "baseline", "zenbot":
	default:
		return fmt.Errorf("unknown agent variant %q (want baseline or zenbot)", c.Agent.Variant)
	}
	if c.Policy.CancellationWindowDays <= 0 {
		return fmt.Errorf("cancellation window must be positive, got %d", c.Policy.CancellationWindowDays)
	}
	if c.Policy.MaxCancellationsPerUserMonth <= 0 {
		return fmt.Errorf("cancellation quota must be positive, got %d", c.Policy.MaxCancellationsPerUserMonth)
	}
	if c.Eval.PassThreshold < 1 || c.Eval.PassThreshold > 5 {
		return fmt.Errorf("pass threshold must be within [1,5], got %g", c.Eval.PassThreshold)
	}
	return nil
}
