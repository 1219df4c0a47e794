package types

import "time"

// HTTPConfig holds shared HTTP settings used by adapters that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout. Zero means no client-side timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "research-assistant/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// SearchConfig holds settings for the two search adapters.
type SearchConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// MaxResults caps each result list (default 5).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`

	// TavilyDepth is Tavily's search_depth parameter: basic or advanced.
	TavilyDepth string `json:"tavily_depth" yaml:"tavily_depth" mapstructure:"tavily_depth"`

	// TavilyAPIKey authenticates web search requests.
	TavilyAPIKey string `json:"tavily_api_key,omitempty" yaml:"tavily_api_key,omitempty" mapstructure:"tavily_api_key"`
}

// ModelConfig holds settings for the hosted language model.
type ModelConfig struct {
	// Name is the model identifier (e.g. "gpt-4o-mini").
	Name string `json:"name" yaml:"name" mapstructure:"name"`

	// Temperature is the sampling temperature; kept low for factual summaries.
	Temperature float32 `json:"temperature" yaml:"temperature" mapstructure:"temperature"`

	// BaseURL overrides the API endpoint for OpenAI-compatible providers.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`

	// APIKey is the authentication key for the model API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// Timeout bounds one completion call. Zero means no client-side timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// ServerConfig holds settings for the web UI listener.
type ServerConfig struct {
	Addr            string        `json:"addr" yaml:"addr" mapstructure:"addr"`
	ReadTimeout     time.Duration `json:"read_timeout" yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout" yaml:"write_timeout" mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`

	// RequestTimeout bounds the search-and-summarize pipeline for one
	// request. It must be shorter than WriteTimeout so the failure page can
	// still be written.
	RequestTimeout time.Duration `json:"request_timeout" yaml:"request_timeout" mapstructure:"request_timeout"`
}

// LogConfig selects the logger flavour.
type LogConfig struct {
	// Env is prod (JSON output) or dev/local (console output).
	Env string `json:"env" yaml:"env" mapstructure:"env"`

	// Level overrides the default level: debug, info, warn, error.
	Level string `json:"level,omitempty" yaml:"level,omitempty" mapstructure:"level"`
}

// AppConfig groups all configuration for the research-assistant process.
type AppConfig struct {
	Server ServerConfig `json:"server" yaml:"server" mapstructure:"server"`
	Search SearchConfig `json:"search" yaml:"search" mapstructure:"search"`
	Model  ModelConfig  `json:"model" yaml:"model" mapstructure:"model"`
	Log    LogConfig    `json:"log" yaml:"log" mapstructure:"log"`
}

// Redacted returns a copy of the config with secret values masked.
func (c AppConfig) Redacted() AppConfig {
	if c.Search.TavilyAPIKey != "" {
		c.Search.TavilyAPIKey = "<redacted>"
	}
	if c.Model.APIKey != "" {
		c.Model.APIKey = "<redacted>"
	}
	return c
}
