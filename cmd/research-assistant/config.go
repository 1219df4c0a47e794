// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-assistant/internal/secrets"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// setDefaults registers every config key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":7860")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 240*time.Second)
	v.SetDefault("server.request_timeout", 210*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("search.max_results", 5)
	v.SetDefault("search.timeout", 60*time.Second)
	v.SetDefault("search.user_agent", "research-assistant/"+version)
	v.SetDefault("search.tavily_depth", "basic")
	v.SetDefault("search.tavily_api_key", "")

	v.SetDefault("model.name", "gpt-4o-mini")
	v.SetDefault("model.temperature", 0.2)
	v.SetDefault("model.base_url", "")
	v.SetDefault("model.api_key", "")
	v.SetDefault("model.timeout", 60*time.Second)

	v.SetDefault("log.env", "prod")
	v.SetDefault("log.level", "")
}

// loadConfig decodes the effective configuration from v.
func loadConfig(v *viper.Viper) (types.AppConfig, error) {
	var cfg types.AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return types.AppConfig{}, fmt.Errorf("decoding config: %w", err)
	}
	if cfg.Search.MaxResults <= 0 {
		return types.AppConfig{}, fmt.Errorf("search.max_results must be positive, got %d", cfg.Search.MaxResults)
	}
	if w, rt := cfg.Server.WriteTimeout, cfg.Server.RequestTimeout; w > 0 && (rt <= 0 || rt >= w) {
		return types.AppConfig{}, fmt.Errorf("server.request_timeout (%s) must be positive and shorter than server.write_timeout (%s)", rt, w)
	}
	return cfg, nil
}

// applySecrets fills the API keys from, in order, the config itself, the
// secrets directory, and the environment. Any key still missing is fatal.
func applySecrets(cfg *types.AppConfig, dir string, log *zap.Logger) error {
	loaded, err := secrets.Load(dir, log)
	if err != nil {
		return err
	}
	if cfg.Search.TavilyAPIKey != "" {
		loaded[secrets.TavilyKey] = cfg.Search.TavilyAPIKey
	}
	if cfg.Model.APIKey != "" {
		loaded[secrets.OpenAIKey] = cfg.Model.APIKey
	}

	resolved, err := secrets.Require(loaded, dir, secrets.TavilyKey, secrets.OpenAIKey)
	if err != nil {
		return err
	}
	cfg.Search.TavilyAPIKey = resolved[secrets.TavilyKey]
	cfg.Model.APIKey = resolved[secrets.OpenAIKey]
	return nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	Long: `Config prints the configuration research-assistant would serve with, after
merging defaults, the config file, and RESEARCH_ASSISTANT_* environment
variables. API keys are redacted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}
		out, err := yaml.Marshal(cfg.Redacted())
		if err != nil {
			return fmt.Errorf("marshaling config: %w", err)
		}
		_, err = os.Stdout.Write(out)
		return err
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
