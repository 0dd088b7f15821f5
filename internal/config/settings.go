package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port  int  `mapstructure:"port"`
	Debug bool `mapstructure:"debug"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// UpstreamConfig carries the realtime endpoint connection parameters.
type UpstreamConfig struct {
	Endpoint   string `mapstructure:"endpoint"`
	Deployment string `mapstructure:"deployment"`
	APIVersion string `mapstructure:"api_version"`
	APIKey     string `mapstructure:"api_key"`
}

// SessionConfig holds the bridge-side session policy knobs. Voice,
// transcription and turn detection are mandatory session policy; the
// system prompt and temperature are optional overrides.
type SessionConfig struct {
	Voice        string   `mapstructure:"voice"`
	SystemPrompt string   `mapstructure:"system_prompt"`
	Temperature  *float64 `mapstructure:"temperature"`
	Timezone     string   `mapstructure:"timezone"`
	Language     string   `mapstructure:"language"`
}

// ToolsConfig configures the knowledge-search backend used by the
// search_products_text tool.
type ToolsConfig struct {
	SearchEndpoint string `mapstructure:"search_endpoint"`
	SearchAPIKey   string `mapstructure:"search_api_key"`
	SearchIndex    string `mapstructure:"search_index"`
}

type Settings struct {
	Server   ServerConfig   `mapstructure:"server"`
	Upstream UpstreamConfig `mapstructure:"upstream"`
	Session  SessionConfig  `mapstructure:"session"`
	Tools    ToolsConfig    `mapstructure:"tools"`
	Env      string         `mapstructure:"env"`
}

func Load() (*Settings, error) {
	// Load settings from a configuration file or environment variables
	viper.SetConfigName("config_" + genEnv())
	viper.AddConfigPath(".")
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var settings Settings
	if err := viper.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&settings)

	if err := settings.Validate(); err != nil {
		return nil, err
	}

	return &settings, nil
}

func applyDefaults(s *Settings) {
	if s.Server.Port == 0 {
		s.Server.Port = 8080
	}
	if s.Session.Voice == "" {
		s.Session.Voice = "shimmer"
	}
	if s.Session.Timezone == "" {
		s.Session.Timezone = "America/Bogota"
	}
	if s.Session.Language == "" {
		s.Session.Language = "es"
	}
}

// Validate rejects settings the relay cannot dial with.
func (s *Settings) Validate() error {
	missing := []string{}
	if s.Upstream.Endpoint == "" {
		missing = append(missing, "upstream.endpoint")
	}
	if s.Upstream.Deployment == "" {
		missing = append(missing, "upstream.deployment")
	}
	if s.Upstream.APIVersion == "" {
		missing = append(missing, "upstream.api_version")
	}
	if s.Upstream.APIKey == "" {
		missing = append(missing, "upstream.api_key")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required config keys: %v", missing)
	}
	return nil
}

func genEnv() string {
	env := viper.GetString("ENV")
	if env == "" {
		return "dev"
	}
	return env
}
