// Package config loads service configuration from an optional YAML file with
// environment variable overrides. Environment always wins, so deployments can
// keep secrets out of the file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full service configuration.
type Config struct {
	Port        int    `yaml:"port"`
	DatabaseURL string `yaml:"database_url"`

	OpenAI struct {
		APIKey string `yaml:"api_key"`
		Model  string `yaml:"model"`
	} `yaml:"openai"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

func defaults() Config {
	var c Config
	c.Port = 8080
	c.OpenAI.Model = "gpt-4o"
	c.Log.Level = "info"
	return c
}

// Load reads configuration from path (skipped when the file does not exist),
// then applies environment overrides, then validates.
func Load(path string) (Config, error) {
	c := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return c, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &c); err != nil {
				return c, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if v := os.Getenv("PORT"); v != "" {
		var port int
		if _, err := fmt.Sscanf(v, "%d", &port); err != nil {
			return c, fmt.Errorf("invalid PORT %q", v)
		}
		c.Port = port
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.OpenAI.APIKey = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		c.OpenAI.Model = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}

	if c.DatabaseURL == "" {
		return c, fmt.Errorf("database_url is required (set DATABASE_URL)")
	}
	if c.OpenAI.APIKey == "" {
		return c, fmt.Errorf("openai api_key is required (set OPENAI_API_KEY)")
	}
	return c, nil
}
