/*
Package config loads the translator's YAML configuration.

Settings are read from a YAML file when one is given, then overridden from the
environment:

	ENVIRONMENT         deployment environment (default "dev")
	TRANSLATOR_SEED     path to the dictionary seed file
	TRANSLATOR_JOURNAL  path to the registration journal (":memory:" for none on disk)
	TRANSLATOR_PORT     HTTP port
	LOG_LEVEL           debug, info, warn or error
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the parsed translator configuration.
type Config struct {
	Environment string           `yaml:"environment"`
	Log         LogConfig        `yaml:"log"`
	Server      ServerConfig     `yaml:"server"`
	Dictionary  DictionaryConfig `yaml:"dictionary"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level string `yaml:"level"`
	// json or text
	Format string `yaml:"format"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// DictionaryConfig locates the dictionary data.
type DictionaryConfig struct {
	// YAML file with the languages and their seed words.
	SeedPath string `yaml:"seed_path"`
	// buntdb file receiving every registration.
	JournalPath string `yaml:"journal_path"`
	// Reload the dictionary when the seed file changes.
	Watch bool `yaml:"watch"`
}

// Default returns a Config with default values.
func Default() Config {
	return Config{
		Environment: "dev",
		Log:         LogConfig{Level: "info", Format: "json"},
		Server:      ServerConfig{Port: 8080},
		Dictionary: DictionaryConfig{
			SeedPath:    "dictionary.yaml",
			JournalPath: ":memory:",
		},
	}
}

// Load reads file (if not empty), applies environment overrides and checks the result.
func Load(file string) (Config, error) {
	cfg := Default()

	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return cfg, fmt.Errorf("config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", file, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	if err := cfg.valid(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("ENVIRONMENT"); ok && v != "" {
		c.Environment = v
	}
	if v, ok := lookup("TRANSLATOR_SEED"); ok && v != "" {
		c.Dictionary.SeedPath = v
	}
	if v, ok := lookup("TRANSLATOR_JOURNAL"); ok && v != "" {
		c.Dictionary.JournalPath = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup("TRANSLATOR_PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: invalid TRANSLATOR_PORT %q", v)
		}
		c.Server.Port = port
	}
	return nil
}

// valid checks if the Config is valid in its current state.
func (c *Config) valid() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: invalid log.level %q (must be one of debug, info, warn, error)", c.Log.Level)
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("config: invalid log.format %q (must be json or text)", c.Log.Format)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New("config: server.port is invalid")
	}
	if c.Dictionary.SeedPath == "" {
		return errors.New("config: missing dictionary.seed_path value")
	}
	if c.Dictionary.JournalPath == "" {
		return errors.New("config: missing dictionary.journal_path value")
	}
	return nil
}
