package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Verbose          bool   `yaml:"verbose"`
	LogLevel         string `yaml:"log_level"`
	LogFormat        string `yaml:"log_format"`
	Output           string `yaml:"output"`
	CompressionLevel int    `yaml:"compression_level"`
}

// Load loads configuration from multiple sources with precedence:
// 1. Environment variables
// 2. ./.env.local (dotenv) - walks up parent directories to find it
// 3. ~/.config/catimerge/config.yaml (YAML)
func Load() (*Config, error) {
	cfg := &Config{
		LogLevel:         "warn",
		LogFormat:        "human",
		Output:           "table",
		CompressionLevel: -1,
	}

	// Load .env.local if it exists (walking up parent directories)
	if envPath := findEnvLocal(); envPath != "" {
		_ = godotenv.Load(envPath)
	}

	// YAML config is optional, but a present one must be valid
	if err := loadYAMLConfig(cfg); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	if verbose := os.Getenv("CATIMERGE_VERBOSE"); verbose != "" {
		v, err := strconv.ParseBool(verbose)
		if err != nil {
			return nil, fmt.Errorf("invalid CATIMERGE_VERBOSE %q: %w", verbose, err)
		}
		cfg.Verbose = v
	}
	if logLevel := os.Getenv("CATIMERGE_LOG_LEVEL"); logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if logFormat := os.Getenv("CATIMERGE_LOG_FORMAT"); logFormat != "" {
		cfg.LogFormat = logFormat
	}
	if output := os.Getenv("CATIMERGE_OUTPUT"); output != "" {
		cfg.Output = output
	}
	if level := getEnvOrFile("CATIMERGE_COMPRESSION_LEVEL", "CATIMERGE_COMPRESSION_LEVEL_FILE"); level != "" {
		n, err := strconv.Atoi(strings.TrimSpace(level))
		if err != nil {
			return nil, fmt.Errorf("invalid CATIMERGE_COMPRESSION_LEVEL %q: %w", level, err)
		}
		cfg.CompressionLevel = n
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	// flate accepts -2 (Huffman only) through 9
	if c.CompressionLevel < -2 || c.CompressionLevel > 9 {
		return fmt.Errorf("invalid compression_level %d: must be between -2 and 9", c.CompressionLevel)
	}
	switch c.LogFormat {
	case "human", "json":
	default:
		return fmt.Errorf("invalid log_format %q: must be human or json", c.LogFormat)
	}
	return nil
}

// loadYAMLConfig loads configuration from ~/.config/catimerge/config.yaml
func loadYAMLConfig(cfg *Config) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// no home directory means no config file
		return nil
	}

	configPath := filepath.Join(homeDir, ".config", "catimerge", "config.yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		return err
	}

	fileCfg := *cfg
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return fmt.Errorf("invalid config %s: %w", configPath, err)
	}
	*cfg = fileCfg
	return nil
}

// getEnvOrFile gets an environment variable value, or reads it from a file
// if the _FILE variant is set
func getEnvOrFile(envVar, fileVar string) string {
	if val := os.Getenv(envVar); val != "" {
		return val
	}

	if filePath := os.Getenv(fileVar); filePath != "" {
		data, err := os.ReadFile(filePath)
		if err == nil {
			return string(data)
		}
	}

	return ""
}

// findEnvLocal searches for .env.local starting from cwd and walking up
// parent directories. Stops at the user's home directory.
// Returns the path to .env.local if found, empty string otherwise.
func findEnvLocal() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		if _, err := os.Stat(".env.local"); err == nil {
			return ".env.local"
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	homeDir = filepath.Clean(homeDir)
	dir := filepath.Clean(cwd)

	for {
		envPath := filepath.Join(dir, ".env.local")
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}

		if dir == homeDir {
			break
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}

		dir = parent
	}

	return ""
}
