// Package config loads vt's settings with viper and locates the data file.
//
// Precedence, highest first: command-line flags (bound by the caller),
// VT_* environment variables, config.yaml in the config directory, defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	// EnvPrefix prefixes every environment override, e.g. VT_DATA.
	EnvPrefix = "VT"

	// DefaultDir is the project-local config directory.
	DefaultDir = ".vt"
)

// Config keys
const (
	KeyData        = "data"
	KeyTitle       = "title"
	KeyDescription = "description"
	KeyAddr        = "addr"
	KeyRecipe      = "recipe"
	KeyLogLevel    = "log_level"
)

const (
	DefaultTitle       = "Volunteer Opportunities"
	DefaultDescription = "Browse local volunteer opportunities. Filter by age, commitment and group size, or search every column."
	DefaultAddr        = "127.0.0.1:8080"
	DefaultLogLevel    = "info"
)

// defaultConfigYAML is written to config.yaml on first run.
const defaultConfigYAML = `# vt configuration

# CSV file path or http(s) URL. When empty, vt looks for data.csv or
# public/data.csv in the current directory and its parents.
# data:

title: Volunteer Opportunities
# description:

# Address for "vt serve"
addr: 127.0.0.1:8080

# Recipe applied at startup (see "vt recipes")
# recipe: all

log_level: info
`

// Config is the resolved configuration
type Config struct {
	Dir         string
	Data        string
	Title       string
	Description string
	Addr        string
	Recipe      string
	LogLevel    string
}

// ResolveDir returns the config directory: flag value, then VT_CONFIG_DIR,
// then DefaultDir.
func ResolveDir(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv(EnvPrefix + "_CONFIG_DIR"); env != "" {
		return env
	}
	return DefaultDir
}

// Load reads config.yaml from configDir using viper. It creates the directory
// and a default config.yaml on first run. A missing config.yaml is not an error.
func Load(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(KeyTitle, DefaultTitle)
	v.SetDefault(KeyDescription, DefaultDescription)
	v.SetDefault(KeyAddr, DefaultAddr)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyData, "")
	v.SetDefault(KeyRecipe, "")

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// FromViper extracts a Config from v
func FromViper(v *viper.Viper, configDir string) Config {
	return Config{
		Dir:         configDir,
		Data:        v.GetString(KeyData),
		Title:       v.GetString(KeyTitle),
		Description: v.GetString(KeyDescription),
		Addr:        v.GetString(KeyAddr),
		Recipe:      v.GetString(KeyRecipe),
		LogLevel:    v.GetString(KeyLogLevel),
	}
}

func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
