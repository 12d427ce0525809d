package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/oauth2"

	"github.com/teemow/tasknotes/internal/evernote"
	"github.com/teemow/tasknotes/internal/scan"
)

// PlaceholderToken is the value AUTH_TOKEN falls back to when unset. A token
// equal to it is treated as "not configured".
const PlaceholderToken = "your developer token"

// DeveloperTokenURL is where users obtain a developer token.
const DeveloperTokenURL = "https://sandbox.evernote.com/api/DeveloperToken.action"

// Configuration keys.
const (
	KeyToken       = "token"
	KeyService     = "service"
	KeyTitleFilter = "title_filter"
	KeyPageSize    = "page_size"
	KeyClientName  = "client_name"
)

// Defaults.
const (
	DefaultService     = "production"
	DefaultTitleFilter = scan.DefaultTitleFilter
	DefaultPageSize    = scan.DefaultPageSize
	DefaultClientName  = "tasknotes (Go)"
)

// ErrTokenNotConfigured is returned by ResolveToken when the token is the placeholder.
var ErrTokenNotConfigured = evernote.NewConfigurationError("developer token is not configured")

// Config holds the resolved runtime configuration.
type Config struct {
	Token       string `mapstructure:"token"`
	Service     string `mapstructure:"service"`
	TitleFilter string `mapstructure:"title_filter"`
	PageSize    int    `mapstructure:"page_size"`
	ClientName  string `mapstructure:"client_name"`
}

// NewViper returns a viper instance with defaults and environment bindings.
//
// Environment variables:
//   - AUTH_TOKEN: developer token
//   - TASKNOTES_SERVICE: production, sandbox or a service URL
//   - TASKNOTES_TITLE_FILTER: substring searched with intitle:
//   - TASKNOTES_PAGE_SIZE: notes requested per search page
//   - TASKNOTES_CLIENT_NAME: client name sent with checkVersion
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyToken, PlaceholderToken)
	v.SetDefault(KeyService, DefaultService)
	v.SetDefault(KeyTitleFilter, DefaultTitleFilter)
	v.SetDefault(KeyPageSize, DefaultPageSize)
	v.SetDefault(KeyClientName, DefaultClientName)

	v.SetEnvPrefix("TASKNOTES")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv(KeyToken, "AUTH_TOKEN")
	return v
}

// Load reads configuration from an optional .env file in the working
// directory, an optional config file and the environment.
//
// If configFile is empty, $XDG_CONFIG_HOME/tasknotes/config.yaml is used when
// it exists. A missing default file is not an error.
func Load(v *viper.Viper, configFile string) (Config, error) {
	// Variables already set in the environment win over .env values.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env file: %w", err)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(userConfigDir(), "tasknotes"))
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges. It does not check the token; see ResolveToken.
func (c Config) Validate() error {
	if c.PageSize <= 0 {
		return fmt.Errorf("page size must be positive, got %d", c.PageSize)
	}
	if c.ClientName == "" {
		return fmt.Errorf("client name must not be empty")
	}
	return nil
}

// ResolveToken returns the developer token, or ErrTokenNotConfigured when it
// is empty or still the placeholder.
func (c Config) ResolveToken() (string, error) {
	token := strings.TrimSpace(c.Token)
	if token == "" || token == PlaceholderToken {
		return "", ErrTokenNotConfigured
	}
	return token, nil
}

// TokenSource wraps the resolved token for the Evernote client.
func (c Config) TokenSource() (oauth2.TokenSource, error) {
	token, err := c.ResolveToken()
	if err != nil {
		return nil, err
	}
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}), nil
}

// SessionConfig returns the evernote session configuration for this config.
func (c Config) SessionConfig() (evernote.SessionConfig, error) {
	ts, err := c.TokenSource()
	if err != nil {
		return evernote.SessionConfig{}, err
	}
	return evernote.SessionConfig{
		ServiceURL:  evernote.ServiceURL(c.Service),
		ClientName:  c.ClientName,
		TokenSource: ts,
	}, nil
}

// ScanOptions returns the scan options derived from this config.
func (c Config) ScanOptions() scan.Options {
	return scan.Options{
		TitleFilter: c.TitleFilter,
		PageSize:    c.PageSize,
	}
}

func userConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return dir
	}
	return filepath.Join(os.Getenv("HOME"), ".config")
}
