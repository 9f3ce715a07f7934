package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	EnvClientID     = "GOOGLE_CLIENT_ID"
	EnvClientSecret = "GOOGLE_CLIENT_SECRET"
	EnvRefreshToken = "GOOGLE_REFRESH_TOKEN"
	EnvOutputPath   = "OUTPUT_FILE_PATH"
	EnvLogLevel     = "LOG_LEVEL"

	DefaultOutputFile = "step-count.txt"
)

// MissingError reports a required environment variable that is unset or empty.
type MissingError struct {
	Key string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("%s is not set in the environment or .env file", e.Key)
}

type Config struct {
	ClientID       string
	ClientSecret   string
	RefreshToken   string
	OutputFilePath string
	LogLevel       string
}

// Load reads the configuration from the environment. The client id and
// secret are required by both flows and are checked here.
func Load() (*Config, error) {
	v := viper.New()
	bindings := map[string]string{
		"client_id":     EnvClientID,
		"client_secret": EnvClientSecret,
		"refresh_token": EnvRefreshToken,
		"output_path":   EnvOutputPath,
		"log_level":     EnvLogLevel,
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("error binding %s: %w", env, err)
		}
	}
	v.SetDefault("log_level", "info")

	cfg := &Config{
		ClientID:       v.GetString("client_id"),
		ClientSecret:   v.GetString("client_secret"),
		RefreshToken:   v.GetString("refresh_token"),
		OutputFilePath: v.GetString("output_path"),
		LogLevel:       v.GetString("log_level"),
	}

	if cfg.ClientID == "" {
		return nil, &MissingError{Key: EnvClientID}
	}
	if cfg.ClientSecret == "" {
		return nil, &MissingError{Key: EnvClientSecret}
	}
	return cfg, nil
}

func (c *Config) RequireRefreshToken() error {
	if c.RefreshToken == "" {
		return &MissingError{Key: EnvRefreshToken}
	}
	return nil
}

// OutputPath returns the configured output file, or the default file next to
// the executable when none is configured.
func (c *Config) OutputPath() string {
	if strings.TrimSpace(c.OutputFilePath) != "" {
		return c.OutputFilePath
	}
	return DefaultOutputPath()
}

// DefaultOutputPath returns step-count.txt in the directory holding the
// running binary, with symlinks resolved so a linked binary writes beside its
// target. Under go run that directory is the build cache's temp dir, so set
// OUTPUT_FILE_PATH there.
func DefaultOutputPath() string {
	exe, err := os.Executable()
	if err != nil {
		return DefaultOutputFile
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), DefaultOutputFile)
}
