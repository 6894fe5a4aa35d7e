// Copyright (c) 2026 Keymaster Team
// sshoutbound - SSH outbound proxy handlers
// This source code is licensed under the MIT license found in the LICENSE file.

// Package config loads the sshoutbound configuration. It uses Viper for
// file/env/flag parsing and go-yaml to write configuration files back out.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/toeirei/sshoutbound/internal/outbound"
)

// Config is the top-level configuration file.
type Config struct {
	Log struct {
		Level string `mapstructure:"level" yaml:"level"`
	} `mapstructure:"log" yaml:"log"`
	Proxies []outbound.SSH `mapstructure:"proxies" yaml:"proxies"`

	// Source is the file the configuration was read from, if any.
	Source string `mapstructure:"-" yaml:"-"`
}

// Defaults are applied before any file, env var or flag is read.
var Defaults = map[string]any{
	"log.level": "info",
}

// GetConfigPath returns the full path of the user or system configuration file.
func GetConfigPath(system bool) (string, error) {
	var configDir string
	var err error

	if system {
		switch runtime.GOOS {
		case "windows":
			configDir = filepath.Join(os.Getenv("ProgramData"), "sshoutbound")
		default:
			configDir = "/etc/sshoutbound"
		}
	} else {
		configDir, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("could not get user config directory: %w", err)
		}
		configDir = filepath.Join(configDir, "sshoutbound")
	}

	return filepath.Join(configDir, "sshoutbound.yaml"), nil
}

// LoadConfig reads configuration into T. Precedence, highest first: flags of
// cmd, SSHOUTBOUND_* environment variables, the explicit file at path (if
// any), sshoutbound.yaml in the user dir, the system dir or ".", defaults.
// A missing configuration file is not an error.
func LoadConfig[T any](cmd *cobra.Command, defaults map[string]any, path *string) (T, error) {
	c, _, err := LoadConfigFile[T](cmd, defaults, path)
	return c, err
}

// LoadConfigFile is LoadConfig that also reports which file was read. The
// path is empty when no file was found.
func LoadConfigFile[T any](cmd *cobra.Command, defaults map[string]any, path *string) (T, string, error) {
	var c T
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("sshoutbound")
	v.SetConfigType("yaml")

	if path != nil && *path != "" {
		v.SetConfigFile(*path)
	}

	if userConfigPath, err := GetConfigPath(false); err == nil {
		v.AddConfigPath(filepath.Dir(userConfigPath))
	}
	if systemConfigPath, err := GetConfigPath(true); err == nil {
		v.AddConfigPath(filepath.Dir(systemConfigPath))
	}
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return c, "", fmt.Errorf("failed to read config: %w", err)
		}
	}

	v.SetEnvPrefix("sshoutbound")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if cmd != nil {
		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return c, "", err
		}
		// "log-level" also binds "log.level" so flags can reach nested keys.
		var bindErr error
		cmd.Flags().VisitAll(func(f *pflag.Flag) {
			if key := strings.Replace(f.Name, "-", ".", 1); key != f.Name && bindErr == nil {
				bindErr = v.BindPFlag(key, f)
			}
		})
		if bindErr != nil {
			return c, "", bindErr
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, "", fmt.Errorf("failed to decode config: %w", err)
	}

	return c, v.ConfigFileUsed(), nil
}

// Load is LoadConfig for Config with the package defaults. It records the
// file it read in Config.Source.
func Load(cmd *cobra.Command, path *string) (Config, error) {
	c, used, err := LoadConfigFile[Config](cmd, Defaults, path)
	if err != nil {
		return c, err
	}
	c.Source = used
	return c, nil
}

// WriteConfigFile writes c to path, or to the user/system location when path
// is empty. The file is created with 0600 since it may contain secrets.
func WriteConfigFile[T any](c *T, path string, system bool) (string, error) {
	if path == "" {
		var err error
		path, err = GetConfigPath(system)
		if err != nil {
			return "", err
		}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return "", err
	}

	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", fmt.Errorf("could not create config directory %s: %w", configDir, err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}

// Proxy returns the proxy entry called name.
func (c *Config) Proxy(name string) (*outbound.SSH, bool) {
	for i := range c.Proxies {
		if c.Proxies[i].Name == name {
			return &c.Proxies[i], true
		}
	}
	return nil, false
}
