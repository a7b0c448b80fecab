// Package config loads layered service configuration: a YAML file per environment with
// environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is a read-only view over the loaded settings.
type Config interface {
	GetString(key string) string
	GetInt(key string) int
	GetInt64(key string) int64
	GetBool(key string) bool
	GetFloat64(key string) float64
	GetDuration(key string) time.Duration
	GetStringSlice(key string) []string
	GetStringMap(key string) map[string]interface{}
	IsSet(key string) bool
	GetAll() map[string]interface{}
}

type viperConfig struct {
	v *viper.Viper
}

func (c *viperConfig) GetString(key string) string             { return c.v.GetString(key) }
func (c *viperConfig) GetInt(key string) int                   { return c.v.GetInt(key) }
func (c *viperConfig) GetInt64(key string) int64               { return c.v.GetInt64(key) }
func (c *viperConfig) GetBool(key string) bool                 { return c.v.GetBool(key) }
func (c *viperConfig) GetFloat64(key string) float64           { return c.v.GetFloat64(key) }
func (c *viperConfig) GetDuration(key string) time.Duration    { return c.v.GetDuration(key) }
func (c *viperConfig) GetStringSlice(key string) []string      { return c.v.GetStringSlice(key) }
func (c *viperConfig) IsSet(key string) bool                   { return c.v.IsSet(key) }
func (c *viperConfig) GetAll() map[string]interface{}          { return c.v.AllSettings() }
func (c *viperConfig) GetStringMap(key string) map[string]interface{} {
	return c.v.GetStringMap(key)
}

const configDir = "configs"

// Load reads configs/<APP_ENV>/<serviceName>.yaml (or the directory in CONFIG_PATH), falling
// back to configs/example. Every key can be overridden by SERVICENAME_SECTION_KEY env vars.
// A missing file is not an error when defaults and env vars are enough.
func Load(serviceName string, defaults map[string]interface{}) (Config, error) {
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigType("yaml")
	v.SetEnvPrefix(strings.ToUpper(serviceName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = filepath.Join(configDir, env)
	}

	v.SetConfigName(serviceName)
	v.AddConfigPath(configPath)
	v.AddConfigPath(filepath.Join(configDir, "example"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	return &viperConfig{v: v}, nil
}
