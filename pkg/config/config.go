// Package config implements SPEC_FULL.md §4.9: a layered configuration
// loader — built-in defaults, then a base file, then an
// environment-selected file, then APP_-prefixed environment variables,
// each layer overriding the previous (spec §6.4).
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/cuemby/vmctrl/pkg/apperr"
)

// App is the server's own bind address.
type App struct {
	Host string
	Port int
}

// Database carries DSN fragments rather than one connection string, so
// individual fields can be overridden by environment variables.
type Database struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN assembles a libpq connection string from the fragments.
func (d Database) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// Token configures JWT issuance (spec §6.4: "secret" + "duration_sec").
type Token struct {
	Secret      string
	DurationSec int `mapstructure:"duration_sec"`
}

// Duration returns DurationSec as a time.Duration.
func (t Token) Duration() time.Duration {
	return time.Duration(t.DurationSec) * time.Second
}

// Cluster configures the hypervisor HTTP adapter.
type Cluster struct {
	URL        string
	AuthHeader string `mapstructure:"auth_header"`
}

// CORS configures the router's CORS middleware.
type CORS struct {
	Origin  string
	Methods string
	Headers string
}

// Config is the fully resolved, layered configuration (spec §6.4).
type Config struct {
	App      App
	Database Database
	Token    Token
	Cluster  Cluster
	CORS     CORS
}

// Load resolves Config by layering, in increasing priority:
//  1. built-in defaults
//  2. <dir>/base.yaml
//  3. <dir>/<env>.yaml ("local" or "production")
//  4. environment variables prefixed APP_, with "." replaced by "_"
//
// A missing base or env file is not an error — only a malformed one is.
func Load(dir, env string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	setDefaults(v)

	v.SetConfigName("base")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		if !isConfigNotFound(err) {
			return nil, apperr.WrapConfig(fmt.Errorf("read base config: %w", err))
		}
	}

	if env != "" {
		envViper := viper.New()
		envViper.SetConfigType("yaml")
		envViper.SetConfigName(env)
		envViper.AddConfigPath(dir)
		if err := envViper.ReadInConfig(); err != nil {
			if !isConfigNotFound(err) {
				return nil, apperr.WrapConfig(fmt.Errorf("read %s config: %w", env, err))
			}
		} else if err := v.MergeConfigMap(envViper.AllSettings()); err != nil {
			return nil, apperr.WrapConfig(fmt.Errorf("merge %s config: %w", env, err))
		}
	}

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnv(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, apperr.WrapConfig(fmt.Errorf("unmarshal config: %w", err))
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 8080)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("token.duration_sec", 3600)
	v.SetDefault("cors.origin", "*")
	v.SetDefault("cors.methods", "GET,POST,PUT,DELETE,OPTIONS")
	v.SetDefault("cors.headers", "Authorization,Content-Type")
}

// bindEnv forces every known key to resolve through AutomaticEnv even
// when the base/env files never mention it, since viper only applies
// its env prefix to keys it already knows about.
func bindEnv(v *viper.Viper) {
	keys := []string{
		"app.host", "app.port",
		"database.host", "database.port", "database.user", "database.password", "database.dbname", "database.sslmode",
		"token.secret", "token.duration_sec",
		"cluster.url", "cluster.auth_header",
		"cors.origin", "cors.methods", "cors.headers",
	}
	for _, k := range keys {
		_ = v.BindEnv(k)
	}
}

func isConfigNotFound(err error) bool {
	_, ok := err.(viper.ConfigFileNotFoundError)
	return ok
}
