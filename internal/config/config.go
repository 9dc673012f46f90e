// Package config loads service configuration from config.yaml with
// environment variable overrides. Configuration is read once at startup;
// anything required but absent is a fatal error, never a per-request one.
package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/jrsteele09/go-identity-service/authz"
)

// ConfigurationMissingErr marks fatal startup configuration errors. The
// process must refuse to serve traffic rather than degrade.
var ConfigurationMissingErr = errors.New("configuration missing")

const (
	// Session store backends
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

type Config struct {
	v *viper.Viper
}

// New reads config.yaml (working directory or ./config) and applies
// environment overrides (e.g. SERVER_PORT, REDIS_ADDR). A missing file is
// fine - defaults plus environment cover local development.
func New() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "[config.New] reading config file")
		}
	}

	return &Config{v: v}, nil
}

// FromSettings builds a configuration from explicit values, bypassing file
// and environment lookup. Intended for tests and embedded use.
func FromSettings(settings map[string]any) *Config {
	v := viper.New()
	setDefaults(v)
	for key, value := range settings {
		v.Set(key, value)
	}
	return &Config{v: v}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.app_name", "Identity Service")
	v.SetDefault("server.env", "DEV")
	v.SetDefault("server.log_level", "info")

	v.SetDefault("jwt.issuer", "go-identity-service")
	v.SetDefault("jwt.audience", "api")
	v.SetDefault("jwt.key_id", "default")
	v.SetDefault("jwt.access_token_expiry", 60*time.Minute)
	v.SetDefault("jwt.refresh_token_expiry", 7*24*time.Hour)

	v.SetDefault("sessions.backend", SessionBackendMemory)
	v.SetDefault("sessions.sweep_interval", time.Minute)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("cors.allowed_methods", "GET, POST, PUT, DELETE, OPTIONS")
	v.SetDefault("cors.allowed_headers", "Authorization, Content-Type")
}

func (c *Config) GetPort() string {
	port := c.v.GetString("server.port")
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}
	return port
}

func (c *Config) GetAppName() string { return c.v.GetString("server.app_name") }
func (c *Config) GetEnv() string     { return c.v.GetString("server.env") }
func (c *Config) IsDev() bool        { return c.GetEnv() == "DEV" }

func (c *Config) GetLogLevel() string { return c.v.GetString("server.log_level") }

func (c *Config) GetIssuer() string   { return c.v.GetString("jwt.issuer") }
func (c *Config) GetAudience() string { return c.v.GetString("jwt.audience") }
func (c *Config) GetKeyID() string    { return c.v.GetString("jwt.key_id") }

func (c *Config) GetPrivateKeyPath() string { return c.v.GetString("jwt.private_key_path") }
func (c *Config) GetPublicKeyPath() string  { return c.v.GetString("jwt.public_key_path") }

func (c *Config) GetAccessTokenExpiry() time.Duration {
	return c.v.GetDuration("jwt.access_token_expiry")
}

func (c *Config) GetRefreshTokenExpiry() time.Duration {
	return c.v.GetDuration("jwt.refresh_token_expiry")
}

func (c *Config) GetSessionBackend() string { return c.v.GetString("sessions.backend") }

func (c *Config) GetSweepInterval() time.Duration {
	return c.v.GetDuration("sessions.sweep_interval")
}

func (c *Config) GetRedisAddr() string     { return c.v.GetString("redis.addr") }
func (c *Config) GetRedisPassword() string { return c.v.GetString("redis.password") }
func (c *Config) GetRedisDB() int          { return c.v.GetInt("redis.db") }

func (c *Config) GetAllowedOrigins() []string { return c.v.GetStringSlice("cors.allowed_origins") }
func (c *Config) GetAllowedMethods() string   { return c.v.GetString("cors.allowed_methods") }
func (c *Config) GetAllowedHeaders() string   { return c.v.GetString("cors.allowed_headers") }

// GetEndpointRoles loads the endpoint authorization table. An endpoint with
// no entry here is denied to every caller, so an empty or missing section
// locks down everything except the anonymous routes.
func (c *Config) GetEndpointRoles() authz.Table {
	table := make(authz.Table)

	raw := c.v.GetStringMap("endpoint_roles")
	for controller, actionsAny := range raw {
		actions, ok := actionsAny.(map[string]any)
		if !ok {
			continue
		}
		actionRoles := make(map[string][]string, len(actions))
		for action, rolesAny := range actions {
			switch roles := rolesAny.(type) {
			case []string:
				actionRoles[action] = roles
			case []any:
				roleStrings := make([]string, 0, len(roles))
				for _, role := range roles {
					if s, ok := role.(string); ok {
						roleStrings = append(roleStrings, s)
					}
				}
				actionRoles[action] = roleStrings
			}
		}
		table[controller] = actionRoles
	}

	return table
}
