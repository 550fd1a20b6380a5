package config

import (
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jwalitptl/clinic-console/internal/model"
	"github.com/jwalitptl/clinic-console/internal/repository/memory"
	"github.com/jwalitptl/clinic-console/internal/repository/remote"
	"github.com/jwalitptl/clinic-console/internal/session"
	"github.com/jwalitptl/clinic-console/pkg/circuitbreaker"
)

const EnvPrefix = "OMMS"

// Providers
const (
	ProviderRemote    = "remote"
	ProviderSimulated = "simulated"
)

// Session storages
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
)

// Event brokers
const (
	BrokerNone   = ""
	BrokerMemory = "memory"
	BrokerRedis  = "redis"
)

// Auth modes
const (
	AuthPassword = "password"
	AuthAPI      = "api"
)

type Config struct {
	Provider  string          `mapstructure:"provider"`
	Remote    RemoteConfig    `mapstructure:"remote"`
	Simulated SimulatedConfig `mapstructure:"simulated"`
	Session   SessionConfig   `mapstructure:"session"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Log       LogConfig       `mapstructure:"log"`
	Server    ServerConfig    `mapstructure:"server"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Events    EventsConfig    `mapstructure:"events"`
}

type RemoteConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RateLimit     float64       `mapstructure:"rate_limit"`
	RateBurst     int           `mapstructure:"rate_burst"`
	Breaker       BreakerConfig `mapstructure:"breaker"`
	DictionaryTTL time.Duration `mapstructure:"dictionary_ttl"`
}

type BreakerConfig struct {
	MaxFailures int           `mapstructure:"max_failures"`
	MaxRequests int           `mapstructure:"max_requests"`
	Interval    time.Duration `mapstructure:"interval"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type SimulatedConfig struct {
	Latency         time.Duration `mapstructure:"latency"`
	PharmacyLatency time.Duration `mapstructure:"pharmacy_latency"`
	ReportLatency   time.Duration `mapstructure:"report_latency"`
}

type SessionConfig struct {
	Storage       string        `mapstructure:"storage"`
	RedisURL      string        `mapstructure:"redis_url"`
	RedisPrefix   string        `mapstructure:"redis_prefix"`
	RedisPoolSize int           `mapstructure:"redis_pool_size"`
	TTL           time.Duration `mapstructure:"ttl"`
	Passphrase    string        `mapstructure:"passphrase"`
}

type AuthConfig struct {
	Mode string `mapstructure:"mode"`
	// Roles extends the built-in role table, e.g. {"3": "patient"}.
	Roles map[string]string `mapstructure:"roles"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ServerConfig struct {
	Port      int           `mapstructure:"port"`
	Prefix    string        `mapstructure:"prefix"`
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

// EventsConfig selects where status-change events go. An empty broker
// disables them.
type EventsConfig struct {
	Broker   string `mapstructure:"broker"`
	RedisURL string `mapstructure:"redis_url"`
	Channel  string `mapstructure:"channel"`
}

type MetricsConfig struct {
	Namespace string `mapstructure:"namespace"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("provider", ProviderSimulated)

	v.SetDefault("remote.base_url", "http://localhost:8000")
	v.SetDefault("remote.timeout", 0)
	v.SetDefault("remote.rate_limit", 0)
	v.SetDefault("remote.rate_burst", 1)
	v.SetDefault("remote.breaker.max_failures", 5)
	v.SetDefault("remote.breaker.max_requests", 1)
	v.SetDefault("remote.breaker.interval", 0)
	v.SetDefault("remote.breaker.timeout", 30*time.Second)
	v.SetDefault("remote.dictionary_ttl", 5*time.Minute)

	v.SetDefault("simulated.latency", memory.DefaultLatency.Default)
	v.SetDefault("simulated.pharmacy_latency", memory.DefaultLatency.Pharmacy)
	v.SetDefault("simulated.report_latency", memory.DefaultLatency.Reports)

	v.SetDefault("session.storage", StorageMemory)
	v.SetDefault("session.redis_url", "redis://localhost:6379/0")
	v.SetDefault("session.redis_prefix", "omms:")
	v.SetDefault("session.redis_pool_size", 0)
	v.SetDefault("session.ttl", 0)
	v.SetDefault("session.passphrase", "")

	v.SetDefault("auth.mode", AuthPassword)
	v.SetDefault("auth.roles", map[string]string{})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("server.port", 8000)
	v.SetDefault("server.prefix", "")
	v.SetDefault("server.jwt_secret", "change-me")
	v.SetDefault("server.token_ttl", time.Hour)

	v.SetDefault("metrics.namespace", "omms")

	v.SetDefault("events.broker", BrokerNone)
	v.SetDefault("events.redis_url", "redis://localhost:6379/0")
	v.SetDefault("events.channel", "omms:events")
}

// Load reads config.yaml from path (or . and ./config when path is empty)
// and OMMS_* environment variables. A missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !stderrors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderRemote:
		if c.Remote.BaseURL == "" {
			return fmt.Errorf("invalid config: remote.base_url is required for the remote provider")
		}
	case ProviderSimulated:
	default:
		return fmt.Errorf("invalid config: unknown provider %q", c.Provider)
	}
	switch c.Session.Storage {
	case StorageMemory, StorageRedis:
	default:
		return fmt.Errorf("invalid config: unknown session storage %q", c.Session.Storage)
	}
	switch c.Auth.Mode {
	case AuthPassword, AuthAPI:
	default:
		return fmt.Errorf("invalid config: unknown auth mode %q", c.Auth.Mode)
	}
	if _, err := c.RoleTable(); err != nil {
		return err
	}
	switch c.Events.Broker {
	case BrokerNone, BrokerMemory:
	case BrokerRedis:
		if c.Events.RedisURL == "" {
			return fmt.Errorf("invalid config: events.redis_url is required for the redis broker")
		}
	default:
		return fmt.Errorf("invalid config: unknown events broker %q", c.Events.Broker)
	}
	if c.Events.Broker != BrokerNone && c.Events.Channel == "" {
		return fmt.Errorf("invalid config: events.channel is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid config: server.port %d out of range", c.Server.Port)
	}
	return nil
}

// RoleTable is the built-in role table extended by auth.roles.
func (c *Config) RoleTable() (session.RoleTable, error) {
	extra := make(map[int]model.Role, len(c.Auth.Roles))
	for k, v := range c.Auth.Roles {
		id, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("invalid config: auth.roles key %q is not a role id", k)
		}
		role := model.Role(strings.ToLower(strings.TrimSpace(v)))
		if !role.Valid() {
			return nil, fmt.Errorf("invalid config: auth.roles[%d] has unknown role %q", id, v)
		}
		extra[id] = role
	}
	return session.DefaultRoleTable().Merge(extra), nil
}

func (c *RemoteConfig) ToClientConfig() remote.Config {
	return remote.Config{
		BaseURL:   c.BaseURL,
		Timeout:   c.Timeout,
		RateLimit: c.RateLimit,
		RateBurst: c.RateBurst,
		Breaker: circuitbreaker.Settings{
			Name:        "backend",
			MaxFailures: c.Breaker.MaxFailures,
			MaxRequests: c.Breaker.MaxRequests,
			Interval:    c.Breaker.Interval,
			Timeout:     c.Breaker.Timeout,
		},
		DictionaryTTL: c.DictionaryTTL,
	}
}

func (c *SimulatedConfig) ToLatency() memory.Latency {
	return memory.Latency{Default: c.Latency, Pharmacy: c.PharmacyLatency, Reports: c.ReportLatency}
}

func (c *SessionConfig) ToRedisConfig() session.RedisConfig {
	return session.RedisConfig{
		URL:        c.RedisURL,
		Prefix:     c.RedisPrefix,
		TTL:        c.TTL,
		PoolSize:   c.RedisPoolSize,
		Passphrase: c.Passphrase,
	}
}
