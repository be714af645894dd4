// Package config loads gocred binary settings from a YAML file, GOCRED_*
// environment variables and command-line flags.
//
// Precedence, highest first: changed flags, environment, config file,
// built-in defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	goCred "github.com/MrEthical07/goCred"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// BackendRedis selects the go-redis store.
	BackendRedis = "redis"
	// BackendEtcd selects the etcd v3 store.
	BackendEtcd = "etcd"

	envPrefix = "GOCRED"
)

// Config is the complete binary configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Backend BackendConfig `mapstructure:"backend" yaml:"backend"`
	KDF     KDFConfig     `mapstructure:"kdf" yaml:"kdf"`
	Store   StoreConfig   `mapstructure:"store" yaml:"store"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Listen          string        `mapstructure:"listen" validate:"required,hostname_port" yaml:"listen"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"gt=0" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"gt=0" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0" yaml:"shutdown_timeout"`
	Realm           string        `mapstructure:"realm" validate:"required" yaml:"realm"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error DEBUG INFO WARN ERROR" yaml:"level"`
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`
}

// BackendConfig selects and addresses the credential store.
type BackendConfig struct {
	Kind  string      `mapstructure:"kind" validate:"required,oneof=redis etcd" yaml:"kind"`
	Redis RedisConfig `mapstructure:"redis" yaml:"redis"`
	Etcd  EtcdConfig  `mapstructure:"etcd" yaml:"etcd"`
}

// RedisConfig addresses a standalone, sentinel or cluster deployment. A
// non-empty MasterName selects sentinel; more than one address without it
// selects cluster.
type RedisConfig struct {
	Addrs      []string `mapstructure:"addrs" validate:"omitempty,dive,hostname_port" yaml:"addrs"`
	Username   string   `mapstructure:"username" yaml:"username"`
	Password   string   `mapstructure:"password" yaml:"password"`
	DB         int      `mapstructure:"db" validate:"gte=0" yaml:"db"`
	MasterName string   `mapstructure:"master_name" yaml:"master_name"`
}

// EtcdConfig addresses an etcd cluster.
type EtcdConfig struct {
	Endpoints   []string      `mapstructure:"endpoints" validate:"omitempty,dive,required" yaml:"endpoints"`
	DialTimeout time.Duration `mapstructure:"dial_timeout" validate:"gt=0" yaml:"dial_timeout"`
	Username    string        `mapstructure:"username" yaml:"username"`
	Password    string        `mapstructure:"password" yaml:"password"`
}

// KDFConfig mirrors goCred.KDFConfig.
type KDFConfig struct {
	N                int    `mapstructure:"n" validate:"gt=1" yaml:"n"`
	R                int    `mapstructure:"r" validate:"gt=0" yaml:"r"`
	P                int    `mapstructure:"p" validate:"gt=0" yaml:"p"`
	KeyLength        int    `mapstructure:"key_length" validate:"gte=16" yaml:"key_length"`
	MaxPasswordBytes int    `mapstructure:"max_password_bytes" validate:"gt=0" yaml:"max_password_bytes"`
	Salt             string `mapstructure:"salt" validate:"required,base64" yaml:"salt"`
	PerRecordSalt    bool   `mapstructure:"per_record_salt" yaml:"per_record_salt"`
	RecordSaltLength int    `mapstructure:"record_salt_length" validate:"gte=8" yaml:"record_salt_length"`
}

// StoreConfig mirrors goCred.StoreConfig.
type StoreConfig struct {
	KeyPrefix      string        `mapstructure:"key_prefix" validate:"required" yaml:"key_prefix"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"gt=0" yaml:"request_timeout"`
}

// MetricsConfig mirrors goCred.MetricsConfig.
type MetricsConfig struct {
	Enabled           bool `mapstructure:"enabled" yaml:"enabled"`
	LatencyHistograms bool `mapstructure:"latency_histograms" yaml:"latency_histograms"`
}

// flagKeys maps command-line flag names onto config keys.
var flagKeys = map[string]string{
	"listen":          "server.listen",
	"backend":         "backend.kind",
	"redis-addr":      "backend.redis.addrs",
	"etcd-endpoint":   "backend.etcd.endpoints",
	"log-level":       "logging.level",
	"log-format":      "logging.format",
	"key-prefix":      "store.key_prefix",
	"store-timeout":   "store.request_timeout",
	"per-record-salt": "kdf.per_record_salt",
}

func setDefaults(v *viper.Viper) {
	engine := goCred.DefaultConfig()

	v.SetDefault("server.listen", "127.0.0.1:8080")
	v.SetDefault("server.read_timeout", 5*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.realm", "gocred")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("backend.kind", BackendRedis)
	v.SetDefault("backend.redis.addrs", []string{"127.0.0.1:6379"})
	v.SetDefault("backend.redis.username", "")
	v.SetDefault("backend.redis.password", "")
	v.SetDefault("backend.redis.db", 0)
	v.SetDefault("backend.redis.master_name", "")
	v.SetDefault("backend.etcd.endpoints", []string{"127.0.0.1:2379"})
	v.SetDefault("backend.etcd.dial_timeout", 5*time.Second)
	v.SetDefault("backend.etcd.username", "")
	v.SetDefault("backend.etcd.password", "")

	v.SetDefault("kdf.n", engine.KDF.N)
	v.SetDefault("kdf.r", engine.KDF.R)
	v.SetDefault("kdf.p", engine.KDF.P)
	v.SetDefault("kdf.key_length", engine.KDF.KeyLength)
	v.SetDefault("kdf.max_password_bytes", engine.KDF.MaxPasswordBytes)
	v.SetDefault("kdf.salt", "")
	v.SetDefault("kdf.per_record_salt", false)
	v.SetDefault("kdf.record_salt_length", engine.KDF.RecordSaltLength)

	v.SetDefault("store.key_prefix", engine.Store.KeyPrefix)
	v.SetDefault("store.request_timeout", engine.Store.RequestTimeout)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.latency_histograms", true)
}

// Load reads configuration from path (optional), the environment and fs
// (optional), then validates it.
func Load(path string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("gocred")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/gocred")
	}
	if err := v.ReadInConfig(); err != nil {
		// Without an explicit path a missing file just means defaults.
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks struct tags, the backend address lists and the engine
// configuration derived from cfg.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return err
	}

	switch cfg.Backend.Kind {
	case BackendRedis:
		if len(cfg.Backend.Redis.Addrs) == 0 {
			return errors.New("backend.redis.addrs must not be empty")
		}
	case BackendEtcd:
		if len(cfg.Backend.Etcd.Endpoints) == 0 {
			return errors.New("backend.etcd.endpoints must not be empty")
		}
	}

	engine := cfg.Engine()
	return engine.Validate()
}

// Engine converts cfg into the library configuration.
func (c *Config) Engine() goCred.Config {
	return goCred.Config{
		KDF: goCred.KDFConfig{
			N:                c.KDF.N,
			R:                c.KDF.R,
			P:                c.KDF.P,
			KeyLength:        c.KDF.KeyLength,
			MaxPasswordBytes: c.KDF.MaxPasswordBytes,
			SaltBase64:       c.KDF.Salt,
			PerRecordSalt:    c.KDF.PerRecordSalt,
			RecordSaltLength: c.KDF.RecordSaltLength,
		},
		Store: goCred.StoreConfig{
			KeyPrefix:      c.Store.KeyPrefix,
			RequestTimeout: c.Store.RequestTimeout,
		},
		Metrics: goCred.MetricsConfig{
			Enabled:                 c.Metrics.Enabled,
			EnableLatencyHistograms: c.Metrics.Enabled && c.Metrics.LatencyHistograms,
		},
	}
}
