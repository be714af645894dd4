package goCred

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MrEthical07/goCred/password"
	"github.com/MrEthical07/goCred/record"
)

// Config is the complete Engine configuration. It is copied by
// [Builder.WithConfig] and treated as immutable afterwards.
type Config struct {
	KDF     KDFConfig
	Store   StoreConfig
	Metrics MetricsConfig
}

/*
====================================
KDF CONFIG
====================================
*/

// KDFConfig holds the scrypt parameters and the salt policy.
type KDFConfig struct {
	N                int
	R                int
	P                int
	KeyLength        int
	MaxPasswordBytes int

	// SaltBase64 is the process-wide salt used for version 1 records. It is
	// required even when PerRecordSalt is set, so existing records keep
	// verifying.
	SaltBase64 string

	// PerRecordSalt makes Enroll and ChangePassword write version 2 records
	// with a fresh random salt of RecordSaltLength bytes.
	PerRecordSalt    bool
	RecordSaltLength int
}

/*
====================================
STORE CONFIG
====================================
*/

// StoreConfig controls how records are addressed and how long a single
// store round-trip may take.
type StoreConfig struct {
	KeyPrefix      string
	RequestTimeout time.Duration
}

// MetricsConfig toggles the in-process counters and the verify latency histogram.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns scrypt N=16384, r=8, p=1 with a 32-byte hash, the
// "users/" key prefix and a 3s store timeout. SaltBase64 is left empty and
// must be supplied before Build.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		KDF: KDFConfig{
			N:                password.DefaultN,
			R:                password.DefaultR,
			P:                password.DefaultP,
			KeyLength:        password.DefaultKeyLength,
			MaxPasswordBytes: password.DefaultMaxPasswordBytes,
			RecordSaltLength: 16,
		},
		Store: StoreConfig{
			KeyPrefix:      record.DefaultKeyPrefix,
			RequestTimeout: 3 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	return cfg
}

func (k KDFConfig) passwordConfig() password.Config {
	return password.Config{
		N:                k.N,
		R:                k.R,
		P:                k.P,
		KeyLength:        k.KeyLength,
		MaxPasswordBytes: k.MaxPasswordBytes,
	}
}

// decodeSalt returns the process-wide salt.
func (k KDFConfig) decodeSalt() ([]byte, error) {
	if strings.TrimSpace(k.SaltBase64) == "" {
		return nil, errors.New("KDF SaltBase64 is required")
	}
	salt, err := base64.StdEncoding.DecodeString(k.SaltBase64)
	if err != nil {
		return nil, fmt.Errorf("KDF SaltBase64 is not valid base64: %v", err)
	}
	if len(salt) == 0 {
		return nil, errors.New("KDF SaltBase64 decodes to an empty salt")
	}
	return salt, nil
}

// Validate reports the first configuration problem found, wrapped in
// [ErrConfiguration].
func (c *Config) Validate() error {
	if err := c.validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	return nil
}

func (c *Config) validate() error {
	// KDF
	if err := password.ValidateConfig(c.KDF.passwordConfig()); err != nil {
		return err
	}
	if _, err := c.KDF.decodeSalt(); err != nil {
		return err
	}
	if c.KDF.PerRecordSalt && c.KDF.RecordSaltLength < 8 {
		return errors.New("KDF RecordSaltLength must be >= 8 when PerRecordSalt is enabled")
	}

	// Store
	if c.Store.KeyPrefix == "" {
		return errors.New("Store KeyPrefix must not be empty")
	}
	if c.Store.RequestTimeout <= 0 {
		return errors.New("Store RequestTimeout must be > 0")
	}

	// Metrics
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}

	return nil
}
