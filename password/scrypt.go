package password

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/scrypt"
)

const (
	// DefaultN is the scrypt CPU/memory cost factor used for stored credentials.
	DefaultN = 16384
	// DefaultR is the scrypt block size.
	DefaultR = 8
	// DefaultP is the scrypt parallelism factor.
	DefaultP = 1
	// DefaultKeyLength is the derived hash length in bytes.
	DefaultKeyLength = 32
	// DefaultMaxPasswordBytes bounds the KDF input so a caller cannot make
	// a single derivation arbitrarily expensive.
	DefaultMaxPasswordBytes = 1024

	minKeyLength = 16
	maxRP        = 1 << 30
)

var (
	// ErrInvalidPassword is returned for an empty or over-long password.
	ErrInvalidPassword = errors.New("invalid password input")
	// ErrInvalidConfig is returned by NewScrypt for unusable parameters.
	ErrInvalidConfig = errors.New("invalid scrypt configuration")
	// ErrInvalidSalt is returned when Derive is called without a salt.
	ErrInvalidSalt = errors.New("invalid salt")
)

// Config holds the scrypt parameters. Zero values are not defaulted; use
// DefaultConfig as a starting point.
type Config struct {
	N                int
	R                int
	P                int
	KeyLength        int
	MaxPasswordBytes int
}

// DefaultConfig returns N=16384, r=8, p=1 with a 32-byte key.
func DefaultConfig() Config {
	return Config{
		N:                DefaultN,
		R:                DefaultR,
		P:                DefaultP,
		KeyLength:        DefaultKeyLength,
		MaxPasswordBytes: DefaultMaxPasswordBytes,
	}
}

// Scrypt derives fixed-length password hashes. It holds no mutable state and
// is safe for concurrent use.
type Scrypt struct {
	config Config
}

// NewScrypt validates cfg and returns a deriver bound to it.
func NewScrypt(cfg Config) (*Scrypt, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return &Scrypt{config: cfg}, nil
}

// KeyLength reports the length of every hash returned by Derive.
func (s *Scrypt) KeyLength() int {
	return s.config.KeyLength
}

// Derive computes scrypt(password, salt) with the configured parameters.
//
// Password processing uses raw string bytes exactly as provided (no Unicode normalization).
func (s *Scrypt) Derive(password string, salt []byte) ([]byte, error) {
	if len(password) == 0 {
		return nil, fmt.Errorf("%w: password is empty", ErrInvalidPassword)
	}
	if len(password) > s.config.MaxPasswordBytes {
		return nil, fmt.Errorf("%w: password exceeds %d bytes", ErrInvalidPassword, s.config.MaxPasswordBytes)
	}
	if len(salt) == 0 {
		return nil, ErrInvalidSalt
	}

	return scrypt.Key([]byte(password), salt, s.config.N, s.config.R, s.config.P, s.config.KeyLength)
}

// Verify derives password with salt and compares the result to expected in
// constant time.
func (s *Scrypt) Verify(password string, salt, expected []byte) (bool, error) {
	computed, err := s.Derive(password, salt)
	if err != nil {
		return false, err
	}
	return Equal(computed, expected), nil
}

// Equal reports whether a and b hold the same bytes without short-circuiting
// on the first difference.
func Equal(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}

// NewSalt returns n bytes from crypto/rand.
func NewSalt(n int) ([]byte, error) {
	if n < 8 {
		return nil, ErrInvalidSalt
	}
	salt := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, err
	}
	return salt, nil
}

// ValidateConfig checks the parameters without deriving anything.
func ValidateConfig(cfg Config) error {
	if cfg.N <= 1 || cfg.N&(cfg.N-1) != 0 {
		return fmt.Errorf("%w: N must be a power of two > 1", ErrInvalidConfig)
	}
	if cfg.R <= 0 {
		return fmt.Errorf("%w: r must be > 0", ErrInvalidConfig)
	}
	if cfg.P <= 0 {
		return fmt.Errorf("%w: p must be > 0", ErrInvalidConfig)
	}
	if uint64(cfg.R)*uint64(cfg.P) >= maxRP {
		return fmt.Errorf("%w: r*p must be < 2^30", ErrInvalidConfig)
	}
	if cfg.KeyLength < minKeyLength {
		return fmt.Errorf("%w: key length must be >= %d", ErrInvalidConfig, minKeyLength)
	}
	if cfg.MaxPasswordBytes <= 0 {
		return fmt.Errorf("%w: max password bytes must be > 0", ErrInvalidConfig)
	}
	return nil
}
