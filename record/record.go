package record

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"
)

const (
	// VersionGlobalSalt marks records hashed with the process-wide salt.
	VersionGlobalSalt = 1
	// VersionRecordSalt marks records that carry their own salt.
	VersionRecordSalt = 2

	// DefaultHashLength is the derived hash length expected by Decode.
	DefaultHashLength = 32
	// DefaultKeyPrefix namespaces credential records in the store.
	DefaultKeyPrefix = "users/"

	minSaltLength = 8
)

// ErrMalformed is returned for any record that cannot be decoded into a
// well-formed Credential, and by Encode for a record that would not decode.
var ErrMalformed = errors.New("malformed credential record")

// Credential is the decoded form of a stored user record.
//
// Inactive mirrors the wire field "active" inverted, so the zero value is an
// active account. A record without "active" decodes as active.
type Credential struct {
	Email        string
	UID          string
	PasswordHash []byte
	Salt         []byte
	Version      int
	Inactive     bool
}

type wireIn struct {
	Email    *string `json:"email"`
	UID      string  `json:"uid"`
	Password *string `json:"password"`
	Salt     string  `json:"salt"`
	Version  *int    `json:"version"`
	Active   *bool   `json:"active"`
}

type wireOut struct {
	Email    string `json:"email"`
	UID      string `json:"uid,omitempty"`
	Password string `json:"password"`
	Salt     string `json:"salt,omitempty"`
	Version  int    `json:"version"`
	Active   bool   `json:"active"`
}

// Codec encodes and decodes records whose hash is exactly HashLength bytes.
type Codec struct {
	HashLength int
}

// NewCodec returns a codec for hashLength-byte hashes.
func NewCodec(hashLength int) Codec {
	return Codec{HashLength: hashLength}
}

var defaultCodec = NewCodec(DefaultHashLength)

// Encode encodes c with a 32-byte hash length.
func Encode(c *Credential) ([]byte, error) { return defaultCodec.Encode(c) }

// Decode decodes raw with a 32-byte hash length.
func Decode(raw []byte) (*Credential, error) { return defaultCodec.Decode(raw) }

// Key maps an email to its storage key.
func Key(prefix, email string) string {
	return prefix + email
}

// Encode serializes c. It fails with ErrMalformed rather than write a record
// Decode would reject.
func (cd Codec) Encode(c *Credential) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: nil record", ErrMalformed)
	}
	if err := cd.check(c); err != nil {
		return nil, err
	}

	out := wireOut{
		Email:    c.Email,
		UID:      c.UID,
		Password: base64.StdEncoding.EncodeToString(c.PasswordHash),
		Version:  c.Version,
		Active:   !c.Inactive,
	}
	if c.Version == VersionRecordSalt {
		out.Salt = base64.StdEncoding.EncodeToString(c.Salt)
	}

	return json.Marshal(out)
}

// Decode parses raw into a Credential.
func (cd Codec) Decode(raw []byte) (*Credential, error) {
	var in wireIn
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if in.Email == nil || in.Password == nil || in.Version == nil {
		return nil, fmt.Errorf("%w: missing required field", ErrMalformed)
	}

	hash, err := base64.StdEncoding.DecodeString(*in.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: password is not base64", ErrMalformed)
	}

	c := &Credential{
		Email:        *in.Email,
		UID:          in.UID,
		PasswordHash: hash,
		Version:      *in.Version,
		Inactive:     in.Active != nil && !*in.Active,
	}
	if in.Salt != "" {
		salt, err := base64.StdEncoding.DecodeString(in.Salt)
		if err != nil {
			return nil, fmt.Errorf("%w: salt is not base64", ErrMalformed)
		}
		c.Salt = salt
	}

	if err := cd.check(c); err != nil {
		return nil, err
	}
	return c, nil
}

func (cd Codec) check(c *Credential) error {
	if c.Email == "" {
		return fmt.Errorf("%w: empty email", ErrMalformed)
	}
	if !utf8.ValidString(c.Email) {
		return fmt.Errorf("%w: email is not valid UTF-8", ErrMalformed)
	}
	if len(c.PasswordHash) != cd.HashLength {
		return fmt.Errorf("%w: password hash must be %d bytes, got %d", ErrMalformed, cd.HashLength, len(c.PasswordHash))
	}

	switch c.Version {
	case VersionGlobalSalt:
		if len(c.Salt) != 0 {
			return fmt.Errorf("%w: version 1 record carries a salt", ErrMalformed)
		}
	case VersionRecordSalt:
		if len(c.Salt) < minSaltLength {
			return fmt.Errorf("%w: version 2 record requires a salt", ErrMalformed)
		}
	default:
		return fmt.Errorf("%w: unsupported version %d", ErrMalformed, c.Version)
	}

	return nil
}
