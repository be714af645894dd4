package goCred

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/MrEthical07/goCred/password"
	"github.com/MrEthical07/goCred/record"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Engine verifies and maintains credential records. It is immutable after
// [Builder.Build] and safe for concurrent use.
type Engine struct {
	config   Config
	store    CredentialStore
	kdf      *password.Scrypt
	codec    record.Codec
	salt     []byte
	logger   *slog.Logger
	metrics  *Metrics
	validate *validator.Validate
}

// MetricsSnapshot returns a copy of the engine counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:      map[MetricID]uint64{},
			Histograms:    map[MetricID][]uint64{},
			HistogramSums: map[MetricID]time.Duration{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) ready() bool {
	return e != nil && e.store != nil && e.kdf != nil
}

// Verify describes the verify operation and its observable behavior.
//
// Verify performs one store read and one key derivation. A missing or
// corrupt record and a wrong password are all reported as a rejected
// [VerificationResult] with a nil error, and each of them costs one
// derivation so the three cannot be told apart by timing. Verify returns an
// error wrapping [ErrInvalidInput] for an empty email or an empty or
// over-long password, and an error wrapping [ErrServiceUnavailable] when the
// store cannot answer within the configured timeout or ctx is done.
// A correct password for a record marked inactive is rejected with
// [ReasonInactive]. Verify never writes to the store.
func (e *Engine) Verify(ctx context.Context, email, pass string) (VerificationResult, error) {
	if !e.ready() {
		return VerificationResult{}, ErrEngineNotReady
	}
	if err := e.checkInput(email, pass); err != nil {
		e.metricInc(MetricVerifyInvalidInput)
		return VerificationResult{}, err
	}

	start := time.Now()

	raw, err := e.get(ctx, e.key(email))
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			e.burnDerivation(pass)
			e.finishVerify(start, MetricVerifyRejectedNoSuchUser)
			return rejected(ReasonNoSuchUser), nil
		}
		e.metricInc(MetricVerifyUnavailable)
		e.logger.Warn("credential store unavailable", "op", "verify", "error", err)
		return VerificationResult{}, fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
	}

	cred, err := e.codec.Decode(raw)
	if err != nil {
		e.logger.Warn("corrupt credential record", "email", email, "error", err)
		e.burnDerivation(pass)
		e.finishVerify(start, MetricVerifyRejectedCorruptRecord)
		return rejected(ReasonCorruptRecord), nil
	}

	ok, err := e.kdf.Verify(pass, e.saltFor(cred), cred.PasswordHash)
	if err != nil {
		e.metricInc(MetricVerifyInvalidInput)
		return VerificationResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if !ok {
		e.finishVerify(start, MetricVerifyRejectedWrongPassword)
		return rejected(ReasonWrongPassword), nil
	}
	if cred.Inactive {
		e.finishVerify(start, MetricVerifyRejectedInactive)
		return rejected(ReasonInactive), nil
	}

	e.finishVerify(start, MetricVerifyAccepted)
	return accepted(), nil
}

// Enroll describes the enroll operation and its observable behavior.
//
// Enroll validates email, derives the hash and creates the record only if
// none exists. It returns [ErrAccountExists] when the email is taken,
// [ErrInvalidInput] for a malformed email or unusable password, and an error
// wrapping [ErrServiceUnavailable] on store faults.
func (e *Engine) Enroll(ctx context.Context, email, pass string) (Account, error) {
	if !e.ready() {
		return Account{}, ErrEngineNotReady
	}
	if err := e.checkInput(email, pass); err != nil {
		return Account{}, err
	}
	if err := e.validate.Var(email, "required,email"); err != nil {
		return Account{}, fmt.Errorf("%w: email is not a valid address", ErrInvalidInput)
	}

	cred := &record.Credential{
		Email: email,
		UID:   uuid.NewString(),
	}
	if err := e.setPassword(cred, pass); err != nil {
		return Account{}, err
	}
	raw, err := e.codec.Encode(cred)
	if err != nil {
		return Account{}, err
	}

	err = e.compareAndSwap(ctx, e.key(email), nil, raw)
	switch {
	case err == nil:
	case errors.Is(err, ErrStoreConflict):
		e.metricInc(MetricEnrollDuplicate)
		return Account{}, ErrAccountExists
	default:
		e.logger.Warn("credential store unavailable", "op", "enroll", "error", err)
		return Account{}, fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
	}

	e.metricInc(MetricEnrollSuccess)
	e.logger.Info("credential enrolled", "email", email, "uid", cred.UID, "version", cred.Version)

	return Account{Email: cred.Email, UID: cred.UID, Version: cred.Version}, nil
}

// ChangePassword replaces the password of an existing record after
// verifying the current one.
//
// The write is a compare-and-swap against the exact bytes read, so a
// concurrent change makes this call fail with [ErrStoreConflict] instead of
// silently overwriting. A missing record, a corrupt record, an inactive
// record and a wrong old password all return [ErrInvalidCredentials].
func (e *Engine) ChangePassword(ctx context.Context, email, oldPass, newPass string) error {
	if !e.ready() {
		return ErrEngineNotReady
	}
	if err := e.checkInput(email, oldPass); err != nil {
		return err
	}
	if err := e.checkPassword(newPass); err != nil {
		return err
	}

	key := e.key(email)
	raw, err := e.get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			e.burnDerivation(oldPass)
			e.metricInc(MetricPasswordChangeInvalidOld)
			return ErrInvalidCredentials
		}
		e.logger.Warn("credential store unavailable", "op", "change_password", "error", err)
		return fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
	}

	cred, err := e.codec.Decode(raw)
	if err != nil {
		e.logger.Warn("corrupt credential record", "email", email, "error", err)
		e.burnDerivation(oldPass)
		e.metricInc(MetricPasswordChangeInvalidOld)
		return ErrInvalidCredentials
	}

	ok, err := e.kdf.Verify(oldPass, e.saltFor(cred), cred.PasswordHash)
	if err != nil || !ok || cred.Inactive {
		e.metricInc(MetricPasswordChangeInvalidOld)
		return ErrInvalidCredentials
	}

	next := &record.Credential{Email: cred.Email, UID: cred.UID}
	if err := e.setPassword(next, newPass); err != nil {
		return err
	}
	updated, err := e.codec.Encode(next)
	if err != nil {
		return err
	}

	err = e.compareAndSwap(ctx, key, raw, updated)
	switch {
	case err == nil:
	case errors.Is(err, ErrStoreConflict):
		e.metricInc(MetricPasswordChangeConflict)
		return ErrStoreConflict
	default:
		e.logger.Warn("credential store unavailable", "op", "change_password", "error", err)
		return fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
	}

	e.metricInc(MetricPasswordChangeSuccess)
	e.logger.Info("credential password changed", "email", email, "version", next.Version)
	return nil
}

func (e *Engine) key(email string) string {
	return record.Key(e.config.Store.KeyPrefix, email)
}

func (e *Engine) get(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, e.config.Store.RequestTimeout)
	defer cancel()
	return e.store.Get(ctx, key)
}

func (e *Engine) compareAndSwap(ctx context.Context, key string, expected, value []byte) error {
	ctx, cancel := context.WithTimeout(ctx, e.config.Store.RequestTimeout)
	defer cancel()
	return e.store.CompareAndSwap(ctx, key, expected, value)
}

func (e *Engine) checkInput(email, pass string) error {
	if strings.TrimSpace(email) == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	return e.checkPassword(pass)
}

func (e *Engine) checkPassword(pass string) error {
	if pass == "" {
		return fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	if len(pass) > e.config.KDF.MaxPasswordBytes {
		return fmt.Errorf("%w: password exceeds %d bytes", ErrInvalidInput, e.config.KDF.MaxPasswordBytes)
	}
	return nil
}

// saltFor returns the record's own salt for version 2 records and the
// process-wide salt otherwise.
func (e *Engine) saltFor(cred *record.Credential) []byte {
	if cred.Version == record.VersionRecordSalt {
		return cred.Salt
	}
	return e.salt
}

// setPassword fills hash, salt and version according to the salt policy.
func (e *Engine) setPassword(cred *record.Credential, pass string) error {
	salt := e.salt
	cred.Version = record.VersionGlobalSalt
	cred.Salt = nil
	if e.config.KDF.PerRecordSalt {
		fresh, err := password.NewSalt(e.config.KDF.RecordSaltLength)
		if err != nil {
			return err
		}
		salt = fresh
		cred.Version = record.VersionRecordSalt
		cred.Salt = fresh
	}

	hash, err := e.kdf.Derive(pass, salt)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	cred.PasswordHash = hash
	return nil
}

// burnDerivation spends one derivation on a rejection path that would
// otherwise return without one.
func (e *Engine) burnDerivation(pass string) {
	_, _ = e.kdf.Derive(pass, e.salt)
}

func (e *Engine) finishVerify(start time.Time, outcome MetricID) {
	e.metricInc(outcome)
	if e.metrics.LatencyEnabled() {
		e.metrics.Observe(MetricVerifyLatency, time.Since(start))
	}
}
