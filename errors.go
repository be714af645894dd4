package goCred

import (
	"errors"

	"github.com/MrEthical07/goCred/internal/stores"
)

var (
	// ErrInvalidInput is returned for an empty email or an empty or over-long password.
	ErrInvalidInput = errors.New("invalid input")
	// ErrConfiguration is returned by Build for unusable KDF, salt or store settings.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrServiceUnavailable is returned by Verify when the credential store
	// could not answer. Callers should treat it as retryable, never as a rejection.
	ErrServiceUnavailable = errors.New("credential service unavailable")
	// ErrEngineNotReady is returned by methods on a nil or partially built Engine.
	ErrEngineNotReady = errors.New("engine not initialized")

	// ErrRecordNotFound must be returned by CredentialStore.Get for a missing key.
	ErrRecordNotFound = stores.ErrNotFound
	// ErrStoreUnavailable must wrap every CredentialStore transport or backend fault.
	ErrStoreUnavailable = stores.ErrUnavailable
	// ErrStoreConflict must be returned by CredentialStore.CompareAndSwap when
	// the expected value no longer matches.
	ErrStoreConflict = stores.ErrConflict

	// ErrAccountExists is returned by Enroll when the email already has a record.
	ErrAccountExists = errors.New("account already exists")
	// ErrInvalidCredentials is returned by ChangePassword when the current
	// password does not verify.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
