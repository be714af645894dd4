// Package goCred verifies email/password credentials against records held in
// a distributed key-value store.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// goCred is the public surface. It exposes [Engine], [Builder], [Config], the
// [CredentialStore] contract and value types ([VerificationResult],
// MetricsSnapshot). Backend adapters live under internal/stores, key
// derivation in package password and the persisted format in package record.
//
// # What this package must NOT do
//
//   - Issue sessions or tokens; a successful Verify is the whole answer.
//   - Log, cache or return plaintext passwords.
//   - Report a store outage as a rejected credential, or the reverse.
//
// # Performance contract
//
// Verify performs exactly one store read and one scrypt derivation. Store
// reads are bounded by [StoreConfig.RequestTimeout]; the derivation is not
// cancellable.
package goCred
