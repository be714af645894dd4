// Package password implements the key derivation used for stored credentials.
//
// # Algorithm
//
// Hashes are raw scrypt output (N=16384, r=8, p=1, 32 bytes by default). The
// salt is supplied by the caller: either the process-wide salt from
// configuration (version 1 records) or a per-record salt from [NewSalt]
// (version 2 records).
//
// # Architecture boundaries
//
// This package owns derivation and constant-time comparison only. Record
// encoding lives in package record; lookup and decisions live in the Engine.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords. Callers supply plaintext and receive hashes.
//   - Import any other goCred package.
//   - Log plaintext passwords or salts at runtime.
package password
