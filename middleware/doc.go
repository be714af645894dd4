// Package middleware adapts goCred.Engine verification to net/http.
//
// # Handlers
//
//   - [VerifyHandler] serves POST {"email","password"} and answers 204 or 401.
//   - [RequireBasicAuth] guards a handler with HTTP Basic credentials and
//     exposes the verified email through [EmailFromContext].
//
// Both map results the same way: a rejection of any kind is a 401 with one
// fixed body, [goCred.ErrInvalidInput] is a 400 (401 with a challenge for
// Basic auth), and [goCred.ErrServiceUnavailable] is a 503 with Retry-After.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. Every verdict is
// delegated to Verify.
//
// # What this package must NOT do
//
//   - Reveal which rejection reason applied.
//   - Log or echo request passwords.
//   - Access the credential store directly.
package middleware
