package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	goCred "github.com/MrEthical07/goCred"
)

// Verifier is the part of *goCred.Engine the handlers need.
type Verifier interface {
	Verify(ctx context.Context, email, password string) (goCred.VerificationResult, error)
}

const retryAfterSeconds = "1"

type errorBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Error: msg})
}

func writeUnauthorized(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "invalid credentials")
}

func writeUnavailable(w http.ResponseWriter) {
	w.Header().Set("Retry-After", retryAfterSeconds)
	writeError(w, http.StatusServiceUnavailable, "credential service unavailable")
}

// writeVerifyError reports whether err was one of the known Verify errors.
func writeVerifyError(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, goCred.ErrServiceUnavailable):
		writeUnavailable(w)
	case errors.Is(err, goCred.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "email and password are required")
	default:
		return false
	}
	return true
}
