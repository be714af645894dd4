package middleware

import (
	"encoding/json"
	"net/http"
)

const maxVerifyBody = 8 << 10

type verifyRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// VerifyHandler answers credential checks posted as JSON.
//
// Accepted pairs get 204 with no body. Every rejection gets the same 401
// body, so callers cannot tell an unknown email from a wrong password.
func VerifyHandler(v Verifier) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		if v == nil {
			writeUnavailable(w)
			return
		}

		var req verifyRequest
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxVerifyBody))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "malformed request body")
			return
		}

		res, err := v.Verify(r.Context(), req.Email, req.Password)
		if err != nil {
			if !writeVerifyError(w, err) {
				writeUnavailable(w)
			}
			return
		}
		if !res.Accepted {
			writeUnauthorized(w)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	})
}
