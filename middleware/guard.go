package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	goCred "github.com/MrEthical07/goCred"
)

type emailContextKey struct{}

// EmailFromContext returns the email verified by [RequireBasicAuth].
func EmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(emailContextKey{}).(string)
	return email, ok && email != ""
}

// RequireBasicAuth only lets requests through whose Basic credentials verify.
// Missing or rejected credentials get a 401 with a WWW-Authenticate challenge
// for realm.
func RequireBasicAuth(v Verifier, realm string) func(http.Handler) http.Handler {
	challenge := "Basic realm=" + strconv.Quote(realm) + `, charset="UTF-8"`

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if v == nil {
				writeUnavailable(w)
				return
			}

			email, pass, ok := r.BasicAuth()
			if !ok {
				w.Header().Set("WWW-Authenticate", challenge)
				writeUnauthorized(w)
				return
			}

			res, err := v.Verify(r.Context(), email, pass)
			if err != nil {
				if errors.Is(err, goCred.ErrServiceUnavailable) || !errors.Is(err, goCred.ErrInvalidInput) {
					writeUnavailable(w)
					return
				}
				w.Header().Set("WWW-Authenticate", challenge)
				writeUnauthorized(w)
				return
			}
			if !res.Accepted {
				w.Header().Set("WWW-Authenticate", challenge)
				writeUnauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), emailContextKey{}, email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
