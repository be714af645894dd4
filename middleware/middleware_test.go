package middleware

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	goCred "github.com/MrEthical07/goCred"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type stubVerifier struct {
	res    goCred.VerificationResult
	err    error
	calls  int
	emails []string
}

func (s *stubVerifier) Verify(_ context.Context, email, _ string) (goCred.VerificationResult, error) {
	s.calls++
	s.emails = append(s.emails, email)
	return s.res, s.err
}

func postVerify(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/verify", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestVerifyHandlerAccepted(t *testing.T) {
	v := &stubVerifier{res: goCred.VerificationResult{Accepted: true}}
	rec := postVerify(t, VerifyHandler(v), `{"email":"a@b.com","password":"pw"}`)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if v.emails[0] != "a@b.com" {
		t.Fatalf("unexpected email %q", v.emails[0])
	}
}

func TestVerifyHandlerUniformRejection(t *testing.T) {
	var bodies []string
	for _, reason := range []goCred.RejectReason{goCred.ReasonNoSuchUser, goCred.ReasonWrongPassword, goCred.ReasonCorruptRecord, goCred.ReasonInactive} {
		v := &stubVerifier{res: goCred.VerificationResult{Reason: reason}}
		rec := postVerify(t, VerifyHandler(v), `{"email":"a@b.com","password":"pw"}`)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%v: expected 401, got %d", reason, rec.Code)
		}
		bodies = append(bodies, rec.Body.String())
	}
	for _, b := range bodies[1:] {
		if b != bodies[0] {
			t.Fatalf("rejection bodies differ: %q", bodies)
		}
	}
}

func TestVerifyHandlerUnavailable(t *testing.T) {
	v := &stubVerifier{err: fmt.Errorf("%w: boom", goCred.ErrServiceUnavailable)}
	rec := postVerify(t, VerifyHandler(v), `{"email":"a@b.com","password":"pw"}`)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}
}

func TestVerifyHandlerBadRequests(t *testing.T) {
	cases := []struct {
		name string
		body string
		err  error
	}{
		{"not json", `nope`, nil},
		{"unknown field", `{"email":"a@b.com","password":"pw","admin":true}`, nil},
		{"invalid input", `{"email":"","password":""}`, fmt.Errorf("%w: email is required", goCred.ErrInvalidInput)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := &stubVerifier{err: tc.err}
			rec := postVerify(t, VerifyHandler(v), tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestVerifyHandlerRejectsGet(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/verify", nil)
	rec := httptest.NewRecorder()
	VerifyHandler(&stubVerifier{}).ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestRequireBasicAuth(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email, ok := EmailFromContext(r.Context())
		if !ok {
			t.Fatal("expected email in context")
		}
		_, _ = io.WriteString(w, email)
	})

	cases := []struct {
		name       string
		verifier   *stubVerifier
		setAuth    bool
		wantStatus int
		wantCalls  int
	}{
		{"accepted", &stubVerifier{res: goCred.VerificationResult{Accepted: true}}, true, http.StatusOK, 1},
		{"rejected", &stubVerifier{res: goCred.VerificationResult{Reason: goCred.ReasonWrongPassword}}, true, http.StatusUnauthorized, 1},
		{"missing header", &stubVerifier{}, false, http.StatusUnauthorized, 0},
		{"invalid input", &stubVerifier{err: goCred.ErrInvalidInput}, true, http.StatusUnauthorized, 1},
		{"unavailable", &stubVerifier{err: goCred.ErrServiceUnavailable}, true, http.StatusServiceUnavailable, 1},
		{"unknown error", &stubVerifier{err: errors.New("boom")}, true, http.StatusServiceUnavailable, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tc.setAuth {
				req.SetBasicAuth("a@b.com", "pw")
			}
			rec := httptest.NewRecorder()
			RequireBasicAuth(tc.verifier, "gocred")(next).ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d", tc.wantStatus, rec.Code)
			}
			if tc.verifier.calls != tc.wantCalls {
				t.Fatalf("expected %d verify calls, got %d", tc.wantCalls, tc.verifier.calls)
			}
			if rec.Code == http.StatusUnauthorized && !strings.HasPrefix(rec.Header().Get("WWW-Authenticate"), "Basic ") {
				t.Fatal("expected Basic challenge")
			}
			if rec.Code == http.StatusOK && rec.Body.String() != "a@b.com" {
				t.Fatalf("unexpected body %q", rec.Body.String())
			}
		})
	}
}

func TestVerifyHandlerWithEngine(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start failed: %v", err)
	}
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	cfg := goCred.DefaultConfig()
	cfg.KDF.N = 1024
	cfg.KDF.SaltBase64 = base64.StdEncoding.EncodeToString([]byte("middleware-salt!"))
	engine, err := goCred.New().WithConfig(cfg).WithRedis(rdb).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if _, err := engine.Enroll(context.Background(), "alice@example.com", "correct-horse"); err != nil {
		t.Fatalf("Enroll failed: %v", err)
	}

	h := VerifyHandler(engine)
	if rec := postVerify(t, h, `{"email":"alice@example.com","password":"correct-horse"}`); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	wrong := postVerify(t, h, `{"email":"alice@example.com","password":"wrong"}`)
	missing := postVerify(t, h, `{"email":"bob@example.com","password":"x"}`)
	if wrong.Code != http.StatusUnauthorized || missing.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401s, got %d and %d", wrong.Code, missing.Code)
	}
	if wrong.Body.String() != missing.Body.String() {
		t.Fatal("wrong password and unknown user must be indistinguishable")
	}

	mr.Close()
	if rec := postVerify(t, h, `{"email":"alice@example.com","password":"correct-horse"}`); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 after store loss, got %d", rec.Code)
	}
}
