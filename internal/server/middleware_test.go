package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/corelabs/core/internal/common"
	"github.com/corelabs/core/internal/interfaces"
	"github.com/corelabs/core/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

const testJWTSecret = "unit-test-secret"

// stubInternalStore returns a canned user record for the role fallback path.
type stubInternalStore struct {
	user *models.InternalUser
}

func (s *stubInternalStore) GetUser(_ context.Context, userID string) (*models.InternalUser, error) {
	if s.user != nil && s.user.ID == userID {
		return s.user, nil
	}
	return nil, interfaces.ErrNotFound
}

func (s *stubInternalStore) SaveUser(_ context.Context, _ *models.InternalUser) error { return nil }
func (s *stubInternalStore) DeleteUser(_ context.Context, _ string) error             { return nil }
func (s *stubInternalStore) ListUsers(_ context.Context) ([]string, error)            { return nil, nil }
func (s *stubInternalStore) GetUserKV(_ context.Context, _, _ string) (*models.UserKeyValue, error) {
	return nil, interfaces.ErrNotFound
}
func (s *stubInternalStore) SetUserKV(_ context.Context, _, _, _ string) error    { return nil }
func (s *stubInternalStore) DeleteUserKV(_ context.Context, _, _ string) error    { return nil }
func (s *stubInternalStore) GetSystemKV(_ context.Context, _ string) (string, error) { return "", nil }
func (s *stubInternalStore) SetSystemKV(_ context.Context, _, _ string) error     { return nil }
func (s *stubInternalStore) Close() error                                         { return nil }

func signTestToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func newAuthTestHandler(captured **common.UserContext) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*captured = common.UserContextFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func authConfig() *common.Config {
	cfg := common.NewDefaultConfig()
	cfg.Auth.JWTSecret = testJWTSecret
	return cfg
}

func TestBearerToken_ValidTokenSetsIdentity(t *testing.T) {
	var captured *common.UserContext
	handler := bearerTokenMiddleware(authConfig(), nil)(newAuthTestHandler(&captured))

	token := signTestToken(t, jwt.MapClaims{
		"sub":  "alice",
		"role": models.RoleAdmin,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/api/portfolios/alice", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if captured == nil {
		t.Fatal("user context not set")
	}
	if captured.UserID != "alice" || captured.Role != models.RoleAdmin {
		t.Errorf("identity = %+v", captured)
	}
}

func TestBearerToken_RoleFallsBackToUserRecord(t *testing.T) {
	store := &stubInternalStore{user: &models.InternalUser{ID: "alice", Role: models.RoleAdmin}}
	var captured *common.UserContext
	handler := bearerTokenMiddleware(authConfig(), store)(newAuthTestHandler(&captured))

	// No role claim in the token
	token := signTestToken(t, jwt.MapClaims{
		"sub": "alice",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/api/portfolios/alice", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if captured == nil {
		t.Fatal("user context not set")
	}
	if captured.Role != models.RoleAdmin {
		t.Errorf("role = %q, want admin from user record", captured.Role)
	}
}

func TestBearerToken_NoHeaderPassesThroughAnonymous(t *testing.T) {
	var captured *common.UserContext
	handler := bearerTokenMiddleware(authConfig(), nil)(newAuthTestHandler(&captured))

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if captured != nil {
		t.Errorf("expected anonymous request, got identity %+v", captured)
	}
}

func TestBearerToken_InvalidTokenIs401(t *testing.T) {
	var captured *common.UserContext
	handler := bearerTokenMiddleware(authConfig(), nil)(newAuthTestHandler(&captured))

	cases := map[string]string{
		"garbage":      "Bearer not-a-jwt",
		"wrong secret": "Bearer " + func() string {
			token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "alice"})
			signed, _ := token.SignedString([]byte("some-other-secret"))
			return signed
		}(),
	}

	for name, header := range cases {
		req := httptest.NewRequest(http.MethodGet, "/api/portfolios/alice", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: got %d, want 401", name, rec.Code)
		}
		if rec.Header().Get("WWW-Authenticate") != "Bearer" {
			t.Errorf("%s: missing WWW-Authenticate header", name)
		}
	}
	if captured != nil {
		t.Errorf("handler should not run for invalid tokens, got identity %+v", captured)
	}
}

func TestBearerToken_ExpiredTokenIs401(t *testing.T) {
	var captured *common.UserContext
	handler := bearerTokenMiddleware(authConfig(), nil)(newAuthTestHandler(&captured))

	token := signTestToken(t, jwt.MapClaims{
		"sub": "alice",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/api/portfolios/alice", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expired token: got %d, want 401", rec.Code)
	}
}

func TestCorrelationIDMiddleware(t *testing.T) {
	handler := correlationIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// Caller-provided ID is echoed back
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Correlation-ID"); got != "req-123" {
		t.Errorf("X-Correlation-ID = %q, want req-123", got)
	}

	// Otherwise one is generated
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if got := rec.Header().Get("X-Correlation-ID"); len(got) != 8 {
		t.Errorf("generated correlation ID = %q, want 8 chars", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	handler := corsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("preflight should not reach the next handler")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/portfolios/alice", nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight: got %d, want 204", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing Access-Control-Allow-Origin header")
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := recoveryMiddleware(common.NewSilentLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("panic: got %d, want 500", rec.Code)
	}
}
