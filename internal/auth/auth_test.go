package auth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/madhava-poojari/educonnect-api/internal/config"
	"github.com/madhava-poojari/educonnect-api/internal/models"
	"github.com/madhava-poojari/educonnect-api/internal/session"
	"github.com/madhava-poojari/educonnect-api/internal/store"
	"github.com/sirupsen/logrus"
)

func testConfig() *config.Config {
	return &config.Config{JWTSecret: "test-secret", AccessTokenTTL: time.Minute}
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestTokenRoundTrip(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	tok, err := GenerateAccessToken(cfg, "USR00DEMOT", models.RoleTutor)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := ParseAndValidateToken(cfg, tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != "USR00DEMOT" || claims.Role != models.RoleTutor {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestParseRejectsBadTokens(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	other := &config.Config{JWTSecret: "other", AccessTokenTTL: time.Minute}
	forged, _ := GenerateAccessToken(other, "USR00DEMOT", models.RoleTutor)
	expired, _ := GenerateAccessToken(&config.Config{JWTSecret: cfg.JWTSecret, AccessTokenTTL: -time.Minute}, "USR00DEMOT", models.RoleTutor)
	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "x"}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	for name, tok := range map[string]string{"forged": forged, "expired": expired, "none": none, "garbage": "abc.def.ghi"} {
		if _, err := ParseAndValidateToken(cfg, tok); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func guarded(t *testing.T, mw func(http.Handler) http.Handler) (http.Handler, *store.MemoryStore) {
	t.Helper()
	repo := store.NewMemoryStore()
	if err := store.Seed(context.Background(), repo, ""); err != nil {
		t.Fatalf("seed: %v", err)
	}
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u := GetUserFromCtx(r)
		_, _ = io.WriteString(w, u.ID)
	})
	return Authenticate(testConfig(), repo, quietLogger())(mw(ok)), repo
}

type envelope struct {
	Success bool `json:"success"`
	Data    struct {
		Redirect string `json:"redirect"`
	} `json:"data"`
}

func TestRequireRole(t *testing.T) {
	t.Parallel()

	h, _ := guarded(t, RequireRole(models.RoleTutor))
	tutorTok, _ := GenerateAccessToken(testConfig(), store.DemoTutorUserID, models.RoleTutor)
	studentTok, _ := GenerateAccessToken(testConfig(), store.DemoStudentID, models.RoleStudent)
	ghostTok, _ := GenerateAccessToken(testConfig(), "USR00GHOST", models.RoleTutor)

	cases := []struct {
		name     string
		token    string
		status   int
		redirect string
	}{
		{"no token", "", http.StatusUnauthorized, "/login"},
		{"bad token", "nope", http.StatusUnauthorized, "/login"},
		{"unknown user", ghostTok, http.StatusUnauthorized, "/login"},
		{"wrong role", studentTok, http.StatusForbidden, "/"},
		{"tutor", tutorTok, http.StatusOK, ""},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/api/dashboard/tutor", nil)
		if tc.token != "" {
			req.Header.Set("Authorization", "Bearer "+tc.token)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != tc.status {
			t.Fatalf("%s: status = %d, want %d", tc.name, rec.Code, tc.status)
		}
		if tc.status == http.StatusOK {
			if rec.Body.String() != store.DemoTutorUserID {
				t.Fatalf("%s: body = %q", tc.name, rec.Body.String())
			}
			continue
		}
		var env envelope
		if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
			t.Fatalf("%s: decode: %v", tc.name, err)
		}
		if env.Success || env.Data.Redirect != tc.redirect {
			t.Fatalf("%s: envelope = %+v", tc.name, env)
		}
	}
}

func TestRequireRoleUsesStoredRoleNotTokenRole(t *testing.T) {
	t.Parallel()

	h, _ := guarded(t, RequireRole(models.RoleTutor))
	// a student holding a token that claims tutor is still a student
	tok, _ := GenerateAccessToken(testConfig(), store.DemoStudentID, models.RoleTutor)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestRequireUser(t *testing.T) {
	t.Parallel()

	h, _ := guarded(t, RequireUser)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}

	tok, _ := GenerateAccessToken(testConfig(), store.DemoStudentID, models.RoleStudent)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != store.DemoStudentID {
		t.Fatalf("status = %d body = %q", rec.Code, rec.Body.String())
	}
	if s := session.FromContext(req.Context()); s.Authenticated() {
		t.Fatal("middleware must not mutate the caller's request context")
	}
}
