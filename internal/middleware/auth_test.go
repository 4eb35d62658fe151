package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Almer24/it-ticketing-system/internal/config"
	"github.com/Almer24/it-ticketing-system/internal/utils"
)

const testSecret = "test-secret"

func authedRequest(t *testing.T, uid, role string) *http.Request {
	t.Helper()
	tok, err := utils.SignJWT(testSecret, uid, role, time.Hour)
	if err != nil {
		t.Fatalf("SignJWT: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	return req
}

func TestWithAuthSetsContext(t *testing.T) {
	cfg := config.Config{SessionSecret: testSecret}
	var gotUID, gotRole string
	h := WithAuth(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUID, _ = utils.GetString(r.Context(), CtxUserID)
		gotRole, _ = utils.GetString(r.Context(), CtxRole)
	}))

	h.ServeHTTP(httptest.NewRecorder(), authedRequest(t, "u-1", "admin"))
	if gotUID != "u-1" || gotRole != "admin" {
		t.Errorf("ctx = (%q, %q), want (u-1, admin)", gotUID, gotRole)
	}
}

func TestWithAuthAcceptsSessionCookie(t *testing.T) {
	cfg := config.Config{SessionSecret: testSecret}
	tok, _ := utils.SignJWT(testSecret, "u-2", "it", time.Hour)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: tok})

	var gotUID string
	h := WithAuth(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUID, _ = utils.GetString(r.Context(), CtxUserID)
	}))
	h.ServeHTTP(httptest.NewRecorder(), req)
	if gotUID != "u-2" {
		t.Errorf("uid = %q, want u-2", gotUID)
	}
}

func TestWithAuthClearsBadCookie(t *testing.T) {
	cfg := config.Config{SessionSecret: testSecret}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "garbage"})

	var gotUID string
	rec := httptest.NewRecorder()
	h := WithAuth(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUID, _ = utils.GetString(r.Context(), CtxUserID)
	}))
	h.ServeHTTP(rec, req)

	if gotUID != "" {
		t.Errorf("uid = %q, want empty for bad token", gotUID)
	}
	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session" && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Errorf("broken session cookie was not cleared")
	}
}

func TestRequireAuth(t *testing.T) {
	cfg := config.Config{SessionSecret: testSecret}
	h := WithAuth(cfg)(RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous: status = %d, want 401", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, authedRequest(t, "u-1", "user"))
	if rec.Code != http.StatusOK {
		t.Errorf("authed: status = %d, want 200", rec.Code)
	}
}

func TestRequireRoles(t *testing.T) {
	cfg := config.Config{SessionSecret: testSecret}
	h := WithAuth(cfg)(RequireRoles("admin", "it")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	tests := []struct {
		role       string
		wantStatus int
	}{
		{"admin", http.StatusOK},
		{"it", http.StatusOK},
		{"user", http.StatusForbidden},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, authedRequest(t, "u-1", tt.role))
		if rec.Code != tt.wantStatus {
			t.Errorf("role %q: status = %d, want %d", tt.role, rec.Code, tt.wantStatus)
		}
	}
}
