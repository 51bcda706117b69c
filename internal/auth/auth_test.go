package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestSessionRoundTrip(t *testing.T) {
	s := NewSessions("test-secret", 60)

	rec := httptest.NewRecorder()
	if err := s.Issue(rec); err != nil {
		t.Fatalf("Issue: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "innkeep_admin" {
		t.Fatalf("unexpected cookies: %v", cookies)
	}

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(cookies[0])
	if !s.IsAuthenticated(req) {
		t.Fatal("issued session must authenticate")
	}
}

func TestSessionRejectsGarbageAndForeignSecret(t *testing.T) {
	s := NewSessions("test-secret", 60)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	if s.IsAuthenticated(req) {
		t.Fatal("no cookie must not authenticate")
	}

	req.AddCookie(&http.Cookie{Name: "innkeep_admin", Value: "garbage"})
	if s.IsAuthenticated(req) {
		t.Fatal("garbage token must not authenticate")
	}

	other := NewSessions("other-secret", 60)
	rec := httptest.NewRecorder()
	_ = other.Issue(rec)
	req2 := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req2.AddCookie(rec.Result().Cookies()[0])
	if s.IsAuthenticated(req2) {
		t.Fatal("token signed with another secret must not authenticate")
	}
}

func TestRequirePageRedirects(t *testing.T) {
	s := NewSessions("test-secret", 60)
	called := false
	h := s.RequirePage(func(w http.ResponseWriter, r *http.Request) { called = true })

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))
	if called {
		t.Fatal("handler must not run unauthenticated")
	}
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/admin/login" {
		t.Fatalf("want redirect to /admin/login, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestCSRFRoundTrip(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	token := EnsureCSRFToken(rec, req)
	if token == "" {
		t.Fatal("empty csrf token")
	}

	form := url.Values{"csrf_token": {token}}
	post := httptest.NewRequest(http.MethodPost, "/admin/x", strings.NewReader(form.Encode()))
	post.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	post.AddCookie(&http.Cookie{Name: "innkeep_csrf", Value: token})
	if err := ProtectCSRF(post); err != nil {
		t.Fatalf("valid token rejected: %v", err)
	}
}

func TestCSRFMismatch(t *testing.T) {
	form := url.Values{"csrf_token": {"aaa"}}
	post := httptest.NewRequest(http.MethodPost, "/admin/x", strings.NewReader(form.Encode()))
	post.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	post.AddCookie(&http.Cookie{Name: "innkeep_csrf", Value: "bbb"})
	if err := ProtectCSRF(post); !errors.Is(err, ErrCSRF) {
		t.Fatalf("want ErrCSRF, got %v", err)
	}

	// без куки
	post2 := httptest.NewRequest(http.MethodPost, "/admin/x", strings.NewReader(form.Encode()))
	post2.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if err := ProtectCSRF(post2); !errors.Is(err, ErrCSRF) {
		t.Fatalf("want ErrCSRF, got %v", err)
	}
}

func TestLimiterBurst(t *testing.T) {
	l := NewLimiter(60, 3)
	for i := 0; i < 3; i++ {
		if !l.Allow("admin_login", "10.0.0.1") {
			t.Fatalf("request %d within burst must pass", i)
		}
	}
	if l.Allow("admin_login", "10.0.0.1") {
		t.Fatal("request beyond burst must be limited")
	}
	// другой клиент и другая операция не затронуты
	if !l.Allow("admin_login", "10.0.0.2") {
		t.Fatal("different client must have its own bucket")
	}
	if !l.Allow("admin_device_revoke", "10.0.0.1") {
		t.Fatal("different operation must have its own bucket")
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.168.1.5:1234"
	if ip := ClientIP(r); ip != "192.168.1.5" {
		t.Fatalf("ClientIP = %q", ip)
	}
	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	if ip := ClientIP(r); ip != "203.0.113.7" {
		t.Fatalf("ClientIP with XFF = %q", ip)
	}
}
