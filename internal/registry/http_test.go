package registry

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"innkeep/internal/auth"
	"innkeep/internal/models"
	"innkeep/internal/web"

	"github.com/gorilla/mux"
)

func actionSetup(t *testing.T, limiter *auth.Limiter) (*mux.Router, *http.Cookie) {
	t.Helper()
	rd, err := web.NewRenderer("Test Hotel", "test")
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	sessions := auth.NewSessions("test-secret", 60)

	rec := httptest.NewRecorder()
	if err := sessions.Issue(rec); err != nil {
		t.Fatalf("Issue: %v", err)
	}

	r := mux.NewRouter()
	NewHandler(nil, rd, sessions, limiter).RegisterRoutes(r)
	return r, rec.Result().Cookies()[0]
}

func TestDeviceActionsRequireSession(t *testing.T) {
	r, _ := actionSetup(t, auth.NewLimiter(600, 100))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/devices/3/revoke", nil))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestDeviceActionsRejectMissingCSRF(t *testing.T) {
	r, cookie := actionSetup(t, auth.NewLimiter(600, 100))
	for _, target := range []string{
		"/admin/devices/3/activate",
		"/admin/devices/3/roles",
		"/admin/devices/3/revoke",
		"/admin/devices/3/delete",
		"/admin/devices/delete-pending",
	} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, target, nil)
		req.AddCookie(cookie)
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, rec.Code)
		}
	}
}

func TestDeviceActionsRateLimited(t *testing.T) {
	r, cookie := actionSetup(t, auth.NewLimiter(1, 1))

	// лимитер стоит перед CSRF-проверкой, так что токен сгорает
	// и на отклонённой попытке
	post := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/admin/devices/3/revoke", nil)
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	if rec := post(); rec.Code != http.StatusBadRequest {
		t.Fatalf("first attempt: status = %d, want 400", rec.Code)
	}
	if rec := post(); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second attempt: status = %d, want 429", rec.Code)
	}
}

func TestDeviceViewRevokedTime(t *testing.T) {
	rd, err := web.NewRenderer("Test Hotel", "test")
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	h := NewHandler(nil, rd, nil, nil)

	revokedAt := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	updatedAt := time.Date(2026, 3, 15, 11, 0, 0, 0, time.UTC)

	v := h.view(models.Device{Status: models.DeviceRevoked, RevokedAt: &revokedAt, UpdatedAt: updatedAt})
	if v.RevokedHuman != rd.FormatLocal(&revokedAt) {
		t.Fatalf("RevokedHuman = %q, want revoked_at", v.RevokedHuman)
	}

	// записи, заблокированные до появления revoked_at
	v = h.view(models.Device{Status: models.DeviceRevoked, UpdatedAt: updatedAt})
	if v.RevokedHuman != rd.FormatLocal(&updatedAt) {
		t.Fatalf("RevokedHuman = %q, want updated_at fallback", v.RevokedHuman)
	}

	v = h.view(models.Device{Status: models.DeviceActive, UpdatedAt: updatedAt})
	if v.RevokedHuman != "" {
		t.Fatalf("active device RevokedHuman = %q, want empty", v.RevokedHuman)
	}
}

func TestDeviceViewHasRole(t *testing.T) {
	v := deviceView{Roles: []string{"breakfast", "housekeeping"}}
	if !v.HasRole("breakfast") || v.HasRole("frontdesk") {
		t.Fatal("HasRole mismatch")
	}
}
