package web

import (
	"errors"
	"net/http"
	"time"

	"innkeep/internal/auth"

	"github.com/gorilla/mux"
)

type openCounter interface {
	CountOpenByType() (finds, issues int64, err error)
}

type pendingCounter interface {
	CountPending() (int64, error)
}

// Admin — дашборд, логин/логаут и профиль администратора.
type Admin struct {
	render   *Renderer
	sessions *auth.Sessions
	creds    *auth.Credentials
	limiter  *auth.Limiter
	reports  openCounter
	devices  pendingCounter
}

func NewAdmin(rd *Renderer, sessions *auth.Sessions, creds *auth.Credentials, limiter *auth.Limiter, reports openCounter, devices pendingCounter) *Admin {
	return &Admin{render: rd, sessions: sessions, creds: creds, limiter: limiter, reports: reports, devices: devices}
}

func (a *Admin) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/admin", a.dashboard).Methods(http.MethodGet)
	r.HandleFunc("/admin/dashboard", a.dashboard).Methods(http.MethodGet)
	r.HandleFunc("/admin/login", a.loginPage).Methods(http.MethodGet)
	r.HandleFunc("/admin/login", a.loginAction).Methods(http.MethodPost)
	r.HandleFunc("/admin/logout", a.logoutAction).Methods(http.MethodPost)
	r.HandleFunc("/admin/profile", a.sessions.RequirePage(a.profilePage)).Methods(http.MethodGet)
	r.HandleFunc("/admin/profile/password", a.sessions.RequireAction(a.changePassword)).Methods(http.MethodPost)

	// старые закладки
	r.HandleFunc("/admin/reports/findings",
		a.sessions.RequirePage(redirectTo("/admin/reports?category=FIND"))).Methods(http.MethodGet)
	r.HandleFunc("/admin/reports/issues",
		a.sessions.RequirePage(redirectTo("/admin/reports?category=ISSUE"))).Methods(http.MethodGet)
	r.HandleFunc("/admin/settings/devices",
		a.sessions.RequirePage(redirectTo("/admin/devices"))).Methods(http.MethodGet)
}

func (a *Admin) basePage(w http.ResponseWriter, r *http.Request, nav string) Page {
	return Page{
		AdminLoggedIn: a.sessions.IsAuthenticated(r),
		CSRFToken:     auth.EnsureCSRFToken(w, r),
		ActiveNav:     nav,
	}
}

type dashboardStats struct {
	PendingDevices   int64
	OpenFinds        int64
	OpenIssues       int64
	GeneratedAtHuman string
}

func (a *Admin) dashboard(w http.ResponseWriter, r *http.Request) {
	if !a.sessions.IsAuthenticated(r) {
		http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
		return
	}

	var stats dashboardStats
	if a.devices != nil {
		stats.PendingDevices, _ = a.devices.CountPending()
	}
	if a.reports != nil {
		stats.OpenFinds, stats.OpenIssues, _ = a.reports.CountOpenByType()
	}
	now := time.Now()
	stats.GeneratedAtHuman = a.render.FormatLocal(&now)

	page := a.basePage(w, r, "dashboard")
	page.Data = stats
	a.render.Render(w, http.StatusOK, "admin_dashboard.html", page)
}

func (a *Admin) loginPage(w http.ResponseWriter, r *http.Request) {
	if a.sessions.IsAuthenticated(r) {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	a.render.Render(w, http.StatusOK, "admin_login.html", a.basePage(w, r, ""))
}

func (a *Admin) loginAction(w http.ResponseWriter, r *http.Request) {
	if !a.limiter.Allow("admin_login", auth.ClientIP(r)) {
		http.Error(w, "too many attempts", http.StatusTooManyRequests)
		return
	}
	if err := auth.ProtectCSRF(r); err != nil {
		http.Error(w, "csrf check failed", http.StatusBadRequest)
		return
	}
	if !a.creds.Check(r.PostFormValue("password")) {
		page := a.basePage(w, r, "")
		page.FlashError = "Neplatné heslo"
		a.render.Render(w, http.StatusUnauthorized, "admin_login.html", page)
		return
	}
	if err := a.sessions.Issue(w); err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (a *Admin) logoutAction(w http.ResponseWriter, r *http.Request) {
	if err := auth.ProtectCSRF(r); err != nil {
		http.Error(w, "csrf check failed", http.StatusBadRequest)
		return
	}
	a.sessions.Clear(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (a *Admin) profilePage(w http.ResponseWriter, r *http.Request) {
	a.render.Render(w, http.StatusOK, "admin_profile.html", a.basePage(w, r, "profile"))
}

func (a *Admin) changePassword(w http.ResponseWriter, r *http.Request) {
	if !a.limiter.Allow("admin_change_password", auth.ClientIP(r)) {
		http.Error(w, "too many attempts", http.StatusTooManyRequests)
		return
	}
	if err := auth.ProtectCSRF(r); err != nil {
		http.Error(w, "csrf check failed", http.StatusBadRequest)
		return
	}

	current := r.PostFormValue("current_password")
	next := r.PostFormValue("new_password")
	confirm := r.PostFormValue("new_password_confirm")

	page := a.basePage(w, r, "profile")
	if next != confirm {
		page.FlashError = "Potvrzení hesla nesouhlasí."
		a.render.Render(w, http.StatusBadRequest, "admin_profile.html", page)
		return
	}
	if err := a.creds.Change(current, next); err != nil {
		switch {
		case errors.Is(err, auth.ErrBadPassword):
			page.FlashError = "Neplatné současné heslo."
			a.render.Render(w, http.StatusUnauthorized, "admin_profile.html", page)
		case errors.Is(err, auth.ErrWeakPassword):
			page.FlashError = "Heslo je příliš krátké."
			a.render.Render(w, http.StatusBadRequest, "admin_profile.html", page)
		default:
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
		return
	}
	page.FlashSuccess = "Heslo bylo změněno."
	a.render.Render(w, http.StatusOK, "admin_profile.html", page)
}
