package web

import (
	"net/http"
	"strings"

	"innkeep/config"
	"innkeep/internal/auth"
	"innkeep/internal/models"
	"innkeep/internal/uadetect"

	"github.com/gorilla/mux"
)

// DeviceFinder — доступ к реестру устройств для гейта ролей.
type DeviceFinder interface {
	FindByDeviceID(deviceID string) (models.Device, error)
}

// Pages — публичные страницы: лендинг, веб-приложение персонала, ожидание
// активации, раздача APK.
type Pages struct {
	cfg      *config.Config
	render   *Renderer
	sessions *auth.Sessions
	devices  DeviceFinder
}

func NewPages(cfg *config.Config, rd *Renderer, sessions *auth.Sessions, devices DeviceFinder) *Pages {
	return &Pages{cfg: cfg, render: rd, sessions: sessions, devices: devices}
}

func (p *Pages) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/", p.landing).Methods(http.MethodGet)
	r.HandleFunc("/app", p.appLanding).Methods(http.MethodGet)
	// Алиасы частых опечаток — раньше, чем {role}, иначе их перехватит гейт.
	r.HandleFunc("/app/maintanance", redirectTo("/app/maintenance")).Methods(http.MethodGet)
	r.HandleFunc("/app/mantenance", redirectTo("/app/maintenance")).Methods(http.MethodGet)
	r.HandleFunc("/app/{role}", p.appRole).Methods(http.MethodGet)
	r.HandleFunc("/device/pending", p.devicePending).Methods(http.MethodGet)
	r.HandleFunc("/download/app.apk", p.downloadAPK).Methods(http.MethodGet)
}

func redirectTo(url string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, url, http.StatusSeeOther)
	}
}

func (p *Pages) basePage(w http.ResponseWriter, r *http.Request) Page {
	return Page{
		AdminLoggedIn: p.sessions.IsAuthenticated(r),
		CSRFToken:     auth.EnsureCSRFToken(w, r),
	}
}

type landingData struct {
	DeviceClass  uadetect.Kind
	APKAvailable bool
}

func (p *Pages) landing(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	page := p.basePage(w, r)
	page.Data = landingData{
		DeviceClass:  uadetect.Classify(r.UserAgent()).Kind,
		APKAvailable: p.cfg.Media.APKPath != "",
	}
	p.render.Render(w, http.StatusOK, "public_landing.html", page)
}

func (p *Pages) appLanding(w http.ResponseWriter, r *http.Request) {
	page := p.basePage(w, r)
	page.HideShell = true
	page.Data = models.WebAppRoles
	p.render.Render(w, http.StatusOK, "web_app_landing.html", page)
}

type appRoleData struct {
	RoleKey     string
	RoleTitle   string
	DeviceClass uadetect.Kind
	Rooms       []int
}

// deviceFromRequest вытаскивает идентификатор устройства из заголовка
// приложения или из куки веб-фоллбэка.
func deviceFromRequest(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get("X-Device-ID")); id != "" {
		return id
	}
	if c, err := r.Cookie("hotel_device_id"); err == nil {
		return strings.TrimSpace(c.Value)
	}
	return ""
}

func (p *Pages) appRole(w http.ResponseWriter, r *http.Request) {
	roleKey := strings.ToLower(strings.TrimSpace(mux.Vars(r)["role"]))
	roleTitle, ok := models.RoleTitle(roleKey)
	if !ok {
		http.NotFound(w, r)
		return
	}

	// Гейт по ролям устройства. Устройство без ролей пропускаем — это
	// осознанная обратная совместимость, не баг.
	// Неизвестное устройство страницу не блокирует.
	if deviceID := deviceFromRequest(r); deviceID != "" && p.devices != nil {
		if d, err := p.devices.FindByDeviceID(deviceID); err == nil && !d.HasRole(roleKey) {
			http.Error(w, "ROLE_NOT_ALLOWED_FOR_DEVICE", http.StatusForbidden)
			return
		}
	}

	page := p.basePage(w, r)
	page.HideShell = true
	page.Data = appRoleData{
		RoleKey:     roleKey,
		RoleTitle:   roleTitle,
		DeviceClass: uadetect.Classify(r.UserAgent()).Kind,
		Rooms:       p.cfg.Hotel.Rooms,
	}
	p.render.Render(w, http.StatusOK, "web_app.html", page)
}

func (p *Pages) devicePending(w http.ResponseWriter, r *http.Request) {
	page := p.basePage(w, r)
	page.HideShell = true
	page.ShowSplash = true
	p.render.Render(w, http.StatusOK, "device_pending.html", page)
}

func (p *Pages) downloadAPK(w http.ResponseWriter, r *http.Request) {
	if p.cfg.Media.APKPath == "" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.android.package-archive")
	w.Header().Set("Content-Disposition", `attachment; filename="app.apk"`)
	http.ServeFile(w, r, p.cfg.Media.APKPath)
}
