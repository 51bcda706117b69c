package registry

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"innkeep/internal/auth"
	"innkeep/internal/logs"
	"innkeep/internal/models"
	"innkeep/internal/web"

	"github.com/gorilla/mux"
)

// Handler — админские страницы и действия реестра устройств.
type Handler struct {
	repo     *Repo
	render   *web.Renderer
	sessions *auth.Sessions
	limiter  *auth.Limiter
}

func NewHandler(repo *Repo, rd *web.Renderer, sessions *auth.Sessions, limiter *auth.Limiter) *Handler {
	return &Handler{repo: repo, render: rd, sessions: sessions, limiter: limiter}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/admin/devices", h.sessions.RequirePage(h.listPage)).Methods(http.MethodGet)
	r.HandleFunc("/admin/devices/delete-pending", h.sessions.RequireAction(h.deleteAllPending)).Methods(http.MethodPost)
	r.HandleFunc("/admin/devices/{id:[0-9]+}/activate", h.sessions.RequireAction(h.activate)).Methods(http.MethodPost)
	r.HandleFunc("/admin/devices/{id:[0-9]+}/roles", h.sessions.RequireAction(h.setRoles)).Methods(http.MethodPost)
	r.HandleFunc("/admin/devices/{id:[0-9]+}/revoke", h.sessions.RequireAction(h.revoke)).Methods(http.MethodPost)
	r.HandleFunc("/admin/devices/{id:[0-9]+}/delete", h.sessions.RequireAction(h.deleteDevice)).Methods(http.MethodPost)
}

type deviceView struct {
	ID             uint
	DeviceID       string
	DisplayName    string
	Status         models.DeviceStatus
	Roles          []string
	RoleLabels     []string
	Unrestricted   bool
	CreatedHuman   string
	ActivatedHuman string
	RevokedHuman   string
	LastSeenHuman  string
}

// HasRole — для чекбоксов в шаблоне.
func (v deviceView) HasRole(key string) bool {
	for _, r := range v.Roles {
		if r == key {
			return true
		}
	}
	return false
}

type devicesPageData struct {
	Pending     []deviceView
	Active      []deviceView
	Revoked     []deviceView
	RoleOptions []models.RoleOption
}

func (h *Handler) view(d models.Device) deviceView {
	v := deviceView{
		ID:             d.ID,
		DeviceID:       d.DeviceID,
		DisplayName:    d.DisplayName,
		Status:         d.Status,
		Roles:          d.RoleList(),
		CreatedHuman:   h.render.FormatLocal(&d.CreatedAt),
		ActivatedHuman: h.render.FormatLocal(d.ActivatedAt),
		RevokedHuman:   h.render.FormatLocal(d.RevokedAt),
		LastSeenHuman:  h.render.FormatLocal(d.LastSeenAt),
	}
	if v.RevokedHuman == "" && d.Status == models.DeviceRevoked {
		// старые записи без revoked_at: показываем хотя бы последнее изменение
		v.RevokedHuman = h.render.FormatLocal(&d.UpdatedAt)
	}
	v.Unrestricted = len(v.Roles) == 0
	for _, key := range v.Roles {
		if label, ok := models.RoleTitle(key); ok {
			v.RoleLabels = append(v.RoleLabels, label)
		}
	}
	return v
}

func (h *Handler) listPage(w http.ResponseWriter, r *http.Request) {
	pending, active, revoked, err := h.repo.ListByStatus()
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	data := devicesPageData{RoleOptions: models.WebAppRoles}
	for _, d := range pending {
		data.Pending = append(data.Pending, h.view(d))
	}
	for _, d := range active {
		data.Active = append(data.Active, h.view(d))
	}
	for _, d := range revoked {
		data.Revoked = append(data.Revoked, h.view(d))
	}
	page := web.Page{
		AdminLoggedIn: true,
		CSRFToken:     auth.EnsureCSRFToken(w, r),
		ActiveNav:     "devices",
		Data:          data,
	}
	h.render.Render(w, http.StatusOK, "admin_devices.html", page)
}

// guardAction — общая обвязка POST-действий: лимитер + CSRF + id из пути.
func (h *Handler) guardAction(w http.ResponseWriter, r *http.Request, op string) (uint, bool) {
	if !h.limiter.Allow(op, auth.ClientIP(r)) {
		http.Error(w, "too many attempts", http.StatusTooManyRequests)
		return 0, false
	}
	if err := auth.ProtectCSRF(r); err != nil {
		http.Error(w, "csrf check failed", http.StatusBadRequest)
		return 0, false
	}
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return 0, false
	}
	return uint(id), true
}

func (h *Handler) finish(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin/devices", http.StatusSeeOther)
}

func (h *Handler) activate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.guardAction(w, r, "admin_device_activate")
	if !ok {
		return
	}
	_ = r.ParseForm()
	h.finish(w, r, h.repo.Activate(id, r.PostForm["roles"], time.Now().UTC()))
}

func (h *Handler) setRoles(w http.ResponseWriter, r *http.Request) {
	id, ok := h.guardAction(w, r, "admin_device_roles")
	if !ok {
		return
	}
	_ = r.ParseForm()
	h.finish(w, r, h.repo.SetRoles(id, r.PostForm["roles"]))
}

func (h *Handler) revoke(w http.ResponseWriter, r *http.Request) {
	id, ok := h.guardAction(w, r, "admin_device_revoke")
	if !ok {
		return
	}
	h.finish(w, r, h.repo.Revoke(id, time.Now().UTC()))
}

func (h *Handler) deleteDevice(w http.ResponseWriter, r *http.Request) {
	id, ok := h.guardAction(w, r, "admin_device_delete")
	if !ok {
		return
	}
	h.finish(w, r, h.repo.Delete(id))
}

func (h *Handler) deleteAllPending(w http.ResponseWriter, r *http.Request) {
	if !h.limiter.Allow("admin_device_delete_all_pending", auth.ClientIP(r)) {
		http.Error(w, "too many attempts", http.StatusTooManyRequests)
		return
	}
	if err := auth.ProtectCSRF(r); err != nil {
		http.Error(w, "csrf check failed", http.StatusBadRequest)
		return
	}
	n, err := h.repo.DeleteAllPending()
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	logs.Logger.Infof("deleted %d pending devices", n)
	http.Redirect(w, r, "/admin/devices", http.StatusSeeOther)
}
