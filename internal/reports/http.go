package reports

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"innkeep/config"
	"innkeep/internal/auth"
	"innkeep/internal/models"
	"innkeep/internal/web"

	"github.com/gorilla/mux"
)

// mediaRemover — best-effort очистка файлов после удаления отчёта.
type mediaRemover interface {
	RemoveReport(reportID uint)
}

type Handler struct {
	cfg      *config.Config
	repo     *Repo
	render   *web.Renderer
	sessions *auth.Sessions
	media    mediaRemover
}

func NewHandler(cfg *config.Config, repo *Repo, rd *web.Renderer, sessions *auth.Sessions, media mediaRemover) *Handler {
	return &Handler{cfg: cfg, repo: repo, render: rd, sessions: sessions, media: media}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/admin/reports", h.sessions.RequirePage(h.listPage)).Methods(http.MethodGet)
	r.HandleFunc("/admin/reports/{id:[0-9]+}", h.sessions.RequirePage(h.detailPage)).Methods(http.MethodGet)
	r.HandleFunc("/admin/reports/{id:[0-9]+}/done", h.sessions.RequireAction(h.markDone)).Methods(http.MethodPost)
	r.HandleFunc("/admin/reports/{id:[0-9]+}/reopen", h.sessions.RequireAction(h.reopen)).Methods(http.MethodPost)
	r.HandleFunc("/admin/reports/{id:[0-9]+}/delete", h.sessions.RequireAction(h.deleteReport)).Methods(http.MethodPost)
}

// reportRow — строка листинга, уже готовая к показу.
type reportRow struct {
	ID            uint
	Category      models.ReportType
	CategoryHuman string
	Status        models.ReportStatus
	IsDone        bool
	Room          string
	Description   string
	CreatedHuman  string
	DoneHuman     string
	DurationHours *float64
	PhotoCount    int
	FirstThumbURL string
}

type listPageData struct {
	Rows       []reportRow
	Total      int64
	Page       int
	PagesTotal int
	PerPage    int
	Sort       string
	Category   string
	Status     string
	Room       string
	Date       string
	Rooms      []int
	PrevURL    string
	NextURL    string
}

func categoryHuman(t models.ReportType) string {
	if t == models.ReportFind {
		return "Nález"
	}
	return "Závada"
}

func actionHuman(a models.HistoryAction) string {
	switch a {
	case models.ActionCreated:
		return "Vytvořeno"
	case models.ActionMarkDone:
		return "Vyřízeno"
	case models.ActionReopen:
		return "Reopen"
	case models.ActionDelete:
		return "Smazáno"
	}
	return string(a)
}

func (h *Handler) row(rep models.Report, photos []models.ReportPhoto) reportRow {
	row := reportRow{
		ID:            rep.ID,
		Category:      rep.ReportType,
		CategoryHuman: categoryHuman(rep.ReportType),
		Status:        rep.Status,
		IsDone:        rep.Status == models.ReportDone,
		Room:          rep.Room,
		Description:   rep.Description,
		CreatedHuman:  h.render.FormatLocal(&rep.CreatedAt),
		DoneHuman:     h.render.FormatLocal(rep.DoneAt),
		DurationHours: DurationHours(rep.CreatedAt, rep.DoneAt),
		PhotoCount:    len(photos),
	}
	if len(photos) > 0 {
		row.FirstThumbURL = fmt.Sprintf("/admin/media/%d/thumb", photos[0].ID)
	}
	return row
}

// pageURL собирает ссылку пагинации, сохраняя активные фильтры.
func pageURL(raw url.Values, page int) string {
	vals := url.Values{}
	for _, k := range []string{"category", "status", "room", "date", "sort", "per_page"} {
		if v := raw.Get(k); v != "" {
			vals.Set(k, v)
		}
	}
	vals.Set("page", strconv.Itoa(page))
	return "/admin/reports?" + vals.Encode()
}

func (h *Handler) listPage(w http.ResponseWriter, r *http.Request) {
	q, err := ParseListQuery(r.URL.Query(), h.cfg.Hotel.RoomAllowed)
	if err != nil {
		if errors.Is(err, ErrInvalidFilter) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	res, err := h.repo.List(q)
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	data := listPageData{
		Total:      res.Total,
		Page:       res.Page,
		PagesTotal: res.PagesTotal,
		PerPage:    res.PerPage,
		Sort:       q.Sort,
		Category:   r.URL.Query().Get("category"),
		Status:     r.URL.Query().Get("status"),
		Room:       r.URL.Query().Get("room"),
		Date:       r.URL.Query().Get("date"),
		Rooms:      h.cfg.Hotel.Rooms,
	}
	for _, rep := range res.Reports {
		data.Rows = append(data.Rows, h.row(rep, res.PhotosByReport[rep.ID]))
	}
	if res.Page > 1 {
		data.PrevURL = pageURL(r.URL.Query(), res.Page-1)
	}
	if res.Page < res.PagesTotal {
		data.NextURL = pageURL(r.URL.Query(), res.Page+1)
	}

	nav := "reports"
	if q.Category != nil {
		if *q.Category == models.ReportFind {
			nav = "findings"
		} else {
			nav = "issues"
		}
	}
	page := web.Page{
		AdminLoggedIn: true,
		CSRFToken:     auth.EnsureCSRFToken(w, r),
		ActiveNav:     nav,
		Data:          data,
	}
	h.render.Render(w, http.StatusOK, "admin_reports_list.html", page)
}

type photoView struct {
	ID          uint
	SizeKB      int64
	ThumbURL    string
	OriginalURL string
}

type historyView struct {
	ActionHuman  string
	ActorType    models.ActorType
	ActorDevice  string
	FromStatus   models.ReportStatus
	ToStatus     models.ReportStatus
	Note         string
	CreatedHuman string
}

type detailPageData struct {
	Report  reportRow
	Photos  []photoView
	History []historyView
}

func (h *Handler) detailPage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	rep, photos, history, err := h.repo.Detail(uint(id))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	data := detailPageData{Report: h.row(rep, photos)}
	for _, p := range photos {
		data.Photos = append(data.Photos, photoView{
			ID:          p.ID,
			SizeKB:      p.SizeBytes / 1024,
			ThumbURL:    fmt.Sprintf("/admin/media/%d/thumb", p.ID),
			OriginalURL: fmt.Sprintf("/admin/media/%d/original", p.ID),
		})
	}
	for _, hrow := range history {
		hv := historyView{
			ActionHuman:  actionHuman(hrow.Action),
			ActorType:    hrow.ActorType,
			FromStatus:   hrow.FromStatus,
			ToStatus:     hrow.ToStatus,
			CreatedHuman: h.render.FormatLocal(&hrow.CreatedAt),
		}
		if hrow.ActorDeviceID != nil {
			hv.ActorDevice = *hrow.ActorDeviceID
		}
		if hrow.Note != nil {
			hv.Note = *hrow.Note
		}
		data.History = append(data.History, hv)
	}

	page := web.Page{
		AdminLoggedIn: true,
		CSRFToken:     auth.EnsureCSRFToken(w, r),
		ActiveNav:     "reports",
		Data:          data,
	}
	h.render.Render(w, http.StatusOK, "admin_report_detail.html", page)
}

func (h *Handler) reportID(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

func (h *Handler) markDone(w http.ResponseWriter, r *http.Request) {
	if err := auth.ProtectCSRF(r); err != nil {
		http.Error(w, "csrf check failed", http.StatusBadRequest)
		return
	}
	id, ok := h.reportID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if _, err := h.repo.MarkDone(id, time.Now().UTC()); err != nil {
		if errors.Is(err, ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, backTo(r), http.StatusSeeOther)
}

func (h *Handler) reopen(w http.ResponseWriter, r *http.Request) {
	if err := auth.ProtectCSRF(r); err != nil {
		http.Error(w, "csrf check failed", http.StatusBadRequest)
		return
	}
	id, ok := h.reportID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if _, err := h.repo.Reopen(id, time.Now().UTC()); err != nil {
		if errors.Is(err, ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, backTo(r), http.StatusSeeOther)
}

func (h *Handler) deleteReport(w http.ResponseWriter, r *http.Request) {
	if err := auth.ProtectCSRF(r); err != nil {
		http.Error(w, "csrf check failed", http.StatusBadRequest)
		return
	}
	id, ok := h.reportID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := h.repo.Delete(id); err != nil {
		if errors.Is(err, ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	// Файлы чистим после коммита; сбой здесь не откатывает удаление.
	if h.media != nil {
		h.media.RemoveReport(id)
	}
	http.Redirect(w, r, "/admin/reports", http.StatusSeeOther)
}

// backTo возвращает пользователя туда, откуда он нажал кнопку.
// Только локальные пути; "//host" браузер трактует как другой хост.
func backTo(r *http.Request) string {
	back := r.PostFormValue("back")
	if strings.HasPrefix(back, "/") && !strings.HasPrefix(back, "//") {
		return back
	}
	return "/admin/reports"
}
