package web

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"time"

	"innkeep/internal/logs"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Renderer — html/template поверх встроенных шаблонов.
type Renderer struct {
	tpl        *template.Template
	loc        *time.Location
	hotelName  string
	appVersion string
}

func NewRenderer(hotelName, appVersion string) (*Renderer, error) {
	tpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation("Europe/Prague")
	if err != nil {
		// без tzdata показываем UTC, это некритично
		loc = time.UTC
	}
	return &Renderer{tpl: tpl, loc: loc, hotelName: hotelName, appVersion: appVersion}, nil
}

// Page — общий контекст всех страниц; Data — данные конкретной страницы.
type Page struct {
	Year          int
	HotelName     string
	AppVersion    string
	AdminLoggedIn bool
	CSRFToken     string
	ActiveNav     string
	FlashSuccess  string
	FlashError    string
	HideShell     bool
	ShowSplash    bool
	Data          any
}

func (rd *Renderer) Render(w http.ResponseWriter, status int, name string, p Page) {
	p.Year = time.Now().Year()
	p.HotelName = rd.hotelName
	p.AppVersion = rd.appVersion

	var buf bytes.Buffer
	if err := rd.tpl.ExecuteTemplate(&buf, name, p); err != nil {
		logs.Logger.Errorf("render %s: %v", name, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// FormatLocal — локальное время для отображения; "" для nil.
func (rd *Renderer) FormatLocal(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.In(rd.loc).Format("02.01.2006 15:04")
}
