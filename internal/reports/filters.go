package reports

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"time"

	"innkeep/internal/models"
)

// ErrInvalidFilter — некорректное значение фильтра/сортировки от клиента.
// На HTTP-границе маппится в 400.
var ErrInvalidFilter = errors.New("invalid filter")

const (
	maxPage    = 10000
	minPerPage = 10
	maxPerPage = 100
)

// ListQuery — разобранные параметры листинга. nil = фильтр не задан.
type ListQuery struct {
	Category *models.ReportType
	Status   *models.ReportStatus
	Room     *int
	Day      *time.Time // полночь UTC; окно [Day, Day+24h)
	Sort     string
	Page     int
	PerPage  int
}

// Шесть ключей сортировки; всюду кроме created_* добавочный
// тай-брейк created_at DESC.
var sortClauses = map[string]string{
	"created_desc": "created_at DESC",
	"created_asc":  "created_at ASC",
	"room_asc":     "room ASC, created_at DESC",
	"room_desc":    "room DESC, created_at DESC",
	"status_asc":   "status ASC, created_at DESC",
	"status_desc":  "status DESC, created_at DESC",
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ParseListQuery разбирает query-параметры листинга.
// roomAllowed — проверка номера по списку отеля.
func ParseListQuery(vals url.Values, roomAllowed func(int) bool) (ListQuery, error) {
	q := ListQuery{Sort: "created_desc", Page: 1, PerPage: 25}

	category := vals.Get("category")
	if category == "" {
		// Старый параметр ?type= из ранних версий приложения.
		category = vals.Get("type")
	}
	if category != "" {
		rt, err := models.ParseReportType(category)
		if err != nil {
			return q, fmt.Errorf("%w: category %q", ErrInvalidFilter, category)
		}
		q.Category = &rt
	}

	if s := vals.Get("status"); s != "" {
		st, err := models.ParseReportStatus(s)
		if err != nil {
			return q, fmt.Errorf("%w: status %q", ErrInvalidFilter, s)
		}
		q.Status = &st
	}

	if s := vals.Get("room"); s != "" {
		room, err := strconv.Atoi(s)
		if err != nil || !roomAllowed(room) {
			return q, fmt.Errorf("%w: room %q", ErrInvalidFilter, s)
		}
		q.Room = &room
	}

	if s := vals.Get("date"); s != "" {
		day, err := time.ParseInLocation("2006-01-02", s, time.UTC)
		if err != nil {
			return q, fmt.Errorf("%w: date %q", ErrInvalidFilter, s)
		}
		q.Day = &day
	}

	if s := vals.Get("sort"); s != "" {
		q.Sort = s
	}
	if _, ok := sortClauses[q.Sort]; !ok {
		return q, fmt.Errorf("%w: sort %q", ErrInvalidFilter, q.Sort)
	}

	if s := vals.Get("page"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			q.Page = n
		}
	}
	if s := vals.Get("per_page"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			q.PerPage = n
		}
	}
	q.Page = clampInt(q.Page, 1, maxPage)
	q.PerPage = clampInt(q.PerPage, minPerPage, maxPerPage)

	return q, nil
}

// PagesTotal — ceil(total/perPage), минимум 1 страница.
func PagesTotal(total int64, perPage int) int {
	if total <= 0 {
		return 1
	}
	return int((total-1)/int64(perPage)) + 1
}

// DurationHours — длительность решения в часах с одним знаком; nil пока не DONE.
func DurationHours(createdAt time.Time, doneAt *time.Time) *float64 {
	if doneAt == nil {
		return nil
	}
	h := math.Round(doneAt.Sub(createdAt).Hours()*10) / 10
	return &h
}
