package reports

import (
	"errors"
	"net/url"
	"testing"
	"time"

	"innkeep/internal/models"
)

func allowAll(int) bool   { return true }
func allowNone(int) bool  { return false }
func allow101(r int) bool { return r == 101 }

func TestParseListQueryDefaults(t *testing.T) {
	q, err := ParseListQuery(url.Values{}, allowAll)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Category != nil || q.Status != nil || q.Room != nil || q.Day != nil {
		t.Fatalf("filters must default to unset: %+v", q)
	}
	if q.Sort != "created_desc" || q.Page != 1 || q.PerPage != 25 {
		t.Fatalf("unexpected defaults: %+v", q)
	}
}

func TestParseListQueryValues(t *testing.T) {
	vals := url.Values{
		"category": {"FIND"},
		"status":   {"OPEN"},
		"room":     {"101"},
		"date":     {"2025-06-01"},
		"sort":     {"room_asc"},
		"page":     {"3"},
		"per_page": {"50"},
	}
	q, err := ParseListQuery(vals, allow101)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *q.Category != models.ReportFind || *q.Status != models.ReportOpen || *q.Room != 101 {
		t.Fatalf("unexpected filters: %+v", q)
	}
	want := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	if !q.Day.Equal(want) {
		t.Fatalf("day = %v, want %v", q.Day, want)
	}
	if q.Sort != "room_asc" || q.Page != 3 || q.PerPage != 50 {
		t.Fatalf("unexpected paging: %+v", q)
	}
}

func TestParseListQueryTypeAlias(t *testing.T) {
	q, err := ParseListQuery(url.Values{"type": {"ISSUE"}}, allowAll)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Category == nil || *q.Category != models.ReportIssue {
		t.Fatalf("legacy type param must map to category: %+v", q)
	}
	// category выигрывает у type
	q, _ = ParseListQuery(url.Values{"category": {"FIND"}, "type": {"ISSUE"}}, allowAll)
	if *q.Category != models.ReportFind {
		t.Fatalf("category must win over type: %+v", q)
	}
}

func TestParseListQueryErrors(t *testing.T) {
	cases := []struct {
		name    string
		vals    url.Values
		allowed func(int) bool
	}{
		{"bad category", url.Values{"category": {"LOST"}}, allowAll},
		{"bad status", url.Values{"status": {"CLOSED"}}, allowAll},
		{"room not a number", url.Values{"room": {"abc"}}, allowAll},
		{"room out of range", url.Values{"room": {"999"}}, allowNone},
		{"bad date", url.Values{"date": {"01.06.2025"}}, allowAll},
		{"bad sort", url.Values{"sort": {"newest"}}, allowAll},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseListQuery(tt.vals, tt.allowed)
			if !errors.Is(err, ErrInvalidFilter) {
				t.Fatalf("want ErrInvalidFilter, got %v", err)
			}
		})
	}
}

func TestParseListQueryClamps(t *testing.T) {
	q, err := ParseListQuery(url.Values{"page": {"0"}, "per_page": {"3"}}, allowAll)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Page != 1 || q.PerPage != 10 {
		t.Fatalf("low clamp failed: page=%d per_page=%d", q.Page, q.PerPage)
	}
	q, _ = ParseListQuery(url.Values{"page": {"999999"}, "per_page": {"5000"}}, allowAll)
	if q.Page != 10000 || q.PerPage != 100 {
		t.Fatalf("high clamp failed: page=%d per_page=%d", q.Page, q.PerPage)
	}
	// нечисловые значения остаются на дефолтах
	q, _ = ParseListQuery(url.Values{"page": {"x"}, "per_page": {"y"}}, allowAll)
	if q.Page != 1 || q.PerPage != 25 {
		t.Fatalf("non-numeric paging must keep defaults: page=%d per_page=%d", q.Page, q.PerPage)
	}
}

func TestPagesTotal(t *testing.T) {
	cases := []struct {
		total   int64
		perPage int
		want    int
	}{
		{0, 25, 1},
		{1, 25, 1},
		{25, 25, 1},
		{26, 25, 2},
		{100, 10, 10},
		{101, 10, 11},
	}
	for _, tt := range cases {
		if got := PagesTotal(tt.total, tt.perPage); got != tt.want {
			t.Fatalf("PagesTotal(%d, %d) = %d, want %d", tt.total, tt.perPage, got, tt.want)
		}
	}
}

func TestDurationHours(t *testing.T) {
	created := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	if DurationHours(created, nil) != nil {
		t.Fatal("open report has no duration")
	}
	done := created.Add(90 * time.Minute)
	got := DurationHours(created, &done)
	if got == nil || *got != 1.5 {
		t.Fatalf("duration = %v, want 1.5", got)
	}
	done = created.Add(100 * time.Minute) // 1.666... -> 1.7
	got = DurationHours(created, &done)
	if got == nil || *got != 1.7 {
		t.Fatalf("duration = %v, want 1.7", got)
	}
}

func TestSortClausesComplete(t *testing.T) {
	keys := []string{"created_desc", "created_asc", "room_asc", "room_desc", "status_asc", "status_desc"}
	for _, k := range keys {
		if _, ok := sortClauses[k]; !ok {
			t.Fatalf("missing sort clause %q", k)
		}
	}
	if len(sortClauses) != len(keys) {
		t.Fatalf("unexpected extra sort keys: %v", sortClauses)
	}
}
