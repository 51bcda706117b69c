package models

import (
	"fmt"
	"time"
)

type ReportType string

const (
	ReportFind  ReportType = "FIND"
	ReportIssue ReportType = "ISSUE"
)

type ReportStatus string

const (
	ReportOpen ReportStatus = "OPEN"
	ReportDone ReportStatus = "DONE"
)

// ParseReportType — явный разбор вместо паники на неизвестном значении.
func ParseReportType(s string) (ReportType, error) {
	switch ReportType(s) {
	case ReportFind, ReportIssue:
		return ReportType(s), nil
	}
	return "", fmt.Errorf("unknown report type: %q", s)
}

func ParseReportStatus(s string) (ReportStatus, error) {
	switch ReportStatus(s) {
	case ReportOpen, ReportDone:
		return ReportStatus(s), nil
	}
	return "", fmt.Errorf("unknown report status: %q", s)
}

// Report — nález nebo závada nahlášená zařízením.
// done_at держим в паре со статусом: non-nil ⇔ DONE.
type Report struct {
	ID                uint         `gorm:"primaryKey"`
	ReportType        ReportType   `gorm:"column:report_type;type:varchar(8);index"`
	Status            ReportStatus `gorm:"type:varchar(8);index"`
	Room              string       `gorm:"type:varchar(8);index"`
	Description       string       `gorm:"type:text"`
	CreatedAt         time.Time    `gorm:"index"`
	DoneAt            *time.Time
	DoneByDeviceID    *string `gorm:"type:varchar(64)"`
	CreatedByDeviceID string  `gorm:"type:varchar(64);index"`
}

type ReportPhoto struct {
	ID        uint  `gorm:"primaryKey"`
	ReportID  uint  `gorm:"index"`
	SizeBytes int64 `gorm:"column:size_bytes"`
	SortOrder int   `gorm:"column:sort_order;default:0"`
	CreatedAt time.Time
}

type HistoryAction string

const (
	ActionCreated  HistoryAction = "CREATED"
	ActionMarkDone HistoryAction = "MARK_DONE"
	ActionReopen   HistoryAction = "REOPEN"
	ActionDelete   HistoryAction = "DELETE"
)

type ActorType string

const (
	ActorDevice ActorType = "DEVICE"
	ActorAdmin  ActorType = "ADMIN"
)

// ReportHistory — append-only журнал переходов; после вставки не трогаем.
type ReportHistory struct {
	ID            uint          `gorm:"primaryKey"`
	ReportID      uint          `gorm:"index"`
	Action        HistoryAction `gorm:"type:varchar(16)"`
	ActorType     ActorType     `gorm:"type:varchar(8)"`
	ActorDeviceID *string       `gorm:"type:varchar(64)"`
	FromStatus    ReportStatus  `gorm:"type:varchar(8)"`
	ToStatus      ReportStatus  `gorm:"type:varchar(8)"`
	Note          *string       `gorm:"type:varchar(255)"`
	CreatedAt     time.Time     `gorm:"index"`
}
