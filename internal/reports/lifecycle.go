package reports

import "innkeep/internal/models"

// Transition — один эффективный переход статуса; фиксируется
// ровно одной строкой истории.
type Transition struct {
	Action models.HistoryAction
	From   models.ReportStatus
	To     models.ReportStatus
}

// PlanMarkDone: OPEN -> DONE; из DONE — no-op (ни истории, ни таймстампов).
func PlanMarkDone(from models.ReportStatus) (Transition, bool) {
	if from == models.ReportDone {
		return Transition{}, false
	}
	return Transition{Action: models.ActionMarkDone, From: from, To: models.ReportDone}, true
}

// PlanReopen: DONE -> OPEN; из OPEN — no-op.
func PlanReopen(from models.ReportStatus) (Transition, bool) {
	if from == models.ReportOpen {
		return Transition{}, false
	}
	return Transition{Action: models.ActionReopen, From: from, To: models.ReportOpen}, true
}
