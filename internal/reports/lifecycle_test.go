package reports

import (
	"testing"

	"innkeep/internal/models"
)

func TestPlanMarkDone(t *testing.T) {
	tr, ok := PlanMarkDone(models.ReportOpen)
	if !ok {
		t.Fatal("OPEN -> DONE must be an effective transition")
	}
	if tr.Action != models.ActionMarkDone || tr.From != models.ReportOpen || tr.To != models.ReportDone {
		t.Fatalf("unexpected transition: %+v", tr)
	}

	if _, ok := PlanMarkDone(models.ReportDone); ok {
		t.Fatal("mark_done on DONE must be a no-op")
	}
}

func TestPlanReopen(t *testing.T) {
	tr, ok := PlanReopen(models.ReportDone)
	if !ok {
		t.Fatal("DONE -> OPEN must be an effective transition")
	}
	if tr.Action != models.ActionReopen || tr.From != models.ReportDone || tr.To != models.ReportOpen {
		t.Fatalf("unexpected transition: %+v", tr)
	}

	if _, ok := PlanReopen(models.ReportOpen); ok {
		t.Fatal("reopen on OPEN must be a no-op")
	}
}

// reopen + mark_done подряд образуют согласованную цепочку from/to.
func TestTransitionChain(t *testing.T) {
	first, ok := PlanReopen(models.ReportDone)
	if !ok {
		t.Fatal("expected effective reopen")
	}
	second, ok := PlanMarkDone(first.To)
	if !ok {
		t.Fatal("expected effective mark_done after reopen")
	}
	if first.To != second.From {
		t.Fatalf("chain broken: %s -> %s, then %s -> %s", first.From, first.To, second.From, second.To)
	}
}
