package domain

import (
	"testing"
	"time"
)

func ts(value string) *time.Time {
	t, err := time.Parse("2006-01-02T15:04:05", value)
	if err != nil {
		panic(err)
	}
	return &t
}

func TestEvaluateAchievedAndBreached(t *testing.T) {
	rec := TicketRecord{
		ID:          "INC001",
		CreatedAt:   ts("2024-06-01T00:00:00"),
		Criticality: "1-Critical",
		Severity:    "1-High",
	}
	budget := hoursPtr(4.0)

	rec.ClosedAt = ts("2024-06-01T03:59:59")
	et, ok := Evaluate(rec, budget)
	if !ok {
		t.Fatal("expected record to be evaluated")
	}
	if et.Outcome != OutcomeAchieved {
		t.Errorf("expected ACHIEVED, got %s", et.Outcome)
	}
	if et.Key != "1 - Critical - 1 - High" {
		t.Errorf("unexpected key %q", et.Key)
	}
	if et.Deadline == nil || !et.Deadline.Equal(*ts("2024-06-01T04:00:00")) {
		t.Errorf("unexpected deadline %v", et.Deadline)
	}

	rec.ClosedAt = ts("2024-06-01T04:00:01")
	et, _ = Evaluate(rec, budget)
	if et.Outcome != OutcomeBreached {
		t.Errorf("expected BREACHED, got %s", et.Outcome)
	}
	if et.BreachHours == nil {
		t.Fatal("expected breach magnitude for breached ticket")
	}
	if *et.BreachHours < 0.0002 || *et.BreachHours > 0.0004 {
		t.Errorf("expected breach of about 0.0003 hours, got %f", *et.BreachHours)
	}
}

func TestEvaluateInclusiveBoundary(t *testing.T) {
	rec := TicketRecord{
		CreatedAt: ts("2024-06-01T00:00:00"),
		ClosedAt:  ts("2024-06-01T04:00:00"),
	}

	et, _ := Evaluate(rec, hoursPtr(4.0))
	if et.Outcome != OutcomeAchieved {
		t.Errorf("closing exactly on the deadline must be ACHIEVED, got %s", et.Outcome)
	}
	if et.BreachHours == nil || *et.BreachHours != 0 {
		t.Errorf("expected zero signed breach on the boundary, got %v", et.BreachHours)
	}
}

func TestEvaluateOpenTicket(t *testing.T) {
	rec := TicketRecord{CreatedAt: ts("2024-06-01T00:00:00")}

	et, _ := Evaluate(rec, hoursPtr(4.0))
	if et.Outcome != OutcomeOpen {
		t.Errorf("expected OPEN, got %s", et.Outcome)
	}
	if et.BreachHours != nil {
		t.Errorf("open ticket must have no breach magnitude, got %v", *et.BreachHours)
	}
	if et.LegacyCode != "WP" {
		t.Errorf("expected legacy code WP, got %q", et.LegacyCode)
	}
}

func TestEvaluateUnmapped(t *testing.T) {
	rec := TicketRecord{
		CreatedAt: ts("2024-06-01T00:00:00"),
		ClosedAt:  ts("2024-06-02T00:00:00"),
	}

	et, _ := Evaluate(rec, nil)
	if et.Outcome != OutcomeUnmapped {
		t.Errorf("closed ticket without a budget must be UNMAPPED, got %s", et.Outcome)
	}
	if et.Deadline != nil {
		t.Errorf("expected undefined deadline, got %v", et.Deadline)
	}
	if et.BreachHours != nil {
		t.Errorf("unmapped ticket must have no breach magnitude")
	}
	if et.LegacyCode != "" {
		t.Errorf("expected empty legacy code, got %q", et.LegacyCode)
	}
}

func TestEvaluateExcludesMissingCreation(t *testing.T) {
	rec := TicketRecord{ClosedAt: ts("2024-06-01T00:00:00")}

	if _, ok := Evaluate(rec, hoursPtr(4.0)); ok {
		t.Error("record without creation timestamp must be excluded")
	}
}

func TestEvaluateMonotonicity(t *testing.T) {
	rec := TicketRecord{
		CreatedAt: ts("2024-06-01T00:00:00"),
		ClosedAt:  ts("2024-06-01T10:00:00"),
	}

	prev := OutcomeBreached
	for _, hours := range []float64{1, 5, 9.99, 10, 10.01, 48} {
		et, _ := Evaluate(rec, hoursPtr(hours))
		if prev == OutcomeAchieved && et.Outcome == OutcomeBreached {
			t.Errorf("raising the budget to %f turned an achieved ticket breached", hours)
		}
		prev = et.Outcome
	}
}

func TestOutcomeLegacyRoundTrip(t *testing.T) {
	for _, o := range []Outcome{OutcomeAchieved, OutcomeBreached, OutcomeOpen, OutcomeUnmapped} {
		back, ok := OutcomeFromLegacy(o.LegacyCode())
		if !ok || back != o {
			t.Errorf("legacy round trip failed for %s: got %s (%v)", o, back, ok)
		}
	}
	if _, ok := OutcomeFromLegacy("banana"); ok {
		t.Error("expected unknown legacy code to be rejected")
	}
}

func TestPipelineRun(t *testing.T) {
	r, _ := NewTableResolver(TieredSLATable())
	p := NewPipeline(r)

	records := []TicketRecord{
		{ID: "a", CreatedAt: ts("2024-06-01T00:00:00"), ClosedAt: ts("2024-06-01T01:00:00"), Criticality: "1-Critical", Severity: "1-High"},
		{ID: "b", CreatedAt: ts("2024-06-01T00:00:00"), ClosedAt: ts("2024-06-03T00:00:00"), Criticality: "1-Critical", Severity: "1-High"},
		{ID: "c", CreatedAt: ts("2024-06-01T00:00:00"), Criticality: "1-Critical", Severity: "1-High"},
		{ID: "d", CreatedAt: ts("2024-06-01T00:00:00"), ClosedAt: ts("2024-06-01T01:00:00"), Criticality: "weird", Severity: "stuff"},
		{ID: "e"},
	}

	ev := p.Run(records)
	if ev.Total() != 5 {
		t.Errorf("expected total 5, got %d", ev.Total())
	}
	if len(ev.Excluded) != 1 || ev.Excluded[0].ID != "e" {
		t.Errorf("expected record e excluded, got %v", ev.Excluded)
	}

	want := map[string]Outcome{
		"a": OutcomeAchieved,
		"b": OutcomeBreached,
		"c": OutcomeOpen,
		"d": OutcomeUnmapped,
	}
	for _, et := range ev.Tickets {
		if et.Outcome != want[et.Record.ID] {
			t.Errorf("ticket %s: expected %s, got %s", et.Record.ID, want[et.Record.ID], et.Outcome)
		}
	}
}

func TestPipelineDegradedMode(t *testing.T) {
	p := NewPipeline(nil)

	records := []TicketRecord{
		{ID: "a", CreatedAt: ts("2024-06-01T00:00:00"), ClosedAt: ts("2024-06-01T01:00:00"), Criticality: "1-Critical", Severity: "1-High"},
		{ID: "b", CreatedAt: ts("2024-06-01T00:00:00")},
	}

	ev := p.Run(records)
	if ev.Tickets[0].Outcome != OutcomeUnmapped {
		t.Errorf("degraded pipeline must classify closed tickets UNMAPPED, got %s", ev.Tickets[0].Outcome)
	}
	if ev.Tickets[1].Outcome != OutcomeOpen {
		t.Errorf("open classification must survive degraded mode, got %s", ev.Tickets[1].Outcome)
	}
}

func TestPipelineDeterministic(t *testing.T) {
	r, _ := NewTableResolver(TieredSLATable())
	p := NewPipeline(r)

	records := []TicketRecord{
		{ID: "a", CreatedAt: ts("2024-06-01T08:30:00"), ClosedAt: ts("2024-06-01T13:00:00"), Criticality: "2-High", Severity: "2-Medium"},
	}

	first := p.Run(records)
	second := p.Run(records)
	if first.Tickets[0].Outcome != second.Tickets[0].Outcome ||
		*first.Tickets[0].SLAHours != *second.Tickets[0].SLAHours ||
		!first.Tickets[0].Deadline.Equal(*second.Tickets[0].Deadline) {
		t.Error("pipeline output must be identical for identical inputs")
	}
}

func TestFormatBreachHours(t *testing.T) {
	cases := []struct {
		in   *float64
		want string
	}{
		{nil, "N/A"},
		{hoursPtr(-2.0), "0d 0h 0m"},
		{hoursPtr(0), "0d 0h 0m"},
		{hoursPtr(0.5), "0d 0h 30m"},
		{hoursPtr(27.75), "1d 3h 45m"},
		{hoursPtr(48), "2d 0h 0m"},
	}

	for _, c := range cases {
		if got := FormatBreachHours(c.in); got != c.want {
			t.Errorf("FormatBreachHours(%v) = %q, want %q", floatPtrString(c.in), got, c.want)
		}
	}
}
