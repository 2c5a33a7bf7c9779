package domain

import (
	"fmt"
	"math"
	"time"
)

// Outcome is the terminal SLA classification of a ticket. It is computed
// once from static inputs; there are no transitions.
type Outcome string

const (
	OutcomeAchieved Outcome = "ACHIEVED"
	OutcomeBreached Outcome = "BREACHED"
	OutcomeOpen     Outcome = "OPEN"
	OutcomeUnmapped Outcome = "UNMAPPED"
)

// LegacyCode returns the spreadsheet-era encoding of an outcome:
// "1" achieved, "0" breached, "WP" (work in progress) open, and the
// empty string for unmapped. Kept for compatibility with consumers of
// the exported result table.
func (o Outcome) LegacyCode() string {
	switch o {
	case OutcomeAchieved:
		return "1"
	case OutcomeBreached:
		return "0"
	case OutcomeOpen:
		return "WP"
	}
	return ""
}

// OutcomeFromLegacy converts a legacy code back to a named outcome.
func OutcomeFromLegacy(code string) (Outcome, bool) {
	switch code {
	case "1":
		return OutcomeAchieved, true
	case "0":
		return OutcomeBreached, true
	case "WP":
		return OutcomeOpen, true
	case "":
		return OutcomeUnmapped, true
	}
	return "", false
}

// EvaluatedTicket is one record with its derived SLA fields appended.
type EvaluatedTicket struct {
	Record TicketRecord `json:"record"`

	// Key is the normalized criticality-severity lookup key.
	Key string `json:"criticality_severity_key"`

	// SLAHours is the resolved budget; nil when unmapped.
	SLAHours *float64 `json:"sla_duration_hours,omitempty"`

	// Deadline is CreatedAt + SLAHours, defined iff both are.
	Deadline *time.Time `json:"deadline,omitempty"`

	Outcome    Outcome `json:"outcome"`
	LegacyCode string  `json:"outcome_legacy"`

	// BreachHours is the signed breach magnitude
	// (closed - created - budget) for every closed, mapped ticket.
	// Positive values are real breaches; non-positive values render as
	// zero for display.
	BreachHours *float64 `json:"breach_hours,omitempty"`
}

// Evaluation is the result of one pipeline pass over a record set.
// Excluded holds the rows dropped for missing creation timestamps; they
// are a data-quality category, distinct from Unmapped.
type Evaluation struct {
	Tickets  []EvaluatedTicket `json:"tickets"`
	Excluded []TicketRecord    `json:"excluded,omitempty"`
}

// Total returns the number of input rows, evaluated plus excluded.
func (e Evaluation) Total() int {
	return len(e.Tickets) + len(e.Excluded)
}

// Evaluate computes the derived SLA fields for a single record. The
// second return is false when the record has no creation timestamp and
// must be excluded from the pipeline.
func Evaluate(rec TicketRecord, slaHours *float64) (EvaluatedTicket, bool) {
	if rec.CreatedAt == nil {
		return EvaluatedTicket{}, false
	}

	et := EvaluatedTicket{
		Record:   rec,
		Key:      CriticalityKey(rec.Criticality, rec.Severity),
		SLAHours: slaHours,
	}

	if slaHours != nil {
		deadline := rec.CreatedAt.Add(hoursToDuration(*slaHours))
		et.Deadline = &deadline
	}

	switch {
	case rec.ClosedAt == nil:
		et.Outcome = OutcomeOpen
	case et.Deadline == nil:
		et.Outcome = OutcomeUnmapped
	default:
		breach := rec.ClosedAt.Sub(*rec.CreatedAt).Hours() - *slaHours
		et.BreachHours = &breach
		if rec.ClosedAt.After(*et.Deadline) {
			et.Outcome = OutcomeBreached
		} else {
			et.Outcome = OutcomeAchieved
		}
	}
	et.LegacyCode = et.Outcome.LegacyCode()
	return et, true
}

// Pipeline runs the normalize-resolve-evaluate map phase over a record
// set. A pipeline with a nil resolver is the degraded mode: every closed
// ticket comes out Unmapped, but grouping and volume data stay usable.
type Pipeline struct {
	resolver *Resolver
}

// NewPipeline builds a pipeline around a resolver (which may be nil).
func NewPipeline(r *Resolver) *Pipeline {
	return &Pipeline{resolver: r}
}

// Run classifies every record. Per-row failures never abort the pass;
// they land in Excluded or come out as Unmapped.
func (p *Pipeline) Run(records []TicketRecord) Evaluation {
	ev := Evaluation{Tickets: make([]EvaluatedTicket, 0, len(records))}
	for _, rec := range records {
		key := CriticalityKey(rec.Criticality, rec.Severity)
		hours := p.resolver.Resolve(key, rec.Item, rec.Severity)
		et, ok := Evaluate(rec, hours)
		if !ok {
			ev.Excluded = append(ev.Excluded, rec)
			continue
		}
		ev.Tickets = append(ev.Tickets, et)
	}
	return ev
}

// FormatBreachHours renders a breach magnitude as "Xd Yh Zm". Open and
// unmapped tickets (nil) render as "N/A"; non-positive magnitudes are
// clamped to the zero string rather than shown negative.
func FormatBreachHours(hours *float64) string {
	if hours == nil {
		return "N/A"
	}
	if *hours <= 0 {
		return "0d 0h 0m"
	}
	totalMinutes := int64(math.Round(*hours * 60))
	days := totalMinutes / (24 * 60)
	remaining := totalMinutes % (24 * 60)
	return fmt.Sprintf("%dd %dh %dm", days, remaining/60, remaining%60)
}

func hoursToDuration(hours float64) time.Duration {
	return time.Duration(hours * float64(time.Hour))
}
