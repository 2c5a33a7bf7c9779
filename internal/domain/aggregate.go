package domain

import (
	"sort"
	"strings"
	"time"
)

// GroupKey selects the dimension a summary is rolled up by.
type GroupKey string

const (
	GroupByServiceOffering GroupKey = "service_offering"
	GroupByLocation        GroupKey = "location"
	GroupByMonth           GroupKey = "month"
	GroupByChannel         GroupKey = "channel"
	GroupByCategory        GroupKey = "category"
)

// GroupValue returns the record's value for a grouping dimension.
// Missing values group under "Unknown" so no ticket falls out of the
// conservation count.
func GroupValue(rec TicketRecord, key GroupKey) (string, error) {
	var v string
	switch key {
	case GroupByServiceOffering:
		v = rec.ServiceOffering
	case GroupByLocation:
		v = rec.Location
	case GroupByMonth:
		v = rec.Month()
	case GroupByChannel:
		v = rec.Channel
	case GroupByCategory:
		v = rec.Category
	default:
		return "", ErrUnknownGroupKey
	}
	v = strings.TrimSpace(v)
	if isMissingCell(v) {
		return "Unknown", nil
	}
	return v, nil
}

// GroupSummary is the per-group rollup of one evaluation pass. It is a
// pure projection: recomputed fresh on every report, never mutated
// incrementally.
type GroupSummary struct {
	Group    string `json:"group"`
	Tickets  int    `json:"tickets"`
	Achieved int    `json:"achieved"`
	Breached int    `json:"breached"`
	Open     int    `json:"open"`
	Unmapped int    `json:"unmapped"`
	Excluded int    `json:"excluded"`

	// TotalBreachHours sums the positive breach magnitudes; negative
	// margins never offset real breaches.
	TotalBreachHours float64 `json:"total_breach_hours"`

	// MaxBreachHours is the single worst breach in the group.
	MaxBreachHours float64 `json:"max_breach_hours"`

	// AllocatedHours sums the resolved SLA budgets over all mapped
	// tickets in the group, breached or not.
	AllocatedHours float64 `json:"allocated_hours"`

	// Compliance is filled in by ApplyCompliance; nil means the selected
	// formula is undefined for this group and displays as "-".
	Compliance *float64 `json:"compliance_pct,omitempty"`
}

// Aggregate partitions an evaluation by a grouping dimension. Groups
// come back sorted by name. For every group,
// achieved+breached+open+unmapped+excluded == tickets.
func Aggregate(ev Evaluation, key GroupKey) ([]GroupSummary, error) {
	byGroup := make(map[string]*GroupSummary)
	get := func(name string) *GroupSummary {
		g, ok := byGroup[name]
		if !ok {
			g = &GroupSummary{Group: name}
			byGroup[name] = g
		}
		return g
	}

	for _, et := range ev.Tickets {
		name, err := GroupValue(et.Record, key)
		if err != nil {
			return nil, err
		}
		g := get(name)
		g.Tickets++
		switch et.Outcome {
		case OutcomeAchieved:
			g.Achieved++
		case OutcomeBreached:
			g.Breached++
		case OutcomeOpen:
			g.Open++
		case OutcomeUnmapped:
			g.Unmapped++
		}
		if et.SLAHours != nil {
			g.AllocatedHours += *et.SLAHours
		}
		if et.BreachHours != nil && *et.BreachHours > 0 {
			g.TotalBreachHours += *et.BreachHours
			if *et.BreachHours > g.MaxBreachHours {
				g.MaxBreachHours = *et.BreachHours
			}
		}
	}
	for _, rec := range ev.Excluded {
		name, err := GroupValue(rec, key)
		if err != nil {
			return nil, err
		}
		g := get(name)
		g.Tickets++
		g.Excluded++
	}

	groups := make([]GroupSummary, 0, len(byGroup))
	for _, g := range byGroup {
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Group < groups[j].Group })
	return groups, nil
}

// ComplianceFormula names the three coexisting compliance percentage
// definitions. The source reports use different ones in different
// places; they are deliberately kept as separate selectable strategies.
type ComplianceFormula string

const (
	// FormulaTicketCount is achieved/(achieved+breached)*100, undefined
	// when no tickets closed with a mapped budget.
	FormulaTicketCount ComplianceFormula = "ticket_count"

	// FormulaTimeBudget is (allocated-breach)/allocated*100, floored at
	// zero, undefined when no budget was allocated.
	FormulaTimeBudget ComplianceFormula = "time_budget"

	// FormulaCalendarWindow replaces the allocated budget with the hour
	// count of the reporting month (744 for a 31-day month).
	FormulaCalendarWindow ComplianceFormula = "calendar_window"
)

// ValidFormula reports whether f names a known strategy.
func ValidFormula(f ComplianceFormula) bool {
	switch f {
	case FormulaTicketCount, FormulaTimeBudget, FormulaCalendarWindow:
		return true
	}
	return false
}

// ApplyCompliance fills each group's Compliance field using the selected
// formula. windowHours is the calendar window denominator and is only
// read by FormulaCalendarWindow.
func ApplyCompliance(groups []GroupSummary, formula ComplianceFormula, windowHours float64) error {
	if !ValidFormula(formula) {
		return ErrUnknownFormula
	}
	for i := range groups {
		groups[i].Compliance = compliance(groups[i], formula, windowHours, groups[i].TotalBreachHours)
	}
	return nil
}

// ApplyMaxBreachCompliance is the per-ticket worst-case variant: the
// group's percentage is computed from its single largest breach instead
// of the breach sum.
func ApplyMaxBreachCompliance(groups []GroupSummary, formula ComplianceFormula, windowHours float64) error {
	if !ValidFormula(formula) {
		return ErrUnknownFormula
	}
	for i := range groups {
		groups[i].Compliance = compliance(groups[i], formula, windowHours, groups[i].MaxBreachHours)
	}
	return nil
}

func compliance(g GroupSummary, formula ComplianceFormula, windowHours, breachHours float64) *float64 {
	switch formula {
	case FormulaTicketCount:
		closed := g.Achieved + g.Breached
		if closed == 0 {
			return nil
		}
		return pct(float64(g.Achieved) / float64(closed))
	case FormulaTimeBudget:
		if g.AllocatedHours <= 0 {
			return nil
		}
		return pct(clampZero((g.AllocatedHours - breachHours) / g.AllocatedHours))
	case FormulaCalendarWindow:
		if windowHours <= 0 {
			return nil
		}
		return pct(clampZero((windowHours - breachHours) / windowHours))
	}
	return nil
}

func pct(ratio float64) *float64 {
	v := ratio * 100
	return &v
}

func clampZero(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// HoursInMonth returns the hour count of a "YYYY-MM" reporting month,
// the denominator of the calendar-window formula.
func HoursInMonth(month string) (float64, error) {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return 0, ErrInvalidMonth
	}
	days := t.AddDate(0, 1, -1).Day()
	return float64(days) * 24, nil
}

// RankedGroup is a group summary with its dense rank attached.
type RankedGroup struct {
	Rank int `json:"rank"`
	GroupSummary
}

// RankMetric selects the value a ranking orders by.
type RankMetric string

const (
	RankByCompliance  RankMetric = "compliance"
	RankByBreachHours RankMetric = "breach_hours"
	RankByMaxBreach   RankMetric = "max_breach"
)

// ValidRankMetric reports whether m names a known ranking value.
func ValidRankMetric(m RankMetric) bool {
	switch m {
	case RankByCompliance, RankByBreachHours, RankByMaxBreach:
		return true
	}
	return false
}

// Rank dense-ranks groups by a metric and keeps every row whose rank is
// at most topN (ties share a rank, so the result may exceed topN rows).
// best=true orders best first: highest compliance or lowest breach time.
// Groups with an undefined compliance are left out of compliance
// rankings. topN <= 0 keeps all rows.
func Rank(groups []GroupSummary, metric RankMetric, best bool, topN int) ([]RankedGroup, error) {
	if !ValidRankMetric(metric) {
		return nil, ErrUnknownRankMetric
	}

	value := func(g GroupSummary) (float64, bool) {
		switch metric {
		case RankByCompliance:
			if g.Compliance == nil {
				return 0, false
			}
			return *g.Compliance, true
		case RankByBreachHours:
			return g.TotalBreachHours, true
		default:
			return g.MaxBreachHours, true
		}
	}

	// Best means high compliance but low breach time.
	descending := best
	if metric != RankByCompliance {
		descending = !best
	}

	ranked := make([]RankedGroup, 0, len(groups))
	for _, g := range groups {
		if _, ok := value(g); !ok {
			continue
		}
		ranked = append(ranked, RankedGroup{GroupSummary: g})
	}
	sort.Slice(ranked, func(i, j int) bool {
		vi, _ := value(ranked[i].GroupSummary)
		vj, _ := value(ranked[j].GroupSummary)
		if vi != vj {
			if descending {
				return vi > vj
			}
			return vi < vj
		}
		return ranked[i].Group < ranked[j].Group
	})

	rank := 0
	var prev float64
	for i := range ranked {
		v, _ := value(ranked[i].GroupSummary)
		if rank == 0 || v != prev {
			rank++
			prev = v
		}
		ranked[i].Rank = rank
	}

	if topN > 0 {
		kept := ranked[:0]
		for _, rg := range ranked {
			if rg.Rank <= topN {
				kept = append(kept, rg)
			}
		}
		ranked = kept
	}
	return ranked, nil
}

// ValueCount is one bucket of a frequency breakdown.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// CountValues tallies records per distinct value of a dimension, sorted
// by descending count then name.
func CountValues(records []TicketRecord, key GroupKey) ([]ValueCount, error) {
	counts := make(map[string]int)
	for _, rec := range records {
		v, err := GroupValue(rec, key)
		if err != nil {
			return nil, err
		}
		counts[v]++
	}
	out := make([]ValueCount, 0, len(counts))
	for v, n := range counts {
		out = append(out, ValueCount{Value: v, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	return out, nil
}

// TopValues keeps the first n buckets of a frequency breakdown.
func TopValues(counts []ValueCount, n int) []ValueCount {
	if n <= 0 || n >= len(counts) {
		return counts
	}
	return counts[:n]
}

// essChannels are the contact-channel spellings counted as self-service.
var essChannels = map[string]struct{}{
	"ess":          {},
	"self-service": {},
	"self service": {},
}

// ESSShare returns the self-service ticket count and its percentage of
// all records.
func ESSShare(records []TicketRecord) (int, float64) {
	count := 0
	for _, rec := range records {
		if _, ok := essChannels[strings.ToLower(strings.TrimSpace(rec.Channel))]; ok {
			count++
		}
	}
	if len(records) == 0 {
		return 0, 0
	}
	return count, float64(count) / float64(len(records)) * 100
}

// VolumeSummary counts tickets by open/closed state.
type VolumeSummary struct {
	Total  int `json:"total"`
	Solved int `json:"solved"`
	Active int `json:"active"`
}

// Volume tallies a record set by closure state. "Solved" means a
// resolution timestamp exists, regardless of SLA outcome.
func Volume(records []TicketRecord) VolumeSummary {
	v := VolumeSummary{Total: len(records)}
	for _, rec := range records {
		if rec.IsClosed() {
			v.Solved++
		} else {
			v.Active++
		}
	}
	return v
}

// StatusBreakdown is the solved vs active split for one ticket type.
// Incidents break down by category; requests are a single bucket.
type StatusBreakdown struct {
	Type   string `json:"type"`
	Solved int    `json:"solved"`
	Active int    `json:"active"`
}

// StatusByType computes the solved/active table: one row per incident
// category plus one "Request" row.
func StatusByType(records []TicketRecord) []StatusBreakdown {
	byType := make(map[string]*StatusBreakdown)
	get := func(name string) *StatusBreakdown {
		b, ok := byType[name]
		if !ok {
			b = &StatusBreakdown{Type: name}
			byType[name] = b
		}
		return b
	}

	for _, rec := range records {
		name := "Request"
		if rec.Class == TicketClassIncident {
			name, _ = GroupValue(rec, GroupByCategory)
		}
		b := get(name)
		if rec.IsClosed() {
			b.Solved++
		} else {
			b.Active++
		}
	}

	out := make([]StatusBreakdown, 0, len(byType))
	for _, b := range byType {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// OccurrenceRow is one entry of the top-occurrence table.
type OccurrenceRow struct {
	Type  string `json:"type"`
	Group string `json:"group"`
	Count int    `json:"count"`
}

// TopOccurrences builds the per-type top-N table: records are bucketed
// by type (incident category, or the static "Request" type), then the N
// most frequent values of the grouping dimension are kept per type.
func TopOccurrences(records []TicketRecord, key GroupKey, n int) ([]OccurrenceRow, error) {
	byType := make(map[string][]TicketRecord)
	for _, rec := range records {
		name := "Request"
		if rec.Class == TicketClassIncident {
			name, _ = GroupValue(rec, GroupByCategory)
		}
		byType[name] = append(byType[name], rec)
	}

	types := make([]string, 0, len(byType))
	for name := range byType {
		types = append(types, name)
	}
	sort.Strings(types)

	var rows []OccurrenceRow
	for _, name := range types {
		counts, err := CountValues(byType[name], key)
		if err != nil {
			return nil, err
		}
		for _, vc := range TopValues(counts, n) {
			rows = append(rows, OccurrenceRow{Type: name, Group: vc.Value, Count: vc.Count})
		}
	}
	return rows, nil
}
