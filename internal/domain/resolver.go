package domain

import (
	"strconv"
	"strings"
)

// DurationUnit tells the duration parser how to read a bare numeric cell.
// Spreadsheet mapping tables disagree on units: the built-in tables are
// authored in hours, while the external "Mapping SLA" workbook stores
// whole (or fractional) days. The unit always comes from the calling
// context; the parser never guesses between hours and days.
type DurationUnit string

const (
	UnitHours DurationUnit = "hours"
	UnitDays  DurationUnit = "days"
)

// NumericPolicy disambiguates a bare numeric in an hours-unit table.
// The inherited spreadsheet convention is: values up to 24 are hours,
// anything larger is minutes. The policy is injectable so a cleaner
// contract (an explicit units column) can replace the heuristic without
// touching the resolver.
type NumericPolicy func(v float64) float64

// DefaultNumericPolicy implements the <=24 hours / >24 minutes convention.
func DefaultNumericPolicy(v float64) float64 {
	if v <= 24 {
		return v
	}
	return v / 60
}

// ParseDurationValue converts a raw mapping-table cell into hours.
// Recognized forms: "H:MM" and "H:MM:SS" time-of-day values (read as an
// amount of time, not a wall-clock instant) and bare numerics with
// either "." or "," as the decimal separator. Numerics are interpreted
// per unit: days multiply by 24, hours go through the numeric policy.
// Anything else yields nil, never zero.
func ParseDurationValue(raw string, unit DurationUnit, policy NumericPolicy) *float64 {
	s := strings.TrimSpace(raw)
	if isMissingCell(s) {
		return nil
	}

	if strings.Contains(s, ":") {
		if h := parseClockValue(s); h != nil {
			return h
		}
		return nil
	}

	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil || v < 0 {
		return nil
	}

	var hours float64
	switch unit {
	case UnitDays:
		hours = v * 24
	default:
		if policy == nil {
			policy = DefaultNumericPolicy
		}
		hours = policy(v)
	}
	return &hours
}

func parseClockValue(s string) *float64 {
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return nil
	}
	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return nil
		}
		nums[i] = n
	}
	hours := float64(nums[0]) + float64(nums[1])/60
	if len(nums) == 3 {
		hours += float64(nums[2]) / 3600
	}
	return &hours
}

// SLATable maps a criticality-severity key to a resolution budget in
// hours. Lookup normalizes both the query key and every table key, so a
// table authored as "1-Critical - 1-High" still matches an export that
// says "1 - Critical - 1 - High".
type SLATable map[string]float64

// Resolve returns the budget for key, or nil when no normalized entry
// matches. It never returns zero for a miss.
func (t SLATable) Resolve(key string) *float64 {
	norm := NormalizeLabel(key)
	if norm == "" {
		return nil
	}
	for k, v := range t {
		if NormalizeLabel(k) == norm {
			hours := v
			return &hours
		}
	}
	return nil
}

// TieredSLATable returns the criticality-tiered resolution budgets used
// by the combined summary report: 4 criticality levels x 3 severity
// levels, 4 to 48 hours.
func TieredSLATable() SLATable {
	return SLATable{
		"1 - Critical - 1 - High":   4.0,
		"1 - Critical - 2 - Medium": 6.0,
		"1 - Critical - 3 - Low":    8.0,
		"2 - High - 1 - High":       6.0,
		"2 - High - 2 - Medium":     8.0,
		"2 - High - 3 - Low":        12.0,
		"3 - Medium - 1 - High":     8.0,
		"3 - Medium - 2 - Medium":   12.0,
		"3 - Medium - 3 - Low":      16.0,
		"4 - Low - 1 - High":        16.0,
		"4 - Low - 2 - Medium":      24.0,
		"4 - Low - 3 - Low":         48.0,
	}
}

// FlatSLATable returns the flat 30-minute budget some request reports
// use for every criticality-severity combination.
func FlatSLATable() SLATable {
	flat := SLATable{}
	for key := range TieredSLATable() {
		flat[key] = 0.5
	}
	return flat
}

// MappingArtifact is the externally supplied three-stage SLA mapping:
// item text to a numeric code, severity text to a letter code, and the
// concatenated code pair to a raw duration cell. The tables arrive as
// plain lookup maps; reading them out of a workbook is the ingestion
// layer's problem.
type MappingArtifact struct {
	Items      map[string]string `json:"items"`
	Severities map[string]string `json:"severities"`
	Durations  map[string]string `json:"durations"`
}

// Validate reports the one hard failure of the pipeline: an artifact
// with a missing or empty lookup table can never resolve anything.
func (m *MappingArtifact) Validate() error {
	if m == nil || len(m.Items) == 0 || len(m.Severities) == 0 || len(m.Durations) == 0 {
		return ErrMappingIncomplete
	}
	return nil
}

// cleanID renders a lookup code for concatenation. Spreadsheet numerics
// surface as "105.0"; without stripping the decimal the composite code
// never matches the duration table.
func cleanID(v string) string {
	s := strings.TrimSpace(v)
	if isMissingCell(s) {
		return ""
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return strconv.FormatInt(int64(f), 10)
	}
	return s
}

// Resolver maps a ticket's classification onto an SLA budget in hours.
// Exactly one strategy is active: a built-in table keyed by the
// criticality-severity key, or an external mapping artifact keyed by
// item and severity. A nil *Resolver is valid and resolves nothing,
// which is the degraded mode after a malformed artifact.
type Resolver struct {
	table   SLATable
	mapping *MappingArtifact
	unit    DurationUnit
	policy  NumericPolicy

	itemIndex map[string]string
	sevIndex  map[string]string
}

// NewTableResolver builds a resolver over a built-in table.
func NewTableResolver(table SLATable) (*Resolver, error) {
	if len(table) == 0 {
		return nil, ErrEmptySLATable
	}
	return &Resolver{table: table}, nil
}

// NewMappingResolver builds a resolver over an external mapping
// artifact. The unit applies to the artifact's duration cells; policy
// may be nil to keep the default numeric convention.
func NewMappingResolver(m *MappingArtifact, unit DurationUnit, policy NumericPolicy) (*Resolver, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	r := &Resolver{
		mapping:   m,
		unit:      unit,
		policy:    policy,
		itemIndex: make(map[string]string, len(m.Items)),
		sevIndex:  make(map[string]string, len(m.Severities)),
	}
	for k, v := range m.Items {
		r.itemIndex[NormalizeText(k)] = v
	}
	for k, v := range m.Severities {
		r.sevIndex[NormalizeText(k)] = v
	}
	return r, nil
}

// Resolve returns the SLA budget in hours for a ticket, or nil when the
// classification is unmapped. Malformed cells resolve to nil as well;
// the caller classifies those outcomes as Unmapped, never as an error.
func (r *Resolver) Resolve(key, item, severity string) *float64 {
	if r == nil {
		return nil
	}
	if r.mapping != nil {
		return r.resolveMapped(key, item, severity)
	}
	return r.table.Resolve(key)
}

func (r *Resolver) resolveMapped(key, item, severity string) *float64 {
	itemCode := cleanID(r.itemIndex[NormalizeText(item)])

	// Severity alone usually maps; fall back to the combined key for
	// exports that only carry "Businesscriticality - Severity".
	sevCode := cleanID(r.sevIndex[NormalizeText(severity)])
	if sevCode == "" {
		sevCode = cleanID(r.sevIndex[NormalizeText(key)])
	}

	if itemCode == "" || sevCode == "" {
		return nil
	}
	raw, ok := r.mapping.Durations[itemCode+sevCode]
	if !ok {
		return nil
	}
	return ParseDurationValue(raw, r.unit, r.policy)
}
