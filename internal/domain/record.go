package domain

import (
	"strings"
	"time"
)

// TicketClass distinguishes the two service-desk export types
type TicketClass string

const (
	TicketClassIncident TicketClass = "INCIDENT"
	TicketClassRequest  TicketClass = "REQUEST"
)

// ValidTicketClass reports whether c is a known ticket class
func ValidTicketClass(c TicketClass) bool {
	return c == TicketClassIncident || c == TicketClassRequest
}

// TicketRecord is one row of an imported service-desk export after the
// ingestion layer has resolved column identities. Timestamps are pointers:
// a nil CreatedAt excludes the row from SLA computation, a nil ClosedAt
// means the ticket is still open.
type TicketRecord struct {
	ID              string      `json:"id"`
	Class           TicketClass `json:"class,omitempty"`
	CreatedAt       *time.Time  `json:"created_at,omitempty"`
	ClosedAt        *time.Time  `json:"closed_at,omitempty"`
	Criticality     string      `json:"criticality"`
	Severity        string      `json:"severity"`
	Item            string      `json:"item,omitempty"`
	Category        string      `json:"category,omitempty"`
	ServiceOffering string      `json:"service_offering,omitempty"`
	Location        string      `json:"location,omitempty"`
	Channel         string      `json:"channel,omitempty"`
}

// IsClosed reports whether the ticket has a resolution timestamp
func (r TicketRecord) IsClosed() bool {
	return r.ClosedAt != nil
}

// Month returns the creation month as "YYYY-MM", or "" when the
// creation timestamp is missing
func (r TicketRecord) Month() string {
	if r.CreatedAt == nil {
		return ""
	}
	return r.CreatedAt.Format("2006-01")
}

// Dataset is one uploaded export plus its optional external SLA mapping.
// Records are immutable once uploaded; evaluations are recomputed on
// every read, never stored back.
type Dataset struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Class     TicketClass      `json:"class"`
	Period    string           `json:"period,omitempty"`
	Records   []TicketRecord   `json:"records"`
	Mapping   *MappingArtifact `json:"mapping,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// LocationSet is a fixed set of reporter locations used for regional
// filtering. Membership is exact after trimming, case-insensitive.
type LocationSet struct {
	name    string
	members map[string]struct{}
}

// NewLocationSet builds a location set from its display name and member list
func NewLocationSet(name string, locations []string) LocationSet {
	members := make(map[string]struct{}, len(locations))
	for _, loc := range locations {
		loc = strings.ToUpper(strings.TrimSpace(loc))
		if loc != "" {
			members[loc] = struct{}{}
		}
	}
	return LocationSet{name: name, members: members}
}

// Name returns the display name of the set (e.g. "Regional 3")
func (s LocationSet) Name() string {
	return s.name
}

// Contains reports whether loc belongs to the set
func (s LocationSet) Contains(loc string) bool {
	_, ok := s.members[strings.ToUpper(strings.TrimSpace(loc))]
	return ok
}

// FilterByLocation keeps only records whose location belongs to the set
func FilterByLocation(records []TicketRecord, set LocationSet) []TicketRecord {
	out := make([]TicketRecord, 0, len(records))
	for _, r := range records {
		if set.Contains(r.Location) {
			out = append(out, r)
		}
	}
	return out
}

// FilterByMonth keeps only records created in the given "YYYY-MM" month.
// Records without a creation timestamp are dropped by this filter.
func FilterByMonth(records []TicketRecord, month string) []TicketRecord {
	out := make([]TicketRecord, 0, len(records))
	for _, r := range records {
		if r.Month() == month {
			out = append(out, r)
		}
	}
	return out
}
